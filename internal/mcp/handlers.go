// ABOUTME: MCP tool handler implementations for the cortex router server
// ABOUTME: Thin adapters from tool arguments onto the core pipeline
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/cortex-standalone/internal/core"
	"github.com/harper/cortex-standalone/internal/models"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	router   *core.Router
	resolver *core.Resolver
	briefing *core.BriefingEngine
	stress   *core.StressScorer
}

// Shutdown waits for the router's fire-and-forget hooks to drain
func (h *Handlers) Shutdown() {
	if h.router != nil {
		h.router.WaitBackground()
	}
}

// RouteSignal handles the route_signal tool
func (h *Handlers) RouteSignal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError("user_id argument is required and must be a string"), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}

	signalType, err := parseSignalType(request.GetString("signal_type", "text"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	channel, err := parseChannel(request.GetString("channel", "api"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := h.router.Route(ctx, models.SignalEnvelope{
		UserID:     userID,
		SignalType: signalType,
		Channel:    channel,
		RawText:    text,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("routing failed: %v", err)), nil
	}

	return jsonResult(result)
}

// ResolveHandshake handles the resolve_handshake tool
func (h *Handlers) ResolveHandshake(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawSignalID, err := request.RequireString("raw_signal_id")
	if err != nil {
		return mcp.NewToolResultError("raw_signal_id argument is required and must be a string"), nil
	}
	approve, err := request.RequireBool("approve")
	if err != nil {
		return mcp.NewToolResultError("approve argument is required and must be a boolean"), nil
	}

	event, err := h.resolver.Resolve(ctx, rawSignalID, approve)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("resolution failed: %v", err)), nil
	}

	return jsonResult(event)
}

// GetDailyBriefing handles the get_daily_briefing tool
func (h *Handlers) GetDailyBriefing(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError("user_id argument is required and must be a string"), nil
	}
	force := request.GetBool("force", false)

	briefing, err := h.briefing.GetDailyBriefing(ctx, userID, force)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("briefing failed: %v", err)), nil
	}

	return jsonResult(briefing)
}

// GetProactiveAlerts handles the get_proactive_alerts tool
func (h *Handlers) GetProactiveAlerts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError("user_id argument is required and must be a string"), nil
	}

	generated, err := h.briefing.GenerateAlerts(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("alert generation failed: %v", err)), nil
	}

	alerts, err := h.briefing.ConsumeAlerts(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("alert consumption failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"generated": generated,
		"alerts":    alerts,
		"checked":   time.Now().UTC().Format(time.RFC3339),
	})
}

// StressCheck handles the stress_check tool
func (h *Handlers) StressCheck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}

	profile := h.stress.Score(text, nil)
	return jsonResult(profile)
}

func parseSignalType(raw string) (models.SignalType, error) {
	switch models.SignalType(raw) {
	case models.SignalTypeText, models.SignalTypeVoice, models.SignalTypeOCR:
		return models.SignalType(raw), nil
	default:
		return "", fmt.Errorf("signal_type must be text, voice, or ocr, got %q", raw)
	}
}

func parseChannel(raw string) (models.Channel, error) {
	switch models.Channel(raw) {
	case models.ChannelChat, models.ChannelCapture, models.ChannelAPI:
		return models.Channel(raw), nil
	default:
		return "", fmt.Errorf("channel must be chat, capture, or api, got %q", raw)
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(encoded)), nil
}
