// ABOUTME: MCP tool definitions and registration for the cortex router server
// ABOUTME: Exposes routing, handshake resolution, briefings, alerts, and stress checks
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/cortex-standalone/internal/core"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, router *core.Router, resolver *core.Resolver, briefing *core.BriefingEngine, stress *core.StressScorer) *Handlers {
	handlers := &Handlers{
		router:   router,
		resolver: resolver,
		briefing: briefing,
		stress:   stress,
	}

	// 1. route_signal - Run one signal through the full routing pipeline
	server.AddTool(mcp.Tool{
		Name:        "route_signal",
		Description: "Route one ambient signal (text, voice transcript, or OCR extraction) through the cortex pipeline. Returns the routing decision, draft, and any clarification prompt.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "Owner of the signal",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Raw signal text",
				},
				"signal_type": map[string]interface{}{
					"type":        "string",
					"description": "One of text, voice, ocr (default: text)",
					"default":     "text",
				},
				"channel": map[string]interface{}{
					"type":        "string",
					"description": "Surface the signal came from: chat, capture, api (default: api)",
					"default":     "api",
				},
			},
			Required: []string{"user_id", "text"},
		},
	}, handlers.RouteSignal)

	// 2. resolve_handshake - Approve or reject a pending handshake
	server.AddTool(mcp.Tool{
		Name:        "resolve_handshake",
		Description: "Approve or reject a pending handshake by raw signal id. Approval executes the drafted action and indexes the resulting memories.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"raw_signal_id": map[string]interface{}{
					"type":        "string",
					"description": "Signal whose pending handshake to resolve",
				},
				"approve": map[string]interface{}{
					"type":        "boolean",
					"description": "true to approve and execute, false to reject",
				},
			},
			Required: []string{"raw_signal_id", "approve"},
		},
	}, handlers.ResolveHandshake)

	// 3. get_daily_briefing - Cached daily priority summary
	server.AddTool(mcp.Tool{
		Name:        "get_daily_briefing",
		Description: "Get the user's daily briefing: up to three prioritized items covering overdue tasks, pending handshakes, and spending deltas. Cached per day.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User to brief",
				},
				"force": map[string]interface{}{
					"type":        "boolean",
					"description": "Regenerate even if a cached briefing exists (default: false)",
					"default":     false,
				},
			},
			Required: []string{"user_id"},
		},
	}, handlers.GetDailyBriefing)

	// 4. get_proactive_alerts - Generate and consume pending alerts
	server.AddTool(mcp.Tool{
		Name:        "get_proactive_alerts",
		Description: "Run alert generation (spend spikes, tasks due soon) and return all pending alerts, marking them delivered.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User whose alerts to fetch",
				},
			},
			Required: []string{"user_id"},
		},
	}, handlers.GetProactiveAlerts)

	// 5. stress_check - Score text without routing it
	server.AddTool(mcp.Tool{
		Name:        "stress_check",
		Description: "Score free text on the stress lexicon and return the profile with its governance directive. Read-only, nothing is logged.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Text to score",
				},
			},
			Required: []string{"text"},
		},
	}, handlers.StressCheck)

	return handlers
}
