// ABOUTME: CLI command to route one signal through the pipeline
// ABOUTME: Accepts text from args or stdin, prints the routing decision
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/cortex-standalone/internal/models"
)

var (
	routeUser    string
	routeType    string
	routeChannel string
)

// NewRouteCmd creates the route command
func NewRouteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route [text]",
		Short: "Route a signal through the cortex pipeline",
		Long: `Route one ambient signal and print the decision.

Examples:
  cortex route "continente 45 euros"
  cortex route --user harper "lembra-me de pagar a renda"
  echo "comprei 0.5 btc a 60000" | cortex route`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRoute,
	}

	cmd.Flags().StringVar(&routeUser, "user", "default", "User the signal belongs to")
	cmd.Flags().StringVar(&routeType, "type", "text", "Signal type: text, voice, ocr")
	cmd.Flags().StringVar(&routeChannel, "channel", "api", "Channel: chat, capture, api")

	return cmd
}

func runRoute(cmd *cobra.Command, args []string) error {
	var text string
	if len(args) > 0 {
		text = args[0]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		text = strings.TrimSpace(string(data))
	}
	if text == "" {
		return fmt.Errorf("no signal text provided")
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := rt.router.Route(cmd.Context(), models.SignalEnvelope{
		UserID:     routeUser,
		SignalType: models.SignalType(routeType),
		Channel:    models.Channel(routeChannel),
		RawText:    text,
	})
	if err != nil {
		return fmt.Errorf("routing failed: %w", err)
	}

	if format == "json" {
		return printJSON(cmd, result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Signal:     %s\n", result.RawSignalID)
	fmt.Fprintf(out, "Module:     %s\n", result.Route)
	fmt.Fprintf(out, "Strategy:   %s\n", result.Strategy)
	fmt.Fprintf(out, "Confidence: %.2f\n", result.Confidence)
	fmt.Fprintf(out, "Next:       %s\n", result.NextAction)
	if result.ClarificationPrompt != "" {
		fmt.Fprintf(out, "Clarify:    %s\n", result.ClarificationPrompt)
	}
	if verbose && len(result.Reason) > 0 {
		fmt.Fprintf(out, "Reason:     %s\n", strings.Join(result.Reason, "; "))
	}
	return nil
}
