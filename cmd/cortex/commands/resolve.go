// ABOUTME: CLI command to approve or reject a pending handshake
// ABOUTME: Approval executes the drafted action and indexes memories
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resolveReject bool

// NewResolveCmd creates the resolve command
func NewResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <raw-signal-id>",
		Short: "Approve or reject a pending handshake",
		Long: `Resolve the pending handshake for a signal.

Approval executes the drafted action; rejection only records the
decision. Either way the handshake becomes terminal.

Examples:
  cortex resolve 4f6b2c1a-...
  cortex resolve --reject 4f6b2c1a-...`,
		Args: cobra.ExactArgs(1),
		RunE: runResolve,
	}

	cmd.Flags().BoolVar(&resolveReject, "reject", false, "Reject instead of approve")

	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	event, err := rt.resolver.Resolve(cmd.Context(), args[0], !resolveReject)
	if err != nil {
		return fmt.Errorf("resolving handshake: %w", err)
	}

	if format == "json" {
		return printJSON(cmd, event)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Handshake:  %s\n", event.ID)
	fmt.Fprintf(out, "Module:     %s\n", event.Module)
	fmt.Fprintf(out, "Status:     %s\n", event.Status)
	if ref, ok := event.Payload["reference_id"].(string); ok && ref != "" {
		fmt.Fprintf(out, "Reference:  %s\n", ref)
	}
	return nil
}
