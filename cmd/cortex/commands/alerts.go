// ABOUTME: CLI command to generate and deliver proactive alerts
// ABOUTME: Spend spikes and tasks due soon, deduplicated per period
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var alertsUser string

// NewAlertsCmd creates the alerts command
func NewAlertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Generate and show pending alerts",
		Long: `Run alert generation (spend spikes against last month, tasks due
within the configured window) and print every pending alert. Printed
alerts are marked delivered and will not repeat.

Examples:
  cortex alerts
  cortex alerts --user harper --format json`,
		RunE: runAlerts,
	}

	cmd.Flags().StringVar(&alertsUser, "user", "default", "User whose alerts to check")

	return cmd
}

func runAlerts(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	generated, err := rt.briefing.GenerateAlerts(ctx, alertsUser)
	if err != nil {
		return fmt.Errorf("generating alerts: %w", err)
	}
	if verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "Generated %d new alert(s)\n", generated)
	}

	alerts, err := rt.briefing.ConsumeAlerts(ctx, alertsUser)
	if err != nil {
		return fmt.Errorf("consuming alerts: %w", err)
	}

	if format == "json" {
		return printJSON(cmd, alerts)
	}

	out := cmd.OutOrStdout()
	if len(alerts) == 0 {
		if !quiet {
			fmt.Fprintln(out, "No pending alerts")
		}
		return nil
	}
	for _, alert := range alerts {
		fmt.Fprintf(out, "[%s] %s\n", alert.Kind, alert.Title)
		if alert.Message != "" {
			fmt.Fprintf(out, "  %s\n", truncate(alert.Message, 120))
		}
	}
	return nil
}
