// ABOUTME: CLI command to print the daily briefing
// ABOUTME: Up to three prioritized items, cached per user per day
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	briefingUser  string
	briefingForce bool
)

// NewBriefingCmd creates the briefing command
func NewBriefingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "briefing",
		Short: "Show the daily briefing",
		Long: `Show today's briefing: overdue tasks, pending handshakes, and
spending deltas, in that order, at most three items. Cached until the
end of the day.

Examples:
  cortex briefing
  cortex briefing --force`,
		RunE: runBriefing,
	}

	cmd.Flags().StringVar(&briefingUser, "user", "default", "User to brief")
	cmd.Flags().BoolVar(&briefingForce, "force", false, "Regenerate even if cached")

	return cmd
}

func runBriefing(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	briefing, err := rt.briefing.GetDailyBriefing(cmd.Context(), briefingUser, briefingForce)
	if err != nil {
		return fmt.Errorf("building briefing: %w", err)
	}

	if format == "json" {
		return printJSON(cmd, briefing)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Briefing for %s (%s)\n", briefing.UserID, briefing.BriefingDate)
	for i, priority := range briefing.TopPriorities {
		fmt.Fprintf(out, "%d. [%s] %s\n", i+1, priority.Kind, priority.Title)
		if priority.Detail != "" {
			fmt.Fprintf(out, "   %s\n", priority.Detail)
		}
	}
	return nil
}
