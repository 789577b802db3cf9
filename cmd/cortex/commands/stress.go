// ABOUTME: CLI command to score text on the stress lexicon
// ABOUTME: Read-only diagnostic, nothing is logged to the ledger
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/cortex-standalone/internal/config"
	"github.com/harper/cortex-standalone/internal/core"
)

// NewStressCmd creates the stress command
func NewStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress [text]",
		Short: "Score text on the stress lexicon",
		Long: `Score free text into urgency, frustration, fatigue, and overwhelm
dimensions, and print the resulting governance directive.

Examples:
  cortex stress "SOCORRO!!! nao consigo mais"
  echo "tudo calmo por aqui" | cortex stress`,
		Args: cobra.MaximumNArgs(1),
		RunE: runStress,
	}

	return cmd
}

func runStress(cmd *cobra.Command, args []string) error {
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
		return fmt.Errorf("no text provided")
	}

	// Scoring is pure; no runtime (database, charm) needed
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	profile := core.NewStressScorer(cfg).Score(text, nil)

	if format == "json" {
		return printJSON(cmd, profile)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Level:       %s (%.2f)\n", profile.Level, profile.Composite)
	fmt.Fprintf(out, "Urgency:     %.2f\n", profile.Dimensions.Urgency)
	fmt.Fprintf(out, "Frustration: %.2f\n", profile.Dimensions.Frustration)
	fmt.Fprintf(out, "Fatigue:     %.2f\n", profile.Dimensions.Fatigue)
	fmt.Fprintf(out, "Overwhelm:   %.2f\n", profile.Dimensions.Overwhelm)
	fmt.Fprintf(out, "Tone:        %s\n", profile.Governance.TonePrescription)
	if profile.Governance.SummarizeInstead {
		fmt.Fprintln(out, "Directive:   summarize instead of detailing")
	}
	if verbose && len(profile.Signals) > 0 {
		fmt.Fprintf(out, "Signals:     %s\n", strings.Join(profile.Signals, ", "))
	}
	return nil
}
