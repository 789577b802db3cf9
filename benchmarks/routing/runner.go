// ABOUTME: Offline benchmark runner for the routing pipeline
// ABOUTME: In-memory ledger, heuristic dispatcher, no network collaborators
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/harper/cortex-standalone/internal/config"
	"github.com/harper/cortex-standalone/internal/core"
	"github.com/harper/cortex-standalone/internal/deduce"
	"github.com/harper/cortex-standalone/internal/heuristics"
	"github.com/harper/cortex-standalone/internal/models"
	"github.com/harper/cortex-standalone/internal/risk"
	"github.com/harper/cortex-standalone/internal/storage/sqlite"
)

const benchmarkUser = "benchmark"

// Result is one fixture's routing outcome
type Result struct {
	Fixture     Fixture         `json:"fixture"`
	GotModule   models.Module   `json:"got_module"`
	GotStrategy models.Strategy `json:"got_strategy"`
	NextAction  string          `json:"next_action"`
	Confidence  float64         `json:"confidence"`
}

// Runner drives fixtures through the offline pipeline
type Runner struct {
	db      *sqlite.DB
	router  *core.Router
	verbose bool
}

// NewRunner builds the offline pipeline: in-memory ledger, heuristic
// dispatcher, local risk gate. No charm store, no LLM - deep dives fall
// through to the safety net or conversational default, which is exactly
// the floor this benchmark measures.
func NewRunner(verbose bool) (*Runner, error) {
	cfg := config.Default()

	db, err := sqlite.OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("opening in-memory ledger: %w", err)
	}

	ledger := sqlite.NewLedger(db)
	router := core.NewRouter(cfg, core.Deps{
		Ledger:     ledger,
		Dispatcher: heuristics.New(cfg),
		Deducer:    deduce.New(ledger),
		Gate:       risk.NewGate(ledger),
	})

	return &Runner{db: db, router: router, verbose: verbose}, nil
}

// Close releases the in-memory database
func (r *Runner) Close() error {
	r.router.WaitBackground()
	return r.db.Close()
}

// Run routes every fixture and collects results
func (r *Runner) Run(ctx context.Context, fixtures []Fixture) ([]Result, error) {
	results := make([]Result, 0, len(fixtures))

	for _, fixture := range fixtures {
		routed, err := r.router.Route(ctx, models.SignalEnvelope{
			UserID:     benchmarkUser,
			SignalType: fixture.SignalType,
			Channel:    models.ChannelAPI,
			RawText:    fixture.Text,
			OcrTrace:   fixture.OcrTrace,
		})
		if err != nil {
			return nil, fmt.Errorf("routing fixture %s: %w", fixture.ID, err)
		}

		result := Result{
			Fixture:     fixture,
			GotModule:   routed.Route,
			GotStrategy: routed.Strategy,
			NextAction:  routed.NextAction,
			Confidence:  routed.Confidence,
		}
		results = append(results, result)

		if r.verbose {
			status := "ok"
			if result.GotModule != fixture.ExpectedModule {
				status = "MISS"
			}
			fmt.Printf("  [%s] %-22s -> %s (%s, %.2f)\n",
				status, fixture.ID, result.GotModule, result.GotStrategy, result.Confidence)
		}
	}

	return results, nil
}

// ExportReport writes the report as indented JSON
func ExportReport(report *Report, path string) error {
	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("writing report to %s: %w", path, err)
	}
	return nil
}
