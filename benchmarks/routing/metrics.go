// ABOUTME: Per-module precision/recall and reflex-rate metrics
// ABOUTME: Deterministic evaluation against labeled fixtures
package routing

import (
	"sort"

	"github.com/harper/cortex-standalone/internal/models"
)

// ModuleStats accumulates confusion counts for one module
type ModuleStats struct {
	TruePositives  int `json:"true_positives"`
	FalsePositives int `json:"false_positives"`
	FalseNegatives int `json:"false_negatives"`
}

// Precision is TP / (TP + FP); 1.0 when the module was never predicted
func (s *ModuleStats) Precision() float64 {
	predicted := s.TruePositives + s.FalsePositives
	if predicted == 0 {
		return 1.0
	}
	return float64(s.TruePositives) / float64(predicted)
}

// Recall is TP / (TP + FN); 1.0 when the module never appeared
func (s *ModuleStats) Recall() float64 {
	labeled := s.TruePositives + s.FalseNegatives
	if labeled == 0 {
		return 1.0
	}
	return float64(s.TruePositives) / float64(labeled)
}

// Report is the aggregated benchmark outcome
type Report struct {
	Total         int                            `json:"total"`
	ModuleCorrect int                            `json:"module_correct"`
	ReflexCorrect int                            `json:"reflex_correct"`
	PerModule     map[models.Module]*ModuleStats `json:"per_module"`
	Results       []Result                       `json:"results"`
}

// Accuracy is the fraction of signals routed to the right module
func (r *Report) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.ModuleCorrect) / float64(r.Total)
}

// ReflexAgreement is the fraction of signals whose strategy matched the label
func (r *Report) ReflexAgreement() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.ReflexCorrect) / float64(r.Total)
}

// Modules returns the modules present in the report, sorted for stable output
func (r *Report) Modules() []models.Module {
	modules := make([]models.Module, 0, len(r.PerModule))
	for m := range r.PerModule {
		modules = append(modules, m)
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i] < modules[j] })
	return modules
}

// BuildReport aggregates individual results into the report
func BuildReport(results []Result) *Report {
	report := &Report{
		Total:     len(results),
		PerModule: make(map[models.Module]*ModuleStats),
		Results:   results,
	}

	stats := func(m models.Module) *ModuleStats {
		if report.PerModule[m] == nil {
			report.PerModule[m] = &ModuleStats{}
		}
		return report.PerModule[m]
	}

	for _, result := range results {
		if result.GotModule == result.Fixture.ExpectedModule {
			report.ModuleCorrect++
			stats(result.GotModule).TruePositives++
		} else {
			stats(result.GotModule).FalsePositives++
			stats(result.Fixture.ExpectedModule).FalseNegatives++
		}

		gotReflex := result.GotStrategy == models.StrategyTacticalReflex
		if gotReflex == result.Fixture.ExpectReflex {
			report.ReflexCorrect++
		}
	}

	return report
}
