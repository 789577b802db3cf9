// ABOUTME: Tests for benchmark metric aggregation
// ABOUTME: Precision/recall math and reflex agreement on synthetic results
package routing

import (
	"testing"

	"github.com/harper/cortex-standalone/internal/models"
)

func result(expected, got models.Module, expectReflex bool, strategy models.Strategy) Result {
	return Result{
		Fixture:     Fixture{ID: "synthetic", ExpectedModule: expected, ExpectReflex: expectReflex},
		GotModule:   got,
		GotStrategy: strategy,
	}
}

func TestBuildReport_AllCorrect(t *testing.T) {
	report := BuildReport([]Result{
		result(models.ModuleFinance, models.ModuleFinance, true, models.StrategyTacticalReflex),
		result(models.ModuleTodo, models.ModuleTodo, false, models.StrategySemanticDeepDive),
	})

	if report.Accuracy() != 1.0 {
		t.Errorf("expected accuracy 1.0, got %f", report.Accuracy())
	}
	if report.ReflexAgreement() != 1.0 {
		t.Errorf("expected reflex agreement 1.0, got %f", report.ReflexAgreement())
	}
	if report.PerModule[models.ModuleFinance].Precision() != 1.0 {
		t.Error("finance precision should be 1.0")
	}
}

func TestBuildReport_Misclassification(t *testing.T) {
	// A conversation signal mistaken for finance
	report := BuildReport([]Result{
		result(models.ModuleConversation, models.ModuleFinance, false, models.StrategySemanticDeepDive),
		result(models.ModuleFinance, models.ModuleFinance, true, models.StrategyTacticalReflex),
	})

	if report.Accuracy() != 0.5 {
		t.Errorf("expected accuracy 0.5, got %f", report.Accuracy())
	}

	finance := report.PerModule[models.ModuleFinance]
	if finance.Precision() != 0.5 {
		t.Errorf("finance precision = %f, want 0.5 (1 TP, 1 FP)", finance.Precision())
	}
	if finance.Recall() != 1.0 {
		t.Errorf("finance recall = %f, want 1.0", finance.Recall())
	}

	conversation := report.PerModule[models.ModuleConversation]
	if conversation.Recall() != 0.0 {
		t.Errorf("conversation recall = %f, want 0.0 (0 TP, 1 FN)", conversation.Recall())
	}
}

func TestBuildReport_ReflexDisagreement(t *testing.T) {
	report := BuildReport([]Result{
		result(models.ModuleFinance, models.ModuleFinance, true, models.StrategySemanticDeepDive),
	})

	if report.ModuleCorrect != 1 {
		t.Error("module should still count as correct")
	}
	if report.ReflexCorrect != 0 {
		t.Error("strategy mismatch must not count as reflex agreement")
	}
}

func TestStats_EmptyDenominators(t *testing.T) {
	stats := &ModuleStats{}
	if stats.Precision() != 1.0 {
		t.Errorf("never-predicted module precision = %f, want 1.0", stats.Precision())
	}
	if stats.Recall() != 1.0 {
		t.Errorf("never-labeled module recall = %f, want 1.0", stats.Recall())
	}
}
