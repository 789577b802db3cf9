// ABOUTME: Tests for the auto-commit risk gate and local executor
// ABOUTME: Uses an in-memory action sink, no database required
package risk

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/harper/cortex-standalone/internal/models"
)

type memorySink struct {
	actions []*models.CommittedAction
}

func (s *memorySink) InsertCommittedAction(_ context.Context, action *models.CommittedAction) error {
	s.actions = append(s.actions, action)
	return nil
}

func financeDraft(amount float64) *models.ModuleDraft {
	return &models.ModuleDraft{
		Module:              models.ModuleFinance,
		Confidence:          0.9,
		StrictParametersMet: true,
		Finance: &models.FinanceDraft{
			Merchant: "continente",
			Amount:   amount,
			Currency: "EUR",
			Category: "Alimentação",
		},
	}
}

func TestShouldAutoCommit_SmallFinanceIsLowTier(t *testing.T) {
	g := NewGate(&memorySink{})

	decision, err := g.ShouldAutoCommit(context.Background(), models.ModuleFinance, financeDraft(12), 0.9, true)
	if err != nil {
		t.Fatalf("ShouldAutoCommit failed: %v", err)
	}
	if decision.RiskTier != TierLow {
		t.Errorf("expected low tier, got %s", decision.RiskTier)
	}
	if decision.DynamicThreshold != 0.80 {
		t.Errorf("expected base threshold 0.80, got %f", decision.DynamicThreshold)
	}
	if !decision.AutoCommit {
		t.Error("expected auto-commit for low-tier strict draft above threshold")
	}
}

func TestShouldAutoCommit_AmountBandsRaiseTier(t *testing.T) {
	g := NewGate(&memorySink{})
	ctx := context.Background()

	medium, _ := g.ShouldAutoCommit(ctx, models.ModuleFinance, financeDraft(80), 0.9, true)
	if medium.RiskTier != TierMedium {
		t.Errorf("expected medium tier at 80, got %s", medium.RiskTier)
	}
	if math.Abs(medium.DynamicThreshold-0.90) > 1e-9 {
		t.Errorf("expected tightened threshold 0.90, got %f", medium.DynamicThreshold)
	}
	if medium.AutoCommit {
		t.Error("medium tier must hold the commit for a handshake")
	}

	high, _ := g.ShouldAutoCommit(ctx, models.ModuleFinance, financeDraft(500), 0.99, true)
	if high.RiskTier != TierHigh {
		t.Errorf("expected high tier at 500, got %s", high.RiskTier)
	}
	if high.AutoCommit {
		t.Error("high tier must never auto-commit")
	}
}

func TestShouldAutoCommit_CryptoAlwaysHigh(t *testing.T) {
	g := NewGate(&memorySink{})
	quantity := 0.5
	price := 60000.0
	draft := &models.ModuleDraft{
		Module: models.ModuleCrypto,
		Crypto: &models.CryptoDraft{Symbol: "BTC", Side: "buy", Quantity: &quantity, Price: &price},
	}

	decision, err := g.ShouldAutoCommit(context.Background(), models.ModuleCrypto, draft, 1.0, true)
	if err != nil {
		t.Fatalf("ShouldAutoCommit failed: %v", err)
	}
	if decision.RiskTier != TierHigh {
		t.Errorf("expected high tier, got %s", decision.RiskTier)
	}
	if decision.AutoCommit {
		t.Error("crypto must never auto-commit, even at full confidence")
	}
}

func TestShouldAutoCommit_StrictRequired(t *testing.T) {
	g := NewGate(&memorySink{})

	decision, err := g.ShouldAutoCommit(context.Background(), models.ModuleTodo, &models.ModuleDraft{
		Module: models.ModuleTodo,
		Todo:   &models.TodoDraft{Title: "pagar renda", Priority: "medium"},
	}, 0.95, false)
	if err != nil {
		t.Fatalf("ShouldAutoCommit failed: %v", err)
	}
	if decision.AutoCommit {
		t.Error("incomplete parameters must force a handshake regardless of confidence")
	}
}

func TestExecute_FlattensFinanceDraft(t *testing.T) {
	sink := &memorySink{}
	g := NewGate(sink)

	result, err := g.Execute(context.Background(), "user-1", models.ModuleFinance, financeDraft(12), 0.9)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Executed {
		t.Error("expected executed result")
	}
	if result.ReferenceID == "" {
		t.Error("expected a reference id")
	}

	if len(sink.actions) != 1 {
		t.Fatalf("expected 1 recorded action, got %d", len(sink.actions))
	}
	action := sink.actions[0]
	if action.ID != result.ReferenceID {
		t.Error("reference id must be the recorded action id")
	}
	if action.Merchant != "continente" || action.Amount != 12 || action.Category != "Alimentação" {
		t.Errorf("unexpected flattened fields: %+v", action)
	}

	var roundTrip models.ModuleDraft
	if err := json.Unmarshal([]byte(action.Payload), &roundTrip); err != nil {
		t.Fatalf("payload is not valid draft json: %v", err)
	}
	if roundTrip.Finance == nil || roundTrip.Finance.Merchant != "continente" {
		t.Error("payload must round-trip the full draft")
	}
}

func TestExecute_RejectsConversation(t *testing.T) {
	g := NewGate(&memorySink{})

	_, err := g.Execute(context.Background(), "user-1", models.ModuleConversation, &models.ModuleDraft{}, 0.9)
	if err == nil {
		t.Fatal("expected error for non-executable module")
	}
}
