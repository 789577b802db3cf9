// ABOUTME: Tests for strategy resolution and handshake status transitions
// ABOUTME: Verifies the reflex invariant and terminal-state checks
package models

import "testing"

func TestResolveStrategy_ReflexRequiresBoth(t *testing.T) {
	threshold := 0.75

	if got := ResolveStrategy(0.9, true, threshold); got != StrategyTacticalReflex {
		t.Errorf("ResolveStrategy(0.9, true) = %v, want tactical_reflex", got)
	}
	if got := ResolveStrategy(0.9, false, threshold); got != StrategySemanticDeepDive {
		t.Errorf("ResolveStrategy(0.9, false) = %v, want semantic_deep_dive", got)
	}
	if got := ResolveStrategy(0.5, true, threshold); got != StrategySemanticDeepDive {
		t.Errorf("ResolveStrategy(0.5, true) = %v, want semantic_deep_dive", got)
	}
	// Exactly at threshold counts as meeting it
	if got := ResolveStrategy(threshold, true, threshold); got != StrategyTacticalReflex {
		t.Errorf("ResolveStrategy(threshold, true) = %v, want tactical_reflex", got)
	}
}

func TestHandshakeStatus_IsTerminal(t *testing.T) {
	terminal := []HandshakeStatus{HandshakeApproved, HandshakeRejected, HandshakeAutoCommitted}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%v.IsTerminal() = false, want true", s)
		}
	}
	open := []HandshakeStatus{HandshakePendingConfirmation, HandshakeClarifying}
	for _, s := range open {
		if s.IsTerminal() {
			t.Errorf("%v.IsTerminal() = true, want false", s)
		}
	}
}

func TestHandshakeNextAction(t *testing.T) {
	if got := HandshakeNextAction(ModuleFinance); got != "ambient_finance_handshake" {
		t.Errorf("HandshakeNextAction(finance) = %q", got)
	}
	if got := HandshakeNextAction(ModuleConversation); got != NextActionOpenConversation {
		t.Errorf("HandshakeNextAction(conversation) = %q", got)
	}
}

func TestAlertDedupeKey(t *testing.T) {
	a := AlertDedupeKey("u1", AlertCategorySpendSpike, "2026-08", "Alimentação")
	b := AlertDedupeKey("u1", AlertCategorySpendSpike, "2026-08", "Alimentação")
	c := AlertDedupeKey("u1", AlertCategorySpendSpike, "2026-09", "Alimentação")
	if a != b {
		t.Errorf("same inputs produced different keys: %q vs %q", a, b)
	}
	if a == c {
		t.Errorf("different periods produced the same key: %q", a)
	}
}
