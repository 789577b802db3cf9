// ABOUTME: Auto-commit risk gate with per-module thresholds and amount bands
// ABOUTME: Includes the local executor that records committed actions in the ledger
package risk

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/harper/cortex-standalone/internal/core"
	"github.com/harper/cortex-standalone/internal/models"
)

// Risk tiers ordered from most to least autonomous
const (
	TierLow    = "low"
	TierMedium = "medium"
	TierHigh   = "high"
)

// Per-module base thresholds. Amount bands raise these further.
var baseThresholds = map[models.Module]float64{
	models.ModuleFinance: 0.80,
	models.ModuleTodo:    0.75,
	models.ModuleCrypto:  0.95,
	models.ModuleLinks:   0.70,
}

// Finance amount bands (in the draft's own currency)
const (
	financeMediumAmount = 50.0
	financeHighAmount   = 200.0
)

// ActionSink records an executed action in the audit ledger
type ActionSink interface {
	InsertCommittedAction(ctx context.Context, action *models.CommittedAction) error
}

// Gate is the default auto-commit policy plus local executor
type Gate struct {
	sink ActionSink
}

// NewGate creates a gate that executes actions against the given sink
func NewGate(sink ActionSink) *Gate {
	return &Gate{sink: sink}
}

// ShouldAutoCommit evaluates the tiered policy. Only low-tier drafts
// with strict parameters and confidence above the dynamic threshold
// execute without a handshake.
func (g *Gate) ShouldAutoCommit(ctx context.Context, module models.Module, draft *models.ModuleDraft, confidence float64, strict bool) (core.GateDecision, error) {
	tier := tierFor(module, draft)
	threshold := dynamicThreshold(module, tier)

	decision := core.GateDecision{
		RiskTier:         tier,
		DynamicThreshold: threshold,
	}
	decision.AutoCommit = strict && tier == TierLow && confidence >= threshold
	return decision, nil
}

// Execute flattens the draft into a committed action row and returns
// its id as the external reference.
func (g *Gate) Execute(ctx context.Context, userID string, module models.Module, draft *models.ModuleDraft, confidence float64) (core.ExecutionResult, error) {
	if draft == nil {
		return core.ExecutionResult{}, fmt.Errorf("executing %s action: nil draft", module)
	}

	action := &models.CommittedAction{
		ID:     uuid.New().String(),
		UserID: userID,
		Module: module,
	}

	switch module {
	case models.ModuleFinance:
		action.Merchant = draft.Finance.Merchant
		action.Amount = draft.Finance.Amount
		action.Currency = draft.Finance.Currency
		action.Category = draft.Finance.Category
	case models.ModuleTodo:
		action.Title = draft.Todo.Title
	case models.ModuleCrypto:
		action.Title = draft.Crypto.Side + " " + draft.Crypto.Symbol
	case models.ModuleLinks:
		action.Title = draft.Link.Title
	default:
		return core.ExecutionResult{}, fmt.Errorf("executing action: module %q is not executable", module)
	}

	payload, err := json.Marshal(draft)
	if err != nil {
		return core.ExecutionResult{}, fmt.Errorf("encoding %s action payload: %w", module, err)
	}
	action.Payload = string(payload)

	if err := g.sink.InsertCommittedAction(ctx, action); err != nil {
		return core.ExecutionResult{}, fmt.Errorf("recording %s action: %w", module, err)
	}

	return core.ExecutionResult{Executed: true, ReferenceID: action.ID}, nil
}

// tierFor maps a draft onto a risk tier. Crypto is always high; finance
// climbs with the amount; everything else defaults to its module floor.
func tierFor(module models.Module, draft *models.ModuleDraft) string {
	switch module {
	case models.ModuleCrypto:
		return TierHigh
	case models.ModuleFinance:
		if draft == nil || draft.Finance == nil {
			return TierHigh
		}
		amount := draft.Finance.Amount
		switch {
		case amount >= financeHighAmount:
			return TierHigh
		case amount >= financeMediumAmount:
			return TierMedium
		default:
			return TierLow
		}
	case models.ModuleTodo, models.ModuleLinks:
		return TierLow
	default:
		return TierHigh
	}
}

// dynamicThreshold tightens the module base by tier
func dynamicThreshold(module models.Module, tier string) float64 {
	base, ok := baseThresholds[module]
	if !ok {
		return 1.0
	}
	switch tier {
	case TierMedium:
		return base + 0.10
	case TierHigh:
		return 1.0
	default:
		return base
	}
}
