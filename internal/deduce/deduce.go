// ABOUTME: Silent cross-domain deduction rules run during tactical reflex
// ABOUTME: Fixed rule table, no LLM involvement, failures never block routing
package deduce

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/harper/cortex-standalone/internal/models"
)

// DeductionSink persists deductions into the audit ledger
type DeductionSink interface {
	PersistDeductions(ctx context.Context, deductions []models.Deduction) error
}

// Deducer applies the fixed cross-domain rule table
type Deducer struct {
	sink DeductionSink
}

// New creates a deducer backed by the given sink
func New(sink DeductionSink) *Deducer {
	return &Deducer{sink: sink}
}

var readLaterMarkers = []string{"ler depois", "ler mais tarde", "read later", "guardar para ler"}

// Deduce runs every rule matching the module and returns the inferences.
// Rules are deliberately conservative: each fires on one unambiguous cue.
func (d *Deducer) Deduce(ctx context.Context, module models.Module, draft *models.ModuleDraft, rawText, userID string) ([]models.Deduction, error) {
	if draft == nil {
		return nil, nil
	}

	var deductions []models.Deduction

	switch module {
	case models.ModuleFinance:
		if draft.Finance != nil && draft.Finance.Category == "Saúde" {
			deductions = append(deductions, models.Deduction{
				ID:           uuid.New().String(),
				UserID:       userID,
				SourceModule: models.ModuleFinance,
				TargetModule: models.ModuleTodo,
				Summary:      fmt.Sprintf("despesa de saúde em %s; possível acompanhamento de bem-estar", draft.Finance.Merchant),
				Confidence:   0.5,
			})
		}
	case models.ModuleCrypto:
		if draft.Crypto != nil && draft.Crypto.Side == "buy" && draft.Crypto.Quantity != nil && draft.Crypto.Price != nil {
			cost := *draft.Crypto.Quantity * *draft.Crypto.Price
			deductions = append(deductions, models.Deduction{
				ID:           uuid.New().String(),
				UserID:       userID,
				SourceModule: models.ModuleCrypto,
				TargetModule: models.ModuleFinance,
				Summary:      fmt.Sprintf("compra de %s equivale a uma despesa de %.2f", draft.Crypto.Symbol, cost),
				Confidence:   0.7,
			})
		}
	case models.ModuleLinks:
		if draft.Link != nil && containsAny(strings.ToLower(rawText), readLaterMarkers) {
			deductions = append(deductions, models.Deduction{
				ID:           uuid.New().String(),
				UserID:       userID,
				SourceModule: models.ModuleLinks,
				TargetModule: models.ModuleTodo,
				Summary:      fmt.Sprintf("link guardado para ler: %s", draft.Link.URL),
				Confidence:   0.6,
			})
		}
	}

	return deductions, nil
}

// PersistDeductions writes the inferences through the sink
func (d *Deducer) PersistDeductions(ctx context.Context, deductions []models.Deduction) error {
	if len(deductions) == 0 {
		return nil
	}
	if err := d.sink.PersistDeductions(ctx, deductions); err != nil {
		return fmt.Errorf("persisting deductions: %w", err)
	}
	return nil
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
