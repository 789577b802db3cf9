// ABOUTME: Handshake resolution and memory indexing for confirmed actions
// ABOUTME: Approval executes and indexes; rejection only appends the audit row
package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/harper/cortex-standalone/internal/models"
)

// ResolutionLedger is the slice of the ledger the resolver needs beyond
// the router's write surface
type ResolutionLedger interface {
	GetRawSignal(ctx context.Context, rawSignalID string) (*models.RawSignal, error)
	LatestHandshake(ctx context.Context, rawSignalID string) (*models.StoredHandshakeEvent, error)
	LogHandshake(ctx context.Context, userID string, hs *models.Handshake) (*models.StoredHandshakeEvent, error)
}

// Resolver closes the pending-confirmation loop. Gate and memory are
// optional; resolution still records the outcome without them.
type Resolver struct {
	ledger ResolutionLedger
	memory MemoryStore
	gate   RiskGate
	drafts *DraftBuilder
}

// NewResolver wires the handshake resolution path
func NewResolver(ledger ResolutionLedger, memory MemoryStore, gate RiskGate, defaultCurrency string) *Resolver {
	return &Resolver{
		ledger: ledger,
		memory: memory,
		gate:   gate,
		drafts: NewDraftBuilder(defaultCurrency),
	}
}

// Resolve transitions the latest handshake for a signal to approved or
// rejected. Terminal handshakes refuse further transitions.
func (r *Resolver) Resolve(ctx context.Context, rawSignalID string, approve bool) (*models.StoredHandshakeEvent, error) {
	current, err := r.ledger.LatestHandshake(ctx, rawSignalID)
	if err != nil {
		return nil, fmt.Errorf("loading handshake for signal %s: %w", rawSignalID, err)
	}
	if current == nil {
		return nil, fmt.Errorf("no handshake found for signal %s", rawSignalID)
	}
	if current.Status.IsTerminal() {
		return nil, fmt.Errorf("handshake %s already resolved as %s", current.ID, current.Status)
	}

	status := models.HandshakeRejected
	if approve {
		status = models.HandshakeApproved
	}

	payload := clonePayload(current.Payload)
	draft := draftFromPayload(current.Module, payload, current.Confidence)

	if approve && r.gate != nil && draft != nil {
		execution, err := r.gate.Execute(ctx, current.UserID, current.Module, draft, current.Confidence)
		if err == nil && execution.Executed {
			payload["reference_id"] = execution.ReferenceID
		}
	}

	event, err := r.ledger.LogHandshake(ctx, current.UserID, &models.Handshake{
		RawSignalID: current.RawSignalID,
		Module:      current.Module,
		Status:      status,
		Confidence:  current.Confidence,
		Payload:     payload,
	})
	if err != nil {
		return nil, fmt.Errorf("ledger handshake write failed: %w", err)
	}

	if approve && r.memory != nil && draft != nil {
		if signal, err := r.ledger.GetRawSignal(ctx, rawSignalID); err == nil && signal != nil {
			for _, entry := range DeriveMemories(signal, draft) {
				e := entry
				if err := r.memory.StoreMemory(ctx, &e); err != nil {
					// Indexing is best-effort; the resolution already stands
					break
				}
			}
		}
	}

	return event, nil
}

// DeriveMemories maps a committed draft to the memory entries worth
// learning from it. Always includes a past_context entry with the
// signal's normalized text.
func DeriveMemories(signal *models.RawSignal, draft *models.ModuleDraft) []models.MemoryEntry {
	var entries []models.MemoryEntry

	switch draft.Module {
	case models.ModuleFinance:
		if draft.Finance != nil && draft.Finance.Merchant != "" {
			entries = append(entries, models.MemoryEntry{
				Kind: models.MemoryRecurringMerchant,
				Text: fmt.Sprintf("%s %s %.2f %s",
					NormalizeText(draft.Finance.Merchant), draft.Finance.Category,
					draft.Finance.Amount, draft.Finance.Currency),
				Metadata: map[string]string{
					"merchant": NormalizeText(draft.Finance.Merchant),
					"category": draft.Finance.Category,
					"amount":   fmt.Sprintf("%.2f", draft.Finance.Amount),
				},
			})
		}
		if signal.SignalType == models.SignalTypeOCR && draft.Finance != nil {
			entries = append(entries, models.MemoryEntry{
				Kind: models.MemoryOcrContext,
				Text: fmt.Sprintf("receipt %s %.2f %s", NormalizeText(draft.Finance.Merchant),
					draft.Finance.Amount, draft.Finance.Currency),
				Metadata: map[string]string{"merchant": NormalizeText(draft.Finance.Merchant)},
			})
		}
	case models.ModuleTodo:
		if draft.Todo != nil && draft.Todo.Title != "" {
			entries = append(entries, models.MemoryEntry{
				Kind:     models.MemoryCompletedTask,
				Text:     NormalizeText(draft.Todo.Title),
				Metadata: map[string]string{"priority": draft.Todo.Priority},
			})
		}
	}

	entries = append(entries, models.MemoryEntry{
		Kind:     models.MemoryPastContext,
		Text:     signal.NormalizedText,
		Metadata: map[string]string{"signal_id": signal.ID, "module": string(draft.Module)},
	})
	return entries
}

// draftFromPayload rebuilds the draft union from a handshake payload.
// Returns nil when the payload carries no recognizable variant.
func draftFromPayload(module models.Module, payload map[string]interface{}, confidence float64) *models.ModuleDraft {
	draft := &models.ModuleDraft{Module: module, Confidence: confidence}
	switch module {
	case models.ModuleFinance:
		sub, ok := subPayload(payload, "finance")
		if !ok {
			return nil
		}
		draft.Finance = &models.FinanceDraft{
			Merchant:    stringField(sub, "merchant"),
			Amount:      floatField(sub, "amount"),
			Currency:    stringField(sub, "currency"),
			Category:    stringField(sub, "category"),
			Description: stringField(sub, "description"),
		}
	case models.ModuleTodo:
		sub, ok := subPayload(payload, "todo")
		if !ok {
			return nil
		}
		draft.Todo = &models.TodoDraft{
			Title:    stringField(sub, "title"),
			Priority: stringField(sub, "priority"),
			Notes:    stringField(sub, "notes"),
		}
	case models.ModuleCrypto:
		sub, ok := subPayload(payload, "crypto")
		if !ok {
			return nil
		}
		crypto := &models.CryptoDraft{
			Symbol: strings.ToUpper(stringField(sub, "symbol")),
			Side:   stringField(sub, "side"),
		}
		if q, ok := sub["quantity"].(float64); ok {
			crypto.Quantity = &q
		}
		if p, ok := sub["price"].(float64); ok {
			crypto.Price = &p
		}
		draft.Crypto = crypto
	case models.ModuleLinks:
		sub, ok := subPayload(payload, "link")
		if !ok {
			return nil
		}
		draft.Link = &models.LinkDraft{
			URL:   stringField(sub, "url"),
			Title: stringField(sub, "title"),
		}
	default:
		return nil
	}
	if err := draft.Validate(); err != nil {
		return nil
	}
	return draft
}

func subPayload(payload map[string]interface{}, key string) (map[string]interface{}, bool) {
	if payload == nil {
		return nil, false
	}
	sub, ok := payload[key].(map[string]interface{})
	return sub, ok
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func floatField(m map[string]interface{}, key string) float64 {
	f, _ := m[key].(float64)
	return f
}

func clonePayload(payload map[string]interface{}) map[string]interface{} {
	cloned := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		cloned[k] = v
	}
	return cloned
}
