// ABOUTME: Module draft union carried from draft building to commit/clarify
// ABOUTME: Exactly one variant is set, keyed by Module
package models

import (
	"fmt"
	"math"
	"time"
)

// FinanceDraft is an expense entry awaiting commit
type FinanceDraft struct {
	Merchant    string  `json:"merchant"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
}

// TodoDraft is a task awaiting commit
type TodoDraft struct {
	Title    string     `json:"title"`
	Priority string     `json:"priority"`
	DueDate  *time.Time `json:"due_date,omitempty"`
	Notes    string     `json:"notes,omitempty"`
}

// CryptoDraft is a portfolio operation awaiting commit
type CryptoDraft struct {
	Symbol   string   `json:"symbol"`
	Side     string   `json:"side"`
	Quantity *float64 `json:"quantity,omitempty"`
	Price    *float64 `json:"price,omitempty"`
}

// LinkDraft is a saved-link entry awaiting commit
type LinkDraft struct {
	URL   string   `json:"url"`
	Title string   `json:"title,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// ModuleDraft is the tagged union over the four draft shapes.
// The variant matching Module must be non-nil and all others nil.
type ModuleDraft struct {
	Module              Module        `json:"module"`
	Confidence          float64       `json:"confidence"`
	StrictParametersMet bool          `json:"strict_parameters_met"`
	Finance             *FinanceDraft `json:"finance,omitempty"`
	Todo                *TodoDraft    `json:"todo,omitempty"`
	Crypto              *CryptoDraft  `json:"crypto,omitempty"`
	Link                *LinkDraft    `json:"link,omitempty"`
}

// Validate checks the union invariant and draft-level field sanity.
// A non-finite amount is a validation failure, not a panic.
func (d *ModuleDraft) Validate() error {
	switch d.Module {
	case ModuleFinance:
		if d.Finance == nil {
			return fmt.Errorf("finance draft missing finance variant")
		}
		if d.Todo != nil || d.Crypto != nil || d.Link != nil {
			return fmt.Errorf("finance draft carries extra variants")
		}
		if math.IsNaN(d.Finance.Amount) || math.IsInf(d.Finance.Amount, 0) {
			return fmt.Errorf("finance draft amount is not finite")
		}
	case ModuleTodo:
		if d.Todo == nil {
			return fmt.Errorf("todo draft missing todo variant")
		}
		if d.Finance != nil || d.Crypto != nil || d.Link != nil {
			return fmt.Errorf("todo draft carries extra variants")
		}
	case ModuleCrypto:
		if d.Crypto == nil {
			return fmt.Errorf("crypto draft missing crypto variant")
		}
		if d.Finance != nil || d.Todo != nil || d.Link != nil {
			return fmt.Errorf("crypto draft carries extra variants")
		}
	case ModuleLinks:
		if d.Link == nil {
			return fmt.Errorf("link draft missing link variant")
		}
		if d.Finance != nil || d.Todo != nil || d.Crypto != nil {
			return fmt.Errorf("link draft carries extra variants")
		}
	default:
		return fmt.Errorf("module %q cannot carry a draft", d.Module)
	}
	return nil
}
