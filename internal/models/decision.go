// ABOUTME: Dispatcher decision types shared by the heuristic and LLM layers
// ABOUTME: Defines modules, strategies, and the extracted field set
package models

// Module is a business module a signal can route to
type Module string

const (
	ModuleFinance      Module = "finance"
	ModuleTodo         Module = "todo"
	ModuleCrypto       Module = "crypto"
	ModuleLinks        Module = "links"
	ModuleConversation Module = "conversation"
)

// IsActionable reports whether the module carries a business action.
// The conversational module short-circuits the routing pipeline.
func (m Module) IsActionable() bool {
	return m == ModuleFinance || m == ModuleTodo || m == ModuleCrypto || m == ModuleLinks
}

// Strategy is the routing path chosen for a signal
type Strategy string

const (
	// StrategyTacticalReflex - confident, complete extraction; no LLM call
	StrategyTacticalReflex Strategy = "tactical_reflex"

	// StrategySemanticDeepDive - retrieval + LLM fallback for ambiguous signals
	StrategySemanticDeepDive Strategy = "semantic_deep_dive"
)

// ExtractedFields holds every entity any module can extract.
// Pointer numerics distinguish "absent" from zero.
type ExtractedFields struct {
	Merchant     string   `json:"merchant,omitempty"`
	Amount       *float64 `json:"amount,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	Description  string   `json:"description,omitempty"`
	TodoTitle    string   `json:"todo_title,omitempty"`
	DueHint      string   `json:"due_hint,omitempty"`
	CryptoSymbol string   `json:"crypto_symbol,omitempty"`
	CryptoSide   string   `json:"crypto_side,omitempty"`
	Quantity     *float64 `json:"quantity,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	URL          string   `json:"url,omitempty"`
	LinkTitle    string   `json:"link_title,omitempty"`
}

// DispatcherDecision is the baseline (or refined) classification of a signal
type DispatcherDecision struct {
	Module              Module          `json:"module"`
	Strategy            Strategy        `json:"strategy"`
	Confidence          float64         `json:"confidence"`
	StrictParametersMet bool            `json:"strict_parameters_met"`
	Fields              ExtractedFields `json:"fields"`
	Reason              []string        `json:"reason,omitempty"`
}

// ResolveStrategy recomputes the strategy invariant: tactical_reflex only
// when confidence clears the reflex threshold and all strict parameters
// were extracted.
func ResolveStrategy(confidence float64, strictParametersMet bool, reflexThreshold float64) Strategy {
	if strictParametersMet && confidence >= reflexThreshold {
		return StrategyTacticalReflex
	}
	return StrategySemanticDeepDive
}
