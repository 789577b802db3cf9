// ABOUTME: Router result and parsed-intent types, the router's output contract
// ABOUTME: CortexRouteResult is the sole shape external callers depend on
package models

// Next-action values returned to callers
const (
	NextActionAutoCommitted    = "auto_committed"
	NextActionClarification    = "clarification_needed"
	NextActionOpenConversation = "open_conversation"
)

// HandshakeNextAction returns the module-specific pending-confirmation action
func HandshakeNextAction(m Module) string {
	switch m {
	case ModuleFinance:
		return "ambient_finance_handshake"
	case ModuleTodo:
		return "ambient_todo_handshake"
	case ModuleCrypto:
		return "ambient_crypto_handshake"
	case ModuleLinks:
		return "ambient_link_handshake"
	default:
		return NextActionOpenConversation
	}
}

// RetrievalCounters expose observability about the deep-dive path
type RetrievalCounters struct {
	MemoryHits int  `json:"memory_hits"`
	LedgerRows int  `json:"ledger_rows"`
	CacheHit   bool `json:"cache_hit"`
	LLMCalls   int  `json:"llm_calls"`
}

// ParsedSemanticIntent is the LLM parser's (or cache's) interpretation
type ParsedSemanticIntent struct {
	Module              Module          `json:"module"`
	Confidence          float64         `json:"confidence"`
	StrictParametersMet bool            `json:"strict_parameters_met"`
	Fields              ExtractedFields `json:"fields"`
	Reason              string          `json:"reason,omitempty"`
}

// Deduction is one silent cross-domain inference
type Deduction struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	SourceModule Module  `json:"source_module"`
	TargetModule Module  `json:"target_module"`
	Summary      string  `json:"summary"`
	Confidence   float64 `json:"confidence"`
}

// CortexRouteResult is the router's single output per signal
type CortexRouteResult struct {
	RawSignalID         string            `json:"raw_signal_id"`
	Strategy            Strategy          `json:"strategy"`
	Route               Module            `json:"route"`
	Confidence          float64           `json:"confidence"`
	Reason              []string          `json:"reason"`
	StrictParametersMet bool              `json:"strict_parameters_met"`
	Retrieval           RetrievalCounters `json:"retrieval"`
	Draft               *ModuleDraft      `json:"draft,omitempty"`
	MissingFields       []string          `json:"missing_fields,omitempty"`
	ClarificationPrompt string            `json:"clarification_prompt,omitempty"`
	ContextMarkdown     string            `json:"context_markdown,omitempty"`
	NextAction          string            `json:"next_action"`
}
