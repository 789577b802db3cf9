// ABOUTME: Ambient signal router orchestrating dispatch, bias, reflex, and deep-dive paths
// ABOUTME: One routing decision per signal; degrades to conversation, never errors past the ledger
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harper/cortex-standalone/internal/config"
	"github.com/harper/cortex-standalone/internal/models"
)

// backgroundTimeout bounds fire-and-forget hook execution
const backgroundTimeout = 10 * time.Second

// Deps carries the router's collaborators. Ledger and Dispatcher are
// required; every other collaborator may be nil and the router degrades
// around it.
type Deps struct {
	Ledger         Ledger
	Memory         MemoryStore
	Dispatcher     Dispatcher
	Deducer        Deducer
	Gate           RiskGate
	Cache          SemanticCache
	Parser         SemanticParser
	ContextBuilder ContextBuilder
	Observer       Observer
}

// Router is the request-scoped decision core. Stateless between calls
// except for the hook-failure counter, which is per-instance.
type Router struct {
	cfg            *config.Config
	ledger         Ledger
	memory         MemoryStore
	dispatcher     Dispatcher
	deducer        Deducer
	gate           RiskGate
	cache          SemanticCache
	parser         SemanticParser
	contextBuilder ContextBuilder
	observer       Observer

	bias   *FeedbackBias
	drafts *DraftBuilder
	stress *StressScorer

	bg           sync.WaitGroup
	hookFailures atomic.Int64
}

// NewRouter wires the decision core
func NewRouter(cfg *config.Config, deps Deps) *Router {
	builder := deps.ContextBuilder
	if builder == nil {
		builder = NewMarkdownContextBuilder()
	}
	return &Router{
		cfg:            cfg,
		ledger:         deps.Ledger,
		memory:         deps.Memory,
		dispatcher:     deps.Dispatcher,
		deducer:        deps.Deducer,
		gate:           deps.Gate,
		cache:          deps.Cache,
		parser:         deps.Parser,
		contextBuilder: builder,
		observer:       deps.Observer,
		bias:           NewFeedbackBias(deps.Memory, cfg),
		drafts:         NewDraftBuilder(cfg.DefaultCurrency),
		stress:         NewStressScorer(cfg),
	}
}

// Route ingests one signal and returns the routing decision. The signal
// is logged to the ledger before anything else; ledger write failures are
// the only errors that propagate.
func (r *Router) Route(ctx context.Context, env models.SignalEnvelope) (*models.CortexRouteResult, error) {
	normalized := NormalizeText(env.RawText)

	signal, err := r.ledger.LogRawInput(ctx, env, normalized)
	if err != nil {
		return nil, fmt.Errorf("ledger raw input write failed: %w", err)
	}
	if env.OcrTrace != nil {
		if err := r.ledger.LogOcrTrace(ctx, signal.ID, env.OcrTrace); err != nil {
			return nil, fmt.Errorf("ledger ocr trace write failed: %w", err)
		}
	}

	decision := r.dispatcher.Evaluate(env.SignalType, normalized, env.OcrTrace)
	reason := append([]string{}, decision.Reason...)

	// Conversational short-circuit: no bias, no drafts, no clarification.
	// Keeps heuristic false-positives on casual chat away from business
	// actions.
	if decision.Module == models.ModuleConversation {
		r.fireObservation(signal, decision)
		return r.conversationalResult(signal, decision, models.RetrievalCounters{}, "", reason), nil
	}

	r.bias.Apply(ctx, &decision)
	reason = append([]string{}, decision.Reason...)

	if decision.Strategy == models.StrategyTacticalReflex {
		return r.tacticalReflex(ctx, signal, decision.Module, decision.Fields,
			decision.Confidence, true, models.StrategyTacticalReflex,
			models.RetrievalCounters{}, "", reason)
	}
	return r.deepDive(ctx, signal, decision, reason)
}

// HookFailures reports how many background hooks failed since construction
func (r *Router) HookFailures() int64 {
	return r.hookFailures.Load()
}

// WaitBackground blocks until all fire-and-forget hooks finish. Test aid.
func (r *Router) WaitBackground() {
	r.bg.Wait()
}

// tacticalReflex is the only path with a side-effecting business write
func (r *Router) tacticalReflex(ctx context.Context, signal *models.RawSignal, module models.Module, fields models.ExtractedFields, confidence float64, strict bool, strategy models.Strategy, counters models.RetrievalCounters, contextMD string, reason []string) (*models.CortexRouteResult, error) {
	draft, err := r.drafts.Build(module, fields, confidence, strict)
	if err != nil {
		// Validation failures surface as clarification, not errors
		missing := MissingFields(module, fields)
		if len(missing) == 0 {
			missing = requiredFieldFallback(module)
		}
		reason = append(reason, fmt.Sprintf("draft validation failed: %v", err))
		return r.clarify(ctx, signal, module, fields, confidence, strategy, counters, contextMD, reason, missing)
	}

	var deductionSummaries []string
	if r.deducer != nil {
		deductions, err := r.deducer.Deduce(ctx, module, draft, signal.RawText, signal.UserID)
		if err != nil {
			reason = append(reason, "deduction unavailable")
		} else if len(deductions) > 0 {
			if err := r.deducer.PersistDeductions(ctx, deductions); err != nil {
				log.Printf("Warning: persisting deductions failed: %v", err)
			}
			for _, d := range deductions {
				deductionSummaries = append(deductionSummaries, d.Summary)
			}
			reason = append(reason, fmt.Sprintf("deductions: %d", len(deductions)))
		}
	}

	gateDecision := GateDecision{RiskTier: "unknown"}
	if r.gate != nil {
		gateDecision, err = r.gate.ShouldAutoCommit(ctx, module, draft, confidence, strict)
		if err != nil {
			gateDecision = GateDecision{RiskTier: "unknown"}
			reason = append(reason, "risk gate unavailable; requiring confirmation")
		}
	}

	if gateDecision.AutoCommit {
		execution, err := r.gate.Execute(ctx, signal.UserID, module, draft, confidence)
		if err == nil && execution.Executed {
			payload := draftPayload(draft)
			payload["risk_tier"] = gateDecision.RiskTier
			payload["dynamic_threshold"] = gateDecision.DynamicThreshold
			payload["reference_id"] = execution.ReferenceID
			if len(deductionSummaries) > 0 {
				payload["deductions"] = deductionSummaries
			}

			if _, err := r.ledger.LogHandshake(ctx, signal.UserID, &models.Handshake{
				RawSignalID: signal.ID,
				Module:      module,
				Status:      models.HandshakeAutoCommitted,
				Confidence:  confidence,
				Payload:     payload,
			}); err != nil {
				return nil, fmt.Errorf("ledger handshake write failed: %w", err)
			}

			r.indexCommittedMemory(signal, draft)
			reason = append(reason, fmt.Sprintf("auto-committed at tier %s (threshold %.2f)",
				gateDecision.RiskTier, gateDecision.DynamicThreshold))

			return &models.CortexRouteResult{
				RawSignalID:         signal.ID,
				Strategy:            strategy,
				Route:               module,
				Confidence:          confidence,
				Reason:              reason,
				StrictParametersMet: strict,
				Retrieval:           counters,
				Draft:               draft,
				ContextMarkdown:     contextMD,
				NextAction:          models.NextActionAutoCommitted,
			}, nil
		}
		reason = append(reason, "auto-commit execution failed; falling back to confirmation")
	}

	return r.pendingHandshake(ctx, signal, draft, strategy, counters, contextMD, reason)
}

// pendingHandshake persists the draft and a pending_confirmation handshake
func (r *Router) pendingHandshake(ctx context.Context, signal *models.RawSignal, draft *models.ModuleDraft, strategy models.Strategy, counters models.RetrievalCounters, contextMD string, reason []string) (*models.CortexRouteResult, error) {
	if err := r.ledger.LogTaskDraft(ctx, signal.ID, signal.UserID, models.HandshakePendingConfirmation, draft); err != nil {
		return nil, fmt.Errorf("ledger task draft write failed: %w", err)
	}

	// Pending handshakes never carry risk gate fields
	if _, err := r.ledger.LogHandshake(ctx, signal.UserID, &models.Handshake{
		RawSignalID: signal.ID,
		Module:      draft.Module,
		Status:      models.HandshakePendingConfirmation,
		Confidence:  draft.Confidence,
		Payload:     draftPayload(draft),
	}); err != nil {
		return nil, fmt.Errorf("ledger handshake write failed: %w", err)
	}

	return &models.CortexRouteResult{
		RawSignalID:         signal.ID,
		Strategy:            strategy,
		Route:               draft.Module,
		Confidence:          draft.Confidence,
		Reason:              append(reason, "awaiting confirmation"),
		StrictParametersMet: draft.StrictParametersMet,
		Retrieval:           counters,
		Draft:               draft,
		ContextMarkdown:     contextMD,
		NextAction:          models.HandshakeNextAction(draft.Module),
	}, nil
}

// clarify persists a clarifying draft and returns the module's template
func (r *Router) clarify(ctx context.Context, signal *models.RawSignal, module models.Module, fields models.ExtractedFields, confidence float64, strategy models.Strategy, counters models.RetrievalCounters, contextMD string, reason []string, missing []string) (*models.CortexRouteResult, error) {
	partial := r.drafts.BuildPartial(module, fields, confidence)
	if err := r.ledger.LogTaskDraft(ctx, signal.ID, signal.UserID, models.HandshakeClarifying, partial); err != nil {
		return nil, fmt.Errorf("ledger task draft write failed: %w", err)
	}

	return &models.CortexRouteResult{
		RawSignalID:         signal.ID,
		Strategy:            strategy,
		Route:               module,
		Confidence:          confidence,
		Reason:              append(reason, fmt.Sprintf("clarifying: missing %s", strings.Join(missing, ", "))),
		StrictParametersMet: false,
		Retrieval:           counters,
		Draft:               partial,
		MissingFields:       missing,
		ClarificationPrompt: ClarificationPrompt(module, missing),
		ContextMarkdown:     contextMD,
		NextAction:          models.NextActionClarification,
	}, nil
}

// deepDive is the retrieval + LLM fallback for ambiguous signals
func (r *Router) deepDive(ctx context.Context, signal *models.RawSignal, decision models.DispatcherDecision, reason []string) (*models.CortexRouteResult, error) {
	var counters models.RetrievalCounters

	var memoryHits []models.MemoryHit
	if r.memory != nil {
		hits, err := r.memory.Search(ctx, retrievalQuery(signal.NormalizedText, decision.Fields), r.cfg.MemoryTopK)
		if err != nil {
			reason = append(reason, "memory search unavailable")
		} else {
			memoryHits = hits
		}
	}
	counters.MemoryHits = len(memoryHits)

	var snapshot *LedgerSnapshot
	if snap, err := r.ledger.GetRecentGroundTruth(ctx, signal.UserID, r.cfg.LedgerSnapshot); err != nil {
		reason = append(reason, "ledger snapshot unavailable")
	} else {
		snapshot = snap
	}
	counters.LedgerRows = snapshot.Rows()

	contextMD := r.contextBuilder.BuildClarityContextMarkdown(ContextInput{
		Signal:     signal,
		Dispatcher: decision,
		MemoryHits: memoryHits,
		Snapshot:   snapshot,
		MaxLines:   r.cfg.ContextMaxLines,
	})

	// Clarification short-circuit: low confidence + inferable missing
	// fields skips cache and LLM entirely
	missing := MissingFields(decision.Module, decision.Fields)
	if decision.Confidence < r.cfg.ClarifyThreshold && len(missing) > 0 {
		return r.clarify(ctx, signal, decision.Module, decision.Fields, decision.Confidence,
			models.StrategySemanticDeepDive, counters, contextMD, reason, missing)
	}

	if r.cache != nil {
		cached, err := r.cache.Lookup(ctx, signal.NormalizedText, decision.Module)
		if err == nil && cached != nil && cached.Module != models.ModuleConversation {
			counters.CacheHit = true
			reason = append(reason, "semantic cache hit")
			r.fireObservation(signal, decision)
			return r.replayIntent(ctx, signal, cached, counters, contextMD, reason)
		}
	}

	profile := r.stress.Score(signal.RawText, historyTexts(snapshot))
	promptContext := contextMD
	if !profile.IsCalm() {
		promptContext = stressPreamble(profile) + "\n\n" + contextMD
		reason = append(reason, fmt.Sprintf("stress governance active: %s", profile.Level))
	}

	var intent *models.ParsedSemanticIntent
	if r.parser != nil {
		counters.LLMCalls++
		parsed, err := r.parser.ParseSemanticIntent(ctx, ParseRequest{
			RawText:         signal.RawText,
			NormalizedText:  signal.NormalizedText,
			ContextMarkdown: promptContext,
			DispatcherHint:  decision,
		})
		if err != nil {
			reason = append(reason, "llm parser unavailable")
		} else {
			intent = parsed
		}
	}

	if intent != nil && intent.Module != models.ModuleConversation {
		r.storeCacheAsync(signal.NormalizedText, decision.Module, intent)
		return r.replayIntent(ctx, signal, intent, counters, contextMD, reason)
	}

	// Safety net: a well-formed instruction is never silently dropped
	// because the LLM under- or over-classified it
	if decision.StrictParametersMet && decision.Module.IsActionable() {
		draft, err := r.drafts.Build(decision.Module, decision.Fields, decision.Confidence, true)
		if err == nil {
			reason = append(reason, "safety net: dispatcher extraction was already complete")
			return r.pendingHandshake(ctx, signal, draft, models.StrategySemanticDeepDive, counters, contextMD, reason)
		}
	}

	r.fireObservation(signal, decision)
	reason = append(reason, "defaulting to open conversation")
	conversational := decision
	conversational.Module = models.ModuleConversation
	return r.conversationalResult(signal, conversational, counters, contextMD, reason), nil
}

// replayIntent routes a parsed (or cached) intent through the same
// reflex/clarification branching as a fresh dispatch
func (r *Router) replayIntent(ctx context.Context, signal *models.RawSignal, intent *models.ParsedSemanticIntent, counters models.RetrievalCounters, contextMD string, reason []string) (*models.CortexRouteResult, error) {
	reason = append(reason, fmt.Sprintf("semantic intent: %s (%.2f)", intent.Module, intent.Confidence))
	if intent.Reason != "" {
		reason = append(reason, intent.Reason)
	}

	if intent.StrictParametersMet && intent.Confidence >= r.cfg.ReflexThreshold {
		return r.tacticalReflex(ctx, signal, intent.Module, intent.Fields, intent.Confidence,
			true, models.StrategySemanticDeepDive, counters, contextMD, reason)
	}

	missing := MissingFields(intent.Module, intent.Fields)
	if len(missing) > 0 {
		return r.clarify(ctx, signal, intent.Module, intent.Fields, intent.Confidence,
			models.StrategySemanticDeepDive, counters, contextMD, reason, missing)
	}

	// Complete fields but below the reflex bar: ask for confirmation
	draft, err := r.drafts.Build(intent.Module, intent.Fields, intent.Confidence, intent.StrictParametersMet)
	if err != nil {
		return r.clarify(ctx, signal, intent.Module, intent.Fields, intent.Confidence,
			models.StrategySemanticDeepDive, counters, contextMD,
			append(reason, fmt.Sprintf("draft validation failed: %v", err)),
			requiredFieldFallback(intent.Module))
	}
	return r.pendingHandshake(ctx, signal, draft, models.StrategySemanticDeepDive, counters, contextMD, reason)
}

func (r *Router) conversationalResult(signal *models.RawSignal, decision models.DispatcherDecision, counters models.RetrievalCounters, contextMD string, reason []string) *models.CortexRouteResult {
	strategy := decision.Strategy
	if strategy == "" {
		strategy = models.StrategySemanticDeepDive
	}
	return &models.CortexRouteResult{
		RawSignalID:         signal.ID,
		Strategy:            strategy,
		Route:               models.ModuleConversation,
		Confidence:          decision.Confidence,
		Reason:              reason,
		StrictParametersMet: decision.StrictParametersMet,
		Retrieval:           counters,
		ContextMarkdown:     contextMD,
		NextAction:          models.NextActionOpenConversation,
	}
}

// fireObservation runs the continuous-learning hook detached; failures
// are counted and discarded, never surfaced to the caller
func (r *Router) fireObservation(signal *models.RawSignal, decision models.DispatcherDecision) {
	if r.observer == nil {
		return
	}
	r.bg.Add(1)
	go func() {
		defer r.bg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.hookFailures.Add(1)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()
		if err := r.observer.ObserveConversation(ctx, signal, decision); err != nil {
			r.hookFailures.Add(1)
		}
	}()
}

// storeCacheAsync writes to the semantic cache fire-and-forget
func (r *Router) storeCacheAsync(normalizedText string, module models.Module, intent *models.ParsedSemanticIntent) {
	if r.cache == nil {
		return
	}
	r.bg.Add(1)
	go func() {
		defer r.bg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.hookFailures.Add(1)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()
		if err := r.cache.Store(ctx, normalizedText, module, intent); err != nil {
			r.hookFailures.Add(1)
		}
	}()
}

// indexCommittedMemory derives and stores memory entries for a committed
// action, fire-and-forget
func (r *Router) indexCommittedMemory(signal *models.RawSignal, draft *models.ModuleDraft) {
	if r.memory == nil {
		return
	}
	entries := DeriveMemories(signal, draft)
	r.bg.Add(1)
	go func() {
		defer r.bg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.hookFailures.Add(1)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()
		for i := range entries {
			if err := r.memory.StoreMemory(ctx, &entries[i]); err != nil {
				r.hookFailures.Add(1)
			}
		}
	}()
}

// retrievalQuery combines normalized text with any extracted entities
func retrievalQuery(normalizedText string, fields models.ExtractedFields) string {
	parts := []string{normalizedText}
	for _, extra := range []string{fields.Merchant, fields.TodoTitle, fields.CryptoSymbol, fields.URL} {
		if extra != "" {
			parts = append(parts, NormalizeText(extra))
		}
	}
	return strings.Join(parts, " ")
}

// historyTexts extracts recent raw texts for the fatigue trend signal
func historyTexts(snapshot *LedgerSnapshot) []string {
	if snapshot == nil {
		return nil
	}
	texts := make([]string, 0, len(snapshot.Signals))
	for _, sig := range snapshot.Signals {
		texts = append(texts, sig.RawText)
	}
	return texts
}

// requiredFieldFallback names the field to clarify when validation failed
// but inference found nothing missing
func requiredFieldFallback(module models.Module) []string {
	switch module {
	case models.ModuleFinance:
		return []string{FieldFinanceAmount}
	case models.ModuleTodo:
		return []string{FieldTodoTitle}
	case models.ModuleCrypto:
		return []string{FieldCryptoSymbol}
	case models.ModuleLinks:
		return []string{FieldLinkURL}
	default:
		return nil
	}
}

// draftPayload flattens a draft into a handshake payload map
func draftPayload(draft *models.ModuleDraft) map[string]interface{} {
	payload := map[string]interface{}{"module": string(draft.Module)}
	raw, err := json.Marshal(draft)
	if err != nil {
		return payload
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return payload
	}
	decoded["module"] = string(draft.Module)
	return decoded
}
