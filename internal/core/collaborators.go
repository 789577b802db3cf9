// ABOUTME: Collaborator contracts the router consumes
// ABOUTME: Concrete implementations live in storage, llm, cache, heuristics, risk, deduce
package core

import (
	"context"

	"github.com/harper/cortex-standalone/internal/models"
)

// Ledger is the append-only audit store. It is the system of record:
// write failures here are fatal to the routing call.
type Ledger interface {
	LogRawInput(ctx context.Context, env models.SignalEnvelope, normalizedText string) (*models.RawSignal, error)
	LogOcrTrace(ctx context.Context, rawSignalID string, trace *models.OcrTrace) error
	LogTaskDraft(ctx context.Context, rawSignalID, userID string, status models.HandshakeStatus, draft *models.ModuleDraft) error
	LogHandshake(ctx context.Context, userID string, hs *models.Handshake) (*models.StoredHandshakeEvent, error)
	GetRecentGroundTruth(ctx context.Context, userID string, limit int) (*LedgerSnapshot, error)
}

// LedgerSnapshot is the bounded history the deep-dive path retrieves
type LedgerSnapshot struct {
	Signals    []models.RawSignal
	OcrTraces  []models.OcrTrace
	Handshakes []models.StoredHandshakeEvent
}

// Rows counts every row in the snapshot, for the retrieval counters
func (s *LedgerSnapshot) Rows() int {
	if s == nil {
		return 0
	}
	return len(s.Signals) + len(s.OcrTraces) + len(s.Handshakes)
}

// MemoryStore is the vector memory collaborator; it owns similarity
// search and is the sole writer of learned entries.
type MemoryStore interface {
	Search(ctx context.Context, query string, topK int) ([]models.MemoryHit, error)
	StoreMemory(ctx context.Context, entry *models.MemoryEntry) error
}

// Dispatcher is the fast first-pass heuristic classifier
type Dispatcher interface {
	Evaluate(signalType models.SignalType, normalizedText string, trace *models.OcrTrace) models.DispatcherDecision
}

// Deducer performs silent side-inference across modules
type Deducer interface {
	Deduce(ctx context.Context, module models.Module, draft *models.ModuleDraft, rawText, userID string) ([]models.Deduction, error)
	PersistDeductions(ctx context.Context, deductions []models.Deduction) error
}

// GateDecision is the risk gate's per-call verdict
type GateDecision struct {
	AutoCommit       bool    `json:"auto_commit"`
	RiskTier         string  `json:"risk_tier"`
	DynamicThreshold float64 `json:"dynamic_threshold"`
}

// ExecutionResult reports the external write of an auto-committed action
type ExecutionResult struct {
	Executed    bool   `json:"executed"`
	ReferenceID string `json:"reference_id"`
}

// RiskGate decides whether an action executes autonomously, and executes it
type RiskGate interface {
	ShouldAutoCommit(ctx context.Context, module models.Module, draft *models.ModuleDraft, confidence float64, strict bool) (GateDecision, error)
	Execute(ctx context.Context, userID string, module models.Module, draft *models.ModuleDraft, confidence float64) (ExecutionResult, error)
}

// SemanticCache avoids repeat LLM calls for recognized phrasing.
// Lookup returns (nil, nil) on a miss.
type SemanticCache interface {
	Lookup(ctx context.Context, normalizedText string, module models.Module) (*models.ParsedSemanticIntent, error)
	Store(ctx context.Context, normalizedText string, module models.Module, intent *models.ParsedSemanticIntent) error
}

// ParseRequest carries everything the LLM parser needs
type ParseRequest struct {
	RawText         string
	NormalizedText  string
	ContextMarkdown string
	DispatcherHint  models.DispatcherDecision
}

// SemanticParser is the hosted LLM interpretation fallback
type SemanticParser interface {
	ParseSemanticIntent(ctx context.Context, req ParseRequest) (*models.ParsedSemanticIntent, error)
}

// ContextInput feeds the clarity context document renderer
type ContextInput struct {
	Signal     *models.RawSignal
	Dispatcher models.DispatcherDecision
	MemoryHits []models.MemoryHit
	Snapshot   *LedgerSnapshot
	MaxLines   int
}

// ContextBuilder renders the size-capped retrieval context document
type ContextBuilder interface {
	BuildClarityContextMarkdown(in ContextInput) string
}

// Observer receives fire-and-forget notifications about conversational
// signals for continuous learning. Never allowed to fail the caller.
type Observer interface {
	ObserveConversation(ctx context.Context, signal *models.RawSignal, decision models.DispatcherDecision) error
}
