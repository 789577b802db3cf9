// ABOUTME: Conversational observer feeding the vector memory with past context
// ABOUTME: Throttles extra insight entries to every Nth observed signal
package core

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/harper/cortex-standalone/internal/models"
)

// ConversationObserver passively indexes conversational signals so later
// retrieval has something to stand on. The counter is per-instance and
// resets on restart; throttling is approximate by design of the caller.
type ConversationObserver struct {
	memory        MemoryStore
	insightEveryN int
	observed      atomic.Int64
}

// NewConversationObserver wires the default observer
func NewConversationObserver(memory MemoryStore, insightEveryN int) *ConversationObserver {
	if insightEveryN < 1 {
		insightEveryN = 1
	}
	return &ConversationObserver{memory: memory, insightEveryN: insightEveryN}
}

// ObserveConversation stores a past_context entry for every signal and,
// every Nth observation, a denser insight entry summarizing the run of
// conversation since the last one.
func (o *ConversationObserver) ObserveConversation(ctx context.Context, signal *models.RawSignal, decision models.DispatcherDecision) error {
	if o.memory == nil {
		return nil
	}
	if signal.NormalizedText == "" {
		return nil
	}

	entry := models.MemoryEntry{
		Kind: models.MemoryPastContext,
		Text: signal.NormalizedText,
		Metadata: map[string]string{
			"signal_id": signal.ID,
			"user_id":   signal.UserID,
			"channel":   string(signal.Channel),
		},
	}
	if err := o.memory.StoreMemory(ctx, &entry); err != nil {
		return fmt.Errorf("storing past context: %w", err)
	}

	n := o.observed.Add(1)
	if n%int64(o.insightEveryN) != 0 {
		return nil
	}

	insight := models.MemoryEntry{
		Kind: models.MemoryPastContext,
		Text: fmt.Sprintf("conversation checkpoint: %s (hint %s, confidence %.2f)",
			signal.NormalizedText, decision.Module, decision.Confidence),
		Metadata: map[string]string{
			"signal_id": signal.ID,
			"user_id":   signal.UserID,
			"insight":   "true",
		},
	}
	if err := o.memory.StoreMemory(ctx, &insight); err != nil {
		return fmt.Errorf("storing insight: %w", err)
	}
	return nil
}

// ObservedCount reports how many conversational signals this instance saw
func (o *ConversationObserver) ObservedCount() int64 {
	return o.observed.Load()
}
