// ABOUTME: Feedback bias boosting dispatcher confidence from recurring-entity memory
// ABOUTME: Boost is additive, monotonic in hit count, and capped
package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/harper/cortex-standalone/internal/config"
	"github.com/harper/cortex-standalone/internal/models"
)

// FeedbackBias refines a dispatcher decision using recurring_merchant
// memory hits. Search failures degrade to a zero boost.
type FeedbackBias struct {
	memory          MemoryStore
	perHit          float64
	boostCap        float64
	reflexThreshold float64
	topK            int
}

// NewFeedbackBias creates the bias stage with the configured constants
func NewFeedbackBias(memory MemoryStore, cfg *config.Config) *FeedbackBias {
	return &FeedbackBias{
		memory:          memory,
		perHit:          cfg.BiasPerHit,
		boostCap:        cfg.BiasCap,
		reflexThreshold: cfg.ReflexThreshold,
		topK:            cfg.MemoryTopK,
	}
}

// Apply boosts the decision in place and recomputes its strategy.
// Returns the applied boost and the recurring-merchant hit count.
func (f *FeedbackBias) Apply(ctx context.Context, decision *models.DispatcherDecision) (float64, int) {
	defer func() {
		decision.Strategy = models.ResolveStrategy(decision.Confidence, decision.StrictParametersMet, f.reflexThreshold)
	}()

	tokens := MerchantTokens(decision.Fields.Merchant)
	if len(tokens) == 0 || f.memory == nil {
		return 0, 0
	}

	hits, err := f.memory.Search(ctx, strings.Join(tokens, " "), f.topK)
	if err != nil {
		return 0, 0
	}

	count := 0
	for _, hit := range hits {
		if hit.Entry.Kind != models.MemoryRecurringMerchant {
			continue
		}
		if memoryMatchesMerchant(hit.Entry, tokens) {
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}

	boost := float64(count) * f.perHit
	if boost > f.boostCap {
		boost = f.boostCap
	}

	decision.Confidence += boost
	if decision.Confidence > 1 {
		decision.Confidence = 1
	}
	decision.Reason = append(decision.Reason,
		fmt.Sprintf("feedback_bias: +%.2f from %d recurring merchant hits", boost, count))

	return boost, count
}

// memoryMatchesMerchant checks whether a memory entry refers to the same
// merchant, by metadata first and entry text second
func memoryMatchesMerchant(entry models.MemoryEntry, tokens []string) bool {
	haystack := NormalizeText(entry.Metadata["merchant"])
	if haystack == "" {
		haystack = NormalizeText(entry.Text)
	}
	for _, token := range tokens {
		if strings.Contains(haystack, token) {
			return true
		}
	}
	return false
}
