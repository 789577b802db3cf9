// ABOUTME: Semantic intent cache over Charm KV keyed by normalized text hash
// ABOUTME: Exact-match only; normalization upstream makes phrasing variants collide
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/harper/cortex-standalone/internal/charm"
	"github.com/harper/cortex-standalone/internal/models"
)

// SemanticCache stores parsed intents so recognized phrasings skip the LLM
type SemanticCache struct {
	charm *charm.Client
}

// NewSemanticCache creates a cache over the charm client
func NewSemanticCache(charmClient *charm.Client) *SemanticCache {
	return &SemanticCache{charm: charmClient}
}

// Lookup returns the cached intent for (normalizedText, module), nil on miss
func (c *SemanticCache) Lookup(ctx context.Context, normalizedText string, module models.Module) (*models.ParsedSemanticIntent, error) {
	data, err := c.charm.Get(charm.IntentKey(cacheHash(normalizedText, module)))
	if err != nil {
		// Charm's KV surfaces missing keys as errors from some backends;
		// treat any read failure as a miss
		return nil, nil
	}
	if len(data) == 0 {
		return nil, nil
	}

	var intent models.ParsedSemanticIntent
	if err := c.charm.GetJSON(charm.IntentKey(cacheHash(normalizedText, module)), &intent); err != nil {
		return nil, nil
	}
	return &intent, nil
}

// Store caches a parsed intent under its normalized text hash
func (c *SemanticCache) Store(ctx context.Context, normalizedText string, module models.Module, intent *models.ParsedSemanticIntent) error {
	if err := c.charm.SetJSON(charm.IntentKey(cacheHash(normalizedText, module)), intent); err != nil {
		return fmt.Errorf("storing cached intent: %w", err)
	}
	return nil
}

// cacheHash keys the cache on module + normalized text
func cacheHash(normalizedText string, module models.Module) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{string(module), normalizedText}, "|")))
	return hex.EncodeToString(sum[:])
}
