// ABOUTME: Vector memory with Charm KV backend and cosine similarity search
// ABOUTME: Stores learned memory entries; falls back to keyword overlap without embeddings
package storage

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harper/cortex-standalone/internal/charm"
	"github.com/harper/cortex-standalone/internal/models"
)

// Expected embedding dimension for OpenAI text-embedding-3-small
const ExpectedEmbeddingDimension = 1536

// SkipDimensionValidation can be set to true in tests to allow smaller vectors
var SkipDimensionValidation = false

// Embedder turns text into a vector. The OpenAI client satisfies this.
type Embedder interface {
	GenerateEmbedding(text string) ([]float64, error)
}

// VectorMemory manages memory entry storage and similarity search using Charm KV
type VectorMemory struct {
	charm    *charm.Client
	embedder Embedder
}

// NewVectorMemory creates a memory store with Charm backend. A nil
// embedder degrades search to keyword overlap.
func NewVectorMemory(charmClient *charm.Client, embedder Embedder) *VectorMemory {
	return &VectorMemory{
		charm:    charmClient,
		embedder: embedder,
	}
}

// StoreMemory saves a memory entry, embedding its text when possible
func (vs *VectorMemory) StoreMemory(ctx context.Context, entry *models.MemoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if len(entry.Vector) == 0 && vs.embedder != nil {
		vector, err := vs.embedder.GenerateEmbedding(entry.Text)
		if err == nil {
			entry.Vector = vector
		}
		// Embedding failures are tolerated; the entry still stores and
		// remains reachable by keyword overlap
	}

	if len(entry.Vector) > 0 && !SkipDimensionValidation && len(entry.Vector) != ExpectedEmbeddingDimension {
		return fmt.Errorf("invalid embedding dimension: expected %d, got %d", ExpectedEmbeddingDimension, len(entry.Vector))
	}

	return vs.charm.SetJSON(charm.MemoryKey(entry.ID), entry)
}

// Search returns the topK most similar entries to the query. Uses cosine
// similarity when both sides have vectors, keyword overlap otherwise.
func (vs *VectorMemory) Search(ctx context.Context, query string, topK int) ([]models.MemoryHit, error) {
	keys, err := vs.charm.ListKeys(charm.MemoryPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list memory keys: %w", err)
	}

	var queryVector []float64
	if vs.embedder != nil {
		if vector, err := vs.embedder.GenerateEmbedding(query); err == nil {
			queryVector = vector
		}
	}
	queryTokens := strings.Fields(strings.ToLower(query))

	var hits []models.MemoryHit
	for _, key := range keys {
		var entry models.MemoryEntry
		if err := vs.charm.GetJSON(key, &entry); err != nil {
			continue
		}

		var score float64
		if len(queryVector) > 0 && len(entry.Vector) > 0 {
			score = cosineSimilarity(queryVector, entry.Vector)
		} else {
			score = keywordOverlap(queryTokens, entry.Text)
		}
		if score <= 0 {
			continue
		}
		hits = append(hits, models.MemoryHit{Entry: entry, Score: score})
	}

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// cosineSimilarity calculates cosine similarity between two vectors
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// keywordOverlap scores an entry by the fraction of query tokens it contains
func keywordOverlap(queryTokens []string, text string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	matched := 0
	for _, token := range queryTokens {
		if strings.Contains(lower, token) {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}
