// ABOUTME: Vector memory entry types for the learned-context store
// ABOUTME: Used by feedback bias, retrieval, and handshake resolution indexing
package models

import "time"

// MemoryKind classifies a learned memory entry
type MemoryKind string

const (
	MemoryRecurringMerchant MemoryKind = "recurring_merchant"
	MemoryCompletedTask     MemoryKind = "completed_task"
	MemoryOcrContext        MemoryKind = "ocr_context"
	MemoryPastContext       MemoryKind = "past_context"
)

// MemoryEntry is one learned association in the vector store
type MemoryEntry struct {
	ID        string            `json:"id"`
	Kind      MemoryKind        `json:"kind"`
	Text      string            `json:"text"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Vector    []float64         `json:"vector,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// MemoryHit is a similarity search result
type MemoryHit struct {
	Entry MemoryEntry `json:"entry"`
	Score float64     `json:"score"`
}
