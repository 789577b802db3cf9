// ABOUTME: Daily briefing types, one cached summary per user per day
// ABOUTME: Regenerated only on expiry, cache miss, or forced refresh
package models

import "time"

// PriorityKind orders briefing priorities by fixed precedence
type PriorityKind string

const (
	PriorityOverdueTasks      PriorityKind = "overdue_tasks"
	PriorityPendingHandshakes PriorityKind = "pending_handshakes"
	PrioritySpendingDelta     PriorityKind = "spending_delta"
	PriorityStable            PriorityKind = "stable"
)

// BriefingPriority is one line of the daily summary
type BriefingPriority struct {
	Kind   PriorityKind `json:"kind"`
	Title  string       `json:"title"`
	Detail string       `json:"detail,omitempty"`
}

// DailyBriefing is the per-user daily summary
type DailyBriefing struct {
	UserID        string             `json:"user_id"`
	BriefingDate  string             `json:"briefing_date"` // YYYY-MM-DD
	GeneratedAt   time.Time          `json:"generated_at"`
	ExpiresAt     time.Time          `json:"expires_at"`
	TopPriorities []BriefingPriority `json:"top_priorities"`
}

// Expired reports whether the briefing must be regenerated
func (b *DailyBriefing) Expired(now time.Time) bool {
	return now.After(b.ExpiresAt)
}
