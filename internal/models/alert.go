// ABOUTME: Proactive alert types generated by the briefing engine
// ABOUTME: Dedupe keys prevent duplicate rows across refresh runs
package models

import (
	"fmt"
	"time"
)

// AlertKind identifies the rule that produced an alert
type AlertKind string

const (
	AlertCategorySpendSpike AlertKind = "category_spend_spike"
	AlertTaskDueSoon        AlertKind = "task_due_soon"
)

// AlertStatus is pending until consumed; delivered is one-way
type AlertStatus string

const (
	AlertPending   AlertStatus = "pending"
	AlertDelivered AlertStatus = "delivered"
)

// ProactiveAlert is a system-initiated notice
type ProactiveAlert struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	Kind      AlertKind              `json:"kind"`
	Status    AlertStatus            `json:"status"`
	Module    Module                 `json:"module"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	ExpiresAt time.Time              `json:"expires_at"`
	DedupeKey string                 `json:"dedupe_key"`
	CreatedAt time.Time              `json:"created_at"`
}

// AlertDedupeKey builds the unique key per (user, kind, period, subject)
func AlertDedupeKey(userID string, kind AlertKind, period, subject string) string {
	return fmt.Sprintf("%s|%s|%s|%s", userID, kind, period, subject)
}
