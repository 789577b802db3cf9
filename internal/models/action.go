// ABOUTME: Committed action record, the flattened result of an executed draft
// ABOUTME: Finance analytics (spend, income) read from these rows
package models

import "time"

// CommittedAction is one executed business action. Finance rows carry
// the flattened fields the briefing queries aggregate over; an income
// entry is a finance row in the Rendimento category.
type CommittedAction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Module    Module    `json:"module"`
	Merchant  string    `json:"merchant,omitempty"`
	Amount    float64   `json:"amount,omitempty"`
	Currency  string    `json:"currency,omitempty"`
	Category  string    `json:"category,omitempty"`
	Title     string    `json:"title,omitempty"`
	Payload   string    `json:"payload,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IncomeCategory marks finance entries that are income rather than spend
const IncomeCategory = "Rendimento"
