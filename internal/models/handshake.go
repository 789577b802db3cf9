// ABOUTME: Handshake lifecycle types for proposed and executed actions
// ABOUTME: Durable records written to the audit ledger by the router
package models

import "time"

// HandshakeStatus is the disposition of a proposed action
type HandshakeStatus string

const (
	HandshakePendingConfirmation HandshakeStatus = "pending_confirmation"
	HandshakeAutoCommitted       HandshakeStatus = "auto_committed"
	HandshakeApproved            HandshakeStatus = "approved"
	HandshakeRejected            HandshakeStatus = "rejected"
	HandshakeClarifying          HandshakeStatus = "clarifying"
)

// IsTerminal reports whether the status admits no further transition
func (s HandshakeStatus) IsTerminal() bool {
	return s == HandshakeApproved || s == HandshakeRejected || s == HandshakeAutoCommitted
}

// Handshake is the record the router asks the ledger to persist
type Handshake struct {
	RawSignalID string                 `json:"raw_signal_id"`
	Module      Module                 `json:"module"`
	Status      HandshakeStatus        `json:"status"`
	Confidence  float64                `json:"confidence"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
}

// StoredHandshakeEvent is a handshake row as read back from the ledger
type StoredHandshakeEvent struct {
	ID          string                 `json:"id"`
	UserID      string                 `json:"user_id"`
	RawSignalID string                 `json:"raw_signal_id"`
	Module      Module                 `json:"module"`
	Status      HandshakeStatus        `json:"status"`
	Confidence  float64                `json:"confidence"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}
