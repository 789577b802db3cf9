// ABOUTME: Raw signal types for the ambient router intake layer
// ABOUTME: Covers typed text, voice transcripts, and OCR-derived signals
package models

import "time"

// SignalType identifies how a signal entered the system
type SignalType string

const (
	SignalTypeText  SignalType = "text"
	SignalTypeVoice SignalType = "voice"
	SignalTypeOCR   SignalType = "ocr"
)

// Channel identifies the surface the signal came from
type Channel string

const (
	ChannelChat    Channel = "chat"
	ChannelCapture Channel = "capture"
	ChannelAPI     Channel = "api"
)

// SignalEnvelope is the router's sole input shape
type SignalEnvelope struct {
	UserID     string            `json:"user_id"`
	SignalType SignalType        `json:"signal_type"`
	Channel    Channel           `json:"channel"`
	RawText    string            `json:"raw_text"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	OcrTrace   *OcrTrace         `json:"ocr_trace,omitempty"`
}

// RawSignal is one ingested utterance after ledger logging.
// Immutable once logged; NormalizedText is the canonical form used for
// caching, lexicon matching, and memory search.
type RawSignal struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	SignalType     SignalType        `json:"signal_type"`
	Channel        Channel           `json:"channel"`
	RawText        string            `json:"raw_text"`
	NormalizedText string            `json:"normalized_text"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// OcrTrace is an optional receipt extraction linked 1:1 to a RawSignal
type OcrTrace struct {
	RawSignalID string  `json:"raw_signal_id,omitempty"`
	Merchant    string  `json:"merchant"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Confidence  float64 `json:"confidence"`
	RawPayload  string  `json:"raw_payload,omitempty"`
}
