// ABOUTME: Stress profile and governance directive types
// ABOUTME: Produced per signal by the lexicon scorer, consumed by the LLM prompt path
package models

import "time"

// StressLevel is the discrete empathy read of one signal
type StressLevel string

const (
	StressCalm     StressLevel = "calm"
	StressMild     StressLevel = "mild"
	StressElevated StressLevel = "elevated"
	StressHigh     StressLevel = "high"
	StressCritical StressLevel = "critical"
)

// Tone prescriptions for assistant responses under stress
const (
	ToneNeutral  = "neutral"
	ToneWarm     = "warm"
	ToneClinical = "clinical"
)

// DimensionScores holds the four bounded stress dimensions, each in [0,1]
type DimensionScores struct {
	Urgency     float64 `json:"urgency"`
	Frustration float64 `json:"frustration"`
	Fatigue     float64 `json:"fatigue"`
	Overwhelm   float64 `json:"overwhelm"`
}

// GovernanceDirective tells downstream response generation how to behave.
// Consulted only by the LLM-parse prompt context, never by the reflex path.
type GovernanceDirective struct {
	SuppressNotifications bool   `json:"suppress_notifications"`
	PostponeNonUrgent     bool   `json:"postpone_non_urgent"`
	ReduceCognitiveLoad   bool   `json:"reduce_cognitive_load"`
	SummarizeInstead      bool   `json:"summarize_instead"`
	MaxResponseSentences  int    `json:"max_response_sentences"`
	TonePrescription      string `json:"tone_prescription"`
}

// StressProfile is the full empathy read of one signal.
// Not persisted across signals; recomputed per call.
type StressProfile struct {
	Level      StressLevel         `json:"level"`
	Composite  float64             `json:"composite"`
	Dimensions DimensionScores     `json:"dimensions"`
	Signals    []string            `json:"signals,omitempty"`
	Governance GovernanceDirective `json:"governance"`
	Timestamp  time.Time           `json:"timestamp"`
}

// IsCalm reports whether the profile requires no prompt calibration
func (p *StressProfile) IsCalm() bool {
	return p.Level == StressCalm
}
