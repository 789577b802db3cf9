// ABOUTME: Lexicon stress scorer producing the four-dimension empathy read
// ABOUTME: Pure and deterministic; governance mapping feeds the LLM prompt path only
package core

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/harper/cortex-standalone/internal/config"
	"github.com/harper/cortex-standalone/internal/models"
)

// Lexicons are matched against the normalized (diacritic-stripped) text.
// Portuguese first, English second; multi-word phrases allowed.
var (
	urgencyLexicon = []string{
		"socorro", "urgente", "urgencia", "emergencia", "ajuda", "rapido",
		"correndo", "asap", "urgent", "emergency", "help", "immediately",
	}
	frustrationLexicon = []string{
		"nao consigo", "nao aguento", "odeio", "droga", "que saco",
		"irritado", "irritada", "frustrado", "frustrada", "cansei",
		"hate", "annoying", "frustrated", "fed up", "sick of",
	}
	fatigueLexicon = []string{
		"cansado", "cansada", "exausto", "exausta", "esgotado", "esgotada",
		"sem energia", "com sono", "tired", "exhausted", "drained", "sleepy",
	}
	overwhelmLexicon = []string{
		"tudo junto", "demais", "nao dou conta", "sobrecarregado",
		"sobrecarregada", "muita coisa", "tanta coisa", "ajuda",
		"too much", "overwhelmed", "all at once",
	}

	temporalMarkerRe  = regexp.MustCompile(`\b(agora|hoje|amanha|ja|logo|today|tonight|tomorrow|right now)\b`)
	negativePatternRe = regexp.MustCompile(`nao (consigo|aguento|da|funciona)|nada funciona|de novo nao|nothing works|doesn'?t work`)
	punctRunRe        = regexp.MustCompile(`[?!]{3,}`)
	sentencePunctRe   = regexp.MustCompile(`[.!?]`)
)

// Per-hit lexicon weights; each dimension's lexicon contribution is capped
// independently of its regex/shape bonuses.
const (
	urgencyPerHit     = 0.3
	urgencyLexCap     = 0.6
	frustrationPerHit = 0.35
	frustrationLexCap = 0.7
	fatiguePerHit     = 0.25
	fatigueLexCap     = 0.5
	overwhelmPerHit   = 0.3
	overwhelmLexCap   = 0.6
)

// StressScorer computes a StressProfile per signal. Stateless; the config
// only carries the level thresholds.
type StressScorer struct {
	cfg *config.Config
}

// NewStressScorer creates a stress scorer with the given thresholds
func NewStressScorer(cfg *config.Config) *StressScorer {
	return &StressScorer{cfg: cfg}
}

// Score reads raw + normalized text into the four bounded dimensions.
// history carries the user's most recent prior messages (newest last) for
// the declining-engagement fatigue signal; nil is fine.
func (s *StressScorer) Score(rawText string, history []string) *models.StressProfile {
	normalized := NormalizeText(rawText)
	var fired []string

	urgency := s.scoreUrgency(rawText, normalized, &fired)
	frustration := s.scoreFrustration(rawText, normalized, &fired)
	fatigue := s.scoreFatigue(rawText, normalized, history, &fired)
	overwhelm := s.scoreOverwhelm(rawText, normalized, &fired)

	composite := 0.25*urgency + 0.35*frustration + 0.2*fatigue + 0.2*overwhelm
	level := s.levelFor(composite)

	return &models.StressProfile{
		Level:     level,
		Composite: composite,
		Dimensions: models.DimensionScores{
			Urgency:     urgency,
			Frustration: frustration,
			Fatigue:     fatigue,
			Overwhelm:   overwhelm,
		},
		Signals:    fired,
		Governance: governanceFor(level),
		Timestamp:  time.Now(),
	}
}

func (s *StressScorer) scoreUrgency(raw, normalized string, fired *[]string) float64 {
	score := lexiconScore(normalized, urgencyLexicon, urgencyPerHit, urgencyLexCap, "urgency", fired)

	if temporalMarkerRe.MatchString(normalized) {
		score += 0.15
		*fired = append(*fired, "urgency:temporal_marker")
	}

	if exclaim := strings.Count(raw, "!"); exclaim > 0 {
		density := 0.1 * float64(exclaim)
		if density > 0.2 {
			density = 0.2
		}
		score += density
		*fired = append(*fired, "urgency:exclamations")
	}

	if shoutingCaps(raw) {
		score += 0.15
		*fired = append(*fired, "urgency:shouting_caps")
	}

	return clamp01(score)
}

func (s *StressScorer) scoreFrustration(raw, normalized string, fired *[]string) float64 {
	score := lexiconScore(normalized, frustrationLexicon, frustrationPerHit, frustrationLexCap, "frustration", fired)

	if punctRunRe.MatchString(raw) {
		score += 0.2
		*fired = append(*fired, "frustration:repeated_punctuation")
	}

	if negativePatternRe.MatchString(normalized) {
		score += 0.15
		*fired = append(*fired, "frustration:negative_pattern")
	}

	return clamp01(score)
}

func (s *StressScorer) scoreFatigue(raw, normalized string, history []string, fired *[]string) float64 {
	score := lexiconScore(normalized, fatigueLexicon, fatiguePerHit, fatigueLexCap, "fatigue", fired)

	words := strings.Fields(normalized)
	if len(words) > 0 && len(words) <= 3 {
		score += 0.2
		*fired = append(*fired, "fatigue:terse_message")
	}

	if len(raw) > 10 && !hasWritingEffort(raw) {
		score += 0.1
		*fired = append(*fired, "fatigue:no_effort")
	}

	if decliningEngagement(raw, history) {
		score += 0.15
		*fired = append(*fired, "fatigue:declining_engagement")
	}

	return clamp01(score)
}

func (s *StressScorer) scoreOverwhelm(raw, normalized string, fired *[]string) float64 {
	score := lexiconScore(normalized, overwhelmLexicon, overwhelmPerHit, overwhelmLexCap, "overwhelm", fired)

	if len(raw) > 200 && !sentencePunctRe.MatchString(raw) {
		score += 0.15
		*fired = append(*fired, "overwhelm:unstructured_ramble")
	}

	return clamp01(score)
}

func (s *StressScorer) levelFor(composite float64) models.StressLevel {
	switch {
	case composite >= s.cfg.StressCritical:
		return models.StressCritical
	case composite >= s.cfg.StressHigh:
		return models.StressHigh
	case composite >= s.cfg.StressElevated:
		return models.StressElevated
	case composite >= s.cfg.StressMild:
		return models.StressMild
	default:
		return models.StressCalm
	}
}

// governanceFor maps each level to a fixed directive set
func governanceFor(level models.StressLevel) models.GovernanceDirective {
	switch level {
	case models.StressCritical:
		return models.GovernanceDirective{
			SuppressNotifications: true,
			PostponeNonUrgent:     true,
			ReduceCognitiveLoad:   true,
			SummarizeInstead:      true,
			MaxResponseSentences:  1,
			TonePrescription:      models.ToneClinical,
		}
	case models.StressHigh:
		return models.GovernanceDirective{
			SuppressNotifications: true,
			PostponeNonUrgent:     true,
			ReduceCognitiveLoad:   true,
			SummarizeInstead:      true,
			MaxResponseSentences:  2,
			TonePrescription:      models.ToneWarm,
		}
	case models.StressElevated:
		return models.GovernanceDirective{
			ReduceCognitiveLoad:  true,
			MaxResponseSentences: 3,
			TonePrescription:     models.ToneWarm,
		}
	case models.StressMild:
		return models.GovernanceDirective{
			MaxResponseSentences: 4,
			TonePrescription:     models.ToneWarm,
		}
	default:
		return models.GovernanceDirective{TonePrescription: models.ToneNeutral}
	}
}

func lexiconScore(normalized string, lexicon []string, perHit, limit float64, dim string, fired *[]string) float64 {
	var score float64
	for _, term := range lexicon {
		if strings.Contains(normalized, term) {
			score += perHit
			*fired = append(*fired, fmt.Sprintf("%s:lexicon:%s", dim, strings.ReplaceAll(term, " ", "_")))
		}
	}
	if score > limit {
		score = limit
	}
	return score
}

// shoutingCaps reports whether most of the message's letters are uppercase
func shoutingCaps(raw string) bool {
	if len(raw) <= 5 {
		return false
	}
	var letters, upper int
	for _, r := range raw {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	return letters > 0 && float64(upper)/float64(letters) > 0.5
}

// hasWritingEffort reports whether the message shows capitalization or
// punctuation effort
func hasWritingEffort(raw string) bool {
	for _, r := range raw {
		if unicode.IsUpper(r) || unicode.IsPunct(r) {
			return true
		}
	}
	return false
}

// decliningEngagement checks the last 5 history items for a shrinking
// message-length trend
func decliningEngagement(raw string, history []string) bool {
	if len(history) == 0 {
		return false
	}
	recent := history
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	var total int
	for _, h := range recent {
		total += len(h)
	}
	avg := float64(total) / float64(len(recent))
	return avg < 20 && len(raw) < 15
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
