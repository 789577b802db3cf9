// ABOUTME: Tests for the clarity context markdown renderer
// ABOUTME: Section ordering and the hard line cap
package core

import (
	"strings"
	"testing"
	"time"

	"github.com/harper/cortex-standalone/internal/models"
)

func contextInput() ContextInput {
	amount := 45.0
	return ContextInput{
		Signal: &models.RawSignal{
			ID:             "sig-1",
			UserID:         "user-1",
			SignalType:     models.SignalTypeText,
			Channel:        models.ChannelChat,
			NormalizedText: "continente 45 euros",
			CreatedAt:      time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
		},
		Dispatcher: models.DispatcherDecision{
			Module:              models.ModuleFinance,
			Confidence:          0.8,
			StrictParametersMet: true,
			Fields:              models.ExtractedFields{Merchant: "continente", Amount: &amount},
			Reason:              []string{"merchant and amount pattern"},
		},
		MemoryHits: []models.MemoryHit{
			{Entry: models.MemoryEntry{Kind: "recurring_merchant", Text: "continente compras semanais"}, Score: 0.91},
		},
		Snapshot: &LedgerSnapshot{
			Signals: []models.RawSignal{
				{NormalizedText: "gastei 30 no pingo doce", CreatedAt: time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)},
			},
		},
		MaxLines: 120,
	}
}

func TestBuildClarityContextMarkdown_Sections(t *testing.T) {
	b := NewMarkdownContextBuilder()

	doc := b.BuildClarityContextMarkdown(contextInput())

	for _, want := range []string{
		"# Sinal",
		"continente 45 euros",
		"## Baseline do dispatcher",
		"modulo: finance",
		"## Memorias relevantes",
		"recurring_merchant",
		"## Historico recente",
		"pingo doce",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("context missing %q:\n%s", want, doc)
		}
	}

	// Sections must appear in fixed order
	if strings.Index(doc, "# Sinal") > strings.Index(doc, "## Baseline do dispatcher") {
		t.Error("signal section must precede dispatcher baseline")
	}
	if strings.Index(doc, "## Memorias relevantes") > strings.Index(doc, "## Historico recente") {
		t.Error("memories must precede ledger history")
	}
}

func TestBuildClarityContextMarkdown_LineCap(t *testing.T) {
	b := NewMarkdownContextBuilder()

	in := contextInput()
	for i := 0; i < 500; i++ {
		in.Snapshot.Signals = append(in.Snapshot.Signals, models.RawSignal{
			NormalizedText: "sinal antigo de preenchimento",
			CreatedAt:      time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
		})
	}
	in.MaxLines = 40

	doc := b.BuildClarityContextMarkdown(in)

	if got := len(strings.Split(doc, "\n")); got > 40 {
		t.Errorf("context has %d lines, cap is 40", got)
	}
}

func TestBuildClarityContextMarkdown_EmptyRetrieval(t *testing.T) {
	b := NewMarkdownContextBuilder()

	in := contextInput()
	in.MemoryHits = nil
	in.Snapshot = nil

	doc := b.BuildClarityContextMarkdown(in)

	if strings.Contains(doc, "## Memorias relevantes") {
		t.Error("empty retrieval must not render a memories section")
	}
	if strings.Contains(doc, "## Historico recente") {
		t.Error("nil snapshot must not render a history section")
	}
	if !strings.Contains(doc, "# Sinal") {
		t.Error("signal section always renders")
	}
}
