// ABOUTME: Renders the clarity context markdown injected into LLM parse prompts
// ABOUTME: Size-capped; never grows unbounded regardless of history size
package core

import (
	"fmt"
	"strings"

	"github.com/harper/cortex-standalone/internal/models"
)

// MarkdownContextBuilder is the default ContextBuilder implementation
type MarkdownContextBuilder struct{}

// NewMarkdownContextBuilder creates the default context renderer
func NewMarkdownContextBuilder() *MarkdownContextBuilder {
	return &MarkdownContextBuilder{}
}

// BuildClarityContextMarkdown assembles the retrieval context document.
// Sections in fixed order: signal, dispatcher baseline, memories, ledger
// history. Output is hard-capped at in.MaxLines lines.
func (b *MarkdownContextBuilder) BuildClarityContextMarkdown(in ContextInput) string {
	var lines []string

	lines = append(lines, "# Sinal")
	lines = append(lines, fmt.Sprintf("- texto: %s", in.Signal.NormalizedText))
	lines = append(lines, fmt.Sprintf("- tipo: %s / canal: %s", in.Signal.SignalType, in.Signal.Channel))

	lines = append(lines, "", "## Baseline do dispatcher")
	lines = append(lines, fmt.Sprintf("- modulo: %s (confianca %.2f, parametros completos: %t)",
		in.Dispatcher.Module, in.Dispatcher.Confidence, in.Dispatcher.StrictParametersMet))
	if len(in.Dispatcher.Reason) > 0 {
		lines = append(lines, fmt.Sprintf("- razoes: %s", strings.Join(in.Dispatcher.Reason, "; ")))
	}

	if len(in.MemoryHits) > 0 {
		lines = append(lines, "", "## Memorias relevantes")
		for _, hit := range in.MemoryHits {
			lines = append(lines, fmt.Sprintf("- [%s] %s (%.2f)", hit.Entry.Kind, hit.Entry.Text, hit.Score))
		}
	}

	if in.Snapshot != nil && in.Snapshot.Rows() > 0 {
		lines = append(lines, "", "## Historico recente")
		for _, sig := range in.Snapshot.Signals {
			lines = append(lines, fmt.Sprintf("- sinal %s: %s", sig.CreatedAt.Format("01-02 15:04"), sig.NormalizedText))
		}
		for _, trace := range in.Snapshot.OcrTraces {
			lines = append(lines, fmt.Sprintf("- recibo: %s %.2f %s", trace.Merchant, trace.Amount, trace.Currency))
		}
		for _, hs := range in.Snapshot.Handshakes {
			lines = append(lines, fmt.Sprintf("- handshake %s/%s (%.2f)", hs.Module, hs.Status, hs.Confidence))
		}
	}

	if in.MaxLines > 0 && len(lines) > in.MaxLines {
		lines = lines[:in.MaxLines]
	}
	return strings.Join(lines, "\n")
}

// stressPreamble renders the stress-calibrated prompt context that replaces
// the neutral preamble when the signal is not calm
func stressPreamble(profile *models.StressProfile) string {
	g := profile.Governance
	var lines []string
	lines = append(lines, "# Estado do usuario")
	lines = append(lines, fmt.Sprintf("- nivel de estresse: %s (%.2f)", profile.Level, profile.Composite))
	lines = append(lines, fmt.Sprintf("- tom prescrito: %s", g.TonePrescription))
	if g.SummarizeInstead {
		lines = append(lines, "- responda com um resumo curto, sem listas longas")
	}
	if g.ReduceCognitiveLoad {
		lines = append(lines, "- reduza carga cognitiva: uma acao por vez")
	}
	if g.MaxResponseSentences > 0 {
		lines = append(lines, fmt.Sprintf("- maximo de %d frases na resposta", g.MaxResponseSentences))
	}
	return strings.Join(lines, "\n")
}
