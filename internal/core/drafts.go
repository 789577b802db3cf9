// ABOUTME: Draft builder mapping extracted fields into module-specific drafts
// ABOUTME: Also owns missing-field inference and clarification templates
package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/harper/cortex-standalone/internal/models"
)

// Missing-field identifiers returned to callers
const (
	FieldFinanceMerchant = "finance_merchant"
	FieldFinanceAmount   = "finance_amount"
	FieldTodoTitle       = "todo_title"
	FieldCryptoSymbol    = "crypto_symbol"
	FieldCryptoQuantity  = "crypto_quantity"
	FieldCryptoPrice     = "crypto_price"
	FieldLinkURL         = "link_url"
)

// categoryBuckets maps normalized keywords to finance categories.
// First bucket that matches wins; order is deliberate (food before leisure
// so "cafe" lands in Alimentação).
var categoryBuckets = []struct {
	category string
	keywords []string
}{
	{"Rendimento", []string{
		"recebi", "salario", "ordenado", "vencimento", "rendimento",
		"pagamento recebido", "transferencia recebida",
	}},
	{"Alimentação", []string{
		"continente", "pingo doce", "lidl", "aldi", "intermarche", "auchan",
		"mercado", "supermercado", "minipreco", "restaurante", "cafe",
		"padaria", "pastelaria", "almoco", "jantar", "lanche", "pizza",
		"mcdonald", "burger",
	}},
	{"Saúde", []string{
		"farmacia", "medico", "clinica", "hospital", "dentista", "consulta",
		"remedio", "medicamento",
	}},
	{"Transporte", []string{
		"uber", "bolt", "taxi", "gasolina", "combustivel", "gasoleo",
		"metro", "comboio", "autocarro", "estacionamento", "via verde",
		"portagem",
	}},
	{"Casa", []string{
		"ikea", "leroy", "renda", "aluguel", "luz", "eletricidade", "agua",
		"gas", "internet", "condominio", "obra",
	}},
	{"Lazer", []string{
		"netflix", "spotify", "cinema", "teatro", "steam", "jogo", "bar",
		"concerto", "viagem",
	}},
}

// Temporal keywords for task due-date and priority inference
var (
	highPriorityHints = []string{"urgente", "importante", "prioridade", "urgent", "important"}
	dueTodayHints     = []string{"hoje", "today", "tonight", "ainda hoje"}
	dueTomorrowHints  = []string{"amanha", "tomorrow"}
	dueWeekHints      = []string{"essa semana", "esta semana", "this week"}
)

// DraftBuilder performs the deterministic field-to-draft mapping of the
// tactical reflex path
type DraftBuilder struct {
	defaultCurrency string
	now             func() time.Time
}

// NewDraftBuilder creates a draft builder; currency backfills finance
// drafts whose extraction carried none.
func NewDraftBuilder(defaultCurrency string) *DraftBuilder {
	return &DraftBuilder{
		defaultCurrency: defaultCurrency,
		now:             time.Now,
	}
}

// Build maps extracted fields into the draft shape fixed by module.
// Finance categories come from keyword buckets; task priority and due
// date from temporal keywords; crypto and link fields pass through.
func (b *DraftBuilder) Build(module models.Module, fields models.ExtractedFields, confidence float64, strict bool) (*models.ModuleDraft, error) {
	draft, err := b.assemble(module, fields, confidence, strict)
	if err != nil {
		return nil, err
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	return draft, nil
}

// BuildPartial maps whatever fields exist into a draft without checking
// completeness. Clarifying drafts are persisted through this path.
func (b *DraftBuilder) BuildPartial(module models.Module, fields models.ExtractedFields, confidence float64) *models.ModuleDraft {
	draft, err := b.assemble(module, fields, confidence, false)
	if err != nil {
		return nil
	}
	return draft
}

func (b *DraftBuilder) assemble(module models.Module, fields models.ExtractedFields, confidence float64, strict bool) (*models.ModuleDraft, error) {
	draft := &models.ModuleDraft{
		Module:              module,
		Confidence:          confidence,
		StrictParametersMet: strict,
	}

	switch module {
	case models.ModuleFinance:
		var amount float64
		if fields.Amount != nil {
			amount = *fields.Amount
		}
		currency := fields.Currency
		if currency == "" {
			currency = b.defaultCurrency
		}
		draft.Finance = &models.FinanceDraft{
			Merchant:    fields.Merchant,
			Amount:      amount,
			Currency:    currency,
			Category:    b.inferCategory(fields),
			Description: fields.Description,
		}
	case models.ModuleTodo:
		draft.Todo = &models.TodoDraft{
			Title:    fields.TodoTitle,
			Priority: b.inferPriority(fields),
			DueDate:  b.inferDueDate(fields),
			Notes:    fields.Description,
		}
	case models.ModuleCrypto:
		draft.Crypto = &models.CryptoDraft{
			Symbol:   strings.ToUpper(fields.CryptoSymbol),
			Side:     fields.CryptoSide,
			Quantity: fields.Quantity,
			Price:    fields.Price,
		}
	case models.ModuleLinks:
		draft.Link = &models.LinkDraft{
			URL:   fields.URL,
			Title: fields.LinkTitle,
		}
	default:
		return nil, fmt.Errorf("module %q has no draft shape", module)
	}

	return draft, nil
}

func (b *DraftBuilder) inferCategory(fields models.ExtractedFields) string {
	haystack := NormalizeText(fields.Merchant + " " + fields.Description)
	for _, bucket := range categoryBuckets {
		for _, kw := range bucket.keywords {
			if strings.Contains(haystack, kw) {
				return bucket.category
			}
		}
	}
	return "Outros"
}

func (b *DraftBuilder) inferPriority(fields models.ExtractedFields) string {
	haystack := NormalizeText(fields.TodoTitle + " " + fields.DueHint + " " + fields.Description)
	for _, hint := range highPriorityHints {
		if strings.Contains(haystack, hint) {
			return "high"
		}
	}
	return "normal"
}

func (b *DraftBuilder) inferDueDate(fields models.ExtractedFields) *time.Time {
	haystack := NormalizeText(fields.TodoTitle + " " + fields.DueHint)
	endOfDay := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
	}

	now := b.now()
	for _, hint := range dueTodayHints {
		if strings.Contains(haystack, hint) {
			due := endOfDay(now)
			return &due
		}
	}
	for _, hint := range dueTomorrowHints {
		if strings.Contains(haystack, hint) {
			due := endOfDay(now.AddDate(0, 0, 1))
			return &due
		}
	}
	for _, hint := range dueWeekHints {
		if strings.Contains(haystack, hint) {
			due := endOfDay(now.AddDate(0, 0, 7))
			return &due
		}
	}
	return nil
}

// MissingFields infers required-but-absent fields per module. Pure
// function of the extracted entity set, never of the raw text.
func MissingFields(module models.Module, fields models.ExtractedFields) []string {
	var missing []string
	switch module {
	case models.ModuleFinance:
		if fields.Merchant == "" {
			missing = append(missing, FieldFinanceMerchant)
		}
		if fields.Amount == nil {
			missing = append(missing, FieldFinanceAmount)
		}
	case models.ModuleTodo:
		if fields.TodoTitle == "" {
			missing = append(missing, FieldTodoTitle)
		}
	case models.ModuleCrypto:
		if fields.CryptoSymbol == "" {
			missing = append(missing, FieldCryptoSymbol)
		}
		side := strings.ToLower(fields.CryptoSide)
		if (side == "buy" || side == "sell" || side == "swap") && fields.Quantity == nil {
			missing = append(missing, FieldCryptoQuantity)
		}
		if (side == "buy" || side == "sell") && fields.Price == nil {
			missing = append(missing, FieldCryptoPrice)
		}
	case models.ModuleLinks:
		if fields.URL == "" {
			missing = append(missing, FieldLinkURL)
		}
	}
	return missing
}

// ClarificationPrompt renders the fixed natural-language template for a
// module and missing-field combination. Empty when nothing is missing.
func ClarificationPrompt(module models.Module, missing []string) string {
	if len(missing) == 0 {
		return ""
	}
	has := func(field string) bool {
		for _, m := range missing {
			if m == field {
				return true
			}
		}
		return false
	}

	switch module {
	case models.ModuleFinance:
		switch {
		case has(FieldFinanceMerchant) && has(FieldFinanceAmount):
			return "Entendi que foi uma despesa. De qual estabelecimento foi e qual foi o valor?"
		case has(FieldFinanceMerchant):
			return "Registrei o valor. De qual estabelecimento foi essa despesa?"
		default:
			return "Anotei o estabelecimento. Qual foi o valor dessa despesa?"
		}
	case models.ModuleTodo:
		return "Claro! Qual é a tarefa que você quer criar?"
	case models.ModuleCrypto:
		var parts []string
		if has(FieldCryptoSymbol) {
			parts = append(parts, "Qual criptomoeda você quer registrar?")
		}
		if has(FieldCryptoQuantity) {
			parts = append(parts, "Qual foi a quantidade da operação?")
		}
		if has(FieldCryptoPrice) {
			parts = append(parts, "A qual preço?")
		}
		return strings.Join(parts, " ")
	case models.ModuleLinks:
		return "Qual é o link que você quer guardar?"
	default:
		return ""
	}
}
