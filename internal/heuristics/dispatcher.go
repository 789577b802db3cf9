// ABOUTME: Rule-based first-pass dispatcher classifying normalized signals
// ABOUTME: Pure regex and keyword heuristics, no I/O and no LLM
package heuristics

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/harper/cortex-standalone/internal/config"
	"github.com/harper/cortex-standalone/internal/models"
)

var (
	urlRe = regexp.MustCompile(`https?://[^\s]+|www\.[^\s]+`)

	// "45", "45.50", "45,50" followed by a currency word
	amountWithCurrencyRe = regexp.MustCompile(`(\d+(?:[.,]\d{1,2})?)\s*(euros?|eur|€|\$|usd|dolares?)`)
	bareAmountRe         = regexp.MustCompile(`\b(\d+(?:[.,]\d{1,2})?)\b`)

	// "cria uma tarefa X", "lembra-me de X", "preciso de X"
	todoTriggerRe     = regexp.MustCompile(`(?:cria(?:r)?\s+(?:uma\s+)?tarefa(?:\s+para)?|lembra(?:[- ])?me\s+de|nao\s+me\s+deixes?\s+esquecer\s+de|tenho\s+de|preciso\s+de)\s+(.{2,})`)
	todoBareTriggerRe = regexp.MustCompile(`cria(?:r)?\s+(?:uma\s+)?tarefa\s*$`)

	// merchant token run before the amount: "continente 45 euros"
	merchantBeforeAmountRe = regexp.MustCompile(`^([a-z][a-z \-&]{1,40}?)\s+\d`)
	// merchant after a location preposition: "gastei 30 no continente"
	merchantAfterPrepRe = regexp.MustCompile(`\b(?:no|na|nos|nas)\s+([a-z][a-z\-]+(?:\s+[a-z\-]+)?)\s*$`)

	// "comprei 0.5 btc a 60000"
	cryptoQuantityRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:de\s+)?(btc|eth|sol|ada|xrp|doge|bitcoin|ethereum|solana|cardano)`)
	cryptoPriceRe    = regexp.MustCompile(`\b(?:a|por|em)\s+(\d+(?:[.,]\d{1,2})?)`)
)

var expenseVerbs = []string{"gastei", "paguei", "comprei", "custou", "despesa de", "torrei"}

var incomeVerbs = []string{"recebi", "salario", "ordenado", "vencimento", "caiu na conta"}

var cryptoSymbols = map[string]string{
	"btc": "BTC", "bitcoin": "BTC",
	"eth": "ETH", "ethereum": "ETH",
	"sol": "SOL", "solana": "SOL",
	"ada": "ADA", "cardano": "ADA",
	"xrp": "XRP",
	"doge": "DOGE",
}

var cryptoBuyVerbs = []string{"comprei", "compra de", "comprar"}
var cryptoSellVerbs = []string{"vendi", "venda de", "vender"}
var cryptoSwapVerbs = []string{"troquei", "swap de"}

// Dispatcher is the heuristic baseline classifier
type Dispatcher struct {
	reflexThreshold float64
}

// New creates a dispatcher with the configured reflex threshold
func New(cfg *config.Config) *Dispatcher {
	return &Dispatcher{reflexThreshold: cfg.ReflexThreshold}
}

// Evaluate classifies one normalized signal. Rules run in fixed order:
// OCR, links, todo, crypto, finance, then the conversational default.
func (d *Dispatcher) Evaluate(signalType models.SignalType, normalizedText string, trace *models.OcrTrace) models.DispatcherDecision {
	if signalType == models.SignalTypeOCR && trace != nil {
		return d.finish(d.evaluateOcr(trace))
	}
	if decision, ok := d.evaluateLink(normalizedText); ok {
		return d.finish(decision)
	}
	if decision, ok := d.evaluateTodo(normalizedText); ok {
		return d.finish(decision)
	}
	if decision, ok := d.evaluateCrypto(normalizedText); ok {
		return d.finish(decision)
	}
	if decision, ok := d.evaluateFinance(normalizedText); ok {
		return d.finish(decision)
	}

	return d.finish(models.DispatcherDecision{
		Module:     models.ModuleConversation,
		Confidence: 0.25,
		Reason:     []string{"no actionable pattern matched"},
	})
}

// finish enforces the strategy invariant on the way out
func (d *Dispatcher) finish(decision models.DispatcherDecision) models.DispatcherDecision {
	decision.Strategy = models.ResolveStrategy(decision.Confidence, decision.StrictParametersMet, d.reflexThreshold)
	return decision
}

func (d *Dispatcher) evaluateOcr(trace *models.OcrTrace) models.DispatcherDecision {
	fields := models.ExtractedFields{
		Merchant: trace.Merchant,
		Currency: trace.Currency,
	}
	if trace.Amount > 0 {
		amount := trace.Amount
		fields.Amount = &amount
	}
	strict := trace.Merchant != "" && trace.Amount > 0
	confidence := trace.Confidence
	if confidence <= 0 {
		confidence = 0.5
	}
	return models.DispatcherDecision{
		Module:              models.ModuleFinance,
		Confidence:          confidence,
		StrictParametersMet: strict,
		Fields:              fields,
		Reason:              []string{"ocr trace present"},
	}
}

func (d *Dispatcher) evaluateLink(text string) (models.DispatcherDecision, bool) {
	match := urlRe.FindString(text)
	if match == "" {
		return models.DispatcherDecision{}, false
	}
	return models.DispatcherDecision{
		Module:              models.ModuleLinks,
		Confidence:          0.9,
		StrictParametersMet: true,
		Fields:              models.ExtractedFields{URL: strings.TrimRight(match, ".,;)")},
		Reason:              []string{"url detected"},
	}, true
}

func (d *Dispatcher) evaluateTodo(text string) (models.DispatcherDecision, bool) {
	match := todoTriggerRe.FindStringSubmatch(text)
	if match == nil {
		if todoBareTriggerRe.MatchString(text) {
			return models.DispatcherDecision{
				Module:     models.ModuleTodo,
				Confidence: 0.40,
				Fields:     models.ExtractedFields{DueHint: text},
				Reason:     []string{"task trigger phrase matched without a title"},
			}, true
		}
		return models.DispatcherDecision{}, false
	}
	title := strings.TrimSpace(match[1])
	return models.DispatcherDecision{
		Module:              models.ModuleTodo,
		Confidence:          0.85,
		StrictParametersMet: title != "",
		Fields: models.ExtractedFields{
			TodoTitle: title,
			DueHint:   text,
		},
		Reason: []string{"task trigger phrase matched"},
	}, true
}

func (d *Dispatcher) evaluateCrypto(text string) (models.DispatcherDecision, bool) {
	symbolMatch := cryptoQuantityRe.FindStringSubmatch(text)
	if symbolMatch == nil {
		return models.DispatcherDecision{}, false
	}

	side := ""
	switch {
	case containsAny(text, cryptoBuyVerbs):
		side = "buy"
	case containsAny(text, cryptoSellVerbs):
		side = "sell"
	case containsAny(text, cryptoSwapVerbs):
		side = "swap"
	default:
		return models.DispatcherDecision{}, false
	}

	fields := models.ExtractedFields{
		CryptoSymbol: cryptoSymbols[symbolMatch[2]],
		CryptoSide:   side,
	}
	if quantity, ok := parseAmount(symbolMatch[1]); ok {
		fields.Quantity = &quantity
	}
	if priceMatch := cryptoPriceRe.FindStringSubmatch(text); priceMatch != nil {
		if price, ok := parseAmount(priceMatch[1]); ok {
			fields.Price = &price
		}
	}

	strict := fields.Quantity != nil && (side == "swap" || fields.Price != nil)
	return models.DispatcherDecision{
		Module:              models.ModuleCrypto,
		Confidence:          0.8,
		StrictParametersMet: strict,
		Fields:              fields,
		Reason:              []string{"crypto operation matched"},
	}, true
}

func (d *Dispatcher) evaluateFinance(text string) (models.DispatcherDecision, bool) {
	hasExpenseVerb := containsAny(text, expenseVerbs)
	hasIncomeVerb := containsAny(text, incomeVerbs)

	var (
		amount   *float64
		currency string
	)
	if match := amountWithCurrencyRe.FindStringSubmatch(text); match != nil {
		if value, ok := parseAmount(match[1]); ok {
			amount = &value
			currency = normalizeCurrency(match[2])
		}
	} else if hasExpenseVerb || hasIncomeVerb {
		if match := bareAmountRe.FindStringSubmatch(text); match != nil {
			if value, ok := parseAmount(match[1]); ok {
				amount = &value
			}
		}
	}

	merchant := extractMerchant(text)

	if amount == nil && !hasExpenseVerb && !hasIncomeVerb {
		return models.DispatcherDecision{}, false
	}

	fields := models.ExtractedFields{
		Merchant: merchant,
		Amount:   amount,
		Currency: currency,
	}
	if hasIncomeVerb {
		// Category inference downstream reads the income keywords here
		fields.Description = text
	}

	var (
		confidence float64
		reason     string
	)
	switch {
	case (hasExpenseVerb || hasIncomeVerb) && amount != nil && merchant != "":
		confidence, reason = 0.85, "finance verb with merchant and amount"
	case amount != nil && merchant != "":
		confidence, reason = 0.8, "merchant and amount pattern"
	case (hasExpenseVerb || hasIncomeVerb) && amount != nil:
		confidence, reason = 0.6, "finance verb with amount"
	default:
		confidence, reason = 0.4, "finance verb without amount"
	}

	// Income entries stand on amount alone; expense strictness needs a merchant
	strict := amount != nil && (merchant != "" || hasIncomeVerb)

	return models.DispatcherDecision{
		Module:              models.ModuleFinance,
		Confidence:          confidence,
		StrictParametersMet: strict,
		Fields:              fields,
		Reason:              []string{reason},
	}, true
}

// extractMerchant tries the leading-token pattern first, then prepositions
func extractMerchant(text string) string {
	if match := merchantBeforeAmountRe.FindStringSubmatch(text); match != nil {
		candidate := strings.TrimSpace(match[1])
		if !isVerbPhrase(candidate) {
			return candidate
		}
	}
	if match := merchantAfterPrepRe.FindStringSubmatch(text); match != nil {
		return strings.TrimSpace(match[1])
	}
	return ""
}

// isVerbPhrase filters captures that start with a finance verb rather
// than a merchant name
func isVerbPhrase(candidate string) bool {
	first := strings.Fields(candidate)
	if len(first) == 0 {
		return true
	}
	for _, verb := range append(append([]string{}, expenseVerbs...), incomeVerbs...) {
		if strings.HasPrefix(verb, first[0]) || strings.HasPrefix(first[0], strings.Fields(verb)[0]) {
			return true
		}
	}
	return false
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}

// parseAmount accepts both decimal comma and decimal point
func parseAmount(raw string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func normalizeCurrency(raw string) string {
	switch {
	case strings.HasPrefix(raw, "eur"), raw == "€", strings.HasPrefix(raw, "euro"):
		return "EUR"
	case raw == "$", raw == "usd", strings.HasPrefix(raw, "dolar"):
		return "USD"
	default:
		return strings.ToUpper(raw)
	}
}
