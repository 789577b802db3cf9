// ABOUTME: Labeled signal fixtures for routing benchmarks
// ABOUTME: Portuguese and English signals with expected module and strategy
package routing

import "github.com/harper/cortex-standalone/internal/models"

// Fixture is one labeled benchmark signal
type Fixture struct {
	ID             string
	Text           string
	SignalType     models.SignalType
	OcrTrace       *models.OcrTrace
	ExpectedModule models.Module
	ExpectReflex   bool
}

// AllFixtures returns the full labeled corpus
func AllFixtures() []Fixture {
	return []Fixture{
		// Finance - complete expense signals
		{
			ID:             "fin-merchant-amount",
			Text:           "Continente 45 euros",
			SignalType:     models.SignalTypeText,
			ExpectedModule: models.ModuleFinance,
			ExpectReflex:   true,
		},
		{
			ID:             "fin-verb-prep-merchant",
			Text:           "gastei 30,50 euros no Pingo Doce",
			SignalType:     models.SignalTypeText,
			ExpectedModule: models.ModuleFinance,
			ExpectReflex:   true,
		},
		{
			ID:             "fin-pharmacy",
			Text:           "paguei 12,30 euros na farmacia",
			SignalType:     models.SignalTypeText,
			ExpectedModule: models.ModuleFinance,
			ExpectReflex:   true,
		},
		{
			ID:             "fin-income",
			Text:           "recebi o salario 1200 euros",
			SignalType:     models.SignalTypeText,
			ExpectedModule: models.ModuleFinance,
			ExpectReflex:   false,
		},
		// Finance - incomplete, must not reflex
		{
			ID:             "fin-amount-only",
			Text:           "gastei 45",
			SignalType:     models.SignalTypeText,
			ExpectedModule: models.ModuleFinance,
			ExpectReflex:   false,
		},
		{
			ID:             "fin-verb-only",
			Text:           "comprei umas coisas hoje",
			SignalType:     models.SignalTypeText,
			ExpectedModule: models.ModuleFinance,
			ExpectReflex:   false,
		},
		// OCR receipts
		{
			ID:         "ocr-complete",
			Text:       "recibo anexo",
			SignalType: models.SignalTypeOCR,
			OcrTrace: &models.OcrTrace{
				Merchant:   "Auchan",
				Amount:     63.20,
				Currency:   "EUR",
				Confidence: 0.93,
			},
			ExpectedModule: models.ModuleFinance,
			ExpectReflex:   true,
		},
		{
			ID:         "ocr-missing-merchant",
			Text:       "recibo anexo",
			SignalType: models.SignalTypeOCR,
			OcrTrace: &models.OcrTrace{
				Amount:     18.75,
				Currency:   "EUR",
				Confidence: 0.88,
			},
			ExpectedModule: models.ModuleFinance,
			ExpectReflex:   false,
		},
		// Todo
		{
			ID:             "todo-reminder",
			Text:           "lembra-me de pagar a renda amanha",
			SignalType:     models.SignalTypeText,
			ExpectedModule: models.ModuleTodo,
			ExpectReflex:   true,
		},
		{
			ID:             "todo-create",
			Text:           "cria uma tarefa para marcar consulta",
			SignalType:     models.SignalTypeText,
			ExpectedModule: models.ModuleTodo,
			ExpectReflex:   true,
		},
		{
			ID:             "todo-urgent",
			Text:           "tenho de enviar o relatorio hoje sem falta",
			SignalType:     models.SignalTypeText,
			ExpectedModule: models.ModuleTodo,
			ExpectReflex:   true,
		},
		// Crypto
		{
			ID:             "crypto-buy-price",
			Text:           "comprei 0.5 btc a 60000",
			SignalType:     models.SignalTypeText,
			ExpectedModule: models.ModuleCrypto,
			ExpectReflex:   true, // reflex strategy; the risk gate still holds the commit
		},
		{
			ID:             "crypto-sell",
			Text:           "vendi 2 eth a 3000",
			SignalType:     models.SignalTypeText,
			ExpectedModule: models.ModuleCrypto,
			ExpectReflex:   true,
		},
		{
			ID:             "crypto-no-price",
			Text:           "comprei 100 ada",
			SignalType:     models.SignalTypeText,
			ExpectedModule: models.ModuleCrypto,
			ExpectReflex:   false,
		},
		// Links
		{
			ID:             "link-plain",
			Text:           "https://example.com/artigo-interessante",
			SignalType:     models.SignalTypeText,
			ExpectedModule: models.ModuleLinks,
			ExpectReflex:   true,
		},
		{
			ID:             "link-read-later",
			Text:           "guarda para ler depois https://blog.example.com/go-generics",
			SignalType:     models.SignalTypeText,
			ExpectedModule: models.ModuleLinks,
			ExpectReflex:   true,
		},
		// Conversation
		{
			ID:             "conv-greeting",
			Text:           "bom dia, como estas?",
			SignalType:     models.SignalTypeText,
			ExpectedModule: models.ModuleConversation,
			ExpectReflex:   false,
		},
		{
			ID:             "conv-vent",
			Text:           "hoje foi um dia dificil, so queria desabafar",
			SignalType:     models.SignalTypeText,
			ExpectedModule: models.ModuleConversation,
			ExpectReflex:   false,
		},
		{
			ID:             "conv-english",
			Text:           "what do you think about the weather lately",
			SignalType:     models.SignalTypeText,
			ExpectedModule: models.ModuleConversation,
			ExpectReflex:   false,
		},
		{
			ID:             "conv-question",
			Text:           "quanto gastei este mes?",
			SignalType:     models.SignalTypeText,
			ExpectedModule: models.ModuleConversation,
			ExpectReflex:   false,
		},
	}
}
