// ABOUTME: Tests for the heuristic dispatcher rule set
// ABOUTME: Covers ocr, links, todo, crypto, finance, and the conversational default
package heuristics

import (
	"testing"

	"github.com/harper/cortex-standalone/internal/config"
	"github.com/harper/cortex-standalone/internal/models"
)

func testDispatcher() *Dispatcher {
	return New(config.Default())
}

func TestEvaluate_OcrTraceRoutesToFinanceStrict(t *testing.T) {
	d := testDispatcher()

	trace := &models.OcrTrace{Merchant: "farmacia central", Amount: 12.30, Currency: "EUR", Confidence: 0.92}
	decision := d.Evaluate(models.SignalTypeOCR, "recibo anexo", trace)

	if decision.Module != models.ModuleFinance {
		t.Fatalf("expected finance module, got %s", decision.Module)
	}
	if !decision.StrictParametersMet {
		t.Error("expected strict parameters met for complete ocr trace")
	}
	if decision.Strategy != models.StrategyTacticalReflex {
		t.Errorf("expected tactical_reflex, got %s", decision.Strategy)
	}
	if decision.Fields.Merchant != "farmacia central" {
		t.Errorf("expected merchant from trace, got %q", decision.Fields.Merchant)
	}
	if decision.Fields.Amount == nil || *decision.Fields.Amount != 12.30 {
		t.Error("expected amount from trace")
	}
}

func TestEvaluate_IncompleteOcrTraceGoesDeepDive(t *testing.T) {
	d := testDispatcher()

	trace := &models.OcrTrace{Merchant: "", Amount: 12.30, Confidence: 0.9}
	decision := d.Evaluate(models.SignalTypeOCR, "recibo anexo", trace)

	if decision.StrictParametersMet {
		t.Error("expected strict parameters unmet without merchant")
	}
	if decision.Strategy != models.StrategySemanticDeepDive {
		t.Errorf("expected semantic_deep_dive, got %s", decision.Strategy)
	}
}

func TestEvaluate_UrlRoutesToLinks(t *testing.T) {
	d := testDispatcher()

	decision := d.Evaluate(models.SignalTypeText, "guarda isto https://example.com/artigo.", nil)

	if decision.Module != models.ModuleLinks {
		t.Fatalf("expected links module, got %s", decision.Module)
	}
	if decision.Fields.URL != "https://example.com/artigo" {
		t.Errorf("expected trimmed url, got %q", decision.Fields.URL)
	}
	if decision.Strategy != models.StrategyTacticalReflex {
		t.Errorf("expected tactical_reflex for url, got %s", decision.Strategy)
	}
}

func TestEvaluate_TodoTriggerExtractsTitle(t *testing.T) {
	d := testDispatcher()

	decision := d.Evaluate(models.SignalTypeText, "lembra-me de pagar a renda amanha", nil)

	if decision.Module != models.ModuleTodo {
		t.Fatalf("expected todo module, got %s", decision.Module)
	}
	if decision.Fields.TodoTitle != "pagar a renda amanha" {
		t.Errorf("unexpected title %q", decision.Fields.TodoTitle)
	}
	if !decision.StrictParametersMet {
		t.Error("expected strict parameters met with a title")
	}
}

func TestEvaluate_BareTodoTriggerNeedsClarification(t *testing.T) {
	d := testDispatcher()

	decision := d.Evaluate(models.SignalTypeText, "cria uma tarefa", nil)

	if decision.Module != models.ModuleTodo {
		t.Fatalf("expected todo module, got %s", decision.Module)
	}
	if decision.Fields.TodoTitle != "" {
		t.Errorf("expected empty title, got %q", decision.Fields.TodoTitle)
	}
	if decision.StrictParametersMet {
		t.Error("bare trigger must not meet strict parameters")
	}
	if decision.Strategy != models.StrategySemanticDeepDive {
		t.Errorf("expected deep dive, got %s", decision.Strategy)
	}
}

func TestEvaluate_CryptoBuyWithPriceIsStrict(t *testing.T) {
	d := testDispatcher()

	decision := d.Evaluate(models.SignalTypeText, "comprei 0.5 btc a 60000", nil)

	if decision.Module != models.ModuleCrypto {
		t.Fatalf("expected crypto module, got %s", decision.Module)
	}
	if decision.Fields.CryptoSymbol != "BTC" {
		t.Errorf("expected BTC, got %q", decision.Fields.CryptoSymbol)
	}
	if decision.Fields.CryptoSide != "buy" {
		t.Errorf("expected buy side, got %q", decision.Fields.CryptoSide)
	}
	if decision.Fields.Quantity == nil || *decision.Fields.Quantity != 0.5 {
		t.Error("expected quantity 0.5")
	}
	if decision.Fields.Price == nil || *decision.Fields.Price != 60000 {
		t.Error("expected price 60000")
	}
	if !decision.StrictParametersMet {
		t.Error("expected strict parameters met for buy with price")
	}
}

func TestEvaluate_CryptoBuyWithoutPriceNotStrict(t *testing.T) {
	d := testDispatcher()

	decision := d.Evaluate(models.SignalTypeText, "comprei 0.5 eth", nil)

	if decision.Module != models.ModuleCrypto {
		t.Fatalf("expected crypto module, got %s", decision.Module)
	}
	if decision.StrictParametersMet {
		t.Error("buy without a price must not be strict")
	}
	if decision.Strategy != models.StrategySemanticDeepDive {
		t.Errorf("expected semantic_deep_dive, got %s", decision.Strategy)
	}
}

func TestEvaluate_FinanceMerchantAndAmountIsReflex(t *testing.T) {
	d := testDispatcher()

	decision := d.Evaluate(models.SignalTypeText, "continente 45 euros", nil)

	if decision.Module != models.ModuleFinance {
		t.Fatalf("expected finance module, got %s", decision.Module)
	}
	if decision.Fields.Merchant != "continente" {
		t.Errorf("expected merchant continente, got %q", decision.Fields.Merchant)
	}
	if decision.Fields.Amount == nil || *decision.Fields.Amount != 45 {
		t.Error("expected amount 45")
	}
	if decision.Fields.Currency != "EUR" {
		t.Errorf("expected EUR, got %q", decision.Fields.Currency)
	}
	if decision.Strategy != models.StrategyTacticalReflex {
		t.Errorf("expected tactical_reflex, got %s", decision.Strategy)
	}
}

func TestEvaluate_ExpenseVerbWithPrepositionMerchant(t *testing.T) {
	d := testDispatcher()

	decision := d.Evaluate(models.SignalTypeText, "gastei 30,50 euros no pingo doce", nil)

	if decision.Fields.Merchant != "pingo doce" {
		t.Errorf("expected merchant pingo doce, got %q", decision.Fields.Merchant)
	}
	if decision.Fields.Amount == nil || *decision.Fields.Amount != 30.50 {
		t.Error("expected decimal comma amount 30.50")
	}
	if decision.Strategy != models.StrategyTacticalReflex {
		t.Errorf("expected tactical_reflex, got %s", decision.Strategy)
	}
}

func TestEvaluate_IncomeVerbIsStrictWithoutMerchant(t *testing.T) {
	d := testDispatcher()

	decision := d.Evaluate(models.SignalTypeText, "recebi o salario 1200 euros", nil)

	if decision.Module != models.ModuleFinance {
		t.Fatalf("expected finance module, got %s", decision.Module)
	}
	if !decision.StrictParametersMet {
		t.Error("income with an amount should be strict without a merchant")
	}
	if decision.Fields.Description == "" {
		t.Error("expected income text preserved in description for categorization")
	}
}

func TestEvaluate_AmountOnlyStaysDeepDive(t *testing.T) {
	d := testDispatcher()

	decision := d.Evaluate(models.SignalTypeText, "gastei 45", nil)

	if decision.Module != models.ModuleFinance {
		t.Fatalf("expected finance module, got %s", decision.Module)
	}
	if decision.Strategy != models.StrategySemanticDeepDive {
		t.Errorf("amount without merchant must deep dive, got %s", decision.Strategy)
	}
}

func TestEvaluate_ConversationalDefault(t *testing.T) {
	d := testDispatcher()

	decision := d.Evaluate(models.SignalTypeText, "bom dia, como estas", nil)

	if decision.Module != models.ModuleConversation {
		t.Fatalf("expected conversation module, got %s", decision.Module)
	}
	if decision.Module.IsActionable() {
		t.Error("conversation must not be actionable")
	}
	if decision.Strategy != models.StrategySemanticDeepDive {
		t.Errorf("expected semantic_deep_dive default, got %s", decision.Strategy)
	}
}
