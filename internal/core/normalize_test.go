// ABOUTME: Tests for canonical text normalization
// ABOUTME: Verifies lowercasing, diacritic stripping, whitespace collapse, idempotence
package core

import (
	"reflect"
	"testing"
)

func TestNormalizeText_Lowercase(t *testing.T) {
	if got := NormalizeText("CRIA uma Tarefa"); got != "cria uma tarefa" {
		t.Errorf("NormalizeText() = %q, want %q", got, "cria uma tarefa")
	}
}

func TestNormalizeText_StripsDiacritics(t *testing.T) {
	cases := map[string]string{
		"Alimentação":      "alimentacao",
		"não consigo":      "nao consigo",
		"café da manhã":    "cafe da manha",
		"SOCORRO urgência": "socorro urgencia",
	}
	for input, want := range cases {
		if got := NormalizeText(input); got != want {
			t.Errorf("NormalizeText(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeText_CollapsesWhitespace(t *testing.T) {
	if got := NormalizeText("  Continente \t 45\n euros  "); got != "continente 45 euros" {
		t.Errorf("NormalizeText() = %q", got)
	}
}

func TestNormalizeText_Idempotent(t *testing.T) {
	inputs := []string{
		"Continente 45 euros",
		"SOCORRO!!! não consigo mais, tudo junto, ajuda",
		"paguei 12,50€ na Farmácia   Central",
		"",
	}
	for _, in := range inputs {
		once := NormalizeText(in)
		twice := NormalizeText(once)
		if once != twice {
			t.Errorf("normalization not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestMerchantTokens(t *testing.T) {
	got := MerchantTokens("Pingo-Doce & Go, Lda.")
	want := []string{"pingo", "doce", "go", "lda"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MerchantTokens() = %v, want %v", got, want)
	}

	if tokens := MerchantTokens(""); tokens != nil {
		t.Errorf("MerchantTokens(\"\") = %v, want nil", tokens)
	}
}
