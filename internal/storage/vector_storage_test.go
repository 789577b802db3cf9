// ABOUTME: Unit tests for vector memory similarity scoring
// ABOUTME: Covers cosine similarity and the keyword overlap fallback
package storage

import (
	"math"
	"testing"
)

func TestCosineSimilarity_OrthogonalAndParallel(t *testing.T) {
	a := []float64{1.0, 0.0, 0.0}
	b := []float64{0.0, 1.0, 0.0}
	c := []float64{2.0, 0.0, 0.0}

	if sim := cosineSimilarity(a, b); sim != 0 {
		t.Errorf("Orthogonal vectors: expected 0, got %f", sim)
	}
	if sim := cosineSimilarity(a, c); math.Abs(sim-1.0) > 1e-9 {
		t.Errorf("Parallel vectors: expected 1, got %f", sim)
	}
}

func TestCosineSimilarity_MismatchedOrZero(t *testing.T) {
	if sim := cosineSimilarity([]float64{1, 2}, []float64{1, 2, 3}); sim != 0 {
		t.Errorf("Mismatched lengths: expected 0, got %f", sim)
	}
	if sim := cosineSimilarity([]float64{0, 0}, []float64{1, 1}); sim != 0 {
		t.Errorf("Zero vector: expected 0, got %f", sim)
	}
}

func TestCosineSimilarity_RanksNearerVectorsHigher(t *testing.T) {
	query := []float64{0.95, 0.05, 0.0}
	near := []float64{0.9, 0.1, 0.0}
	far := []float64{0.0, 1.0, 0.0}

	if cosineSimilarity(query, near) <= cosineSimilarity(query, far) {
		t.Error("Expected nearer vector to score higher")
	}
}

func TestKeywordOverlap_Fraction(t *testing.T) {
	tokens := []string{"continente", "alimentacao"}

	if score := keywordOverlap(tokens, "continente alimentacao 45.00 eur"); score != 1.0 {
		t.Errorf("Full overlap: expected 1.0, got %f", score)
	}
	if score := keywordOverlap(tokens, "farmacia saude"); score != 0 {
		t.Errorf("No overlap: expected 0, got %f", score)
	}
	if score := keywordOverlap(tokens, "continente lazer"); score != 0.5 {
		t.Errorf("Half overlap: expected 0.5, got %f", score)
	}
}

func TestKeywordOverlap_EmptyQuery(t *testing.T) {
	if score := keywordOverlap(nil, "anything"); score != 0 {
		t.Errorf("Empty query: expected 0, got %f", score)
	}
}
