// ABOUTME: Unit tests for response decoding of the semantic intent parser
// ABOUTME: API-dependent paths are exercised through the router's fakes
package llm

import (
	"testing"
	"time"

	"github.com/harper/cortex-standalone/internal/config"
	"github.com/harper/cortex-standalone/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

func TestClientConfigFrom_CarriesEnvDrivenSettings(t *testing.T) {
	cfg := config.Default()
	cfg.OpenAIKey = "sk-test"
	cfg.ChatModel = "gpt-4o"
	cfg.EmbeddingModel = "text-embedding-3-large"
	cfg.Timeout = 5 * time.Second
	cfg.MaxRetries = 1
	cfg.RetryDelay = 250 * time.Millisecond

	client, err := NewOpenAIClientWithConfig(ClientConfigFrom(cfg))
	if err != nil {
		t.Fatalf("NewOpenAIClientWithConfig failed: %v", err)
	}
	if client.chatModel != "gpt-4o" {
		t.Errorf("Expected chat model gpt-4o, got %s", client.chatModel)
	}
	if client.embeddingModel != openai.EmbeddingModel("text-embedding-3-large") {
		t.Errorf("Expected large embedding model, got %s", client.embeddingModel)
	}
	if client.timeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %s", client.timeout)
	}
	if client.maxRetries != 1 || client.retryDelay != 250*time.Millisecond {
		t.Errorf("Expected retry settings 1/250ms, got %d/%s", client.maxRetries, client.retryDelay)
	}
}

func TestNewOpenAIClientWithConfig_ZeroTimeoutFallsBack(t *testing.T) {
	client, err := NewOpenAIClientWithConfig(&ClientConfig{APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("NewOpenAIClientWithConfig failed: %v", err)
	}
	if client.timeout != 30*time.Second {
		t.Errorf("Expected 30s fallback timeout, got %s", client.timeout)
	}
}

func TestDecodeIntent_PlainJSON(t *testing.T) {
	intent, err := decodeIntent(`{"module":"finance","confidence":0.82,"strict_parameters_met":true,"fields":{"merchant":"Continente","amount":45,"currency":"EUR"},"reason":"expense with amount"}`)
	if err != nil {
		t.Fatalf("decodeIntent failed: %v", err)
	}
	if intent.Module != models.ModuleFinance {
		t.Errorf("Expected finance, got %s", intent.Module)
	}
	if !intent.StrictParametersMet {
		t.Error("Expected strict_parameters_met true")
	}
	if intent.Fields.Amount == nil || *intent.Fields.Amount != 45 {
		t.Errorf("Expected amount 45, got %v", intent.Fields.Amount)
	}
}

func TestDecodeIntent_MarkdownFences(t *testing.T) {
	intent, err := decodeIntent("```json\n{\"module\":\"todo\",\"confidence\":0.6,\"fields\":{\"todo_title\":\"ligar para o dentista\"}}\n```")
	if err != nil {
		t.Fatalf("decodeIntent failed: %v", err)
	}
	if intent.Module != models.ModuleTodo {
		t.Errorf("Expected todo, got %s", intent.Module)
	}
}

func TestDecodeIntent_UnknownModuleRejected(t *testing.T) {
	if _, err := decodeIntent(`{"module":"weather","confidence":0.9}`); err == nil {
		t.Fatal("Expected error for unknown module")
	}
}

func TestDecodeIntent_ConfidenceClamped(t *testing.T) {
	intent, err := decodeIntent(`{"module":"conversation","confidence":1.8}`)
	if err != nil {
		t.Fatalf("decodeIntent failed: %v", err)
	}
	if intent.Confidence != 1 {
		t.Errorf("Expected clamp to 1, got %f", intent.Confidence)
	}

	intent, err = decodeIntent(`{"module":"conversation","confidence":-0.2}`)
	if err != nil {
		t.Fatalf("decodeIntent failed: %v", err)
	}
	if intent.Confidence != 0 {
		t.Errorf("Expected clamp to 0, got %f", intent.Confidence)
	}
}

func TestDecodeIntent_MalformedJSON(t *testing.T) {
	if _, err := decodeIntent("the user wants to buy bitcoin"); err == nil {
		t.Fatal("Expected error for non-JSON response")
	}
}
