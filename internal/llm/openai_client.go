// ABOUTME: OpenAI client for embeddings and semantic intent parsing
// ABOUTME: Uses text-embedding-3-small for embeddings, gpt-4o-mini for structured parsing (configurable)
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/harper/cortex-standalone/internal/config"
	"github.com/harper/cortex-standalone/internal/core"
	"github.com/harper/cortex-standalone/internal/models"
	"github.com/harper/cortex-standalone/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultChatModel is the default model for chat completions
	DefaultChatModel = "gpt-4o-mini"
	// DefaultEmbeddingModel is the default model for embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3
)

// intentSystemPrompt instructs the model to return only the decision JSON
const intentSystemPrompt = `You are the semantic interpretation layer of a personal assistant for a Portuguese-speaking user. Given an ambiguous message plus retrieval context, decide which module it belongs to and extract its fields.

Modules:
- "finance": an expense or income. Fields: merchant, amount (number), currency, description.
- "todo": a task to create. Fields: todo_title, due_hint, description.
- "crypto": a portfolio operation. Fields: crypto_symbol, crypto_side (buy/sell/swap/hold), quantity (number), price (number).
- "links": a link to save. Fields: url, link_title.
- "conversation": none of the above; the user is just talking.

Return ONLY a JSON object:
{"module": "...", "confidence": 0.0-1.0, "strict_parameters_met": bool, "fields": {...}, "reason": "one short sentence"}

strict_parameters_met is true only when every required field of the chosen module was stated or directly inferable. Never invent amounts, symbols, or URLs. When in doubt, choose "conversation" with low confidence.`

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey         string
	ChatModel      string
	EmbeddingModel openai.EmbeddingModel
	MaxRetries     int
	RetryDelay     time.Duration
	Timeout        time.Duration
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	chatModel := os.Getenv("CORTEX_OPENAI_MODEL")
	if chatModel == "" {
		chatModel = DefaultChatModel
	}

	return &ClientConfig{
		APIKey:         apiKey,
		ChatModel:      chatModel,
		EmbeddingModel: DefaultEmbeddingModel,
		MaxRetries:     3,
		RetryDelay:     time.Second * 2,
		Timeout:        30 * time.Second,
	}
}

// ClientConfigFrom maps the application config onto a ClientConfig so the
// env-driven model, timeout, and retry settings reach the client
func ClientConfigFrom(cfg *config.Config) *ClientConfig {
	return &ClientConfig{
		APIKey:         cfg.OpenAIKey,
		ChatModel:      cfg.ChatModel,
		EmbeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
		Timeout:        cfg.Timeout,
	}
}

// OpenAIClient wraps the OpenAI API client with retry logic
type OpenAIClient struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	maxRetries     int
	retryDelay     time.Duration
	timeout        time.Duration
}

// NewOpenAIClient creates a new OpenAI client with the given API key using default configuration
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	return NewOpenAIClientWithConfig(DefaultConfig(apiKey))
}

// NewOpenAIClientWithConfig creates a new OpenAI client with custom configuration
func NewOpenAIClientWithConfig(clientCfg *ClientConfig) (*OpenAIClient, error) {
	if clientCfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	client := openai.NewClient(clientCfg.APIKey)

	timeout := clientCfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIClient{
		client:         client,
		chatModel:      clientCfg.ChatModel,
		embeddingModel: clientCfg.EmbeddingModel,
		maxRetries:     clientCfg.MaxRetries,
		retryDelay:     clientCfg.RetryDelay,
		timeout:        timeout,
	}, nil
}

// GetClient returns the underlying OpenAI client for direct use
func (c *OpenAIClient) GetClient() *openai.Client {
	return c.client
}

// GenerateEmbedding generates a 1536-dimensional embedding vector using text-embedding-3-small
func (c *OpenAIClient) GenerateEmbedding(text string) ([]float64, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.CalculateBackoff(c.retryDelay, attempt))
		}

		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)

		resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: c.embeddingModel,
		})

		if err != nil {
			cancel()
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}

		if len(resp.Data) == 0 {
			cancel()
			lastErr = fmt.Errorf("attempt %d: no embeddings returned", attempt+1)
			continue
		}

		// Convert []float32 to []float64
		embedding32 := resp.Data[0].Embedding
		embedding64 := make([]float64, len(embedding32))
		for i, v := range embedding32 {
			embedding64[i] = float64(v)
		}

		cancel()
		return embedding64, nil
	}

	return nil, fmt.Errorf("failed to generate embedding after %d attempts: %w", c.maxRetries+1, lastErr)
}

// ParseSemanticIntent interprets an ambiguous signal against its retrieval
// context and returns the structured routing decision
func (c *OpenAIClient) ParseSemanticIntent(ctx context.Context, req core.ParseRequest) (*models.ParsedSemanticIntent, error) {
	var prompt strings.Builder
	if req.ContextMarkdown != "" {
		prompt.WriteString(req.ContextMarkdown)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString(fmt.Sprintf("Dispatcher hint: module=%s confidence=%.2f\n\n",
		req.DispatcherHint.Module, req.DispatcherHint.Confidence))
	prompt.WriteString(fmt.Sprintf("Message: %s", req.RawText))

	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.CalculateBackoff(c.retryDelay, attempt))
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)

		resp, err := c.client.CreateChatCompletion(attemptCtx, openai.ChatCompletionRequest{
			Model: c.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: intentSystemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt.String(),
				},
			},
			Temperature: 0.2,
		})

		if err != nil {
			cancel()
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}

		if len(resp.Choices) == 0 {
			cancel()
			lastErr = fmt.Errorf("attempt %d: no completion choices returned", attempt+1)
			continue
		}

		intent, err := decodeIntent(resp.Choices[0].Message.Content)
		if err != nil {
			cancel()
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}

		cancel()
		return intent, nil
	}

	return nil, fmt.Errorf("failed to parse intent after %d attempts: %w", c.maxRetries+1, lastErr)
}

// decodeIntent parses the model response, tolerating markdown fences,
// and validates the module value
func decodeIntent(content string) (*models.ParsedSemanticIntent, error) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var intent models.ParsedSemanticIntent
	if err := json.Unmarshal([]byte(cleaned), &intent); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	switch intent.Module {
	case models.ModuleFinance, models.ModuleTodo, models.ModuleCrypto,
		models.ModuleLinks, models.ModuleConversation:
	default:
		return nil, fmt.Errorf("unknown module %q in response", intent.Module)
	}

	if intent.Confidence < 0 {
		intent.Confidence = 0
	}
	if intent.Confidence > 1 {
		intent.Confidence = 1
	}
	return &intent, nil
}
