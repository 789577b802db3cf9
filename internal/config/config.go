// ABOUTME: Centralized configuration for the ambient signal router
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the router and its collaborators
type Config struct {
	// Charm settings (vector memory + semantic cache backend)
	CharmHost   string
	CharmDBName string
	AutoSync    bool

	// OpenAI settings
	OpenAIKey      string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Routing constants. Hand-tuned values from the production assistant;
	// kept configurable rather than hard-coded.
	ReflexThreshold  float64
	BiasPerHit       float64
	BiasCap          float64
	MemoryTopK       int
	LedgerSnapshot   int
	ContextMaxLines  int
	InsightEveryN    int
	DefaultCurrency  string
	ClarifyThreshold float64

	// Stress level cuts over the composite score
	StressCritical float64
	StressHigh     float64
	StressElevated float64
	StressMild     float64

	// Alert rules
	SpendAlertRatio float64
	DueSoonWindow   time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := Default()

	cfg.CharmHost = getEnv("CHARM_HOST", cfg.CharmHost)
	cfg.CharmDBName = getEnv("CHARM_DB", cfg.CharmDBName)
	cfg.AutoSync = getEnvBool("CHARM_AUTO_SYNC", cfg.AutoSync)

	cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	cfg.ChatModel = getEnv("CORTEX_OPENAI_MODEL", cfg.ChatModel)
	cfg.EmbeddingModel = getEnv("CORTEX_EMBEDDING_MODEL", cfg.EmbeddingModel)
	cfg.Timeout = getEnvDuration("OPENAI_TIMEOUT", cfg.Timeout)
	cfg.MaxRetries = getEnvInt("OPENAI_MAX_RETRIES", cfg.MaxRetries)
	cfg.RetryDelay = getEnvDuration("OPENAI_RETRY_DELAY", cfg.RetryDelay)

	cfg.ReflexThreshold = getEnvFloat("CORTEX_REFLEX_THRESHOLD", cfg.ReflexThreshold)
	cfg.BiasPerHit = getEnvFloat("CORTEX_BIAS_PER_HIT", cfg.BiasPerHit)
	cfg.BiasCap = getEnvFloat("CORTEX_BIAS_CAP", cfg.BiasCap)
	cfg.MemoryTopK = getEnvInt("CORTEX_MEMORY_TOP_K", cfg.MemoryTopK)
	cfg.LedgerSnapshot = getEnvInt("CORTEX_LEDGER_SNAPSHOT", cfg.LedgerSnapshot)
	cfg.ContextMaxLines = getEnvInt("CORTEX_CONTEXT_MAX_LINES", cfg.ContextMaxLines)
	cfg.InsightEveryN = getEnvInt("CORTEX_INSIGHT_EVERY_N", cfg.InsightEveryN)
	cfg.DefaultCurrency = getEnv("CORTEX_DEFAULT_CURRENCY", cfg.DefaultCurrency)
	cfg.ClarifyThreshold = getEnvFloat("CORTEX_CLARIFY_THRESHOLD", cfg.ClarifyThreshold)

	cfg.StressCritical = getEnvFloat("CORTEX_STRESS_CRITICAL", cfg.StressCritical)
	cfg.StressHigh = getEnvFloat("CORTEX_STRESS_HIGH", cfg.StressHigh)
	cfg.StressElevated = getEnvFloat("CORTEX_STRESS_ELEVATED", cfg.StressElevated)
	cfg.StressMild = getEnvFloat("CORTEX_STRESS_MILD", cfg.StressMild)

	cfg.SpendAlertRatio = getEnvFloat("CORTEX_SPEND_ALERT_RATIO", cfg.SpendAlertRatio)
	cfg.DueSoonWindow = getEnvDuration("CORTEX_DUE_SOON_WINDOW", cfg.DueSoonWindow)

	return cfg, cfg.Validate()
}

// Default returns built-in configuration without touching the environment.
// Used by tests and the benchmark harness.
func Default() *Config {
	return &Config{
		CharmHost:        "cloud.charm.sh",
		CharmDBName:      "cortex",
		AutoSync:         true,
		ChatModel:        "gpt-4o-mini",
		EmbeddingModel:   "text-embedding-3-small",
		Timeout:          30 * time.Second,
		MaxRetries:       3,
		RetryDelay:       2 * time.Second,
		ReflexThreshold:  0.75,
		BiasPerHit:       0.03,
		BiasCap:          0.16,
		MemoryTopK:       8,
		LedgerSnapshot:   12,
		ContextMaxLines:  120,
		InsightEveryN:    5,
		DefaultCurrency:  "EUR",
		ClarifyThreshold: 0.45,
		StressCritical:   0.75,
		StressHigh:       0.55,
		StressElevated:   0.35,
		StressMild:       0.15,
		SpendAlertRatio:  0.9,
		DueSoonWindow:    24 * time.Hour,
	}
}

func (c *Config) Validate() error {
	if c.ReflexThreshold < 0 || c.ReflexThreshold > 1 {
		return fmt.Errorf("CORTEX_REFLEX_THRESHOLD must be 0-1, got %f", c.ReflexThreshold)
	}
	if c.BiasCap < 0 || c.BiasCap > 1 {
		return fmt.Errorf("CORTEX_BIAS_CAP must be 0-1, got %f", c.BiasCap)
	}
	if c.BiasPerHit < 0 || c.BiasPerHit > c.BiasCap {
		return fmt.Errorf("CORTEX_BIAS_PER_HIT must be 0-%f, got %f", c.BiasCap, c.BiasPerHit)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.MemoryTopK <= 0 {
		return fmt.Errorf("CORTEX_MEMORY_TOP_K must be positive, got %d", c.MemoryTopK)
	}
	if c.ContextMaxLines <= 0 {
		return fmt.Errorf("CORTEX_CONTEXT_MAX_LINES must be positive, got %d", c.ContextMaxLines)
	}
	if !(c.StressMild < c.StressElevated && c.StressElevated < c.StressHigh && c.StressHigh < c.StressCritical) {
		return fmt.Errorf("stress thresholds must be strictly increasing")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
