// ABOUTME: Main entry point for the cortex MCP server with stdio transport
// ABOUTME: Initializes the ledger, router pipeline, and MCP server with all tools
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/cortex-standalone/internal/cache"
	"github.com/harper/cortex-standalone/internal/charm"
	"github.com/harper/cortex-standalone/internal/config"
	"github.com/harper/cortex-standalone/internal/core"
	"github.com/harper/cortex-standalone/internal/deduce"
	"github.com/harper/cortex-standalone/internal/heuristics"
	"github.com/harper/cortex-standalone/internal/llm"
	"github.com/harper/cortex-standalone/internal/mcp"
	"github.com/harper/cortex-standalone/internal/risk"
	"github.com/harper/cortex-standalone/internal/storage"
	"github.com/harper/cortex-standalone/internal/storage/sqlite"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Println("Warning: OPENAI_API_KEY not set - semantic parsing and embeddings disabled")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sqlite.Open(sqlite.DefaultDBPath())
	if err != nil {
		log.Fatalf("Failed to open ledger database: %v", err)
	}
	defer db.Close()

	ledger := sqlite.NewLedger(db)
	gate := risk.NewGate(ledger)

	deps := core.Deps{
		Ledger:     ledger,
		Dispatcher: heuristics.New(cfg),
		Deducer:    deduce.New(ledger),
		Gate:       gate,
	}

	var embedder storage.Embedder
	if cfg.OpenAIKey != "" {
		client, err := llm.NewOpenAIClientWithConfig(llm.ClientConfigFrom(cfg))
		if err != nil {
			log.Printf("Warning: failed to initialize OpenAI client: %v", err)
		} else {
			deps.Parser = client
			embedder = client
		}
	}

	var memory *storage.VectorMemory
	charmClient, err := charm.NewClient(&charm.Config{
		Host:     cfg.CharmHost,
		DBName:   cfg.CharmDBName,
		AutoSync: cfg.AutoSync,
	})
	if err != nil {
		log.Printf("Warning: charm store unavailable, memory and cache disabled: %v", err)
	} else {
		defer charmClient.Close()
		deps.Cache = cache.NewSemanticCache(charmClient)
		memory = storage.NewVectorMemory(charmClient, embedder)
		deps.Memory = memory
		deps.Observer = core.NewConversationObserver(memory, cfg.InsightEveryN)
	}

	router := core.NewRouter(cfg, deps)
	var resolver *core.Resolver
	if memory != nil {
		resolver = core.NewResolver(ledger, memory, gate, cfg.DefaultCurrency)
	} else {
		resolver = core.NewResolver(ledger, nil, gate, cfg.DefaultCurrency)
	}
	briefing := core.NewBriefingEngine(ledger, cfg)
	stress := core.NewStressScorer(cfg)

	server := mcpserver.NewMCPServer(
		"Cortex Signal Router",
		"0.1.0",
	)

	handlers := mcp.RegisterTools(server, router, resolver, briefing, stress)
	defer handlers.Shutdown()

	log.Println("Cortex MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
