// ABOUTME: Shared runtime wiring for CLI commands
// ABOUTME: Builds the ledger, dispatcher, gate, and optional charm/LLM collaborators
package commands

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/harper/cortex-standalone/internal/cache"
	"github.com/harper/cortex-standalone/internal/charm"
	"github.com/harper/cortex-standalone/internal/config"
	"github.com/harper/cortex-standalone/internal/core"
	"github.com/harper/cortex-standalone/internal/deduce"
	"github.com/harper/cortex-standalone/internal/heuristics"
	"github.com/harper/cortex-standalone/internal/llm"
	"github.com/harper/cortex-standalone/internal/risk"
	"github.com/harper/cortex-standalone/internal/storage"
	"github.com/harper/cortex-standalone/internal/storage/sqlite"
)

// runtime holds everything a command needs. Close after use.
type runtime struct {
	cfg      *config.Config
	db       *sqlite.DB
	ledger   *sqlite.Ledger
	router   *core.Router
	resolver *core.Resolver
	briefing *core.BriefingEngine
	stress   *core.StressScorer
	charm    *charm.Client
}

// newRuntime wires the full pipeline. The charm store and OpenAI client
// are optional: without them the router still runs on the heuristic and
// reflex paths, it just cannot retrieve memories or deep-parse.
func newRuntime() (*runtime, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	db, err := sqlite.Open(sqlite.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	ledger := sqlite.NewLedger(db)
	gate := risk.NewGate(ledger)

	deps := core.Deps{
		Ledger:     ledger,
		Dispatcher: heuristics.New(cfg),
		Deducer:    deduce.New(ledger),
		Gate:       gate,
	}

	rt := &runtime{cfg: cfg, db: db, ledger: ledger}

	charmClient, err := charm.NewClient(&charm.Config{
		Host:     cfg.CharmHost,
		DBName:   cfg.CharmDBName,
		AutoSync: cfg.AutoSync,
	})
	if err != nil {
		if verbose {
			log.Printf("charm store unavailable, memory and cache disabled: %v", err)
		}
	} else {
		rt.charm = charmClient
		deps.Cache = cache.NewSemanticCache(charmClient)
	}

	var embedder storage.Embedder
	if cfg.OpenAIKey != "" {
		client, err := llm.NewOpenAIClientWithConfig(llm.ClientConfigFrom(cfg))
		if err != nil {
			if verbose {
				log.Printf("openai client unavailable, semantic parsing disabled: %v", err)
			}
		} else {
			deps.Parser = client
			embedder = client
		}
	} else if verbose {
		log.Println("OPENAI_API_KEY not set, semantic parsing disabled")
	}

	if rt.charm != nil {
		memory := storage.NewVectorMemory(rt.charm, embedder)
		deps.Memory = memory
		deps.Observer = core.NewConversationObserver(memory, cfg.InsightEveryN)
		rt.resolver = core.NewResolver(ledger, memory, gate, cfg.DefaultCurrency)
	} else {
		rt.resolver = core.NewResolver(ledger, nil, gate, cfg.DefaultCurrency)
	}

	rt.router = core.NewRouter(cfg, deps)
	rt.briefing = core.NewBriefingEngine(ledger, cfg)
	rt.stress = core.NewStressScorer(cfg)

	return rt, nil
}

// Close drains background hooks and releases resources
func (rt *runtime) Close() {
	if rt.router != nil {
		rt.router.WaitBackground()
	}
	if rt.charm != nil {
		if err := rt.charm.Close(); err != nil && verbose {
			log.Printf("closing charm client: %v", err)
		}
	}
	if rt.db != nil {
		if err := rt.db.Close(); err != nil && verbose {
			log.Printf("closing database: %v", err)
		}
	}
}
