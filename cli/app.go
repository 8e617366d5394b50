package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/SaiNageswarS/go-api-boot/config"
	"github.com/SaiNageswarS/go-api-boot/dotenv"
	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/ollama/ollama/api"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/docpilot-ai/docpilot/appconfig"
	"github.com/docpilot-ai/docpilot/blocklist"
	"github.com/docpilot-ai/docpilot/contextsearch"
	"github.com/docpilot-ai/docpilot/db"
	"github.com/docpilot-ai/docpilot/jobs"
	"github.com/docpilot-ai/docpilot/llm"
	"github.com/docpilot-ai/docpilot/metrics"
	"github.com/docpilot-ai/docpilot/paperless"
	"github.com/docpilot-ai/docpilot/pipeline"
	"github.com/docpilot-ai/docpilot/review"
)

// app holds the wired collaborators every command works against. Without a
// Mongo URI the review queue and blocklist fall back to in-memory stores and
// the similarity context is disabled.
type app struct {
	cfg       *appconfig.AppConfig
	store     *paperless.Client
	analyzer  llm.LLMClient
	vision    pipeline.ImageRecognizer
	queue     *review.Queue
	blocks    blocklist.Store
	orch      *pipeline.Orchestrator
	resolver  *pipeline.Resolver
	manager   *jobs.Manager
	collector *metrics.Collector
}

func newApp(configFile string) (*app, error) {
	dotenv.LoadEnv()

	cfg := &appconfig.AppConfig{}
	if err := config.LoadConfig(configFile, cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", configFile, err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	store := paperless.NewClient(cfg.PaperlessURL, cfg.PaperlessToken)

	ollamaClient, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}

	analyzer := llm.NewOllamaClient(ollamaClient, cfg.AnalyzerModel)
	vision := llm.NewOllamaClient(ollamaClient, cfg.VisionModel)
	embedder := llm.NewOllamaEmbedder(ollamaClient, cfg.EmbeddingModel)

	// the verifier runs against Anthropic when an API key is present, so a
	// stronger model can veto the analyzer's suggestions
	var verifier llm.LLMClient
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		verifier = llm.NewAnthropicClient(cfg.VerifierModel)
	} else {
		verifier = llm.NewOllamaClient(ollamaClient, cfg.VerifierModel)
	}

	var queueStore review.Store = review.NewMemoryStore()
	var blockStore blocklist.Store = blocklist.NewMemoryStore()
	var searcher pipeline.ContextProvider

	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		queueStore = review.NewMongoStore(mongoClient, cfg.MongoDatabase)
		blockStore = blocklist.NewMongoStore(mongoClient, cfg.MongoDatabase)

		odmClient, err := odm.GetClient()
		if err != nil {
			return nil, fmt.Errorf("connect mongo for vector search: %w", err)
		}
		if err := db.InitDocpilotDB(context.Background(), odmClient, cfg.MongoDatabase); err != nil {
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		searcher = contextsearch.NewSearcher(
			odm.CollectionOf[db.DocEmbeddingModel](odmClient, cfg.MongoDatabase), embedder)
	}

	queue := review.NewQueue(queueStore)

	orch := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{
		Docs:        store,
		Catalog:     store,
		Analyzer:    analyzer,
		Verifier:    verifier,
		Queue:       queue,
		Blocks:      blockStore,
		Context:     searcher,
		Vision:      vision,
		MaxAttempts: cfg.MaxAttempts,
	})

	collector := metrics.NewCollector(nil)

	manager := jobs.NewManager()
	manager.OnItemDone(func(kind jobs.Kind, processed, total int) {
		collector.JobItemProcessed(string(kind), processed, total)
	})

	return &app{
		cfg:       cfg,
		store:     store,
		analyzer:  analyzer,
		vision:    vision,
		queue:     queue,
		blocks:    blockStore,
		orch:      orch,
		resolver:  pipeline.NewResolver(store, store, store, queue, blockStore, orch.Markers()),
		manager:   manager,
		collector: collector,
	}, nil
}

// validateConfig rejects a config that cannot reach the document store. Both
// keys can also come from the PAPERLESS-URL and PAPERLESS-TOKEN environment
// variables.
func validateConfig(cfg *appconfig.AppConfig) error {
	if cfg.PaperlessURL == "" || cfg.PaperlessToken == "" {
		return errors.New("paperless_url and paperless_token must be set")
	}
	return nil
}
