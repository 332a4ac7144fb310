package app

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/rgukt-papers/paperhub/internal/config"
	"github.com/rgukt-papers/paperhub/internal/core"
	db "github.com/rgukt-papers/paperhub/internal/core/database"
	"github.com/rgukt-papers/paperhub/internal/core/indexer"
	"github.com/rgukt-papers/paperhub/internal/core/llm"
	objectclient "github.com/rgukt-papers/paperhub/internal/core/object-client"
)

type App struct {
	DBClient core.DbClient
	Server   *Server
	Indexer  *indexer.PaperIndexer

	closers []io.Closer
}

// NewApp composes the store, the optional collaborators (object
// storage, AI flows, the semantic index) and the HTTP server. Every
// collaborator is optional: without DATABASE_URL the seeded in-memory
// store serves, without AWS credentials uploads are rejected, without
// GEMINI_API_KEY the AI endpoints report unavailable.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	a := &App{}

	var (
		store core.DbClient
		index core.VectorIndex
	)
	if cfg.DemoMode() {
		mem := db.NewMemoryStore()
		if err := db.SeedDemoData(appCtx, mem); err != nil {
			return nil, err
		}
		store = mem
		log.Println("In-memory store seeded and ready.")
	} else {
		pg, err := db.NewDatabaseClient(appCtx, cfg)
		if err != nil {
			return nil, err
		}
		store = pg
		index = pg
		log.Println("Database initialized and ready.")
	}
	a.DBClient = store
	a.closers = append(a.closers, store)

	var obj core.ObjectClient
	if cfg.AwsAccessKey != "" && cfg.AwsSecretKey != "" {
		s3Client, err := objectclient.NewS3Client(appCtx, cfg)
		if err != nil {
			return nil, err
		}
		obj = s3Client
		log.Println("Object client initialized and ready.")
	} else {
		log.Println("AWS credentials not set; file uploads disabled, external file URLs only.")
	}

	var (
		flows    core.FlowProvider
		embedder core.EmbeddingProvider
	)
	if cfg.AIAPIKey != "" {
		gemini, err := llm.NewGeminiFlows(appCtx, cfg.AIAPIKey, cfg.GenModel)
		if err != nil {
			return nil, err
		}
		flows = gemini
		a.closers = append(a.closers, gemini)

		if index != nil {
			emb, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
			if err != nil {
				return nil, err
			}
			embedder = emb
			a.closers = append(a.closers, emb)

			a.Indexer = indexer.NewPaperIndexer(store, index, obj, emb, indexer.NewDocconvExtractor(false), cfg.BucketName)
		}
	} else {
		log.Println("GEMINI_API_KEY not set; AI assistant endpoints disabled.")
	}

	a.Server = NewServer(cfg, store, obj, flows, embedder, index, a.Indexer)
	return a, nil
}

// Start launches the background indexer workers, if any.
func (a *App) Start(ctx context.Context, numWorkers int) {
	if a.Indexer != nil {
		a.Indexer.Start(ctx, numWorkers)
	}
}

func (a *App) Close() {
	if a.Indexer != nil {
		a.Indexer.Wait()
	}
	for _, c := range a.closers {
		_ = c.Close()
	}
}
