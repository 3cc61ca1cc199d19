package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/data/redisStore"
	"github.com/akolanti/DocChat/internal/data/sqlStore"
	"github.com/akolanti/DocChat/internal/data/store"
	"github.com/akolanti/DocChat/internal/domain/chatModel"
	"github.com/akolanti/DocChat/internal/domain/commonModels"
	"github.com/akolanti/DocChat/internal/domain/jobModel"
	"github.com/akolanti/DocChat/internal/rag"
	"github.com/akolanti/DocChat/internal/rag/embedding"
	"github.com/akolanti/DocChat/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/DocChat/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/DocChat/internal/rag/index"
	"github.com/akolanti/DocChat/internal/rag/ingest"
	"github.com/akolanti/DocChat/internal/rag/llm"
	"github.com/akolanti/DocChat/internal/rag/llm/gemini"
	"github.com/akolanti/DocChat/internal/rag/llm/openaiLLM"
	"github.com/akolanti/DocChat/internal/rag/retrieval"
	"github.com/akolanti/DocChat/internal/rag/vectorDB"
	"github.com/akolanti/DocChat/internal/rag/vectorDB/memoryDB"
	"github.com/akolanti/DocChat/internal/rag/vectorDB/pgvectorDB"
	"github.com/akolanti/DocChat/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/DocChat/pkg/logger_i"
	"gorm.io/gorm"
)

var logger = logger_i.NewLogger("Bootstrap")

// App is everything a process entry point needs once the backends are up.
type App struct {
	Service  rag.Service
	JobStore jobModel.JobStore
	closers  []func() error
}

// Close releases the backends in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Build opens every backend the settings name and assembles the rag service.
// ctx must outlive the App: the redis stores close when it is cancelled.
func Build(ctx context.Context, s config.Settings) (*App, error) {
	app := &App{}
	deps, err := app.dependencies(ctx, s)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	svc, err := rag.NewService(deps, ServiceOptions(s))
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Service = svc
	app.JobStore = jobStore(ctx, s)
	return app, nil
}

// ServiceOptions maps the settings onto the rag service knobs.
func ServiceOptions(s config.Settings) rag.Options {
	return rag.Options{
		Ingest: ingest.Options{
			ChunkSize:           s.ChunkSize,
			ChunkOverlap:        s.ChunkOverlap,
			ChunkUnit:           s.ChunkUnit,
			StagingDir:          s.StagingDir,
			CompensationTimeout: config.CompensationTimeout,
		},
		Retrieval: retrieval.Options{
			TopK:          s.TopK,
			HistoryWindow: s.HistoryWindow,
			DefaultModel:  s.DefaultChatModel,
			Models:        s.ChatModels(),
			SystemPrompt:  config.ModelContext,
		},
		IngestTimeout: s.IngestTimeout,
		ChatTimeout:   s.ChatTimeout,
		GracePeriod:   config.ReconcileGracePeriod,
	}
}

func (a *App) dependencies(ctx context.Context, s config.Settings) (rag.Dependencies, error) {
	var deps rag.Dependencies

	var pg *gorm.DB
	if needsPostgres(s) {
		db, err := sqlStore.OpenPostgres(s.PostgresURI)
		if err != nil {
			return deps, err
		}
		a.onClose(func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
		pg = db
	}

	var sqlite *sqlStore.SQLiteStore
	if needsSqlite(s) {
		db, err := sqlStore.OpenSQLite(s.SqlitePath)
		if err != nil {
			return deps, err
		}
		a.onClose(db.Close)
		sqlite = db
	}

	docs, err := metadataStore(s, pg, sqlite)
	if err != nil {
		return deps, err
	}
	deps.Docs = docs

	vectors, err := vectorStore(ctx, s, pg)
	if err != nil {
		return deps, err
	}
	a.onClose(vectors.Close)

	embedder, err := newEmbedder(ctx, s)
	if err != nil {
		return deps, err
	}
	deps.Index = index.New(embedder, vectors, config.EmbeddingBatchSize)

	deps.History = historyStore(ctx, s, sqlite)

	provider, err := newLLM(ctx, s)
	if err != nil {
		return deps, err
	}
	deps.LLM = provider
	return deps, nil
}

func needsPostgres(s config.Settings) bool {
	return strings.EqualFold(s.VectorBackend, config.BackendPgvector) || strings.EqualFold(s.MetadataBackend, config.BackendPostgres)
}

func needsSqlite(s config.Settings) bool {
	return strings.EqualFold(s.MetadataBackend, config.BackendSqlite) || strings.EqualFold(s.HistoryBackend, config.BackendSqlite)
}

func metadataStore(s config.Settings, pg *gorm.DB, sqlite *sqlStore.SQLiteStore) (commonModels.MetadataStore, error) {
	switch strings.ToLower(s.MetadataBackend) {
	case config.BackendPostgres:
		return sqlStore.NewPostgresMetadataStore(pg)
	case config.BackendSqlite:
		return sqlite, nil
	case config.BackendMemory:
		logger.Warn("Document records are kept in memory and will not survive a restart")
		return store.InitInMemoryMetadataStore(), nil
	}
	return nil, fmt.Errorf("unknown metadata backend %q", s.MetadataBackend)
}

func vectorStore(ctx context.Context, s config.Settings, pg *gorm.DB) (vectorDB.Store, error) {
	switch strings.ToLower(s.VectorBackend) {
	case config.BackendQdrant:
		return qdrantDB.NewStore(ctx, qdrantDB.Options{
			Host:       s.QdrantHost,
			Port:       s.QdrantPort,
			Collection: s.QdrantCollection,
			Dimension:  uint64(config.EmbeddingOutputDimensionality),
		})
	case config.BackendPgvector:
		return pgvectorDB.NewStore(ctx, pg)
	case config.BackendMemory:
		logger.Warn("Embeddings are kept in memory and will not survive a restart")
		return memoryDB.NewStorage(), nil
	}
	return nil, fmt.Errorf("unknown vector backend %q", s.VectorBackend)
}

func newEmbedder(ctx context.Context, s config.Settings) (embedding.Embedder, error) {
	model := s.ResolvedEmbeddingModel()
	switch strings.ToLower(s.EmbeddingProvider) {
	case config.EmbeddingProviderGoogle:
		if s.GoogleAPIKey == "" {
			return nil, errors.New("GOOGLE_API_KEY is required for the google embedding provider")
		}
		return googleEmbedding.NewGoogleEmbedder(ctx, model, s.GoogleAPIKey)
	case config.EmbeddingProviderOpenAI:
		if s.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required for the openai embedding provider")
		}
		return openaiEmbedding.NewOpenAIEmbedder(model, s.OpenAIAPIKey), nil
	case config.EmbeddingProviderHash:
		logger.Warn("Using the offline hash embedder; retrieval quality is keyword level only")
		return index.HashEmbedder{Dimension: int(config.EmbeddingOutputDimensionality)}, nil
	}
	return nil, fmt.Errorf("unknown embedding provider %q", s.EmbeddingProvider)
}

// newLLM registers every provider with a key. Chat requests for a model nobody serves
// fail validation, so a keyless setup can still ingest, list and delete.
func newLLM(ctx context.Context, s config.Settings) (llm.Provider, error) {
	var providers []llm.Provider
	if s.OpenAIAPIKey != "" {
		providers = append(providers, openaiLLM.NewOpenAIClient(s.OpenAIAPIKey, []string{config.GPT4o, config.GPT4oMini}))
	}
	if s.GoogleAPIKey != "" && s.GeminiModel != "" {
		p, err := gemini.NewGeminiClient(ctx, s.GoogleAPIKey, s.GeminiModel)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	if len(providers) == 0 {
		logger.Warn("No llm provider configured; chat is unavailable")
	}
	return llm.NewRouter(providers...), nil
}

func historyStore(ctx context.Context, s config.Settings, sqlite *sqlStore.SQLiteStore) chatModel.HistoryStore {
	switch strings.ToLower(s.HistoryBackend) {
	case config.BackendRedis:
		rs := redisStore.GetRedisStore(ctx, redisStore.Options{
			Addr:     s.RedisAddr,
			Password: s.RedisPassword,
			DB:       config.RedisHistoryStore,
		})
		if rs != nil {
			return store.NewRedisHistoryStore(rs, s.HistoryTTL)
		}
		logger.Error("Redis history store is offline, falling back to memory")
	case config.BackendSqlite:
		return sqlite.History()
	}
	return store.InitInMemoryHistoryStore()
}

func jobStore(ctx context.Context, s config.Settings) jobModel.JobStore {
	rs := redisStore.GetRedisStore(ctx, redisStore.Options{
		Addr:     s.RedisAddr,
		Password: s.RedisPassword,
		DB:       config.RedisJobStore,
	})
	if rs == nil {
		logger.Error("Redis job store is offline, falling back to memory")
		return store.InitInMemoryJobStore()
	}
	return store.NewRedisJobStore(rs)
}
