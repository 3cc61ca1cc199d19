package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Settings is the resolved runtime configuration. It is built once at startup and passed
// down explicitly; nothing reads the environment after Load returns.
type Settings struct {
	ListenAddr string `yaml:"listen_addr"`
	IsProd     bool   `yaml:"is_prod"`
	LogLevel   string `yaml:"log_level"`

	AuthToken    string `yaml:"auth_token"`
	NoAuthBypass bool   `yaml:"no_auth_bypass"`

	ChunkSize     int    `yaml:"chunk_size"`
	ChunkOverlap  int    `yaml:"chunk_overlap"`
	ChunkUnit     string `yaml:"chunk_unit"`
	TopK          int    `yaml:"retrieval_top_k"`
	HistoryWindow int    `yaml:"history_window"`

	EmbeddingProvider string `yaml:"embedding_provider"`
	EmbeddingModel    string `yaml:"embedding_model"`
	GoogleAPIKey      string `yaml:"google_api_key"`
	OpenAIAPIKey      string `yaml:"openai_api_key"`
	GeminiModel       string `yaml:"gemini_model"`
	DefaultChatModel  string `yaml:"default_chat_model"`

	VectorBackend    string `yaml:"vector_backend"`
	QdrantHost       string `yaml:"qdrant_host"`
	QdrantPort       int    `yaml:"qdrant_port"`
	QdrantCollection string `yaml:"qdrant_collection"`
	PostgresURI      string `yaml:"postgres_uri"`

	MetadataBackend string `yaml:"metadata_backend"`
	SqlitePath      string `yaml:"sqlite_path"`

	HistoryBackend string        `yaml:"history_backend"`
	RedisAddr      string        `yaml:"redis_addr"`
	RedisPassword  string        `yaml:"redis_password"`
	HistoryTTL     time.Duration `yaml:"history_ttl"`

	StagingDir    string        `yaml:"staging_dir"`
	ChatTimeout   time.Duration `yaml:"chat_timeout"`
	IngestTimeout time.Duration `yaml:"ingest_timeout"`
}

func Defaults() Settings {
	return Settings{
		ListenAddr:        ServerListenAddr,
		IsProd:            IS_PROD,
		LogLevel:          "debug",
		ChunkSize:         DefaultChunkSize,
		ChunkOverlap:      DefaultChunkOverlap,
		ChunkUnit:         ChunkUnitChars,
		TopK:              DefaultTopK,
		HistoryWindow:     DefaultHistoryWindow,
		EmbeddingProvider: EmbeddingProviderGoogle,
		GeminiModel:       GeminiModelName,
		DefaultChatModel:  DefaultModel,
		VectorBackend:     BackendQdrant,
		QdrantHost:        QdrantHost,
		QdrantPort:        QdrantGrpcPort,
		QdrantCollection:  EmbeddingCollectionName,
		MetadataBackend:   BackendSqlite,
		SqlitePath:        SqlitePath,
		HistoryBackend:    BackendRedis,
		RedisAddr:         RedisAddr,
		HistoryTTL:        RedisHistoryStoreTTL,
		StagingDir:        StagingDirName,
		ChatTimeout:       ChatTimeout,
		IngestTimeout:     IngestTimeout,
	}
}

// Load layers defaults, the optional yaml file at path, a .env file in the working
// directory and finally the process environment.
func Load(path string) (Settings, error) {
	s := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return s, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &s); err != nil {
				return s, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	//a missing .env is the normal case outside local development
	_ = godotenv.Load()

	if err := s.applyEnv(); err != nil {
		return s, err
	}
	return s, s.Validate()
}

func (s *Settings) applyEnv() error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("LISTEN_ADDR", &s.ListenAddr)
	flag("IS_PROD", &s.IsProd)
	str("LOG_LEVEL", &s.LogLevel)
	str("AUTH_TOKEN", &s.AuthToken)
	flag("NO_AUTH_BYPASS", &s.NoAuthBypass)

	num("CHUNK_SIZE", &s.ChunkSize)
	num("CHUNK_OVERLAP", &s.ChunkOverlap)
	str("CHUNK_UNIT", &s.ChunkUnit)
	num("RETRIEVAL_TOP_K", &s.TopK)
	num("HISTORY_WINDOW", &s.HistoryWindow)

	str("EMBEDDING_PROVIDER", &s.EmbeddingProvider)
	str("EMBEDDING_MODEL", &s.EmbeddingModel)
	str("GOOGLE_API_KEY", &s.GoogleAPIKey)
	str("OPENAI_API_KEY", &s.OpenAIAPIKey)
	str("GEMINI_MODEL", &s.GeminiModel)
	str("DEFAULT_CHAT_MODEL", &s.DefaultChatModel)

	str("VECTOR_BACKEND", &s.VectorBackend)
	str("QDRANT_HOST", &s.QdrantHost)
	num("QDRANT_PORT", &s.QdrantPort)
	str("QDRANT_COLLECTION", &s.QdrantCollection)
	str("POSTGRES_URI", &s.PostgresURI)

	str("METADATA_BACKEND", &s.MetadataBackend)
	str("SQLITE_PATH", &s.SqlitePath)

	str("HISTORY_BACKEND", &s.HistoryBackend)
	str("REDIS_ADDR", &s.RedisAddr)
	str("REDIS_PASSWORD", &s.RedisPassword)
	duration("HISTORY_TTL", &s.HistoryTTL)

	str("STAGING_DIR", &s.StagingDir)
	duration("CHAT_TIMEOUT", &s.ChatTimeout)
	duration("INGEST_TIMEOUT", &s.IngestTimeout)

	return errors.Join(errs...)
}

func (s Settings) Validate() error {
	var errs []error
	if s.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunk size must be positive, got %d", s.ChunkSize))
	}
	if s.ChunkOverlap < 0 || s.ChunkOverlap >= s.ChunkSize {
		errs = append(errs, fmt.Errorf("chunk overlap must be in [0, %d), got %d", s.ChunkSize, s.ChunkOverlap))
	}
	if s.ChunkUnit != ChunkUnitChars && s.ChunkUnit != ChunkUnitTokens {
		errs = append(errs, fmt.Errorf("unknown chunk unit %q", s.ChunkUnit))
	}
	if s.TopK <= 0 {
		errs = append(errs, fmt.Errorf("retrieval top k must be positive, got %d", s.TopK))
	}
	if !oneOf(s.VectorBackend, BackendQdrant, BackendPgvector, BackendMemory) {
		errs = append(errs, fmt.Errorf("unknown vector backend %q", s.VectorBackend))
	}
	if !oneOf(s.MetadataBackend, BackendSqlite, BackendPostgres, BackendMemory) {
		errs = append(errs, fmt.Errorf("unknown metadata backend %q", s.MetadataBackend))
	}
	if !oneOf(s.HistoryBackend, BackendRedis, BackendSqlite, BackendMemory) {
		errs = append(errs, fmt.Errorf("unknown history backend %q", s.HistoryBackend))
	}
	if !oneOf(s.EmbeddingProvider, EmbeddingProviderGoogle, EmbeddingProviderOpenAI, EmbeddingProviderHash) {
		errs = append(errs, fmt.Errorf("unknown embedding provider %q", s.EmbeddingProvider))
	}
	if s.ChatTimeout <= 0 || s.IngestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("chat and ingest timeouts must be positive, got %s and %s", s.ChatTimeout, s.IngestTimeout))
	}
	if s.IngestTimeout >= ReconcileGracePeriod {
		errs = append(errs, fmt.Errorf("ingest timeout %s must be shorter than the %s reconcile grace period", s.IngestTimeout, ReconcileGracePeriod))
	}
	if (s.VectorBackend == BackendPgvector || s.MetadataBackend == BackendPostgres) && s.PostgresURI == "" {
		errs = append(errs, errors.New("POSTGRES_URI is required for the postgres backends"))
	}
	return errors.Join(errs...)
}

// ServerWriteTimeout covers the slowest synchronous handler plus time to write its response.
func (s Settings) ServerWriteTimeout() time.Duration {
	return max(s.IngestTimeout, s.ChatTimeout) + WriteTimeoutMargin
}

// ChatModels is the allow-list of model ids a chat request may name.
func (s Settings) ChatModels() []string {
	models := []string{GPT4o, GPT4oMini}
	if s.GeminiModel != "" {
		models = append(models, s.GeminiModel)
	}
	return models
}

// ResolvedEmbeddingModel falls back to the provider's default model.
func (s Settings) ResolvedEmbeddingModel() string {
	if s.EmbeddingModel != "" {
		return s.EmbeddingModel
	}
	if s.EmbeddingProvider == EmbeddingProviderOpenAI {
		return OpenAIEmbeddingModel
	}
	return GoogleEmbeddingModel
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if strings.EqualFold(v, o) {
			return true
		}
	}
	return false
}
