package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	s := Defaults()
	require.NoError(t, s.Validate())
	assert.Equal(t, 1000, s.ChunkSize)
	assert.Equal(t, 200, s.ChunkOverlap)
	assert.Equal(t, GPT4oMini, s.DefaultChatModel)
}

func TestLoad_YamlThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rag.yaml")
	yamlBody := "chunk_size: 500\nchunk_overlap: 50\nvector_backend: memory\nhistory_backend: memory\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o600))

	t.Setenv("CHUNK_OVERLAP", "80")
	t.Setenv("CHAT_TIMEOUT", "5s")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500, s.ChunkSize)
	assert.Equal(t, 80, s.ChunkOverlap, "environment overrides the file")
	assert.Equal(t, BackendMemory, s.VectorBackend)
	assert.Equal(t, 5*time.Second, s.ChatTimeout)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ServerListenAddr, s.ListenAddr)
}

func TestLoad_BadNumber(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "lots")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Settings)
	}{
		{"overlap not below size", func(s *Settings) { s.ChunkOverlap = s.ChunkSize }},
		{"unknown unit", func(s *Settings) { s.ChunkUnit = "pages" }},
		{"zero top k", func(s *Settings) { s.TopK = 0 }},
		{"pgvector without uri", func(s *Settings) { s.VectorBackend = BackendPgvector }},
		{"unknown history backend", func(s *Settings) { s.HistoryBackend = "mongo" }},
		{"zero ingest timeout", func(s *Settings) { s.IngestTimeout = 0 }},
		{"ingest outlasting the grace period", func(s *Settings) { s.IngestTimeout = ReconcileGracePeriod }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestServerWriteTimeout_OutlastsSynchronousHandlers(t *testing.T) {
	assert.Greater(t, WriteTimeout, IngestTimeout)
	assert.Greater(t, WriteTimeout, ChatTimeout)

	s := Defaults()
	assert.Greater(t, s.ServerWriteTimeout(), s.IngestTimeout)

	t.Setenv("INGEST_TIMEOUT", "12m")
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 12*time.Minute+WriteTimeoutMargin, s.ServerWriteTimeout())
}

func TestChatModels(t *testing.T) {
	s := Defaults()
	assert.Contains(t, s.ChatModels(), GPT4o)
	assert.Contains(t, s.ChatModels(), GeminiModelName)
	assert.Equal(t, OpenAIEmbeddingModel, Settings{EmbeddingProvider: EmbeddingProviderOpenAI}.ResolvedEmbeddingModel())
}
