package sqlStore

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/DocChat/internal/domain/chatModel"
	"github.com/akolanti/DocChat/internal/domain/commonModels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "docs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenSQLite_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	_, err = s.Insert(context.Background(), "keep.pdf", time.Now())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	list, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMetadata_InsertGetListDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 123456789, time.UTC)

	a, err := s.Insert(ctx, "a.pdf", base)
	require.NoError(t, err)
	b, err := s.Insert(ctx, "b.docx", base.Add(time.Second))
	require.NoError(t, err)
	assert.NotEqual(t, a.Id, b.Id)

	got, err := s.Get(ctx, a.Id)
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", got.Filename)
	assert.True(t, got.UploadedAt.Equal(base))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.Id, list[0].Id, "newest first")

	removed, err := s.Delete(ctx, a.Id)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Delete(ctx, a.Id)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = s.Get(ctx, a.Id)
	assert.ErrorIs(t, err, commonModels.ErrNotFound)

	c, err := s.Insert(ctx, "c.html", base)
	require.NoError(t, err)
	assert.Greater(t, c.Id, b.Id, "ids are never reused")
}

func TestMetadata_EmptyListIsNotNil(t *testing.T) {
	list, err := openTestStore(t).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestHistory_AppendAndRead(t *testing.T) {
	ctx := context.Background()
	h := openTestStore(t).History()

	turns, err := h.GetHistory(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, turns)

	for i := 0; i < 3; i++ {
		stored, err := h.AppendTurn(ctx, "s1", chatModel.Turn{Question: fmt.Sprintf("q%d", i), Answer: "a", Model: "gpt-4o-mini"})
		require.NoError(t, err)
		assert.Equal(t, i, stored.Ordinal)
	}
	_, err = h.AppendTurn(ctx, "s2", chatModel.Turn{Question: "elsewhere"})
	require.NoError(t, err)

	turns, err = h.GetHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, turns, 3)
	for i, turn := range turns {
		assert.Equal(t, fmt.Sprintf("q%d", i), turn.Question)
		if i > 0 {
			assert.True(t, turn.At.After(turns[i-1].At))
		}
	}
}

func TestHistory_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	h := openTestStore(t).History()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := h.AppendTurn(ctx, "busy", chatModel.Turn{Question: fmt.Sprint(i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	turns, err := h.GetHistory(ctx, "busy")
	require.NoError(t, err)
	require.Len(t, turns, 20)
	for i, turn := range turns {
		assert.Equal(t, i, turn.Ordinal)
	}
}
