package memoryDB

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/akolanti/DocChat/internal/domain/commonModels"
)

// Storage is an in-process vector store using brute-force cosine similarity.
type Storage struct {
	mu      sync.RWMutex
	entries map[string]commonModels.VectorEntry
}

func NewStorage() *Storage {
	return &Storage{entries: make(map[string]commonModels.VectorEntry)}
}

func (s *Storage) Upsert(ctx context.Context, entries []commonModels.VectorEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		e.Embedding = append([]float32(nil), e.Embedding...)
		s.entries[e.Id] = e
	}
	return nil
}

func (s *Storage) Search(ctx context.Context, vector []float32, limit int) ([]commonModels.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]commonModels.ScoredChunk, 0, len(s.entries))
	for _, e := range s.entries {
		results = append(results, commonModels.ScoredChunk{Entry: e, Score: cosine(e.Embedding, vector)})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score == results[j].Score {
			return results[i].Entry.Id < results[j].Entry.Id
		}
		return results[i].Score > results[j].Score
	})
	if limit >= 0 && limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

func (s *Storage) CountByFile(ctx context.Context, fileId int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.entries {
		if e.FileId == fileId {
			n++
		}
	}
	return n, nil
}

func (s *Storage) DeleteByFile(ctx context.Context, fileId int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if e.FileId == fileId {
			delete(s.entries, id)
		}
	}
	return nil
}

func (s *Storage) ListFileIds(ctx context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[int64]struct{})
	for _, e := range s.entries {
		seen[e.FileId] = struct{}{}
	}
	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Storage) Close() error { return nil }

func cosine(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
