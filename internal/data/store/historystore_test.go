package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/DocChat/internal/data/store"
	"github.com/akolanti/DocChat/internal/domain/chatModel"
	"github.com/akolanti/DocChat/internal/domain/commonModels"
)

func historyStores(t *testing.T) map[string]chatModel.HistoryStore {
	_, rs := newRedis(t)
	return map[string]chatModel.HistoryStore{
		"redis":  store.NewRedisHistoryStore(rs, 0),
		"memory": store.InitInMemoryHistoryStore(),
	}
}

func TestHistoryStore_UnknownSessionIsEmpty(t *testing.T) {
	for name, s := range historyStores(t) {
		t.Run(name, func(t *testing.T) {
			turns, err := s.GetHistory(context.Background(), "never-seen")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if turns == nil || len(turns) != 0 {
				t.Fatalf("want empty non-nil slice, got %#v", turns)
			}
		})
	}
}

func TestHistoryStore_AppendOrderAndIsolation(t *testing.T) {
	ctx := context.Background()
	for name, s := range historyStores(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				if _, err := s.AppendTurn(ctx, "s1", chatModel.Turn{Question: fmt.Sprintf("q%d", i), Answer: "a"}); err != nil {
					t.Fatal(err)
				}
			}
			if _, err := s.AppendTurn(ctx, "s2", chatModel.Turn{Question: "other"}); err != nil {
				t.Fatal(err)
			}

			turns, err := s.GetHistory(ctx, "s1")
			if err != nil {
				t.Fatal(err)
			}
			if len(turns) != 3 {
				t.Fatalf("want 3 turns, got %d", len(turns))
			}
			for i, turn := range turns {
				if turn.Ordinal != i || turn.Question != fmt.Sprintf("q%d", i) {
					t.Errorf("turn %d = %+v", i, turn)
				}
				if i > 0 && !turn.At.After(turns[i-1].At) {
					t.Errorf("turn %d not after previous", i)
				}
			}

			other, _ := s.GetHistory(ctx, "s2")
			if len(other) != 1 || other[0].Ordinal != 0 {
				t.Errorf("session s2 leaked: %+v", other)
			}
		})
	}
}

func TestHistoryStore_ConcurrentAppendsKeepDistinctOrdinals(t *testing.T) {
	ctx := context.Background()
	for name, s := range historyStores(t) {
		t.Run(name, func(t *testing.T) {
			const writers = 10
			var wg sync.WaitGroup
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, _ = s.AppendTurn(ctx, "busy", chatModel.Turn{Question: fmt.Sprint(i)})
				}(i)
			}
			wg.Wait()

			turns, err := s.GetHistory(ctx, "busy")
			if err != nil {
				t.Fatal(err)
			}
			seen := map[int]bool{}
			for _, turn := range turns {
				if seen[turn.Ordinal] {
					t.Fatalf("duplicate ordinal %d", turn.Ordinal)
				}
				seen[turn.Ordinal] = true
			}
		})
	}
}

func TestRedisHistoryStore_TTL(t *testing.T) {
	mr, rs := newRedis(t)
	s := store.NewRedisHistoryStore(rs, time.Hour)
	if _, err := s.AppendTurn(context.Background(), "ttl", chatModel.Turn{Question: "q"}); err != nil {
		t.Fatal(err)
	}
	if got := mr.TTL("history:ttl"); got != time.Hour {
		t.Fatalf("ttl = %v", got)
	}
}

func TestRedisHistoryStore_CorruptEntryIsStoreError(t *testing.T) {
	mr, rs := newRedis(t)
	_, _ = mr.Push("history:bad", "{nope")
	s := store.NewRedisHistoryStore(rs, 0)
	_, err := s.GetHistory(context.Background(), "bad")
	if !errors.Is(err, commonModels.ErrStore) {
		t.Fatalf("want ErrStore, got %v", err)
	}
}
