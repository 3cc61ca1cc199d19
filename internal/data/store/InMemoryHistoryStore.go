package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/DocChat/internal/domain/chatModel"
)

type InMemoryHistoryStore struct {
	chatLock *sync.RWMutex
	chatMap  map[string][]chatModel.Turn
	now      func() time.Time
}

func InitInMemoryHistoryStore() *InMemoryHistoryStore {
	return &InMemoryHistoryStore{
		chatLock: new(sync.RWMutex),
		chatMap:  make(map[string][]chatModel.Turn),
		now:      time.Now,
	}
}

func (store *InMemoryHistoryStore) GetHistory(ctx context.Context, sessionId string) ([]chatModel.Turn, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	turns := store.chatMap[sessionId]
	out := make([]chatModel.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (store *InMemoryHistoryStore) AppendTurn(ctx context.Context, sessionId string, turn chatModel.Turn) (chatModel.Turn, error) {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	turns := store.chatMap[sessionId]
	var last *chatModel.Turn
	if len(turns) > 0 {
		last = &turns[len(turns)-1]
	}
	stored := chatModel.NextTurn(last, turn, store.now())
	store.chatMap[sessionId] = append(turns, stored)
	return stored, nil
}
