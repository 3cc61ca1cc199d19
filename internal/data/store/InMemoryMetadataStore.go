package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/akolanti/DocChat/internal/domain/commonModels"
)

// InMemoryMetadataStore hands out ids from a counter and never reuses them.
type InMemoryMetadataStore struct {
	lock    sync.RWMutex
	nextId  int64
	records map[int64]commonModels.DocumentRecord
}

func InitInMemoryMetadataStore() *InMemoryMetadataStore {
	return &InMemoryMetadataStore{records: make(map[int64]commonModels.DocumentRecord)}
}

func (store *InMemoryMetadataStore) Insert(ctx context.Context, filename string, uploadedAt time.Time) (commonModels.DocumentRecord, error) {
	store.lock.Lock()
	defer store.lock.Unlock()
	store.nextId++
	record := commonModels.DocumentRecord{Id: store.nextId, Filename: filename, UploadedAt: uploadedAt.UTC()}
	store.records[record.Id] = record
	return record, nil
}

func (store *InMemoryMetadataStore) Get(ctx context.Context, id int64) (commonModels.DocumentRecord, error) {
	store.lock.RLock()
	defer store.lock.RUnlock()
	record, ok := store.records[id]
	if !ok {
		return commonModels.DocumentRecord{}, commonModels.FileError(commonModels.ErrNotFound, "metadata.get", id, nil)
	}
	return record, nil
}

func (store *InMemoryMetadataStore) List(ctx context.Context) ([]commonModels.DocumentRecord, error) {
	store.lock.RLock()
	defer store.lock.RUnlock()
	out := make([]commonModels.DocumentRecord, 0, len(store.records))
	for _, r := range store.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].Id > out[j].Id
		}
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out, nil
}

func (store *InMemoryMetadataStore) Delete(ctx context.Context, id int64) (bool, error) {
	store.lock.Lock()
	defer store.lock.Unlock()
	_, ok := store.records[id]
	delete(store.records, id)
	return ok, nil
}

func (store *InMemoryMetadataStore) Close() error { return nil }
