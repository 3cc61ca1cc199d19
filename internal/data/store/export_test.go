package store

import "time"

func (store *InMemoryJobStore) SetClock(now func() time.Time) { store.now = now }

func (store *InMemoryJobStore) Len() int {
	store.jobMutex.RLock()
	defer store.jobMutex.RUnlock()
	return len(store.jobMap)
}
