package retrieval

import (
	"context"
	"sync"
)

// sessionLocks hands out one lock per session id. Waiters are granted the lock in the
// order they asked for it, and an idle session holds no memory.
type sessionLocks struct {
	mu     sync.Mutex
	queues map[string]*sessionQueue
}

type sessionQueue struct {
	waiters []chan struct{}
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{queues: make(map[string]*sessionQueue)}
}

// acquire blocks until id is free or ctx is done. The returned func releases the lock
// and must be called exactly once.
func (l *sessionLocks) acquire(ctx context.Context, id string) (func(), error) {
	l.mu.Lock()
	q, busy := l.queues[id]
	if !busy {
		l.queues[id] = &sessionQueue{}
		l.mu.Unlock()
		return func() { l.release(id) }, nil
	}
	turn := make(chan struct{})
	q.waiters = append(q.waiters, turn)
	l.mu.Unlock()

	select {
	case <-turn:
		return func() { l.release(id) }, nil
	case <-ctx.Done():
	}

	l.mu.Lock()
	for i, w := range q.waiters {
		if w == turn {
			q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
			l.mu.Unlock()
			return nil, ctx.Err()
		}
	}
	l.mu.Unlock()
	// granted while giving up; pass it on
	l.release(id)
	return nil, ctx.Err()
}

func (l *sessionLocks) release(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	q := l.queues[id]
	if q == nil {
		return
	}
	if len(q.waiters) == 0 {
		delete(l.queues, id)
		return
	}
	next := q.waiters[0]
	q.waiters = q.waiters[1:]
	close(next)
}

func (l *sessionLocks) waiting(id string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if q := l.queues[id]; q != nil {
		return len(q.waiters)
	}
	return 0
}
