package retrieval

import (
	"context"
	"sync"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSessionLocks_GrantInArrivalOrder(t *testing.T) {
	locks := newSessionLocks()
	release, err := locks.acquire(context.Background(), "s1")
	if err != nil {
		t.Fatal(err)
	}

	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			done, err := locks.acquire(context.Background(), "s1")
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			done()
		}(i)
		// queue them one by one so arrival order is known
		waitFor(t, func() bool { return locks.waiting("s1") == i+1 })
	}

	release()
	wg.Wait()
	for i, got := range order {
		if got != i {
			t.Fatalf("grant order = %v", order)
		}
	}
	if _, ok := locks.queues["s1"]; ok {
		t.Error("idle session should be forgotten")
	}
}

func TestSessionLocks_IndependentSessions(t *testing.T) {
	locks := newSessionLocks()
	r1, _ := locks.acquire(context.Background(), "a")
	defer r1()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r2, err := locks.acquire(ctx, "b")
	if err != nil {
		t.Fatalf("other session blocked: %v", err)
	}
	r2()
}

func TestSessionLocks_CancelledWaiterLeavesQueue(t *testing.T) {
	locks := newSessionLocks()
	release, _ := locks.acquire(context.Background(), "s1")

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := locks.acquire(ctx, "s1")
		errc <- err
	}()
	waitFor(t, func() bool { return locks.waiting("s1") == 1 })
	cancel()
	if err := <-errc; err == nil {
		t.Fatal("cancelled waiter should fail")
	}
	if n := locks.waiting("s1"); n != 0 {
		t.Fatalf("waiting = %d", n)
	}

	release()
	r, err := locks.acquire(context.Background(), "s1")
	if err != nil {
		t.Fatal(err)
	}
	r()
}
