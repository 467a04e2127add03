package syncutil

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Go spawns a goroutine tracked by wg.
func Go(wg *sync.WaitGroup, fn func()) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		fn()
	}()
}

// GoAcquired blocks until sem grants one slot, then runs fn in a goroutine
// tracked by wg and frees the slot when fn returns. If ctx ends first, fn is
// not started and the context error is returned.
func GoAcquired(ctx context.Context, wg *sync.WaitGroup, sem *semaphore.Weighted, fn func()) error {
	if err := sem.Acquire(ctx, 1); err != nil {
		return err
	}
	Go(wg, func() {
		defer sem.Release(1)
		fn()
	})
	return nil
}
