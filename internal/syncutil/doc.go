// Package syncutil provides synchronization helpers for gramsea.
//
// Go spawns goroutines tracked by a WaitGroup. GoAcquired does the same
// behind a golang.org/x/sync/semaphore, which bounds how many run at once;
// the mass sender uses it for one goroutine per target:
//
//	sem := semaphore.NewWeighted(30)
//	var wg sync.WaitGroup
//	for _, job := range jobs {
//	    if err := syncutil.GoAcquired(ctx, &wg, sem, job); err != nil {
//	        break
//	    }
//	}
//	wg.Wait()
package syncutil
