// Package concurrency provides a small bounded fan-out helper reused by
// read-only evaluation paths.
package concurrency

import (
	"context"
	"sync"
)

// ForEach runs fn for every index in [0, n) across at most workers
// goroutines and waits for all of them. fn must write results into
// index-addressed storage; no ordering across indexes is implied. Workers
// stop picking up new indexes once ctx is done.
func ForEach(ctx context.Context, workers, n int, fn func(ctx context.Context, i int)) {
	if n <= 0 {
		return
	}
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				fn(ctx, i)
			}
		}()
	}

	for i := 0; i < n; i++ {
		select {
		case indexes <- i:
		case <-ctx.Done():
			close(indexes)
			wg.Wait()
			return
		}
	}
	close(indexes)
	wg.Wait()
}
