package collect

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// runner executes the per-interface reads of one collection pass. It
// exists as a seam so tests can inject framework-level failures and
// exercise the sequential fallback.
type runner interface {
	Run(ctx context.Context, tasks int, fn func(task int)) error
}

// goRunner fans tasks out across a bounded set of goroutines and joins
// them all before returning.
type goRunner struct{}

var _ runner = goRunner{}

func (goRunner) Run(ctx context.Context, tasks int, fn func(task int)) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("collection pass: %w", err)
	}

	sem := make(chan struct{}, maxWorkers(tasks))
	var wg sync.WaitGroup
	for task := 0; task < tasks; task++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(task int) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(task)
		}(task)
	}
	wg.Wait()

	return nil
}

// maxWorkers bounds a pass's concurrency. Counter reads are short and
// stateless, so a small multiple of the CPU count is plenty.
func maxWorkers(tasks int) int {
	if tasks < 1 {
		return 1
	}
	limit := 2 * runtime.GOMAXPROCS(0)
	if limit < 1 {
		limit = 1
	}
	if tasks < limit {
		return tasks
	}
	return limit
}
