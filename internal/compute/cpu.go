package compute

import (
	"fmt"
	"sync"
)

type CPUBackend struct {
	workers int
}

func NewCPUBackend(workers int) *CPUBackend {
	if workers < 1 {
		workers = 1
	}
	return &CPUBackend{workers: workers}
}

func (c *CPUBackend) Name() string { return fmt.Sprintf("cpu/%d", c.workers) }
func (c *CPUBackend) Workers() int { return c.workers }
func (c *CPUBackend) Cleanup()     {}

// Each hands jobs out in index order to whichever worker is free. A single
// worker or a single job runs on the calling goroutine.
func (c *CPUBackend) Each(n int, fn func(worker, job int)) {
	if n <= 1 || c.workers == 1 {
		for i := 0; i < n; i++ {
			fn(0, i)
		}
		return
	}

	workers := c.workers
	if workers > n {
		workers = n
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for job := range jobs {
				fn(worker, job)
			}
		}(w)
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}
