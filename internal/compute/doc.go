// Package compute provides the execution backends that spread independent
// simulation runs over goroutines.
//
// A backend hands out job indices to a bounded set of workers. Every job is
// owned by exactly one worker, so a job can write its own result slot
// without locking:
//
//	b := compute.NewCPUBackend(runtime.NumCPU())
//	b.Each(len(variants), func(worker, i int) {
//		results[i] = run(variants[i])
//	})
//
// A single job, or a single worker, runs on the calling goroutine.
package compute
