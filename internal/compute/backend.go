package compute

import "runtime"

type Backend interface {
	Name() string
	// Workers bounds the worker index passed to Each callbacks.
	Workers() int
	// Each calls fn once for every job in [0, n) and returns when all calls
	// have finished.
	Each(n int, fn func(worker, job int))
	Cleanup()
}

// Default is a CPU backend with one worker per logical CPU.
func Default() Backend {
	return NewCPUBackend(runtime.NumCPU())
}
