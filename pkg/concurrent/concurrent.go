package concurrent

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Workers normalises a worker count: non-positive values mean GOMAXPROCS.
func Workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// ParallelMap applies mapFn to each element of in, preserving order. The input
// is split into at most workers contiguous chunks, each handled by one
// goroutine. Small inputs run on the calling goroutine.
func ParallelMap[T any, R any](in []T, workers int, mapFn func(T) R) []R {
	out := make([]R, len(in))
	Batch(in, chunkSize(len(in), workers), func(offset int, chunk []T) {
		for i, v := range chunk {
			out[offset+i] = mapFn(v)
		}
	})
	return out
}

// Batch calls action for consecutive chunks of at most batchSize elements,
// each chunk in its own goroutine, and waits for all of them. offset is the
// index of the chunk's first element in in.
func Batch[T any](in []T, batchSize int, action func(offset int, chunk []T)) {
	if len(in) == 0 {
		return
	}
	if batchSize <= 0 || batchSize >= len(in) {
		action(0, in)
		return
	}

	var g errgroup.Group
	for idx := 0; idx < len(in); idx += batchSize {
		end := min(idx+batchSize, len(in))
		g.Go(func() error {
			action(idx, in[idx:end])
			return nil
		})
	}
	_ = g.Wait()
}

// minChunk keeps tiny inputs from being spread over many goroutines.
const minChunk = 64

func chunkSize(n, workers int) int {
	workers = Workers(workers)
	size := (n + workers - 1) / workers
	return max(size, minChunk)
}
