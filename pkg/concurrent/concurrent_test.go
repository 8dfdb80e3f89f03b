package concurrent

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelMapPreservesOrder(t *testing.T) {
	for _, n := range []int{0, 1, 63, 64, 1000} {
		in := make([]int, n)
		for i := range in {
			in[i] = i
		}
		out := ParallelMap(in, 4, func(v int) int { return v * v })
		require.Len(t, out, n)
		for i, v := range out {
			assert.Equal(t, i*i, v)
		}
	}
}

func TestBatchCoversEveryElement(t *testing.T) {
	in := make([]int, 250)
	var seen [250]int32
	var chunks int32
	Batch(in, 100, func(offset int, chunk []int) {
		atomic.AddInt32(&chunks, 1)
		for i := range chunk {
			atomic.AddInt32(&seen[offset+i], 1)
		}
	})
	assert.Equal(t, int32(3), chunks)
	for i := range seen {
		assert.Equal(t, int32(1), seen[i], "index %d", i)
	}
}
