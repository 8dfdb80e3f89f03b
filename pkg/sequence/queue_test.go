package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityQueueOrdersAscending(t *testing.T) {
	pq := NewPriorityQueue[string]()
	pq.Enqueue("c", 3)
	pq.Enqueue("a", 1)
	pq.Enqueue("d", 4.5)
	pq.Enqueue("b", 2)

	var got []string
	for !pq.IsEmpty() {
		v, err := pq.Dequeue()
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
}

func TestPriorityQueueStableTies(t *testing.T) {
	pq := NewPriorityQueue[int]()
	for i := 0; i < 10; i++ {
		pq.Enqueue(i, 1)
	}
	pq.Enqueue(-1, 0)

	first, err := pq.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, -1, first)

	for want := 0; want < 10; want++ {
		v, err := pq.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}
}

func TestPriorityQueueEmpty(t *testing.T) {
	pq := NewPriorityQueue[int]()

	_, err := pq.Dequeue()
	assert.ErrorIs(t, err, ErrEmptyQueue)

	_, ok := pq.Peek()
	assert.False(t, ok)
	assert.Equal(t, 0, pq.Len())
}

func TestPriorityQueueUpdate(t *testing.T) {
	pq := NewPriorityQueue[string]()
	pq.Enqueue("x", 5)
	y := pq.Enqueue("y", 10)
	pq.Enqueue("z", 7)

	pq.Update(y, 1)

	v, ok := pq.Peek()
	require.True(t, ok)
	assert.Equal(t, "y", v)
	assert.Equal(t, 3, pq.Len())

	_, _ = pq.Dequeue()
	// updating a dequeued item is a no-op
	pq.Update(y, 0)
	v, _ = pq.Peek()
	assert.Equal(t, "x", v)
}
