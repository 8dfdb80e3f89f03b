package tree

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/flocknet/internal/core/index"
	"github.com/zeusync/flocknet/internal/core/models"
	"github.com/zeusync/flocknet/internal/core/systems/physics"
)

func build(ids ...int) *Tree {
	t := New()
	for _, id := range ids {
		t.Insert(models.NewDrone(models.DroneID(id), models.ColourBlue, physics.Vec2{}))
	}
	return t
}

func ids(ds []*models.Drone) []int {
	out := make([]int, len(ds))
	for i, d := range ds {
		out[i] = int(d.ID())
	}
	return out
}

func TestInsertFind(t *testing.T) {
	tr := build(50, 30, 70, 20, 40, 60, 80)

	assert.Equal(t, 7, tr.Len())
	assert.Equal(t, 3, tr.Height())
	assert.Equal(t, []int{20, 30, 40, 50, 60, 70, 80}, ids(tr.InOrder()))
	assert.Equal(t, models.DroneID(20), tr.Min().ID())

	d, err := tr.FindByID(60)
	require.NoError(t, err)
	assert.Equal(t, models.DroneID(60), d.ID())

	_, err = tr.FindByID(65)
	assert.ErrorIs(t, err, index.ErrNotFound)
}

func TestEmptyTree(t *testing.T) {
	tr := New()
	assert.Nil(t, tr.Min())
	assert.Empty(t, tr.InOrder())
	assert.False(t, tr.Delete(1))
	_, err := tr.FindByID(1)
	assert.ErrorIs(t, err, index.ErrNotFound)
}

func TestDeleteCases(t *testing.T) {
	tests := []struct {
		name   string
		insert []int
		del    int
		want   []int
	}{
		{"leaf", []int{50, 30, 70}, 30, []int{50, 70}},
		{"only node", []int{50}, 50, []int{}},
		{"one child left", []int{50, 30, 20}, 30, []int{20, 50}},
		{"one child right", []int{50, 30, 40}, 30, []int{40, 50}},
		{"root with one child", []int{50, 70, 60}, 50, []int{60, 70}},
		{"two children", []int{50, 30, 70, 20, 40}, 30, []int{20, 40, 50, 70}},
		{"root two children deep successor", []int{50, 30, 70, 60, 80, 65}, 50, []int{30, 60, 65, 70, 80}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := build(tt.insert...)
			require.True(t, tr.Delete(models.DroneID(tt.del)))

			_, err := tr.FindByID(models.DroneID(tt.del))
			assert.ErrorIs(t, err, index.ErrNotFound)
			assert.Equal(t, tt.want, ids(tr.InOrder()))
			assert.Equal(t, len(tt.want), tr.Len())
			for _, id := range tt.want {
				_, err := tr.FindByID(models.DroneID(id))
				assert.NoError(t, err, "id %d", id)
			}
		})
	}
}

func TestDeleteTwoChildrenUsesSuccessor(t *testing.T) {
	tr := build(50, 30, 70, 20, 40)
	require.True(t, tr.Delete(30))

	// 40 took over the deleted node's slot under the root
	require.NotNil(t, tr.root.left)
	assert.Equal(t, models.DroneID(40), tr.root.left.drone.ID())
	assert.Equal(t, models.DroneID(20), tr.root.left.left.drone.ID())
	assert.Nil(t, tr.root.left.right)

	_, err := tr.FindByID(40)
	assert.NoError(t, err)
	assert.False(t, tr.Delete(30))
}

func TestTiesGoRight(t *testing.T) {
	tr := build(10, 10, 10)
	assert.Nil(t, tr.root.left)
	assert.Equal(t, 3, tr.Height())
	assert.True(t, tr.Delete(10))
	assert.Equal(t, []int{10, 10}, ids(tr.InOrder()))
}

func TestRandomInsertDelete(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tr := New()
	present := map[int]bool{}

	for _, id := range rng.Perm(200) {
		tr.Insert(models.NewDrone(models.DroneID(id), models.ColourRed, physics.Vec2{}))
		present[id] = true
	}
	for _, id := range rng.Perm(200)[:120] {
		require.True(t, tr.Delete(models.DroneID(id)))
		delete(present, id)

		got := ids(tr.InOrder())
		require.True(t, sort.IntsAreSorted(got))
		require.Len(t, got, len(present))
	}
	for id := 0; id < 200; id++ {
		_, err := tr.FindByID(models.DroneID(id))
		if present[id] {
			assert.NoError(t, err)
		} else {
			assert.ErrorIs(t, err, index.ErrNotFound)
		}
	}
}
