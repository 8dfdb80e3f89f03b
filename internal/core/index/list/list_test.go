package list

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/flocknet/internal/core/index"
	"github.com/zeusync/flocknet/internal/core/models"
	"github.com/zeusync/flocknet/internal/core/systems/physics"
)

func drone(id int) *models.Drone {
	return models.NewDrone(models.DroneID(id), models.ColourRed, physics.Vec2{})
}

func TestAppendAndFind(t *testing.T) {
	l := New()
	a, b, c := drone(1), drone(2), drone(3)
	l.Append(a)
	l.Append(b)
	l.Append(c)

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, a, l.Head())
	assert.Equal(t, []*models.Drone{a, b, c}, l.Drones())

	got, err := l.FindByID(2)
	require.NoError(t, err)
	assert.Same(t, b, got)

	_, err = l.FindByID(9)
	assert.ErrorIs(t, err, index.ErrNotFound)
}

func TestRemoveHeadMiddleTail(t *testing.T) {
	l := New()
	ds := []*models.Drone{drone(1), drone(2), drone(3), drone(4)}
	for _, d := range ds {
		l.Append(d)
	}

	assert.True(t, l.Remove(ds[0]))
	assert.Equal(t, ds[1], l.Head())
	assert.True(t, l.Remove(ds[2]))
	assert.True(t, l.Remove(ds[3]))
	assert.Equal(t, []*models.Drone{ds[1]}, l.Drones())

	assert.False(t, l.Remove(ds[0]))
	assert.False(t, l.Remove(nil))
	assert.True(t, l.Remove(ds[1]))
	assert.Nil(t, l.Head())
	assert.False(t, l.Remove(ds[1]))
	assert.Equal(t, 0, l.Len())
}

func TestRemoveUsesIdentity(t *testing.T) {
	l := New()
	original := drone(5)
	lookalike := drone(5)
	l.Append(original)

	assert.False(t, l.Remove(lookalike))
	assert.True(t, l.Contains(original))
	assert.True(t, l.Remove(original))
}

func TestDuplicateAppend(t *testing.T) {
	l := New()
	d := drone(1)
	l.Append(d)
	l.Append(d)

	assert.Equal(t, 2, l.Len())
	assert.True(t, l.Remove(d))
	assert.True(t, l.Contains(d))
	assert.True(t, l.Remove(d))
	assert.False(t, l.Contains(d))
}

// Chain length always equals appends minus successful removes, and a lookup
// succeeds exactly for chained drones.
func TestRandomAppendRemove(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	l := New()
	pool := make([]*models.Drone, 20)
	for i := range pool {
		pool[i] = drone(i)
	}
	chained := map[*models.Drone]int{}
	appends, removes := 0, 0

	for step := 0; step < 500; step++ {
		d := pool[rng.Intn(len(pool))]
		if rng.Intn(2) == 0 {
			l.Append(d)
			chained[d]++
			appends++
		} else if l.Remove(d) {
			chained[d]--
			removes++
		} else {
			assert.Zero(t, chained[d])
		}
		require.Equal(t, appends-removes, l.Len())
	}

	for _, d := range pool {
		_, err := l.FindByID(d.ID())
		if chained[d] > 0 {
			assert.NoError(t, err)
		} else {
			assert.ErrorIs(t, err, index.ErrNotFound)
		}
	}
	assert.Len(t, l.Drones(), l.Len())
}
