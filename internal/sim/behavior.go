package sim

import (
	"github.com/zeusync/flocknet/internal/core/models"
	"github.com/zeusync/flocknet/internal/core/systems/physics"
)

// Behavior weights of the composite flocking move.
const (
	cohesionWeight  = 1.0
	alignmentWeight = 1.0
	avoidanceWeight = 2.0
	stayWeight      = 0.1
)

type steering struct {
	avoidanceRadius float64
	center          physics.Vec2
	boundRadius     float64
	driveFactor     float64
	maxSpeed        float64
}

// move computes the velocity of d for the next tick from the drones within
// its neighbour radius.
func (s steering) move(d *models.Drone, nearby []*models.Drone) physics.Vec2 {
	pos := d.Position()

	var cohesion, alignment, avoidance physics.Vec2
	avoided := 0
	for _, o := range nearby {
		op := o.Position()
		cohesion = cohesion.Add(op)
		alignment = alignment.Add(o.Velocity())
		if pos.DistanceTo(op) < s.avoidanceRadius {
			avoidance = avoidance.Add(pos.Sub(op))
			avoided++
		}
	}

	var total physics.Vec2
	if n := float64(len(nearby)); n > 0 {
		cohesion = cohesion.Scale(1 / n).Sub(pos)
		alignment = alignment.Scale(1 / n)
		total = total.Add(weighted(cohesion, cohesionWeight))
		total = total.Add(weighted(alignment, alignmentWeight))
	}
	if avoided > 0 {
		total = total.Add(weighted(avoidance.Scale(1/float64(avoided)), avoidanceWeight))
	}
	total = total.Add(weighted(s.stayInRadius(pos), stayWeight))

	return total.Scale(s.driveFactor).ClampLen(s.maxSpeed)
}

// stayInRadius pulls drones back once they pass 90% of the bound radius.
func (s steering) stayInRadius(pos physics.Vec2) physics.Vec2 {
	offset := s.center.Sub(pos)
	if s.boundRadius <= 0 {
		return physics.Vec2{}
	}
	t := offset.Len() / s.boundRadius
	if t < 0.9 {
		return physics.Vec2{}
	}
	return offset.Scale(t * t)
}

// weighted scales a partial move and caps it at the weight.
func weighted(v physics.Vec2, weight float64) physics.Vec2 {
	return v.Scale(weight).ClampLen(weight)
}
