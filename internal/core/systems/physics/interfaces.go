package physics

// Lightweight 2-D abstractions shared by the drone model, the proximity graph
// and the simulation loop.

// Positioned is anything that can report a current 2D position.
type Positioned interface {
	Position() Vec2
}
