package models

import (
	"fmt"
	"strings"

	"github.com/zeusync/flocknet/internal/core/systems/physics"
)

// DroneID identifies a drone. It is assigned at creation and never changes.
type DroneID int

// Colour is the partition key of a drone.
type Colour uint8

const (
	ColourRed Colour = iota
	ColourBlue
)

// Colours lists every partition value in a stable order.
func Colours() []Colour { return []Colour{ColourRed, ColourBlue} }

func (c Colour) Valid() bool { return c == ColourRed || c == ColourBlue }

func (c Colour) String() string {
	switch c {
	case ColourRed:
		return "red"
	case ColourBlue:
		return "blue"
	default:
		return fmt.Sprintf("colour(%d)", uint8(c))
	}
}

// Other returns the opposite partition.
func (c Colour) Other() Colour {
	if c == ColourRed {
		return ColourBlue
	}
	return ColourRed
}

func (c Colour) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid colour %d", uint8(c))
	}
	return []byte(c.String()), nil
}

func (c *Colour) UnmarshalText(text []byte) error {
	parsed, err := ParseColour(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColour accepts "red" or "blue" in any case.
func ParseColour(s string) (Colour, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red":
		return ColourRed, nil
	case "blue":
		return ColourBlue, nil
	default:
		return 0, fmt.Errorf("unknown colour %q", s)
	}
}

// Drone is an indexed entity. The index structures only hold references to
// drones; their position, velocity and coolness are owned by the caller.
// A Drone is not safe for concurrent use.
type Drone struct {
	id       DroneID
	colour   Colour
	position physics.Vec2
	velocity physics.Vec2
	coolness int
}

func NewDrone(id DroneID, colour Colour, position physics.Vec2) *Drone {
	return &Drone{
		id:       id,
		colour:   colour,
		position: position,
	}
}

func (d *Drone) ID() DroneID { return d.id }

func (d *Drone) Name() string { return fmt.Sprintf("Agent %d", d.id) }

func (d *Drone) Colour() Colour { return d.colour }

// SetColour changes the colour attribute only. It does not move the drone
// between partitions; use the registry's Repartition for that.
func (d *Drone) SetColour(c Colour) { d.colour = c }

func (d *Drone) Position() physics.Vec2 { return d.position }

func (d *Drone) SetPosition(p physics.Vec2) { d.position = p }

func (d *Drone) Velocity() physics.Vec2 { return d.velocity }

// Move applies velocity for dt seconds.
func (d *Drone) Move(velocity physics.Vec2, dt float64) {
	d.velocity = velocity
	d.position = d.position.Add(velocity.Scale(dt))
}

func (d *Drone) Coolness() int { return d.coolness }

func (d *Drone) SetCoolness(v int) { d.coolness = v }

func (d *Drone) String() string {
	return fmt.Sprintf("%s(%s @ %.2f,%.2f)", d.Name(), d.colour, d.position.Xv, d.position.Yv)
}
