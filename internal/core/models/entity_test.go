package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/flocknet/internal/core/systems/physics"
)

func TestParseColour(t *testing.T) {
	tests := []struct {
		in      string
		want    Colour
		wantErr bool
	}{
		{"red", ColourRed, false},
		{" Blue ", ColourBlue, false},
		{"RED", ColourRed, false},
		{"green", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColour(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColourText(t *testing.T) {
	b, err := ColourBlue.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "blue", string(b))

	var c Colour
	require.NoError(t, c.UnmarshalText([]byte("red")))
	assert.Equal(t, ColourRed, c)

	_, err = Colour(9).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "colour(9)", Colour(9).String())
	assert.Equal(t, ColourBlue, ColourRed.Other())
	assert.Equal(t, ColourRed, ColourBlue.Other())
}

func TestDroneMove(t *testing.T) {
	d := NewDrone(3, ColourRed, physics.V2(1, 1))
	d.Move(physics.V2(2, 0), 0.5)

	assert.Equal(t, physics.V2(2, 1), d.Position())
	assert.Equal(t, physics.V2(2, 0), d.Velocity())
	assert.Equal(t, "Agent 3", d.Name())

	d.SetColour(ColourBlue)
	d.SetCoolness(42)
	assert.Equal(t, ColourBlue, d.Colour())
	assert.Equal(t, 42, d.Coolness())
	assert.Equal(t, DroneID(3), d.ID())
}
