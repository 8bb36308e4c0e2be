package types

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
)

// Position is a point on the sea surface. It serializes as a [x, y, z]
// array, the shape the persistence boundary expects.
type Position struct {
	X float64
	Y float64
	Z float64
}

func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{p.X, p.Y, p.Z})
}

func (p *Position) UnmarshalJSON(data []byte) error {
	var coords [3]float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return fmt.Errorf("position must be a [x, y, z] array: %v", err)
	}
	p.X, p.Y, p.Z = coords[0], coords[1], coords[2]
	return nil
}

// RandomSpawnPosition picks a point on a ring of the given radius around the
// map origin. Used for fresh spawns and respawns.
func RandomSpawnPosition(radius float64) Position {
	angle := rand.Float64() * 2 * math.Pi
	distance := radius * math.Sqrt(rand.Float64())
	return Position{
		X: math.Cos(angle) * distance,
		Z: math.Sin(angle) * distance,
	}
}
