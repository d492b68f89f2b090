package campaign

import "math"

// Spiral parameters for leaf placement on the tree canvas.
const (
	SpiralAngleDegrees = 137.5
	SpiralRadiusStep   = 30.0
	SpiralOriginX      = 500.0
	SpiralOriginY      = 300.0
)

// Position is a point on the tree canvas.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SpiralPosition returns the golden-angle spiral position for the leaf at the
// given zero-based insertion index. It is a pure function of index.
func SpiralPosition(index int) Position {
	if index < 0 {
		index = 0
	}
	angle := float64(index) * SpiralAngleDegrees * math.Pi / 180
	radius := math.Sqrt(float64(index)) * SpiralRadiusStep
	return Position{
		X: int(math.Round(SpiralOriginX + radius*math.Cos(angle))),
		Y: int(math.Round(SpiralOriginY + radius*math.Sin(angle))),
	}
}
