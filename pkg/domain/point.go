package domain

import "math"

// Point is an immutable pair of real coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ToImageSpace converts p from turtle space to the pixel space of a
// width x height canvas.
func (p Point) ToImageSpace(width, height int) Point {
	return Point{
		X: float64(width)/2 + p.X,
		Y: float64(height)/2 - p.Y,
	}
}

// IntPoint is the wire form of a rounded Point.
type IntPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Int rounds both coordinates.
func (p Point) Int() IntPoint {
	return IntPoint{X: int(roundHalfUp(p.X)), Y: int(roundHalfUp(p.Y))}
}

// roundHalfUp rounds .5 toward positive infinity, so -2.5 becomes -2.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(math.Min(v, hi), lo)
}
