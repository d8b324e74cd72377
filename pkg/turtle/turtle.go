// Package turtle is the drawing collaborator: a pen on a fixed-size raster
// canvas, addressed in turtle space with the origin at the canvas center and
// y growing upward.
package turtle

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/aretw0/turtleshot/pkg/ports"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"
)

var _ ports.Turtle = (*Turtle)(nil)

// Background is the color the canvas is cleared to.
var Background color.Color = color.White

// Turtle draws straight strokes onto an RGBA canvas.
//
// Heading is in degrees, clockwise, with 0 pointing up. A Turtle is driven by
// a single interpreter and is not safe for concurrent use.
type Turtle struct {
	width, height int

	img    *image.RGBA
	dasher *rasterx.Dasher

	x, y    float64
	heading float64

	penDown   bool
	penWidth  float64
	penColor  color.Color
	penJustDn bool

	sink ports.MoveSink
}

// New returns a turtle at the origin, heading up, with a one pixel black pen
// down on a width x height canvas.
func New(width, height int) *Turtle {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	t := &Turtle{
		width:    width,
		height:   height,
		img:      img,
		dasher:   rasterx.NewDasher(width, height, scanner),
		penDown:  true,
		penWidth: 1,
		penColor: color.Black,
	}
	t.wipe()
	return t
}

// SetMoveSink implements ports.Turtle.
func (t *Turtle) SetMoveSink(sink ports.MoveSink) {
	t.sink = sink
}

// PenDown implements ports.Turtle.
func (t *Turtle) PenDown() bool { return t.penDown }

// Position returns the turtle's location in turtle space.
func (t *Turtle) Position() (x, y float64) { return t.x, t.y }

// Heading returns the heading in degrees within [0, 360).
func (t *Turtle) Heading() float64 { return t.heading }

// Forward moves along the current heading by distance.
func (t *Turtle) Forward(distance float64) {
	rad := t.heading * math.Pi / 180
	t.moveTo(t.x+distance*math.Sin(rad), t.y+distance*math.Cos(rad))
}

// Back moves against the current heading by distance.
func (t *Turtle) Back(distance float64) {
	t.Forward(-distance)
}

// Right turns clockwise by degrees.
func (t *Turtle) Right(degrees float64) {
	t.SetHeading(t.heading + degrees)
}

// Left turns counterclockwise by degrees.
func (t *Turtle) Left(degrees float64) {
	t.SetHeading(t.heading - degrees)
}

// SetHeading points the turtle at an absolute heading.
func (t *Turtle) SetHeading(degrees float64) {
	h := math.Mod(degrees, 360)
	if h < 0 {
		h += 360
	}
	t.heading = h
}

// SetPosition moves in a straight line to (x, y) without changing heading.
func (t *Turtle) SetPosition(x, y float64) {
	t.moveTo(x, y)
}

// Home moves back to the origin and points up.
func (t *Turtle) Home() {
	t.moveTo(0, 0)
	t.heading = 0
}

// Raise lifts the pen.
func (t *Turtle) Raise() {
	t.penDown = false
	t.penJustDn = false
}

// Lower puts the pen down.
func (t *Turtle) Lower() {
	if !t.penDown {
		t.penJustDn = true
	}
	t.penDown = true
}

// SetPenWidth sets the stroke width in pixels. Non-positive widths are
// rejected.
func (t *Turtle) SetPenWidth(width float64) error {
	if width <= 0 || math.IsNaN(width) || math.IsInf(width, 0) {
		return fmt.Errorf("invalid pen width %v", width)
	}
	t.penWidth = width
	return nil
}

// SetPenColor sets the stroke color.
func (t *Turtle) SetPenColor(c color.Color) {
	t.penColor = c
}

// Clear wipes the canvas and homes the turtle without drawing.
func (t *Turtle) Clear() {
	t.wipe()
	t.x, t.y, t.heading = 0, 0, 0
}

// Snapshot implements ports.Turtle.
func (t *Turtle) Snapshot() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, t.img); err != nil {
		return nil, fmt.Errorf("encode canvas: %w", err)
	}
	return buf.Bytes(), nil
}

// Image exposes the canvas.
func (t *Turtle) Image() *image.RGBA { return t.img }

func (t *Turtle) moveTo(x, y float64) {
	fromX, fromY := t.x, t.y
	t.x, t.y = x, y

	if t.penDown {
		t.stroke(fromX, fromY, x, y)
		if t.penJustDn {
			t.penJustDn = false
			t.notify(fromX, fromY)
		}
	}
	t.notify(x, y)
}

func (t *Turtle) notify(x, y float64) {
	if t.sink != nil {
		t.sink(x, y)
	}
}

func (t *Turtle) stroke(x0, y0, x1, y1 float64) {
	t.dasher.Clear()
	t.dasher.SetStroke(toFixed(t.penWidth), 0, rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.Round, nil, 0)
	t.dasher.Scanner.SetColor(t.penColor)
	t.dasher.Start(t.pixel(x0, y0))
	t.dasher.Line(t.pixel(x1, y1))
	t.dasher.Stop(false)
	t.dasher.Draw()
}

// pixel converts a turtle-space point to a fixed-point image-space point.
func (t *Turtle) pixel(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{
		X: toFixed(float64(t.width)/2 + x),
		Y: toFixed(float64(t.height)/2 - y),
	}
}

func (t *Turtle) wipe() {
	draw.Draw(t.img, t.img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
