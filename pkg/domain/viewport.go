package domain

// Viewport tracks the smallest rectangle enclosing every point passed to
// Update.
//
// A new Viewport is seeded inverted (Min at the upper corner of its space,
// Max at the lower one) so the first Update establishes real bounds. Width and
// Height are only meaningful after at least one Update.
//
// A Viewport is not safe for concurrent use; the harness owns it for the
// duration of exactly one run.
type Viewport struct {
	Min    Point
	Max    Point
	Width  int
	Height int

	HalfExtentX float64
	HalfExtentY float64
	Clamp       bool

	canvasWidth  int
	canvasHeight int
}

// NewViewport returns a turtle-space viewport for a width x height canvas.
// When clamp is set, every update is first clamped to the canvas extent.
func NewViewport(width, height int, clamp bool) *Viewport {
	hx, hy := float64(width)/2, float64(height)/2
	return &Viewport{
		Min:          Point{X: hx, Y: hy},
		Max:          Point{X: -hx, Y: -hy},
		Width:        width,
		Height:       height,
		HalfExtentX:  hx,
		HalfExtentY:  hy,
		Clamp:        clamp,
		canvasWidth:  width,
		canvasHeight: height,
	}
}

// newImageViewport returns an unclamped viewport seeded inverted over the
// image-space extent [0,width] x [0,height].
func newImageViewport(width, height int) *Viewport {
	return &Viewport{
		Min:          Point{X: float64(width), Y: float64(height)},
		Max:          Point{X: 0, Y: 0},
		Width:        width,
		Height:       height,
		HalfExtentX:  float64(width) / 2,
		HalfExtentY:  float64(height) / 2,
		canvasWidth:  width,
		canvasHeight: height,
	}
}

// Update grows the viewport so it encloses (x, y).
// The point is clamped (if enabled), rounded, then folded into Min and Max
// one axis at a time.
func (v *Viewport) Update(x, y float64) {
	if v.Clamp {
		x = clamp(x, -v.HalfExtentX, v.HalfExtentX)
		y = clamp(y, -v.HalfExtentY, v.HalfExtentY)
	}
	x, y = roundHalfUp(x), roundHalfUp(y)

	v.Min.X = min(v.Min.X, x)
	v.Min.Y = min(v.Min.Y, y)
	v.Max.X = max(v.Max.X, x)
	v.Max.Y = max(v.Max.Y, y)

	v.Width = int(roundHalfUp(v.Max.X) - roundHalfUp(v.Min.X) + 1)
	v.Height = int(roundHalfUp(v.Max.Y) - roundHalfUp(v.Min.Y) + 1)
}

// Expand pushes both corners outward by margin through Update and returns v.
//
// Expand mutates v in place. It must run exactly once, after the run has
// settled and before ToImageSpace reads the viewport. With Clamp enabled the
// margin is truncated at the canvas edge like any other update.
func (v *Viewport) Expand(margin int) *Viewport {
	m := float64(margin)
	v.Update(v.Min.X-m, v.Min.Y-m)
	v.Update(v.Max.X+m, v.Max.Y+m)
	return v
}

// ToImageSpace returns a new, unclamped viewport holding v converted to image
// space. Both corners are converted and fed through Update, because the
// y reflection swaps which corner holds the minimum y.
func (v *Viewport) ToImageSpace() *Viewport {
	lo := v.Min.ToImageSpace(v.canvasWidth, v.canvasHeight)
	hi := v.Max.ToImageSpace(v.canvasWidth, v.canvasHeight)

	box := newImageViewport(v.canvasWidth, v.canvasHeight)
	box.Update(lo.X, lo.Y)
	box.Update(hi.X, hi.Y)
	return box
}

// Box returns the wire form of the viewport.
func (v *Viewport) Box() Box {
	return Box{
		Min:    v.Min.Int(),
		Max:    v.Max.Int(),
		Width:  v.Width,
		Height: v.Height,
	}
}

// Box is the serialized shape of a Viewport.
type Box struct {
	Min    IntPoint `json:"min"`
	Max    IntPoint `json:"max"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
}
