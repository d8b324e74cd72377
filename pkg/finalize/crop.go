package finalize

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/aretw0/turtleshot/pkg/domain"
	"golang.org/x/image/draw"
)

// Crop decodes a PNG raster, cuts out the region starting at box.Min with
// box.Width x box.Height pixels, and re-encodes it as PNG. The region is
// intersected with the raster bounds.
func Crop(raster []byte, box *domain.Viewport) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(raster))
	if err != nil {
		return nil, domain.PersistenceError(fmt.Errorf("decode raster: %w", err))
	}

	origin := box.Min.Int()
	region := image.Rect(origin.X, origin.Y, origin.X+box.Width, origin.Y+box.Height).
		Intersect(src.Bounds())
	if region.Empty() {
		return nil, domain.PersistenceError(fmt.Errorf("crop region %v is outside the raster %v", box.Box(), src.Bounds()))
	}

	dst := image.NewNRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	draw.Copy(dst, image.Point{}, src, region, draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, domain.PersistenceError(fmt.Errorf("encode raster: %w", err))
	}
	return buf.Bytes(), nil
}
