package turtle

import (
	"image/color"
	"strings"
)

// palette is the classic sixteen color Logo palette.
var palette = []color.RGBA{
	{0x00, 0x00, 0x00, 0xff}, // black
	{0x00, 0x00, 0xff, 0xff}, // blue
	{0x00, 0xff, 0x00, 0xff}, // lime
	{0x00, 0xff, 0xff, 0xff}, // cyan
	{0xff, 0x00, 0x00, 0xff}, // red
	{0xff, 0x00, 0xff, 0xff}, // magenta
	{0xff, 0xff, 0x00, 0xff}, // yellow
	{0xff, 0xff, 0xff, 0xff}, // white
	{0x9b, 0x60, 0x3b, 0xff}, // brown
	{0xc5, 0x88, 0x12, 0xff}, // tan
	{0x64, 0xa2, 0x40, 0xff}, // green
	{0x78, 0xbb, 0xbb, 0xff}, // aquamarine
	{0xff, 0x95, 0x77, 0xff}, // salmon
	{0x90, 0x71, 0xd0, 0xff}, // purple
	{0xff, 0xa3, 0x00, 0xff}, // orange
	{0xb7, 0xb7, 0xb7, 0xff}, // gray
}

var names = map[string]int{
	"black": 0, "blue": 1, "lime": 2, "cyan": 3,
	"red": 4, "magenta": 5, "yellow": 6, "white": 7,
	"brown": 8, "tan": 9, "green": 10, "aquamarine": 11,
	"salmon": 12, "purple": 13, "orange": 14, "gray": 15,
	"grey": 15,
}

// PaletteColor returns entry i of the sixteen color palette.
func PaletteColor(i int) (color.Color, bool) {
	if i < 0 || i >= len(palette) {
		return nil, false
	}
	return palette[i], true
}

// NamedColor resolves a palette color by name, case-insensitively.
func NamedColor(name string) (color.Color, bool) {
	i, ok := names[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return palette[i], true
}

// RGB clamps each channel into [0, 255] and returns an opaque color.
func RGB(r, g, b float64) color.Color {
	return color.RGBA{channel(r), channel(g), channel(b), 0xff}
}

func channel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
