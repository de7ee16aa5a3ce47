package silhouette

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
)

// Fill returns a copy of src in which every pixel with non-zero alpha takes
// the fill color. Alpha is copied unchanged so the outline survives.
func Fill(src image.Image, fill color.NRGBA) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)

	for i := 0; i+3 < len(dst.Pix); i += 4 {
		if dst.Pix[i+3] == 0 {
			continue
		}
		dst.Pix[i] = fill.R
		dst.Pix[i+1] = fill.G
		dst.Pix[i+2] = fill.B
	}
	return dst
}

// ParseHexColor parses "#rrggbb" or "#rgb" into an opaque color
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid fill color %q: want 3 or 6 hex digits", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid fill color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
