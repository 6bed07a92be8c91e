package icon

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// maxIconDim bounds each axis of a rasterized icon. Native icon
// resources occasionally report absurd dimensions; clamping before any
// buffer is sized keeps memory use bounded.
const maxIconDim = 512

func clampDim(v int) int {
	if v < 1 {
		return 1
	}
	if v > maxIconDim {
		return maxIconDim
	}
	return v
}

// Convert turns a raw top-down 32bpp BGRA pixel buffer into a PNG.
//
// maskAlpha, when non-nil, is a per-pixel alpha channel derived from a
// legacy icon's 1-bit transparency mask; it is applied only when the
// buffer itself carries no alpha. With neither source alpha nor a mask,
// a pixel is treated as transparent iff its RGB is exactly black —
// an approximation, but it beats rendering a solid black block.
func Convert(raw []byte, width, height int, maskAlpha []byte) ([]byte, error) {
	width = clampDim(width)
	height = clampDim(height)

	n := width * height
	if len(raw) < n*4 {
		return nil, fmt.Errorf("pixel buffer too short: have %d bytes, need %d", len(raw), n*4)
	}

	rgba := make([]byte, n*4)
	hasAlpha := false
	for i := 0; i < n; i++ {
		b, g, r, a := raw[i*4], raw[i*4+1], raw[i*4+2], raw[i*4+3]
		if a > 0 {
			hasAlpha = true
		}
		rgba[i*4] = r
		rgba[i*4+1] = g
		rgba[i*4+2] = b
		rgba[i*4+3] = a
	}

	if hasAlpha {
		unpremultiply(rgba)
	} else if len(maskAlpha) >= n {
		for i := 0; i < n; i++ {
			rgba[i*4+3] = maskAlpha[i]
		}
	} else {
		applyOpaqueHeuristic(rgba)
	}

	return encodePNG(rgba, width, height)
}

// unpremultiply converts premultiplied-alpha channels back to straight
// alpha. The off-screen icon render composites with premultiplied
// alpha; exporting that directly makes semi-transparent edges go dark.
// Alpha 0 and 255 are left untouched — the division is meaningless at
// the extremes.
func unpremultiply(rgba []byte) {
	for i := 0; i < len(rgba); i += 4 {
		a := uint32(rgba[i+3])
		if a == 0 || a == 255 {
			continue
		}
		for c := 0; c < 3; c++ {
			v := (uint32(rgba[i+c])*255 + a/2) / a
			if v > 255 {
				v = 255
			}
			rgba[i+c] = byte(v)
		}
	}
}

// applyOpaqueHeuristic is the last-resort alpha reconstruction for
// mask-less legacy icons: transparent iff the pixel is pure black.
// Known to misclassify legitimately black opaque pixels; kept as-is
// for compatibility with icons already cached by older builds.
func applyOpaqueHeuristic(rgba []byte) {
	for i := 0; i < len(rgba); i += 4 {
		if rgba[i] == 0 && rgba[i+1] == 0 && rgba[i+2] == 0 {
			rgba[i+3] = 0
		} else {
			rgba[i+3] = 255
		}
	}
}

func encodePNG(rgba []byte, width, height int) ([]byte, error) {
	img := &image.NRGBA{
		Pix:    rgba,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}
