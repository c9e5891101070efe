// Package render produces preview images of detection runs: the
// primary backscatter band as a grayscale backdrop with the water mask
// overlaid in translucent blue.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
	xdraw "golang.org/x/image/draw"

	"sar-watermap/internal/raster"
)

// Display stretch for backscatter in dB, matching the usual Sentinel-1
// grayscale visualization.
const (
	backdropMinDB = -25.0
	backdropMaxDB = 0.0
)

const rampSteps = 256

var (
	rampDark  = colorful.Color{R: 0.02, G: 0.02, B: 0.05}
	rampLight = colorful.Color{R: 0.98, G: 0.98, B: 0.98}
	waterBlue = colorful.Color{R: 0.12, G: 0.42, B: 0.85}
)

// Preview renders the backscatter backdrop with the water mask
// overlay, scaled so the longest edge is maxDim pixels. The water
// argument may be nil to render the backdrop alone.
func Preview(primary *raster.Grid, water *raster.Bitmask, maxDim int) image.Image {
	ramp := buildRamp()
	out := image.NewRGBA(image.Rect(0, 0, primary.Width, primary.Height))

	for y := 0; y < primary.Height; y++ {
		for x := 0; x < primary.Width; x++ {
			if !primary.IsValid(x, y) {
				out.SetRGBA(x, y, color.RGBA{})
				continue
			}

			t := (primary.At(x, y) - backdropMinDB) / (backdropMaxDB - backdropMinDB)
			if t < 0 {
				t = 0
			} else if t > 1 {
				t = 1
			}
			c := ramp[int(t*(rampSteps-1))]

			if water != nil && water.At(x, y) {
				c = c.BlendLab(waterBlue, 0.55).Clamped()
			}

			r, g, b := c.RGB255()
			out.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}

	return fit(out, maxDim)
}

// PNG renders a preview and encodes it as PNG bytes.
func PNG(primary *raster.Grid, water *raster.Bitmask, maxDim int) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, Preview(primary, water, maxDim)); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), nil
}

// buildRamp interpolates the backdrop palette in Lab space so the
// perceived brightness ramps evenly.
func buildRamp() [rampSteps]colorful.Color {
	var ramp [rampSteps]colorful.Color
	for i := range ramp {
		ramp[i] = rampDark.BlendLab(rampLight, float64(i)/(rampSteps-1)).Clamped()
	}
	return ramp
}

// fit resizes the preview so its longest edge matches maxDim.
// Downscaling uses Lanczos; small scenes are upscaled with
// nearest-neighbor to keep pixel edges crisp.
func fit(img *image.RGBA, maxDim int) image.Image {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if maxDim <= 0 || longest == 0 || longest == maxDim {
		return img
	}

	if longest > maxDim {
		return imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	scale := maxDim / longest
	if scale < 2 {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}
