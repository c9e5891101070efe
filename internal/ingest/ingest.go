// Package ingest prepares detection-ready raster layers from raw
// acquisition imagery: speckle filtering and dB conversion of the
// amplitude bands, and terrain slope derivation from an elevation
// model.
package ingest

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"

	"sar-watermap/internal/raster"
)

// DefaultSpeckleWindow is the focal-median kernel size applied to the
// amplitude bands before dB conversion.
const DefaultSpeckleWindow = 5

// Options configures scene preparation.
type Options struct {
	// PrimaryPath and SecondaryPath point at linear-amplitude imagery
	// (any single-channel format OpenCV can decode; 16-bit preferred).
	PrimaryPath   string
	SecondaryPath string

	// DEMPath points at an elevation raster in meters.
	DEMPath string

	// SpeckleWindow is the median-filter kernel size; values other
	// than 3 or 5 fall back to the default.
	SpeckleWindow int

	// Transform is the shared geotransform of all three inputs.
	Transform raster.Geotransform
}

// PrepareLayers builds a detection-ready layer set from raw imagery.
func PrepareLayers(opts Options) (*raster.LayerSet, error) {
	window := opts.SpeckleWindow
	if window != 3 && window != 5 {
		window = DefaultSpeckleWindow
	}

	primary, err := loadAmplitudeDB(opts.PrimaryPath, window)
	if err != nil {
		return nil, fmt.Errorf("primary band: %w", err)
	}
	secondary, err := loadAmplitudeDB(opts.SecondaryPath, window)
	if err != nil {
		return nil, fmt.Errorf("secondary band: %w", err)
	}
	slope, err := deriveSlope(opts.DEMPath, opts.Transform.GroundResolution)
	if err != nil {
		return nil, fmt.Errorf("slope band: %w", err)
	}

	set := &raster.LayerSet{
		Primary:   primary,
		Secondary: secondary,
		Slope:     slope,
		Transform: opts.Transform,
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// loadAmplitudeDB reads a linear-amplitude image, applies the speckle
// filter and converts to dB. Non-positive samples become no-data.
func loadAmplitudeDB(path string, window int) (*raster.Grid, error) {
	src := gocv.IMRead(path, gocv.IMReadGrayScale)
	if src.Empty() {
		return nil, fmt.Errorf("read %s: no decodable image", path)
	}
	defer src.Close()

	f32 := gocv.NewMat()
	defer f32.Close()
	src.ConvertTo(&f32, gocv.MatTypeCV32F)

	filtered := gocv.NewMat()
	defer filtered.Close()
	gocv.MedianBlur(f32, &filtered, window)

	g := raster.NewGrid(filtered.Cols(), filtered.Rows())
	for y := 0; y < filtered.Rows(); y++ {
		for x := 0; x < filtered.Cols(); x++ {
			v := float64(filtered.GetFloatAt(y, x))
			if v <= 0 {
				g.Set(x, y, math.NaN())
				continue
			}
			g.Set(x, y, 10*math.Log10(v))
		}
	}
	return g, nil
}

// deriveSlope computes terrain slope in degrees from an elevation
// raster using Horn's method: Sobel gradients scaled by eight times
// the cell size.
func deriveSlope(path string, cellSize float64) (*raster.Grid, error) {
	dem := gocv.IMRead(path, gocv.IMReadGrayScale)
	if dem.Empty() {
		return nil, fmt.Errorf("read %s: no decodable image", path)
	}
	defer dem.Close()

	f32 := gocv.NewMat()
	defer f32.Close()
	dem.ConvertTo(&f32, gocv.MatTypeCV32F)

	dx := gocv.NewMat()
	defer dx.Close()
	dy := gocv.NewMat()
	defer dy.Close()
	gocv.Sobel(f32, &dx, gocv.MatTypeCV32F, 1, 0, 3, 1, 0, gocv.BorderReplicate)
	gocv.Sobel(f32, &dy, gocv.MatTypeCV32F, 0, 1, 3, 1, 0, gocv.BorderReplicate)

	denom := 8 * cellSize
	g := raster.NewGrid(f32.Cols(), f32.Rows())
	for y := 0; y < f32.Rows(); y++ {
		for x := 0; x < f32.Cols(); x++ {
			p := float64(dx.GetFloatAt(y, x)) / denom
			q := float64(dy.GetFloatAt(y, x)) / denom
			g.Set(x, y, math.Atan(math.Hypot(p, q))*180/math.Pi)
		}
	}
	return g, nil
}
