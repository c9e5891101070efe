// Package pipeline sequences the adaptive water-extraction stages:
// threshold selection, mask construction, refinement and
// vectorization. The pipeline is a single synchronous, stateless
// computation per invocation; it performs no logging and no retries.
package pipeline

import (
	"errors"
	"time"

	"sar-watermap/internal/aoi"
	"sar-watermap/internal/mask"
	"sar-watermap/internal/raster"
	"sar-watermap/internal/threshold"
	"sar-watermap/internal/vectorize"
)

// ErrNoAOI is returned when Run is invoked without an area of
// interest.
var ErrNoAOI = errors.New("pipeline: missing area of interest")

// Stage identifies a completed pipeline stage for progress reporting.
type Stage int

const (
	StageThreshold Stage = iota + 1
	StageMask
	StageRefine
	StageVectorize
)

func (s Stage) String() string {
	switch s {
	case StageThreshold:
		return "threshold"
	case StageMask:
		return "mask"
	case StageRefine:
		return "refine"
	case StageVectorize:
		return "vectorize"
	default:
		return "unknown"
	}
}

// ProgressFunc receives stage-completion events during a run. It may
// be nil.
type ProgressFunc func(Stage)

// Run executes the full detection sequence on an already-materialized
// layer set. Structural input errors abort before the first stage;
// semantically degenerate scenes (no water, near-unimodal histogram)
// produce a valid result, optionally annotated with a warning.
func Run(set *raster.LayerSet, area *aoi.AreaOfInterest, params Parameters, progress ProgressFunc) (*DetectionResult, error) {
	start := time.Now()

	if area == nil {
		return nil, ErrNoAOI
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}

	emit := func(s Stage) {
		if progress != nil {
			progress(s)
		}
	}

	resolved := params.Resolve()

	valid := footprint(set, area)

	primary := set.Primary
	secondary := set.Secondary
	if resolved.SmoothingWindowPx > 1 {
		primary = primary.BoxSmooth(resolved.SmoothingWindowPx)
		secondary = secondary.BoxSmooth(resolved.SmoothingWindowPx)
	}

	// Stage 1: threshold selection.
	thr := threshold.Select(primary, valid, params.PrimaryThresholdDB)
	resolved.PrimaryThresholdDB = thr.Value
	resolved.PrimaryAutomatic = thr.Provenance == threshold.Automatic
	emit(StageThreshold)

	// Stage 2: per-pixel candidate mask.
	smoothed := &raster.LayerSet{
		Primary:   primary,
		Secondary: secondary,
		Slope:     set.Slope,
		Transform: set.Transform,
	}
	wm := mask.Build(smoothed, valid, mask.Criteria{
		PrimaryMaxDB:   thr.Value,
		SecondaryMaxDB: resolved.SecondaryThresholdDB,
		DiffMaxDB:      resolved.DiffCeilingDB,
		SlopeMaxDeg:    resolved.SlopeCeilingDeg,
	}, resolved.PrimaryAutomatic)
	emit(StageMask)

	// Stage 3: morphological cleanup and small-feature removal.
	refined := mask.Refine(wm.Bits, resolved.MinFeaturePixels)
	emit(StageRefine)

	// Stage 4: vectorization and statistics.
	opts := vectorize.DefaultOptions()
	opts.ClipBounds = area.Bounds()
	traced := vectorize.Trace(refined, set.Transform, opts)
	emit(StageVectorize)

	result := &DetectionResult{
		Acquisition:       set.Acquisition,
		AcquisitionDate:   set.AcquiredAt,
		Polygons:          traced.Polygons,
		Threshold:         thr,
		Mask:              refined,
		WaterAreaKM2:      traced.WaterAreaKM2,
		ParametersUsed:    resolved,
		ProcessingSeconds: time.Since(start).Seconds(),
	}

	if aoiArea := area.AreaKM2(); aoiArea > 0 {
		result.WaterPercentage = traced.WaterAreaKM2 / aoiArea * 100
	}

	if thr.Degenerate {
		result.Warning = "automatic threshold unreliable: backscatter histogram is near-unimodal"
	}

	return result, nil
}

// footprint marks the pixels whose centers fall inside the AOI. Only
// these participate in thresholding and classification.
func footprint(set *raster.LayerSet, area *aoi.AreaOfInterest) *raster.Bitmask {
	w, h := set.Width(), set.Height()
	m := raster.NewBitmask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			center := set.Transform.PixelToGeo(float64(x)+0.5, float64(y)+0.5)
			m.Set(x, y, area.Contains(center))
		}
	}
	return m
}
