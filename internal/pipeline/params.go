package pipeline

import (
	"time"

	"sar-watermap/internal/mask"
)

// Default values for optional detection parameters, matching the
// behavior of conservative open-water detection over Sentinel-1 IW
// scenes.
const (
	DefaultSecondaryThresholdDB = -20.0
	DefaultDiffCeilingDB        = 2.0
	DefaultSlopeCeilingDeg      = 5.0
	DefaultSmoothingWindowPx    = 1 // no extra smoothing by default
)

// Parameters are the optional operator overrides for one detection
// run. A nil field means "use the automatic/default value". The struct
// is treated as immutable once passed to Run.
type Parameters struct {
	// PrimaryThresholdDB overrides automatic (Otsu) threshold
	// selection for the primary polarization.
	PrimaryThresholdDB *float64 `json:"vv_threshold,omitempty"`

	// SecondaryThresholdDB is the VH backscatter ceiling.
	SecondaryThresholdDB *float64 `json:"vh_threshold,omitempty"`

	// DiffCeilingDB is the ceiling on (primary - secondary).
	DiffCeilingDB *float64 `json:"vv_vh_diff,omitempty"`

	// SlopeCeilingDeg is the terrain slope ceiling in degrees.
	SlopeCeilingDeg *float64 `json:"slope_max,omitempty"`

	// MinFeaturePixels is the minimum connected-component size kept.
	MinFeaturePixels *int `json:"min_area_pixels,omitempty"`

	// SmoothingWindowPx applies a focal-mean smoothing of the
	// backscatter bands before thresholding when greater than one.
	SmoothingWindowPx *int `json:"smoothing_window,omitempty"`

	// CutoffDate restricts scene selection to acquisitions on or
	// before this date. It does not affect the pipeline itself and is
	// echoed back in the resolved parameter set.
	CutoffDate *time.Time `json:"cutoff_date,omitempty"`
}

// ResolvedParameters is the fully-defaulted parameter set actually
// applied, reported back so callers never see nulls.
type ResolvedParameters struct {
	PrimaryThresholdDB   float64 `json:"vv_threshold_db"`
	PrimaryAutomatic     bool    `json:"vv_threshold_automatic"`
	SecondaryThresholdDB float64 `json:"vh_threshold_db"`
	DiffCeilingDB        float64 `json:"vv_vh_diff_db"`
	SlopeCeilingDeg      float64 `json:"slope_max_deg"`
	MinFeaturePixels     int     `json:"min_area_pixels"`
	SmoothingWindowPx    int     `json:"smoothing_window_px"`
	CutoffDate           string  `json:"cutoff_date,omitempty"`
}

// Resolve applies defaults for every absent field. The primary
// threshold is filled in after threshold selection.
func (p Parameters) Resolve() ResolvedParameters {
	r := ResolvedParameters{
		SecondaryThresholdDB: DefaultSecondaryThresholdDB,
		DiffCeilingDB:        DefaultDiffCeilingDB,
		SlopeCeilingDeg:      DefaultSlopeCeilingDeg,
		MinFeaturePixels:     mask.DefaultMinFeaturePixels,
		SmoothingWindowPx:    DefaultSmoothingWindowPx,
	}
	if p.SecondaryThresholdDB != nil {
		r.SecondaryThresholdDB = *p.SecondaryThresholdDB
	}
	if p.DiffCeilingDB != nil {
		r.DiffCeilingDB = *p.DiffCeilingDB
	}
	if p.SlopeCeilingDeg != nil {
		r.SlopeCeilingDeg = *p.SlopeCeilingDeg
	}
	if p.MinFeaturePixels != nil {
		r.MinFeaturePixels = *p.MinFeaturePixels
	}
	if p.SmoothingWindowPx != nil {
		r.SmoothingWindowPx = *p.SmoothingWindowPx
	}
	if p.CutoffDate != nil {
		r.CutoffDate = p.CutoffDate.Format("2006-01-02")
	}
	return r
}
