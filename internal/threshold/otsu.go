// Package threshold selects the primary-polarization water threshold,
// either automatically from the backscatter histogram or from an
// operator override.
package threshold

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"sar-watermap/internal/raster"
)

// NumBins is the histogram resolution for automatic thresholding. The
// bins span the observed value range of the valid pixels.
const NumBins = 256

// separabilityFloor is the minimum Otsu class-separability measure
// (between-class variance over total variance) below which the
// histogram is treated as near-unimodal and the automatic threshold is
// flagged unreliable.
const separabilityFloor = 0.5

// DefaultPrimaryDB is the conservative fallback threshold when the
// histogram carries no usable signal at all.
const DefaultPrimaryDB = -15.0

// Provenance records which branch produced a threshold.
type Provenance string

const (
	// Automatic means the threshold came from histogram analysis.
	Automatic Provenance = "automatic"
	// Manual means an operator override was used verbatim.
	Manual Provenance = "manual"
)

// Threshold is a selected separating value in dB.
type Threshold struct {
	Value      float64    `json:"value_db"`
	Provenance Provenance `json:"provenance"`

	// Separability is Otsu's class-separability measure in [0, 1].
	// Zero for manual thresholds.
	Separability float64 `json:"separability,omitempty"`

	// Degenerate is set when the histogram was unimodal or too sparse
	// for reliable automatic thresholding. The caller should surface a
	// warning but still use the value.
	Degenerate bool `json:"degenerate,omitempty"`
}

// Select returns the primary threshold for the given raster. Only
// pixels where valid is set participate in the histogram. A non-nil
// override skips histogram computation entirely and is returned
// verbatim with manual provenance.
func Select(primary *raster.Grid, valid *raster.Bitmask, override *float64) Threshold {
	if override != nil {
		return Threshold{Value: *override, Provenance: Manual}
	}

	lo, hi, n := valueRange(primary, valid)
	if n == 0 {
		return Threshold{Value: DefaultPrimaryDB, Provenance: Automatic, Degenerate: true}
	}
	if hi == lo {
		// Perfectly homogeneous scene: a single populated bin.
		return Threshold{Value: lo, Provenance: Automatic, Degenerate: true}
	}

	hist := buildHistogram(primary, valid, lo, hi)

	populated := 0
	for _, c := range hist {
		if c > 0 {
			populated++
		}
	}
	if populated < 2 {
		return Threshold{Value: (lo + hi) / 2, Provenance: Automatic, Degenerate: true}
	}

	binWidth := (hi - lo) / NumBins
	bestBin, bestVariance := otsuSplit(hist)

	// Threshold at the upper edge of the best split bin, so pixels in
	// that bin satisfy value <= threshold.
	value := lo + float64(bestBin+1)*binWidth

	eta := separability(hist, lo, binWidth, bestVariance)

	return Threshold{
		Value:        value,
		Provenance:   Automatic,
		Separability: eta,
		Degenerate:   eta < separabilityFloor,
	}
}

// valueRange finds the min, max and count of valid samples.
func valueRange(g *raster.Grid, valid *raster.Bitmask) (lo, hi float64, n int) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if !valid.At(x, y) || !g.IsValid(x, y) {
				continue
			}
			v := g.At(x, y)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
			n++
		}
	}
	return lo, hi, n
}

// buildHistogram bins valid samples into NumBins integer counts.
// Integer counts keep the threshold decision independent of
// accumulation order.
func buildHistogram(g *raster.Grid, valid *raster.Bitmask, lo, hi float64) [NumBins]int {
	var hist [NumBins]int
	scale := NumBins / (hi - lo)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if !valid.At(x, y) || !g.IsValid(x, y) {
				continue
			}
			bin := int((g.At(x, y) - lo) * scale)
			if bin < 0 {
				bin = 0
			}
			if bin >= NumBins {
				bin = NumBins - 1
			}
			hist[bin]++
		}
	}
	return hist
}

// otsuSplit finds the split bin maximizing between-class variance.
// Classes are bins [0..k] and [k+1..NumBins-1]. Ties resolve to the
// lowest bin for determinism.
func otsuSplit(hist [NumBins]int) (bestBin int, bestVariance float64) {
	var total int
	var totalSum float64
	for i, c := range hist {
		total += c
		totalSum += float64(i) * float64(c)
	}

	var backCount int
	var backSum float64
	bestBin = -1

	for k := 0; k < NumBins-1; k++ {
		backCount += hist[k]
		backSum += float64(k) * float64(hist[k])

		foreCount := total - backCount
		if backCount == 0 || foreCount == 0 {
			continue
		}

		wB := float64(backCount) / float64(total)
		wF := float64(foreCount) / float64(total)
		muB := backSum / float64(backCount)
		muF := (totalSum - backSum) / float64(foreCount)

		variance := wB * wF * (muB - muF) * (muB - muF)
		if variance > bestVariance {
			bestVariance = variance
			bestBin = k
		}
	}

	if bestBin < 0 {
		bestBin = NumBins / 2
	}
	return bestBin, bestVariance
}

// separability computes Otsu's eta: between-class variance at the best
// split divided by the total variance of the binned distribution.
func separability(hist [NumBins]int, lo, binWidth, betweenVariance float64) float64 {
	centers := make([]float64, NumBins)
	weights := make([]float64, NumBins)
	for i := range hist {
		centers[i] = lo + (float64(i)+0.5)*binWidth
		weights[i] = float64(hist[i])
	}
	_, totalVariance := stat.MeanVariance(centers, weights)
	if totalVariance <= 0 {
		return 0
	}
	// betweenVariance is in bin units; convert to value units.
	between := betweenVariance * binWidth * binWidth
	eta := between / totalVariance
	if eta > 1 {
		eta = 1
	}
	return eta
}
