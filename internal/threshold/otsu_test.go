package threshold

import (
	"math"
	"testing"

	"sar-watermap/internal/raster"
)

// fillGrid builds a grid where the left half holds lowVal and the
// right half holds highVal, a crisply bimodal distribution.
func fillGrid(w, h int, lowVal, highVal float64) *raster.Grid {
	g := raster.NewGrid(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				g.Set(x, y, lowVal)
			} else {
				g.Set(x, y, highVal)
			}
		}
	}
	return g
}

func allValid(w, h int) *raster.Bitmask {
	m := raster.NewBitmask(w, h)
	for i := range m.Bits {
		m.Bits[i] = true
	}
	return m
}

func TestSelect_BimodalSplitsBetweenModes(t *testing.T) {
	g := fillGrid(40, 40, -22, -6)
	thr := Select(g, allValid(40, 40), nil)

	if thr.Provenance != Automatic {
		t.Errorf("provenance: got %s, want %s", thr.Provenance, Automatic)
	}
	if thr.Value <= -22 || thr.Value >= -6 {
		t.Errorf("threshold %.3f not between modes (-22, -6)", thr.Value)
	}
	if thr.Degenerate {
		t.Errorf("clean bimodal histogram flagged degenerate (separability %.3f)", thr.Separability)
	}
	// All low-mode pixels must classify as water under the result.
	if -22 > thr.Value {
		t.Errorf("low mode -22 exceeds threshold %.3f", thr.Value)
	}
}

func TestSelect_Deterministic(t *testing.T) {
	g := fillGrid(64, 64, -19.5, -7.25)
	valid := allValid(64, 64)

	first := Select(g, valid, nil)
	for i := 0; i < 5; i++ {
		again := Select(g, valid, nil)
		if again != first {
			t.Fatalf("run %d: got %+v, want %+v", i, again, first)
		}
	}
}

func TestSelect_ManualOverride(t *testing.T) {
	g := fillGrid(40, 40, -22, -6)
	override := -13.5
	thr := Select(g, allValid(40, 40), &override)

	if thr.Provenance != Manual {
		t.Errorf("provenance: got %s, want %s", thr.Provenance, Manual)
	}
	if thr.Value != -13.5 {
		t.Errorf("value: got %.3f, want -13.5 verbatim", thr.Value)
	}
	if thr.Degenerate {
		t.Error("manual threshold must never be flagged degenerate")
	}
	if thr.Separability != 0 {
		t.Errorf("manual threshold separability: got %.3f, want 0", thr.Separability)
	}
}

func TestSelect_UniformSceneDegenerate(t *testing.T) {
	g := fillGrid(20, 20, -10, -10)
	thr := Select(g, allValid(20, 20), nil)

	if !thr.Degenerate {
		t.Error("uniform scene not flagged degenerate")
	}
	if thr.Value != -10 {
		t.Errorf("value: got %.3f, want the single observed value -10", thr.Value)
	}
}

func TestSelect_NoValidPixels(t *testing.T) {
	g := fillGrid(20, 20, -22, -6)
	empty := raster.NewBitmask(20, 20)

	thr := Select(g, empty, nil)
	if !thr.Degenerate {
		t.Error("empty footprint not flagged degenerate")
	}
	if thr.Value != DefaultPrimaryDB {
		t.Errorf("value: got %.3f, want fallback %.3f", thr.Value, DefaultPrimaryDB)
	}
}

func TestSelect_IgnoresNoData(t *testing.T) {
	g := fillGrid(40, 40, -22, -6)
	// Poison a band of pixels; they must not influence the histogram.
	for x := 0; x < 40; x++ {
		g.Set(x, 0, math.NaN())
	}

	thr := Select(g, allValid(40, 40), nil)
	if thr.Value <= -22 || thr.Value >= -6 {
		t.Errorf("threshold %.3f not between modes after no-data injection", thr.Value)
	}
}
