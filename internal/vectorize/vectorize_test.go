package vectorize

import (
	"math"
	"testing"

	"sar-watermap/internal/raster"
	"sar-watermap/pkg/geometry"
)

// pixelTransform maps pixel coordinates straight to output coordinates
// with a 10 m ground resolution, so geometry assertions stay readable.
func pixelTransform() raster.Geotransform {
	return raster.Geotransform{PixelWidth: 1, PixelHeight: 1, GroundResolution: 10}
}

func maskWithRect(w, h, x0, y0, rw, rh int) *raster.Bitmask {
	m := raster.NewBitmask(w, h)
	for y := y0; y < y0+rh; y++ {
		for x := x0; x < x0+rw; x++ {
			m.Set(x, y, true)
		}
	}
	return m
}

func TestTrace_SingleRectangle(t *testing.T) {
	m := maskWithRect(10, 10, 2, 2, 4, 3)
	res := Trace(m, pixelTransform(), DefaultOptions())

	if res.PixelCount != 12 {
		t.Errorf("PixelCount: got %d, want 12", res.PixelCount)
	}
	wantKM2 := 12 * 100.0 / 1e6
	if math.Abs(res.WaterAreaKM2-wantKM2) > 1e-12 {
		t.Errorf("WaterAreaKM2: got %g, want %g", res.WaterAreaKM2, wantKM2)
	}
	if len(res.Polygons) != 1 {
		t.Fatalf("polygons: got %d, want 1", len(res.Polygons))
	}

	p := res.Polygons[0]
	if math.Abs(p.AreaKM2-wantKM2) > 1e-12 {
		t.Errorf("polygon AreaKM2: got %g, want %g", p.AreaKM2, wantKM2)
	}
	if len(p.Holes) != 0 {
		t.Errorf("holes: got %d, want 0", len(p.Holes))
	}

	bbox := geometry.BoundingBox(p.Shell)
	want := geometry.Rect{X: 2, Y: 2, Width: 4, Height: 3}
	if bbox != want {
		t.Errorf("shell bounding box: got %+v, want %+v", bbox, want)
	}
	if len(p.Shell) != 4 {
		t.Errorf("simplified rectangle shell vertices: got %d, want 4", len(p.Shell))
	}
}

func TestTrace_DonutHasHole(t *testing.T) {
	m := maskWithRect(10, 10, 1, 1, 6, 6)
	for y := 3; y < 5; y++ {
		for x := 3; x < 5; x++ {
			m.Set(x, y, false)
		}
	}

	res := Trace(m, pixelTransform(), DefaultOptions())
	if len(res.Polygons) != 1 {
		t.Fatalf("polygons: got %d, want 1", len(res.Polygons))
	}

	p := res.Polygons[0]
	if len(p.Holes) != 1 {
		t.Fatalf("holes: got %d, want 1", len(p.Holes))
	}

	holeBox := geometry.BoundingBox(p.Holes[0])
	want := geometry.Rect{X: 3, Y: 3, Width: 2, Height: 2}
	if holeBox != want {
		t.Errorf("hole bounding box: got %+v, want %+v", holeBox, want)
	}

	// 36 outer pixels minus the 4 removed.
	wantKM2 := 32 * 100.0 / 1e6
	if math.Abs(p.AreaKM2-wantKM2) > 1e-12 {
		t.Errorf("polygon AreaKM2: got %g, want %g", p.AreaKM2, wantKM2)
	}
	if math.Abs(res.WaterAreaKM2-wantKM2) > 1e-12 {
		t.Errorf("WaterAreaKM2: got %g, want %g", res.WaterAreaKM2, wantKM2)
	}
}

func TestTrace_SeparateBodies(t *testing.T) {
	m := maskWithRect(20, 20, 1, 1, 4, 4)
	for y := 10; y < 14; y++ {
		for x := 10; x < 15; x++ {
			m.Set(x, y, true)
		}
	}

	res := Trace(m, pixelTransform(), DefaultOptions())
	if len(res.Polygons) != 2 {
		t.Fatalf("polygons: got %d, want 2", len(res.Polygons))
	}
	if res.Polygons[0].Component == res.Polygons[1].Component {
		t.Error("separate bodies share a component label")
	}

	var sum float64
	for _, p := range res.Polygons {
		sum += p.AreaKM2
	}
	if math.Abs(sum-res.WaterAreaKM2) > 1e-12 {
		t.Errorf("polygon area sum %g != total water area %g", sum, res.WaterAreaKM2)
	}
}

func TestTrace_Deterministic(t *testing.T) {
	m := maskWithRect(30, 30, 2, 2, 8, 5)
	for y := 12; y < 20; y++ {
		for x := 12; x < 22; x++ {
			m.Set(x, y, true)
		}
	}
	m.Set(25, 25, true)

	first := Trace(m, pixelTransform(), DefaultOptions())
	second := Trace(m, pixelTransform(), DefaultOptions())

	if len(first.Polygons) != len(second.Polygons) {
		t.Fatalf("polygon counts differ: %d vs %d", len(first.Polygons), len(second.Polygons))
	}
	for i := range first.Polygons {
		a, b := first.Polygons[i], second.Polygons[i]
		if a.Component != b.Component || a.AreaKM2 != b.AreaKM2 {
			t.Fatalf("polygon %d metadata differs between runs", i)
		}
		if len(a.Shell) != len(b.Shell) {
			t.Fatalf("polygon %d shell lengths differ: %d vs %d", i, len(a.Shell), len(b.Shell))
		}
		for j := range a.Shell {
			if a.Shell[j] != b.Shell[j] {
				t.Fatalf("polygon %d vertex %d differs between runs", i, j)
			}
		}
	}
}

func TestTrace_EmptyMask(t *testing.T) {
	m := raster.NewBitmask(10, 10)
	res := Trace(m, pixelTransform(), DefaultOptions())

	if len(res.Polygons) != 0 {
		t.Errorf("polygons: got %d, want 0", len(res.Polygons))
	}
	if res.WaterAreaKM2 != 0 || res.PixelCount != 0 {
		t.Errorf("empty mask produced area %g over %d pixels", res.WaterAreaKM2, res.PixelCount)
	}
}

func TestTrace_ClipToBounds(t *testing.T) {
	m := maskWithRect(10, 10, 1, 1, 6, 6)

	opts := DefaultOptions()
	opts.ClipBounds = geometry.Rect{X: 0, Y: 0, Width: 4, Height: 4}
	res := Trace(m, pixelTransform(), opts)

	if len(res.Polygons) != 1 {
		t.Fatalf("polygons: got %d, want 1", len(res.Polygons))
	}
	for _, v := range res.Polygons[0].Shell {
		if !opts.ClipBounds.Contains(v) {
			t.Errorf("shell vertex %+v outside clip bounds", v)
		}
	}
}

func TestTrace_ThinStripSurvivesSimplification(t *testing.T) {
	// A 1-pixel-tall strip sits entirely within the default tolerance
	// of its own diagonal; simplification must not collapse it.
	m := maskWithRect(10, 10, 2, 2, 3, 1)
	res := Trace(m, pixelTransform(), DefaultOptions())

	if len(res.Polygons) != 1 {
		t.Fatalf("polygons: got %d, want 1", len(res.Polygons))
	}

	p := res.Polygons[0]
	bbox := geometry.BoundingBox(p.Shell)
	want := geometry.Rect{X: 2, Y: 2, Width: 3, Height: 1}
	if bbox != want {
		t.Errorf("strip bounding box: got %+v, want %+v", bbox, want)
	}
	wantKM2 := 3 * 100.0 / 1e6
	if math.Abs(p.AreaKM2-wantKM2) > 1e-12 {
		t.Errorf("strip AreaKM2: got %g, want %g", p.AreaKM2, wantKM2)
	}
}
