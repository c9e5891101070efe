package aoi

import (
	"errors"
	"math"
	"testing"

	"sar-watermap/pkg/geometry"
)

// square returns an unclosed lon/lat square ring of the given side
// length in degrees, centered on the equator.
func square(lon0, lat0, side float64) []geometry.Point2D {
	return []geometry.Point2D{
		{X: lon0, Y: lat0},
		{X: lon0 + side, Y: lat0},
		{X: lon0 + side, Y: lat0 + side},
		{X: lon0, Y: lat0 + side},
	}
}

func TestAreaKM2_EquatorialSquare(t *testing.T) {
	// 0.1 deg of a great circle is about 11.12 km, so this square is
	// about 123.6 km2.
	a, err := New(square(0, -0.05, 0.1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := a.AreaKM2()
	want := 123.6
	if math.Abs(got-want)/want > 0.01 {
		t.Errorf("area: got %.2f km2, want about %.1f km2", got, want)
	}
}

func TestAreaKM2_WindingInsensitive(t *testing.T) {
	ring := square(5, 5, 0.05)
	rev := make([]geometry.Point2D, len(ring))
	for i, p := range ring {
		rev[len(ring)-1-i] = p
	}

	fwd, _ := New(ring)
	bwd, _ := New(rev)
	if math.Abs(fwd.AreaKM2()-bwd.AreaKM2()) > 1e-9 {
		t.Errorf("winding changed area: %g vs %g", fwd.AreaKM2(), bwd.AreaKM2())
	}
}

func TestAreaKM2_HoleSubtracted(t *testing.T) {
	outer := square(0, 0, 0.1)
	hole := square(0.04, 0.04, 0.02)

	solid, _ := New(outer)
	pierced, _ := New(outer, hole)

	if pierced.AreaKM2() >= solid.AreaKM2() {
		t.Errorf("hole did not reduce area: %g >= %g", pierced.AreaKM2(), solid.AreaKM2())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		side    float64
		wantErr error
	}{
		{"typical reservoir", 0.05, nil},
		{"below minimum area", 0.0005, ErrTooSmall},
		{"above maximum area", 1.0, ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(square(10, 10, tt.side))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			err = a.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate: got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_RejectsDegenerateRings(t *testing.T) {
	if _, err := New(square(0, 0, 0.1)[:2]); !errors.Is(err, ErrDegenerate) {
		t.Errorf("two-vertex shell: got %v, want %v", err, ErrDegenerate)
	}
	if _, err := New(square(0, 0, 0.1), square(0.01, 0.01, 0.01)[:1]); !errors.Is(err, ErrDegenerate) {
		t.Errorf("one-vertex hole: got %v, want %v", err, ErrDegenerate)
	}
}

func TestContains_RespectsHoles(t *testing.T) {
	a, err := New(square(0, 0, 1), square(0.4, 0.4, 0.2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !a.Contains(geometry.Point2D{X: 0.1, Y: 0.1}) {
		t.Error("point inside shell reported outside")
	}
	if a.Contains(geometry.Point2D{X: 0.5, Y: 0.5}) {
		t.Error("point inside hole reported inside AOI")
	}
	if a.Contains(geometry.Point2D{X: 2, Y: 2}) {
		t.Error("point outside shell reported inside")
	}
}
