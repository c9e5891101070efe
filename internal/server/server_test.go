package server

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sar-watermap/internal/config"
	"sar-watermap/internal/geojson"
	"sar-watermap/internal/raster"
	"sar-watermap/internal/scene"
)

// newTestServer returns a server over an isolated scene store.
func newTestServer(t *testing.T) (*Server, *scene.Store) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Port:          8000,
		SceneDir:      dir,
		PreviewMaxDim: 128,
		AllowedOrigin: "*",
	}
	return New(cfg), scene.NewStore(dir)
}

// storeTestScene saves a 20x20 ascending scene near (30E, 10N) with a
// 12x12 water body.
func storeTestScene(t *testing.T, store *scene.Store) {
	t.Helper()
	w, h := 20, 20
	set := &raster.LayerSet{
		Primary:   raster.NewGrid(w, h),
		Secondary: raster.NewGrid(w, h),
		Slope:     raster.NewGrid(w, h),
		Transform: raster.Geotransform{
			OriginX: 30, OriginY: 10.002,
			PixelWidth: 0.0001, PixelHeight: -0.0001,
			GroundResolution: 10,
			CRS:              "EPSG:4326",
		},
	}
	for i := range set.Primary.Data {
		set.Primary.Data[i] = -6
		set.Secondary.Data[i] = -12
		set.Slope.Data[i] = 1
	}
	for y := 4; y < 16; y++ {
		for x := 4; x < 16; x++ {
			set.Primary.Set(x, y, -22)
			set.Secondary.Set(x, y, -23)
		}
	}

	err := store.Save(scene.Metadata{
		ID:         "s1a-20240601",
		AcquiredAt: time.Date(2024, 6, 1, 5, 30, 0, 0, time.UTC),
		Pass:       scene.PassAscending,
		Platform:   "SENTINEL-1",
	}, set)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
}

const coveringAOI = `{"type":"Polygon","coordinates":[[[30,10],[30.002,10],[30.002,10.002],[30,10.002],[30,10]]]}`

type detectResponseDoc struct {
	WaterPolygons geojson.FeatureCollection `json:"water_polygons"`
	Metadata      struct {
		WaterAreaKM2    float64 `json:"water_area_km2"`
		WaterPercentage float64 `json:"water_percentage"`
		Warning         string  `json:"warning"`
	} `json:"metadata"`
	PreviewPNG string `json:"preview_png_base64"`
}

func postDetect(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/detect-water", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestDetect_HappyPath(t *testing.T) {
	srv, store := newTestServer(t)
	storeTestScene(t, store)

	rec := postDetect(t, srv.Routes(), `{"geometry":`+coveringAOI+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp detectResponseDoc
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(resp.WaterPolygons.Features) != 1 {
		t.Fatalf("features: got %d, want 1", len(resp.WaterPolygons.Features))
	}
	wantKM2 := 144 * 100.0 / 1e6
	if math.Abs(resp.Metadata.WaterAreaKM2-wantKM2) > 1e-9 {
		t.Errorf("water_area_km2: got %g, want %g", resp.Metadata.WaterAreaKM2, wantKM2)
	}
	if resp.Metadata.Warning != "" {
		t.Errorf("unexpected warning: %q", resp.Metadata.Warning)
	}
	if resp.PreviewPNG == "" {
		t.Error("missing preview image")
	}
}

func TestDetect_NoEligibleScene(t *testing.T) {
	srv, _ := newTestServer(t) // empty store

	rec := postDetect(t, srv.Routes(), `{"geometry":`+coveringAOI+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	var resp detectResponseDoc
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.WaterPolygons.Features) != 0 {
		t.Errorf("features: got %d, want 0", len(resp.WaterPolygons.Features))
	}
	if resp.Metadata.Warning != noSceneWarning {
		t.Errorf("warning: got %q, want %q", resp.Metadata.Warning, noSceneWarning)
	}
}

func TestDetect_RequestValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Routes()

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"malformed json", `{"geometry":`, http.StatusBadRequest},
		{"missing geometry", `{}`, http.StatusBadRequest},
		{"unsupported geometry type", `{"geometry":{"type":"Point","coordinates":[30,10]}}`, http.StatusBadRequest},
		{"aoi too large", `{"geometry":{"type":"Polygon","coordinates":[[[30,10],[31,10],[31,11],[30,11],[30,10]]]}}`, http.StatusUnprocessableEntity},
		{"aoi too small", `{"geometry":{"type":"Polygon","coordinates":[[[30,10],[30.00001,10],[30.00001,10.00001],[30,10.00001],[30,10]]]}}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postDetect(t, handler, tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestDetect_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/detect-water", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/detect-water", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("CORS origin header: got %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestDetect_ManualThreshold(t *testing.T) {
	srv, store := newTestServer(t)
	storeTestScene(t, store)

	body := `{"geometry":` + coveringAOI + `,"parameters":{"vv_threshold":-30}}`
	rec := postDetect(t, srv.Routes(), body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp detectResponseDoc
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// Nothing in the scene is darker than -30 dB.
	if len(resp.WaterPolygons.Features) != 0 {
		t.Errorf("features: got %d, want 0", len(resp.WaterPolygons.Features))
	}
}
