package server

import (
	"encoding/base64"
	"errors"
	"log"
	"net/http"

	"sar-watermap/internal/aoi"
	"sar-watermap/internal/geojson"
	"sar-watermap/internal/pipeline"
	"sar-watermap/internal/render"
	"sar-watermap/internal/scene"
)

const noSceneWarning = "no eligible acquisition covers the area of interest"

// detectRequest is the body of a detection call: the area of interest
// as a GeoJSON polygon plus optional parameter overrides.
type detectRequest struct {
	Geometry   *geojson.Geometry   `json:"geometry"`
	Parameters pipeline.Parameters `json:"parameters"`
}

// detectResponse mirrors the request with the detected surface water,
// run metadata and an optional rendered preview.
type detectResponse struct {
	WaterPolygons *geojson.FeatureCollection `json:"water_polygons"`
	Metadata      *pipeline.DetectionResult  `json:"metadata"`
	PreviewPNG    string                     `json:"preview_png_base64,omitempty"`
}

// httpError pairs a status code with a client-facing message.
type httpError struct {
	status int
	msg    string
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req detectRequest
	if err := jsonDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, herr := s.runDetection(&req, nil)
	if herr != nil {
		writeError(w, herr.status, herr.msg)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// runDetection executes one detection request end to end. A progress
// callback may be supplied for streaming transports.
func (s *Server) runDetection(req *detectRequest, progress pipeline.ProgressFunc) (*detectResponse, *httpError) {
	if req.Geometry == nil {
		return nil, &httpError{http.StatusBadRequest, "geometry is required"}
	}

	rings, err := geojson.DecodePolygon(req.Geometry)
	if err != nil {
		return nil, &httpError{http.StatusBadRequest, err.Error()}
	}
	area, err := aoi.New(rings[0], rings[1:]...)
	if err != nil {
		return nil, &httpError{http.StatusBadRequest, err.Error()}
	}
	if err := area.Validate(); err != nil {
		return nil, &httpError{http.StatusUnprocessableEntity, err.Error()}
	}

	meta, err := s.store.MostRecent(area.Bounds(), req.Parameters.CutoffDate)
	if errors.Is(err, scene.ErrNoScene) {
		return &detectResponse{
			WaterPolygons: geojson.NewFeatureCollection(),
			Metadata: &pipeline.DetectionResult{
				ParametersUsed: req.Parameters.Resolve(),
				Warning:        noSceneWarning,
			},
		}, nil
	}
	if err != nil {
		return nil, &httpError{http.StatusInternalServerError, "scene lookup failed"}
	}

	set, err := s.store.Load(meta.ID)
	if err != nil {
		log.Printf("load scene %s: %v", meta.ID, err)
		return nil, &httpError{http.StatusInternalServerError, "scene load failed"}
	}

	result, err := pipeline.Run(set, area, req.Parameters, progress)
	if err != nil {
		log.Printf("detection on scene %s: %v", meta.ID, err)
		return nil, &httpError{http.StatusInternalServerError, "detection failed"}
	}

	fc, err := result.FeatureCollection()
	if err != nil {
		log.Printf("encode polygons: %v", err)
		return nil, &httpError{http.StatusInternalServerError, "result encoding failed"}
	}

	resp := &detectResponse{
		WaterPolygons: fc,
		Metadata:      result,
	}
	if png, err := render.PNG(set.Primary, result.Mask, s.cfg.PreviewMaxDim); err == nil {
		resp.PreviewPNG = base64.StdEncoding.EncodeToString(png)
	} else {
		// Preview is best effort; the detection itself already
		// succeeded.
		log.Printf("render preview: %v", err)
	}
	return resp, nil
}
