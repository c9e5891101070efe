// Package server exposes the detection pipeline over HTTP: a JSON
// detection endpoint, a websocket variant that streams stage progress,
// and a health probe.
package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"sar-watermap/internal/config"
	"sar-watermap/internal/scene"
)

// Server ties the scene store and pipeline to the HTTP surface.
type Server struct {
	cfg   *config.Config
	store *scene.Store
}

// New builds a server over the given configuration.
func New(cfg *config.Config) *Server {
	return &Server{
		cfg:   cfg,
		store: scene.NewStore(cfg.SceneDir),
	}
}

// Routes returns the fully-wired request multiplexer.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/detect-water", s.handleDetect)
	mux.HandleFunc("/detect-water/ws", s.handleDetectWS)
	return s.withRequestContext(mux)
}

// withRequestContext tags every request with an ID, applies the CORS
// policy and logs the call.
func (s *Server) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.AllowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		log.Printf("[%s] %s %s", id, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// maxBodyBytes caps request bodies; AOI polygons are small documents.
const maxBodyBytes = 1 << 20

func jsonDecode(r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
