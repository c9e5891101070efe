package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"sar-watermap/internal/pipeline"
)

const (
	wsReadLimit    = maxBodyBytes
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// progressFrame is one streamed message: either a completed stage, the
// final result, or an error that ended the run.
type progressFrame struct {
	Type   string          `json:"type"` // "progress", "result" or "error"
	Stage  string          `json:"stage,omitempty"`
	Result *detectResponse `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// handleDetectWS runs one detection over a websocket, emitting a frame
// as each pipeline stage completes. The client sends a single request
// document and the connection closes after the result frame.
func (s *Server) handleDetectWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if s.cfg.AllowedOrigin == "*" {
				return true
			}
			return r.Header.Get("Origin") == s.cfg.AllowedOrigin
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

	var req detectRequest
	if err := conn.ReadJSON(&req); err != nil {
		writeFrame(conn, progressFrame{Type: "error", Error: "invalid request document"})
		return
	}

	progress := func(stage pipeline.Stage) {
		writeFrame(conn, progressFrame{Type: "progress", Stage: stage.String()})
	}

	resp, herr := s.runDetection(&req, progress)
	if herr != nil {
		writeFrame(conn, progressFrame{Type: "error", Error: herr.msg})
		return
	}
	writeFrame(conn, progressFrame{Type: "result", Result: resp})
}

func writeFrame(conn *websocket.Conn, f progressFrame) {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(f); err != nil {
		log.Printf("websocket write: %v", err)
	}
}
