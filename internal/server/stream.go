package server

import (
	"fmt"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/overlay"
)

// StreamHandler serves MJPEG frames from the camera with the current label
// drawn on top.
type StreamHandler struct {
	camera capture.Camera
	latest LatestDecision
	style  overlay.Style
}

// NewStreamHandler creates a new StreamHandler. latest may be nil.
func NewStreamHandler(camera capture.Camera, latest LatestDecision) *StreamHandler {
	return &StreamHandler{camera: camera, latest: latest, style: overlay.DefaultStyle()}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	interval := time.Second / time.Duration(max(h.camera.FPS(), 1))

	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		frame, err := h.camera.ReadFrame()
		if err != nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		h.annotate(frame)

		buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
		frame.Close()
		if err != nil {
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", buf.Len())
		w.Write(buf.GetBytes())
		fmt.Fprintf(w, "\r\n")
		buf.Close()

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		time.Sleep(interval)
	}
}

// LatestHand is optionally implemented by a LatestDecision to have the
// detected skeleton drawn as well.
type LatestHand interface {
	LastHand() (detector.Hand, bool)
}

func (h *StreamHandler) annotate(frame *gocv.Mat) {
	if h.latest == nil {
		return
	}
	if lh, ok := h.latest.(LatestHand); ok {
		if hand, ok := lh.LastHand(); ok {
			overlay.DrawHand(frame, hand)
		}
	}
	d, ok := h.latest.LastDecision()
	if !ok {
		return
	}
	overlay.DrawLabel(frame, string(d.Label), h.style)
}
