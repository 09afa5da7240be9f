package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/output"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// CompleteUpdate is the final event of a streamed render
type CompleteUpdate struct {
	ImageData string `json:"imageData"` // Base64 encoded PNG
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Stats     Stats  `json:"stats"`
	ElapsedMs int64  `json:"elapsedMs"`
}

type renderOutcome struct {
	fb    *renderer.Framebuffer
	stats renderer.RenderStats
	err   error
}

// handleRender renders the requested scene and responds with the encoded image
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	req, err := s.parseRenderRequest(r)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	raytracer, err := s.newRaytracer(req, nil)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}
	if req.isSlow() {
		log.Printf("Render warning: %dpx wide with %d samples may render slowly", req.Width, req.SamplesPerPixel)
	}

	// Use request context to stop rendering when the client disconnects
	ctx := r.Context()
	fb, stats, err := raytracer.Render(ctx)
	if err != nil {
		if ctx.Err() != nil {
			log.Printf("Render of %q cancelled: %v", req.Scene, err)
			return
		}
		http.Error(w, fmt.Sprintf("Render error: %v", err), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := output.Write(&buf, fb, req.Format); err != nil {
		http.Error(w, fmt.Sprintf("Encoding error: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("Rendered %q %dx%d in %v", req.Scene, fb.Width, fb.Height, stats.Duration.Round(time.Millisecond))

	w.Header().Set("Content-Type", req.Format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Render-Time-Ms", strconv.FormatInt(stats.Duration.Milliseconds(), 10))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("Error writing render response: %v", err)
	}
}

// handleRenderStream renders the requested scene, streaming progress messages
// as Server-Sent Events and finishing with the PNG image
func (s *Server) handleRenderStream(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)
	ctx := r.Context()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.sendSSEError(w, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	consoleChan, webLogger := s.setupConsoleLogging()
	raytracer, err := s.newRaytracer(req, webLogger)
	if err != nil {
		s.sendSSEError(w, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	if req.isSlow() {
		webLogger.Warnf("Large image with %d samples per pixel may render slowly\n", req.SamplesPerPixel)
	}

	startTime := time.Now()
	done := make(chan renderOutcome, 1)
	go func() {
		fb, stats, err := raytracer.Render(ctx)
		done <- renderOutcome{fb: fb, stats: stats, err: err}
	}()

	// All SSE writes happen on this goroutine
	for {
		select {
		case msg := <-consoleChan:
			s.sendConsoleMessage(w, msg)

		case outcome := <-done:
			if outcome.err != nil && ctx.Err() != nil {
				log.Printf("[%s] Streamed render of %q cancelled: %v", webLogger.RenderID(), req.Scene, outcome.err)
				return
			}
			if outcome.err != nil {
				webLogger.Errorf("Render failed: %v\n", outcome.err)
			}
			s.drainConsoleMessages(w, consoleChan)
			if dropped := webLogger.Dropped(); dropped > 0 {
				s.sendConsoleMessage(w, ConsoleMessage{
					RenderID:  webLogger.RenderID(),
					Message:   fmt.Sprintf("%d progress messages were dropped\n", dropped),
					Timestamp: time.Now(),
					Level:     LevelWarning,
				})
			}

			if outcome.err != nil {
				s.sendSSEError(w, fmt.Sprintf("Render error: %v", outcome.err))
				return
			}

			imageData, err := s.imageToBase64PNG(outcome.fb.ToRGBA())
			if err != nil {
				s.sendSSEError(w, fmt.Sprintf("Failed to encode image: %v", err))
				return
			}

			data, err := json.Marshal(CompleteUpdate{
				ImageData: imageData,
				Width:     outcome.fb.Width,
				Height:    outcome.fb.Height,
				Stats:     newStats(outcome.stats),
				ElapsedMs: time.Since(startTime).Milliseconds(),
			})
			if err != nil {
				s.sendSSEError(w, fmt.Sprintf("Failed to encode result: %v", err))
				return
			}
			s.sendSSEEvent(w, "complete", string(data))
			return
		}
	}
}

// newRaytracer builds the scene and raytracer for a parsed request
func (s *Server) newRaytracer(req *RenderRequest, logger core.Logger) (*renderer.Raytracer, error) {
	sceneObj, err := s.createScene(req)
	if err != nil {
		return nil, err
	}
	config := sceneObj.RenderConfig(s.numWorkers, req.Seed)
	return renderer.NewRaytracer(sceneObj.World, sceneObj.NewCamera(), config, logger), nil
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, *WebLogger) {
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(renderID, consoleChan)
	return consoleChan, webLogger
}

// sendConsoleMessage forwards a console message as an SSE event
func (s *Server) sendConsoleMessage(w http.ResponseWriter, msg ConsoleMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling console message: %v", err)
		return
	}
	s.sendSSEEvent(w, "console", string(data))
}

// drainConsoleMessages forwards any console messages still buffered
func (s *Server) drainConsoleMessages(w http.ResponseWriter, consoleChan chan ConsoleMessage) {
	for {
		select {
		case msg := <-consoleChan:
			s.sendConsoleMessage(w, msg)
		default:
			return
		}
	}
}

// imageToBase64PNG converts an image to base64-encoded PNG
func (s *Server) imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// sendSSEError sends an error via SSE
func (s *Server) sendSSEError(w http.ResponseWriter, message string) error {
	return s.sendSSEEvent(w, "error", message)
}

// sendSSEEvent sends a generic SSE event
func (s *Server) sendSSEEvent(w http.ResponseWriter, event, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
		return nil
	}
	return fmt.Errorf("streaming not supported")
}
