package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/df07/go-pathtracer/pkg/output"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// Request limits shared by parsing and /api/scene-config
const (
	minWidth, maxWidth     = 1, 2000
	minAspect, maxAspect   = 0.1, 10.0
	minSamples, maxSamples = 1, 10000
	minDepth, maxDepth     = 0, 1000
	maxSeed                = 1<<31 - 1
	defaultWidth           = 400
)

// Server handles web requests for the path tracer
type Server struct {
	port       int
	numWorkers int // Workers per render (0 = CPU count)
	mux        *http.ServeMux
}

// NewServer creates a new web server
func NewServer(port, numWorkers int) *Server {
	s := &Server{port: port, numWorkers: numWorkers, mux: http.NewServeMux()}

	// API endpoints
	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/render/stream", s.handleRenderStream)
	s.mux.HandleFunc("/api/inspect", s.handleInspect)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	s.mux.HandleFunc("/api/health", s.handleHealth)

	return s
}

// Handler returns the HTTP handler serving all endpoints
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene           string        `json:"scene"`           // Scene name (e.g., "default")
	Width           int           `json:"width"`           // Image width
	AspectRatio     float64       `json:"aspectRatio"`     // Width / height
	SamplesPerPixel int           `json:"samplesPerPixel"` // Samples per pixel
	MaxDepth        int           `json:"maxDepth"`        // Maximum bounce depth
	Seed            int64         `json:"seed"`            // Render and scene seed
	Format          output.Format `json:"format"`          // ppm or png
}

// Stats represents render statistics
type Stats struct {
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int64   `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	TilesRendered  int     `json:"tilesRendered"`
	DurationMs     int64   `json:"durationMs"`
}

func newStats(stats renderer.RenderStats) Stats {
	return Stats{
		TotalPixels:    stats.TotalPixels,
		TotalSamples:   int64(stats.TotalSamples),
		AverageSamples: stats.AverageSamples(),
		TilesRendered:  stats.TilesRendered,
		DurationMs:     stats.Duration.Milliseconds(),
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	writeJSON(w, http.StatusOK, map[string]interface{}{"scenes": scene.ListAllScenes()})
}

// parseRenderRequest parses request parameters. Unset parameters take the
// scene's recommended values, except width which defaults to a web-friendly size.
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()

	req := &RenderRequest{Scene: query.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	seed, err := parseIntParam(query, "seed", 0, 0, maxSeed)
	if err != nil {
		return nil, err
	}
	req.Seed = int64(seed)

	// Build the scene once to learn its defaults
	defaults, err := scene.New(req.Scene, req.Seed)
	if err != nil {
		return nil, err
	}
	sampling := defaults.SamplingConfig

	if req.Width, err = parseIntParam(query, "width", min(defaultWidth, sampling.Width), minWidth, maxWidth); err != nil {
		return nil, err
	}
	if req.AspectRatio, err = parseFloatParam(query, "aspect", sampling.AspectRatio, minAspect, maxAspect); err != nil {
		return nil, err
	}
	if req.SamplesPerPixel, err = parseIntParam(query, "samples", sampling.SamplesPerPixel, minSamples, maxSamples); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "depth", sampling.MaxDepth, minDepth, maxDepth); err != nil {
		return nil, err
	}

	format := query.Get("format")
	if format == "" {
		format = string(output.FormatPNG)
	}
	if req.Format, err = output.ParseFormat(format); err != nil {
		return nil, err
	}

	return req, nil
}

// isSlow reports whether the request combines a large image with many samples
func (req *RenderRequest) isSlow() bool {
	return req.Width*int(float64(req.Width)/req.AspectRatio) > 800*600 && req.SamplesPerPixel > 100
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %f and %f, got: %f", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// createScene builds the requested scene with the request's sampling overrides
func (s *Server) createScene(req *RenderRequest) (*scene.Scene, error) {
	sceneObj, err := scene.New(req.Scene, req.Seed)
	if err != nil {
		return nil, err
	}

	sceneObj.SetSamplingConfig(scene.SamplingConfig{
		Width:           req.Width,
		AspectRatio:     req.AspectRatio,
		SamplesPerPixel: req.SamplesPerPixel,
		MaxDepth:        req.MaxDepth,
	})
	if err := sceneObj.Validate(); err != nil {
		return nil, err
	}

	return sceneObj, nil
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sceneObj, err := scene.New(sceneName, 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	// Return the scene's sampling configuration with validation limits
	config := sceneObj.SamplingConfig
	response := map[string]interface{}{
		"scene": sceneObj.Name,
		"defaults": map[string]interface{}{
			"width":           config.Width,
			"height":          config.Height(),
			"aspectRatio":     config.AspectRatio,
			"samplesPerPixel": config.SamplesPerPixel,
			"maxDepth":        config.MaxDepth,
		},
		"limits": map[string]interface{}{
			"width": map[string]int{
				"min": minWidth,
				"max": maxWidth,
			},
			"aspect": map[string]float64{
				"min": minAspect,
				"max": maxAspect,
			},
			"samples": map[string]int{
				"min": minSamples,
				"max": maxSamples,
			},
			"depth": map[string]int{
				"min": minDepth,
				"max": maxDepth,
			},
		},
	}

	writeJSON(w, http.StatusOK, response)
}

// writeJSON writes v as a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}
