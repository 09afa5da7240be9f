package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/scene"
)

func doRequest(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := doRequest(t, NewServer(0, 1), "/api/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body)
	}
}

func TestHandleScenes(t *testing.T) {
	rec := doRequest(t, NewServer(0, 1), "/api/scenes")

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body struct {
		Scenes []scene.SceneInfo `json:"scenes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(body.Scenes) != len(scene.Names()) {
		t.Errorf("Expected %d scenes, got %d", len(scene.Names()), len(body.Scenes))
	}
}

func TestHandleSceneConfig(t *testing.T) {
	s := NewServer(0, 1)

	rec := doRequest(t, s, "/api/scene-config?scene=default")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body struct {
		Scene    string         `json:"scene"`
		Defaults map[string]any `json:"defaults"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if body.Scene != "default" || body.Defaults["width"] != 1200.0 || body.Defaults["height"] != 800.0 {
		t.Errorf("Unexpected scene config: %+v", body)
	}

	if rec := doRequest(t, s, "/api/scene-config?scene=nope"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown scene, got %d", rec.Code)
	}
}

func TestHandleRenderPPM(t *testing.T) {
	rec := doRequest(t, NewServer(0, 2), "/api/render?scene=ground&width=30&format=ppm&seed=3")

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/x-portable-pixmap" {
		t.Errorf("Unexpected content type %q", ct)
	}

	lines := strings.Split(strings.TrimSuffix(rec.Body.String(), "\n"), "\n")
	if len(lines) != 3+30*20 {
		t.Fatalf("Expected %d lines, got %d", 3+30*20, len(lines))
	}
	if lines[0] != "P3" || lines[1] != "30 20" || lines[2] != "255" {
		t.Errorf("Unexpected header %q", lines[:3])
	}
	// Bottom-right pixel is the unlit ground
	if last := lines[len(lines)-1]; last != "0 0 0" {
		t.Errorf("Expected black ground pixel last, got %q", last)
	}
}

func TestHandleRenderPNG(t *testing.T) {
	rec := doRequest(t, NewServer(0, 1), "/api/render?scene=default&width=24&samples=1&depth=3")

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Unexpected content type %q", ct)
	}

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}
	if img.Bounds().Dx() != 24 || img.Bounds().Dy() != 16 {
		t.Errorf("Expected 24x16 image, got %v", img.Bounds())
	}
}

func TestHandleRenderRejectsBadParams(t *testing.T) {
	s := NewServer(0, 1)

	targets := []string{
		"/api/render?scene=unknown",
		"/api/render?width=0",
		"/api/render?width=abc",
		"/api/render?samples=0",
		"/api/render?depth=-1",
		"/api/render?aspect=100",
		"/api/render?format=gif",
		"/api/render?seed=-4",
		"/api/render?width=1&aspect=2",
	}

	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			if rec := doRequest(t, s, target); rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestHandleRenderStream(t *testing.T) {
	rec := doRequest(t, NewServer(0, 2), "/api/render/stream?scene=ground&width=15")

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Unexpected content type %q", ct)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "event: console\n") {
		t.Error("Expected console events in stream")
	}
	if !strings.Contains(body, `"renderId":"render-`) || !strings.Contains(body, `"level":"info"`) {
		t.Error("Expected console events tagged with render ID and level")
	}
	if strings.Contains(body, "event: error\n") {
		t.Errorf("Unexpected error event: %s", body)
	}

	idx := strings.Index(body, "event: complete\ndata: ")
	if idx < 0 {
		t.Fatalf("Expected complete event, got: %s", body)
	}
	data := strings.TrimSpace(body[idx+len("event: complete\ndata: "):])

	var update CompleteUpdate
	if err := json.Unmarshal([]byte(data), &update); err != nil {
		t.Fatalf("Invalid complete payload: %v", err)
	}
	if update.Width != 15 || update.Height != 10 || update.ImageData == "" {
		t.Errorf("Unexpected complete update: %dx%d", update.Width, update.Height)
	}
	if update.Stats.TotalPixels != 150 || update.Stats.TotalSamples != 150 {
		t.Errorf("Unexpected stats: %+v", update.Stats)
	}
}

func TestHandleRenderStreamInvalidRequest(t *testing.T) {
	rec := doRequest(t, NewServer(0, 1), "/api/render/stream?scene=missing")
	if !strings.Contains(rec.Body.String(), "event: error\n") {
		t.Errorf("Expected error event, got: %s", rec.Body.String())
	}
}

func TestHandleInspect(t *testing.T) {
	s := NewServer(0, 1)

	tests := []struct {
		name         string
		query        string
		expectedCode int
		expectHit    bool
		materialType string
	}{
		{"sky above the scene", "x=60&y=0", http.StatusOK, false, ""},
		{"ground below the camera", "x=60&y=79", http.StatusOK, true, "lambertian"},
		{"out of bounds", "x=60&y=80", http.StatusBadRequest, false, ""},
		{"missing x", "y=10", http.StatusBadRequest, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, "/api/inspect?scene=default&width=120&"+tt.query)
			if rec.Code != tt.expectedCode {
				t.Fatalf("Expected %d, got %d: %s", tt.expectedCode, rec.Code, rec.Body.String())
			}
			if tt.expectedCode != http.StatusOK {
				return
			}

			var response InspectResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
				t.Fatalf("Invalid JSON: %v", err)
			}
			if response.Hit != tt.expectHit {
				t.Fatalf("Expected hit=%v, got %+v", tt.expectHit, response)
			}
			if tt.expectHit {
				if response.MaterialType != tt.materialType || response.GeometryType != "sphere" {
					t.Errorf("Unexpected inspection result: %+v", response)
				}
				if response.Distance <= 0 {
					t.Errorf("Expected positive distance, got %f", response.Distance)
				}
			}
		})
	}
}

func TestParseIntParam(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected int
		wantErr  bool
	}{
		{"default when missing", "", 7, false},
		{"valid", "n=42", 42, false},
		{"lower bound", "n=1", 1, false},
		{"below range", "n=0", 0, true},
		{"above range", "n=101", 0, true},
		{"not a number", "n=4x", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			got, err := parseIntParam(values, "n", 7, 1, 100)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestParseFloatParam(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected float64
		wantErr  bool
	}{
		{"default when missing", "", 1.5, false},
		{"valid", "f=2.25", 2.25, false},
		{"below range", "f=0.01", 0, true},
		{"not a number", "f=wide", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			got, err := parseFloatParam(values, "f", 1.5, 0.1, 10)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if got != tt.expected {
				t.Errorf("Expected %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestExtractInfoForGridSphere(t *testing.T) {
	s := NewServer(0, 1)
	sceneObj, err := scene.New("grid", 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	shapes := sceneObj.World.Shapes
	sphere := shapes[len(shapes)-1].(*geometry.Sphere)

	geometryType, geometryProps := s.extractGeometryInfo(sphere)
	if geometryType != "sphere" || geometryProps["radius"] != 0.35 {
		t.Errorf("Unexpected geometry info: %s %v", geometryType, geometryProps)
	}

	materialType, materialProps := s.extractMaterialInfo(sphere.Material)
	if materialType != "mixed" {
		t.Fatalf("Expected mixed material, got %s", materialType)
	}
	first := materialProps["material1"].(map[string]interface{})
	second := materialProps["material2"].(map[string]interface{})
	if first["type"] != "lambertian" || second["type"] != "metal" {
		t.Errorf("Unexpected mix components: %v / %v", first["type"], second["type"])
	}
}

func TestHexColor(t *testing.T) {
	tests := []struct {
		color    core.Vec3
		expected string
	}{
		{core.NewVec3(0, 0, 0), "#000000"},
		{core.NewVec3(1, 1, 1), "#ffffff"},
		{core.NewVec3(2, -1, 0.5), "#ff007f"},
	}

	for _, tt := range tests {
		if got := hexColor(tt.color); got != tt.expected {
			t.Errorf("hexColor(%v) = %s, expected %s", tt.color, got, tt.expected)
		}
	}
}
