package scene

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/df07/go-pathtracer/pkg/renderer"
)

// ErrUnknownScene is returned when a scene name is not registered
var ErrUnknownScene = errors.New("unknown scene")

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string `json:"id"`          // Registry name, as passed to New
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"`
	Width       int    `json:"width"`  // Recommended image width
	Height      int    `json:"height"` // Recommended image height
}

type sceneEntry struct {
	description string
	build       func(seed int64, cameraOverrides ...renderer.CameraConfig) *Scene
}

var builtInScenes = map[string]sceneEntry{
	"default": {
		description: "Ground sphere with glass, diffuse and metal spheres",
		build: func(_ int64, overrides ...renderer.CameraConfig) *Scene {
			return NewDefaultScene(overrides...)
		},
	},
	"random": {
		description: "Default scene surrounded by a seeded field of small random spheres",
		build:       NewRandomScene,
	},
	"ground": {
		description: "Single ground sphere under the sky, for silhouette checks",
		build: func(_ int64, overrides ...renderer.CameraConfig) *Scene {
			return NewGroundScene(overrides...)
		},
	},
	"grid": {
		description: "10x10 grid of OKLCH-colored diffuse and metal spheres",
		build: func(_ int64, overrides ...renderer.CameraConfig) *Scene {
			return NewSphereGridScene(overrides...)
		},
	},
}

// Names returns the registered scene names in sorted order
func Names() []string {
	names := make([]string, 0, len(builtInScenes))
	for name := range builtInScenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the named scene. seed only affects procedurally generated scenes.
func New(name string, seed int64, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	entry, ok := builtInScenes[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownScene, name, strings.Join(Names(), ", "))
	}
	return entry.build(seed, cameraOverrides...), nil
}

// ListAllScenes returns metadata for every built-in scene, sorted by name
func ListAllScenes() []SceneInfo {
	var scenes []SceneInfo
	for _, name := range Names() {
		entry := builtInScenes[name]
		s := entry.build(0)
		scenes = append(scenes, SceneInfo{
			ID:          name,
			DisplayName: titleCase(name) + " Scene",
			Description: entry.description,
			Width:       s.SamplingConfig.Width,
			Height:      s.SamplingConfig.Height(),
		})
	}
	return scenes
}

// titleCase converts a name-style string to title case
// e.g., "sphere-grid" -> "Sphere Grid"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
