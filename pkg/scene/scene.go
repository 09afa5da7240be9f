package scene

import (
	"fmt"

	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name           string
	World          *geometry.World // Objects in the scene
	CameraConfig   renderer.CameraConfig
	SamplingConfig SamplingConfig
}

// SamplingConfig contains image size and sampling configuration
type SamplingConfig struct {
	Width           int     // Image width
	AspectRatio     float64 // Width / height; height is derived by truncation
	SamplesPerPixel int     // Number of rays per pixel
	MaxDepth        int     // Maximum ray bounce depth
}

// DefaultSamplingConfig returns the standard render parameters
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           1200,
		AspectRatio:     1.5,
		SamplesPerPixel: 10,
		MaxDepth:        50,
	}
}

// Height returns the image height, width / aspect ratio truncated to an integer
func (c SamplingConfig) Height() int {
	if c.AspectRatio <= 0 {
		return 0
	}
	return int(float64(c.Width) / c.AspectRatio)
}

// Validate reports whether the configuration describes a renderable image
func (c SamplingConfig) Validate() error {
	switch {
	case c.Width <= 0:
		return fmt.Errorf("%w: width %d must be positive", renderer.ErrInvalidConfig, c.Width)
	case c.AspectRatio <= 0:
		return fmt.Errorf("%w: aspect ratio %g must be positive", renderer.ErrInvalidConfig, c.AspectRatio)
	case c.Height() <= 0:
		return fmt.Errorf("%w: width %d and aspect ratio %g give an empty image", renderer.ErrInvalidConfig, c.Width, c.AspectRatio)
	case c.SamplesPerPixel <= 0:
		return fmt.Errorf("%w: samples per pixel %d must be positive", renderer.ErrInvalidConfig, c.SamplesPerPixel)
	case c.MaxDepth < 0:
		return fmt.Errorf("%w: max depth %d must not be negative", renderer.ErrInvalidConfig, c.MaxDepth)
	}
	return nil
}

// Validate checks the sampling configuration and every object in the world.
// Spheres need a positive radius and a material.
func (s *Scene) Validate() error {
	if err := s.SamplingConfig.Validate(); err != nil {
		return err
	}
	if s.World == nil {
		return fmt.Errorf("%w: scene %q has no world", renderer.ErrInvalidConfig, s.Name)
	}
	for i, shape := range s.World.Shapes {
		sphere, ok := shape.(*geometry.Sphere)
		if !ok {
			continue
		}
		switch {
		case !(sphere.Radius > 0):
			return fmt.Errorf("%w: sphere %d at %v has non-positive radius %g", renderer.ErrInvalidConfig, i, sphere.Center, sphere.Radius)
		case sphere.Material == nil:
			return fmt.Errorf("%w: sphere %d at %v has no material", renderer.ErrInvalidConfig, i, sphere.Center)
		}
	}
	return nil
}

// SetSamplingConfig replaces the sampling configuration and keeps the camera
// aspect ratio in step with it
func (s *Scene) SetSamplingConfig(config SamplingConfig) {
	s.SamplingConfig = config
	s.CameraConfig.AspectRatio = config.AspectRatio
}

// NewCamera builds the camera described by the scene
func (s *Scene) NewCamera() *renderer.Camera {
	return renderer.NewCamera(s.CameraConfig)
}

// RenderConfig derives renderer parameters from the scene's sampling configuration
func (s *Scene) RenderConfig(numWorkers int, seed int64) renderer.RenderConfig {
	return renderer.RenderConfig{
		Width:           s.SamplingConfig.Width,
		Height:          s.SamplingConfig.Height(),
		SamplesPerPixel: s.SamplingConfig.SamplesPerPixel,
		MaxDepth:        s.SamplingConfig.MaxDepth,
		NumWorkers:      numWorkers,
		Seed:            seed,
	}
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.World.Len()
}

// newScene wires the camera aspect ratio to the sampling configuration,
// applying any camera override first
func newScene(name string, cameraConfig renderer.CameraConfig, samplingConfig SamplingConfig, cameraOverrides []renderer.CameraConfig) *Scene {
	if len(cameraOverrides) > 0 {
		cameraConfig = renderer.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}
	if cameraConfig.AspectRatio != 0 {
		samplingConfig.AspectRatio = cameraConfig.AspectRatio
	}
	cameraConfig.AspectRatio = samplingConfig.AspectRatio

	return &Scene{
		Name:           name,
		World:          geometry.NewWorld(),
		CameraConfig:   cameraConfig,
		SamplingConfig: samplingConfig,
	}
}
