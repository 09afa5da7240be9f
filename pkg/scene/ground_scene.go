package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// NewGroundScene creates a single radius-1000 ground sphere seen from just
// above its surface. With MaxDepth 0 every ground pixel is black, so the
// render is a flat silhouette under the sky gradient.
func NewGroundScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	cameraConfig := renderer.CameraConfig{
		LookFrom: core.NewVec3(0, 2, 0),
		LookAt:   core.NewVec3(0, 0, -4),
		Up:       core.NewVec3(0, 1, 0),
		VFov:     90.0,
	}
	samplingConfig := SamplingConfig{
		Width:           300,
		AspectRatio:     1.5,
		SamplesPerPixel: 1,
		MaxDepth:        0,
	}

	s := newScene("ground", cameraConfig, samplingConfig, cameraOverrides)
	s.World.Add(geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000,
		material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))))

	return s
}
