package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// defaultCameraConfig frames the three feature spheres from above and to the side
func defaultCameraConfig() renderer.CameraConfig {
	return renderer.CameraConfig{
		LookFrom:      core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          20.0,
		Aperture:      0.1,
		FocusDistance: 10.0,
	}
}

// NewDefaultScene creates a ground sphere with a glass, a diffuse and a metal sphere
func NewDefaultScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	s := newScene("default", defaultCameraConfig(), DefaultSamplingConfig(), cameraOverrides)

	s.World.Add(geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000,
		material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))))
	addFeatureSpheres(s.World)

	return s
}

// addFeatureSpheres adds the three large spheres shared by the default and random scenes
func addFeatureSpheres(world *geometry.World) {
	world.Add(geometry.NewSphere(core.NewVec3(0, 1, 0), 1.0, material.NewDielectric(1.5)))
	world.Add(geometry.NewSphere(core.NewVec3(-4, 1, 0), 1.0,
		material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1))))
	world.Add(geometry.NewSphere(core.NewVec3(4, 1, 0), 1.0,
		material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0)))
}
