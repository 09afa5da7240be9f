package scene

import (
	"math/rand"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// NewRandomScene creates the default scene surrounded by a 22x22 field of small
// spheres. The layout and materials depend only on seed.
func NewRandomScene(seed int64, cameraOverrides ...renderer.CameraConfig) *Scene {
	s := newScene("random", defaultCameraConfig(), DefaultSamplingConfig(), cameraOverrides)
	random := rand.New(rand.NewSource(seed))

	s.World.Add(geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000,
		material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))))

	// Keep small spheres out of the metal sphere at (4, 1, 0)
	clearing := core.NewVec3(4, 0.2, 0)

	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			chooseMat := random.Float64()
			center := core.NewVec3(
				float64(a)+0.9*random.Float64(),
				0.2,
				float64(b)+0.9*random.Float64(),
			)

			if center.Subtract(clearing).Length() <= 0.9 {
				continue
			}

			var mat material.Material
			switch {
			case chooseMat < 0.8:
				albedo := randomColor(random, 0, 1).MultiplyVec(randomColor(random, 0, 1))
				mat = material.NewLambertian(albedo)
			case chooseMat < 0.95:
				albedo := randomColor(random, 0.5, 1)
				fuzz := 0.5 * random.Float64()
				mat = material.NewMetal(albedo, fuzz)
			default:
				mat = material.NewDielectric(1.5)
			}

			s.World.Add(geometry.NewSphere(center, 0.2, mat))
		}
	}

	addFeatureSpheres(s.World)
	return s
}

// randomColor returns a color with each channel uniform in [lo, hi)
func randomColor(random *rand.Rand, lo, hi float64) core.Vec3 {
	span := hi - lo
	return core.NewVec3(
		lo+span*random.Float64(),
		lo+span*random.Float64(),
		lo+span*random.Float64(),
	)
}
