package scene

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// oklchToRGB converts OKLCH color values to linear RGB clamped to [0, 1]
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Vec3 {
	hRad := h * math.Pi / 180.0

	// OKLCH to OKLAB
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	// LMS to linear RGB
	r := +4.0767416621*l_ - 3.3077115913*m_ + 0.2309699292*s_
	g := -1.2684380046*l_ + 2.6097574011*m_ - 0.3413193965*s_
	blue := -0.0041960863*l_ - 0.7034186147*m_ + 1.7076147010*s_

	return core.NewVec3(r, g, blue).Clamp(0, 1)
}

// NewSphereGridScene creates a 10x10 grid of colored spheres on the ground sphere.
// Hue varies along X and chroma along Z; each sphere mixes a diffuse and a
// metallic finish of the same color.
func NewSphereGridScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	cameraConfig := renderer.CameraConfig{
		LookFrom: core.NewVec3(4.5, 6, 18),    // Above and behind the grid
		LookAt:   core.NewVec3(4.5, 0.8, 4.5), // Center of grid, slightly lower
		Up:       core.NewVec3(0, 1, 0),
		VFov:     40.0,
		Aperture: 0.02, // Small depth of field for some focus variation
	}
	samplingConfig := DefaultSamplingConfig()
	samplingConfig.Width = 800
	samplingConfig.AspectRatio = 16.0 / 9.0

	s := newScene("grid", cameraConfig, samplingConfig, cameraOverrides)

	s.World.Add(geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000,
		material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))))

	gridSize := 10
	spacing := 1.0
	sphereRadius := 0.35

	// OKLCH parameters for color variation
	baseLightness := 0.65
	minChroma := 0.05
	maxChroma := 0.25

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			position := core.NewVec3(float64(i)*spacing, sphereRadius, float64(j)*spacing)

			hue := (float64(i) / float64(gridSize-1)) * 360.0
			chroma := minChroma + (float64(j)/float64(gridSize-1))*(maxChroma-minChroma)
			lightness := baseLightness + 0.1*math.Sin(float64(i+j)*0.5)
			color := oklchToRGB(lightness, chroma, hue)

			// Metallic share grows along the diagonal
			roughness := 0.05 + 0.1*float64((i+j)%3)/2.0
			metallic := float64(i+j) / float64(2*(gridSize-1))
			mat := material.NewMix(
				material.NewLambertian(color),
				material.NewMetal(color, roughness),
				metallic,
			)

			s.World.Add(geometry.NewSphere(position, sphereRadius, mat))
		}
	}

	return s
}
