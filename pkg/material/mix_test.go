package material

import (
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
)

func TestMix_ClampsRatio(t *testing.T) {
	a := NewLambertian(core.NewVec3(1, 0, 0))
	b := NewLambertian(core.NewVec3(0, 1, 0))

	tests := []struct {
		ratio    float64
		expected float64
	}{
		{-0.5, 0.0},
		{0.25, 0.25},
		{1.5, 1.0},
	}

	for _, tt := range tests {
		if mix := NewMix(a, b, tt.ratio); mix.Ratio != tt.expected {
			t.Errorf("Ratio %f: expected clamped %f, got %f", tt.ratio, tt.expected, mix.Ratio)
		}
	}
}

func TestMix_SelectsMaterialByDraw(t *testing.T) {
	red := core.NewVec3(1, 0, 0)
	green := core.NewVec3(0, 1, 0)
	mix := NewMix(NewLambertian(red), NewLambertian(green), 0.5)

	hit := HitRecord{Point: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 1, 0), FrontFace: true}
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))

	tests := []struct {
		name     string
		draw     float64
		expected core.Vec3
	}{
		{"low draw picks second material", 0.3, green},
		{"high draw picks first material", 0.7, red},
		{"draw equal to ratio picks first material", 0.5, red},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler := fixedSampler{value: tt.draw, point: unitSpherePoint(core.NewVec3(0.1, 0.2, 0.3))}
			scatter, ok := mix.Scatter(ray, hit, sampler)
			if !ok {
				t.Fatal("Expected lambertian to scatter")
			}
			if scatter.Attenuation != tt.expected {
				t.Errorf("Expected attenuation %v, got %v", tt.expected, scatter.Attenuation)
			}
		})
	}
}

func TestMix_PropagatesAbsorption(t *testing.T) {
	// A perfect mirror absorbs a ray arriving from below its surface
	mirror := NewMetal(core.NewVec3(1, 1, 1), 0)
	mix := NewMix(mirror, mirror, 0.5)

	hit := HitRecord{Point: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 1, 0)}
	ray := core.NewRay(core.NewVec3(0, -1, 0), core.NewVec3(0, 1, 0))

	if _, ok := mix.Scatter(ray, hit, core.NewSeededSampler(1)); ok {
		t.Error("Expected absorption from the underlying metal")
	}
}
