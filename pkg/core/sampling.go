package core

import (
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms.
// Implementations are not safe for concurrent use; each goroutine owns its own.
type Sampler interface {
	Get1D() float64
	Get2D() (float64, float64)
	Get3D() Vec3
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own generator seeded with seed
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() (float64, float64) {
	return r.random.Float64(), r.random.Float64()
}

// Get3D returns three random float64 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// SamplePointInUnitSphere returns a random point strictly inside the unit sphere.
// Points are drawn uniformly from the [-1,1) cube and rejected until one lands inside.
func SamplePointInUnitSphere(sampler Sampler) Vec3 {
	for {
		u := sampler.Get3D()
		p := NewVec3(2*u.X-1, 2*u.Y-1, 2*u.Z-1)
		if p.LengthSquared() < 1.0 {
			return p
		}
	}
}

// SamplePointInUnitDisk returns a random point strictly inside the unit disk on the z=0 plane (for depth of field)
func SamplePointInUnitDisk(sampler Sampler) Vec3 {
	for {
		x, y := sampler.Get2D()
		p := NewVec3(2*x-1, 2*y-1, 0)
		if p.LengthSquared() < 1.0 {
			return p
		}
	}
}
