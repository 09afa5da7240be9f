package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// fixedSampler always returns the same values, for steering random choices in tests
type fixedSampler struct {
	value float64
	point core.Vec3 // returned by Get3D
}

func (f fixedSampler) Get1D() float64            { return f.value }
func (f fixedSampler) Get2D() (float64, float64) { return f.value, f.value }
func (f fixedSampler) Get3D() core.Vec3          { return f.point }

// unitSpherePoint returns the Get3D draw that SamplePointInUnitSphere maps to p
func unitSpherePoint(p core.Vec3) core.Vec3 {
	return core.NewVec3((p.X+1)/2, (p.Y+1)/2, (p.Z+1)/2)
}

func vecApproxEqual(a, b core.Vec3, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance &&
		math.Abs(a.Y-b.Y) <= tolerance &&
		math.Abs(a.Z-b.Z) <= tolerance
}
