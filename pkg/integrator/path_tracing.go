package integrator

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// ShadowAcneEpsilon is the lower intersection bound for every bounce, so a
// scattered ray does not re-hit the surface it just left
const ShadowAcneEpsilon = 0.001

var (
	skyBottom = core.NewVec3(1.0, 1.0, 1.0) // white horizon
	skyTop    = core.NewVec3(0.5, 0.7, 1.0) // blue zenith
)

// PathTracingIntegrator implements unidirectional path tracing against a sky gradient
type PathTracingIntegrator struct{}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator() *PathTracingIntegrator {
	return &PathTracingIntegrator{}
}

// RayColor computes the color for a single ray.
// The recursion ray_color(scattered, depth-1) is unrolled into a loop that
// carries the running attenuation product.
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world geometry.Shape, depth int, sampler core.Sampler) core.Vec3 {
	throughput := core.NewVec3(1, 1, 1)

	for ; depth >= 0; depth-- {
		hit, isHit := world.Hit(ray, ShadowAcneEpsilon, math.Inf(1))
		if !isHit {
			return throughput.MultiplyVec(SkyColor(ray.Direction))
		}

		scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
		if !didScatter {
			// Material absorbed the ray
			return core.Vec3{}
		}

		throughput = throughput.MultiplyVec(scatter.Attenuation)
		ray = scatter.Scattered
	}

	// Exceeded the bounce limit, no more light is gathered
	return core.Vec3{}
}

// SkyColor returns the background gradient for a ray direction: white looking
// straight down, sky blue looking straight up
func SkyColor(direction core.Vec3) core.Vec3 {
	t := 0.5 * (direction.Normalize().Y + 1.0)
	return skyBottom.Lerp(skyTop, t)
}
