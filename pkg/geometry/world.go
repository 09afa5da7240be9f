package geometry

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// World is an ordered list of shapes tested linearly against every ray.
// It is read-only once rendering starts and safe to share between workers.
type World struct {
	Shapes []Shape
}

// NewWorld creates a world containing the given shapes in order
func NewWorld(shapes ...Shape) *World {
	return &World{Shapes: shapes}
}

// Add appends a shape to the world
func (w *World) Add(shape Shape) {
	w.Shapes = append(w.Shapes, shape)
}

// Len returns the number of shapes in the world
func (w *World) Len() int {
	return len(w.Shapes)
}

// Hit returns the nearest intersection within [tMin, tMax]
func (w *World) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	hit, _, isHit := w.HitShape(ray, tMin, tMax)
	return hit, isHit
}

// HitShape is Hit that also returns the shape that was hit.
// Each test uses the closest hit so far as its upper bound, so when two shapes
// are hit at exactly the same t the one listed first wins.
func (w *World) HitShape(ray core.Ray, tMin, tMax float64) (*material.HitRecord, Shape, bool) {
	var closestHit *material.HitRecord
	var closestShape Shape
	closestSoFar := tMax

	for _, shape := range w.Shapes {
		hit, isHit := shape.Hit(ray, tMin, closestSoFar)
		if !isHit || (closestHit != nil && hit.T >= closestSoFar) {
			continue
		}
		closestSoFar = hit.T
		closestHit = hit
		closestShape = shape
	}

	return closestHit, closestShape, closestHit != nil
}
