package renderer

import (
	"context"
	"image"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/integrator"
)

// Tile represents a horizontal band of framebuffer rows rendered as one unit
type Tile struct {
	ID     int             // Unique tile identifier, also the offset of the tile's random seed
	Bounds image.Rectangle // Pixel bounds in framebuffer coordinates (row 0 = top)
}

// NewTileGrid splits the image into full-width bands of at most tileHeight rows
func NewTileGrid(width, height, tileHeight int) []Tile {
	if tileHeight <= 0 {
		tileHeight = height
	}

	var tiles []Tile
	tileID := 0
	for y0 := 0; y0 < height; y0 += tileHeight {
		y1 := min(y0+tileHeight, height) // Don't exceed image bounds
		tiles = append(tiles, Tile{
			ID:     tileID,
			Bounds: image.Rect(0, y0, width, y1),
		})
		tileID++
	}

	return tiles
}

// TileRenderer handles the actual rendering of individual tiles using an integrator
type TileRenderer struct {
	world      geometry.Shape
	camera     *Camera
	integrator integrator.Integrator
	config     RenderConfig
}

// NewTileRenderer creates a new tile renderer
func NewTileRenderer(world geometry.Shape, camera *Camera, integratorInst integrator.Integrator, config RenderConfig) *TileRenderer {
	return &TileRenderer{
		world:      world,
		camera:     camera,
		integrator: integratorInst,
		config:     config,
	}
}

// RenderTile renders every pixel inside tile.Bounds into fb.
// Tiles never overlap, so concurrent calls on distinct tiles need no locking.
// The context is checked once per row.
func (tr *TileRenderer) RenderTile(ctx context.Context, tile Tile, fb *Framebuffer, sampler core.Sampler) (RenderStats, error) {
	bounds := tile.Bounds
	stats := RenderStats{TilesRendered: 1}

	for row := bounds.Min.Y; row < bounds.Max.Y; row++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		// Framebuffer row 0 holds the highest world-space row
		j := tr.config.Height - 1 - row
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			fb.Set(x, row, tr.samplePixel(x, j, sampler))
			stats.TotalPixels++
			stats.TotalSamples += tr.config.SamplesPerPixel
		}
	}

	return stats, nil
}

// samplePixel averages SamplesPerPixel jittered estimates for pixel (x, j),
// where j counts rows upward from the bottom of the image
func (tr *TileRenderer) samplePixel(x, j int, sampler core.Sampler) core.Vec3 {
	// Single-pixel dimensions would divide by zero
	widthDenom := float64(max(1, tr.config.Width-1))
	heightDenom := float64(max(1, tr.config.Height-1))

	var ps PixelStats
	for sample := 0; sample < tr.config.SamplesPerPixel; sample++ {
		s := (float64(x) + sampler.Get1D()) / widthDenom
		t := (float64(j) + sampler.Get1D()) / heightDenom

		ray := tr.camera.GetRay(s, t, sampler)
		ps.AddSample(tr.integrator.RayColor(ray, tr.world, tr.config.MaxDepth, sampler))
	}

	return ps.GetColor()
}
