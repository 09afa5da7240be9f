package renderer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/integrator"
)

// DefaultTileHeight is the number of framebuffer rows per tile
const DefaultTileHeight = 16

// ErrInvalidConfig is returned when a render configuration cannot be rendered
var ErrInvalidConfig = errors.New("invalid render config")

// RenderConfig contains the per-render image and sampling parameters
type RenderConfig struct {
	Width           int   // Image width in pixels
	Height          int   // Image height in pixels
	SamplesPerPixel int   // Number of camera rays averaged per pixel
	MaxDepth        int   // Maximum number of bounces after the primary hit
	NumWorkers      int   // Number of parallel workers (0 = use CPU count)
	TileHeight      int   // Rows per tile (0 = DefaultTileHeight)
	Seed            int64 // Base seed; tile i uses Seed+i
}

// Validate reports whether the configuration can be rendered
func (c RenderConfig) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: image size %dx%d must be positive", ErrInvalidConfig, c.Width, c.Height)
	case c.SamplesPerPixel <= 0:
		return fmt.Errorf("%w: samples per pixel %d must be positive", ErrInvalidConfig, c.SamplesPerPixel)
	case c.MaxDepth < 0:
		return fmt.Errorf("%w: max depth %d must not be negative", ErrInvalidConfig, c.MaxDepth)
	case c.NumWorkers < 0:
		return fmt.Errorf("%w: worker count %d must not be negative", ErrInvalidConfig, c.NumWorkers)
	case c.TileHeight < 0:
		return fmt.Errorf("%w: tile height %d must not be negative", ErrInvalidConfig, c.TileHeight)
	}
	return nil
}

// Raytracer renders a world through a camera into a framebuffer
type Raytracer struct {
	world      geometry.Shape
	camera     *Camera
	config     RenderConfig
	integrator integrator.Integrator
	logger     core.Logger
}

// NewRaytracer creates a raytracer using the path tracing integrator.
// A nil logger discards progress output.
func NewRaytracer(world geometry.Shape, camera *Camera, config RenderConfig, logger core.Logger) *Raytracer {
	if logger == nil {
		logger = core.NopLogger{}
	}
	if config.TileHeight == 0 {
		config.TileHeight = DefaultTileHeight
	}

	return &Raytracer{
		world:      world,
		camera:     camera,
		config:     config,
		integrator: integrator.NewPathTracingIntegrator(),
		logger:     logger,
	}
}

// SetIntegrator replaces the light transport algorithm
func (rt *Raytracer) SetIntegrator(integratorInst integrator.Integrator) {
	rt.integrator = integratorInst
}

// Config returns the effective render configuration
func (rt *Raytracer) Config() RenderConfig {
	return rt.config
}

// Render traces the whole image. The result is identical for any worker count
// given the same seed. On cancellation the partial framebuffer is discarded.
func (rt *Raytracer) Render(ctx context.Context) (*Framebuffer, RenderStats, error) {
	if err := rt.config.Validate(); err != nil {
		return nil, RenderStats{}, err
	}

	start := time.Now()
	fb := NewFramebuffer(rt.config.Width, rt.config.Height)
	tiles := NewTileGrid(rt.config.Width, rt.config.Height, rt.config.TileHeight)

	tileRenderer := NewTileRenderer(rt.world, rt.camera, rt.integrator, rt.config)
	workerPool := NewWorkerPool(tileRenderer, rt.config.NumWorkers, rt.config.Seed)

	rt.logger.Printf("Rendering %dx%d, %d samples per pixel, max depth %d (%d tiles, %d workers)...\n",
		rt.config.Width, rt.config.Height, rt.config.SamplesPerPixel, rt.config.MaxDepth,
		len(tiles), workerPool.GetNumWorkers())

	var stats RenderStats
	err := workerPool.Run(ctx, tiles, fb, func(result TileResult) {
		stats.Merge(result.Stats)
		rt.logger.Printf("Tile %d/%d complete (rows %d-%d)\n",
			stats.TilesRendered, len(tiles), result.Tile.Bounds.Min.Y, result.Tile.Bounds.Max.Y-1)
	})
	stats.Duration = time.Since(start)
	if err != nil {
		return nil, stats, fmt.Errorf("render aborted after %d of %d tiles: %w", stats.TilesRendered, len(tiles), err)
	}

	rt.logger.Printf("Render complete in %v: %d pixels, %d samples, average luminance %.4f\n",
		stats.Duration.Round(time.Millisecond), stats.TotalPixels, stats.TotalSamples, fb.AverageLuminance())

	return fb, stats, nil
}
