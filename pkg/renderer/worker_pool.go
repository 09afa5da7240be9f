package renderer

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-pathtracer/pkg/core"
)

// TileResult contains the result from rendering a tile
type TileResult struct {
	Tile  Tile
	Stats RenderStats
}

// WorkerPool manages parallel tile rendering
type WorkerPool struct {
	renderer   *TileRenderer
	numWorkers int
	seed       int64
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// numWorkers <= 0 uses one worker per CPU.
func NewWorkerPool(tileRenderer *TileRenderer, numWorkers int, seed int64) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	return &WorkerPool{
		renderer:   tileRenderer,
		numWorkers: numWorkers,
		seed:       seed,
	}
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// Run renders every tile into fb and blocks until all tiles are done, a
// worker fails, or ctx is cancelled. onTile is invoked from the calling
// goroutine as tiles complete, in completion order.
func (wp *WorkerPool) Run(ctx context.Context, tiles []Tile, fb *Framebuffer, onTile func(TileResult)) error {
	g, gctx := errgroup.WithContext(ctx)

	taskQueue := make(chan Tile)
	resultQueue := make(chan TileResult, len(tiles))

	g.Go(func() error {
		defer close(taskQueue)
		for _, tile := range tiles {
			select {
			case taskQueue <- tile:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < wp.numWorkers; i++ {
		g.Go(func() error {
			for tile := range taskQueue {
				// Each tile owns its random stream, so output does not depend on
				// which worker picks it up
				sampler := core.NewSeededSampler(wp.seed + int64(tile.ID))

				stats, err := wp.renderer.RenderTile(gctx, tile, fb, sampler)
				if err != nil {
					return err
				}
				resultQueue <- TileResult{Tile: tile, Stats: stats}
			}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
		close(resultQueue)
	}()

	for result := range resultQueue {
		if onTile != nil {
			onTile(result)
		}
	}

	return <-done
}
