package renderer

import (
	"testing"
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
)

func TestPixelStatsAverage(t *testing.T) {
	var ps PixelStats
	if got := ps.GetColor(); got != (core.Vec3{}) {
		t.Errorf("Expected black for a pixel with no samples, got %v", got)
	}

	ps.AddSample(core.NewVec3(1, 0, 0))
	ps.AddSample(core.NewVec3(0, 1, 0))
	ps.AddSample(core.NewVec3(0, 0, 1))
	ps.AddSample(core.NewVec3(1, 1, 1))

	if ps.SampleCount != 4 {
		t.Errorf("Expected 4 samples, got %d", ps.SampleCount)
	}
	if got := ps.GetColor(); !vecNear(got, core.NewVec3(0.5, 0.5, 0.5), 1e-12) {
		t.Errorf("Expected average (0.5, 0.5, 0.5), got %v", got)
	}
}

func TestRenderStatsMerge(t *testing.T) {
	stats := RenderStats{Duration: time.Second}
	stats.Merge(RenderStats{TotalPixels: 10, TotalSamples: 40, TilesRendered: 1})
	stats.Merge(RenderStats{TotalPixels: 6, TotalSamples: 24, TilesRendered: 1, Duration: time.Hour})

	if stats.TotalPixels != 16 || stats.TotalSamples != 64 || stats.TilesRendered != 2 {
		t.Errorf("Unexpected merged stats: %+v", stats)
	}
	if stats.Duration != time.Second {
		t.Errorf("Merge should not touch duration, got %v", stats.Duration)
	}
	if avg := stats.AverageSamples(); avg != 4 {
		t.Errorf("Expected 4 samples per pixel, got %f", avg)
	}
	if avg := (RenderStats{}).AverageSamples(); avg != 0 {
		t.Errorf("Expected 0 average for empty stats, got %f", avg)
	}
}
