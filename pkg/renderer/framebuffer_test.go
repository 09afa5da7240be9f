package renderer

import (
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
)

func TestColorToRGB(t *testing.T) {
	tests := []struct {
		name    string
		color   core.Vec3
		r, g, b uint8
	}{
		{"black", core.NewVec3(0, 0, 0), 0, 0, 0},
		{"white clamps below 256", core.NewVec3(1, 1, 1), 255, 255, 255},
		{"overexposed", core.NewVec3(4, 100, 1.5), 255, 255, 255},
		{"gamma two", core.NewVec3(0.25, 0.01, 0.64), 128, 25, 204},
		{"negative", core.NewVec3(-0.5, -1, 0), 0, 0, 0},
		{"not a number", core.NewVec3(math.NaN(), 0.25, 0), 0, 128, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := ColorToRGB(tt.color)
			if r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("Expected (%d,%d,%d), got (%d,%d,%d)", tt.r, tt.g, tt.b, r, g, b)
			}
		})
	}
}

func TestFramebufferIndexing(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	if len(fb.Pixels) != 6 {
		t.Fatalf("Expected 6 pixels, got %d", len(fb.Pixels))
	}

	fb.Set(2, 1, core.NewVec3(1, 2, 3))
	if got := fb.At(2, 1); got != core.NewVec3(1, 2, 3) {
		t.Errorf("Expected stored color, got %v", got)
	}
	if fb.Pixels[5] != core.NewVec3(1, 2, 3) {
		t.Errorf("Expected row-major storage, got %v", fb.Pixels)
	}
}

func TestFramebufferToRGBA(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.Set(0, 0, core.NewVec3(1, 0, 0))
	fb.Set(1, 1, core.NewVec3(0.25, 0.25, 0.25))

	img := fb.ToRGBA()
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Fatalf("Unexpected image bounds %v", img.Bounds())
	}

	if c := img.RGBAAt(0, 0); c.R != 255 || c.G != 0 || c.B != 0 || c.A != 255 {
		t.Errorf("Expected opaque red at (0,0), got %v", c)
	}
	if c := img.RGBAAt(1, 1); c.R != 128 || c.G != 128 || c.B != 128 {
		t.Errorf("Expected mid gray at (1,1), got %v", c)
	}
	if c := img.RGBAAt(1, 0); c.R != 0 || c.A != 255 {
		t.Errorf("Expected opaque black at (1,0), got %v", c)
	}
}

func TestFramebufferAverageLuminance(t *testing.T) {
	// Red, green, blue and black average to a third of the weight sum
	fb := NewFramebuffer(2, 2)
	fb.Set(0, 0, core.NewVec3(1, 0, 0))
	fb.Set(1, 0, core.NewVec3(0, 1, 0))
	fb.Set(0, 1, core.NewVec3(0, 0, 1))

	expected := (0.299 + 0.587 + 0.114) / 4
	if avg := fb.AverageLuminance(); math.Abs(avg-expected) > 1e-12 {
		t.Errorf("Expected average luminance %f, got %f", expected, avg)
	}

	if avg := NewFramebuffer(0, 0).AverageLuminance(); avg != 0 {
		t.Errorf("Expected 0 for empty framebuffer, got %f", avg)
	}
}
