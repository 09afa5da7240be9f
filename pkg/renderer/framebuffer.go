package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// Framebuffer holds the averaged linear color of every pixel.
// Row 0 is the top of the image.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// NewFramebuffer allocates a black framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]core.Vec3, width*height),
	}
}

// At returns the linear color at column x, row y
func (fb *Framebuffer) At(x, y int) core.Vec3 {
	return fb.Pixels[y*fb.Width+x]
}

// Set stores the linear color at column x, row y
func (fb *Framebuffer) Set(x, y int, c core.Vec3) {
	fb.Pixels[y*fb.Width+x] = c
}

// ToRGBA converts the framebuffer to an 8-bit image using ColorToRGB
func (fb *Framebuffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			r, g, b := ColorToRGB(fb.At(x, y))
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}

// AverageLuminance returns the mean linear luminance over all pixels
func (fb *Framebuffer) AverageLuminance() float64 {
	if len(fb.Pixels) == 0 {
		return 0
	}
	total := 0.0
	for _, c := range fb.Pixels {
		total += c.Luminance()
	}
	return total / float64(len(fb.Pixels))
}

// ColorToRGB converts a linear color to 8-bit channels: gamma 2 (square root),
// clamp to [0, 0.999], then scale by 256 and truncate
func ColorToRGB(c core.Vec3) (r, g, b uint8) {
	return toByte(c.X), toByte(c.Y), toByte(c.Z)
}

func toByte(v float64) uint8 {
	// NaN and negative channels map to 0
	if !(v > 0) {
		return 0
	}
	v = math.Sqrt(v)
	if v > 0.999 {
		v = 0.999
	}
	return uint8(256 * v)
}
