package output

import (
	"bufio"
	"fmt"
	"image/png"
	"io"
	"strings"

	"github.com/df07/go-pathtracer/pkg/renderer"
)

// Format selects an image encoding
type Format string

const (
	FormatPPM Format = "ppm" // Plain text P3 pixmap
	FormatPNG Format = "png"
)

// ParseFormat maps a format name (case insensitive) to a Format
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case FormatPPM:
		return FormatPPM, nil
	case FormatPNG:
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want ppm or png)", name)
	}
}

// ContentType returns the MIME type for the format
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/x-portable-pixmap"
}

// Write encodes fb to w in the given format
func Write(w io.Writer, fb *renderer.Framebuffer, format Format) error {
	switch format {
	case FormatPPM:
		return WritePPM(w, fb)
	case FormatPNG:
		return WritePNG(w, fb)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// WritePPM writes fb as a plain text P3 pixmap: a "P3" line, "<width> <height>",
// "255", then one "r g b" line per pixel starting from the top row
func WritePPM(w io.Writer, fb *renderer.Framebuffer) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", fb.Width, fb.Height); err != nil {
		return fmt.Errorf("writing ppm header: %w", err)
	}

	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			r, g, b := renderer.ColorToRGB(fb.At(x, y))
			if _, err := fmt.Fprintf(bw, "%d %d %d\n", r, g, b); err != nil {
				return fmt.Errorf("writing ppm pixel (%d,%d): %w", x, y, err)
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing ppm output: %w", err)
	}
	return nil
}

// WritePNG writes fb as an 8-bit PNG using the same color conversion as WritePPM
func WritePNG(w io.Writer, fb *renderer.Framebuffer) error {
	if err := png.Encode(w, fb.ToRGBA()); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}
