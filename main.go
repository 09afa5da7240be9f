package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/df07/go-pathtracer/pkg/output"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// options holds the parsed command line
type options struct {
	sceneName string
	sampling  scene.SamplingConfig
	workers   int
	seed      int64
	out       string
	format    output.Format
	set       map[string]bool // Flags given explicitly on the command line
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("pathtracer", flag.ContinueOnError)
	fs.SetOutput(stderr)

	defaults := scene.DefaultSamplingConfig()
	sceneName := fs.String("scene", "default", "Scene name: "+strings.Join(scene.Names(), ", "))
	width := fs.Int("width", defaults.Width, "Image width in pixels")
	aspect := fs.Float64("aspect", defaults.AspectRatio, "Aspect ratio (width / height)")
	samples := fs.Int("samples", defaults.SamplesPerPixel, "Samples per pixel")
	depth := fs.Int("depth", defaults.MaxDepth, "Maximum bounce depth")
	workers := fs.Int("workers", 0, "Number of render workers (0 = CPU count)")
	seed := fs.Int64("seed", 0, "Seed for scene generation and pixel sampling")
	out := fs.String("out", "", "Output file (default: stdout)")
	format := fs.String("format", "", "Output format: ppm or png (default: from -out extension, else ppm)")
	help := fs.Bool("help", false, "Show help information")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "Path Tracer")
		fmt.Fprintln(stderr, "Usage: pathtracer [options] > image.ppm")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Available scenes:")
		for _, info := range scene.ListAllScenes() {
			fmt.Fprintf(stderr, "  %-8s %dx%d\n", info.ID, info.Width, info.Height)
		}
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *help {
		fs.Usage()
		return nil, flag.ErrHelp
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	opts := &options{
		sceneName: *sceneName,
		sampling: scene.SamplingConfig{
			Width:           *width,
			AspectRatio:     *aspect,
			SamplesPerPixel: *samples,
			MaxDepth:        *depth,
		},
		workers: *workers,
		seed:    *seed,
		out:     *out,
		set:     make(map[string]bool),
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	var err error
	if opts.format, err = resolveFormat(*format, *out); err != nil {
		return nil, err
	}
	return opts, nil
}

// resolveFormat picks the explicit format, then the output extension, then PPM
func resolveFormat(format, out string) (output.Format, error) {
	if format != "" {
		return output.ParseFormat(format)
	}
	if ext := strings.TrimPrefix(filepath.Ext(out), "."); ext != "" {
		if f, err := output.ParseFormat(ext); err == nil {
			return f, nil
		}
	}
	return output.FormatPPM, nil
}

// applyOverrides replaces the scene's recommended sampling values with the
// flags the user actually set
func applyOverrides(sceneObj *scene.Scene, opts *options) {
	sampling := sceneObj.SamplingConfig
	if opts.set["width"] {
		sampling.Width = opts.sampling.Width
	}
	if opts.set["aspect"] {
		sampling.AspectRatio = opts.sampling.AspectRatio
	}
	if opts.set["samples"] {
		sampling.SamplesPerPixel = opts.sampling.SamplesPerPixel
	}
	if opts.set["depth"] {
		sampling.MaxDepth = opts.sampling.MaxDepth
	}
	sceneObj.SetSamplingConfig(sampling)
}

// run renders the scene selected by args and writes the image to stdout or -out.
// Progress goes to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	sceneObj, err := scene.New(opts.sceneName, opts.seed)
	if err != nil {
		return err
	}
	applyOverrides(sceneObj, opts)
	if err := sceneObj.Validate(); err != nil {
		return err
	}

	logger := log.New(stderr, "", 0)
	logger.Printf("Using %s scene (%d objects)\n", sceneObj.Name, sceneObj.GetPrimitiveCount())

	config := sceneObj.RenderConfig(opts.workers, opts.seed)
	if err := config.Validate(); err != nil {
		return err
	}

	raytracer := renderer.NewRaytracer(sceneObj.World, sceneObj.NewCamera(), config, logger)
	fb, stats, err := raytracer.Render(ctx)
	if err != nil {
		return err
	}
	logger.Printf("Samples per pixel: %.1f over %d tiles\n", stats.AverageSamples(), stats.TilesRendered)

	if opts.out == "" {
		return output.Write(stdout, fb, opts.format)
	}
	return writeFile(opts.out, fb, opts.format, logger)
}

func writeFile(path string, fb *renderer.Framebuffer, format output.Format, logger *log.Logger) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := output.Write(file, fb, format); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}

	logger.Printf("Render saved as %s\n", path)
	return nil
}
