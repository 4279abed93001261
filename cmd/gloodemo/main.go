// Command gloodemo renders a gradient into an offscreen framebuffer through
// a gloo driver, optionally resizes it, and writes the read-back pixels to
// an image file.
//
// Usage:
//
//	gloodemo -config demo.toml
//	gloodemo -driver native -backend noop -shape 480x640 -resize 240x320 -output out.tiff
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/gloo"
	"github.com/gogpu/gloo/glir"

	// Register drivers.
	_ "github.com/gogpu/gloo/glir/drivers/native"
	_ "github.com/gogpu/gloo/glir/drivers/soft"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML config file")
		driver     = flag.String("driver", "", "driver name ("+fmt.Sprint(glir.Drivers())+")")
		backend    = flag.String("backend", "", "native backend: vulkan or noop")
		shape      = flag.String("shape", "", "initial size as HEIGHTxWIDTH")
		resize     = flag.String("resize", "", "resize to HEIGHTxWIDTH before reading")
		format     = flag.String("format", "", "color format: color or rgba8")
		mode       = flag.String("mode", "", "read mode: color, depth or stencil")
		alpha      = flag.Bool("alpha", true, "keep the alpha channel")
		output     = flag.String("output", "", "output file (.png, .bmp, .tiff)")
		verbose    = flag.Bool("v", false, "log command traffic")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	gloo.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	conf := defaultConfig()
	if *configPath != "" {
		var err error
		if conf, err = readConfig(*configPath); err != nil {
			log.Fatal(err)
		}
	}

	// Flags given explicitly override the file.
	var flagErr error
	flag.Visit(func(f *flag.Flag) {
		var err error
		switch f.Name {
		case "driver":
			conf.Driver = *driver
		case "backend":
			conf.Backend = *backend
		case "shape":
			conf.Shape, err = parseShape(*shape)
		case "resize":
			conf.Resize, err = parseShape(*resize)
		case "format":
			conf.Format = *format
		case "mode":
			conf.Mode = *mode
		case "alpha":
			conf.Alpha = *alpha
		case "output":
			conf.Output = *output
		}
		if err != nil && flagErr == nil {
			flagErr = err
		}
	})
	if flagErr != nil {
		log.Fatal(flagErr)
	}
	if err := conf.validate(); err != nil {
		log.Fatal(err)
	}

	if err := run(conf); err != nil {
		log.Fatalf("gloodemo: %v", err)
	}
	log.Printf("Saved %s", conf.Output)
}

func run(conf config) error {
	colorFormat, err := parseColorFormat(conf.Format)
	if err != nil {
		return err
	}
	readMode, err := gloo.ParseSlot(conf.Mode)
	if err != nil {
		return err
	}

	provider, closeProvider, err := openProvider(conf)
	if err != nil {
		return err
	}
	defer closeProvider()

	// Objects are built before a driver exists; their commands wait in the
	// queue until Bind.
	ctx := gloo.NewContext(
		gloo.WithJournal(conf.Journal),
		gloo.WithErrorHandler(func(err error) { slog.Warn("driver error", "err", err) }),
	)
	defer func() {
		if err := ctx.Close(); err != nil {
			slog.Warn("close", "err", err)
		}
	}()

	tex, err := gloo.NewTexture2D(ctx, conf.Shape, colorFormat, true)
	if err != nil {
		return err
	}
	var depth gloo.Attachment
	if conf.Depth {
		rb, err := gloo.NewRenderBuffer(ctx, conf.Shape, gloo.FormatDepth, true)
		if err != nil {
			return err
		}
		depth = rb
	}
	fb, err := gloo.NewFrameBuffer(ctx, tex, depth, nil, true)
	if err != nil {
		return err
	}

	src := gradient(conf.Shape[0], conf.Shape[1])
	if err := tex.SetImage(src); err != nil {
		return err
	}

	d, err := glir.Open(conf.Driver, provider)
	if err != nil {
		return err
	}
	slog.Info("binding driver", "driver", conf.Driver, "queued", ctx.Queue().Len())
	if err := ctx.Bind(d); err != nil {
		return err
	}

	if len(conf.Resize) == 2 {
		if err := fb.Resize(conf.Resize); err != nil {
			return err
		}
		// Resizing discards contents.
		if err := tex.SetImageScaled(src, nil); err != nil {
			return err
		}
	}

	var pix *gloo.Pixels
	err = fb.Use(func() error {
		var err error
		pix, err = fb.Read(readMode, conf.Alpha)
		return err
	})
	if err != nil {
		return err
	}
	s := pix.Shape()
	slog.Info("read back", "height", s[0], "width", s[1], "channels", s[2])
	return writeImage(conf.Output, pix.RGBA())
}

func parseColorFormat(name string) (gloo.Format, error) {
	switch name {
	case "", "color":
		return gloo.FormatColor, nil
	case "rgba8":
		return glir.FormatRGBA8, nil
	default:
		return gloo.FormatNone, fmt.Errorf("unsupported color format %q", name)
	}
}

// gradient returns a test image: red grows left to right, green top to
// bottom.
func gradient(h, w int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x * 255 / max(w-1, 1)), //nolint:gosec // G115: bounded by 255
				G: uint8(y * 255 / max(h-1, 1)), //nolint:gosec // G115: bounded by 255
				B: 0x80,
				A: 0xFF,
			})
		}
	}
	return img
}
