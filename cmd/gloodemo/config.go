package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// config describes one demo run. Every field can be overridden by a flag.
type config struct {
	Driver  string // registered driver name: "soft" or "native"
	Backend string // native only: "vulkan" or "noop"
	Shape   []int  // initial (height, width)
	Resize  []int  // optional (height, width) applied before reading
	Format  string // color attachment: "color" or "rgba8"
	Depth   bool   // attach a depth render buffer
	Mode    string // read mode: "color", "depth" or "stencil"
	Alpha   bool
	Journal bool
	Output  string
}

func defaultConfig() config {
	return config{
		Driver:  "soft",
		Backend: "noop",
		Shape:   []int{480, 640},
		Format:  "color",
		Depth:   true,
		Mode:    "color",
		Alpha:   true,
		Journal: true,
		Output:  "gloo.png",
	}
}

// readConfig loads path over the defaults. Keys missing from the file keep
// their default values.
func readConfig(path string) (config, error) {
	conf := defaultConfig()
	meta, err := toml.DecodeFile(path, &conf)
	if err != nil {
		return conf, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return conf, fmt.Errorf("read config %s: unknown key %q", path, undecoded[0].String())
	}
	return conf, conf.validate()
}

func (c config) validate() error {
	if c.Driver == "" {
		return fmt.Errorf("config: driver is required")
	}
	if len(c.Shape) != 2 {
		return fmt.Errorf("config: shape must be [height, width], got %v", c.Shape)
	}
	if len(c.Resize) != 0 && len(c.Resize) != 2 {
		return fmt.Errorf("config: resize must be [height, width], got %v", c.Resize)
	}
	if _, err := encoderFor(c.Output); err != nil {
		return err
	}
	return nil
}

// parseShape parses "HxW" as used by the -shape and -resize flags.
func parseShape(s string) ([]int, error) {
	var h, w int
	if _, err := fmt.Sscanf(strings.ToLower(s), "%dx%d", &h, &w); err != nil {
		return nil, fmt.Errorf("shape %q: want HEIGHTxWIDTH", s)
	}
	return []int{h, w}, nil
}

func outputExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
