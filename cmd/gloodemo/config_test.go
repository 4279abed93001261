package main

import (
	"image"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadConfig(t *testing.T) {
	path := writeFile(t, "demo.toml", `
Driver = "native"
Backend = "noop"
Shape = [240, 320]
Resize = [120, 160]
Mode = "depth"
Alpha = false
Output = "out.tiff"
`)
	conf, err := readConfig(path)
	if err != nil {
		t.Fatalf("readConfig: %v", err)
	}
	want := defaultConfig()
	want.Driver = "native"
	want.Backend = "noop"
	want.Shape = []int{240, 320}
	want.Resize = []int{120, 160}
	want.Mode = "depth"
	want.Alpha = false
	want.Output = "out.tiff"
	if !reflect.DeepEqual(conf, want) {
		t.Errorf("config = %+v, want %+v", conf, want)
	}
}

func TestReadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", `Colour = "red"`},
		{"bad shape", `Shape = [1, 2, 3]`},
		{"bad resize", `Resize = [1]`},
		{"bad output", `Output = "out.jpg"`},
		{"empty driver", `Driver = ""`},
		{"syntax", `Driver = `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := readConfig(writeFile(t, "bad.toml", tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := readConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseShape(t *testing.T) {
	got, err := parseShape("480x640")
	if err != nil || !reflect.DeepEqual(got, []int{480, 640}) {
		t.Errorf("parseShape = %v, %v", got, err)
	}
	if _, err := parseShape("480"); err == nil {
		t.Error("expected error")
	}
}

func TestRun(t *testing.T) {
	for _, ext := range []string{".png", ".bmp", ".tiff"} {
		t.Run(ext, func(t *testing.T) {
			conf := defaultConfig()
			conf.Shape = []int{48, 64}
			conf.Resize = []int{24, 32}
			conf.Output = filepath.Join(t.TempDir(), "out"+ext)

			if err := run(conf); err != nil {
				t.Fatalf("run: %v", err)
			}
			f, err := os.Open(conf.Output)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			cfg, _, err := image.DecodeConfig(f)
			if ext == ".png" {
				if err != nil {
					t.Fatalf("DecodeConfig: %v", err)
				}
				if cfg.Width != 32 || cfg.Height != 24 {
					t.Errorf("decoded %dx%d, want 32x24", cfg.Width, cfg.Height)
				}
			}
		})
	}
}

func TestRunStencilMode(t *testing.T) {
	conf := defaultConfig()
	conf.Shape = []int{8, 8}
	conf.Mode = "stencil"
	conf.Output = filepath.Join(t.TempDir(), "out.png")
	if err := run(conf); err == nil {
		t.Error("expected error reading a missing stencil attachment")
	}
}
