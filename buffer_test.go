package gloo

import (
	"errors"
	"image/color"
	"testing"

	"github.com/gogpu/gloo/glir"
)

func TestBuffer(t *testing.T) {
	ctx, d := newBoundContext(t)

	b, err := NewBuffer(ctx, UsageIndex, 16)
	if err != nil {
		t.Fatal(err)
	}
	if b.Size() != 16 || b.Usage() != UsageIndex || b.Kind() != glir.KindBuffer {
		t.Errorf("buffer = %d bytes %s %s", b.Size(), b.Usage(), b.Kind())
	}

	tests := []struct {
		name   string
		offset int
		n      int
		want   error
	}{
		{"start", 0, 4, nil},
		{"end", 12, 4, nil},
		{"whole", 0, 16, nil},
		{"overflow", 14, 4, ErrRegionOutOfBounds},
		{"negative", -1, 2, ErrRegionOutOfBounds},
		{"empty", 0, 0, ErrRegionOutOfBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := b.SetData(tt.offset, make([]byte, tt.n)); !errors.Is(err, tt.want) {
				t.Errorf("SetData(%d, %d bytes) error = %v, want %v", tt.offset, tt.n, err, tt.want)
			}
		})
	}

	if err := b.Resize(0); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("Resize(0) error = %v, want ErrInvalidShape", err)
	}
	if err := b.Resize(32); err != nil {
		t.Fatal(err)
	}
	if err := b.SetData(28, []byte{1, 2, 3, 4}); err != nil {
		t.Errorf("SetData after grow error = %v", err)
	}

	if err := ctx.Flush(); err != nil {
		t.Fatal(err)
	}
	if d.Stats().Live != 1 {
		t.Errorf("driver holds %d resources, want 1", d.Stats().Live)
	}
	if _, err := NewBuffer(ctx, UsageVertex, 0); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("NewBuffer(0) error = %v, want ErrInvalidShape", err)
	}
}

func TestProgram(t *testing.T) {
	ctx := NewContext()
	defer ctx.Close()

	if _, err := NewProgram(ctx, ""); !errors.Is(err, ErrEmptySource) {
		t.Errorf("NewProgram(\"\") error = %v, want ErrEmptySource", err)
	}
	p, err := NewProgram(ctx, "@vertex fn vs() -> @builtin(position) vec4<f32> { return vec4<f32>(); }")
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SetSource(""); !errors.Is(err, ErrEmptySource) {
		t.Errorf("SetSource(\"\") error = %v, want ErrEmptySource", err)
	}
	if err := p.SetSource("// replaced"); err != nil {
		t.Fatal(err)
	}
	if p.Source() != "// replaced" {
		t.Errorf("Source() = %q", p.Source())
	}

	cmds := ctx.Queue().Drain()
	last, ok := cmds[len(cmds)-1].(glir.DataCommand)
	if !ok || string(last.Data) != "// replaced" || last.Region != (Region{}) {
		t.Errorf("last command = %#v, want program source DATA", cmds[len(cmds)-1])
	}
}

func TestPixels(t *testing.T) {
	rgba := []byte{
		1, 2, 3, 4, 5, 6, 7, 8,
		9, 10, 11, 12, 13, 14, 15, 16,
	}
	p := newPixels(Shape{Height: 2, Width: 2}, rgba, false)
	if p.Shape() != [3]int{2, 2, 3} {
		t.Fatalf("Shape() = %v", p.Shape())
	}
	if got := p.At(1, 0); string(got) != string([]byte{9, 10, 11}) {
		t.Errorf("At(1, 0) = %v", got)
	}

	img := p.RGBA()
	if c := img.RGBAAt(1, 1); c != (color.RGBA{R: 13, G: 14, B: 15, A: 255}) {
		t.Errorf("RGBAAt(1, 1) = %v", c)
	}

	full := newPixels(Shape{Height: 2, Width: 2}, rgba, true)
	if got := full.RGBA().Pix; string(got) != string(rgba) {
		t.Errorf("RGBA().Pix = %v", got)
	}
}
