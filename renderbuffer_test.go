package gloo

import (
	"errors"
	"testing"

	"github.com/gogpu/gloo/glir"
)

func TestRenderBufferResizeShape(t *testing.T) {
	tests := []struct {
		name  string
		shape []int
		want  Shape
	}{
		{"2d", []int{240, 320}, Shape{Height: 240, Width: 320}},
		{"3d ignores channels", []int{240, 320, 4}, Shape{Height: 240, Width: 320}},
		{"single pixel", []int{1, 1}, Shape{Height: 1, Width: 1}},
		{"tall 3d", []int{640, 8, 1}, Shape{Height: 640, Width: 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewContext()
			defer ctx.Close()

			rb, err := NewRenderBuffer(ctx, []int{4, 4}, FormatColor, true)
			if err != nil {
				t.Fatalf("NewRenderBuffer() error = %v", err)
			}
			if err := rb.Resize(tt.shape, FormatNone); err != nil {
				t.Fatalf("Resize(%v) error = %v", tt.shape, err)
			}
			if got := rb.Shape(); got != tt.want {
				t.Errorf("Shape() = %v, want %v", got, tt.want)
			}
			if got := rb.Format(); got != FormatColor {
				t.Errorf("Format() = %v, want color (reused)", got)
			}
		})
	}
}

func TestRenderBufferInvalidShape(t *testing.T) {
	ctx := NewContext()
	defer ctx.Close()

	rb, err := NewRenderBuffer(ctx, []int{4, 4}, FormatColor, true)
	if err != nil {
		t.Fatal(err)
	}
	for _, shape := range [][]int{nil, {5}, {1, 2, 3, 4}, {0, 5}, {5, -1}, {3, 3, 0}} {
		if err := rb.Resize(shape, FormatNone); !errors.Is(err, ErrInvalidShape) {
			t.Errorf("Resize(%v) error = %v, want ErrInvalidShape", shape, err)
		}
		if _, err := NewRenderBuffer(ctx, shape, FormatColor, true); !errors.Is(err, ErrInvalidShape) {
			t.Errorf("NewRenderBuffer(%v) error = %v, want ErrInvalidShape", shape, err)
		}
	}
	if got := rb.Shape(); got != (Shape{Height: 4, Width: 4}) {
		t.Errorf("Shape() = %v after failed resizes, want (4, 4)", got)
	}
}

func TestRenderBufferImmutable(t *testing.T) {
	ctx := NewContext()
	defer ctx.Close()

	rb, err := NewRenderBuffer(ctx, []int{4, 6}, FormatDepth, false)
	if err != nil {
		t.Fatalf("construction of a non-resizeable buffer must succeed: %v", err)
	}
	queued := ctx.Queue().Len()

	for _, shape := range [][]int{{8, 8}, {4, 6}, {1, 2, 3}, {0}} {
		if err := rb.Resize(shape, FormatColor); !errors.Is(err, ErrImmutableResource) {
			t.Errorf("Resize(%v) error = %v, want ErrImmutableResource", shape, err)
		}
	}
	if got := rb.Shape(); got != (Shape{Height: 4, Width: 6}) {
		t.Errorf("Shape() = %v, want (4, 6)", got)
	}
	if got := rb.Format(); got != FormatDepth {
		t.Errorf("Format() = %v, want depth", got)
	}
	if got := ctx.Queue().Len(); got != queued {
		t.Errorf("queue grew from %d to %d on rejected resizes", queued, got)
	}
}

func TestRenderBufferFormat(t *testing.T) {
	ctx := NewContext()
	defer ctx.Close()

	if _, err := NewRenderBuffer(ctx, []int{2, 2}, FormatNone, true); !errors.Is(err, ErrMissingFormat) {
		t.Errorf("NewRenderBuffer(FormatNone) error = %v, want ErrMissingFormat", err)
	}

	rb, err := NewRenderBuffer(ctx, []int{2, 2}, Format(0x8D62), true) // GL_RGB565, passed through
	if err != nil {
		t.Fatal(err)
	}
	if err := rb.Resize([]int{3, 3}, FormatStencil); err != nil {
		t.Fatal(err)
	}
	if got := rb.Format(); got != FormatStencil {
		t.Errorf("Format() = %v, want stencil", got)
	}
}

func TestRenderBufferQueuesCreateThenSize(t *testing.T) {
	ctx := NewContext()
	defer ctx.Close()

	rb, err := NewRenderBuffer(ctx, []int{3, 5}, FormatColor, true)
	if err != nil {
		t.Fatal(err)
	}
	cmds := ctx.Queue().Drain()
	if len(cmds) != 2 {
		t.Fatalf("queued %d commands, want 2", len(cmds))
	}
	if c, ok := cmds[0].(glir.CreateCommand); !ok || c.Object != rb.ID() || c.Kind != glir.KindRenderBuffer {
		t.Errorf("first command = %#v, want CREATE of %s", cmds[0], rb.ID())
	}
	want := glir.SizeCommand{Object: rb.ID(), Shape: Shape{Height: 3, Width: 5}, Format: FormatColor}
	if cmds[1] != glir.Command(want) {
		t.Errorf("second command = %#v, want %#v", cmds[1], want)
	}
}

func TestRenderBufferSetData(t *testing.T) {
	ctx := NewContext()
	defer ctx.Close()

	rb, err := NewRenderBuffer(ctx, []int{2, 3}, FormatColor, true)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name   string
		region Region
		n      int
		want   error
	}{
		{"full", Region{Width: 3, Height: 2}, 24, nil},
		{"corner", Region{X: 2, Y: 1, Width: 1, Height: 1}, 4, nil},
		{"past right edge", Region{X: 2, Width: 2, Height: 1}, 8, ErrRegionOutOfBounds},
		{"negative origin", Region{X: -1, Width: 1, Height: 1}, 4, ErrRegionOutOfBounds},
		{"empty", Region{}, 0, ErrRegionOutOfBounds},
		{"short payload", Region{Width: 1, Height: 1}, 3, ErrDataSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rb.SetData(tt.region, make([]byte, tt.n))
			if !errors.Is(err, tt.want) {
				t.Errorf("SetData() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDeprecatedConstructorsFormats(t *testing.T) {
	ctx := NewContext()
	defer ctx.Close()

	tests := []struct {
		name string
		fn   func(*Context, []int, bool) (*RenderBuffer, error)
		want Format
	}{
		{"color", NewColorBuffer, FormatColor},
		{"depth", NewDepthBuffer, FormatDepth},
		{"stencil", NewStencilBuffer, FormatStencil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb, err := tt.fn(ctx, []int{2, 2}, true)
			if err != nil {
				t.Fatal(err)
			}
			if rb.Format() != tt.want {
				t.Errorf("Format() = %v, want %v", rb.Format(), tt.want)
			}
		})
	}
}
