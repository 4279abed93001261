package gloo

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/gloo/glir"
)

// Texture2D is a 2D texture usable as a color or depth attachment.
type Texture2D struct {
	object
	shape      Shape
	format     Format
	resizeable bool
}

// NewTexture2D creates a texture and queues its CREATE and SIZE. shape is
// (height, width) or (height, width, channels) with channels ignored.
// FormatNone selects FormatColor. Stencil formats are rejected: textures
// cannot back the stencil slot.
func NewTexture2D(ctx *Context, shape []int, format Format, resizeable bool) (*Texture2D, error) {
	s, err := parseShape(shape)
	if err != nil {
		return nil, err
	}
	if format == FormatNone {
		format = FormatColor
	}
	if format.IsStencil() {
		return nil, fmt.Errorf("%w: texture format %s", ErrInvalidFormat, format)
	}

	t := &Texture2D{resizeable: resizeable}
	if err := ctx.adopt(&t.object, t, glir.KindTexture); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.setSize(s, format); err != nil {
		return nil, err
	}
	return t, nil
}

func (*Texture2D) attachment() {}

// Shape returns the current (height, width).
func (t *Texture2D) Shape() Shape {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.shape
}

// Format returns the current format.
func (t *Texture2D) Format() Format {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.format
}

// Resizeable reports whether Resize is allowed.
func (t *Texture2D) Resizeable() bool {
	return t.resizeable
}

// Resize changes shape and, unless format is FormatNone, format. Previous
// contents are discarded.
func (t *Texture2D) Resize(shape []int, format Format) error {
	if !t.resizeable {
		return ErrImmutableResource
	}
	s, err := parseShape(shape)
	if err != nil {
		return err
	}
	if format.IsStencil() {
		return fmt.Errorf("%w: texture format %s", ErrInvalidFormat, format)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if format == FormatNone {
		format = t.format
	}
	return t.setSize(s, format)
}

func (t *Texture2D) setSize(s Shape, format Format) error {
	if err := t.emit(glir.SizeCommand{Object: t.id, Shape: s, Format: format}); err != nil {
		return err
	}
	t.shape, t.format = s, format
	return nil
}

// SetData uploads pixels to region. data holds Height rows of
// Width*BytesPerPixel bytes and is copied before SetData returns.
func (t *Texture2D) SetData(region Region, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := checkUpload(t.shape, t.format, region, data); err != nil {
		return err
	}
	return t.emit(glir.NewDataCommand(t.id, region, data))
}

// SetImage uploads img as the full texture contents, converting it to
// RGBA8. A texture whose shape differs from the image bounds is resized
// first, which requires it to be resizeable.
func (t *Texture2D) SetImage(img image.Image) error {
	b := img.Bounds()
	if b.Empty() {
		return fmt.Errorf("%w: empty image", ErrInvalidShape)
	}
	s := Shape{Height: b.Dy(), Width: b.Dx()}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !isRGBA8(t.format) {
		return fmt.Errorf("%w: cannot store an image in %s", ErrInvalidFormat, t.format)
	}
	if s != t.shape {
		if !t.resizeable {
			return ErrImmutableResource
		}
		if err := t.setSize(s, t.format); err != nil {
			return err
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return t.emit(glir.NewDataCommand(t.id, glir.Full(s), dst.Pix))
}

// SetImageScaled scales img to the current texture shape with the given
// interpolator (draw.NearestNeighbor, draw.ApproxBiLinear, draw.BiLinear,
// draw.CatmullRom) and uploads it. A nil interpolator selects BiLinear.
func (t *Texture2D) SetImageScaled(img image.Image, scaler draw.Interpolator) error {
	if scaler == nil {
		scaler = draw.BiLinear
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !isRGBA8(t.format) {
		return fmt.Errorf("%w: cannot store an image in %s", ErrInvalidFormat, t.format)
	}
	dst := image.NewRGBA(image.Rect(0, 0, t.shape.Width, t.shape.Height))
	scaler.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return t.emit(glir.NewDataCommand(t.id, glir.Full(t.shape), dst.Pix))
}

func (t *Texture2D) restate() (state, attach []glir.Command) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return []glir.Command{
		glir.CreateCommand{Object: t.id, Kind: t.kind},
		glir.SizeCommand{Object: t.id, Shape: t.shape, Format: t.format},
	}, nil
}

func isRGBA8(f Format) bool {
	return f == FormatColor || f == glir.FormatRGBA8
}
