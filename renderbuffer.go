package gloo

import (
	"fmt"

	"github.com/gogpu/gloo/glir"
)

// RenderBuffer is a 2D color, depth or stencil buffer usable as a
// framebuffer attachment. Unlike Texture2D it cannot be sampled.
type RenderBuffer struct {
	object
	shape      Shape
	format     Format
	resizeable bool
}

// NewRenderBuffer creates a render buffer and queues its CREATE and SIZE.
// shape is (height, width) or (height, width, channels) with channels
// ignored. format is required; any non-zero GL format code is accepted.
//
// Construction is allowed for non-resizeable buffers; only later Resize
// calls are rejected.
func NewRenderBuffer(ctx *Context, shape []int, format Format, resizeable bool) (*RenderBuffer, error) {
	s, err := parseShape(shape)
	if err != nil {
		return nil, err
	}
	if format == FormatNone {
		return nil, ErrMissingFormat
	}

	rb := &RenderBuffer{resizeable: resizeable}
	if err := ctx.adopt(&rb.object, rb, glir.KindRenderBuffer); err != nil {
		return nil, err
	}
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if err := rb.setSize(s, format); err != nil {
		return nil, err
	}
	return rb, nil
}

// NewColorBuffer creates a GL_RGBA render buffer.
//
// Deprecated: Use NewRenderBuffer with FormatColor.
func NewColorBuffer(ctx *Context, shape []int, resizeable bool) (*RenderBuffer, error) {
	ctx.logger.Warn("gloo: NewColorBuffer is deprecated, use NewRenderBuffer")
	return NewRenderBuffer(ctx, shape, FormatColor, resizeable)
}

// NewDepthBuffer creates a GL_DEPTH_COMPONENT16 render buffer.
//
// Deprecated: Use NewRenderBuffer with FormatDepth.
func NewDepthBuffer(ctx *Context, shape []int, resizeable bool) (*RenderBuffer, error) {
	ctx.logger.Warn("gloo: NewDepthBuffer is deprecated, use NewRenderBuffer")
	return NewRenderBuffer(ctx, shape, FormatDepth, resizeable)
}

// NewStencilBuffer creates a GL_STENCIL_INDEX8 render buffer.
//
// Deprecated: Use NewRenderBuffer with FormatStencil.
func NewStencilBuffer(ctx *Context, shape []int, resizeable bool) (*RenderBuffer, error) {
	ctx.logger.Warn("gloo: NewStencilBuffer is deprecated, use NewRenderBuffer")
	return NewRenderBuffer(ctx, shape, FormatStencil, resizeable)
}

func (*RenderBuffer) attachment() {}

// Shape returns the current (height, width).
func (rb *RenderBuffer) Shape() Shape {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.shape
}

// Format returns the current format.
func (rb *RenderBuffer) Format() Format {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.format
}

// Resizeable reports whether Resize is allowed.
func (rb *RenderBuffer) Resizeable() bool {
	return rb.resizeable
}

// Resize changes shape and, unless format is FormatNone, format. Previous
// contents are discarded. On error the buffer is unchanged.
func (rb *RenderBuffer) Resize(shape []int, format Format) error {
	if !rb.resizeable {
		return ErrImmutableResource
	}
	s, err := parseShape(shape)
	if err != nil {
		return err
	}

	rb.mu.Lock()
	defer rb.mu.Unlock()
	if format == FormatNone {
		format = rb.format
	}
	if format == FormatNone {
		return ErrMissingFormat
	}
	return rb.setSize(s, format)
}

// setSize queues SIZE and records the new state. The caller holds rb.mu.
func (rb *RenderBuffer) setSize(s Shape, format Format) error {
	if err := rb.emit(glir.SizeCommand{Object: rb.id, Shape: s, Format: format}); err != nil {
		return err
	}
	rb.shape, rb.format = s, format
	return nil
}

// SetData uploads pixels to region. data holds Height rows of
// Width*BytesPerPixel bytes and is copied before SetData returns.
func (rb *RenderBuffer) SetData(region Region, data []byte) error {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if err := checkUpload(rb.shape, rb.format, region, data); err != nil {
		return err
	}
	return rb.emit(glir.NewDataCommand(rb.id, region, data))
}

func (rb *RenderBuffer) restate() (state, attach []glir.Command) {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return []glir.Command{
		glir.CreateCommand{Object: rb.id, Kind: rb.kind},
		glir.SizeCommand{Object: rb.id, Shape: rb.shape, Format: rb.format},
	}, nil
}

// checkUpload validates an upload of data to region of a shape x format
// image.
func checkUpload(shape Shape, format Format, region Region, data []byte) error {
	if region.Width <= 0 || region.Height <= 0 || !shape.Contains(region) {
		return fmt.Errorf("%w: %+v in %s", ErrRegionOutOfBounds, region, shape)
	}
	if want := region.Width * region.Height * format.BytesPerPixel(); len(data) != want {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrDataSize, len(data), want)
	}
	return nil
}
