// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"errors"
	"testing"

	"github.com/gogpu/wgpu/hal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/gloo/glir"
)

// newNoopDriver opens a driver on the noop HAL backend.
func newNoopDriver(t *testing.T, opts ...Option) *Driver {
	t.Helper()
	dev, err := OpenDevice("noop")
	require.NoError(t, err)
	t.Cleanup(dev.Destroy)

	d, err := open(dev)
	require.NoError(t, err)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func statusOf(t *testing.T, err error) uint32 {
	t.Helper()
	var se *glir.StatusError
	require.True(t, errors.As(err, &se), "want *glir.StatusError, got %v", err)
	return se.Status
}

func TestRegistered(t *testing.T) {
	assert.Contains(t, glir.Drivers(), "native")
}

func TestOpenRejectsForeignProvider(t *testing.T) {
	_, err := Open(struct{}{})
	assert.Error(t, err)
}

func TestOpenDeviceUnknownBackend(t *testing.T) {
	_, err := OpenDevice("metal2")
	assert.Error(t, err)
}

func TestCreateResizeDestroy(t *testing.T) {
	d := newNoopDriver(t)

	rb, err := d.Create(1, glir.KindRenderBuffer)
	require.NoError(t, err)
	tex, err := d.Create(2, glir.KindTexture)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Live())

	require.NoError(t, d.Resize(rb, glir.Shape{Height: 4, Width: 6}, glir.FormatColor))
	require.NoError(t, d.Resize(tex, glir.Shape{Height: 4, Width: 6}, glir.FormatDepth))
	assert.Equal(t, glir.Shape{Height: 4, Width: 6}, rb.(*resource).shape)
	assert.NotNil(t, rb.(*resource).view)

	// Resizing replaces the storage.
	require.NoError(t, d.Resize(rb, glir.Shape{Height: 2, Width: 3}, glir.FormatColor))
	assert.Equal(t, glir.Shape{Height: 2, Width: 3}, rb.(*resource).shape)

	d.Destroy(rb)
	d.Destroy(rb)
	assert.Equal(t, 1, d.Live())
	assert.Nil(t, rb.(*resource).tex)

	_, err = d.ReadPixels(rb, glir.Shape{Height: 2, Width: 3})
	assert.Equal(t, glir.StatusInvalidOperation, statusOf(t, err))
}

func TestResizeValidation(t *testing.T) {
	d := newNoopDriver(t)
	tex, err := d.Create(1, glir.KindTexture)
	require.NoError(t, err)
	fb, err := d.Create(2, glir.KindFrameBuffer)
	require.NoError(t, err)

	err = d.Resize(tex, glir.Shape{}, glir.FormatColor)
	assert.Equal(t, glir.StatusInvalidValue, statusOf(t, err))

	err = d.Resize(tex, glir.Shape{Height: 1, Width: 1}, glir.FormatStencil)
	assert.Equal(t, glir.StatusInvalidEnum, statusOf(t, err))

	err = d.Resize(tex, glir.Shape{Height: 1, Width: 1}, glir.Format(0x1234))
	assert.Equal(t, glir.StatusInvalidEnum, statusOf(t, err))

	err = d.Resize(fb, glir.Shape{Height: 1, Width: 1}, glir.FormatColor)
	assert.Equal(t, glir.StatusInvalidOperation, statusOf(t, err))
}

func TestBufferUpload(t *testing.T) {
	d := newNoopDriver(t)
	buf, err := d.Create(1, glir.KindBuffer)
	require.NoError(t, err)

	err = d.Upload(buf, glir.Region{Width: 1, Height: 1}, []byte{1})
	assert.Equal(t, glir.StatusInvalidOperation, statusOf(t, err))

	require.NoError(t, d.Resize(buf, glir.Shape{Height: 1, Width: 7}, glir.FormatNone))
	r := buf.(*resource)
	assert.Len(t, r.shadow, 8)

	require.NoError(t, d.Upload(buf, glir.Region{X: 3, Width: 3, Height: 1}, []byte{7, 8, 9}))
	assert.Equal(t, []byte{0, 0, 0, 7, 8, 9, 0, 0}, r.shadow)

	err = d.Upload(buf, glir.Region{X: 6, Width: 2, Height: 1}, []byte{1, 2})
	assert.Equal(t, glir.StatusInvalidValue, statusOf(t, err))
}

func TestTextureUpload(t *testing.T) {
	d := newNoopDriver(t)
	rb, err := d.Create(1, glir.KindRenderBuffer)
	require.NoError(t, err)
	require.NoError(t, d.Resize(rb, glir.Shape{Height: 2, Width: 2}, glir.FormatRGBA8))

	require.NoError(t, d.Upload(rb, glir.Region{X: 1, Y: 1, Width: 1, Height: 1}, []byte{1, 2, 3, 4}))

	err = d.Upload(rb, glir.Region{Width: 2, Height: 2}, []byte{1, 2, 3})
	assert.Equal(t, glir.StatusInvalidValue, statusOf(t, err))

	depth, err := d.Create(2, glir.KindRenderBuffer)
	require.NoError(t, err)
	require.NoError(t, d.Resize(depth, glir.Shape{Height: 2, Width: 2}, glir.FormatDepth))
	err = d.Upload(depth, glir.Region{Width: 1, Height: 1}, []byte{0, 0})
	assert.Equal(t, glir.StatusInvalidOperation, statusOf(t, err))
}

func TestReadPixels(t *testing.T) {
	d := newNoopDriver(t)
	rb, err := d.Create(1, glir.KindRenderBuffer)
	require.NoError(t, err)
	shape := glir.Shape{Height: 3, Width: 5}
	require.NoError(t, d.Resize(rb, shape, glir.FormatColor))

	pix, err := d.ReadPixels(rb, shape)
	require.NoError(t, err)
	assert.Len(t, pix, shape.Pixels()*4)

	_, err = d.ReadPixels(rb, glir.Shape{Height: 5, Width: 3})
	assert.Equal(t, glir.StatusInvalidValue, statusOf(t, err))

	depth, err := d.Create(2, glir.KindRenderBuffer)
	require.NoError(t, err)
	require.NoError(t, d.Resize(depth, shape, glir.FormatDepth))
	_, err = d.ReadPixels(depth, shape)
	assert.Equal(t, glir.StatusInvalidOperation, statusOf(t, err))
}

func TestCheckFramebuffer(t *testing.T) {
	d := newNoopDriver(t)
	mk := func(id glir.ID, shape glir.Shape, format glir.Format) glir.Handle {
		h, err := d.Create(id, glir.KindRenderBuffer)
		require.NoError(t, err)
		require.NoError(t, d.Resize(h, shape, format))
		return h
	}
	small := glir.Shape{Height: 2, Width: 2}

	fb, err := d.Create(10, glir.KindFrameBuffer)
	require.NoError(t, err)
	assert.Equal(t, glir.StatusFramebufferMissingAttachment, statusOf(t, d.CheckFramebuffer(fb)))

	color := mk(1, small, glir.FormatColor)
	require.NoError(t, d.Attach(fb, glir.SlotColor, color))
	require.NoError(t, d.CheckFramebuffer(fb))

	depth := mk(2, glir.Shape{Height: 4, Width: 4}, glir.FormatDepth)
	require.NoError(t, d.Attach(fb, glir.SlotDepth, depth))
	assert.Equal(t, glir.StatusFramebufferIncompleteDimensions, statusOf(t, d.CheckFramebuffer(fb)))

	require.NoError(t, d.Resize(depth, small, glir.FormatDepth))
	require.NoError(t, d.CheckFramebuffer(fb))

	stencil := mk(3, small, glir.FormatStencil)
	require.NoError(t, d.Attach(fb, glir.SlotStencil, stencil))
	assert.Equal(t, glir.StatusFramebufferUnsupported, statusOf(t, d.CheckFramebuffer(fb)))

	require.NoError(t, d.Attach(fb, glir.SlotDepth, nil))
	require.NoError(t, d.CheckFramebuffer(fb))

	unsized, err := d.Create(4, glir.KindRenderBuffer)
	require.NoError(t, err)
	require.NoError(t, d.Attach(fb, glir.SlotColor, unsized))
	assert.Equal(t, glir.StatusFramebufferIncompleteAttachment, statusOf(t, d.CheckFramebuffer(fb)))
}

func TestRenderPassDescriptor(t *testing.T) {
	d := newNoopDriver(t, WithLabel("test"))
	shape := glir.Shape{Height: 8, Width: 8}

	color, err := d.Create(1, glir.KindTexture)
	require.NoError(t, err)
	require.NoError(t, d.Resize(color, shape, glir.FormatColor))
	depth, err := d.Create(2, glir.KindRenderBuffer)
	require.NoError(t, err)
	require.NoError(t, d.Resize(depth, shape, glir.FormatDepth))
	fb, err := d.Create(3, glir.KindFrameBuffer)
	require.NoError(t, err)

	_, err = d.RenderPassDescriptor(fb)
	require.Error(t, err)

	require.NoError(t, d.Attach(fb, glir.SlotColor, color))
	require.NoError(t, d.Attach(fb, glir.SlotDepth, depth))

	desc, err := d.RenderPassDescriptor(fb)
	require.NoError(t, err)
	assert.Equal(t, "test_FrameBuffer_3_pass", desc.Label)
	require.Len(t, desc.ColorAttachments, 1)
	assert.Equal(t, color.(*resource).view, desc.ColorAttachments[0].View)
	require.NotNil(t, desc.DepthStencilAttachment)
	assert.Equal(t, depth.(*resource).view, desc.DepthStencilAttachment.View)
}

func TestProgramCompile(t *testing.T) {
	d := newNoopDriver(t)
	prog, err := d.Create(1, glir.KindProgram)
	require.NoError(t, err)

	err = d.Upload(prog, glir.Region{}, nil)
	assert.Equal(t, glir.StatusInvalidValue, statusOf(t, err))

	err = d.Upload(prog, glir.Region{}, []byte("this is not wgsl {"))
	assert.Equal(t, glir.StatusInvalidOperation, statusOf(t, err))
	assert.Nil(t, d.ShaderModule(prog))

	const src = `
@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(f32(i), 0.0, 0.0, 1.0);
}
`
	if _, err := compileWGSL(src); err != nil {
		t.Skipf("WGSL compiler unavailable: %v", err)
	}
	require.NoError(t, d.Upload(prog, glir.Region{}, []byte(src)))
	assert.Positive(t, prog.(*resource).words)
}

func TestLostDevice(t *testing.T) {
	d := newNoopDriver(t)
	rb, err := d.Create(1, glir.KindRenderBuffer)
	require.NoError(t, err)

	err = d.lose("test")
	assert.ErrorIs(t, err, glir.ErrContextLost)

	_, err = d.Create(2, glir.KindTexture)
	assert.ErrorIs(t, err, glir.ErrContextLost)
	assert.ErrorIs(t, d.Resize(rb, glir.Shape{Height: 1, Width: 1}, glir.FormatColor), glir.ErrContextLost)
	assert.ErrorIs(t, d.CheckFramebuffer(rb), glir.ErrContextLost)
}

func TestClose(t *testing.T) {
	d := newNoopDriver(t)
	for i := 1; i <= 3; i++ {
		h, err := d.Create(glir.ID(i), glir.KindRenderBuffer)
		require.NoError(t, err)
		require.NoError(t, d.Resize(h, glir.Shape{Height: 1, Width: 1}, glir.FormatColor))
	}
	require.NoError(t, d.Close())
	assert.Zero(t, d.Live())
}

func TestInterpreterOnNoop(t *testing.T) {
	d := newNoopDriver(t)
	var reported []error
	in := glir.NewInterpreter(d, glir.WithErrorHandler(func(err error) { reported = append(reported, err) }))

	shape := glir.Shape{Height: 4, Width: 4}
	require.NoError(t, in.Apply([]glir.Command{
		glir.CreateCommand{Object: 1, Kind: glir.KindRenderBuffer},
		glir.SizeCommand{Object: 1, Shape: shape, Format: glir.FormatColor},
		glir.CreateCommand{Object: 2, Kind: glir.KindFrameBuffer},
		glir.AttachCommand{Object: 2, Slot: glir.SlotColor, Attached: 1},
	}))
	require.Empty(t, reported)

	pix, got, err := in.ReadPixels(2, glir.SlotColor)
	require.NoError(t, err)
	assert.Equal(t, shape, got)
	assert.Len(t, pix, 64)
}

// endFailEncoder fails EndEncoding and counts discards.
type endFailEncoder struct {
	hal.CommandEncoder
	discarded int
}

func (e *endFailEncoder) EndEncoding() (hal.CommandBuffer, error) {
	return nil, errors.New("encoder closed")
}

func (e *endFailEncoder) DiscardEncoding() {
	e.discarded++
	e.CommandEncoder.DiscardEncoding()
}

// endFailDevice hands out endFailEncoders.
type endFailDevice struct {
	hal.Device
	encoders []*endFailEncoder
}

func (d *endFailDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	inner, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	enc := &endFailEncoder{CommandEncoder: inner}
	d.encoders = append(d.encoders, enc)
	return enc, nil
}

func TestReadPixelsDiscardsFailedEncoding(t *testing.T) {
	dev, err := OpenDevice("noop")
	require.NoError(t, err)
	t.Cleanup(dev.Destroy)

	device := &endFailDevice{Device: dev.HalDevice().(hal.Device)}
	d := New(device, dev.HalQueue().(hal.Queue))
	defer d.Close()

	rb, err := d.Create(1, glir.KindRenderBuffer)
	require.NoError(t, err)
	shape := glir.Shape{Height: 2, Width: 2}
	require.NoError(t, d.Resize(rb, shape, glir.FormatColor))

	_, err = d.ReadPixels(rb, shape)
	assert.Equal(t, glir.StatusInvalidOperation, statusOf(t, err))
	require.Len(t, device.encoders, 1)
	assert.Equal(t, 1, device.encoders[0].discarded)
}
