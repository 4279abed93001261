// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gloo/glir"
)

func init() {
	glir.Register("native", Open)
}

// DeviceHandle is the device provider type of the gogpu ecosystem. Values
// passed to Open must additionally expose HalDevice() and HalQueue().
type DeviceHandle = gpucontext.DeviceProvider

// halProvider is the contract for sharing a HAL device.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// Open is the "native" driver factory. provider must expose HalDevice() and
// HalQueue() returning hal.Device and hal.Queue. With a nil provider a
// standalone Vulkan device is opened and owned by the driver.
func Open(provider any) (glir.Driver, error) {
	if provider == nil {
		dev, err := OpenDevice("vulkan")
		if err != nil {
			return nil, err
		}
		d, err := open(dev)
		if err != nil {
			dev.Destroy()
			return nil, err
		}
		d.owned = dev
		return d, nil
	}
	return open(provider)
}

func open(provider any) (*Driver, error) {
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("native: provider %T does not expose HAL types", provider)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("native: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("native: provider HalQueue is not hal.Queue")
	}
	return New(device, queue), nil
}

// Option configures a Driver.
type Option func(*Driver)

// WithReadTimeout sets how long ReadPixels waits for the GPU. A timeout is
// treated as context loss.
func WithReadTimeout(d time.Duration) Option {
	return func(drv *Driver) {
		if d > 0 {
			drv.timeout = d
		}
	}
}

// WithLabel sets the prefix of GPU debug labels.
func WithLabel(prefix string) Option {
	return func(drv *Driver) {
		drv.label = prefix
	}
}

// resource is the handle type of the native driver.
type resource struct {
	id     glir.ID
	kind   glir.Kind
	shape  glir.Shape
	format glir.Format
	live   bool

	// Textures and render buffers.
	tex  hal.Texture
	view hal.TextureView

	// Buffers keep a host copy so that unaligned writes can be widened to
	// the 4-byte copy alignment.
	buf    hal.Buffer
	shadow []byte

	// Programs.
	module hal.ShaderModule
	words  int

	// Framebuffers.
	attach [glir.NumSlots]*resource
}

// Driver is a glir.Driver backed by a HAL device.
type Driver struct {
	device  hal.Device
	queue   hal.Queue
	owned   *Device
	logger  *slog.Logger
	timeout time.Duration
	label   string
	live    map[*resource]struct{}
	lost    bool
}

var _ glir.Driver = (*Driver)(nil)

// New creates a driver on device and queue. The driver does not take
// ownership of either.
func New(device hal.Device, queue hal.Queue, opts ...Option) *Driver {
	d := &Driver{
		device:  device,
		queue:   queue,
		logger:  slog.New(slog.DiscardHandler),
		timeout: 5 * time.Second,
		label:   "gloo",
		live:    make(map[*resource]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetLogger sets the driver logger. Called by the interpreter.
func (d *Driver) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	d.logger = l
}

// Live returns the number of live resources.
func (d *Driver) Live() int {
	return len(d.live)
}

func (d *Driver) check() error {
	if d.lost {
		return glir.Lost("native: device lost")
	}
	return nil
}

func (d *Driver) resource(h glir.Handle) (*resource, error) {
	r, ok := h.(*resource)
	if !ok || r == nil {
		return nil, glir.Errorf(glir.StatusInvalidValue, "native: foreign handle %T", h)
	}
	if !r.live {
		return nil, glir.Errorf(glir.StatusInvalidOperation, "native: object %s already destroyed", r.id)
	}
	return r, nil
}

func (d *Driver) labelFor(r *resource, suffix string) string {
	return fmt.Sprintf("%s_%s_%d%s", d.label, r.kind, uint64(r.id), suffix)
}

// Create registers a new resource. GPU memory is allocated on Resize (or,
// for programs, on Upload).
func (d *Driver) Create(id glir.ID, kind glir.Kind) (glir.Handle, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	r := &resource{id: id, kind: kind, live: true}
	d.live[r] = struct{}{}
	return r, nil
}

// Resize recreates the GPU storage of a texture, render buffer or buffer.
func (d *Driver) Resize(h glir.Handle, shape glir.Shape, format glir.Format) error {
	if err := d.check(); err != nil {
		return err
	}
	r, err := d.resource(h)
	if err != nil {
		return err
	}
	if shape.Empty() {
		return glir.Errorf(glir.StatusInvalidValue, "native: empty shape %s", shape)
	}

	switch r.kind {
	case glir.KindTexture, glir.KindRenderBuffer:
		return d.resizeTexture(r, shape, format)
	case glir.KindBuffer:
		return d.resizeBuffer(r, shape.Width)
	default:
		return glir.Errorf(glir.StatusInvalidOperation, "native: cannot size a %s", r.kind)
	}
}

func (d *Driver) resizeTexture(r *resource, shape glir.Shape, format glir.Format) error {
	texFormat, usage, err := textureFormat(r.kind, format)
	if err != nil {
		return err
	}
	d.releaseTexture(r)

	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         d.labelFor(r, ""),
		Size:          hal.Extent3D{Width: uint32(shape.Width), Height: uint32(shape.Height), DepthOrArrayLayers: 1}, //nolint:gosec // G115: shape validated positive
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        texFormat,
		Usage:         usage,
	})
	if err != nil {
		return glir.Errorf(glir.StatusOutOfMemory, "native: create texture %s: %v", shape, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: d.labelFor(r, "_view"),
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return glir.Errorf(glir.StatusOutOfMemory, "native: create texture view: %v", err)
	}

	r.tex, r.view = tex, view
	r.shape, r.format = shape, format
	return nil
}

func (d *Driver) resizeBuffer(r *resource, size int) error {
	d.releaseBuffer(r)
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: d.labelFor(r, ""),
		Size:  align4(uint64(size)), //nolint:gosec // G115: size validated positive
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageIndex | gputypes.BufferUsageUniform |
			gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return glir.Errorf(glir.StatusOutOfMemory, "native: create buffer of %d bytes: %v", size, err)
	}
	r.buf = buf
	r.shadow = make([]byte, align4(uint64(size))) //nolint:gosec // G115: size validated positive
	r.shape = glir.Shape{Height: 1, Width: size}
	return nil
}

// Attach records an attachment; framebuffers have no GPU object.
func (d *Driver) Attach(fb glir.Handle, slot glir.Slot, att glir.Handle) error {
	if err := d.check(); err != nil {
		return err
	}
	f, err := d.resource(fb)
	if err != nil {
		return err
	}
	if att == nil {
		f.attach[slot] = nil
		return nil
	}
	a, err := d.resource(att)
	if err != nil {
		return err
	}
	f.attach[slot] = a
	return nil
}

// Upload writes texture pixels, buffer bytes, or compiles a program.
func (d *Driver) Upload(h glir.Handle, region glir.Region, data []byte) error {
	if err := d.check(); err != nil {
		return err
	}
	r, err := d.resource(h)
	if err != nil {
		return err
	}

	switch r.kind {
	case glir.KindProgram:
		return d.compile(r, string(data))
	case glir.KindBuffer:
		return d.writeBuffer(r, region, data)
	case glir.KindTexture, glir.KindRenderBuffer:
		return d.writeTexture(r, region, data)
	default:
		return glir.Errorf(glir.StatusInvalidOperation, "native: cannot upload to a %s", r.kind)
	}
}

func (d *Driver) writeBuffer(r *resource, region glir.Region, data []byte) error {
	if r.buf == nil {
		return glir.Errorf(glir.StatusInvalidOperation, "native: upload to unsized buffer %s", r.id)
	}
	if !r.shape.Contains(region) || region.Height != 1 || len(data) != region.Width {
		return glir.Errorf(glir.StatusInvalidValue, "native: %d bytes at %d outside buffer of %d", len(data), region.X, r.shape.Width)
	}
	copy(r.shadow[region.X:], data)

	start := uint64(region.X) &^ 3                 //nolint:gosec // G115: region validated
	end := align4(uint64(region.X + region.Width)) //nolint:gosec // G115: region validated
	d.queue.WriteBuffer(r.buf, start, r.shadow[start:end])
	return nil
}

func (d *Driver) writeTexture(r *resource, region glir.Region, data []byte) error {
	if r.tex == nil {
		return glir.Errorf(glir.StatusInvalidOperation, "native: upload to unsized object %s", r.id)
	}
	if !isRGBA8(r.format) {
		return glir.Errorf(glir.StatusInvalidOperation, "native: uploads to %s storage are not supported", r.format)
	}
	if !r.shape.Contains(region) || len(data) != region.Width*region.Height*4 {
		return glir.Errorf(glir.StatusInvalidValue, "native: %d bytes for region %+v of %s", len(data), region, r.shape)
	}

	w, h := uint32(region.Width), uint32(region.Height) //nolint:gosec // G115: region validated
	d.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  r.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(region.X), Y: uint32(region.Y), Z: 0}, //nolint:gosec // G115: region validated
			Aspect:   gputypes.TextureAspectAll,
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  w * 4,
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	return nil
}

// Destroy releases the GPU objects of h. Destroying twice is ignored.
func (d *Driver) Destroy(h glir.Handle) {
	r, ok := h.(*resource)
	if !ok || r == nil || !r.live {
		return
	}
	d.release(r)
	delete(d.live, r)
}

func (d *Driver) release(r *resource) {
	d.releaseTexture(r)
	d.releaseBuffer(r)
	if r.module != nil {
		d.device.DestroyShaderModule(r.module)
		r.module = nil
	}
	r.attach = [glir.NumSlots]*resource{}
	r.live = false
}

func (d *Driver) releaseTexture(r *resource) {
	if r.view != nil {
		d.device.DestroyTextureView(r.view)
		r.view = nil
	}
	if r.tex != nil {
		d.device.DestroyTexture(r.tex)
		r.tex = nil
	}
}

func (d *Driver) releaseBuffer(r *resource) {
	if r.buf != nil {
		d.device.DestroyBuffer(r.buf)
		r.buf = nil
		r.shadow = nil
	}
}

// CheckFramebuffer validates attachment presence, storage and dimensions.
func (d *Driver) CheckFramebuffer(fb glir.Handle) error {
	if err := d.check(); err != nil {
		return err
	}
	f, err := d.resource(fb)
	if err != nil {
		return err
	}
	var (
		shape glir.Shape
		seen  bool
	)
	for i, a := range f.attach {
		if a == nil {
			continue
		}
		if !a.live || a.view == nil {
			return glir.Errorf(glir.StatusFramebufferIncompleteAttachment,
				"native: %s attachment has no storage", glir.Slot(i))
		}
		if seen && a.shape != shape {
			return glir.Errorf(glir.StatusFramebufferIncompleteDimensions,
				"native: %s attachment is %s, want %s", glir.Slot(i), a.shape, shape)
		}
		shape, seen = a.shape, true
	}
	if !seen {
		return glir.Errorf(glir.StatusFramebufferMissingAttachment, "native: no attachments")
	}
	if f.attach[glir.SlotDepth] != nil && f.attach[glir.SlotStencil] != nil &&
		f.attach[glir.SlotDepth] != f.attach[glir.SlotStencil] {
		return glir.Errorf(glir.StatusFramebufferUnsupported,
			"native: separate depth and stencil attachments are not supported")
	}
	return nil
}

// RenderPassDescriptor builds a render pass that clears and stores every
// attachment of fb. fb must be a framebuffer handle of this driver.
func (d *Driver) RenderPassDescriptor(fb glir.Handle) (*hal.RenderPassDescriptor, error) {
	if err := d.CheckFramebuffer(fb); err != nil {
		return nil, err
	}
	f, _ := d.resource(fb)

	desc := &hal.RenderPassDescriptor{Label: d.labelFor(f, "_pass")}
	if c := f.attach[glir.SlotColor]; c != nil {
		desc.ColorAttachments = []hal.RenderPassColorAttachment{{
			View:       c.view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}}
	}
	ds := f.attach[glir.SlotDepth]
	if ds == nil {
		ds = f.attach[glir.SlotStencil]
	}
	if ds != nil {
		desc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:              ds.view,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   1.0,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: 0,
		}
	}
	return desc, nil
}

// Close destroys every live resource, and the device if the driver opened
// it.
func (d *Driver) Close() error {
	n := len(d.live)
	for r := range d.live {
		d.release(r)
	}
	clear(d.live)
	if d.owned != nil {
		d.owned.Destroy()
		d.owned = nil
	}
	d.logger.Debug("native: closed", "released", n)
	return nil
}

func align4(n uint64) uint64 {
	return (n + 3) &^ 3
}
