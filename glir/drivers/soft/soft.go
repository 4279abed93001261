// Package soft provides a CPU driver for glir.
//
// The soft driver keeps every resource in host memory. It performs the same
// validation a GL implementation would (size limits, attachment kinds,
// framebuffer completeness) and reads pixels back exactly as they were
// uploaded, which makes it the reference driver for tests and for hosts
// without a GPU.
//
// # Example
//
//	// Import to register the driver
//	import _ "github.com/gogpu/gloo/glir/drivers/soft"
//
//	// Create via registry
//	d, _ := glir.Open("soft", nil)
//
//	// Or create directly
//	d := soft.New(soft.WithMaxSize(4096))
package soft

import (
	"log/slog"

	"github.com/gogpu/gloo/glir"
)

func init() {
	glir.Register("soft", func(any) (glir.Driver, error) {
		return New(), nil
	})
}

// DefaultMaxSize is the default largest accepted dimension, in pixels.
const DefaultMaxSize = 16384

// Option configures a Driver.
type Option func(*Driver)

// WithMaxSize sets the largest accepted width or height. Larger sizes fail
// with glir.StatusInvalidValue.
func WithMaxSize(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.maxSize = n
		}
	}
}

// resource is the handle type of the soft driver.
type resource struct {
	id     glir.ID
	kind   glir.Kind
	shape  glir.Shape
	format glir.Format
	sized  bool
	pix    []byte
	attach [glir.NumSlots]*resource
	live   bool
}

// Stats reports resource counters.
type Stats struct {
	Live      int
	Created   int
	Destroyed int
}

// Driver is a glir.Driver backed by host memory.
type Driver struct {
	maxSize   int
	logger    *slog.Logger
	live      map[*resource]struct{}
	created   int
	destroyed int
	lost      bool
}

var _ glir.Driver = (*Driver)(nil)

// New creates a soft driver.
func New(opts ...Option) *Driver {
	d := &Driver{
		maxSize: DefaultMaxSize,
		logger:  slog.New(slog.DiscardHandler),
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

// Lose simulates loss of the graphics context. Every later call fails with
// an error wrapping glir.ErrContextLost; Destroy becomes a no-op.
func (d *Driver) Lose() {
	d.lost = true
	d.logger.Warn("soft: context lost", "live", len(d.live))
}

// Stats returns the current resource counters.
func (d *Driver) Stats() Stats {
	return Stats{Live: len(d.live), Created: d.created, Destroyed: d.destroyed}
}

func (d *Driver) check() error {
	if d.lost {
		return glir.Lost("soft: context lost")
	}
	return nil
}

func (d *Driver) resource(h glir.Handle) (*resource, error) {
	r, ok := h.(*resource)
	if !ok || r == nil {
		return nil, glir.Errorf(glir.StatusInvalidValue, "soft: foreign handle %T", h)
	}
	if !r.live {
		return nil, glir.Errorf(glir.StatusInvalidOperation, "soft: object %s already destroyed", r.id)
	}
	return r, nil
}

// Create allocates an empty resource.
func (d *Driver) Create(id glir.ID, kind glir.Kind) (glir.Handle, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	r := &resource{id: id, kind: kind, live: true}
	d.live[r] = struct{}{}
	d.created++
	return r, nil
}

// Resize reallocates storage and clears it.
func (d *Driver) Resize(h glir.Handle, shape glir.Shape, format glir.Format) error {
	if err := d.check(); err != nil {
		return err
	}
	r, err := d.resource(h)
	if err != nil {
		return err
	}
	if shape.Empty() {
		return glir.Errorf(glir.StatusInvalidValue, "soft: empty shape %s", shape)
	}

	bpp := 1
	switch r.kind {
	case glir.KindBuffer:
	case glir.KindTexture, glir.KindRenderBuffer:
		if shape.Height > d.maxSize || shape.Width > d.maxSize {
			return glir.Errorf(glir.StatusInvalidValue, "soft: shape %s exceeds max size %d", shape, d.maxSize)
		}
		switch {
		case r.kind == glir.KindTexture && !format.IsColor() && !format.IsDepth():
			return glir.Errorf(glir.StatusInvalidEnum, "soft: texture format %s", format)
		case !format.IsColor() && !format.IsDepth() && !format.IsStencil():
			return glir.Errorf(glir.StatusInvalidEnum, "soft: render buffer format %s", format)
		}
		bpp = format.BytesPerPixel()
	default:
		return glir.Errorf(glir.StatusInvalidOperation, "soft: cannot size a %s", r.kind)
	}

	r.shape, r.format, r.sized = shape, format, true
	r.pix = make([]byte, shape.Pixels()*bpp)
	return nil
}

// Attach binds att to a slot of fb.
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

// Upload copies data into a region. Buffers address bytes on a single row;
// programs store the whole payload as their source.
func (d *Driver) Upload(h glir.Handle, region glir.Region, data []byte) error {
	if err := d.check(); err != nil {
		return err
	}
	r, err := d.resource(h)
	if err != nil {
		return err
	}

	if r.kind == glir.KindProgram {
		if len(data) == 0 {
			return glir.Errorf(glir.StatusInvalidValue, "soft: empty program source")
		}
		r.pix = append(r.pix[:0], data...)
		return nil
	}
	if !r.sized {
		return glir.Errorf(glir.StatusInvalidOperation, "soft: upload to unsized object %s", r.id)
	}
	if !r.shape.Contains(region) {
		return glir.Errorf(glir.StatusInvalidValue, "soft: region %+v outside %s", region, r.shape)
	}

	bpp := 1
	if r.kind != glir.KindBuffer {
		bpp = r.format.BytesPerPixel()
	}
	row := region.Width * bpp
	if len(data) != row*region.Height {
		return glir.Errorf(glir.StatusInvalidValue, "soft: %d bytes for region %+v, want %d", len(data), region, row*region.Height)
	}
	stride := r.shape.Width * bpp
	for y := 0; y < region.Height; y++ {
		off := (region.Y+y)*stride + region.X*bpp
		copy(r.pix[off:off+row], data[y*row:(y+1)*row])
	}
	return nil
}

// Destroy frees the resource. Destroying twice is ignored.
func (d *Driver) Destroy(h glir.Handle) {
	r, ok := h.(*resource)
	if !ok || r == nil || !r.live || d.lost {
		return
	}
	r.live = false
	r.pix = nil
	r.attach = [glir.NumSlots]*resource{}
	delete(d.live, r)
	d.destroyed++
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
		if !a.live || !a.sized {
			return glir.Errorf(glir.StatusFramebufferIncompleteAttachment,
				"soft: %s attachment has no storage", glir.Slot(i))
		}
		if seen && a.shape != shape {
			return glir.Errorf(glir.StatusFramebufferIncompleteDimensions,
				"soft: %s attachment is %s, want %s", glir.Slot(i), a.shape, shape)
		}
		shape, seen = a.shape, true
	}
	if !seen {
		return glir.Errorf(glir.StatusFramebufferMissingAttachment, "soft: no attachments")
	}
	return nil
}

// ReadPixels converts the resource storage to RGBA8.
func (d *Driver) ReadPixels(h glir.Handle, shape glir.Shape) ([]byte, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	r, err := d.resource(h)
	if err != nil {
		return nil, err
	}
	if r.kind != glir.KindTexture && r.kind != glir.KindRenderBuffer {
		return nil, glir.Errorf(glir.StatusInvalidOperation, "soft: cannot read a %s", r.kind)
	}
	if shape != r.shape {
		return nil, glir.Errorf(glir.StatusInvalidValue, "soft: read %s from %s storage", shape, r.shape)
	}
	return toRGBA(r.pix, r.format, shape.Pixels()), nil
}

// Close destroys every live resource.
func (d *Driver) Close() error {
	n := len(d.live)
	for r := range d.live {
		r.live = false
		r.pix = nil
		d.destroyed++
	}
	clear(d.live)
	d.logger.Debug("soft: closed", "released", n)
	return nil
}
