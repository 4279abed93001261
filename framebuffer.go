package gloo

import (
	"fmt"

	"github.com/gogpu/gloo/glir"
)

// Attachment is an object that can back a framebuffer slot. Only
// *RenderBuffer and *Texture2D implement it.
type Attachment interface {
	Object
	Shape() Shape
	Format() Format
	Resize(shape []int, format Format) error
	attachment()
}

// FrameBuffer groups up to three attachments (color, depth, stencil) into
// a render target.
type FrameBuffer struct {
	object
	attach     [glir.NumSlots]Attachment
	resizeable bool
}

// NewFrameBuffer creates a framebuffer and attaches the given objects. nil
// arguments leave their slot empty.
func NewFrameBuffer(ctx *Context, color, depth, stencil Attachment, resizeable bool) (*FrameBuffer, error) {
	fb := &FrameBuffer{resizeable: resizeable}
	if err := ctx.adopt(&fb.object, fb, glir.KindFrameBuffer); err != nil {
		return nil, err
	}
	for i, a := range [glir.NumSlots]Attachment{color, depth, stencil} {
		if a == nil {
			continue
		}
		if err := fb.SetAttachment(glir.Slot(i), a); err != nil {
			fb.Delete()
			return nil, err
		}
	}
	return fb, nil
}

// Resizeable reports whether Resize is allowed.
func (fb *FrameBuffer) Resizeable() bool {
	return fb.resizeable
}

// SetAttachment binds a to slot, or detaches the slot when a is nil.
// Color and depth accept render buffers and textures; stencil accepts
// render buffers only. On error the slot is unchanged.
func (fb *FrameBuffer) SetAttachment(slot Slot, a Attachment) error {
	if !slot.Valid() {
		return fmt.Errorf("gloo: invalid slot %d", slot)
	}

	target := glir.NoID
	if a != nil {
		switch a.(type) {
		case *RenderBuffer:
		case *Texture2D:
			if slot == Stencil {
				return fmt.Errorf("%w: %s slot accepts only render buffers, got %s", ErrTypeMismatch, slot, a.Kind())
			}
		default:
			return fmt.Errorf("%w: %T", ErrTypeMismatch, a)
		}
		if a.Context() != fb.ctx {
			return ErrForeignObject
		}
		if a.Deleted() {
			return fmt.Errorf("%w: attachment %s", ErrDeleted, a.ID())
		}
		target = a.ID()
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()
	if err := fb.emit(glir.AttachCommand{Object: fb.id, Slot: slot, Attached: target}); err != nil {
		return err
	}
	fb.attach[slot] = a
	return nil
}

// SetColor sets the color attachment.
func (fb *FrameBuffer) SetColor(a Attachment) error { return fb.SetAttachment(Color, a) }

// SetDepth sets the depth attachment.
func (fb *FrameBuffer) SetDepth(a Attachment) error { return fb.SetAttachment(Depth, a) }

// SetStencil sets the stencil attachment. Only a *RenderBuffer is accepted.
func (fb *FrameBuffer) SetStencil(rb *RenderBuffer) error {
	if rb == nil {
		return fb.SetAttachment(Stencil, nil)
	}
	return fb.SetAttachment(Stencil, rb)
}

// Attachment returns the object in slot, or nil. Deleted objects read as
// nil.
func (fb *FrameBuffer) Attachment(slot Slot) Attachment {
	if !slot.Valid() {
		return nil
	}
	fb.mu.Lock()
	a := fb.attach[slot]
	fb.mu.Unlock()
	if !live(a) {
		return nil
	}
	return a
}

// Color returns the color attachment, or nil.
func (fb *FrameBuffer) Color() Attachment { return fb.Attachment(Color) }

// Depth returns the depth attachment, or nil.
func (fb *FrameBuffer) Depth() Attachment { return fb.Attachment(Depth) }

// Stencil returns the stencil attachment, or nil.
func (fb *FrameBuffer) Stencil() Attachment { return fb.Attachment(Stencil) }

// Shape returns the shape of the first attachment in color, depth, stencil
// order.
func (fb *FrameBuffer) Shape() (Shape, error) {
	for _, slot := range glir.Slots {
		if a := fb.Attachment(slot); a != nil {
			return a.Shape(), nil
		}
	}
	return Shape{}, ErrUndefinedShape
}

// Resize resizes every attachment to shape, each keeping its format.
//
// Attachments are resized in color, depth, stencil order and the first
// failure is returned. Attachments resized before the failure keep their
// new size, so the framebuffer may be left with mismatched shapes; call
// Validate before using it again.
func (fb *FrameBuffer) Resize(shape []int) error {
	if !fb.resizeable {
		return ErrImmutableResource
	}
	if _, err := parseShape(shape); err != nil {
		return err
	}
	if fb.Deleted() {
		return ErrDeleted
	}
	for _, slot := range glir.Slots {
		a := fb.Attachment(slot)
		if a == nil {
			continue
		}
		if err := a.Resize(shape, FormatNone); err != nil {
			return fmt.Errorf("gloo: resize %s attachment: %w", slot, err)
		}
	}
	return nil
}

// Read returns the pixels of the object attached to mode. All queued
// commands are applied first, so the result reflects every mutation made
// before the call. Pixels have 4 channels with alpha, 3 without.
func (fb *FrameBuffer) Read(mode Slot, alpha bool) (*Pixels, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("gloo: invalid read mode %d", mode)
	}
	if fb.Deleted() {
		return nil, ErrDeleted
	}
	if fb.Attachment(mode) == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoAttachment, mode)
	}

	rgba, shape, err := fb.ctx.readPixels(fb.id, mode)
	if err != nil {
		return nil, fmt.Errorf("gloo: read %s: %w", mode, err)
	}
	return newPixels(shape, rgba, alpha), nil
}

// Validate applies queued commands and checks that the driver considers
// the framebuffer complete.
func (fb *FrameBuffer) Validate() error {
	if fb.Deleted() {
		return ErrDeleted
	}
	return fb.ctx.checkFramebuffer(fb.id)
}

// Activate makes fb the context's active render target. Activations nest.
func (fb *FrameBuffer) Activate() error {
	if fb.Deleted() {
		return ErrDeleted
	}
	fb.ctx.pushActive(fb)
	return nil
}

// Deactivate ends the innermost activation, which must be fb's.
func (fb *FrameBuffer) Deactivate() error {
	return fb.ctx.popActive(fb)
}

// Use runs fn with fb active. fb is deactivated on every exit path,
// including a panic in fn.
func (fb *FrameBuffer) Use(fn func() error) (err error) {
	if err := fb.Activate(); err != nil {
		return err
	}
	defer func() {
		if derr := fb.Deactivate(); err == nil {
			err = derr
		}
	}()
	return fn()
}

func (fb *FrameBuffer) restate() (state, attach []glir.Command) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i, a := range fb.attach {
		if !live(a) {
			continue
		}
		attach = append(attach, glir.AttachCommand{Object: fb.id, Slot: glir.Slot(i), Attached: a.ID()})
	}
	return []glir.Command{glir.CreateCommand{Object: fb.id, Kind: fb.kind}}, attach
}
