package glir

import (
	"errors"
	"fmt"
	"log/slog"
)

// objectState is the interpreter's view of one logical object.
type objectState struct {
	kind   Kind
	handle Handle
	shape  Shape
	format Format
	attach [NumSlots]ID
}

// InterpreterOption configures an Interpreter during creation.
type InterpreterOption func(*Interpreter)

// WithLogger sets the logger used for diagnostics. The logger is also passed
// on to drivers that accept one.
func WithLogger(l *slog.Logger) InterpreterOption {
	return func(in *Interpreter) {
		if l != nil {
			in.logger = l
		}
	}
}

// WithErrorHandler sets the side channel that receives driver errors
// detected while draining. Errors are *DriverStateError values.
func WithErrorHandler(fn func(error)) InterpreterOption {
	return func(in *Interpreter) {
		in.onError = fn
	}
}

// WithJournal attaches a replay journal. Without one, Reset cannot rebuild
// driver state on its own.
func WithJournal(j *Journal) InterpreterOption {
	return func(in *Interpreter) {
		in.journal = j
	}
}

// WithRetire sets a hook called with each ID whose DELETE has been
// consumed, typically Registry.Release.
func WithRetire(fn func(ID)) InterpreterOption {
	return func(in *Interpreter) {
		in.retire = fn
	}
}

// Interpreter applies commands to a driver. It owns the mapping from
// logical IDs to driver handles.
//
// The Interpreter is not safe for concurrent use.
type Interpreter struct {
	driver  Driver
	objects map[ID]*objectState
	journal *Journal
	logger  *slog.Logger
	onError func(error)
	retire  func(ID)

	lost    bool
	applied uint64
}

// NewInterpreter creates an interpreter driving d.
func NewInterpreter(d Driver, opts ...InterpreterOption) *Interpreter {
	in := &Interpreter{
		driver:  d,
		objects: make(map[ID]*objectState),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(in)
	}
	propagateLogger(d, in.logger)
	return in
}

// Driver returns the current driver.
func (in *Interpreter) Driver() Driver {
	return in.driver
}

// Journal returns the attached journal, or nil.
func (in *Interpreter) Journal() *Journal {
	return in.journal
}

// Lost reports whether the driver context has been lost.
func (in *Interpreter) Lost() bool {
	return in.lost
}

// Handles returns the number of live ID -> handle mappings.
func (in *Interpreter) Handles() int {
	return len(in.objects)
}

// Applied returns the number of commands consumed so far.
func (in *Interpreter) Applied() uint64 {
	return in.applied
}

// Apply applies cmds in order. A failing command is reported through the
// error handler and skipped. Loss of the driver context stops the batch:
// the remaining commands are kept in the journal for replay and Apply
// returns an error wrapping ErrContextLost.
func (in *Interpreter) Apply(cmds []Command) error {
	if in.lost {
		in.record(cmds...)
		return fmt.Errorf("glir: apply %d commands: %w", len(cmds), ErrContextLost)
	}

	for i, cmd := range cmds {
		err := in.apply(cmd)
		in.applied++
		in.record(cmd)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrContextLost) {
			in.lost = true
			in.record(cmds[i+1:]...)
			in.logger.Error("glir: driver context lost",
				"op", cmd.Op().String(), "object", uint64(cmd.Target()), "pending", len(cmds)-i-1)
			return fmt.Errorf("glir: %s on object %s: %w", cmd.Op(), cmd.Target(), err)
		}
		in.report(newDriverStateError(cmd.Op(), cmd.Target(), err))
	}
	return nil
}

func (in *Interpreter) record(cmds ...Command) {
	if in.journal == nil {
		return
	}
	for _, cmd := range cmds {
		in.journal.Record(cmd)
	}
}

func (in *Interpreter) report(err *DriverStateError) {
	in.logger.Warn("glir: command failed",
		"op", err.Op.String(), "object", uint64(err.Object), "status", err.Status, "err", err.Err)
	if in.onError != nil {
		in.onError(err)
	}
}

func (in *Interpreter) apply(cmd Command) error {
	switch c := cmd.(type) {
	case CreateCommand:
		return in.create(c)
	case SizeCommand:
		return in.size(c)
	case AttachCommand:
		return in.attach(c)
	case DataCommand:
		return in.upload(c)
	case DeleteCommand:
		in.destroy(c.Object)
		return nil
	default:
		return Errorf(StatusInvalidEnum, "unsupported command %T", cmd)
	}
}

func (in *Interpreter) lookup(id ID) (*objectState, error) {
	st, ok := in.objects[id]
	if !ok {
		return nil, &StatusError{Status: StatusInvalidOperation, Msg: "object " + id.String() + " has no driver handle", Err: ErrUnknownObject}
	}
	return st, nil
}

func (in *Interpreter) create(c CreateCommand) error {
	if _, ok := in.objects[c.Object]; ok {
		in.logger.Warn("glir: duplicate CREATE ignored", "object", uint64(c.Object))
		return nil
	}
	if !c.Kind.Valid() {
		return Errorf(StatusInvalidEnum, "invalid object kind %d", c.Kind)
	}
	h, err := in.driver.Create(c.Object, c.Kind)
	if err != nil {
		return err
	}
	in.objects[c.Object] = &objectState{kind: c.Kind, handle: h}
	in.logger.Debug("glir: created", "object", uint64(c.Object), "kind", c.Kind.String())
	return nil
}

func (in *Interpreter) size(c SizeCommand) error {
	st, err := in.lookup(c.Object)
	if err != nil {
		return err
	}
	switch st.kind {
	case KindBuffer, KindTexture, KindRenderBuffer:
	default:
		return Errorf(StatusInvalidOperation, "cannot size a %s", st.kind)
	}
	if err := in.driver.Resize(st.handle, c.Shape, c.Format); err != nil {
		return err
	}
	st.shape = c.Shape
	st.format = c.Format
	return nil
}

func (in *Interpreter) attach(c AttachCommand) error {
	st, err := in.lookup(c.Object)
	if err != nil {
		return err
	}
	if st.kind != KindFrameBuffer {
		return Errorf(StatusInvalidOperation, "cannot attach to a %s", st.kind)
	}
	if !c.Slot.Valid() {
		return Errorf(StatusInvalidEnum, "invalid attachment slot %d", c.Slot)
	}

	var att Handle
	if c.Attached.IsValid() {
		a, err := in.lookup(c.Attached)
		if err != nil {
			return err
		}
		switch a.kind {
		case KindRenderBuffer:
		case KindTexture:
			if c.Slot == SlotStencil {
				return Errorf(StatusInvalidOperation, "stencil slot accepts only render buffers")
			}
		default:
			return Errorf(StatusInvalidOperation, "a %s cannot be attached", a.kind)
		}
		att = a.handle
	}

	if err := in.driver.Attach(st.handle, c.Slot, att); err != nil {
		return err
	}
	st.attach[c.Slot] = c.Attached
	return nil
}

func (in *Interpreter) upload(c DataCommand) error {
	st, err := in.lookup(c.Object)
	if err != nil {
		return err
	}
	if st.kind == KindFrameBuffer {
		return Errorf(StatusInvalidOperation, "cannot upload data to a framebuffer")
	}
	return in.driver.Upload(st.handle, c.Region, c.Data)
}

// destroy releases id. Unknown IDs are ignored so that teardown may run
// more than once.
func (in *Interpreter) destroy(id ID) {
	st, ok := in.objects[id]
	if !ok {
		return
	}

	// Detach from every framebuffer still referencing the object.
	for fbID, fb := range in.objects {
		for slot, att := range fb.attach {
			if att != id {
				continue
			}
			if err := in.driver.Attach(fb.handle, Slot(slot), nil); err != nil {
				in.report(newDriverStateError(OpAttach, fbID, err))
			}
			fb.attach[slot] = NoID
		}
	}

	in.driver.Destroy(st.handle)
	delete(in.objects, id)
	if in.retire != nil {
		in.retire(id)
	}
	in.logger.Debug("glir: deleted", "object", uint64(id), "kind", st.kind.String())
}

// Reset installs a new driver after context recreation. Every handle
// mapping is discarded without touching the old driver, then the journal is
// replayed against d. Without a journal the interpreter is left empty and
// ErrReplayUnavailable is returned; the caller must re-emit object state.
func (in *Interpreter) Reset(d Driver) error {
	in.driver = d
	in.objects = make(map[ID]*objectState)
	in.lost = false
	propagateLogger(d, in.logger)

	if in.journal == nil {
		return ErrReplayUnavailable
	}
	cmds := in.journal.Replay()
	in.journal.Clear()
	in.logger.Info("glir: replaying journal", "commands", len(cmds))
	return in.Apply(cmds)
}

// CheckFramebuffer runs the driver's completeness check on fb.
func (in *Interpreter) CheckFramebuffer(fb ID) error {
	if in.lost {
		return ErrContextLost
	}
	st, err := in.lookup(fb)
	if err != nil {
		return newDriverStateError(OpAttach, fb, err)
	}
	if st.kind != KindFrameBuffer {
		return newDriverStateError(OpAttach, fb, Errorf(StatusInvalidOperation, "%s is not a framebuffer", st.kind))
	}
	if err := in.driver.CheckFramebuffer(st.handle); err != nil {
		return newDriverStateError(OpAttach, fb, err)
	}
	return nil
}

// ReadPixels reads back the object attached to slot of framebuffer fb as
// RGBA8 rows, top row first. The framebuffer must be complete.
func (in *Interpreter) ReadPixels(fb ID, slot Slot) ([]byte, Shape, error) {
	if err := in.CheckFramebuffer(fb); err != nil {
		return nil, Shape{}, err
	}
	if !slot.Valid() {
		return nil, Shape{}, Errorf(StatusInvalidEnum, "invalid read mode %d", slot)
	}
	attID := in.objects[fb].attach[slot]
	if !attID.IsValid() {
		return nil, Shape{}, newDriverStateError(OpAttach, fb, Errorf(StatusInvalidOperation, "no %s attachment", slot))
	}
	att, err := in.lookup(attID)
	if err != nil {
		return nil, Shape{}, err
	}
	pix, err := in.driver.ReadPixels(att.handle, att.shape)
	if err != nil {
		if errors.Is(err, ErrContextLost) {
			in.lost = true
			return nil, Shape{}, err
		}
		return nil, Shape{}, newDriverStateError(OpData, attID, err)
	}
	return pix, att.shape, nil
}

// Close releases the driver and forgets all handles.
func (in *Interpreter) Close() error {
	in.objects = make(map[ID]*objectState)
	if in.driver == nil {
		return nil
	}
	return in.driver.Close()
}
