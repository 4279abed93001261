package gloo

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gloo/glir"
)

// Context is a session: it owns the identity registry, the command queue,
// the live-object arena and, once a driver is bound, the interpreter.
//
// Objects may be created and mutated from any goroutine, before or after a
// driver is bound. Commands reach the driver when the context is flushed,
// either explicitly (Flush, FrameBuffer.Read, FrameBuffer.Validate) or by
// the Run loop.
type Context struct {
	opts     contextOptions
	logger   *slog.Logger
	registry *glir.Registry
	queue    *glir.Queue
	closed   atomic.Bool

	mu      sync.Mutex
	objects map[glir.ID]restater
	active  []*FrameBuffer

	// drainMu serializes every interpreter access.
	drainMu sync.Mutex
	interp  *glir.Interpreter
	journal *glir.Journal
}

// NewContext creates a context. Without WithDriver no driver is bound and
// commands stay queued until Bind.
func NewContext(opts ...ContextOption) *Context {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Context{
		opts:     o,
		logger:   o.logger,
		registry: glir.NewRegistry(),
		queue:    glir.NewQueue(),
		objects:  make(map[glir.ID]restater),
	}
	if c.logger == nil {
		c.logger = followLogger()
	}
	if o.journal {
		c.journal = glir.NewJournal()
	}
	if o.driver != nil {
		if err := c.Bind(o.driver); err != nil {
			c.logger.Warn("gloo: initial bind failed", "err", err)
		}
	}
	return c
}

// Queue returns the command queue.
func (c *Context) Queue() *glir.Queue { return c.queue }

// Registry returns the identity registry.
func (c *Context) Registry() *glir.Registry { return c.registry }

// Objects returns the number of live (not deleted) objects.
func (c *Context) Objects() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.objects)
}

// Bound reports whether a driver is bound.
func (c *Context) Bound() bool {
	c.drainMu.Lock()
	defer c.drainMu.Unlock()
	return c.interp != nil
}

func (c *Context) interpreterOptions() []glir.InterpreterOption {
	opts := []glir.InterpreterOption{
		glir.WithLogger(c.logger),
		glir.WithRetire(c.registry.Release),
	}
	if c.opts.onError != nil {
		opts = append(opts, glir.WithErrorHandler(c.opts.onError))
	}
	if c.journal != nil {
		opts = append(opts, glir.WithJournal(c.journal))
	}
	return opts
}

// Bind installs the first driver and applies every queued command.
func (c *Context) Bind(d glir.Driver) error {
	if d == nil {
		return errors.New("gloo: bind: nil driver")
	}
	if c.closed.Load() {
		return ErrClosed
	}

	c.drainMu.Lock()
	defer c.drainMu.Unlock()
	if c.interp != nil {
		return ErrAlreadyBound
	}
	c.interp = glir.NewInterpreter(d, c.interpreterOptions()...)
	c.logger.Info("gloo: driver bound", "driver", fmt.Sprintf("%T", d), "queued", c.queue.Len())
	return c.flushLocked()
}

// Recreate replaces the driver after the graphics context was lost or
// rebuilt. Every driver handle is discarded and the current state of all
// live objects is rebuilt on d, followed by the commands still queued.
//
// With the journal on, object contents are restored as well. With it off,
// each object re-emits its shape, format, program source and attachments;
// texture and buffer contents are lost.
func (c *Context) Recreate(d glir.Driver) error {
	if d == nil {
		return errors.New("gloo: recreate: nil driver")
	}
	if c.closed.Load() {
		return ErrClosed
	}

	c.drainMu.Lock()
	defer c.drainMu.Unlock()
	if c.interp == nil {
		c.interp = glir.NewInterpreter(d, c.interpreterOptions()...)
		return c.flushLocked()
	}

	c.logger.Info("gloo: recreating context", "driver", fmt.Sprintf("%T", d))
	err := c.interp.Reset(d)
	switch {
	case errors.Is(err, glir.ErrReplayUnavailable):
		c.logger.Warn("gloo: no journal, texture and buffer contents are lost")
		if err := c.interp.Apply(c.restate(c.queue.Drain())); err != nil {
			return fmt.Errorf("gloo: recreate: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("gloo: recreate: %w", err)
	}
	return c.flushLocked()
}

// restate collects the state of every live object in creation order,
// attachments last. Of the pending commands only uploads are kept, and
// only those to live objects that no later SIZE or DELETE discards: the
// rest is already reflected in the objects' state. IDs with a pending
// DELETE are retired directly.
func (c *Context) restate(pending []glir.Command) []glir.Command {
	c.mu.Lock()
	objs := c.sortedObjectsLocked()
	c.mu.Unlock()

	live := make(map[glir.ID]bool, len(objs))
	var cmds, attaches []glir.Command
	for _, o := range objs {
		live[o.ID()] = true
		state, attach := o.restate()
		cmds = append(cmds, state...)
		attaches = append(attaches, attach...)
	}
	cmds = append(cmds, attaches...)

	// Walk backwards so that a SIZE or DELETE is seen before the uploads
	// it discards.
	discarded := make(map[glir.ID]bool)
	var uploads []glir.Command
	for i := len(pending) - 1; i >= 0; i-- {
		cmd := pending[i]
		switch cmd.Op() {
		case glir.OpSize:
			discarded[cmd.Target()] = true
		case glir.OpDelete:
			discarded[cmd.Target()] = true
			c.registry.Release(cmd.Target())
		case glir.OpData:
			if live[cmd.Target()] && !discarded[cmd.Target()] {
				uploads = append(uploads, cmd)
			}
		}
	}
	slices.Reverse(uploads)
	cmds = append(cmds, uploads...)
	c.logger.Debug("gloo: restated objects", "objects", len(objs), "commands", len(cmds))
	return cmds
}

// Flush applies every queued command. Without a bound driver the commands
// stay queued and Flush returns nil. The returned error is non-nil only
// when the driver context has been lost; other driver errors go to the
// error handler.
func (c *Context) Flush() error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.drainMu.Lock()
	defer c.drainMu.Unlock()
	return c.flushLocked()
}

func (c *Context) flushLocked() error {
	if c.interp == nil {
		return nil
	}
	cmds := c.queue.Drain()
	if len(cmds) == 0 {
		return nil
	}
	c.logger.Debug("gloo: flush", "commands", len(cmds))
	return c.interp.Apply(cmds)
}

// Run flushes whenever commands are queued, until ctx is done or the
// driver context is lost. It is meant to run on the goroutine that owns
// the graphics context.
func (c *Context) Run(ctx context.Context) error {
	if err := c.Flush(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.queue.Ready():
			if err := c.Flush(); err != nil {
				return err
			}
		}
	}
}

// readPixels flushes and reads back slot of framebuffer fb.
func (c *Context) readPixels(fb glir.ID, slot Slot) ([]byte, Shape, error) {
	if c.closed.Load() {
		return nil, Shape{}, ErrClosed
	}
	c.drainMu.Lock()
	defer c.drainMu.Unlock()
	if c.interp == nil {
		return nil, Shape{}, ErrNoDriver
	}
	if err := c.flushLocked(); err != nil {
		return nil, Shape{}, err
	}
	return c.interp.ReadPixels(fb, slot)
}

// checkFramebuffer flushes and runs the completeness check on fb.
func (c *Context) checkFramebuffer(fb glir.ID) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.drainMu.Lock()
	defer c.drainMu.Unlock()
	if c.interp == nil {
		return ErrNoDriver
	}
	if err := c.flushLocked(); err != nil {
		return err
	}
	return c.interp.CheckFramebuffer(fb)
}

// adopt assigns o a fresh ID, registers self in the arena and queues its
// CREATE.
func (c *Context) adopt(o *object, self restater, kind glir.Kind) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		return ErrClosed
	}
	o.ctx = c
	o.kind = kind
	o.id = c.registry.Allocate()
	c.objects[o.id] = self
	c.queue.Append(glir.CreateCommand{Object: o.id, Kind: kind})
	return nil
}

func (c *Context) forget(id glir.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.objects, id)
}

func (c *Context) sortedObjectsLocked() []restater {
	objs := make([]restater, 0, len(c.objects))
	for _, o := range c.objects {
		objs = append(objs, o)
	}
	slices.SortFunc(objs, func(a, b restater) int {
		return cmp.Compare(a.ID(), b.ID())
	})
	return objs
}

// ActiveFrameBuffer returns the innermost active framebuffer, or nil.
func (c *Context) ActiveFrameBuffer() *FrameBuffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.active) == 0 {
		return nil
	}
	return c.active[len(c.active)-1]
}

func (c *Context) pushActive(fb *FrameBuffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = append(c.active, fb)
}

func (c *Context) popActive(fb *FrameBuffer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.active)
	if n == 0 || c.active[n-1] != fb {
		return ErrNotActive
	}
	c.active = c.active[:n-1]
	return nil
}

// Close deletes every live object, newest first, applies the resulting
// commands and closes the driver. Close is idempotent.
func (c *Context) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.mu.Lock()
	objs := c.sortedObjectsLocked()
	c.active = nil
	c.mu.Unlock()
	for i := len(objs) - 1; i >= 0; i-- {
		objs[i].Delete()
	}

	c.drainMu.Lock()
	defer c.drainMu.Unlock()
	if c.interp == nil {
		c.queue.Drain()
		return nil
	}
	err := c.flushLocked()
	c.logger.Info("gloo: context closed", "deleted", len(objs))
	return errors.Join(err, c.interp.Close())
}
