package gloo

import (
	"sync"

	"github.com/gogpu/gloo/glir"
)

// Object is a logical GPU object. It holds no driver resource itself: the
// driver resource is owned by the interpreter and keyed by ID.
type Object interface {
	// ID returns the logical ID, stable across context recreation.
	ID() glir.ID

	// Kind returns the object kind.
	Kind() glir.Kind

	// Context returns the owning context.
	Context() *Context

	// Delete releases the object. Calling Delete more than once is a no-op.
	Delete()

	// Deleted reports whether Delete has been called.
	Deleted() bool
}

// restater is implemented by every object. restate returns the commands
// rebuilding the object's current driver state: its own state first and
// the attachments it references second.
type restater interface {
	Object
	restate() (state, attach []glir.Command)
}

// object carries what every logical object shares. mu serializes the
// object's mutations so that its state change and command append are one
// step as seen by other goroutines.
type object struct {
	mu      sync.Mutex
	ctx     *Context
	id      glir.ID
	kind    glir.Kind
	deleted bool
}

// ID returns the logical ID.
func (o *object) ID() glir.ID { return o.id }

// Kind returns the object kind.
func (o *object) Kind() glir.Kind { return o.kind }

// Context returns the owning context.
func (o *object) Context() *Context { return o.ctx }

// Deleted reports whether Delete has been called.
func (o *object) Deleted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.deleted
}

// Delete emits DELETE once and removes the object from its context.
func (o *object) Delete() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.deleted {
		return
	}
	o.deleted = true
	o.ctx.forget(o.id)
	o.ctx.queue.Append(glir.DeleteCommand{Object: o.id})
}

// emit appends cmds. The caller holds o.mu.
func (o *object) emit(cmds ...glir.Command) error {
	if o.deleted {
		return ErrDeleted
	}
	if o.ctx.closed.Load() {
		return ErrClosed
	}
	for _, cmd := range cmds {
		o.ctx.queue.Append(cmd)
	}
	return nil
}

// live reports whether o is set and not deleted.
func live(o Object) bool {
	return o != nil && !o.Deleted()
}
