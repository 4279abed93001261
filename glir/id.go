package glir

import (
	"strconv"
	"sync"
	"sync/atomic"
)

// ID is a logical object identifier. It is stable for the lifetime of the
// object and independent of any driver handle.
type ID uint64

// NoID is the sentinel for "no object". ATTACH uses it to detach a slot.
const NoID ID = 0

// IsValid returns true if id refers to an object.
func (id ID) IsValid() bool {
	return id != NoID
}

func (id ID) String() string {
	return "#" + strconv.FormatUint(uint64(id), 10)
}

// Registry issues logical IDs. IDs come from a monotonic counter starting
// at 1 and are never reissued, so an ID can never alias an object that
// still has unconsumed commands.
//
// Registry is safe for concurrent use.
type Registry struct {
	next atomic.Uint64

	mu   sync.Mutex
	live map[ID]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{live: make(map[ID]struct{})}
}

// Allocate returns a fresh, never-before-issued ID.
func (r *Registry) Allocate() ID {
	id := ID(r.next.Add(1))

	r.mu.Lock()
	r.live[id] = struct{}{}
	r.mu.Unlock()

	return id
}

// Release retires id. Releasing an unknown or already retired ID is a no-op.
func (r *Registry) Release(id ID) {
	r.mu.Lock()
	delete(r.live, id)
	r.mu.Unlock()
}

// Live reports whether id has been allocated and not yet released.
func (r *Registry) Live(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.live[id]
	return ok
}

// Len returns the number of live IDs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// Issued returns the total number of IDs ever allocated.
func (r *Registry) Issued() uint64 {
	return r.next.Load()
}
