package glir

import "sync"

// Queue is the ordered, append-only command log shared between producers
// and the interpreter. Every command observes a single global order: the
// order in which Append calls acquired the queue lock.
//
// Queue is safe for concurrent use.
type Queue struct {
	mu      sync.Mutex
	pending []Command

	// ready carries at most one wakeup for the consumer.
	ready chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		pending: make([]Command, 0, 256),
		ready:   make(chan struct{}, 1),
	}
}

// Append adds cmd to the end of the queue. It never blocks on the consumer.
func (q *Queue) Append(cmd Command) {
	q.mu.Lock()
	q.pending = append(q.pending, cmd)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Drain removes and returns every queued command in FIFO order.
// It returns nil if the queue is empty.
func (q *Queue) Drain() []Command {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	q.pending = make([]Command, 0, cap(out))
	return out
}

// Len returns the number of queued commands.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Ready returns a channel that receives a value after commands have been
// appended. A single receive may stand for many appends.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}
