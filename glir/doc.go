// Package glir implements the deferred command layer behind gloo.
//
// Logical GPU objects never talk to a driver directly. Each mutation is
// recorded as a typed, immutable [Command] and appended to a [Queue]. The
// goroutine that owns the live driver context drains the queue and hands
// the commands to an [Interpreter], which maps logical IDs to driver
// handles and applies the mutations in submission order.
//
// # Architecture
//
//   - Registry: issues stable logical IDs ([ID]) independent of driver handles
//   - Queue: ordered, append-only log shared by producers and the interpreter
//   - Interpreter: applies drained commands to a [Driver]
//   - Journal: compacted replay log used to rebuild driver state after
//     context loss
//
// # Command Vocabulary
//
// The vocabulary is closed:
//
//	CREATE  kind tag              allocate backing resource
//	SIZE    shape, format         (re)size a buffer/texture/render buffer
//	ATTACH  slot, attached ID     bind/unbind a framebuffer attachment
//	DATA    region, bytes         upload sub-region data
//	DELETE  -                     release backing resource
//
// # Drivers
//
// Drivers are registered using the database/sql driver pattern. Import a
// driver package with a blank identifier to register it:
//
//	import _ "github.com/gogpu/gloo/glir/drivers/soft"
//
//	drv, err := glir.Open("soft", nil)
//
// # Context Loss
//
// A driver reports loss of its context by returning an error wrapping
// [ErrContextLost]. The interpreter stops applying commands, keeps the rest
// of the batch in its journal, and refuses further work until [Interpreter.Reset]
// installs a new driver and replays the journal.
//
// # Thread Safety
//
// Registry and Queue are safe for concurrent use. Interpreter is not: it
// must be driven by a single goroutine at a time, normally the one that owns
// the driver context.
package glir
