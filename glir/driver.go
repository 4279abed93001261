package glir

import "log/slog"

// Handle is an opaque driver-side resource. Only the driver that created a
// handle knows its concrete type.
type Handle any

// Driver is the interface that all graphics drivers must implement.
// The interpreter translates commands into Driver calls after resolving
// logical IDs to handles.
//
// # Implementation Contract
//
// Each driver must:
//  1. Register in init() using glir.Register()
//  2. Report failures as *StatusError carrying a status code
//  3. Wrap ErrContextLost (see Lost) once its context is gone
//  4. Treat handles it did not create as a programming error
//
// Drivers are driven by one goroutine at a time and need no locking of
// their own.
type Driver interface {
	// Create allocates the resource backing a new object. The ID is
	// informational, for labels and diagnostics.
	Create(id ID, kind Kind) (Handle, error)

	// Resize (re)allocates storage. Previous contents are discarded.
	Resize(h Handle, shape Shape, format Format) error

	// Attach binds att to a framebuffer slot. att is nil on detach.
	Attach(fb Handle, slot Slot, att Handle) error

	// Upload writes data into a region. For programs the region is empty
	// and data holds the shader source.
	Upload(h Handle, region Region, data []byte) error

	// Destroy releases the resource. It must not fail.
	Destroy(h Handle)

	// CheckFramebuffer validates framebuffer completeness.
	CheckFramebuffer(fb Handle) error

	// ReadPixels reads back the storage of a render buffer or texture as
	// tightly packed RGBA8 rows, top row first.
	ReadPixels(h Handle, shape Shape) ([]byte, error)

	// Close releases every resource the driver still holds.
	Close() error
}

// loggerSetter is implemented by drivers that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger passes l to d if the driver supports logging.
func propagateLogger(d Driver, l *slog.Logger) {
	if ls, ok := d.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}
