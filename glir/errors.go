package glir

import (
	"errors"
	"fmt"
)

// Driver status codes. Values follow the GL error and framebuffer status
// enumerations.
const (
	StatusUnknown                         uint32 = 0
	StatusInvalidEnum                     uint32 = 0x0500
	StatusInvalidValue                    uint32 = 0x0501
	StatusInvalidOperation                uint32 = 0x0502
	StatusOutOfMemory                     uint32 = 0x0505
	StatusContextLost                     uint32 = 0x0507
	StatusFramebufferComplete             uint32 = 0x8CD5
	StatusFramebufferIncompleteAttachment uint32 = 0x8CD6
	StatusFramebufferMissingAttachment    uint32 = 0x8CD7
	StatusFramebufferIncompleteDimensions uint32 = 0x8CD9
	StatusFramebufferUnsupported          uint32 = 0x8CDD
)

var (
	// ErrContextLost is wrapped by drivers whose context has become invalid.
	// It is fatal to the session until the interpreter is reset.
	ErrContextLost = errors.New("glir: context lost")

	// ErrUnknownObject is returned when a command references an ID that has
	// no driver handle.
	ErrUnknownObject = errors.New("glir: unknown object")

	// ErrReplayUnavailable is returned by Reset when no journal is attached.
	ErrReplayUnavailable = errors.New("glir: no journal to replay")
)

// StatusError is an error reported by a driver, carrying the driver's
// status code.
type StatusError struct {
	Status uint32
	Msg    string
	Err    error
}

// Errorf creates a StatusError with a formatted message.
func Errorf(status uint32, format string, args ...any) *StatusError {
	return &StatusError{Status: status, Msg: fmt.Sprintf(format, args...)}
}

// Lost creates a StatusError for a lost context. It wraps ErrContextLost.
func Lost(msg string) *StatusError {
	return &StatusError{Status: StatusContextLost, Msg: msg, Err: ErrContextLost}
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s (status 0x%04X)", e.Msg, e.Status)
}

// Unwrap returns the underlying error, if any.
func (e *StatusError) Unwrap() error { return e.Err }

// DriverStateError reports a command that failed while being applied to the
// driver. Such failures surface after the producing call has returned, so
// they are delivered through the interpreter's error handler.
type DriverStateError struct {
	Op     Opcode
	Object ID
	Status uint32
	Err    error
}

// newDriverStateError wraps err, taking the status code from a StatusError
// in its chain when present.
func newDriverStateError(op Opcode, id ID, err error) *DriverStateError {
	status := StatusUnknown
	var se *StatusError
	if errors.As(err, &se) {
		status = se.Status
	}
	return &DriverStateError{Op: op, Object: id, Status: status, Err: err}
}

func (e *DriverStateError) Error() string {
	return fmt.Sprintf("glir: %s on object %s failed (status 0x%04X): %v", e.Op, e.Object, e.Status, e.Err)
}

// Unwrap returns the underlying driver error.
func (e *DriverStateError) Unwrap() error { return e.Err }
