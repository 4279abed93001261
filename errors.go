package gloo

import "errors"

// Validation errors. They are returned synchronously by the call that
// violates the contract; nothing is queued in that case.
var (
	// ErrInvalidShape is returned for a shape that is not 2 or 3 positive
	// integers.
	ErrInvalidShape = errors.New("gloo: shape must be 2 or 3 positive integers")

	// ErrMissingFormat is returned when no format was given and none was
	// set before.
	ErrMissingFormat = errors.New("gloo: format can only be omitted if already set")

	// ErrInvalidFormat is returned for a format a resource cannot store.
	ErrInvalidFormat = errors.New("gloo: invalid format")

	// ErrImmutableResource is returned when resizing a resource created
	// as not resizeable.
	ErrImmutableResource = errors.New("gloo: resource is not resizeable")

	// ErrTypeMismatch is returned when an object kind is not accepted by a
	// framebuffer slot.
	ErrTypeMismatch = errors.New("gloo: object kind not accepted by slot")

	// ErrUndefinedShape is returned by the shape query of a framebuffer
	// without attachments.
	ErrUndefinedShape = errors.New("gloo: framebuffer without attachments has undefined shape")

	// ErrNoAttachment is returned when reading from an empty slot.
	ErrNoAttachment = errors.New("gloo: no attachment in slot")

	// ErrRegionOutOfBounds is returned when an upload region does not fit
	// the current shape.
	ErrRegionOutOfBounds = errors.New("gloo: region out of bounds")

	// ErrDataSize is returned when an upload payload does not match its
	// region.
	ErrDataSize = errors.New("gloo: data size does not match region")

	// ErrEmptySource is returned for an empty program source.
	ErrEmptySource = errors.New("gloo: empty program source")

	// ErrDeleted is returned when using an object after Delete.
	ErrDeleted = errors.New("gloo: object deleted")
)

// Session errors.
var (
	// ErrNoDriver is returned by operations that need a bound driver.
	ErrNoDriver = errors.New("gloo: no driver bound")

	// ErrAlreadyBound is returned by Bind on a context that has a driver.
	ErrAlreadyBound = errors.New("gloo: driver already bound")

	// ErrClosed is returned after Context.Close.
	ErrClosed = errors.New("gloo: context closed")

	// ErrNotActive is returned by Deactivate for a framebuffer that is not
	// the active one.
	ErrNotActive = errors.New("gloo: framebuffer is not active")

	// ErrForeignObject is returned when objects of different contexts are
	// combined.
	ErrForeignObject = errors.New("gloo: object belongs to another context")
)
