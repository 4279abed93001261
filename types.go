package gloo

import (
	"fmt"

	"github.com/gogpu/gloo/glir"
)

// Shape is the (height, width) extent of an object.
type Shape = glir.Shape

// Region is a rectangle within an object, origin top-left.
type Region = glir.Region

// Format is a storage format code.
type Format = glir.Format

// Storage formats. Any other GL format code may be passed as Format(code);
// it is forwarded to the driver unchecked.
const (
	FormatNone    = glir.FormatNone
	FormatColor   = glir.FormatColor
	FormatDepth   = glir.FormatDepth
	FormatStencil = glir.FormatStencil
)

// Slot is a framebuffer attachment point, also used as read mode.
type Slot = glir.Slot

// Attachment slots.
const (
	Color   = glir.SlotColor
	Depth   = glir.SlotDepth
	Stencil = glir.SlotStencil
)

// ParseFormat converts "color", "depth" or "stencil" to a Format.
func ParseFormat(name string) (Format, error) {
	return glir.ParseFormat(name)
}

// ParseSlot converts "color", "depth" or "stencil" to a Slot.
func ParseSlot(name string) (Slot, error) {
	return glir.ParseSlot(name)
}

// parseShape validates a (height, width[, channels]) tuple. The third
// dimension is accepted for symmetry with textures and ignored.
func parseShape(shape []int) (Shape, error) {
	if len(shape) != 2 && len(shape) != 3 {
		return Shape{}, fmt.Errorf("%w: got %d elements", ErrInvalidShape, len(shape))
	}
	for _, n := range shape {
		if n <= 0 {
			return Shape{}, fmt.Errorf("%w: got %v", ErrInvalidShape, shape)
		}
	}
	return Shape{Height: shape[0], Width: shape[1]}, nil
}
