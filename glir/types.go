package glir

import "fmt"

// Kind identifies the type of a logical GPU object.
type Kind uint8

const (
	KindBuffer       Kind = iota + 1 // Vertex, index or uniform buffer
	KindTexture                      // 2D texture
	KindRenderBuffer                 // Render buffer (color, depth or stencil storage)
	KindFrameBuffer                  // Framebuffer with color/depth/stencil slots
	KindProgram                      // Shader program
)

var kindNames = [...]string{
	KindBuffer:       "Buffer",
	KindTexture:      "Texture",
	KindRenderBuffer: "RenderBuffer",
	KindFrameBuffer:  "FrameBuffer",
	KindProgram:      "Program",
}

// String returns the string representation of a Kind.
func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	return k >= KindBuffer && k <= KindProgram
}

// Shape is the two-dimensional (y, x) extent of a GPU object.
type Shape struct {
	Height int
	Width  int
}

// Empty reports whether the shape has no pixels.
func (s Shape) Empty() bool {
	return s.Height <= 0 || s.Width <= 0
}

// Pixels returns Height*Width.
func (s Shape) Pixels() int {
	return s.Height * s.Width
}

// Contains reports whether r lies entirely within the shape.
func (s Shape) Contains(r Region) bool {
	if r.X < 0 || r.Y < 0 || r.Width < 0 || r.Height < 0 {
		return false
	}
	return r.X+r.Width <= s.Width && r.Y+r.Height <= s.Height
}

func (s Shape) String() string {
	return fmt.Sprintf("(%d, %d)", s.Height, s.Width)
}

// Region is a rectangular sub-area of an object, origin at the top-left
// corner. Row 0 is the top row.
type Region struct {
	X, Y          int
	Width, Height int
}

// Full returns the region covering the whole shape.
func Full(s Shape) Region {
	return Region{Width: s.Width, Height: s.Height}
}

// Format is a storage format code. Values follow the GL enumeration so that
// explicit codes can be passed through unchecked.
type Format uint32

// Format codes. FormatNone means "not given".
const (
	FormatNone    Format = 0
	FormatColor   Format = 0x1908 // GL_RGBA
	FormatDepth   Format = 0x81A5 // GL_DEPTH_COMPONENT16
	FormatStencil Format = 0x8D48 // GL_STENCIL_INDEX8

	FormatRGBA8    Format = 0x8058 // GL_RGBA8
	FormatRGBA4    Format = 0x8056 // GL_RGBA4
	FormatRGB5A1   Format = 0x8057 // GL_RGB5_A1
	FormatRGB565   Format = 0x8D62 // GL_RGB565
	FormatDepth24  Format = 0x81A6 // GL_DEPTH_COMPONENT24
	FormatDepth32F Format = 0x8CAC // GL_DEPTH_COMPONENT32F
)

// ParseFormat converts the symbolic names "color", "depth" and "stencil"
// to their format codes.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "color":
		return FormatColor, nil
	case "depth":
		return FormatDepth, nil
	case "stencil":
		return FormatStencil, nil
	}
	return FormatNone, fmt.Errorf("glir: format must be \"color\", \"depth\" or \"stencil\", not %q", name)
}

// BytesPerPixel returns the storage size of one pixel. Unknown raw codes
// are assumed to be 4 bytes wide.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatColor, FormatRGBA8, FormatDepth24, FormatDepth32F:
		return 4
	case FormatRGBA4, FormatRGB5A1, FormatRGB565, FormatDepth:
		return 2
	case FormatStencil:
		return 1
	default:
		return 4
	}
}

// IsColor reports whether f stores color data.
func (f Format) IsColor() bool {
	switch f {
	case FormatColor, FormatRGBA8, FormatRGBA4, FormatRGB5A1, FormatRGB565:
		return true
	}
	return false
}

// IsDepth reports whether f stores depth data.
func (f Format) IsDepth() bool {
	switch f {
	case FormatDepth, FormatDepth24, FormatDepth32F:
		return true
	}
	return false
}

// IsStencil reports whether f stores stencil data.
func (f Format) IsStencil() bool {
	return f == FormatStencil
}

func (f Format) String() string {
	switch f {
	case FormatNone:
		return "none"
	case FormatColor:
		return "color"
	case FormatDepth:
		return "depth"
	case FormatStencil:
		return "stencil"
	}
	return fmt.Sprintf("0x%04X", uint32(f))
}

// Slot names a framebuffer attachment point. Read modes use the same values.
type Slot uint8

const (
	SlotColor Slot = iota
	SlotDepth
	SlotStencil

	// NumSlots is the number of attachment slots.
	NumSlots = 3
)

// Attachment target tags as seen by the driver.
const (
	TargetColor   uint32 = 0x8CE0 // GL_COLOR_ATTACHMENT0
	TargetDepth   uint32 = 0x8D00 // GL_DEPTH_ATTACHMENT
	TargetStencil uint32 = 0x8D20 // GL_STENCIL_ATTACHMENT
)

// Slots lists the attachment slots in shape priority order.
var Slots = [NumSlots]Slot{SlotColor, SlotDepth, SlotStencil}

// ParseSlot converts "color", "depth" or "stencil" to a Slot.
func ParseSlot(name string) (Slot, error) {
	switch name {
	case "color":
		return SlotColor, nil
	case "depth":
		return SlotDepth, nil
	case "stencil":
		return SlotStencil, nil
	}
	return 0, fmt.Errorf("glir: mode must be \"color\", \"depth\" or \"stencil\", not %q", name)
}

// Valid reports whether s is a defined slot.
func (s Slot) Valid() bool {
	return s < NumSlots
}

// Target returns the driver-facing attachment tag for the slot.
func (s Slot) Target() uint32 {
	switch s {
	case SlotDepth:
		return TargetDepth
	case SlotStencil:
		return TargetStencil
	default:
		return TargetColor
	}
}

func (s Slot) String() string {
	switch s {
	case SlotColor:
		return "color"
	case SlotDepth:
		return "depth"
	case SlotStencil:
		return "stencil"
	}
	return fmt.Sprintf("Slot(%d)", uint8(s))
}
