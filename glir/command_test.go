package glir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpcodeString(t *testing.T) {
	tests := []struct {
		op   Opcode
		want string
	}{
		{OpCreate, "CREATE"},
		{OpSize, "SIZE"},
		{OpAttach, "ATTACH"},
		{OpData, "DATA"},
		{OpDelete, "DELETE"},
		{Opcode(200), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.String())
		})
	}
}

func TestCommandOpAndTarget(t *testing.T) {
	cmds := []struct {
		cmd Command
		op  Opcode
	}{
		{CreateCommand{Object: 1, Kind: KindTexture}, OpCreate},
		{SizeCommand{Object: 1, Shape: Shape{2, 3}, Format: FormatColor}, OpSize},
		{AttachCommand{Object: 1, Slot: SlotDepth, Attached: 2}, OpAttach},
		{DataCommand{Object: 1}, OpData},
		{DeleteCommand{Object: 1}, OpDelete},
	}
	for _, tt := range cmds {
		assert.Equal(t, tt.op, tt.cmd.Op())
		assert.Equal(t, ID(1), tt.cmd.Target())
	}
}

func TestNewDataCommandCopiesPayload(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	cmd := NewDataCommand(7, Region{Width: 1, Height: 1}, buf)

	// The caller reuses its buffer immediately.
	buf[0] = 99

	assert.Equal(t, []byte{1, 2, 3, 4}, cmd.Data)
}

func TestAttachCommandTargetTag(t *testing.T) {
	assert.Equal(t, TargetColor, AttachCommand{Slot: SlotColor}.TargetTag())
	assert.Equal(t, TargetDepth, AttachCommand{Slot: SlotDepth}.TargetTag())
	assert.Equal(t, TargetStencil, AttachCommand{Slot: SlotStencil}.TargetTag())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("color")
	assert.NoError(t, err)
	assert.Equal(t, FormatColor, f)

	f, err = ParseFormat("depth")
	assert.NoError(t, err)
	assert.Equal(t, FormatDepth, f)

	f, err = ParseFormat("stencil")
	assert.NoError(t, err)
	assert.Equal(t, FormatStencil, f)

	_, err = ParseFormat("rgb")
	assert.Error(t, err)
}

func TestFormatBytesPerPixel(t *testing.T) {
	assert.Equal(t, 4, FormatColor.BytesPerPixel())
	assert.Equal(t, 2, FormatDepth.BytesPerPixel())
	assert.Equal(t, 1, FormatStencil.BytesPerPixel())
	assert.Equal(t, 2, FormatRGB565.BytesPerPixel())
	assert.Equal(t, 4, Format(0x1234).BytesPerPixel())
}

func TestShapeContains(t *testing.T) {
	s := Shape{Height: 4, Width: 8}
	assert.True(t, s.Contains(Full(s)))
	assert.True(t, s.Contains(Region{X: 7, Y: 3, Width: 1, Height: 1}))
	assert.False(t, s.Contains(Region{X: 7, Y: 3, Width: 2, Height: 1}))
	assert.False(t, s.Contains(Region{X: -1, Width: 1, Height: 1}))
	assert.Equal(t, "(4, 8)", s.String())
}

func TestParseSlot(t *testing.T) {
	for _, s := range Slots {
		got, err := ParseSlot(s.String())
		assert.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseSlot("accum")
	assert.Error(t, err)
}
