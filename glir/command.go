package glir

// Opcode identifies the operation carried by a command.
type Opcode uint8

const (
	OpCreate Opcode = iota // Allocate backing resource
	OpSize                 // (Re)size and (re)format
	OpAttach               // Bind/unbind a framebuffer attachment
	OpData                 // Upload sub-region data
	OpDelete               // Release backing resource
)

// opcodeNames maps Opcode values to their string representation.
var opcodeNames = [...]string{
	OpCreate: "CREATE",
	OpSize:   "SIZE",
	OpAttach: "ATTACH",
	OpData:   "DATA",
	OpDelete: "DELETE",
}

// String returns the string representation of an Opcode.
func (o Opcode) String() string {
	if int(o) < len(opcodeNames) {
		return opcodeNames[o]
	}
	return "Unknown"
}

// Command is the interface implemented by all command types.
// Commands are immutable once appended to a queue.
type Command interface {
	// Op returns the opcode for this command.
	Op() Opcode

	// Target returns the logical ID the command applies to.
	Target() ID
}

// CreateCommand allocates the backing resource for an object.
type CreateCommand struct {
	Object ID
	Kind   Kind
}

// Op implements Command.
func (CreateCommand) Op() Opcode { return OpCreate }

// Target implements Command.
func (c CreateCommand) Target() ID { return c.Object }

// SizeCommand sizes or resizes an object. Resizing discards contents.
type SizeCommand struct {
	Object ID
	Shape  Shape
	Format Format
}

// Op implements Command.
func (SizeCommand) Op() Opcode { return OpSize }

// Target implements Command.
func (c SizeCommand) Target() ID { return c.Object }

// AttachCommand binds Attached to a framebuffer slot. Attached is NoID on
// detach.
type AttachCommand struct {
	Object   ID
	Slot     Slot
	Attached ID
}

// Op implements Command.
func (AttachCommand) Op() Opcode { return OpAttach }

// Target implements Command.
func (c AttachCommand) Target() ID { return c.Object }

// TargetTag returns the driver-facing attachment tag of the slot.
func (c AttachCommand) TargetTag() uint32 { return c.Slot.Target() }

// DataCommand uploads Data into Region. Data is owned by the command and
// must not be modified after the command is appended.
type DataCommand struct {
	Object ID
	Region Region
	Data   []byte
}

// Op implements Command.
func (DataCommand) Op() Opcode { return OpData }

// Target implements Command.
func (c DataCommand) Target() ID { return c.Object }

// NewDataCommand builds a DataCommand holding a private copy of data, so
// the caller may reuse its buffer as soon as this returns.
func NewDataCommand(id ID, region Region, data []byte) DataCommand {
	owned := make([]byte, len(data))
	copy(owned, data)
	return DataCommand{Object: id, Region: region, Data: owned}
}

// DeleteCommand releases the backing resource of an object.
type DeleteCommand struct {
	Object ID
}

// Op implements Command.
func (DeleteCommand) Op() Opcode { return OpDelete }

// Target implements Command.
func (c DeleteCommand) Target() ID { return c.Object }
