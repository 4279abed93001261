package gloo

import (
	"fmt"

	"github.com/gogpu/gloo/glir"
)

// BufferUsage tells the driver how a buffer will be bound.
type BufferUsage uint8

const (
	// UsageVertex marks a vertex attribute buffer.
	UsageVertex BufferUsage = iota
	// UsageIndex marks an element index buffer.
	UsageIndex
	// UsageUniform marks a uniform block buffer.
	UsageUniform
)

var usageNames = [...]string{"vertex", "index", "uniform"}

func (u BufferUsage) String() string {
	if int(u) < len(usageNames) {
		return usageNames[u]
	}
	return fmt.Sprintf("BufferUsage(%d)", uint8(u))
}

// Buffer is a byte buffer of vertex, index or uniform data. The driver sees
// it as a 1 x size object; DATA regions address bytes on that single row.
type Buffer struct {
	object
	usage BufferUsage
	size  int
}

// NewBuffer creates a buffer of size bytes and queues CREATE and SIZE.
func NewBuffer(ctx *Context, usage BufferUsage, size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: buffer size %d", ErrInvalidShape, size)
	}
	b := &Buffer{usage: usage}
	if err := ctx.adopt(&b.object, b, glir.KindBuffer); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.setSize(size); err != nil {
		return nil, err
	}
	return b, nil
}

// Usage returns the buffer usage.
func (b *Buffer) Usage() BufferUsage { return b.usage }

// Size returns the size in bytes.
func (b *Buffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Resize reallocates the buffer. Previous contents are discarded.
func (b *Buffer) Resize(size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: buffer size %d", ErrInvalidShape, size)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.setSize(size)
}

func (b *Buffer) setSize(size int) error {
	cmd := glir.SizeCommand{Object: b.id, Shape: Shape{Height: 1, Width: size}}
	if err := b.emit(cmd); err != nil {
		return err
	}
	b.size = size
	return nil
}

// SetData writes data at offset. data is copied before SetData returns.
func (b *Buffer) SetData(offset int, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if offset < 0 || len(data) == 0 || offset+len(data) > b.size {
		return fmt.Errorf("%w: %d bytes at %d in buffer of %d", ErrRegionOutOfBounds, len(data), offset, b.size)
	}
	region := Region{X: offset, Width: len(data), Height: 1}
	return b.emit(glir.NewDataCommand(b.id, region, data))
}

func (b *Buffer) restate() (state, attach []glir.Command) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return []glir.Command{
		glir.CreateCommand{Object: b.id, Kind: b.kind},
		glir.SizeCommand{Object: b.id, Shape: Shape{Height: 1, Width: b.size}},
	}, nil
}
