package gloo

import "github.com/gogpu/gloo/glir"

// Program is a shader program. Its WGSL source is shipped to the driver as
// a DATA command with an empty region; compilation happens driver-side and
// failures reach the error handler.
type Program struct {
	object
	source string
}

// NewProgram creates a program and queues CREATE and its source.
func NewProgram(ctx *Context, source string) (*Program, error) {
	if source == "" {
		return nil, ErrEmptySource
	}
	p := &Program{}
	if err := ctx.adopt(&p.object, p, glir.KindProgram); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.setSource(source); err != nil {
		return nil, err
	}
	return p, nil
}

// Source returns the current source.
func (p *Program) Source() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source
}

// SetSource replaces the program source.
func (p *Program) SetSource(source string) error {
	if source == "" {
		return ErrEmptySource
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.setSource(source)
}

func (p *Program) setSource(source string) error {
	if err := p.emit(glir.NewDataCommand(p.id, Region{}, []byte(source))); err != nil {
		return err
	}
	p.source = source
	return nil
}

func (p *Program) restate() (state, attach []glir.Command) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return []glir.Command{
		glir.CreateCommand{Object: p.id, Kind: p.kind},
		glir.NewDataCommand(p.id, Region{}, []byte(p.source)),
	}, nil
}
