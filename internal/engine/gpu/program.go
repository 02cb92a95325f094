package gpu

import (
	"errors"
	"fmt"
)

// Program is a linked shader program with its uniform locations resolved.
type Program struct {
	ID        Handle
	locations map[string]int32
}

// loadProgram compiles a program and looks up every required uniform.
// A missing uniform is an error; the program is deleted in that case.
func loadProgram(dev Device, name, vertexSrc, fragmentSrc string, uniforms []string) (*Program, error) {
	id, err := dev.CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("%s program: %w", name, err)
	}

	p := &Program{ID: id, locations: make(map[string]int32, len(uniforms))}
	for _, u := range uniforms {
		loc, err := dev.UniformLocation(id, u)
		if err == nil && loc < 0 {
			err = fmt.Errorf("uniform %q not found", u)
		}
		if err != nil {
			err = errors.Join(err, dev.DeleteProgram(id))
			return nil, fmt.Errorf("%s program: %w", name, err)
		}
		p.locations[u] = loc
	}
	return p, nil
}

// Location returns the location of a known uniform, or -1.
func (p *Program) Location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	return -1
}
