// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gloo/glir"
)

// compileWGSL compiles WGSL source to SPIR-V words.
func compileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// compile replaces the shader module of program r. On failure the previous
// module is kept.
func (d *Driver) compile(r *resource, source string) error {
	if source == "" {
		return glir.Errorf(glir.StatusInvalidValue, "native: empty program source")
	}
	words, err := compileWGSL(source)
	if err != nil {
		return glir.Errorf(glir.StatusInvalidOperation, "native: compile program %s: %v", r.id, err)
	}
	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  d.labelFor(r, ""),
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return glir.Errorf(glir.StatusOutOfMemory, "native: create shader module: %v", err)
	}

	if r.module != nil {
		d.device.DestroyShaderModule(r.module)
	}
	r.module, r.words = module, len(words)
	d.logger.Debug("native: program compiled", "object", uint64(r.id), "words", len(words))
	return nil
}

// ShaderModule returns the compiled module of a program handle, or nil.
func (d *Driver) ShaderModule(h glir.Handle) hal.ShaderModule {
	r, err := d.resource(h)
	if err != nil || r.kind != glir.KindProgram {
		return nil
	}
	return r.module
}
