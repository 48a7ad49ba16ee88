package halres

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Shader is a compiled WGSL module owned by a Device.
type Shader struct {
	label  string
	module hal.ShaderModule
	words  int
}

// Label returns the debug label the shader was compiled with.
func (s *Shader) Label() string { return s.label }

// Module returns the HAL shader module.
func (s *Shader) Module() hal.ShaderModule { return s.module }

// Words returns the size of the SPIR-V code in 32-bit words.
func (s *Shader) Words() int { return s.words }

// CompileShader compiles WGSL source to SPIR-V and creates a shader module
// for the build callbacks of compute and render passes.
func (d *Device) CompileShader(label, wgsl string) (*Shader, error) {
	spirv, err := compileSPIRV(wgsl)
	if err != nil {
		return nil, fmt.Errorf("halres: compile %s: %w", label, err)
	}
	module, err := d.dev.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("halres: create shader module %s: %w", label, err)
	}
	return &Shader{label: label, module: module, words: len(spirv)}, nil
}

// DestroyShader releases a shader created by CompileShader.
func (d *Device) DestroyShader(s *Shader) {
	if s == nil || s.module == nil {
		return
	}
	d.dev.DestroyShaderModule(s.module)
	s.module = nil
}

// ComputePipeline is a compute pipeline whose bind group 0 holds storage
// buffers at bindings 0..n-1.
type ComputePipeline struct {
	label    string
	pipeline hal.ComputePipeline
	layout   hal.PipelineLayout
	group    hal.BindGroupLayout
}

// Label returns the debug label.
func (p *ComputePipeline) Label() string { return p.label }

// Raw returns the HAL compute pipeline.
func (p *ComputePipeline) Raw() hal.ComputePipeline { return p.pipeline }

// BindGroupLayout returns the layout of bind group 0.
func (p *ComputePipeline) BindGroupLayout() hal.BindGroupLayout { return p.group }

// CreateComputePipeline builds a pipeline running entry of s with storageBuffers
// read-write storage buffers in bind group 0.
func (d *Device) CreateComputePipeline(s *Shader, entry string, storageBuffers int) (*ComputePipeline, error) {
	if s == nil || s.module == nil {
		return nil, fmt.Errorf("halres: compute pipeline %q: %w", entry, ErrNoShader)
	}
	entries := make([]gputypes.BindGroupLayoutEntry, storageBuffers)
	for i := range entries {
		entries[i] = gputypes.BindGroupLayoutEntry{
			Binding:    uint32(i), //nolint:gosec // G115: binding count is small
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
		}
	}

	p := &ComputePipeline{label: s.label}
	var err error
	p.group, err = d.dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{Label: s.label, Entries: entries})
	if err != nil {
		return nil, fmt.Errorf("halres: bind group layout %s: %w", s.label, err)
	}
	p.layout, err = d.dev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            s.label,
		BindGroupLayouts: []hal.BindGroupLayout{p.group},
	})
	if err != nil {
		d.DestroyComputePipeline(p)
		return nil, fmt.Errorf("halres: pipeline layout %s: %w", s.label, err)
	}
	p.pipeline, err = d.dev.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   s.label,
		Layout:  p.layout,
		Compute: hal.ComputeState{Module: s.module, EntryPoint: entry},
	})
	if err != nil {
		d.DestroyComputePipeline(p)
		return nil, fmt.Errorf("halres: compute pipeline %s: %w", s.label, err)
	}
	return p, nil
}

// DestroyComputePipeline releases p and its layouts.
func (d *Device) DestroyComputePipeline(p *ComputePipeline) {
	if p == nil {
		return
	}
	if p.pipeline != nil {
		d.dev.DestroyComputePipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.layout != nil {
		d.dev.DestroyPipelineLayout(p.layout)
		p.layout = nil
	}
	if p.group != nil {
		d.dev.DestroyBindGroupLayout(p.group)
		p.group = nil
	}
}

// compileSPIRV returns the little-endian SPIR-V words for wgsl.
func compileSPIRV(wgsl string) ([]uint32, error) {
	b, err := naga.Compile(wgsl)
	if err != nil {
		return nil, err
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("spir-v length %d is not word aligned", len(b))
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return words, nil
}
