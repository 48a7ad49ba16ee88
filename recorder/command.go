package recorder

import (
	"github.com/gogpu/wgpu/hal"
)

// Command is a queued draw or dispatch.
type Command interface {
	Label() string
}

// RenderCommand is a command encoded inside a render pass.
type RenderCommand interface {
	Command
	EncodeRender(rp hal.RenderPassEncoder)
}

// ComputeCommand is a command encoded inside a compute pass.
type ComputeCommand interface {
	Command
	EncodeCompute(cp hal.ComputePassEncoder)
}

// Distancer is implemented by commands sorted back to front when the
// alpha-blend queue is flushed.
type Distancer interface {
	Distance() float32
}

// DrawCommand is a non-indexed draw.
type DrawCommand struct {
	Name          string
	Pipeline      hal.RenderPipeline
	BindGroups    []hal.BindGroup
	VertexBuffers []hal.Buffer

	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstInstance uint32

	// ViewDistance orders alpha-blended draws, farthest first.
	ViewDistance float32
}

// Label returns the debug name.
func (d *DrawCommand) Label() string { return d.Name }

// Distance returns the view distance.
func (d *DrawCommand) Distance() float32 { return d.ViewDistance }

// EncodeRender records the draw on rp.
func (d *DrawCommand) EncodeRender(rp hal.RenderPassEncoder) {
	if d.Pipeline != nil {
		rp.SetPipeline(d.Pipeline)
	}
	for i, bg := range d.BindGroups {
		rp.SetBindGroup(uint32(i), bg, nil) //nolint:gosec // G115: bind group index is small
	}
	for i, vb := range d.VertexBuffers {
		rp.SetVertexBuffer(uint32(i), vb, 0) //nolint:gosec // G115: vertex slot is small
	}
	rp.Draw(d.VertexCount, max(d.InstanceCount, 1), d.FirstVertex, d.FirstInstance)
}

// DispatchCommand is a compute dispatch.
type DispatchCommand struct {
	Name       string
	Pipeline   hal.ComputePipeline
	BindGroups []hal.BindGroup
	X, Y, Z    uint32
}

// Label returns the debug name.
func (d *DispatchCommand) Label() string { return d.Name }

// EncodeCompute records the dispatch on cp.
func (d *DispatchCommand) EncodeCompute(cp hal.ComputePassEncoder) {
	if d.Pipeline != nil {
		cp.SetPipeline(d.Pipeline)
	}
	for i, bg := range d.BindGroups {
		cp.SetBindGroup(uint32(i), bg, nil) //nolint:gosec // G115: bind group index is small
	}
	cp.Dispatch(max(d.X, 1), max(d.Y, 1), max(d.Z, 1))
}
