package framegraph

import "github.com/gogpu/gputypes"

// ClearFlags selects which attachments a pass clears when it begins.
type ClearFlags uint8

const (
	// ClearColor clears all color attachments.
	ClearColor ClearFlags = 1 << iota
	// ClearDepth clears the depth attachment.
	ClearDepth
	// ClearStencil clears the stencil attachment.
	ClearStencil
)

// Clear describes the clear values used when a pass begins.
type Clear struct {
	Mask    ClearFlags
	Colors  [MaxColorTargets]gputypes.Color
	Depth   float32
	Stencil uint32
}

// TargetFlags selects attachments for load and store masks.
type TargetFlags uint8

const (
	// TargetNone selects no attachment.
	TargetNone TargetFlags = 0
	// TargetColor selects all color attachments.
	TargetColor TargetFlags = 1 << (iota - 1)
	// TargetDepth selects the depth attachment.
	TargetDepth
	// TargetStencil selects the stencil attachment.
	TargetStencil
	// TargetAll selects every attachment.
	TargetAll = TargetColor | TargetDepth | TargetStencil
)

// Output is the single resource written by a pass.
type Output struct {
	// Resource is the written resource, PrimaryHandle for the primary
	// output, or InvalidHandle when the pass has side effects only.
	Resource Handle
	Clear    Clear
	Load     TargetFlags
	Store    TargetFlags
}

// BuildFunc emits the commands of a pass. It runs during Graph.Build after the
// pass output has been acquired and opened, and may look up physical
// resources through the graph getters.
type BuildFunc func(g *Graph, ct CommandTarget)

// Pass is one unit of scheduled work: at most one output, any number of inputs
// and an ordered list of build callbacks.
//
// A Pass is not safe for concurrent use; declare it on one goroutine and hand
// it to Graph.AddPass.
type Pass struct {
	name   string
	inputs []Handle
	output Output
	builds []BuildFunc
}

// NewPass creates an empty pass with no output.
func NewPass(name string) *Pass {
	p := &Pass{}
	p.reset(name)
	return p
}

// reset prepares a recycled pass, keeping slice capacity.
func (p *Pass) reset(name string) {
	p.name = name
	p.inputs = p.inputs[:0]
	clear(p.builds)
	p.builds = p.builds[:0]
	p.output = Output{Resource: InvalidHandle}
}

// Name returns the debug name.
func (p *Pass) Name() string { return p.name }

// Inputs returns the resources read by the pass. The slice must not be modified.
func (p *Pass) Inputs() []Handle { return p.inputs }

// Output returns the resource written by the pass.
func (p *Pass) Output() Output { return p.output }

// HasOutput reports whether the pass writes a resource.
func (p *Pass) HasOutput() bool { return p.output.Resource != InvalidHandle }

// AddInput declares that the pass reads h.
// PrimaryHandle and InvalidHandle are ignored, so callers can pass the
// result of an optional sub-pass without checking it. Duplicates are dropped.
func (p *Pass) AddInput(h Handle) {
	if !h.IsValid() {
		return
	}
	for _, in := range p.inputs {
		if in == h {
			return
		}
	}
	p.inputs = append(p.inputs, h)
}

// SetOutput declares the target written by the pass with clear values and
// load/store masks.
func (p *Pass) SetOutput(h Handle, clear Clear, load, store TargetFlags) {
	p.output = Output{Resource: h, Clear: clear, Load: load, Store: store}
}

// SetOutputNoClear declares the target written by the pass without clearing it.
func (p *Pass) SetOutputNoClear(h Handle, load, store TargetFlags) {
	p.output = Output{Resource: h, Load: load, Store: store}
}

// SetBufferOutput declares a buffer, texture or dependency written by the pass.
func (p *Pass) SetBufferOutput(h Handle) {
	p.output = Output{Resource: h}
}

// AddBuild appends a build callback. Callbacks run in registration order.
func (p *Pass) AddBuild(fn BuildFunc) {
	if fn != nil {
		p.builds = append(p.builds, fn)
	}
}

// Builds returns the registered build callbacks.
func (p *Pass) Builds() []BuildFunc { return p.builds }
