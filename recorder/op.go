// Package recorder is the command-recording layer driven by framegraph.Graph.
//
// A Recorder implements framegraph.CommandTarget and
// framegraph.BarrierTarget. Build callbacks queue draw and dispatch commands
// on it; the graph flushes the queues into an ordered op stream of pass
// begins, pass ends, barriers, draws and dispatches. The stream can be
// inspected in tests and replayed onto a hal.CommandEncoder.
//
//	rec := recorder.New()
//	if err := g.Build(rec, w, h); err != nil {
//	    return err
//	}
//	err := rec.Replay(encoder, recorder.Primary{Color: swapchainView})
//	rec.Reset()
package recorder

import "github.com/gogpu/framegraph"

// OpType identifies an entry of the op stream.
type OpType uint8

const (
	OpBeginPass OpType = iota // Begin a render pass
	OpEndPass                 // End the open render pass
	OpBarrier                 // Make a written target set readable
	OpDraw                    // Draw command inside a render pass
	OpCompute                 // Dispatch outside render passes
)

var opTypeNames = [...]string{
	OpBeginPass: "BeginPass",
	OpEndPass:   "EndPass",
	OpBarrier:   "Barrier",
	OpDraw:      "Draw",
	OpCompute:   "Compute",
}

// String returns the string representation of an OpType.
func (t OpType) String() string {
	if int(t) < len(opTypeNames) {
		return opTypeNames[t]
	}
	return "Unknown"
}

// Op is one entry of the recorded stream. Fields not used by Type are zero.
type Op struct {
	Type  OpType
	Token framegraph.PassToken

	// Target is the pass or barrier target; nil is the primary output.
	Target framegraph.TargetSet
	Clear  framegraph.Clear
	Load   framegraph.TargetFlags
	Store  framegraph.TargetFlags
	Name   string

	Command Command
}
