package framegraph

// Priority selects draw queues in the command-recording layer.
// Values are bit flags; MergePriorityIntoDraw accepts any combination.
type Priority uint8

const (
	PrioritySetup Priority = 1 << iota
	PriorityOpaque
	PriorityPostOpaque
	PriorityAlphaBlend
	PriorityPostAlphaBlend
	PriorityOverlay

	PriorityAll = PrioritySetup | PriorityOpaque | PriorityPostOpaque |
		PriorityAlphaBlend | PriorityPostAlphaBlend | PriorityOverlay
)

// PassToken identifies a render pass opened with BeginPass.
type PassToken uint32

// CommandTarget is the command-recording layer driven by Graph.Build.
//
// The graph only opens and closes render passes and flushes queues; build
// callbacks record the actual draws and dispatches on the concrete target.
type CommandTarget interface {
	// BeginPass opens a render pass on ts. A nil ts is the primary output.
	BeginPass(ts TargetSet, clear *Clear, load, store TargetFlags, name string) PassToken

	// EndPass closes the pass opened with token.
	EndPass(token PassToken)

	// MergeComputeIntoRender moves queued compute commands into the main stream.
	MergeComputeIntoRender()

	// MergeDrawIntoRender moves queued draw commands into the main stream.
	MergeDrawIntoRender()

	// MergePriorityIntoDraw moves the selected priority queues into the draw queue.
	MergePriorityIntoDraw(priorities Priority)

	HavePendingDraws() bool
	HavePendingComputes() bool
}

// BarrierTarget is implemented by command targets that need explicit
// transitions before a written target set is sampled.
type BarrierTarget interface {
	Barrier(ts TargetSet)
}
