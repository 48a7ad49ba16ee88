package recorder

import (
	"fmt"
	"math/bits"
	"slices"
	"strings"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/internal/arena"
)

// numPriorities is the number of priority queues, one per framegraph.Priority bit.
const numPriorities = 6

var (
	_ framegraph.CommandTarget = (*Recorder)(nil)
	_ framegraph.BarrierTarget = (*Recorder)(nil)
)

// Recorder records the command stream of one frame.
//
// Commands queued by build callbacks go to a priority queue, the draw
// queue or the compute queue. The graph moves them into the op stream at
// pass boundaries. Reset rewinds everything, including commands obtained
// from Alloc, so a Recorder is reused frame after frame without allocating.
//
// The Recorder is not safe for concurrent use.
type Recorder struct {
	opts options

	ops      []Op
	draws    []Command
	computes []Command
	queues   [numPriorities][]Command

	token framegraph.PassToken
	open  bool

	slabs map[any]interface{ Reset() }
	stats Stats
}

// Stats counts what was recorded since the last Reset.
type Stats struct {
	Passes   int
	Draws    int
	Computes int
	Barriers int
}

// New creates a Recorder.
func New(opts ...Option) *Recorder {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Recorder{
		opts:  o,
		ops:   make([]Op, 0, o.capacity),
		slabs: make(map[any]interface{ Reset() }),
	}
}

// Alloc returns a zeroed *T owned by r until the next Reset.
//
//	cmd := recorder.Alloc[recorder.DrawCommand](rec)
//	cmd.VertexCount = 3
//	rec.Draw(cmd)
func Alloc[T any](r *Recorder) *T {
	key := (*T)(nil)
	s, ok := r.slabs[key].(*arena.Slab[T])
	if !ok {
		s = arena.NewSlab[T](r.opts.chunkSize)
		r.slabs[key] = s
	}
	return s.New()
}

// Draw queues a draw for the current render pass.
func (r *Recorder) Draw(cmd Command) {
	if cmd != nil {
		r.draws = append(r.draws, cmd)
	}
}

// DrawPriority queues a draw in the queue of the lowest bit set in p.
// The queue is flushed into the draw queue by MergePriorityIntoDraw.
func (r *Recorder) DrawPriority(p framegraph.Priority, cmd Command) {
	if cmd == nil || p == 0 {
		return
	}
	i := bits.TrailingZeros8(uint8(p))
	if i >= numPriorities {
		return
	}
	r.queues[i] = append(r.queues[i], cmd)
}

// Compute queues a dispatch. Dispatches never run inside a render pass.
func (r *Recorder) Compute(cmd Command) {
	if cmd != nil {
		r.computes = append(r.computes, cmd)
	}
}

// BeginPass opens a render pass on ts (nil for the primary output).
func (r *Recorder) BeginPass(ts framegraph.TargetSet, clear *framegraph.Clear, load, store framegraph.TargetFlags, name string) framegraph.PassToken {
	r.token++
	op := Op{
		Type:   OpBeginPass,
		Token:  r.token,
		Target: ts,
		Load:   load,
		Store:  store,
		Name:   name,
	}
	if clear != nil {
		op.Clear = *clear
	}
	r.ops = append(r.ops, op)
	r.open = true
	r.stats.Passes++
	return r.token
}

// EndPass closes the pass opened with token.
func (r *Recorder) EndPass(token framegraph.PassToken) {
	r.ops = append(r.ops, Op{Type: OpEndPass, Token: token})
	r.open = false
}

// Barrier records a transition of ts from attachment to sampled use.
func (r *Recorder) Barrier(ts framegraph.TargetSet) {
	r.ops = append(r.ops, Op{Type: OpBarrier, Target: ts})
	r.stats.Barriers++
}

// MergeComputeIntoRender moves queued dispatches into the op stream.
func (r *Recorder) MergeComputeIntoRender() {
	for _, cmd := range r.computes {
		r.ops = append(r.ops, Op{Type: OpCompute, Command: cmd})
	}
	r.stats.Computes += len(r.computes)
	clear(r.computes)
	r.computes = r.computes[:0]
}

// MergeDrawIntoRender moves queued draws into the op stream.
func (r *Recorder) MergeDrawIntoRender() {
	for _, cmd := range r.draws {
		r.ops = append(r.ops, Op{Type: OpDraw, Command: cmd})
	}
	r.stats.Draws += len(r.draws)
	clear(r.draws)
	r.draws = r.draws[:0]
}

// MergePriorityIntoDraw appends the selected priority queues to the draw
// queue in priority order.
func (r *Recorder) MergePriorityIntoDraw(p framegraph.Priority) {
	for i := range numPriorities {
		bit := framegraph.Priority(1) << i
		q := r.queues[i]
		if p&bit == 0 || len(q) == 0 {
			continue
		}
		if bit == framegraph.PriorityAlphaBlend && r.opts.sortAlpha {
			slices.SortStableFunc(q, backToFront)
		}
		r.draws = append(r.draws, q...)
		clear(q)
		r.queues[i] = q[:0]
	}
}

// backToFront orders commands by descending distance. Commands without a
// distance sort last.
func backToFront(a, b Command) int {
	da, oka := a.(Distancer)
	db, okb := b.(Distancer)
	switch {
	case oka && okb:
		switch x, y := da.Distance(), db.Distance(); {
		case x > y:
			return -1
		case x < y:
			return 1
		}
		return 0
	case oka:
		return -1
	case okb:
		return 1
	}
	return 0
}

// HavePendingDraws reports whether draws wait in the draw or priority queues.
func (r *Recorder) HavePendingDraws() bool {
	if len(r.draws) > 0 {
		return true
	}
	for _, q := range r.queues {
		if len(q) > 0 {
			return true
		}
	}
	return false
}

// HavePendingComputes reports whether dispatches wait in the compute queue.
func (r *Recorder) HavePendingComputes() bool { return len(r.computes) > 0 }

// InPass reports whether a render pass is open.
func (r *Recorder) InPass() bool { return r.open }

// Ops returns the recorded stream. The slice is reused after Reset.
func (r *Recorder) Ops() []Op { return r.ops }

// Stats returns counts since the last Reset.
func (r *Recorder) Stats() Stats { return r.stats }

// Reset discards the stream and all queued and allocated commands.
func (r *Recorder) Reset() {
	clear(r.ops)
	r.ops = r.ops[:0]
	clear(r.draws)
	r.draws = r.draws[:0]
	clear(r.computes)
	r.computes = r.computes[:0]
	for i := range r.queues {
		clear(r.queues[i])
		r.queues[i] = r.queues[i][:0]
	}
	for _, s := range r.slabs {
		s.Reset()
	}
	r.token = 0
	r.open = false
	r.stats = Stats{}
}

// String returns a readable dump of the op stream, one op per line.
func (r *Recorder) String() string {
	var sb strings.Builder
	indent := ""
	for _, op := range r.ops {
		switch op.Type {
		case OpBeginPass:
			target := "primary"
			if op.Target != nil {
				target = fmt.Sprintf("%dx%d", op.Target.Width(), op.Target.Height())
			}
			fmt.Fprintf(&sb, "BeginPass #%d %q target=%s clear=%03b load=%03b store=%03b\n",
				op.Token, op.Name, target, op.Clear.Mask, op.Load, op.Store)
			indent = "  "
		case OpEndPass:
			fmt.Fprintf(&sb, "EndPass #%d\n", op.Token)
			indent = ""
		case OpBarrier:
			fmt.Fprintf(&sb, "%sBarrier\n", indent)
		default:
			fmt.Fprintf(&sb, "%s%s %s\n", indent, op.Type, op.Command.Label())
		}
	}
	return sb.String()
}
