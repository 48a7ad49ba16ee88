package framegraph

import (
	"sync"

	"github.com/gogpu/framegraph/internal/arena"
)

// Graph schedules one frame of rendering work.
//
// Each frame follows the same cycle: declare resources and passes, call
// Validate, then Build. Build resets all per-frame state so the next frame
// reuses the same storage; only the frame counter survives.
//
// Declarations (Add*, AddPass, NewPass) may come from several goroutines.
// Validate and Build must run on the render thread and not concurrently with
// declarations. Getters are meant for build callbacks and take no lock.
type Graph struct {
	mu sync.Mutex

	targetPool  TargetSetPool
	bufferPool  BufferPool
	texturePool TexturePool

	opts graphOptions

	// Per-frame registry.
	epoch    uint16
	slots    []slot
	targets  []TargetSetResource
	buffers  []BufferResource
	textures []TextureResource
	deps     []dependencyResource
	declErr  error

	// Per-frame pass list.
	passes    []*Pass
	passArena *arena.Slab[Pass]

	// Resolver state, indexed by pass.
	depth        []int
	onChain      []bool
	nextProducer []int32
	cycles       int

	// order holds one bucket per depth level; levels is the number in use.
	order     [][]int
	levels    int
	execOrder []*Pass
	validated bool

	// Executor state.
	frame      uint64
	barriers   BarrierTarget
	passOpen   bool
	passToken  PassToken
	openOutput Handle
	openStore  TargetFlags
	openTarget int

	targetReq  TargetSetRequest
	bufferReq  BufferRequest
	textureReq TextureRequest

	report    Report
	destroyed bool
}

// NewGraph creates a graph drawing physical resources from the given pools.
// Any pool may be nil when the frame never declares pooled resources of that kind.
func NewGraph(targets TargetSetPool, buffers BufferPool, textures TexturePool, opts ...GraphOption) *Graph {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Graph{
		targetPool:  targets,
		bufferPool:  buffers,
		texturePool: textures,
		opts:        o,
		frame:       o.frameCounter,
		passArena:   arena.NewSlab[Pass](32),
		order:       make([][]int, o.maxDepth),
		openOutput:  InvalidHandle,
		openTarget:  -1,
	}
}

// NewPass allocates a pass from the graph's per-frame arena.
// The pass is recycled by the next cleanup, so it must not be kept after Build.
// The pass still has to be added with AddPass.
func (g *Graph) NewPass(name string) *Pass {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.passArena.Alloc()
	p.reset(name)
	return p
}

// AddPass appends a pass to the frame. Insertion order does not determine
// execution order.
func (g *Graph) AddPass(p *Pass) {
	if p == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.passes = append(g.passes, p)
	g.validated = false
}

// Validate resolves the dependency graph, orders passes and computes
// resource reference counts. It must succeed before Build.
//
// A failed Validate drops the frame: its resources and passes are discarded
// and the next frame starts with fresh declarations.
func (g *Graph) Validate() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.destroyed {
		return ErrDestroyed
	}
	if err := g.validate(); err != nil {
		Logger().Warn("framegraph: frame dropped", "frame", g.frame, "err", err)
		g.cleanup()
		return err
	}
	return nil
}

func (g *Graph) validate() error {
	g.validated = false
	if g.declErr != nil {
		return g.declErr
	}
	if err := g.checkPasses(); err != nil {
		return err
	}
	g.linkProducers()
	if err := g.resolveDepths(); err != nil {
		return err
	}
	g.bucketPasses()
	g.trackLifetimes()
	g.validated = true

	Logger().Debug("framegraph: validated",
		"passes", len(g.passes),
		"scheduled", len(g.execOrder),
		"levels", g.levels,
		"targets", len(g.targets),
		"buffers", len(g.buffers),
		"textures", len(g.textures))
	return nil
}

// cleanup discards all per-frame state, keeping storage for reuse.
func (g *Graph) cleanup() {
	g.epoch++
	g.slots = g.slots[:0]
	clear(g.targets)
	g.targets = g.targets[:0]
	clear(g.buffers)
	g.buffers = g.buffers[:0]
	clear(g.textures)
	g.textures = g.textures[:0]
	g.deps = g.deps[:0]
	g.declErr = nil

	clear(g.passes)
	g.passes = g.passes[:0]
	g.passArena.Reset()

	for d := range g.order {
		g.order[d] = g.order[d][:0]
	}
	g.levels = 0
	clear(g.execOrder)
	g.execOrder = g.execOrder[:0]
	g.validated = false

	g.barriers = nil
	g.passOpen = false
	g.openOutput = InvalidHandle
	g.openTarget = -1
	g.targetReq = TargetSetRequest{}
	g.bufferReq = BufferRequest{}
	g.textureReq = TextureRequest{}
}

// Destroy releases everything the graph still holds and drops its pool
// references. It is called once at teardown, not per frame.
func (g *Graph) Destroy() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.destroyed {
		return
	}
	g.releaseAll()
	g.cleanup()
	g.passArena.Release()
	g.targetPool = nil
	g.bufferPool = nil
	g.texturePool = nil
	g.destroyed = true
	Logger().Info("framegraph: destroyed", "frames", g.frame)
}

// FrameCounter returns the number of successfully built frames (plus the
// initial value set with WithFrameCounter).
func (g *Graph) FrameCounter() uint64 { return g.frame }

// Targets returns the target set records declared this frame.
// The slice is owned by the graph and must not be modified.
func (g *Graph) Targets() []TargetSetResource { return g.targets }

// Buffers returns the buffer records declared this frame.
func (g *Graph) Buffers() []BufferResource { return g.buffers }

// Textures returns the texture records declared this frame.
func (g *Graph) Textures() []TextureResource { return g.textures }

// Passes returns the passes declared this frame, in insertion order.
func (g *Graph) Passes() []*Pass { return g.passes }

// ExecutionOrder returns the validated execution order: deepest passes
// first. Passes unreachable from any root are absent.
func (g *Graph) ExecutionOrder() []*Pass { return g.execOrder }

// Depth returns the validated depth of p, or -1 if p is not scheduled.
func (g *Graph) Depth(p *Pass) int {
	for i, q := range g.passes {
		if q == p && i < len(g.depth) {
			return g.depth[i]
		}
	}
	return -1
}

// LastReport returns the report of the most recent Build. Its slices are
// reused by the next Build.
func (g *Graph) LastReport() Report { return g.report }
