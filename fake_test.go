package framegraph

import (
	"fmt"
	"testing"

	"github.com/gogpu/gputypes"
)

// events is a shared log of pool and command-target calls, in call order.
type events []string

func (e *events) add(format string, args ...any) {
	*e = append(*e, fmt.Sprintf(format, args...))
}

type fakeTargetSet struct {
	name   string
	serial int
	w, h   int
}

func (t *fakeTargetSet) Width() int  { return t.w }
func (t *fakeTargetSet) Height() int { return t.h }

type fakeBuffer struct {
	name string
	size uint64
}

func (b *fakeBuffer) Size() uint64 { return b.size }

type fakeTexture struct {
	name string
	w, h int
}

func (t *fakeTexture) Width() int                     { return t.w }
func (t *fakeTexture) Height() int                    { return t.h }
func (t *fakeTexture) Format() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }

type persistentKey struct {
	id     PersistentHandle
	parity uint32
}

// fakeTargetPool hands out a new target set per transient request and the
// same one per persistent identity and parity.
type fakeTargetPool struct {
	log        *events
	failOn     string
	serial     int
	live       map[TargetSet]bool
	persistent map[persistentKey]*fakeTargetSet
	requests   map[string]TargetSetRequest
	cleanups   int
}

func (p *fakeTargetPool) Acquire(req *TargetSetRequest) TargetSet {
	if req.Name == p.failOn {
		p.log.add("fail:%s", req.Name)
		return nil
	}
	p.requests[req.Name] = *req
	p.log.add("acquire:%s", req.Name)

	var ts *fakeTargetSet
	if req.Persistent != 0 {
		key := persistentKey{req.Persistent, req.Parity}
		ts = p.persistent[key]
		if ts == nil {
			p.serial++
			ts = &fakeTargetSet{name: req.Name, serial: p.serial, w: req.Width, h: req.Height}
			p.persistent[key] = ts
		}
	} else {
		p.serial++
		ts = &fakeTargetSet{name: req.Name, serial: p.serial, w: req.Width, h: req.Height}
	}
	p.live[ts] = true
	return ts
}

func (p *fakeTargetPool) Release(ts TargetSet) {
	p.log.add("release:%s", ts.(*fakeTargetSet).name)
	delete(p.live, ts)
}

func (p *fakeTargetPool) Cleanup() { p.cleanups++ }

type fakeBufferPool struct {
	log   *events
	live  map[Buffer]bool
	sizes map[string]uint64
}

func (p *fakeBufferPool) Acquire(req *BufferRequest) Buffer {
	p.log.add("acquire:%s", req.Name)
	p.sizes[req.Name] = req.Size
	b := &fakeBuffer{name: req.Name, size: req.Size}
	p.live[b] = true
	return b
}

func (p *fakeBufferPool) Release(b Buffer) {
	p.log.add("release:%s", b.(*fakeBuffer).name)
	delete(p.live, b)
}

func (p *fakeBufferPool) Cleanup() {}

type fakeTexturePool struct {
	log   *events
	live  map[Texture]bool
	sizes map[string]Size
}

func (p *fakeTexturePool) Acquire(req *TextureRequest) Texture {
	p.log.add("acquire:%s", req.Name)
	p.sizes[req.Name] = Size{Width: req.Width, Height: req.Height}
	t := &fakeTexture{name: req.Name, w: req.Width, h: req.Height}
	p.live[t] = true
	return t
}

func (p *fakeTexturePool) Release(t Texture) {
	p.log.add("release:%s", t.(*fakeTexture).name)
	delete(p.live, t)
}

func (p *fakeTexturePool) Cleanup() {}

// fakeTarget is a CommandTarget and BarrierTarget that logs every call.
// Build callbacks queue computes through the pending counter.
type fakeTarget struct {
	log     *events
	token   PassToken
	pending int
}

func (c *fakeTarget) BeginPass(_ TargetSet, _ *Clear, _, _ TargetFlags, name string) PassToken {
	c.log.add("begin:%s", name)
	c.token++
	return c.token
}

func (c *fakeTarget) EndPass(PassToken) { c.log.add("end") }

func (c *fakeTarget) Barrier(ts TargetSet) {
	name := "?"
	if t, ok := ts.(*fakeTargetSet); ok {
		name = t.name
	}
	c.log.add("barrier:%s", name)
}

func (c *fakeTarget) MergeComputeIntoRender() {
	if c.pending > 0 {
		c.log.add("computes")
		c.pending = 0
	}
}

func (c *fakeTarget) MergeDrawIntoRender()           {}
func (c *fakeTarget) MergePriorityIntoDraw(Priority) {}
func (c *fakeTarget) HavePendingDraws() bool         { return false }
func (c *fakeTarget) HavePendingComputes() bool      { return c.pending > 0 }

type testEnv struct {
	g        *Graph
	log      *events
	targets  *fakeTargetPool
	buffers  *fakeBufferPool
	textures *fakeTexturePool
	ct       *fakeTarget
}

func newTestEnv(t *testing.T, opts ...GraphOption) *testEnv {
	t.Helper()
	log := &events{}
	e := &testEnv{
		log: log,
		targets: &fakeTargetPool{
			log:        log,
			live:       make(map[TargetSet]bool),
			persistent: make(map[persistentKey]*fakeTargetSet),
			requests:   make(map[string]TargetSetRequest),
		},
		buffers:  &fakeBufferPool{log: log, live: make(map[Buffer]bool), sizes: make(map[string]uint64)},
		textures: &fakeTexturePool{log: log, live: make(map[Texture]bool), sizes: make(map[string]Size)},
		ct:       &fakeTarget{log: log},
	}
	e.g = NewGraph(e.targets, e.buffers, e.textures, opts...)
	t.Cleanup(e.g.Destroy)
	return e
}

func newTestGraph(t *testing.T, opts ...GraphOption) *Graph {
	t.Helper()
	return newTestEnv(t, opts...).g
}

// pass declares a pass that clears and stores the color of out (when out is a
// target) and logs "exec:<name>" when it runs.
func (e *testEnv) pass(name string, out Handle, inputs ...Handle) *Pass {
	p := e.g.NewPass(name)
	for _, in := range inputs {
		p.AddInput(in)
	}
	p.SetOutput(out, Clear{Mask: ClearColor}, TargetNone, TargetColor)
	p.AddBuild(func(_ *Graph, ct CommandTarget) {
		ct.(*fakeTarget).log.add("exec:%s", name)
	})
	e.g.AddPass(p)
	return p
}

func (e *testEnv) target(name string, w, h int) Handle {
	return e.g.AddTransientTargetSet(name, TargetSetDesc{Count: 1, Width: w, Height: h},
		InvalidHandle, InvalidHandle)
}

// frame validates and builds, failing the test on error.
func (e *testEnv) frame(t *testing.T, width, height int) {
	t.Helper()
	if err := e.g.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if err := e.g.Build(e.ct, width, height); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
}

func (e *testEnv) reset() { *e.log = (*e.log)[:0] }

func (e *testEnv) live() int {
	return len(e.targets.live) + len(e.buffers.live) + len(e.textures.live)
}

func equalEvents(got events, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func passNames(passes []*Pass) []string {
	names := make([]string, len(passes))
	for i, p := range passes {
		names[i] = p.Name()
	}
	return names
}

func reportNames(r Report) []string {
	names := make([]string, len(r.Passes))
	for i, p := range r.Passes {
		names[i] = p.Name
	}
	return names
}
