package framegraph

// trackLifetimes recomputes reference counts over the scheduled passes and
// records the first and last scheduled use of every resource. Dead passes
// contribute nothing.
func (g *Graph) trackLifetimes() {
	for i := range g.targets {
		r := &g.targets[i]
		r.InputRefCount, r.OutputRefCount = 0, 0
		r.sharedDepthSource = false
	}
	for i := range g.buffers {
		g.buffers[i].InputRefCount, g.buffers[i].OutputRefCount = 0, 0
	}
	for i := range g.textures {
		g.textures[i].InputRefCount, g.textures[i].OutputRefCount = 0, 0
	}
	for i := range g.deps {
		g.deps[i].InputRefCount, g.deps[i].OutputRefCount = 0, 0
	}
	for i := range g.slots {
		g.slots[i].firstUse, g.slots[i].lastUse = -1, -1
	}

	for step, p := range g.execOrder {
		if s, ok := g.lookup(p.output.Resource); ok {
			_, out := g.refCounts(s)
			*out++
			g.touch(s, step)
		}
		for _, h := range p.inputs {
			if s, ok := g.lookup(h); ok {
				in, _ := g.refCounts(s)
				*in++
				g.touch(s, step)
			}
		}
	}

	for i := range g.targets {
		r := &g.targets[i]
		if r.InputRefCount+r.OutputRefCount == 0 {
			continue
		}
		g.markSharedDepth(r.SharedDepthStencil)
	}
}

func (g *Graph) touch(s *slot, step int) {
	if s.firstUse < 0 {
		s.firstUse = int32(step) //nolint:gosec // G115: step is bounded by the pass count
	}
	s.lastUse = int32(step) //nolint:gosec // G115: step is bounded by the pass count
}

// markSharedDepth flags h and every target its depth chains to as a shared
// depth source. Cycles stop the walk; the realizer reports them.
func (g *Graph) markSharedDepth(h Handle) {
	for range len(g.targets) {
		i, ok := g.targetIndex(h)
		if !ok || g.targets[i].sharedDepthSource {
			return
		}
		g.targets[i].sharedDepthSource = true
		h = g.targets[i].SharedDepthStencil
	}
}
