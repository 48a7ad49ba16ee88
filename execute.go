package framegraph

import "fmt"

// Build executes the validated frame on ct for a viewport of width x height.
//
// Passes run deepest first. Physical resources are acquired from the pools
// just in time and returned as soon as their last reference is consumed;
// persistent and shared depth targets are returned at the end of the frame.
// On any error the frame is abandoned: whatever was acquired is released and
// the frame counter does not advance. In every case Build resets the
// per-frame state, so the next frame starts with fresh declarations.
func (g *Graph) Build(ct CommandTarget, width, height int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.destroyed {
		return ErrDestroyed
	}
	if !g.validated {
		g.cleanup()
		return ErrNotValidated
	}

	err := g.execute(ct, width, height)
	g.finishReport()
	if err != nil {
		g.abort(ct)
		g.report.Failed = true
		Logger().Warn("framegraph: build failed", "frame", g.frame, "err", err)
	} else {
		Logger().Debug("framegraph: built",
			"frame", g.frame,
			"passes", len(g.report.Passes),
			"merged", g.report.Merged,
			"acquired", g.report.Acquired,
			"released", g.report.Released)
		g.frame++
	}

	if g.targetPool != nil {
		g.targetPool.Cleanup()
	}
	if g.bufferPool != nil {
		g.bufferPool.Cleanup()
	}
	if g.texturePool != nil {
		g.texturePool.Cleanup()
	}
	g.cleanup()
	return err
}

func (g *Graph) execute(ct CommandTarget, width, height int) error {
	g.beginReport(width, height)
	g.barriers, _ = ct.(BarrierTarget)

	for i := range g.targets {
		if _, err := g.realizeTarget(width, height, i); err != nil {
			return err
		}
	}
	for i := range g.textures {
		if err := g.realizeTexture(width, height, i); err != nil {
			return err
		}
	}
	for i := range g.buffers {
		if err := g.realizeBuffer(width, height, i); err != nil {
			return err
		}
	}

	// Shared depth sources and referenced persistents are held for the
	// whole frame.
	for i := range g.targets {
		r := &g.targets[i]
		live := r.InputRefCount+r.OutputRefCount > 0
		if r.sharedDepthSource || (r.Lifetime == Persistent && live) {
			if err := g.acquireTarget(i); err != nil {
				return err
			}
		}
	}
	for i := range g.buffers {
		if r := &g.buffers[i]; r.InputRefCount+r.OutputRefCount > 0 {
			if err := g.acquireBuffer(i); err != nil {
				return err
			}
		}
	}
	for i := range g.textures {
		if r := &g.textures[i]; r.InputRefCount+r.OutputRefCount > 0 {
			if err := g.acquireTexture(i); err != nil {
				return err
			}
		}
	}

	for d := g.levels - 1; d >= 0; d-- {
		for _, pi := range g.order[d] {
			if err := g.executePass(ct, pi); err != nil {
				return err
			}
		}
	}
	g.closePass(ct)
	g.releaseAll()
	return nil
}

func (g *Graph) executePass(ct CommandTarget, pi int) error {
	p := g.passes[pi]
	out := p.output.Resource

	for _, h := range p.inputs {
		if i, ok := g.targetIndex(h); ok {
			if err := g.acquireTarget(i); err != nil {
				return err
			}
		}
	}

	ti, isTarget := g.targetIndex(out)
	isTarget = isTarget || out == PrimaryHandle
	merged := false
	switch {
	case isTarget && g.canMerge(p):
		merged = true
		g.report.Merged++
	case isTarget:
		g.closePass(ct)
		g.emitBarriers(p)
		var ts TargetSet
		if ti >= 0 {
			if err := g.acquireTarget(ti); err != nil {
				return err
			}
			ts = g.targets[ti].WriteTarget
		}
		g.passToken = ct.BeginPass(ts, &p.output.Clear, p.output.Load, p.output.Store, p.name)
		g.passOpen = true
		g.openOutput = out
		g.openStore = p.output.Store
		g.openTarget = ti
	default:
		g.closePass(ct)
		g.emitBarriers(p)
	}
	if ti >= 0 {
		g.targets[ti].dirty = true
	}

	for _, build := range p.builds {
		build(g, ct)
		ct.MergePriorityIntoDraw(PriorityAll)
		if !g.passOpen && ct.HavePendingComputes() {
			ct.MergeComputeIntoRender()
		}
	}
	g.recordPass(pi, merged)

	if s, ok := g.lookup(out); ok {
		if _, n := g.refCounts(s); *n > 0 {
			*n--
		}
		g.maybeRelease(s)
	}
	for _, h := range p.inputs {
		if s, ok := g.lookup(h); ok {
			if n, _ := g.refCounts(s); *n > 0 {
				*n--
			}
			g.maybeRelease(s)
		}
	}
	return nil
}

// canMerge reports whether p can continue the currently open render pass.
func (g *Graph) canMerge(p *Pass) bool {
	if !g.passOpen || p.output.Resource != g.openOutput {
		return false
	}
	// Load is not compared: the open pass already holds the attachment
	// contents, so a pass that loads sees them and one that does not
	// cannot observe the difference.
	if p.output.Clear.Mask != 0 || p.output.Store != g.openStore {
		return false
	}
	return !g.pendingBarrier(p)
}

func (g *Graph) pendingBarrier(p *Pass) bool {
	if g.barriers == nil {
		return false
	}
	for _, h := range p.inputs {
		if i, ok := g.targetIndex(h); ok && g.targets[i].dirty && g.targets[i].WriteTarget != nil {
			return true
		}
	}
	return false
}

// emitBarriers transitions every input target written since its last barrier.
func (g *Graph) emitBarriers(p *Pass) {
	if g.barriers == nil {
		return
	}
	for _, h := range p.inputs {
		i, ok := g.targetIndex(h)
		if !ok {
			continue
		}
		r := &g.targets[i]
		if r.dirty && r.WriteTarget != nil {
			g.barriers.Barrier(r.WriteTarget)
			r.dirty = false
			g.report.Barriers++
		}
	}
}

// closePass ends the open render pass, if any, and flushes queued work.
func (g *Graph) closePass(ct CommandTarget) {
	if !g.passOpen {
		return
	}
	ct.MergeDrawIntoRender()
	ct.EndPass(g.passToken)
	if ct.HavePendingComputes() {
		ct.MergeComputeIntoRender()
	}
	g.passOpen = false
	g.openOutput = InvalidHandle
	ti := g.openTarget
	g.openTarget = -1
	if ti >= 0 && g.targets[ti].pendingRelease {
		g.targets[ti].pendingRelease = false
		g.releaseTarget(ti)
	}
}

// maybeRelease returns a transient resource to its pool once nothing
// references it any more. The open render target is released when its pass
// closes.
func (g *Graph) maybeRelease(s *slot) {
	i := int(s.index)
	switch s.kind {
	case KindTargetSet:
		r := &g.targets[i]
		if r.Lifetime != Transient || !r.acquired || r.sharedDepthSource ||
			r.InputRefCount > 0 || r.OutputRefCount > 0 {
			return
		}
		if g.passOpen && g.openTarget == i {
			r.pendingRelease = true
			return
		}
		g.releaseTarget(i)
	case KindBuffer:
		r := &g.buffers[i]
		if r.Lifetime == Transient && r.InputRefCount == 0 && r.OutputRefCount == 0 {
			g.releaseBuffer(i)
		}
	case KindTexture:
		r := &g.textures[i]
		if r.Lifetime == Transient && r.InputRefCount == 0 && r.OutputRefCount == 0 {
			g.releaseTexture(i)
		}
	}
}

func (g *Graph) acquireTarget(i int) error {
	r := &g.targets[i]
	if r.acquired || r.External() {
		return nil
	}
	if r.resolving {
		return fmt.Errorf("%w: shared depth of %q", ErrSizeCycle, r.Name)
	}

	var shared TargetSet
	usePrimary := false
	switch sd := r.SharedDepthStencil; {
	case sd == PrimaryHandle:
		usePrimary = true
	case sd.IsValid():
		si, ok := g.targetIndex(sd)
		if !ok {
			return fmt.Errorf("%w: %q shares depth with %v", ErrInvalidHandle, r.Name, sd)
		}
		r.resolving = true
		err := g.acquireTarget(si)
		r.resolving = false
		if err != nil {
			return err
		}
		shared = g.targets[si].WriteTarget
	}

	if g.targetPool == nil {
		return fmt.Errorf("%w: target set %q: no pool", ErrAcquireFailed, r.Name)
	}
	req := &g.targetReq
	*req = TargetSetRequest{
		Name:                   r.Name,
		Desc:                   r.Desc,
		SharedDepthStencil:     shared,
		UsePrimaryDepthStencil: usePrimary,
		Width:                  r.Realized.Width,
		Height:                 r.Realized.Height,
		MultiSample:            r.Desc.MultiSample,
		Persistent:             r.Persistent,
	}
	double := r.Lifetime == Persistent && r.DoubleBuffered
	if double {
		req.Parity = uint32(g.frame & 1)
	}
	ts := g.targetPool.Acquire(req)
	if ts == nil {
		return fmt.Errorf("%w: target set %q", ErrAcquireFailed, r.Name)
	}
	r.WriteTarget, r.ReadTarget = ts, ts
	r.acquired = true
	r.dirty = false
	g.report.Acquired++

	if double {
		req.Parity = uint32((g.frame + 1) & 1)
		rs := g.targetPool.Acquire(req)
		if rs == nil {
			return fmt.Errorf("%w: target set %q (history)", ErrAcquireFailed, r.Name)
		}
		r.ReadTarget = rs
	}
	return nil
}

// releaseTarget returns both sides of target i to the pool.
// TargetSet implementations must be comparable.
func (g *Graph) releaseTarget(i int) {
	r := &g.targets[i]
	if !r.acquired {
		return
	}
	if r.WriteTarget != nil {
		g.targetPool.Release(r.WriteTarget)
	}
	if r.ReadTarget != nil && r.ReadTarget != r.WriteTarget {
		g.targetPool.Release(r.ReadTarget)
	}
	r.ReadTarget, r.WriteTarget = nil, nil
	r.acquired = false
	r.pendingRelease = false
	g.report.Released++
}

func (g *Graph) acquireBuffer(i int) error {
	r := &g.buffers[i]
	if r.acquired || r.External() {
		return nil
	}
	if g.bufferPool == nil {
		return fmt.Errorf("%w: buffer %q: no pool", ErrAcquireFailed, r.Name)
	}
	g.bufferReq = BufferRequest{Name: r.Name, Desc: r.Desc, Size: r.Size, Persistent: r.Persistent}
	b := g.bufferPool.Acquire(&g.bufferReq)
	if b == nil {
		return fmt.Errorf("%w: buffer %q", ErrAcquireFailed, r.Name)
	}
	r.Buffer = b
	r.acquired = true
	g.report.Acquired++
	return nil
}

func (g *Graph) releaseBuffer(i int) {
	r := &g.buffers[i]
	if !r.acquired {
		return
	}
	g.bufferPool.Release(r.Buffer)
	r.Buffer = nil
	r.acquired = false
	g.report.Released++
}

func (g *Graph) acquireTexture(i int) error {
	r := &g.textures[i]
	if r.acquired || r.External() {
		return nil
	}
	if g.texturePool == nil {
		return fmt.Errorf("%w: texture %q: no pool", ErrAcquireFailed, r.Name)
	}
	g.textureReq = TextureRequest{
		Name:       r.Name,
		Desc:       r.Desc,
		Width:      r.Realized.Width,
		Height:     r.Realized.Height,
		Persistent: r.Persistent,
	}
	t := g.texturePool.Acquire(&g.textureReq)
	if t == nil {
		return fmt.Errorf("%w: texture %q", ErrAcquireFailed, r.Name)
	}
	r.Texture = t
	r.acquired = true
	g.report.Acquired++
	return nil
}

func (g *Graph) releaseTexture(i int) {
	r := &g.textures[i]
	if !r.acquired {
		return
	}
	g.texturePool.Release(r.Texture)
	r.Texture = nil
	r.acquired = false
	g.report.Released++
}

// releaseAll returns every pooled resource still held this frame.
func (g *Graph) releaseAll() {
	for i := range g.targets {
		g.releaseTarget(i)
	}
	for i := range g.buffers {
		g.releaseBuffer(i)
	}
	for i := range g.textures {
		g.releaseTexture(i)
	}
}

// abort closes an open pass and releases everything after a failed build.
func (g *Graph) abort(ct CommandTarget) {
	if g.passOpen {
		ct.EndPass(g.passToken)
		g.passOpen = false
		g.openTarget = -1
		g.openOutput = InvalidHandle
	}
	g.releaseAll()
}
