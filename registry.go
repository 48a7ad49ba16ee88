package framegraph

import "fmt"

// addSlot allocates a handle for a record of the given kind.
// The caller must hold g.mu.
func (g *Graph) addSlot(kind ResourceKind, index int) Handle {
	if len(g.slots) >= maxSlots {
		if g.declErr == nil {
			g.declErr = fmt.Errorf("%w: limit %d", ErrTooManyResources, maxSlots)
		}
		return InvalidHandle
	}
	g.slots = append(g.slots, slot{
		kind:      kind,
		index:     int32(index), //nolint:gosec // G115: bounded by maxSlots
		producers: -1,
		firstUse:  -1,
		lastUse:   -1,
	})
	g.validated = false
	return makeHandle(g.epoch, len(g.slots)-1)
}

// lookup returns the slot of h if h was declared this frame.
func (g *Graph) lookup(h Handle) (*slot, bool) {
	i := h.slot()
	if i < 0 || i >= len(g.slots) || h.epoch() != g.epoch {
		return nil, false
	}
	return &g.slots[i], true
}

// targetIndex resolves h to an index into g.targets.
func (g *Graph) targetIndex(h Handle) (int, bool) {
	s, ok := g.lookup(h)
	if !ok || s.kind != KindTargetSet {
		return -1, false
	}
	return int(s.index), true
}

func (g *Graph) addTarget(r TargetSetResource) Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	h := g.addSlot(KindTargetSet, len(g.targets))
	if h == InvalidHandle {
		return h
	}
	r.Handle = h
	g.targets = append(g.targets, r)
	return h
}

// AddExplicitTargetSet registers a caller-owned target set. The graph never
// acquires or releases it, and passes writing it are roots.
func (g *Graph) AddExplicitTargetSet(name string, ts TargetSet) Handle {
	r := TargetSetResource{
		Name:               name,
		Lifetime:           Explicit,
		SharedDepthStencil: InvalidHandle,
		SizeReference:      InvalidHandle,
		ReadTarget:         ts,
		WriteTarget:        ts,
	}
	if ts != nil {
		r.Realized = Size{Width: ts.Width(), Height: ts.Height()}
	}
	return g.addTarget(r)
}

// AddTransientTargetSet registers a target set pooled for this frame only.
// sharedDepth and sizeRef may be InvalidHandle; a sharedDepth of
// PrimaryHandle borrows the primary depth buffer.
func (g *Graph) AddTransientTargetSet(name string, desc TargetSetDesc, sharedDepth, sizeRef Handle) Handle {
	return g.addTarget(TargetSetResource{
		Name:               name,
		Lifetime:           Transient,
		Desc:               desc,
		SharedDepthStencil: sharedDepth,
		SizeReference:      sizeRef,
	})
}

// AddPersistentTargetSet registers a target set whose physical identity is
// kept across frames under persistent. A double-buffered target alternates
// between two instances; the read side holds the previous frame's output.
func (g *Graph) AddPersistentTargetSet(name string, persistent PersistentHandle, doubleBuffered bool, desc TargetSetDesc, sharedDepth, sizeRef Handle) Handle {
	return g.addTarget(TargetSetResource{
		Name:               name,
		Lifetime:           Persistent,
		Persistent:         persistent,
		DoubleBuffered:     doubleBuffered,
		Desc:               desc,
		SharedDepthStencil: sharedDepth,
		SizeReference:      sizeRef,
	})
}

func (g *Graph) addBuffer(r BufferResource) Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	h := g.addSlot(KindBuffer, len(g.buffers))
	if h == InvalidHandle {
		return h
	}
	r.Handle = h
	g.buffers = append(g.buffers, r)
	return h
}

// AddExplicitBuffer registers a caller-owned buffer.
func (g *Graph) AddExplicitBuffer(name string, b Buffer) Handle {
	r := BufferResource{Name: name, Lifetime: Explicit, SizeReference: InvalidHandle, Buffer: b}
	if b != nil {
		r.Size = b.Size()
	}
	return g.addBuffer(r)
}

// AddTransientBuffer registers a buffer pooled for this frame only.
func (g *Graph) AddTransientBuffer(name string, desc BufferDesc, sizeRef Handle) Handle {
	return g.addBuffer(BufferResource{Name: name, Lifetime: Transient, Desc: desc, SizeReference: sizeRef})
}

// AddPersistentBuffer registers a buffer kept across frames under persistent.
func (g *Graph) AddPersistentBuffer(name string, persistent PersistentHandle, desc BufferDesc, sizeRef Handle) Handle {
	return g.addBuffer(BufferResource{
		Name:          name,
		Lifetime:      Persistent,
		Persistent:    persistent,
		Desc:          desc,
		SizeReference: sizeRef,
	})
}

func (g *Graph) addTexture(r TextureResource) Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	h := g.addSlot(KindTexture, len(g.textures))
	if h == InvalidHandle {
		return h
	}
	r.Handle = h
	g.textures = append(g.textures, r)
	return h
}

// AddExplicitTexture registers a caller-owned texture.
func (g *Graph) AddExplicitTexture(name string, t Texture) Handle {
	r := TextureResource{Name: name, Lifetime: Explicit, SizeReference: InvalidHandle, Texture: t}
	if t != nil {
		r.Realized = Size{Width: t.Width(), Height: t.Height()}
	}
	return g.addTexture(r)
}

// AddTransientTexture registers a texture pooled for this frame only.
func (g *Graph) AddTransientTexture(name string, desc TextureDesc, sizeRef Handle) Handle {
	return g.addTexture(TextureResource{Name: name, Lifetime: Transient, Desc: desc, SizeReference: sizeRef})
}

// AddPersistentTexture registers a texture kept across frames under persistent.
func (g *Graph) AddPersistentTexture(name string, persistent PersistentHandle, desc TextureDesc, sizeRef Handle) Handle {
	return g.addTexture(TextureResource{
		Name:          name,
		Lifetime:      Persistent,
		Persistent:    persistent,
		Desc:          desc,
		SizeReference: sizeRef,
	})
}

// AddDependency registers a virtual resource that only expresses ordering:
// a pass writing it runs before every pass reading it.
func (g *Graph) AddDependency(name string) Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	h := g.addSlot(KindDependency, len(g.deps))
	if h == InvalidHandle {
		return h
	}
	g.deps = append(g.deps, dependencyResource{Name: name, Handle: h})
	return h
}

// GetTargetSet returns the target set bound to h for reading, or nil if it
// is not acquired. For double-buffered targets this is last frame's instance.
func (g *Graph) GetTargetSet(h Handle) TargetSet {
	if i, ok := g.targetIndex(h); ok {
		return g.targets[i].ReadTarget
	}
	return nil
}

// GetWriteTargetSet returns the target set bound to h for writing, or nil.
func (g *Graph) GetWriteTargetSet(h Handle) TargetSet {
	if i, ok := g.targetIndex(h); ok {
		return g.targets[i].WriteTarget
	}
	return nil
}

// GetBuffer returns the buffer bound to h, or nil.
func (g *Graph) GetBuffer(h Handle) Buffer {
	s, ok := g.lookup(h)
	if !ok || s.kind != KindBuffer {
		return nil
	}
	return g.buffers[s.index].Buffer
}

// GetTexture returns the texture bound to h, or nil.
func (g *Graph) GetTexture(h Handle) Texture {
	s, ok := g.lookup(h)
	if !ok || s.kind != KindTexture {
		return nil
	}
	return g.textures[s.index].Texture
}

// TargetSize returns the realized size of the target h, or a zero Size if
// h is not a realized target.
func (g *Graph) TargetSize(h Handle) Size {
	if i, ok := g.targetIndex(h); ok {
		return g.targets[i].Realized
	}
	return Size{}
}

// resourceName returns the debug name of h.
func (g *Graph) resourceName(h Handle) string {
	switch h {
	case PrimaryHandle:
		return "primary"
	case InvalidHandle:
		return ""
	}
	s, ok := g.lookup(h)
	if !ok {
		return h.String()
	}
	switch s.kind {
	case KindTargetSet:
		return g.targets[s.index].Name
	case KindBuffer:
		return g.buffers[s.index].Name
	case KindTexture:
		return g.textures[s.index].Name
	default:
		return g.deps[s.index].Name
	}
}

// resourceLifetime returns the lifetime of the record behind s.
func (g *Graph) resourceLifetime(s *slot) Lifetime {
	switch s.kind {
	case KindTargetSet:
		return g.targets[s.index].Lifetime
	case KindBuffer:
		return g.buffers[s.index].Lifetime
	case KindTexture:
		return g.textures[s.index].Lifetime
	default:
		return Transient
	}
}

// refCounts returns pointers to the authoritative reference counts of s.
func (g *Graph) refCounts(s *slot) (in, out *int32) {
	switch s.kind {
	case KindTargetSet:
		r := &g.targets[s.index]
		return &r.InputRefCount, &r.OutputRefCount
	case KindBuffer:
		r := &g.buffers[s.index]
		return &r.InputRefCount, &r.OutputRefCount
	case KindTexture:
		r := &g.textures[s.index]
		return &r.InputRefCount, &r.OutputRefCount
	default:
		r := &g.deps[s.index]
		return &r.InputRefCount, &r.OutputRefCount
	}
}
