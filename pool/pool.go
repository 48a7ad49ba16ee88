package pool

import "github.com/gogpu/framegraph"

type targetKey struct {
	desc        framegraph.TargetSetDesc
	width       int
	height      int
	multiSample int
	shared      framegraph.TargetSet
	usePrimary  bool
}

// TargetSetPool is a framegraph.TargetSetPool backed by a TargetSetDevice.
type TargetSetPool struct {
	dev TargetSetDevice
	p   *bucketPool[targetKey, framegraph.TargetSet]
}

// NewTargetSetPool creates a target set pool.
func NewTargetSetPool(dev TargetSetDevice, opts ...Option) *TargetSetPool {
	return &TargetSetPool{
		dev: dev,
		p:   newBucketPool[targetKey](framegraph.KindTargetSet.String(), dev.DestroyTargetSet, applyOptions(opts)),
	}
}

// Acquire returns a target set matching req, or nil if the device fails.
func (tp *TargetSetPool) Acquire(req *framegraph.TargetSetRequest) framegraph.TargetSet {
	key := targetKey{
		desc:        req.Desc,
		width:       req.Width,
		height:      req.Height,
		multiSample: req.MultiSample,
		shared:      req.SharedDepthStencil,
		usePrimary:  req.UsePrimaryDepthStencil,
	}
	ts, _ := tp.p.acquire(key, req.Persistent, req.Parity, req.Name, func() (framegraph.TargetSet, error) {
		return tp.dev.CreateTargetSet(req)
	})
	return ts
}

// Release returns ts to the pool.
func (tp *TargetSetPool) Release(ts framegraph.TargetSet) {
	if ts != nil {
		tp.p.release(ts)
	}
}

// Cleanup destroys idle target sets. The graph calls it once per frame.
func (tp *TargetSetPool) Cleanup() { tp.p.cleanup() }

// Destroy destroys every target set created by the pool.
func (tp *TargetSetPool) Destroy() { tp.p.destroyAll() }

// Stats returns pool statistics.
func (tp *TargetSetPool) Stats() Stats { return tp.p.snapshot() }

type bufferKey struct {
	desc framegraph.BufferDesc
	size uint64
}

// BufferPool is a framegraph.BufferPool backed by a BufferDevice.
type BufferPool struct {
	dev BufferDevice
	p   *bucketPool[bufferKey, framegraph.Buffer]
}

// NewBufferPool creates a buffer pool.
func NewBufferPool(dev BufferDevice, opts ...Option) *BufferPool {
	return &BufferPool{
		dev: dev,
		p:   newBucketPool[bufferKey](framegraph.KindBuffer.String(), dev.DestroyBuffer, applyOptions(opts)),
	}
}

// Acquire returns a buffer matching req, or nil if the device fails.
func (bp *BufferPool) Acquire(req *framegraph.BufferRequest) framegraph.Buffer {
	key := bufferKey{desc: req.Desc, size: req.Size}
	b, _ := bp.p.acquire(key, req.Persistent, 0, req.Name, func() (framegraph.Buffer, error) {
		return bp.dev.CreateBuffer(req)
	})
	return b
}

// Release returns b to the pool.
func (bp *BufferPool) Release(b framegraph.Buffer) {
	if b != nil {
		bp.p.release(b)
	}
}

// Cleanup destroys idle buffers.
func (bp *BufferPool) Cleanup() { bp.p.cleanup() }

// Destroy destroys every buffer created by the pool.
func (bp *BufferPool) Destroy() { bp.p.destroyAll() }

// Stats returns pool statistics.
func (bp *BufferPool) Stats() Stats { return bp.p.snapshot() }

type textureKey struct {
	desc   framegraph.TextureDesc
	width  int
	height int
}

// TexturePool is a framegraph.TexturePool backed by a TextureDevice.
type TexturePool struct {
	dev TextureDevice
	p   *bucketPool[textureKey, framegraph.Texture]
}

// NewTexturePool creates a texture pool.
func NewTexturePool(dev TextureDevice, opts ...Option) *TexturePool {
	return &TexturePool{
		dev: dev,
		p:   newBucketPool[textureKey](framegraph.KindTexture.String(), dev.DestroyTexture, applyOptions(opts)),
	}
}

// Acquire returns a texture matching req, or nil if the device fails.
func (xp *TexturePool) Acquire(req *framegraph.TextureRequest) framegraph.Texture {
	key := textureKey{desc: req.Desc, width: req.Width, height: req.Height}
	t, _ := xp.p.acquire(key, req.Persistent, 0, req.Name, func() (framegraph.Texture, error) {
		return xp.dev.CreateTexture(req)
	})
	return t
}

// Release returns t to the pool.
func (xp *TexturePool) Release(t framegraph.Texture) {
	if t != nil {
		xp.p.release(t)
	}
}

// Cleanup destroys idle textures.
func (xp *TexturePool) Cleanup() { xp.p.cleanup() }

// Destroy destroys every texture created by the pool.
func (xp *TexturePool) Destroy() { xp.p.destroyAll() }

// Stats returns pool statistics.
func (xp *TexturePool) Stats() Stats { return xp.p.snapshot() }

// Set bundles the three pools over one device.
type Set struct {
	Targets  *TargetSetPool
	Buffers  *BufferPool
	Textures *TexturePool
}

// NewSet creates target set, buffer and texture pools sharing dev and opts.
func NewSet(dev Device, opts ...Option) *Set {
	return &Set{
		Targets:  NewTargetSetPool(dev, opts...),
		Buffers:  NewBufferPool(dev, opts...),
		Textures: NewTexturePool(dev, opts...),
	}
}

// NewGraph creates a framegraph.Graph drawing from the set's pools.
func (s *Set) NewGraph(opts ...framegraph.GraphOption) *framegraph.Graph {
	return framegraph.NewGraph(s.Targets, s.Buffers, s.Textures, opts...)
}

// Destroy destroys every resource in the set.
func (s *Set) Destroy() {
	s.Targets.Destroy()
	s.Buffers.Destroy()
	s.Textures.Destroy()
}
