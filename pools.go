package framegraph

// TargetSetRequest describes a target set acquisition.
// Pools must not retain the request; the graph reuses it.
type TargetSetRequest struct {
	Name string
	Desc TargetSetDesc

	// SharedDepthStencil is the target set whose depth buffer must be reused.
	SharedDepthStencil     TargetSet
	UsePrimaryDepthStencil bool

	Width       int
	Height      int
	MultiSample int

	// Parity selects the physical instance of a double-buffered persistent target.
	Parity     uint32
	Persistent PersistentHandle
}

// BufferRequest describes a buffer acquisition.
type BufferRequest struct {
	Name       string
	Desc       BufferDesc
	Size       uint64
	Persistent PersistentHandle
}

// TextureRequest describes a texture acquisition.
type TextureRequest struct {
	Name       string
	Desc       TextureDesc
	Width      int
	Height     int
	Persistent PersistentHandle
}

// TargetSetPool supplies physical target sets.
// Acquire returns nil when the request cannot be satisfied.
type TargetSetPool interface {
	Acquire(req *TargetSetRequest) TargetSet
	Release(ts TargetSet)
	Cleanup()
}

// BufferPool supplies physical buffers.
type BufferPool interface {
	Acquire(req *BufferRequest) Buffer
	Release(b Buffer)
	Cleanup()
}

// TexturePool supplies physical textures.
type TexturePool interface {
	Acquire(req *TextureRequest) Texture
	Release(t Texture)
	Cleanup()
}
