// Package pool implements the physical resource pools consumed by
// framegraph.Graph.
//
// Pools bucket released resources by descriptor and size and hand them out
// again to matching requests. Persistent requests map to a fixed physical
// resource per persistent identity and double-buffer parity. Resources idle
// for longer than a configurable number of frames are destroyed in Cleanup.
//
// All pools are safe for concurrent use.
package pool

import "github.com/gogpu/framegraph"

// TargetSetDevice creates and destroys physical target sets.
type TargetSetDevice interface {
	CreateTargetSet(req *framegraph.TargetSetRequest) (framegraph.TargetSet, error)
	DestroyTargetSet(ts framegraph.TargetSet)
}

// BufferDevice creates and destroys physical buffers.
type BufferDevice interface {
	CreateBuffer(req *framegraph.BufferRequest) (framegraph.Buffer, error)
	DestroyBuffer(b framegraph.Buffer)
}

// TextureDevice creates and destroys physical textures.
type TextureDevice interface {
	CreateTexture(req *framegraph.TextureRequest) (framegraph.Texture, error)
	DestroyTexture(t framegraph.Texture)
}

// Device allocates every kind of pooled resource.
// halres.Device is the GPU implementation.
type Device interface {
	TargetSetDevice
	BufferDevice
	TextureDevice
}
