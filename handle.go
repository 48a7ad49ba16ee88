package framegraph

import (
	"fmt"
	"hash/fnv"
)

// Handle identifies a resource declared in the current frame.
//
// The high 16 bits carry the frame epoch, the low 16 bits the slot index
// plus one. Handles are therefore never reused across frames: a handle kept
// past Build is rejected by the next frame's lookups.
type Handle uint32

const (
	// PrimaryHandle is the implicit primary (swap-chain) output.
	PrimaryHandle Handle = 0

	// InvalidHandle marks "no resource", for example a pass without output.
	InvalidHandle Handle = ^Handle(0)
)

const (
	handleIndexBits = 16
	handleIndexMask = 1<<handleIndexBits - 1

	// maxSlots leaves the all-ones index free so that no valid handle can
	// collide with InvalidHandle.
	maxSlots = handleIndexMask - 1
)

func makeHandle(epoch uint16, slot int) Handle {
	//nolint:gosec // G115: slot is bounded by maxSlots
	return Handle(epoch)<<handleIndexBits | Handle(slot+1)
}

// epoch returns the frame generation encoded in h.
func (h Handle) epoch() uint16 {
	return uint16(h >> handleIndexBits)
}

// slot returns the slot index encoded in h, or -1 for primary/invalid handles.
func (h Handle) slot() int {
	idx := int(h & handleIndexMask)
	if idx == 0 || h == InvalidHandle {
		return -1
	}
	return idx - 1
}

// IsValid reports whether h refers to a declared resource (not primary, not invalid).
func (h Handle) IsValid() bool {
	return h != PrimaryHandle && h != InvalidHandle
}

// String returns a debug representation of the handle.
func (h Handle) String() string {
	switch h {
	case PrimaryHandle:
		return "primary"
	case InvalidHandle:
		return "none"
	default:
		return fmt.Sprintf("#%d@%d", h.slot(), h.epoch())
	}
}

// PersistentHandle is a caller-owned identity that survives across frames.
// Pools use it to hand back the same physical resource every frame.
// The zero value means "not persistent".
type PersistentHandle uint32

// PersistentHandleFromName derives a stable persistent identity from a name
// using FNV-1a. It never returns zero.
func PersistentHandleFromName(name string) PersistentHandle {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name)) // fnv.Write never returns an error
	if v := h.Sum32(); v != 0 {
		return PersistentHandle(v)
	}
	return 1
}

// ResourceKind identifies the namespace a handle belongs to.
type ResourceKind uint8

const (
	// KindTargetSet is a render target set (color attachments plus optional depth).
	KindTargetSet ResourceKind = iota
	// KindBuffer is a GPU buffer.
	KindBuffer
	// KindTexture is a sampled/storage texture.
	KindTexture
	// KindDependency is a virtual resource used only to express ordering.
	KindDependency
)

var resourceKindNames = [...]string{
	KindTargetSet:  "TargetSet",
	KindBuffer:     "Buffer",
	KindTexture:    "Texture",
	KindDependency: "Dependency",
}

// String returns the kind name.
func (k ResourceKind) String() string {
	if int(k) < len(resourceKindNames) {
		return resourceKindNames[k]
	}
	return "Unknown"
}

// Lifetime describes who owns the physical backing of a resource.
type Lifetime uint8

const (
	// Transient resources are pulled from a pool and returned within the frame.
	Transient Lifetime = iota
	// Persistent resources keep their physical identity across frames.
	Persistent
	// Explicit resources are supplied by the caller and never pooled.
	Explicit
)

// String returns the lifetime name.
func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "Transient"
	case Persistent:
		return "Persistent"
	case Explicit:
		return "Explicit"
	default:
		return fmt.Sprintf("Lifetime(%d)", int(l))
	}
}
