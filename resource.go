package framegraph

import "github.com/gogpu/gputypes"

// MaxColorTargets is the maximum number of color attachments in a target set.
const MaxColorTargets = 8

// Size is a realized pixel size.
type Size struct {
	Width  int
	Height int
}

// TargetDesc describes one color attachment of a target set.
type TargetDesc struct {
	// ColorFormat is the attachment format. TextureFormatUndefined lets the
	// pool pick its default (usually the surface format).
	ColorFormat gputypes.TextureFormat
}

// TargetSetDesc describes a render target set.
//
// Sizing: explicit Width/Height win when both are nonzero; otherwise the
// size is inherited from the size reference, the shared depth-stencil source,
// or the viewport, in that order. The Reference*Mul/Denom ratios and the Max*
// clamps are then applied. A zero Mul counts as 1; a zero Denom disables scaling.
//
// TargetSetDesc is comparable and is used as part of pool keys.
type TargetSetDesc struct {
	Count int

	Width  int
	Height int

	MaxWidth  int
	MaxHeight int

	ReferenceWidthMul    int
	ReferenceWidthDenom  int
	ReferenceHeightMul   int
	ReferenceHeightDenom int

	MipCount    int
	MultiSample int

	CreateDepthStencil         bool
	UsingDepthStencilAsTexture bool
	IgnoreStencil              bool
	GenerateMips               bool

	// DepthFormat is the depth-stencil format when CreateDepthStencil is set.
	DepthFormat gputypes.TextureFormat

	Targets [MaxColorTargets]TargetDesc
}

// BufferDesc describes a GPU buffer.
//
// When ElementCount is zero the buffer holds one element per pixel of its
// size reference (or of the viewport).
type BufferDesc struct {
	ElementSize  uint32
	ElementCount uint32
	Usage        gputypes.BufferUsage
}

// TextureDesc describes a sampled or storage texture.
// Sizing follows the same rules as TargetSetDesc.
type TextureDesc struct {
	Width  int
	Height int

	MaxWidth  int
	MaxHeight int

	ReferenceWidthMul    int
	ReferenceWidthDenom  int
	ReferenceHeightMul   int
	ReferenceHeightDenom int

	MipCount int
	Format   gputypes.TextureFormat
	Usage    gputypes.TextureUsage
}

// scaleDim applies a mul/denom ratio with ceiling rounding.
func scaleDim(v, mul, denom int) int {
	if denom <= 0 {
		return v
	}
	if mul <= 0 {
		mul = 1
	}
	return (v*mul + denom - 1) / denom
}

// resolveSize applies ratios and clamps to a base size. The result is never
// smaller than 1x1 so that a realized size is always distinguishable from
// "not realized".
func resolveSize(w, h, wMul, wDenom, hMul, hDenom, maxW, maxH int) Size {
	w = scaleDim(w, wMul, wDenom)
	h = scaleDim(h, hMul, hDenom)
	if maxW > 0 {
		w = min(w, maxW)
	}
	if maxH > 0 {
		h = min(h, maxH)
	}
	return Size{Width: max(w, 1), Height: max(h, 1)}
}

// TargetSet is a physical render target set handed out by a TargetSetPool
// or supplied explicitly by the caller.
type TargetSet interface {
	Width() int
	Height() int
}

// Buffer is a physical GPU buffer.
type Buffer interface {
	Size() uint64
}

// Texture is a physical GPU texture.
type Texture interface {
	Width() int
	Height() int
	Format() gputypes.TextureFormat
}

// TargetSetResource is the registry record of a declared target set.
//
// ReadTarget and WriteTarget are equal unless the target is persistent and
// double-buffered, in which case ReadTarget holds last frame's contents.
type TargetSetResource struct {
	Name           string
	Handle         Handle
	Lifetime       Lifetime
	Persistent     PersistentHandle
	DoubleBuffered bool
	Desc           TargetSetDesc

	// SharedDepthStencil is the target whose depth buffer is reused.
	// PrimaryHandle requests the primary depth buffer, InvalidHandle none.
	SharedDepthStencil Handle
	// SizeReference is the target whose realized size is inherited.
	SizeReference Handle

	InputRefCount  int32
	OutputRefCount int32

	Realized Size

	ReadTarget  TargetSet
	WriteTarget TargetSet

	sharedDepthSource bool
	resolving         bool
	acquired          bool
	dirty             bool
	pendingRelease    bool
}

// External reports whether the physical target is owned by the caller.
func (r *TargetSetResource) External() bool { return r.Lifetime == Explicit }

// SharedDepthSource reports whether another live target borrows this
// target's depth buffer in the current frame.
func (r *TargetSetResource) SharedDepthSource() bool { return r.sharedDepthSource }

// BufferResource is the registry record of a declared buffer.
type BufferResource struct {
	Name          string
	Handle        Handle
	Lifetime      Lifetime
	Persistent    PersistentHandle
	Desc          BufferDesc
	SizeReference Handle

	InputRefCount  int32
	OutputRefCount int32

	// Size is the realized size in bytes.
	Size uint64

	Buffer Buffer

	acquired bool
}

// External reports whether the physical buffer is owned by the caller.
func (r *BufferResource) External() bool { return r.Lifetime == Explicit }

// TextureResource is the registry record of a declared texture.
type TextureResource struct {
	Name          string
	Handle        Handle
	Lifetime      Lifetime
	Persistent    PersistentHandle
	Desc          TextureDesc
	SizeReference Handle

	InputRefCount  int32
	OutputRefCount int32

	Realized Size

	Texture Texture

	acquired bool
}

// External reports whether the physical texture is owned by the caller.
func (r *TextureResource) External() bool { return r.Lifetime == Explicit }

// dependencyResource is a virtual resource with no backing storage.
type dependencyResource struct {
	Name           string
	Handle         Handle
	InputRefCount  int32
	OutputRefCount int32
}

// slot maps a handle index to the kind-specific record.
type slot struct {
	kind  ResourceKind
	index int32

	// producers is the first pass writing this resource; further producers
	// are chained through Graph.nextProducer.
	producers int32
	consumers int32

	firstUse int32
	lastUse  int32
}
