package halres

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Texture is a hal.Texture with its default view.
//
// A texture also remembers the usage it was last transitioned to, so that
// barriers recorded in one frame can be undone in a later one. The state is
// not synchronized: encode one command buffer per texture at a time.
type Texture struct {
	label  string
	tex    hal.Texture
	view   hal.TextureView
	width  int
	height int
	format gputypes.TextureFormat
	usage  gputypes.TextureUsage
	state  gputypes.TextureUsage
}

// Width returns the texture width in pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() int { return t.height }

// Format returns the texture format.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// Usage returns the usage flags the texture was created with.
func (t *Texture) Usage() gputypes.TextureUsage { return t.usage }

// Label returns the debug label.
func (t *Texture) Label() string { return t.label }

// State returns the usage the texture is currently in.
func (t *Texture) State() gputypes.TextureUsage { return t.state }

// Transition returns the barrier that moves the texture to usage and records
// usage as its new state. It reports false when the texture is already there.
func (t *Texture) Transition(usage gputypes.TextureUsage) (hal.TextureBarrier, bool) {
	if t.state == usage {
		return hal.TextureBarrier{}, false
	}
	b := hal.TextureBarrier{
		Texture: t.tex,
		Range:   hal.TextureRange{Aspect: gputypes.TextureAspectAll},
		Usage: hal.TextureUsageTransition{
			OldUsage: t.state,
			NewUsage: usage,
		},
	}
	t.state = usage
	return b, true
}

// Raw returns the HAL texture.
func (t *Texture) Raw() hal.Texture { return t.tex }

// View returns the default view covering all mips and aspects.
func (t *Texture) View() hal.TextureView { return t.view }

// Buffer is a hal.Buffer with its size.
type Buffer struct {
	label string
	buf   hal.Buffer
	size  uint64
	usage gputypes.BufferUsage
}

// Size returns the buffer size in bytes.
func (b *Buffer) Size() uint64 { return b.size }

// Usage returns the usage flags the buffer was created with.
func (b *Buffer) Usage() gputypes.BufferUsage { return b.usage }

// Label returns the debug label.
func (b *Buffer) Label() string { return b.label }

// Raw returns the HAL buffer.
func (b *Buffer) Raw() hal.Buffer { return b.buf }

// TargetSet is a group of color attachments and an optional depth-stencil
// attachment of the same size.
type TargetSet struct {
	label  string
	width  int
	height int
	colors []*Texture
	depth  *Texture

	// ownsDepth is false when depth is borrowed from another target set.
	ownsDepth    bool
	primaryDepth bool
}

// Width returns the attachment width in pixels.
func (ts *TargetSet) Width() int { return ts.width }

// Height returns the attachment height in pixels.
func (ts *TargetSet) Height() int { return ts.height }

// Label returns the debug label.
func (ts *TargetSet) Label() string { return ts.label }

// ColorCount returns the number of color attachments.
func (ts *TargetSet) ColorCount() int { return len(ts.colors) }

// Color returns color attachment i, or nil.
func (ts *TargetSet) Color(i int) *Texture {
	if i < 0 || i >= len(ts.colors) {
		return nil
	}
	return ts.colors[i]
}

// Depth returns the depth-stencil attachment, or nil.
func (ts *TargetSet) Depth() *Texture { return ts.depth }

// SharesDepth reports whether the depth attachment belongs to another target set.
func (ts *TargetSet) SharesDepth() bool { return ts.depth != nil && !ts.ownsDepth }

// UsesPrimaryDepth reports whether the set renders with the primary depth buffer.
func (ts *TargetSet) UsesPrimaryDepth() bool { return ts.primaryDepth }
