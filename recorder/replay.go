package recorder

import (
	"errors"
	"fmt"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/halres"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

var (
	// ErrUnsupportedTarget is returned when a pass target was not created by halres.
	ErrUnsupportedTarget = errors.New("recorder: target set is not a halres target set")

	// ErrNoOpenPass is returned when a draw or pass end has no open render pass.
	ErrNoOpenPass = errors.New("recorder: no open render pass")

	// ErrPassOpen is returned when a pass begins or a dispatch occurs inside
	// an open render pass.
	ErrPassOpen = errors.New("recorder: render pass already open")
)

// Primary holds the views of the primary output for the current frame.
type Primary struct {
	Color       hal.TextureView
	Depth       hal.TextureView
	DepthFormat gputypes.TextureFormat
}

// Replay encodes the op stream on enc. Consecutive dispatches share one
// compute pass. Commands that implement neither RenderCommand nor
// ComputeCommand are skipped.
func (r *Recorder) Replay(enc hal.CommandEncoder, primary Primary) error {
	var (
		rp hal.RenderPassEncoder
		cp hal.ComputePassEncoder
	)
	endCompute := func() {
		if cp != nil {
			cp.End()
			cp = nil
		}
	}

	for i := range r.ops {
		op := &r.ops[i]
		if op.Type != OpCompute {
			endCompute()
		}
		switch op.Type {
		case OpBeginPass:
			if rp != nil {
				return fmt.Errorf("%w: %q", ErrPassOpen, op.Name)
			}
			desc, err := passDescriptor(op, &primary)
			if err != nil {
				return err
			}
			if ts, ok := op.Target.(*halres.TargetSet); ok {
				if barriers := attachmentBarriers(ts); len(barriers) > 0 {
					enc.TransitionTextures(barriers)
				}
			}
			rp = enc.BeginRenderPass(desc)
		case OpEndPass:
			if rp == nil {
				return ErrNoOpenPass
			}
			rp.End()
			rp = nil
		case OpBarrier:
			ts, ok := op.Target.(*halres.TargetSet)
			if !ok {
				return ErrUnsupportedTarget
			}
			if barriers := textureBarriers(ts); len(barriers) > 0 {
				enc.TransitionTextures(barriers)
			}
		case OpDraw:
			if rp == nil {
				return fmt.Errorf("%w: draw %q", ErrNoOpenPass, op.Command.Label())
			}
			if rc, ok := op.Command.(RenderCommand); ok {
				rc.EncodeRender(rp)
			}
		case OpCompute:
			if rp != nil {
				return fmt.Errorf("%w: dispatch %q", ErrPassOpen, op.Command.Label())
			}
			cc, ok := op.Command.(ComputeCommand)
			if !ok {
				continue
			}
			if cp == nil {
				cp = enc.BeginComputePass(&hal.ComputePassDescriptor{Label: op.Command.Label()})
			}
			cc.EncodeCompute(cp)
		}
	}
	endCompute()
	if rp != nil {
		return ErrPassOpen
	}

	framegraph.Logger().Debug("recorder: replayed",
		"ops", len(r.ops),
		"passes", r.stats.Passes,
		"draws", r.stats.Draws,
		"computes", r.stats.Computes)
	return nil
}

func passDescriptor(op *Op, primary *Primary) (*hal.RenderPassDescriptor, error) {
	desc := &hal.RenderPassDescriptor{Label: op.Name}

	var (
		colors      []hal.TextureView
		depth       hal.TextureView
		depthFormat gputypes.TextureFormat
	)
	if op.Target == nil {
		if primary.Color != nil {
			colors = []hal.TextureView{primary.Color}
		}
		depth, depthFormat = primary.Depth, primary.DepthFormat
	} else {
		ts, ok := op.Target.(*halres.TargetSet)
		if !ok {
			return nil, fmt.Errorf("%w: pass %q", ErrUnsupportedTarget, op.Name)
		}
		for i := range ts.ColorCount() {
			colors = append(colors, ts.Color(i).View())
		}
		switch {
		case ts.Depth() != nil:
			depth, depthFormat = ts.Depth().View(), ts.Depth().Format()
		case ts.UsesPrimaryDepth():
			depth, depthFormat = primary.Depth, primary.DepthFormat
		}
	}

	load, store, clr := op.Load, op.Store, &op.Clear
	for i, view := range colors {
		a := hal.RenderPassColorAttachment{
			View:    view,
			LoadOp:  loadOp(clr.Mask&framegraph.ClearColor != 0, load&framegraph.TargetColor != 0),
			StoreOp: storeOp(store&framegraph.TargetColor != 0),
		}
		if i < framegraph.MaxColorTargets {
			a.ClearValue = clr.Colors[i]
		}
		desc.ColorAttachments = append(desc.ColorAttachments, a)
	}

	if depth != nil {
		ds := &hal.RenderPassDepthStencilAttachment{
			View:            depth,
			DepthLoadOp:     loadOp(clr.Mask&framegraph.ClearDepth != 0, load&framegraph.TargetDepth != 0),
			DepthStoreOp:    storeOp(store&framegraph.TargetDepth != 0),
			DepthClearValue: clr.Depth,
		}
		if depthFormat.HasStencil() {
			ds.StencilLoadOp = loadOp(clr.Mask&framegraph.ClearStencil != 0, load&framegraph.TargetStencil != 0)
			ds.StencilStoreOp = storeOp(store&framegraph.TargetStencil != 0)
			ds.StencilClearValue = clr.Stencil
		}
		desc.DepthStencilAttachment = ds
	}
	return desc, nil
}

// loadOp maps clear and load flags. Attachments that are neither cleared nor
// loaded start undefined, which Clear expresses most cheaply.
func loadOp(clearing, load bool) gputypes.LoadOp {
	if load && !clearing {
		return gputypes.LoadOpLoad
	}
	return gputypes.LoadOpClear
}

func storeOp(store bool) gputypes.StoreOp {
	if store {
		return gputypes.StoreOpStore
	}
	return gputypes.StoreOpDiscard
}

// textureBarriers moves the attachments of ts to sampled use. Depth is
// included only when it was created for sampling.
func textureBarriers(ts *halres.TargetSet) []hal.TextureBarrier {
	barriers := make([]hal.TextureBarrier, 0, ts.ColorCount()+1)
	for i := range ts.ColorCount() {
		if b, ok := ts.Color(i).Transition(gputypes.TextureUsageTextureBinding); ok {
			barriers = append(barriers, b)
		}
	}
	if d := ts.Depth(); d != nil && d.Usage()&gputypes.TextureUsageTextureBinding != 0 {
		if b, ok := d.Transition(gputypes.TextureUsageTextureBinding); ok {
			barriers = append(barriers, b)
		}
	}
	return barriers
}

// attachmentBarriers moves every attachment of ts that is not in attachment
// use back to it before a render pass opens on ts.
func attachmentBarriers(ts *halres.TargetSet) []hal.TextureBarrier {
	var barriers []hal.TextureBarrier
	for i := range ts.ColorCount() {
		if b, ok := ts.Color(i).Transition(gputypes.TextureUsageRenderAttachment); ok {
			barriers = append(barriers, b)
		}
	}
	if d := ts.Depth(); d != nil {
		if b, ok := d.Transition(gputypes.TextureUsageRenderAttachment); ok {
			barriers = append(barriers, b)
		}
	}
	return barriers
}
