package framegraph

import "fmt"

// RealizeTargetDimensions resolves the pixel size of target h for a viewport
// of width x height. The result is memoized for the rest of the frame, so
// later calls return the first result regardless of the viewport passed.
func (g *Graph) RealizeTargetDimensions(width, height int, h Handle) (Size, error) {
	i, ok := g.targetIndex(h)
	if !ok {
		return Size{}, fmt.Errorf("%w: %v is not a target set", ErrInvalidHandle, h)
	}
	return g.realizeTarget(width, height, i)
}

// realizeTarget resolves target i. Precedence: explicit size, size reference,
// shared depth-stencil source, viewport. Ratios and clamps apply last.
func (g *Graph) realizeTarget(width, height, i int) (Size, error) {
	r := &g.targets[i]
	if r.Realized.Width != 0 {
		return r.Realized, nil
	}
	if r.resolving {
		return Size{}, fmt.Errorf("%w: at %q", ErrSizeCycle, r.Name)
	}
	r.resolving = true
	defer func() { r.resolving = false }()

	d := &r.Desc
	base := Size{Width: width, Height: height}
	switch {
	case d.Width > 0 && d.Height > 0:
		base = Size{Width: d.Width, Height: d.Height}
	case r.SizeReference.IsValid():
		s, err := g.realizeRef(width, height, r.SizeReference, r.Name)
		if err != nil {
			return Size{}, err
		}
		base = s
	case r.SharedDepthStencil.IsValid():
		s, err := g.realizeRef(width, height, r.SharedDepthStencil, r.Name)
		if err != nil {
			return Size{}, err
		}
		base = s
	}

	r.Realized = resolveSize(base.Width, base.Height,
		d.ReferenceWidthMul, d.ReferenceWidthDenom,
		d.ReferenceHeightMul, d.ReferenceHeightDenom,
		d.MaxWidth, d.MaxHeight)
	return r.Realized, nil
}

func (g *Graph) realizeRef(width, height int, ref Handle, name string) (Size, error) {
	j, ok := g.targetIndex(ref)
	if !ok {
		return Size{}, fmt.Errorf("%w: %q references %v", ErrInvalidHandle, name, ref)
	}
	return g.realizeTarget(width, height, j)
}

// realizeTexture resolves texture i. A size reference must be a target set.
func (g *Graph) realizeTexture(width, height, i int) error {
	r := &g.textures[i]
	if r.Realized.Width != 0 {
		return nil
	}
	d := &r.Desc
	base := Size{Width: width, Height: height}
	switch {
	case d.Width > 0 && d.Height > 0:
		base = Size{Width: d.Width, Height: d.Height}
	case r.SizeReference.IsValid():
		s, err := g.realizeRef(width, height, r.SizeReference, r.Name)
		if err != nil {
			return err
		}
		base = s
	}
	r.Realized = resolveSize(base.Width, base.Height,
		d.ReferenceWidthMul, d.ReferenceWidthDenom,
		d.ReferenceHeightMul, d.ReferenceHeightDenom,
		d.MaxWidth, d.MaxHeight)
	return nil
}

// realizeBuffer computes the byte size of buffer i. Without an element count
// the buffer holds one element per pixel of its size reference or the viewport.
func (g *Graph) realizeBuffer(width, height, i int) error {
	r := &g.buffers[i]
	if r.Size != 0 {
		return nil
	}
	d := &r.Desc
	if d.ElementCount > 0 {
		r.Size = uint64(d.ElementSize) * uint64(d.ElementCount)
		return nil
	}
	px := Size{Width: width, Height: height}
	if r.SizeReference.IsValid() {
		s, ok := g.lookup(r.SizeReference)
		switch {
		case ok && s.kind == KindTargetSet:
			sz, err := g.realizeTarget(width, height, int(s.index))
			if err != nil {
				return err
			}
			px = sz
		case ok && s.kind == KindTexture:
			if err := g.realizeTexture(width, height, int(s.index)); err != nil {
				return err
			}
			px = g.textures[s.index].Realized
		default:
			return fmt.Errorf("%w: buffer %q references %v", ErrInvalidHandle, r.Name, r.SizeReference)
		}
	}
	//nolint:gosec // G115: realized sizes are positive
	r.Size = uint64(d.ElementSize) * uint64(max(px.Width, 1)) * uint64(max(px.Height, 1))
	return nil
}
