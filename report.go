package framegraph

import "slices"

// PassReport describes one executed pass.
type PassReport struct {
	Name   string
	Depth  int
	Output string
	// Merged is set when the pass continued the previous pass's render pass.
	Merged bool
}

// ResourceReport describes the scheduled lifetime of one resource.
// First and Last index Report.Passes.
type ResourceReport struct {
	Name     string
	Kind     ResourceKind
	Lifetime Lifetime
	Size     Size
	Bytes    uint64
	First    int
	Last     int
}

// Report summarizes a Build. It is meant for debug overlays and tests.
type Report struct {
	Frame  uint64
	Width  int
	Height int

	Passes    []PassReport
	Resources []ResourceReport

	Acquired int
	Released int
	Merged   int
	Barriers int

	Failed bool
}

// Clone returns a copy of r that does not share the slices the next Build
// reuses.
func (r Report) Clone() Report {
	r.Passes = slices.Clone(r.Passes)
	r.Resources = slices.Clone(r.Resources)
	return r
}

func (g *Graph) beginReport(width, height int) {
	r := &g.report
	r.Frame = g.frame
	r.Width, r.Height = width, height
	r.Passes = r.Passes[:0]
	r.Resources = r.Resources[:0]
	r.Acquired, r.Released, r.Merged, r.Barriers = 0, 0, 0, 0
	r.Failed = false
}

func (g *Graph) recordPass(pi int, merged bool) {
	p := g.passes[pi]
	g.report.Passes = append(g.report.Passes, PassReport{
		Name:   p.name,
		Depth:  g.depth[pi],
		Output: g.resourceName(p.output.Resource),
		Merged: merged,
	})
}

// finishReport lists every resource used by a scheduled pass.
func (g *Graph) finishReport() {
	for i := range g.slots {
		s := &g.slots[i]
		if s.firstUse < 0 {
			continue
		}
		rr := ResourceReport{
			Kind:  s.kind,
			First: int(s.firstUse),
			Last:  int(s.lastUse),
		}
		switch s.kind {
		case KindTargetSet:
			t := &g.targets[s.index]
			rr.Name, rr.Lifetime, rr.Size = t.Name, t.Lifetime, t.Realized
		case KindBuffer:
			b := &g.buffers[s.index]
			rr.Name, rr.Lifetime, rr.Bytes = b.Name, b.Lifetime, b.Size
		case KindTexture:
			t := &g.textures[s.index]
			rr.Name, rr.Lifetime, rr.Size = t.Name, t.Lifetime, t.Realized
		default:
			rr.Name = g.deps[s.index].Name
		}
		g.report.Resources = append(g.report.Resources, rr)
	}
}
