package framegraph

import (
	"cmp"
	"fmt"
	"slices"
)

// checkPasses rejects passes that reference resources not declared this frame.
func (g *Graph) checkPasses() error {
	for _, p := range g.passes {
		if out := p.output.Resource; out != InvalidHandle && out != PrimaryHandle {
			if _, ok := g.lookup(out); !ok {
				return fmt.Errorf("%w: pass %q writes unknown resource %v", ErrMalformedPass, p.name, out)
			}
		}
		for _, in := range p.inputs {
			if _, ok := g.lookup(in); !ok {
				return fmt.Errorf("%w: pass %q reads unknown resource %v", ErrMalformedPass, p.name, in)
			}
		}
	}
	return nil
}

// linkProducers chains the writers of every resource and counts its readers.
func (g *Graph) linkProducers() {
	for i := range g.slots {
		g.slots[i].producers = -1
		g.slots[i].consumers = 0
	}
	g.nextProducer = slices.Grow(g.nextProducer[:0], len(g.passes))[:len(g.passes)]
	for i, p := range g.passes {
		g.nextProducer[i] = -1
		if s, ok := g.lookup(p.output.Resource); ok {
			g.nextProducer[i] = s.producers
			s.producers = int32(i) //nolint:gosec // G115: pass count fits int32
		}
		for _, in := range p.inputs {
			if s, ok := g.lookup(in); ok {
				s.consumers++
			}
		}
	}
}

// isRoot reports whether pass i starts a traversal: it has no output, writes
// the primary output or an explicit resource, or nobody reads what it writes.
func (g *Graph) isRoot(i int) bool {
	out := g.passes[i].output.Resource
	if out == InvalidHandle || out == PrimaryHandle {
		return true
	}
	s, ok := g.lookup(out)
	if !ok {
		return false
	}
	return s.consumers == 0 || g.resourceLifetime(s) == Explicit
}

// resolveDepths assigns every reachable pass the maximum depth at which it is
// reached from any root. Unreachable passes keep depth -1.
func (g *Graph) resolveDepths() error {
	n := len(g.passes)
	g.depth = slices.Grow(g.depth[:0], n)[:n]
	g.onChain = slices.Grow(g.onChain[:0], n)[:n]
	for i := range n {
		g.depth[i] = -1
		g.onChain[i] = false
	}
	g.cycles = 0

	for i := range n {
		if !g.isRoot(i) {
			continue
		}
		if err := g.visit(i, 0); err != nil {
			return err
		}
	}
	if g.cycles > 0 {
		Logger().Warn("framegraph: dependency cycle truncated", "edges", g.cycles)
	}
	return nil
}

// visit walks the producers of pi's inputs depth first. An edge back into the
// current chain ends that branch only.
func (g *Graph) visit(pi, d int) error {
	if d >= g.opts.maxDepth {
		return fmt.Errorf("%w: pass %q at depth %d (ceiling %d)",
			ErrDepthExceeded, g.passes[pi].name, d, g.opts.maxDepth)
	}
	if g.depth[pi] >= d {
		return nil
	}
	g.depth[pi] = d
	g.onChain[pi] = true
	defer func() { g.onChain[pi] = false }()

	for _, in := range g.passes[pi].inputs {
		s, ok := g.lookup(in)
		if !ok {
			continue
		}
		for q := s.producers; q >= 0; q = g.nextProducer[q] {
			if int(q) == pi {
				continue
			}
			if g.onChain[q] {
				if g.opts.strictCycles {
					return fmt.Errorf("%w: %q -> %q", ErrDependencyCycle, g.passes[pi].name, g.passes[q].name)
				}
				g.cycles++
				continue
			}
			if err := g.visit(int(q), d+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// bucketPasses groups reachable passes by depth and derives the execution
// order, deepest bucket first. Within a bucket passes are ordered by output
// handle descending; ties keep declaration order.
func (g *Graph) bucketPasses() {
	for d := range g.order {
		g.order[d] = g.order[d][:0]
	}
	g.levels = 0
	for i, d := range g.depth {
		if d < 0 {
			continue
		}
		g.order[d] = append(g.order[d], i)
		g.levels = max(g.levels, d+1)
	}

	clear(g.execOrder)
	g.execOrder = g.execOrder[:0]
	for d := g.levels - 1; d >= 0; d-- {
		bucket := g.order[d]
		slices.SortStableFunc(bucket, func(a, b int) int {
			return cmp.Compare(g.passes[b].output.Resource, g.passes[a].output.Resource)
		})
		for _, i := range bucket {
			g.execOrder = append(g.execOrder, g.passes[i])
		}
	}
}
