package recorder

import (
	"strings"
	"testing"

	"github.com/gogpu/framegraph"
)

type fakeTarget struct{ w, h int }

func (t *fakeTarget) Width() int  { return t.w }
func (t *fakeTarget) Height() int { return t.h }

func opTypes(ops []Op) []OpType {
	types := make([]OpType, len(ops))
	for i, op := range ops {
		types[i] = op.Type
	}
	return types
}

func equalTypes(a, b []OpType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestOpTypeString(t *testing.T) {
	tests := []struct {
		op   OpType
		want string
	}{
		{OpBeginPass, "BeginPass"},
		{OpEndPass, "EndPass"},
		{OpBarrier, "Barrier"},
		{OpDraw, "Draw"},
		{OpCompute, "Compute"},
		{OpType(200), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("OpType(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestRecorderPassStream(t *testing.T) {
	r := New()
	ts := &fakeTarget{64, 64}
	cl := framegraph.Clear{Mask: framegraph.ClearColor}

	tok := r.BeginPass(ts, &cl, framegraph.TargetNone, framegraph.TargetColor, "scene")
	if !r.InPass() {
		t.Error("InPass() = false after BeginPass")
	}
	r.Draw(&DrawCommand{Name: "a", VertexCount: 3})
	r.Compute(&DispatchCommand{Name: "cull"})
	if !r.HavePendingDraws() || !r.HavePendingComputes() {
		t.Fatal("expected pending draws and computes")
	}
	r.MergeDrawIntoRender()
	r.EndPass(tok)
	r.MergeComputeIntoRender()
	r.Barrier(ts)

	want := []OpType{OpBeginPass, OpDraw, OpEndPass, OpCompute, OpBarrier}
	if got := opTypes(r.Ops()); !equalTypes(got, want) {
		t.Errorf("ops = %v, want %v", got, want)
	}
	if r.Ops()[0].Clear.Mask != framegraph.ClearColor || r.Ops()[2].Token != tok {
		t.Errorf("unexpected pass ops: %+v", r.Ops())
	}
	if s := r.Stats(); s != (Stats{Passes: 1, Draws: 1, Computes: 1, Barriers: 1}) {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestMergePriorityOrder(t *testing.T) {
	r := New()
	r.DrawPriority(framegraph.PriorityOverlay, &DrawCommand{Name: "hud"})
	r.DrawPriority(framegraph.PriorityOpaque, &DrawCommand{Name: "wall"})
	r.DrawPriority(framegraph.PrioritySetup, &DrawCommand{Name: "setup"})

	r.MergePriorityIntoDraw(framegraph.PriorityOpaque | framegraph.PrioritySetup)
	if !r.HavePendingDraws() {
		t.Fatal("overlay queue should still be pending")
	}
	r.MergePriorityIntoDraw(framegraph.PriorityAll)
	r.MergeDrawIntoRender()

	var got []string
	for _, op := range r.Ops() {
		got = append(got, op.Command.Label())
	}
	if strings.Join(got, ",") != "setup,wall,hud" {
		t.Errorf("draw order = %v, want [setup wall hud]", got)
	}
}

func TestAlphaBlendSortedBackToFront(t *testing.T) {
	tests := []struct {
		name string
		sort bool
		want string
	}{
		{"sorted", true, "far,mid,near"},
		{"unsorted", false, "near,far,mid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(WithAlphaSort(tt.sort))
			for _, d := range []struct {
				name string
				dist float32
			}{{"near", 1}, {"far", 10}, {"mid", 5}} {
				r.DrawPriority(framegraph.PriorityAlphaBlend, &DrawCommand{Name: d.name, ViewDistance: d.dist})
			}
			r.MergePriorityIntoDraw(framegraph.PriorityAlphaBlend)
			r.MergeDrawIntoRender()

			var got []string
			for _, op := range r.Ops() {
				got = append(got, op.Command.Label())
			}
			if strings.Join(got, ",") != tt.want {
				t.Errorf("order = %v, want %s", got, tt.want)
			}
		})
	}
}

func TestAllocReusedAfterReset(t *testing.T) {
	r := New(WithChunkSize(4))
	a := Alloc[DrawCommand](r)
	a.Name = "first"
	d := Alloc[DispatchCommand](r)
	d.X = 8
	r.Draw(a)
	r.Reset()

	if r.HavePendingDraws() || len(r.Ops()) != 0 {
		t.Error("Reset should clear queues and ops")
	}
	b := Alloc[DrawCommand](r)
	if a != b {
		t.Error("Alloc after Reset should reuse the first slot")
	}
	if b.Name != "" {
		t.Errorf("Alloc returned stale contents %q", b.Name)
	}
}

func TestRecorderString(t *testing.T) {
	r := New()
	tok := r.BeginPass(nil, nil, framegraph.TargetAll, framegraph.TargetColor, "final")
	r.Draw(&DrawCommand{Name: "tonemap"})
	r.MergeDrawIntoRender()
	r.EndPass(tok)

	s := r.String()
	for _, want := range []string{`BeginPass #1 "final" target=primary`, "  Draw tonemap", "EndPass #1"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q:\n%s", want, s)
		}
	}
}

func BenchmarkRecorderFrame(b *testing.B) {
	r := New()
	ts := &fakeTarget{256, 256}
	b.ReportAllocs()
	for b.Loop() {
		tok := r.BeginPass(ts, nil, framegraph.TargetNone, framegraph.TargetColor, "scene")
		for range 64 {
			cmd := Alloc[DrawCommand](r)
			cmd.VertexCount = 3
			r.DrawPriority(framegraph.PriorityOpaque, cmd)
		}
		r.MergePriorityIntoDraw(framegraph.PriorityAll)
		r.MergeDrawIntoRender()
		r.EndPass(tok)
		r.Reset()
	}
}
