package overlay

import (
	"image/color"
	"strings"
	"testing"

	"github.com/gogpu/framegraph"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func sampleReport() framegraph.Report {
	return framegraph.Report{
		Frame:  7,
		Width:  1280,
		Height: 720,
		Passes: []framegraph.PassReport{
			{Name: "shadow", Depth: 2, Output: "shadowAtlas"},
			{Name: "gbuffer", Depth: 1, Output: "gbuffer"},
			{Name: "decals", Depth: 1, Output: "gbuffer", Merged: true},
			{Name: "tonemap", Depth: 0, Output: "primary"},
		},
		Resources: []framegraph.ResourceReport{
			{Name: "shadowAtlas", Kind: framegraph.KindTargetSet, Lifetime: framegraph.Persistent, Size: framegraph.Size{Width: 2048, Height: 2048}, First: 0, Last: 1},
			{Name: "gbuffer", Kind: framegraph.KindTargetSet, Size: framegraph.Size{Width: 1280, Height: 720}, First: 1, Last: 3},
			{Name: "tiles", Kind: framegraph.KindBuffer, Bytes: 4096, First: 2, Last: 3},
		},
		Acquired: 3,
		Released: 3,
		Merged:   1,
	}
}

func TestRenderSize(t *testing.T) {
	r := sampleReport()
	img := Render(r, WithColumnWidth(20), WithLabelWidth(100))
	b := img.Bounds()
	if want := margin*2 + 100 + 4*20; b.Dx() != want {
		t.Errorf("width = %d, want %d", b.Dx(), want)
	}
	if want := margin*2 + rowHeight*(3+3); b.Dy() != want {
		t.Errorf("height = %d, want %d", b.Dy(), want)
	}
}

func TestRenderDrawsBars(t *testing.T) {
	img := Render(sampleReport(), WithColumnWidth(20), WithLabelWidth(100))
	x0 := margin + 100

	// Third resource row: the buffer bar covers columns 2..3 only.
	y := margin + rowHeight*(3+2) + rowHeight/2
	want := kindColors[framegraph.KindBuffer]
	if got := img.RGBAAt(x0+2*20+10, y); got != want {
		t.Errorf("bar pixel = %v, want %v", got, want)
	}
	if got := img.RGBAAt(x0+10, y); got == want {
		t.Errorf("bar drawn outside the resource lifetime at column 0")
	}
}

func TestRenderMergedPassHollow(t *testing.T) {
	img := Render(sampleReport(), WithColumnWidth(20), WithLabelWidth(100))
	x0 := margin + 100
	y := margin + rowHeight + rowHeight/2

	if got := img.RGBAAt(x0+1*20+10, y); got == background {
		t.Error("pass cell for gbuffer is empty")
	}
	if got := img.RGBAAt(x0+2*20+10, y); got != background {
		t.Errorf("merged pass cell center = %v, want hollow", got)
	}
}

func TestRenderEmptyReport(t *testing.T) {
	img := Render(framegraph.Report{Failed: true})
	if img.Bounds().Dx() != margin*2+defaultLabelWidth+defaultColumnWidth {
		t.Errorf("width = %d for an empty report", img.Bounds().Dx())
	}
	// The header is drawn in the failure color somewhere on the first row.
	found := false
	for x := margin; x < img.Bounds().Dx() && !found; x++ {
		for y := margin; y < margin+rowHeight; y++ {
			if img.RGBAAt(x, y) == (color.RGBA{R: 220, G: 64, B: 64, A: 255}) {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("failed report header not drawn in the failure color")
	}
}

func TestSummary(t *testing.T) {
	s := Summary(sampleReport())
	for _, want := range []string{
		"frame 7 1280x720: 4 passes, 1 merged",
		"decals",
		"merged",
		"shadowAtlas Persistent 2048x2048",
		"tiles Transient 4,096B",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("Summary() missing %q:\n%s", want, s)
		}
	}
	if got := strings.Count(s, "\n"); got != 1+4+3 {
		t.Errorf("Summary() has %d lines, want 8", got)
	}
}

func TestResourceLabelTruncates(t *testing.T) {
	res := framegraph.ResourceReport{Name: "a-very-long-resource-name", Kind: framegraph.KindDependency}
	pr := message.NewPrinter(language.English)
	if got := resourceLabel(pr, res, 70); len(got) != 10 {
		t.Errorf("resourceLabel() = %q, want 10 characters", got)
	}
	if got := resourceLabel(pr, res, 0); got != "" {
		t.Errorf("resourceLabel(0) = %q, want empty", got)
	}
}

func BenchmarkRender(b *testing.B) {
	r := sampleReport()
	b.ReportAllocs()
	for b.Loop() {
		_ = Render(r)
	}
}
