//go:build !(js && wasm)

package halres

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/pool"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// openNoop opens a device on the noop backend for testing.
func openNoop(t *testing.T, opts ...Option) *Device {
	t.Helper()
	dev, closeDev, err := Open("noop", opts...)
	if err != nil {
		t.Fatalf("Open(noop) failed: %v", err)
	}
	t.Cleanup(closeDev)
	return dev
}

func TestOpenUnknownBackend(t *testing.T) {
	_, _, err := Open("no-such-backend")
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Open() error = %v, want ErrUnknownBackend", err)
	}
}

func TestBackendsIncludesNoop(t *testing.T) {
	if !slices.Contains(Backends(), "noop") {
		t.Errorf("Backends() = %v, want noop", Backends())
	}
	name, b := selectBackend("")
	if b == nil || name == "" {
		t.Errorf("selectBackend(\"\") = %q, %v; want a backend", name, b)
	}
}

func TestCreateTargetSet(t *testing.T) {
	dev := openNoop(t)

	req := &framegraph.TargetSetRequest{
		Name: "gbuffer",
		Desc: framegraph.TargetSetDesc{
			Count:              3,
			CreateDepthStencil: true,
			Targets: [framegraph.MaxColorTargets]framegraph.TargetDesc{
				{ColorFormat: gputypes.TextureFormatRGBA16Float},
			},
		},
		Width:  128,
		Height: 64,
	}
	got, err := dev.CreateTargetSet(req)
	if err != nil {
		t.Fatalf("CreateTargetSet() error = %v", err)
	}
	ts := got.(*TargetSet)
	if ts.Width() != 128 || ts.Height() != 64 {
		t.Errorf("size = %dx%d, want 128x64", ts.Width(), ts.Height())
	}
	if ts.ColorCount() != 3 {
		t.Fatalf("ColorCount() = %d, want 3", ts.ColorCount())
	}
	if f := ts.Color(0).Format(); f != gputypes.TextureFormatRGBA16Float {
		t.Errorf("Color(0).Format() = %v, want RGBA16Float", f)
	}
	if f := ts.Color(1).Format(); f != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("Color(1).Format() = %v, want default RGBA8Unorm", f)
	}
	if ts.Depth() == nil || ts.SharesDepth() {
		t.Error("expected an owned depth attachment")
	}
	if ts.Color(0).View() == nil {
		t.Error("expected a color view")
	}
	if s := dev.Stats(); s.Textures != 4 {
		t.Errorf("live textures = %d, want 4", s.Textures)
	}

	dev.DestroyTargetSet(ts)
	if s := dev.Stats(); s.Textures != 0 {
		t.Errorf("live textures after destroy = %d, want 0", s.Textures)
	}
}

func TestCreateTargetSetSharedDepth(t *testing.T) {
	dev := openNoop(t)

	src, err := dev.CreateTargetSet(&framegraph.TargetSetRequest{
		Name:   "scene",
		Desc:   framegraph.TargetSetDesc{Count: 1, CreateDepthStencil: true, IgnoreStencil: true},
		Width:  32,
		Height: 32,
	})
	if err != nil {
		t.Fatal(err)
	}
	if f := src.(*TargetSet).Depth().Format(); f != gputypes.TextureFormatDepth32Float {
		t.Errorf("depth format = %v, want Depth32Float", f)
	}

	got, err := dev.CreateTargetSet(&framegraph.TargetSetRequest{
		Name:               "decals",
		Desc:               framegraph.TargetSetDesc{Count: 1},
		SharedDepthStencil: src,
		Width:              32,
		Height:             32,
	})
	if err != nil {
		t.Fatal(err)
	}
	ts := got.(*TargetSet)
	if !ts.SharesDepth() || ts.Depth() != src.(*TargetSet).Depth() {
		t.Error("decals should borrow the scene depth attachment")
	}

	dev.DestroyTargetSet(ts)
	if src.(*TargetSet).Depth().Raw() == nil {
		t.Error("destroying the borrower must not destroy the shared depth")
	}
	dev.DestroyTargetSet(src)
	if s := dev.Stats(); s.Textures != 0 {
		t.Errorf("live textures = %d, want 0", s.Textures)
	}
}

type foreignTarget struct{}

func (foreignTarget) Width() int  { return 1 }
func (foreignTarget) Height() int { return 1 }

func TestCreateTargetSetForeignDepth(t *testing.T) {
	dev := openNoop(t)
	_, err := dev.CreateTargetSet(&framegraph.TargetSetRequest{
		Desc:               framegraph.TargetSetDesc{Count: 2},
		SharedDepthStencil: foreignTarget{},
		Width:              8,
		Height:             8,
	})
	if !errors.Is(err, ErrForeignTargetSet) {
		t.Errorf("error = %v, want ErrForeignTargetSet", err)
	}
	if s := dev.Stats(); s.Textures != 0 {
		t.Errorf("live textures = %d, want 0 after failure", s.Textures)
	}
}

func TestCreateBufferAndTexture(t *testing.T) {
	dev := openNoop(t)

	b, err := dev.CreateBuffer(&framegraph.BufferRequest{Name: "tiles", Size: 10})
	if err != nil {
		t.Fatal(err)
	}
	if b.Size() != 12 {
		t.Errorf("Size() = %d, want 12 (rounded to 4)", b.Size())
	}
	if u := b.(*Buffer).Usage(); u&gputypes.BufferUsageStorage == 0 {
		t.Errorf("Usage() = %v, want storage by default", u)
	}

	tex, err := dev.CreateTexture(&framegraph.TextureRequest{
		Name:   "lut",
		Desc:   framegraph.TextureDesc{Format: gputypes.TextureFormatRG11B10Ufloat},
		Width:  16,
		Height: 16,
	})
	if err != nil {
		t.Fatal(err)
	}
	if tex.Format() != gputypes.TextureFormatRG11B10Ufloat {
		t.Errorf("Format() = %v", tex.Format())
	}

	dev.DestroyBuffer(b)
	dev.DestroyTexture(tex)
	if s := dev.Stats(); s != (Stats{}) {
		t.Errorf("Stats() = %+v, want zero", s)
	}
}

func TestTextureTransition(t *testing.T) {
	dev := openNoop(t)
	ts, err := dev.CreateTargetSet(&framegraph.TargetSetRequest{
		Name: "scene", Desc: framegraph.TargetSetDesc{Count: 1}, Width: 8, Height: 8,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer dev.DestroyTargetSet(ts)
	color := ts.(*TargetSet).Color(0)

	if _, ok := color.Transition(gputypes.TextureUsageRenderAttachment); ok {
		t.Error("Transition to the current state should report false")
	}
	b, ok := color.Transition(gputypes.TextureUsageTextureBinding)
	if !ok {
		t.Fatal("Transition to sampled use reported false")
	}
	if b.Texture != color.Raw() ||
		b.Usage.OldUsage != gputypes.TextureUsageRenderAttachment ||
		b.Usage.NewUsage != gputypes.TextureUsageTextureBinding {
		t.Errorf("barrier = %+v", b)
	}
	b, _ = color.Transition(gputypes.TextureUsageRenderAttachment)
	if b.Usage.OldUsage != gputypes.TextureUsageTextureBinding {
		t.Errorf("OldUsage = %v, want the tracked TextureBinding", b.Usage.OldUsage)
	}
}

type provider struct {
	dev   hal.Device
	queue hal.Queue
}

func (p provider) Device() gpucontext.Device             { return p.dev }
func (p provider) Queue() gpucontext.Queue               { return p.queue }
func (p provider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (p provider) Adapter() gpucontext.Adapter           { return nil }
func (p provider) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{} }

func TestNewDeviceFromProvider(t *testing.T) {
	base := openNoop(t)
	dev, err := NewDeviceFromProvider(provider{dev: base.Raw(), queue: base.Queue()})
	if err != nil {
		t.Fatalf("NewDeviceFromProvider() error = %v", err)
	}
	if dev.ColorFormat() != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("ColorFormat() = %v, want surface format", dev.ColorFormat())
	}
	if dev.Queue() == nil {
		t.Error("Queue() should come from the provider")
	}

	if _, err := NewDeviceFromProvider(provider{}); !errors.Is(err, ErrNoHalDevice) {
		t.Errorf("error = %v, want ErrNoHalDevice", err)
	}
}

func TestDeviceBacksPools(t *testing.T) {
	dev := openNoop(t)
	pools := pool.NewSet(dev)

	a := pools.Targets.Acquire(&framegraph.TargetSetRequest{Name: "a", Desc: framegraph.TargetSetDesc{Count: 1}, Width: 8, Height: 8})
	if a == nil {
		t.Fatal("Acquire() = nil")
	}
	pools.Targets.Release(a)
	pools.Destroy()
	if s := dev.Stats(); s.Textures != 0 {
		t.Errorf("live textures = %d, want 0 after pool destroy", s.Textures)
	}
}
