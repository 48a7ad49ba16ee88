package halres

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Device creates framegraph resources on a hal.Device.
// It is safe for concurrent use as long as the underlying device is.
type Device struct {
	dev  hal.Device
	opts options

	textures atomic.Int64
	buffers  atomic.Int64
}

// Stats counts live resources created through a Device.
type Stats struct {
	Textures int
	Buffers  int
}

// NewDevice wraps dev.
func NewDevice(dev hal.Device, opts ...Option) *Device {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Device{dev: dev, opts: o}
}

// NewDeviceFromProvider wraps the HAL device of a host application.
// The provider's Device must either be a hal.Device or expose one through
// HalDevice() any. The surface format becomes the default color format.
func NewDeviceFromProvider(p gpucontext.DeviceProvider, opts ...Option) (*Device, error) {
	type halProvider interface {
		HalDevice() any
	}

	var dev hal.Device
	switch d := p.Device().(type) {
	case hal.Device:
		dev = d
	case halProvider:
		dev, _ = d.HalDevice().(hal.Device)
	}
	if dev == nil {
		if hp, ok := p.(halProvider); ok {
			dev, _ = hp.HalDevice().(hal.Device)
		}
	}
	if dev == nil {
		return nil, ErrNoHalDevice
	}

	base := []Option{WithColorFormat(p.SurfaceFormat())}
	if q, ok := p.Queue().(hal.Queue); ok {
		base = append(base, WithQueue(q))
	}
	return NewDevice(dev, append(base, opts...)...), nil
}

// Raw returns the wrapped HAL device.
func (d *Device) Raw() hal.Device { return d.dev }

// Queue returns the queue attached with WithQueue, or nil.
func (d *Device) Queue() hal.Queue { return d.opts.queue }

// ColorFormat returns the default color attachment format.
func (d *Device) ColorFormat() gputypes.TextureFormat { return d.opts.colorFormat }

// Stats returns the number of live resources.
func (d *Device) Stats() Stats {
	return Stats{Textures: int(d.textures.Load()), Buffers: int(d.buffers.Load())}
}

// CreateTargetSet creates the attachments described by req.
func (d *Device) CreateTargetSet(req *framegraph.TargetSetRequest) (framegraph.TargetSet, error) {
	desc := &req.Desc
	ts := &TargetSet{
		label:  req.Name,
		width:  req.Width,
		height: req.Height,
		colors: make([]*Texture, 0, max(desc.Count, 0)),
	}

	usage := gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopySrc
	for i := range min(desc.Count, framegraph.MaxColorTargets) {
		format := desc.Targets[i].ColorFormat
		if format == gputypes.TextureFormatUndefined {
			format = d.opts.colorFormat
		}
		tex, err := d.createTexture(fmt.Sprintf("%s.color%d", req.Name, i),
			req.Width, req.Height, desc.MipCount, req.MultiSample, format, usage)
		if err != nil {
			d.destroyTargetSet(ts)
			return nil, err
		}
		ts.colors = append(ts.colors, tex)
	}

	switch {
	case req.SharedDepthStencil != nil:
		src, ok := req.SharedDepthStencil.(*TargetSet)
		if !ok {
			d.destroyTargetSet(ts)
			return nil, ErrForeignTargetSet
		}
		ts.depth = src.depth
		ts.primaryDepth = src.primaryDepth
	case desc.CreateDepthStencil:
		format := desc.DepthFormat
		if !format.IsDepthStencil() {
			format = d.opts.depthFormat
			if desc.IgnoreStencil {
				format = gputypes.TextureFormatDepth32Float
			}
		}
		depthUsage := gputypes.TextureUsageRenderAttachment
		if desc.UsingDepthStencilAsTexture {
			depthUsage |= gputypes.TextureUsageTextureBinding
		}
		tex, err := d.createTexture(req.Name+".depth", req.Width, req.Height, 1, req.MultiSample, format, depthUsage)
		if err != nil {
			d.destroyTargetSet(ts)
			return nil, err
		}
		ts.depth = tex
		ts.ownsDepth = true
	case req.UsePrimaryDepthStencil:
		ts.primaryDepth = true
	}
	return ts, nil
}

// DestroyTargetSet destroys the attachments owned by ts.
func (d *Device) DestroyTargetSet(ts framegraph.TargetSet) {
	if t, ok := ts.(*TargetSet); ok {
		d.destroyTargetSet(t)
	}
}

func (d *Device) destroyTargetSet(ts *TargetSet) {
	for _, c := range ts.colors {
		d.destroyTexture(c)
	}
	ts.colors = ts.colors[:0]
	if ts.ownsDepth {
		d.destroyTexture(ts.depth)
	}
	ts.depth = nil
	ts.ownsDepth = false
}

// CreateBuffer creates a buffer of req.Size bytes rounded up to 4.
// A zero usage defaults to storage plus copy source and destination.
func (d *Device) CreateBuffer(req *framegraph.BufferRequest) (framegraph.Buffer, error) {
	size := max((req.Size+3)&^3, 4)
	usage := req.Desc.Usage
	if usage == 0 {
		usage = gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc
	}
	buf, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: req.Name,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("halres: create buffer %q: %w", req.Name, err)
	}
	d.buffers.Add(1)
	return &Buffer{label: req.Name, buf: buf, size: size, usage: usage}, nil
}

// DestroyBuffer destroys b.
func (d *Device) DestroyBuffer(b framegraph.Buffer) {
	if hb, ok := b.(*Buffer); ok && hb.buf != nil {
		d.dev.DestroyBuffer(hb.buf)
		hb.buf = nil
		d.buffers.Add(-1)
	}
}

// CreateTexture creates a sampled texture. A zero usage defaults to
// binding, storage and copy destination.
func (d *Device) CreateTexture(req *framegraph.TextureRequest) (framegraph.Texture, error) {
	format := req.Desc.Format
	if format == gputypes.TextureFormatUndefined {
		format = d.opts.textureFormat
	}
	usage := req.Desc.Usage
	if usage == 0 {
		usage = gputypes.TextureUsageTextureBinding | gputypes.TextureUsageStorageBinding | gputypes.TextureUsageCopyDst
	}
	return d.createTexture(req.Name, req.Width, req.Height, req.Desc.MipCount, 1, format, usage)
}

// DestroyTexture destroys t.
func (d *Device) DestroyTexture(t framegraph.Texture) {
	if ht, ok := t.(*Texture); ok {
		d.destroyTexture(ht)
	}
}

func (d *Device) createTexture(label string, width, height, mips, samples int,
	format gputypes.TextureFormat, usage gputypes.TextureUsage) (*Texture, error) {
	//nolint:gosec // G115: sizes come from realized frame dimensions
	tex, err := d.dev.CreateTexture(&hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              uint32(max(width, 1)),
			Height:             uint32(max(height, 1)),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: uint32(max(mips, 1)),
		SampleCount:   uint32(max(samples, 1)),
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("halres: create texture %q: %w", label, err)
	}
	view, err := d.dev.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:     label,
		Format:    format,
		Dimension: gputypes.TextureViewDimension2D,
		Aspect:    gputypes.TextureAspectAll,
	})
	if err != nil {
		d.dev.DestroyTexture(tex)
		return nil, fmt.Errorf("halres: create view %q: %w", label, err)
	}
	d.textures.Add(1)
	t := &Texture{
		label:  label,
		tex:    tex,
		view:   view,
		width:  width,
		height: height,
		format: format,
		usage:  usage,
	}
	// Attachments start out ready to render into.
	if usage&gputypes.TextureUsageRenderAttachment != 0 {
		t.state = gputypes.TextureUsageRenderAttachment
	}
	return t, nil
}

func (d *Device) destroyTexture(t *Texture) {
	if t == nil || t.tex == nil {
		return
	}
	d.dev.DestroyTextureView(t.view)
	d.dev.DestroyTexture(t.tex)
	t.tex, t.view = nil, nil
	d.textures.Add(-1)
}
