package halres

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Option configures a Device.
type Option func(*options)

type options struct {
	colorFormat   gputypes.TextureFormat
	depthFormat   gputypes.TextureFormat
	textureFormat gputypes.TextureFormat
	queue         hal.Queue
}

func defaultOptions() options {
	return options{
		colorFormat:   gputypes.TextureFormatRGBA8Unorm,
		depthFormat:   gputypes.TextureFormatDepth24PlusStencil8,
		textureFormat: gputypes.TextureFormatRGBA8Unorm,
	}
}

// WithColorFormat sets the format used for color attachments declared with
// TextureFormatUndefined.
func WithColorFormat(f gputypes.TextureFormat) Option {
	return func(o *options) {
		if f != gputypes.TextureFormatUndefined {
			o.colorFormat = f
		}
	}
}

// WithDepthFormat sets the default depth-stencil format.
func WithDepthFormat(f gputypes.TextureFormat) Option {
	return func(o *options) {
		if f.IsDepthStencil() {
			o.depthFormat = f
		}
	}
}

// WithTextureFormat sets the default format of pooled textures.
func WithTextureFormat(f gputypes.TextureFormat) Option {
	return func(o *options) {
		if f != gputypes.TextureFormatUndefined {
			o.textureFormat = f
		}
	}
}

// WithQueue attaches the device queue so callers can retrieve it with Device.Queue.
func WithQueue(q hal.Queue) Option {
	return func(o *options) {
		o.queue = q
	}
}
