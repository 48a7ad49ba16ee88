package pool

// Default pool limits.
const (
	DefaultMaxIdleFrames   = 3
	DefaultMaxPerBucket    = 4
	DefaultPersistentLimit = 256
)

// Option configures a pool.
type Option func(*options)

type options struct {
	maxIdle         uint64
	maxPerBucket    int
	persistentLimit int
}

func defaultOptions() options {
	return options{
		maxIdle:         DefaultMaxIdleFrames,
		maxPerBucket:    DefaultMaxPerBucket,
		persistentLimit: DefaultPersistentLimit,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMaxIdleFrames sets how many frames a released or persistent resource
// may stay unused after the frame it was last used in before Cleanup
// destroys it. With zero, a resource survives the frame it was used in and
// is destroyed at the end of the next frame that does not use it.
func WithMaxIdleFrames(n uint64) Option {
	return func(o *options) {
		o.maxIdle = n
	}
}

// WithMaxPerBucket limits how many free resources of one descriptor and size
// are retained. Zero means unlimited.
func WithMaxPerBucket(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxPerBucket = n
		}
	}
}

// WithPersistentLimit limits the number of persistent resources kept alive.
// The least recently used one that is not currently acquired is destroyed
// when the limit is exceeded. Zero means unlimited.
func WithPersistentLimit(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.persistentLimit = n
		}
	}
}
