package recorder

// Option configures a Recorder.
type Option func(*options)

type options struct {
	sortAlpha bool
	capacity  int
	chunkSize int
}

func defaultOptions() options {
	return options{
		sortAlpha: true,
		capacity:  256,
		chunkSize: 64,
	}
}

// WithAlphaSort enables or disables back-to-front sorting of the
// alpha-blend queue. Enabled by default.
func WithAlphaSort(enabled bool) Option {
	return func(o *options) {
		o.sortAlpha = enabled
	}
}

// WithCapacity sets the initial capacity of the op stream.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithChunkSize sets how many commands of one type are allocated at once by Alloc.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}
