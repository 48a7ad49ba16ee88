package framegraph

// DefaultMaxDepth is the default ceiling on dependency depth.
const DefaultMaxDepth = 32

// GraphOption configures a Graph during creation.
//
// Example:
//
//	g := framegraph.NewGraph(targets, buffers, textures,
//	    framegraph.WithMaxDepth(64),
//	    framegraph.WithStrictCycles(true),
//	)
type GraphOption func(*graphOptions)

// graphOptions holds optional configuration for Graph creation.
type graphOptions struct {
	maxDepth     int
	strictCycles bool
	frameCounter uint64
}

// defaultOptions returns the default graph options.
func defaultOptions() graphOptions {
	return graphOptions{
		maxDepth: DefaultMaxDepth,
	}
}

// WithMaxDepth sets the number of depth levels (order buckets) available to
// the scheduler. Graphs deeper than this fail validation with ErrDepthExceeded.
// Values below 1 are ignored.
func WithMaxDepth(n int) GraphOption {
	return func(o *graphOptions) {
		if n >= 1 {
			o.maxDepth = n
		}
	}
}

// WithStrictCycles makes Validate fail with ErrDependencyCycle when a pass
// reaches itself through its inputs. By default the cyclic edge is dropped
// and validation succeeds.
func WithStrictCycles(strict bool) GraphOption {
	return func(o *graphOptions) {
		o.strictCycles = strict
	}
}

// WithFrameCounter sets the initial frame counter, which selects the
// double-buffer parity of persistent targets.
func WithFrameCounter(frame uint64) GraphOption {
	return func(o *graphOptions) {
		o.frameCounter = frame
	}
}
