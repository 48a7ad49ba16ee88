package framegraph

import "errors"

// Validation and configuration errors.
var (
	// ErrNotValidated is returned by Build when Validate has not succeeded
	// since the last declaration.
	ErrNotValidated = errors.New("framegraph: graph not validated")

	// ErrDepthExceeded is returned when the dependency chain is deeper than
	// the configured depth ceiling.
	ErrDepthExceeded = errors.New("framegraph: dependency depth exceeds ceiling")

	// ErrMalformedPass is returned when a pass references a resource that was
	// never declared this frame.
	ErrMalformedPass = errors.New("framegraph: malformed pass")

	// ErrInvalidHandle is returned for handles that are unknown or belong to
	// a previous frame.
	ErrInvalidHandle = errors.New("framegraph: invalid resource handle")

	// ErrTooManyResources is returned when a frame declares more resources
	// than a handle can address.
	ErrTooManyResources = errors.New("framegraph: too many resources in frame")

	// ErrDependencyCycle is returned by Validate in strict cycle mode when a
	// pass depends on itself through its inputs.
	ErrDependencyCycle = errors.New("framegraph: dependency cycle")

	// ErrDestroyed is returned when the graph is used after Destroy.
	ErrDestroyed = errors.New("framegraph: graph destroyed")
)

// Build errors.
var (
	// ErrSizeCycle is returned when size-reference or shared depth-stencil
	// chains loop back on themselves.
	ErrSizeCycle = errors.New("framegraph: target size reference cycle")

	// ErrAcquireFailed is returned when a pool cannot supply a physical
	// resource. The frame must be dropped; the next frame may succeed.
	ErrAcquireFailed = errors.New("framegraph: resource acquisition failed")
)
