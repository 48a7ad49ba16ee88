package halres

import "errors"

var (
	// ErrNoHalDevice is returned when a provider does not expose a hal.Device.
	ErrNoHalDevice = errors.New("halres: provider does not expose a hal.Device")

	// ErrUnknownBackend is returned by Open for backends that are not linked in.
	ErrUnknownBackend = errors.New("halres: unknown or unavailable backend")

	// ErrNoAdapter is returned by Open when the backend reports no adapter.
	ErrNoAdapter = errors.New("halres: no adapter available")

	// ErrForeignTargetSet is returned when a shared depth source was not
	// created by a halres.Device.
	ErrForeignTargetSet = errors.New("halres: shared depth source is not a halres target set")

	// ErrNoShader is returned when a pipeline is built from a missing or
	// destroyed shader.
	ErrNoShader = errors.New("halres: shader is nil or destroyed")
)
