package halres

import (
	"fmt"
	"slices"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// backendPriority lists backends from most to least preferred.
var backendPriority = []string{"vulkan", "metal", "dx12", "gles", "noop"}

var backends = gpucontext.NewRegistry[hal.Backend](gpucontext.WithPriority(backendPriority...))

func init() {
	// Native backends register themselves with hal when their package is
	// linked in; resolve them lazily so link order does not matter.
	for name, variant := range map[string]gputypes.Backend{
		"vulkan": gputypes.BackendVulkan,
		"metal":  gputypes.BackendMetal,
		"dx12":   gputypes.BackendDX12,
		"gles":   gputypes.BackendGL,
	} {
		backends.Register(name, func() hal.Backend {
			b, ok := hal.GetBackend(variant)
			if !ok {
				return nil
			}
			return b
		})
	}
}

// RegisterBackend makes a backend available to Open under name.
func RegisterBackend(name string, factory func() hal.Backend) {
	backends.Register(name, factory)
}

// Backends returns the names of the backends Open can use, sorted.
func Backends() []string {
	var names []string
	for _, name := range backends.Available() {
		if backends.Get(name) != nil {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

func selectBackend(name string) (string, hal.Backend) {
	if name != "" {
		return name, backends.Get(name)
	}
	for _, n := range backendPriority {
		if b := backends.Get(n); b != nil {
			return n, b
		}
	}
	return "", nil
}

// Open creates a device on the named backend, or on the most preferred
// available backend when name is empty. The returned function destroys the
// device and its instance.
func Open(name string, opts ...Option) (*Device, func(), error) {
	name, backend := selectBackend(name)
	if backend == nil {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{})
	if err != nil {
		return nil, nil, fmt.Errorf("halres: %s: create instance: %w", name, err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, fmt.Errorf("%w: %s", ErrNoAdapter, name)
	}
	od, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, fmt.Errorf("halres: %s: open adapter: %w", name, err)
	}

	framegraph.Logger().Info("halres: device opened",
		"backend", name,
		"adapter", adapters[0].Info.Name)

	dev := NewDevice(od.Device, append([]Option{WithQueue(od.Queue)}, opts...)...)
	closeFn := func() {
		od.Device.Destroy()
		instance.Destroy()
	}
	return dev, closeFn, nil
}
