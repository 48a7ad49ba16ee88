// Package halres allocates framegraph resources on a wgpu HAL device.
//
// Device implements pool.Device: target sets become color textures plus an
// optional depth-stencil texture with their render views, buffers and
// textures map directly to hal.Buffer and hal.Texture.
//
//	dev, closeDev, err := halres.Open("") // best linked backend, noop fallback
//	if err != nil {
//	    return err
//	}
//	defer closeDev()
//
//	pools := pool.NewSet(dev)
//	g := pools.NewGraph()
//
// A device shared with a host application can be injected through
// gpucontext.DeviceProvider with NewDeviceFromProvider.
//
// CompileShader turns WGSL into a shader module for the pipelines that pass
// build callbacks bind.
package halres
