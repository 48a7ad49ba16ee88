//go:build !(js && wasm)

package halres

import (
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

func init() {
	backends.Register("noop", func() hal.Backend { return noop.API{} })
}
