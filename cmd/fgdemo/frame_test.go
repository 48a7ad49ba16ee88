//go:build !(js && wasm)

package main

import (
	"testing"

	"github.com/gogpu/framegraph/halres"
	"github.com/gogpu/framegraph/pool"
	"github.com/gogpu/framegraph/recorder"
)

func TestParticleDispatchCarriesPipeline(t *testing.T) {
	cfg := defaultConfig()
	dev, closeDev, err := halres.Open(cfg.Backend)
	if err != nil {
		t.Fatal(err)
	}
	defer closeDev()

	sim, err := dev.CompileShader("particles", particleWGSL)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.DestroyShader(sim)
	pl, err := dev.CreateComputePipeline(sim, "main", 1)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.DestroyComputePipeline(pl)

	pools := pool.NewSet(dev)
	defer pools.Destroy()
	g := pools.NewGraph()
	defer g.Destroy()
	rec := recorder.New()

	declareFrame(g, rec, &cfg.Frame, &pipelines{particles: pl.Raw()})
	if err := g.Validate(); err != nil {
		t.Fatal(err)
	}
	if err := g.Build(rec, 64, 64); err != nil {
		t.Fatal(err)
	}

	found := map[string]bool{}
	for _, op := range rec.Ops() {
		d, ok := op.Command.(*recorder.DispatchCommand)
		if op.Type != recorder.OpCompute || !ok {
			continue
		}
		found[d.Name] = true
		switch d.Name {
		case "particles":
			if d.Pipeline != pl.Raw() {
				t.Errorf("particles pipeline = %v, want the compiled simulation", d.Pipeline)
			}
		case "cullLights":
			if d.Pipeline != nil {
				t.Errorf("cullLights pipeline = %v, want nil", d.Pipeline)
			}
		}
	}
	if !found["particles"] || !found["cullLights"] {
		t.Errorf("dispatches recorded = %v", found)
	}
}
