package main

import (
	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/recorder"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

var (
	shadowID  = framegraph.PersistentHandleFromName("shadow-atlas")
	historyID = framegraph.PersistentHandleFromName("taa-history")
)

// pipelines holds the compiled pipelines the build callbacks bind.
type pipelines struct {
	particles hal.ComputePipeline
}

// declareFrame declares a deferred frame:
//
//	shadows -> shadow atlas (persistent)
//	gbuffer, decals -> gbuffer (merged)
//	cull -> light tiles (compute)
//	simulate -> particles (ordering only)
//	lighting -> light, sharing the gbuffer depth
//	ssr -> half resolution reflections
//	taa -> history (persistent, double buffered)
//	tonemap, hud -> primary (merged)
func declareFrame(g *framegraph.Graph, rec *recorder.Recorder, cfg *frameConfig, pipes *pipelines) {
	shadow := g.AddPersistentTargetSet("shadowAtlas", shadowID, false, framegraph.TargetSetDesc{
		Width:                      cfg.ShadowSize,
		Height:                     cfg.ShadowSize,
		CreateDepthStencil:         true,
		UsingDepthStencilAsTexture: true,
		IgnoreStencil:              true,
	}, framegraph.InvalidHandle, framegraph.InvalidHandle)

	gbuffer := g.AddTransientTargetSet("gbuffer", framegraph.TargetSetDesc{
		Count:                      3,
		CreateDepthStencil:         true,
		UsingDepthStencilAsTexture: true,
		Targets: [framegraph.MaxColorTargets]framegraph.TargetDesc{
			{ColorFormat: gputypes.TextureFormatRGBA8Unorm},
			{ColorFormat: gputypes.TextureFormatRGBA16Float},
			{ColorFormat: gputypes.TextureFormatRG11B10Ufloat},
		},
	}, framegraph.InvalidHandle, framegraph.InvalidHandle)

	//nolint:gosec // G115: tile count is validated configuration
	tiles := g.AddTransientBuffer("lightTiles", framegraph.BufferDesc{ElementSize: 64, ElementCount: uint32(cfg.LightTiles)},
		framegraph.InvalidHandle)
	particles := g.AddDependency("particles")

	light := g.AddTransientTargetSet("light", framegraph.TargetSetDesc{
		Count:   1,
		Targets: [framegraph.MaxColorTargets]framegraph.TargetDesc{{ColorFormat: gputypes.TextureFormatRGBA16Float}},
	}, gbuffer, framegraph.InvalidHandle)

	reflections := g.AddTransientTargetSet("reflections", framegraph.TargetSetDesc{
		Count:                1,
		ReferenceWidthDenom:  cfg.ReflectionDenom,
		ReferenceHeightDenom: cfg.ReflectionDenom,
		Targets:              [framegraph.MaxColorTargets]framegraph.TargetDesc{{ColorFormat: gputypes.TextureFormatRGBA16Float}},
	}, framegraph.InvalidHandle, light)

	history := g.AddPersistentTargetSet("taaHistory", historyID, cfg.DoubleBufferTAA, framegraph.TargetSetDesc{
		Count:   1,
		Targets: [framegraph.MaxColorTargets]framegraph.TargetDesc{{ColorFormat: gputypes.TextureFormatRGBA16Float}},
	}, framegraph.InvalidHandle, light)

	clearAll := framegraph.Clear{Mask: framegraph.ClearColor | framegraph.ClearDepth | framegraph.ClearStencil, Depth: 1}

	p := g.NewPass("shadows")
	p.SetOutput(shadow, framegraph.Clear{Mask: framegraph.ClearDepth, Depth: 1}, framegraph.TargetNone, framegraph.TargetDepth)
	p.AddBuild(draws(rec, framegraph.PriorityOpaque, "caster", 24))
	g.AddPass(p)

	p = g.NewPass("gbuffer")
	p.SetOutput(gbuffer, clearAll, framegraph.TargetNone, framegraph.TargetAll)
	p.AddBuild(draws(rec, framegraph.PriorityOpaque, "mesh", 64))
	g.AddPass(p)

	p = g.NewPass("decals")
	p.SetOutputNoClear(gbuffer, framegraph.TargetAll, framegraph.TargetAll)
	p.AddBuild(draws(rec, framegraph.PriorityPostOpaque, "decal", 8))
	g.AddPass(p)

	p = g.NewPass("cull")
	p.AddInput(gbuffer)
	p.SetBufferOutput(tiles)
	p.AddBuild(dispatch(rec, "cullLights", nil, 80, 45))
	g.AddPass(p)

	p = g.NewPass("simulate")
	p.SetBufferOutput(particles)
	//nolint:gosec // G115: group count is validated configuration
	p.AddBuild(dispatch(rec, "particles", pipes.particles, uint32(cfg.ParticleDispatch), 1))
	g.AddPass(p)

	p = g.NewPass("lighting")
	p.AddInput(gbuffer)
	p.AddInput(shadow)
	p.AddInput(tiles)
	p.AddInput(particles)
	p.SetOutput(light, framegraph.Clear{Mask: framegraph.ClearColor}, framegraph.TargetDepth, framegraph.TargetColor)
	p.AddBuild(draws(rec, framegraph.PriorityOpaque, "fullscreen", 1))
	p.AddBuild(draws(rec, framegraph.PriorityAlphaBlend, "particle", 16))
	g.AddPass(p)

	// Skipped reflections leave the target declared but unreferenced, so it
	// is never acquired.
	if !cfg.SkipReflections {
		p = g.NewPass("ssr")
		p.AddInput(gbuffer)
		p.AddInput(light)
		p.SetOutput(reflections, framegraph.Clear{Mask: framegraph.ClearColor}, framegraph.TargetNone, framegraph.TargetColor)
		p.AddBuild(draws(rec, framegraph.PriorityOpaque, "trace", 1))
		g.AddPass(p)
	}

	p = g.NewPass("taa")
	p.AddInput(light)
	if !cfg.SkipReflections {
		p.AddInput(reflections)
	}
	p.AddInput(history)
	p.SetOutput(history, framegraph.Clear{}, framegraph.TargetNone, framegraph.TargetColor)
	p.AddBuild(draws(rec, framegraph.PriorityOpaque, "resolve", 1))
	g.AddPass(p)

	p = g.NewPass("tonemap")
	p.AddInput(history)
	p.SetOutput(framegraph.PrimaryHandle, framegraph.Clear{Mask: framegraph.ClearColor}, framegraph.TargetNone, framegraph.TargetColor)
	p.AddBuild(draws(rec, framegraph.PriorityOpaque, "tonemap", 1))
	g.AddPass(p)

	p = g.NewPass("hud")
	p.SetOutputNoClear(framegraph.PrimaryHandle, framegraph.TargetColor, framegraph.TargetColor)
	p.AddBuild(draws(rec, framegraph.PriorityOverlay, "glyphs", 4))
	g.AddPass(p)
}

// draws returns a build callback queuing n draws at priority p. Distances
// grow with i, so the alpha-blend queue comes out reversed.
func draws(rec *recorder.Recorder, p framegraph.Priority, name string, n int) framegraph.BuildFunc {
	return func(*framegraph.Graph, framegraph.CommandTarget) {
		for i := range n {
			cmd := recorder.Alloc[recorder.DrawCommand](rec)
			cmd.Name = name
			cmd.VertexCount = 3
			cmd.InstanceCount = 1
			cmd.ViewDistance = float32(i)
			rec.DrawPriority(p, cmd)
		}
	}
}

func dispatch(rec *recorder.Recorder, name string, pipeline hal.ComputePipeline, x, y uint32) framegraph.BuildFunc {
	return func(*framegraph.Graph, framegraph.CommandTarget) {
		cmd := recorder.Alloc[recorder.DispatchCommand](rec)
		cmd.Name = name
		cmd.Pipeline = pipeline
		cmd.X, cmd.Y, cmd.Z = x, y, 1
		rec.Compute(cmd)
	}
}
