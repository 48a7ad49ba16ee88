// Package framegraph schedules the render passes of one frame.
//
// # Overview
//
// Each frame the caller declares virtual resources (render target sets,
// buffers, textures and ordering-only dependencies) and the passes that read
// and write them. The graph then works out the execution order from the
// data flow, culls passes whose output nobody needs, realizes resource sizes,
// acquires physical resources from pools just in time and returns them as
// soon as the last reader has run.
//
// # Quick Start
//
//	g := framegraph.NewGraph(targets, buffers, textures)
//
//	scene := g.AddTransientTargetSet("scene", framegraph.TargetSetDesc{Count: 1},
//	    framegraph.InvalidHandle, framegraph.InvalidHandle)
//
//	p := g.NewPass("scene")
//	p.SetOutput(scene, framegraph.Clear{Mask: framegraph.ClearColor},
//	    framegraph.TargetNone, framegraph.TargetColor)
//	p.AddBuild(drawScene)
//	g.AddPass(p)
//
//	p = g.NewPass("present")
//	p.AddInput(scene)
//	p.SetOutput(framegraph.PrimaryHandle, framegraph.Clear{}, framegraph.TargetNone, framegraph.TargetColor)
//	p.AddBuild(blit)
//	g.AddPass(p)
//
//	if err := g.Validate(); err != nil { ... }
//	if err := g.Build(cmds, width, height); err != nil { ... } // drop the frame
//
// # Frame cycle
//
// Declarations, Validate and Build make one frame. Build resets every
// per-frame record, so handles and passes must not be kept past it. Only the
// frame counter, which selects the double-buffer parity of persistent
// targets, survives.
//
// # Scheduling
//
// Roots are passes that write the primary output or an explicit resource, or
// whose output has no reader. Every pass reachable from a root through its
// inputs gets the longest distance at which it is reached; passes run deepest
// first, and passes at equal depth run in descending order of output handle.
// Unreachable passes are culled.
//
// # Packages
//
//   - pool: descriptor-keyed pools with persistent identity and idle eviction
//   - halres: pool devices on github.com/gogpu/wgpu/hal
//   - recorder: a CommandTarget that records and replays onto hal encoders
//   - overlay: debug rendering of a frame Report
package framegraph

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
