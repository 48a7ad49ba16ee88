// Command fgdemo schedules a deferred-shading frame on a hal backend and
// dumps the frame report.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/halres"
	"github.com/gogpu/framegraph/overlay"
	"github.com/gogpu/framegraph/pool"
	"github.com/gogpu/framegraph/recorder"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("fgdemo: %v", err)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	framegraph.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(cfg); err != nil {
		log.Fatalf("fgdemo: %v", err)
	}
}

func run(cfg config) error {
	width, height := cfg.Width, cfg.Height
	dev, closeDev, err := halres.Open(cfg.Backend, halres.WithColorFormat(gputypes.TextureFormatBGRA8Unorm))
	if err != nil {
		return err
	}
	defer closeDev()

	sim, err := dev.CompileShader("particles", particleWGSL)
	if err != nil {
		return err
	}
	defer dev.DestroyShader(sim)
	simPipeline, err := dev.CreateComputePipeline(sim, "main", 1)
	if err != nil {
		return err
	}
	defer dev.DestroyComputePipeline(simPipeline)
	framegraph.Logger().Debug("fgdemo: pipeline ready", "label", sim.Label(), "words", sim.Words())
	pipes := pipelines{particles: simPipeline.Raw()}

	pools := pool.NewSet(dev)
	defer pools.Destroy()
	g := pools.NewGraph()
	defer g.Destroy()
	rec := recorder.New()

	swap, err := dev.CreateTargetSet(&framegraph.TargetSetRequest{
		Name:   "swapchain",
		Desc:   framegraph.TargetSetDesc{Count: 1, CreateDepthStencil: true},
		Width:  width,
		Height: height,
	})
	if err != nil {
		return fmt.Errorf("create swapchain stand-in: %w", err)
	}
	defer dev.DestroyTargetSet(swap)
	sc := swap.(*halres.TargetSet)
	primary := recorder.Primary{
		Color:       sc.Color(0).View(),
		Depth:       sc.Depth().View(),
		DepthFormat: sc.Depth().Format(),
	}

	var report framegraph.Report
	for frame := range cfg.Frames {
		declareFrame(g, rec, &cfg.Frame, &pipes)
		if err := g.Validate(); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		if err := g.Build(rec, width, height); err != nil {
			// A failed frame is dropped; the next one starts clean.
			framegraph.Logger().Warn("fgdemo: frame dropped", "frame", frame, "err", err)
			rec.Reset()
			continue
		}
		report = g.LastReport().Clone()
		if err := submit(dev, rec, primary); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		fmt.Print(overlay.Summary(report))
		rec.Reset()
	}

	s := pools.Targets.Stats()
	framegraph.Logger().Info("pools",
		"created", s.Created,
		"reused", s.Reused,
		"persistent", s.Persistent,
		"textures", dev.Stats().Textures)

	if cfg.Output == "" {
		return nil
	}
	return writePNG(cfg.Output, report)
}

// submit replays the recorded frame into a command buffer and submits it.
func submit(dev *halres.Device, rec *recorder.Recorder, primary recorder.Primary) error {
	enc, err := dev.Raw().CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "frame"})
	if err != nil {
		return err
	}
	defer enc.Destroy()
	if err := enc.BeginEncoding("frame"); err != nil {
		return err
	}
	if err := rec.Replay(enc, primary); err != nil {
		enc.DiscardEncoding()
		return err
	}
	cb, err := enc.EndEncoding()
	if err != nil {
		return err
	}
	defer dev.Raw().FreeCommandBuffer(cb)
	if q := dev.Queue(); q != nil {
		if _, err := q.Submit([]hal.CommandBuffer{cb}); err != nil {
			return err
		}
	}
	return nil
}

func writePNG(path string, r framegraph.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, overlay.Render(r)); err != nil {
		_ = f.Close()
		return err
	}
	log.Printf("overlay saved to %s", path)
	return f.Close()
}
