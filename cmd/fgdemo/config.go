package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// config is the demo configuration. It is read from an optional TOML file;
// flags set on the command line win over the file.
type config struct {
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
	Frames  int    `toml:"frames"`
	Backend string `toml:"backend"`
	Output  string `toml:"out"`
	Verbose bool   `toml:"verbose"`

	Frame frameConfig `toml:"frame"`
}

// frameConfig shapes the declared frame.
type frameConfig struct {
	ShadowSize       int  `toml:"shadow_size"`
	ReflectionDenom  int  `toml:"reflection_denom"`
	LightTiles       int  `toml:"light_tiles"`
	DoubleBufferTAA  bool `toml:"double_buffer_taa"`
	SkipReflections  bool `toml:"skip_reflections"`
	ParticleDispatch int  `toml:"particle_groups"`
}

func defaultConfig() config {
	return config{
		Width:   1280,
		Height:  720,
		Frames:  3,
		Backend: "noop",
		Frame: frameConfig{
			ShadowSize:       2048,
			ReflectionDenom:  2,
			LightTiles:       4096,
			DoubleBufferTAA:  true,
			ParticleDispatch: 64,
		},
	}
}

// loadConfig decodes path over the defaults. Unknown keys are rejected.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c *config) validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("invalid viewport %dx%d", c.Width, c.Height)
	case c.Frames < 0:
		return fmt.Errorf("invalid frame count %d", c.Frames)
	case c.Frame.ShadowSize <= 0:
		return fmt.Errorf("invalid shadow size %d", c.Frame.ShadowSize)
	case c.Frame.ReflectionDenom <= 0:
		return fmt.Errorf("invalid reflection denominator %d", c.Frame.ReflectionDenom)
	}
	return nil
}

// parseFlags reads the command line into a config.
func parseFlags(fs *flag.FlagSet, args []string) (config, error) {
	var (
		path    = fs.String("config", "", "TOML configuration file")
		width   = fs.Int("width", 0, "viewport width")
		height  = fs.Int("height", 0, "viewport height")
		frames  = fs.Int("frames", 0, "number of frames to build")
		backend = fs.String("backend", "", "hal backend (\"best\" picks the best available)")
		output  = fs.String("out", "", "write the overlay of the last frame to this PNG file")
		verbose = fs.Bool("v", false, "debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	cfg, err := loadConfig(*path)
	if err != nil {
		return cfg, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "frames":
			cfg.Frames = *frames
		case "backend":
			cfg.Backend = *backend
		case "out":
			cfg.Output = *output
		case "v":
			cfg.Verbose = *verbose
		}
	})
	if cfg.Backend == "best" {
		cfg.Backend = ""
	}
	return cfg, cfg.validate()
}
