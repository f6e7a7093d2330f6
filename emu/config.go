package emu

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"

	"speccy/emu/log"
	"speccy/hw/input"
	"speccy/hw/shaders"
)

type Config struct {
	Machine  MachineConfig  `toml:"machine"`
	Video    VideoConfig    `toml:"video"`
	Debugger DebuggerConfig `toml:"debugger"`
	Keyboard input.Config   `toml:"keyboard"`

	TraceOut io.WriteCloser `toml:"-"`
}

type MachineConfig struct {
	// ROM is the path to the 16K ROM image, used when none is given on the
	// command line.
	ROM string `toml:"rom"`
	// Fast disables throttling to 50 frames per second.
	Fast bool `toml:"fast"`
}

type VideoConfig struct {
	Scale        int    `toml:"scale"`
	DisableVSync bool   `toml:"disable_vsync"`
	Monitor      int32  `toml:"monitor"`
	Shader       string `toml:"shader"`
}

func (vcfg *VideoConfig) Check() {
	if vcfg.Scale < 1 {
		vcfg.Scale = 2
	}
	// Ensure we have a valid shader.
	if vcfg.Shader == "" {
		vcfg.Shader = shaders.DefaultName
	}
	if !slices.Contains(shaders.Names(), vcfg.Shader) {
		log.ModEmu.Warnf("Invalid shader name %q, fallback to %q", vcfg.Shader, shaders.DefaultName)
		vcfg.Shader = shaders.DefaultName
	}
}

type DebuggerConfig struct {
	// Listen is the host:port the remote debugger listens on.
	Listen string `toml:"listen"`
	// Breakpoints are set when the debugger starts.
	Breakpoints []string `toml:"breakpoints"`
}

// DefaultConfig returns the configuration used in the absence of a
// configuration file.
func DefaultConfig() Config {
	return Config{
		Video: VideoConfig{
			Scale:  2,
			Shader: shaders.DefaultName,
		},
		Debugger: DebuggerConfig{
			Listen: "localhost:7777",
		},
		Keyboard: input.DefaultConfig(),
	}
}

var ConfigDir = sync.OnceValue(func() string {
	dir := configdir.LocalConfig("speccy")
	if err := configdir.MakePath(dir); err != nil {
		log.ModEmu.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})

const cfgFilename = "config.toml"

// LoadConfig loads the configuration at path. Settings absent from the file
// keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return DefaultConfig(), err
	}
	cfg.Video.Check()
	return cfg, nil
}

// LoadConfigOrDefault loads the configuration from the speccy config
// directory, or provides the default one.
func LoadConfigOrDefault() Config {
	path := filepath.Join(ConfigDir(), cfgFilename)
	cfg, err := LoadConfig(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.ModEmu.WarnZ("Failed to load config, using defaults").
				String("path", path).
				Error("err", err).
				End()
		}
		return DefaultConfig()
	}
	return cfg
}

// SaveConfig into speccy config directory.
func SaveConfig(cfg Config) error {
	return saveConfig(cfg, filepath.Join(ConfigDir(), cfgFilename))
}

func saveConfig(cfg Config, path string) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}
