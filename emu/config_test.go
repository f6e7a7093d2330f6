package emu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"speccy/hw/shaders"
)

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), cfgFilename)

	want := DefaultConfig()
	want.Machine.ROM = "/roms/48.rom"
	want.Video.Scale = 3
	want.Video.Shader = "CRT"
	want.Debugger.Breakpoints = []string{"$0038", "0x1234"}

	if err := saveConfig(want, path); err != nil {
		t.Fatal(err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), cfgFilename)
	const content = `
[video]
scale = 4
shader = "NoSuchShader"

[debugger]
listen = ":9000"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	def := DefaultConfig()
	if cfg.Video.Scale != 4 {
		t.Errorf("scale = %d, want 4", cfg.Video.Scale)
	}
	if cfg.Video.Shader != shaders.DefaultName {
		t.Errorf("shader = %q, want fallback %q", cfg.Video.Shader, shaders.DefaultName)
	}
	if cfg.Debugger.Listen != ":9000" {
		t.Errorf("listen = %q, want %q", cfg.Debugger.Listen, ":9000")
	}
	if diff := cmp.Diff(def.Keyboard, cfg.Keyboard); diff != "" {
		t.Errorf("keyboard config should keep defaults (-want +got):\n%s", diff)
	}
}

func TestConfigErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Errorf("loading a missing file should fail")
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[video\nscale = "), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Errorf("loading a malformed file should fail")
	}
}

func TestVideoConfigCheck(t *testing.T) {
	tests := []struct {
		name string
		in   VideoConfig
		want VideoConfig
	}{
		{
			name: "valid",
			in:   VideoConfig{Scale: 3, Shader: "CRT"},
			want: VideoConfig{Scale: 3, Shader: "CRT"},
		},
		{
			name: "zero",
			in:   VideoConfig{},
			want: VideoConfig{Scale: 2, Shader: shaders.DefaultName},
		},
		{
			name: "unknown shader",
			in:   VideoConfig{Scale: 1, Shader: "Sepia"},
			want: VideoConfig{Scale: 1, Shader: shaders.DefaultName},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in
			got.Check()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Check() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
