package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseModules(t *testing.T) {
	tests := []struct {
		in      string
		want    ModuleMask
		wantErr bool
	}{
		{in: "", want: 0},
		{in: "cpu", want: ModCPU.Mask()},
		{in: "cpu,ula", want: ModCPU.Mask() | ModULA.Mask()},
		{in: "cpu, dbg", want: ModCPU.Mask() | ModDbg.Mask()},
		{in: "all", want: ModuleMaskAll},
		{in: "cpu,nope", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseModules(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseModules(%q) error = %v, wantErr %t", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseModules(%q) = %x, want %x", tt.in, got, tt.want)
		}
	}
}

func TestDisabledEntryIsNil(t *testing.T) {
	DisableDebugModules(ModuleMaskAll)
	if e := ModCPU.DebugZ("hidden"); e != nil {
		t.Fatalf("DebugZ on disabled module = %v, want nil", e)
	}
	// Chaining on a nil entry must not panic.
	ModCPU.DebugZ("hidden").Hex16("pc", 0x1234).String("s", "x").End()
}

func TestEntryZOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(&bytes.Buffer{})

	ModCPU.WarnZ("something odd").Hex16("pc", 0xC000).Hex8("op", 0xED).Bool("ok", true).End()

	out := buf.String()
	for _, want := range []string{"something odd", "pc=C000", "op=ED", "ok=true", "_mod=cpu"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q doesn't contain %q", out, want)
		}
	}
}

func TestNewModule(t *testing.T) {
	mod := NewModule("testmod")
	got, ok := ModuleByName("testmod")
	if !ok || got != mod {
		t.Fatalf("ModuleByName(testmod) = %v, %t, want %v, true", got, ok, mod)
	}
	if mod.String() != "testmod" {
		t.Errorf("String() = %q, want testmod", mod.String())
	}
}
