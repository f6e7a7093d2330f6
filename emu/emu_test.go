package emu

import (
	"context"
	"testing"
	"time"

	"speccy/hw/spectrum"
)

// testROM sets the border, then halts with interrupts enabled forever.
func testROM() []byte {
	rom := make([]byte, spectrum.ROMSize)
	copy(rom, []byte{
		0xED, 0x56, // IM 1
		0x3E, 0x02, // LD A,2
		0xD3, 0xFE, // OUT ($FE),A
		0xFB,       // EI
		0x76,       // HALT
		0x18, 0xFC, // JR $0006
	})
	copy(rom[0x38:], []byte{
		0xFB, // EI
		0xC9, // RET
	})
	return rom
}

type fakeInput struct {
	calls int
}

func (in *fakeInput) Update(kb *spectrum.Keyboard) uint8 {
	in.calls++
	kb.SetKey(spectrum.KeyA, true)
	return spectrum.JoyFire
}

func TestEmulatorRun(t *testing.T) {
	out := &Headless{MaxFrames: 5}
	in := &fakeInput{}
	cfg := DefaultConfig()
	cfg.Machine.Fast = true

	e, err := Launch(testROM(), cfg, out, in)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if n := out.Frames(); n != 5 {
		t.Errorf("output received %d frames, want 5", n)
	}
	if in.calls != 5 {
		t.Errorf("input sampled %d times, want 5", in.calls)
	}
	if !e.Machine.ULA.Keyboard.Pressed(spectrum.KeyA) {
		t.Errorf("key A not pressed")
	}
	if joy := e.Machine.Kempston.Value; joy != spectrum.JoyFire {
		t.Errorf("kempston = %02X, want %02X", joy, spectrum.JoyFire)
	}

	img := e.Screenshot()
	if got, want := img.RGBAAt(0, 0), spectrum.Palette[2]; got != want {
		t.Errorf("border pixel = %v, want %v", got, want)
	}
}

func TestEmulatorThrottle(t *testing.T) {
	out := &Headless{MaxFrames: 5}
	e, err := Launch(testROM(), DefaultConfig(), out, nil)
	if err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	if err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if d := time.Since(start); d < 4*FrameDuration {
		t.Errorf("5 frames took %v, expected at least %v", d, 4*FrameDuration)
	}
}

func TestEmulatorControl(t *testing.T) {
	out := &Headless{}
	cfg := DefaultConfig()
	cfg.Machine.Fast = true
	e, err := Launch(testROM(), cfg, out, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error)
	go func() { done <- e.Run(ctx) }()

	for out.Frames() < 3 {
		time.Sleep(time.Millisecond)
	}

	e.SetPause(true)
	time.Sleep(150 * time.Millisecond)
	n := out.Frames()
	time.Sleep(250 * time.Millisecond)
	if m := out.Frames(); m != n {
		t.Errorf("paused emulator produced %d frames", m-n)
	}
	e.TogglePause()

	e.Reset()
	e.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("emulator didn't stop")
	}
}

func TestEmulatorBadROM(t *testing.T) {
	if _, err := Launch(make([]byte, 100), DefaultConfig(), &Headless{}, nil); err == nil {
		t.Fatal("expected an error")
	}
}
