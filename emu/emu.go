package emu

import (
	"context"
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"speccy/emu/log"
	"speccy/hw/spectrum"
)

// FrameDuration is the duration of a 50Hz PAL frame.
const FrameDuration = time.Second / 50

// An Output shows frames and reports whether the emulator should keep
// running.
type Output interface {
	EndFrame(spectrum.Frame)
	Poll() bool
	Close()
	Screenshot() *image.RGBA
}

// An InputSource updates the keyboard matrix and returns the Kempston
// joystick state. It is called between frames.
type InputSource interface {
	Update(kb *spectrum.Keyboard) uint8
}

type Emulator struct {
	Machine *spectrum.Machine
	out     Output
	in      InputSource
	frames  chan spectrum.Frame
	fast    bool

	// These are accessed concurrently by the emulator loop and the UI.
	quit   atomic.Bool
	paused atomic.Bool
	reset  atomic.Bool
}

// Launch powers the machine up and connects it to out and in. in may be
// nil. It doesn't start the emulation loop, call Run for that.
func Launch(rom []byte, cfg Config, out Output, in InputSource) (*Emulator, error) {
	m, err := spectrum.New(rom)
	if err != nil {
		return nil, fmt.Errorf("power up failed: %w", err)
	}

	// CPU execution trace setup.
	if cfg.TraceOut != nil {
		m.CPU.SetTraceOutput(cfg.TraceOut)
	}

	e := &Emulator{
		Machine: m,
		out:     out,
		in:      in,
		frames:  make(chan spectrum.Frame, 1),
		fast:    cfg.Machine.Fast,
	}
	m.ULA.SetFrameSink(e.frames)
	return e, nil
}

// RunOneFrame samples inputs, emulates one frame and outputs it.
func (e *Emulator) RunOneFrame() {
	if e.in != nil {
		joy := e.in.Update(&e.Machine.ULA.Keyboard)
		e.Machine.SetJoystick(joy)
	}
	e.Machine.RunFrame()

	select {
	case f := <-e.frames:
		e.out.EndFrame(f)
	default:
	}
}

// Run runs the emulation loop until the output is closed, Stop is called or
// ctx is cancelled.
func (e *Emulator) Run(ctx context.Context) error {
	defer e.out.Close()

	next := time.Now()
	for e.out.Poll() {
		if ctx.Err() != nil {
			break
		}
		// Handle pause.
		if e.isPaused() {
			// Don't burn cpu while paused.
			time.Sleep(100 * time.Millisecond)
			next = time.Now()
		} else {
			e.RunOneFrame()
			if !e.fast {
				next = next.Add(FrameDuration)
				if d := time.Until(next); d > 0 {
					time.Sleep(d)
				} else if d < -10*FrameDuration {
					// Too late, don't try to catch up.
					next = time.Now()
				}
			}
		}
		if e.shouldStop() {
			break
		}
		e.handleReset()
	}

	log.ModEmu.InfoZ("Emulation loop exited").Uint("frames", e.Machine.ULA.Frames()).End()
	return nil
}

// SetPause, Stop and Reset allow to control the emulator loop in a
// concurrent-safe way.

func (e *Emulator) SetPause(pause bool) { e.paused.CompareAndSwap(!pause, pause) }
func (e *Emulator) Reset()              { e.reset.Store(true) }
func (e *Emulator) Stop()               { e.quit.Store(true) }

// TogglePause pauses a running emulator, or resumes a paused one.
func (e *Emulator) TogglePause() {
	for {
		p := e.paused.Load()
		if e.paused.CompareAndSwap(p, !p) {
			return
		}
	}
}

func (e *Emulator) isPaused() bool {
	return e.paused.Load()
}

func (e *Emulator) shouldStop() bool {
	return e.quit.Load()
}

func (e *Emulator) handleReset() {
	if e.reset.CompareAndSwap(true, false) {
		log.ModEmu.InfoZ("Performing reset").End()
		e.Machine.Reset()
	}
}

// Screenshot returns the last frame shown.
func (e *Emulator) Screenshot() *image.RGBA {
	return e.out.Screenshot()
}
