package emu

import (
	"image"
	"sync"

	"speccy/hw/spectrum"
)

// Headless is an Output without a window. It keeps the last frame and
// optionally ends emulation after a number of frames.
type Headless struct {
	// MaxFrames is the number of frames after which Poll returns false.
	// Zero means forever.
	MaxFrames uint64

	mu     sync.Mutex
	frames uint64
	last   spectrum.Frame
}

func (h *Headless) EndFrame(f spectrum.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = f
	h.frames++
}

func (h *Headless) Poll() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.MaxFrames == 0 || h.frames < h.MaxFrames
}

func (h *Headless) Close() {}

// Frames returns the number of frames received.
func (h *Headless) Frames() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}

func (h *Headless) Screenshot() *image.RGBA {
	h.mu.Lock()
	f := h.last
	h.mu.Unlock()
	return f.Image()
}
