package spectrum

import (
	"speccy/emu/log"
	"speccy/hw/z80"
)

const (
	// FrameCycles is the number of T-states in a 50Hz frame.
	FrameCycles = 69888

	// The ULA holds INT low for this many T-states at the start of a frame.
	intCycles = 32

	flashFrames = 16
)

// A FrameSink receives frames as they complete. Sends never block: a frame
// the sink isn't ready for is dropped.
type FrameSink chan<- Frame

// ULA generates the frame interrupt, serves the keyboard and border port and
// captures the display at the end of each frame.
type ULA struct {
	cpu     *z80.CPU
	display []byte // the DisplaySize first bytes of RAM
	dirty   bool

	Keyboard Keyboard
	border   uint8

	frameStart int64
	frames     uint64
	flash      bool

	last Frame
	sink FrameSink
}

func newULA(cpu *z80.CPU, display []byte) *ULA {
	u := &ULA{cpu: cpu, display: display}
	u.Reset()
	return u
}

func (u *ULA) Reset() {
	u.frameStart = u.cpu.Clock()
	u.frames = 0
	u.flash = false
	u.border = 7
	u.dirty = true
	u.cpu.SetINT(true, 0xFF)
}

// SetFrameSink sets the channel receiving completed frames, nil disables it.
func (u *ULA) SetFrameSink(s FrameSink) { u.sink = s }

// Tick implements z80.Ticker.
func (u *ULA) Tick(clock int64) {
	for clock-u.frameStart >= FrameCycles {
		u.frameStart += FrameCycles
		u.endFrame()
	}
	u.cpu.SetINT(clock-u.frameStart < intCycles, 0xFF)
}

// Frames returns the number of frames completed since reset.
func (u *ULA) Frames() uint64 { return u.frames }

// Border returns the current border colour.
func (u *ULA) Border() uint8 { return u.border }

// LastFrame returns the last completed frame.
func (u *ULA) LastFrame() *Frame { return &u.last }

// FramePos returns the number of T-states elapsed in the current frame.
func (u *ULA) FramePos() int64 { return u.cpu.Clock() - u.frameStart }

func (u *ULA) endFrame() {
	u.frames++
	if u.frames%flashFrames == 0 {
		u.flash = !u.flash
	}

	if u.dirty {
		copy(u.last.Display[:], u.display)
		u.dirty = false
	}
	u.last.Border = u.border
	u.last.Flash = u.flash
	u.last.Number = u.frames

	if u.sink != nil {
		select {
		case u.sink <- u.last:
		default:
			log.ModULA.DebugZ("frame dropped").Uint("frame", u.frames).End()
		}
	}
}

func (u *ULA) displayWritten(addr uint16, val uint8) { u.dirty = true }

// Read8 reads the keyboard. Bits 5 to 7 always read 1, there's no tape
// connected to EAR.
func (u *ULA) Read8(port uint16, peek bool) uint8 {
	return 0xE0 | u.Keyboard.Read(uint8(port>>8))
}

// Write8 sets the border colour from bits 0-2. MIC and speaker bits are
// ignored.
func (u *ULA) Write8(port uint16, val uint8) {
	if b := val & 0x07; b != u.border {
		log.ModULA.DebugZ("border").Hex8("color", b).End()
		u.border = b
	}
}
