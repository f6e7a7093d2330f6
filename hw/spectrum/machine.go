package spectrum

import (
	"fmt"
	"io"

	"speccy/emu/log"
	"speccy/hw/hwio"
	"speccy/hw/snapshot"
	"speccy/hw/z80"
)

const (
	ROMSize  = 0x4000
	RAMStart = 0x4000
	RAMSize  = 0xC000

	kempstonPort = 0x1F
)

// Kempston joystick bits, active high.
const (
	JoyRight uint8 = 1 << iota
	JoyLeft
	JoyDown
	JoyUp
	JoyFire
)

// Machine is a ZX Spectrum 48K.
type Machine struct {
	CPU   *z80.CPU
	Mem   *hwio.Table
	Ports *hwio.Ports
	ULA   *ULA

	// Kempston joystick interface, on port 0x1F.
	Kempston hwio.Reg8

	rom [ROMSize]byte
	ram [RAMSize]byte
}

// New creates a powered up 48K machine running rom, a raw 16K image.
func New(rom []byte) (*Machine, error) {
	if len(rom) != ROMSize {
		return nil, fmt.Errorf("invalid ROM size %d, want %d", len(rom), ROMSize)
	}

	m := &Machine{
		Mem:   hwio.NewTable("mem"),
		Ports: hwio.NewPorts("io"),
		Kempston: hwio.Reg8{
			Name:   "kempston",
			RoMask: 0xFF, // writes are ignored
		},
	}
	copy(m.rom[:], rom)

	m.CPU = z80.NewCPU(m.Mem, m.Ports)
	m.ULA = newULA(m.CPU, m.ram[:DisplaySize])
	m.CPU.SetTicker(m.ULA)

	m.Mem.MapMem(0x0000, &hwio.Mem{
		Name:  "rom",
		Data:  m.rom[:],
		Flags: hwio.MemFlag8ReadOnly | hwio.MemFlagNoROLog,
	})
	m.Mem.MapMem(RAMStart, &hwio.Mem{
		Name:    "display",
		Data:    m.ram[:DisplaySize],
		WriteCb: m.ULA.displayWritten,
	})
	m.Mem.MapMem(RAMStart+DisplaySize, &hwio.Mem{
		Name: "ram",
		Data: m.ram[DisplaySize:],
	})

	m.Ports.Map(0x0001, 0x0000, "ula", m.ULA)
	m.Ports.Map(0x00FF, kempstonPort, "kempston", &m.Kempston)

	log.ModEmu.InfoZ("48K machine ready").End()
	return m, nil
}

// Reset performs a power-on reset. RAM is left as is, the ROM clears it.
func (m *Machine) Reset() {
	m.CPU.Reset()
	m.ULA.Reset()
}

// RunFrame runs the CPU until the end of the current frame.
func (m *Machine) RunFrame() {
	n := m.ULA.Frames()
	for m.ULA.Frames() == n {
		m.CPU.Step()
	}
}

// Load copies data into RAM at addr. Bytes falling into ROM are skipped.
func (m *Machine) Load(addr uint16, data []byte) {
	for i, b := range data {
		a := int(addr) + i
		if a > 0xFFFF {
			break
		}
		if a >= RAMStart {
			m.ram[a-RAMStart] = b
		}
	}
	m.ULA.dirty = true
}

// RAM returns the 48K of RAM, starting at 0x4000.
func (m *Machine) RAM() []byte { return m.ram[:] }

// MemoryMap lists the memory regions.
func (m *Machine) MemoryMap() []hwio.Region { return m.Mem.Regions() }

// SetJoystick sets the state of the Kempston joystick (Joy* bits).
func (m *Machine) SetJoystick(state uint8) { m.Kempston.Value = state & 0x1F }

// SaveState takes a snapshot of the machine.
func (m *Machine) SaveState() *snapshot.Spectrum {
	s := &snapshot.Spectrum{
		Version: snapshot.Version,
		CPU:     *m.CPU.SaveState(),
		Border:  m.ULA.Border(),
	}
	s.RAM = m.ram
	return s
}

// SetState restores a snapshot. The frame counter restarts at the current
// clock.
func (m *Machine) SetState(s *snapshot.Spectrum) error {
	if s.Version != snapshot.Version {
		return fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	m.ram = s.RAM
	m.CPU.SetState(&s.CPU)
	m.ULA.Reset()
	m.ULA.border = s.Border & 0x07
	return nil
}

// LoadSNA restores a .sna snapshot.
func (m *Machine) LoadSNA(r io.Reader) error {
	s, err := ReadSNA(r)
	if err != nil {
		return err
	}
	return m.SetState(s)
}

// SaveSNA writes the machine state in .sna format.
func (m *Machine) SaveSNA(w io.Writer) error {
	return WriteSNA(w, m.SaveState())
}
