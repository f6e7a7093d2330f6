package spectrum

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"speccy/hw/snapshot"
)

const (
	snaHeaderSize = 27
	snaRAMSize    = 0xC000
	snaSize       = snaHeaderSize + snaRAMSize
)

var ErrSNAStack = errors.New("sna: stack pointer outside of RAM")

// ReadSNA reads a 48K .sna snapshot. The format has no room for PC, which is
// popped from the stack saved in the image.
func ReadSNA(r io.Reader) (*snapshot.Spectrum, error) {
	buf := make([]byte, snaSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("sna: short image: %w", err)
	}

	le := binary.LittleEndian
	hdr := buf[:snaHeaderSize]
	s := &snapshot.Spectrum{Version: snapshot.Version}
	copy(s.RAM[:], buf[snaHeaderSize:])

	s.CPU = snapshot.CPU{
		I:    hdr[0],
		HL_:  le.Uint16(hdr[1:]),
		DE_:  le.Uint16(hdr[3:]),
		BC_:  le.Uint16(hdr[5:]),
		AF_:  le.Uint16(hdr[7:]),
		HL:   le.Uint16(hdr[9:]),
		DE:   le.Uint16(hdr[11:]),
		BC:   le.Uint16(hdr[13:]),
		IY:   le.Uint16(hdr[15:]),
		IX:   le.Uint16(hdr[17:]),
		IFF2: hdr[19]&0x04 != 0,
		R:    hdr[20],
		AF:   le.Uint16(hdr[21:]),
		SP:   le.Uint16(hdr[23:]),
		IM:   hdr[25] & 0x03,
	}
	s.CPU.IFF1 = s.CPU.IFF2
	s.Border = hdr[26] & 0x07

	sp := s.CPU.SP
	if sp < 0x4000 || sp == 0xFFFF {
		return nil, fmt.Errorf("%w: SP=%04X", ErrSNAStack, sp)
	}
	s.CPU.PC = le.Uint16(s.RAM[sp-0x4000:])
	s.CPU.SP += 2
	return s, nil
}

// WriteSNA writes s in .sna format. PC is pushed on the saved stack, s is
// left untouched.
func WriteSNA(w io.Writer, s *snapshot.Spectrum) error {
	sp := s.CPU.SP - 2
	if s.CPU.SP < 0x4002 {
		return fmt.Errorf("%w: SP=%04X", ErrSNAStack, s.CPU.SP)
	}

	buf := make([]byte, snaSize)
	le := binary.LittleEndian
	hdr := buf[:snaHeaderSize]
	c := &s.CPU
	hdr[0] = c.I
	le.PutUint16(hdr[1:], c.HL_)
	le.PutUint16(hdr[3:], c.DE_)
	le.PutUint16(hdr[5:], c.BC_)
	le.PutUint16(hdr[7:], c.AF_)
	le.PutUint16(hdr[9:], c.HL)
	le.PutUint16(hdr[11:], c.DE)
	le.PutUint16(hdr[13:], c.BC)
	le.PutUint16(hdr[15:], c.IY)
	le.PutUint16(hdr[17:], c.IX)
	if c.IFF2 {
		hdr[19] = 0x04
	}
	hdr[20] = c.R
	le.PutUint16(hdr[21:], c.AF)
	le.PutUint16(hdr[23:], sp)
	hdr[25] = c.IM
	hdr[26] = s.Border & 0x07

	ram := buf[snaHeaderSize:]
	copy(ram, s.RAM[:])
	le.PutUint16(ram[sp-0x4000:], c.PC)

	_, err := w.Write(buf)
	return err
}
