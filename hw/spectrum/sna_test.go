package spectrum

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"speccy/hw/snapshot"
)

func testSNAImage() []byte {
	hdr := []byte{
		0x3F,       // I
		0x22, 0x11, // HL'
		0x44, 0x33, // DE'
		0x66, 0x55, // BC'
		0x88, 0x77, // AF'
		0x02, 0x01, // HL
		0x04, 0x03, // DE
		0x06, 0x05, // BC
		0x3A, 0x5C, // IY
		0x10, 0x20, // IX
		0x04,       // IFF2
		0x7E,       // R
		0x44, 0xAA, // AF
		0xF0, 0xFF, // SP
		0x01, // IM
		0x05, // border
	}
	ram := make([]byte, 0xC000)
	ram[0xFFF0-0x4000] = 0x34
	ram[0xFFF1-0x4000] = 0x12
	ram[0] = 0xAB
	return append(hdr, ram...)
}

func TestReadSNA(t *testing.T) {
	s, err := ReadSNA(bytes.NewReader(testSNAImage()))
	if err != nil {
		t.Fatal(err)
	}

	want := snapshot.CPU{
		AF: 0xAA44, BC: 0x0506, DE: 0x0304, HL: 0x0102,
		AF_: 0x7788, BC_: 0x5566, DE_: 0x3344, HL_: 0x1122,
		IX: 0x2010, IY: 0x5C3A,
		SP: 0xFFF2, PC: 0x1234,
		I: 0x3F, R: 0x7E, IM: 1,
		IFF1: true, IFF2: true,
	}
	if diff := cmp.Diff(want, s.CPU); diff != "" {
		t.Errorf("cpu state mismatch (-want +got):\n%s", diff)
	}
	if s.Border != 5 {
		t.Errorf("border = %d, want 5", s.Border)
	}
	if s.RAM[0] != 0xAB {
		t.Errorf("RAM[0] = %02X, want AB", s.RAM[0])
	}
}

func TestWriteSNA(t *testing.T) {
	img := testSNAImage()
	s, err := ReadSNA(bytes.NewReader(img))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteSNA(&buf, s); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), img) {
		t.Errorf("written image differs from the original")
	}
	if s.CPU.SP != 0xFFF2 {
		t.Errorf("WriteSNA modified the snapshot, SP=%04X", s.CPU.SP)
	}
}

func TestReadSNAErrors(t *testing.T) {
	if _, err := ReadSNA(bytes.NewReader(make([]byte, 100))); err == nil {
		t.Errorf("short image: want an error")
	}

	img := testSNAImage()
	img[23], img[24] = 0x00, 0x10 // SP in ROM
	if _, err := ReadSNA(bytes.NewReader(img)); !errors.Is(err, ErrSNAStack) {
		t.Errorf("got %v, want ErrSNAStack", err)
	}
}

func TestMachineLoadSNA(t *testing.T) {
	m := newTestMachine(t, nil)
	if err := m.LoadSNA(bytes.NewReader(testSNAImage())); err != nil {
		t.Fatal(err)
	}
	if m.CPU.Regs.PC != 0x1234 || m.CPU.Regs.IM != 1 || !m.CPU.Regs.IFF1 {
		t.Errorf("unexpected cpu state %+v", m.CPU.Regs)
	}
	if m.ULA.Border() != 5 {
		t.Errorf("border = %d, want 5", m.ULA.Border())
	}
	if got := m.Mem.Peek8(0x4000); got != 0xAB {
		t.Errorf("RAM[4000] = %02X, want AB", got)
	}

	var buf bytes.Buffer
	if err := m.SaveSNA(&buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), testSNAImage()) {
		t.Errorf("saved image differs from the loaded one")
	}
}
