package z80

import (
	"strings"
	"testing"
)

func TestDisasmText(t *testing.T) {
	tests := []struct {
		pc   uint16
		code []byte
		want string
	}{
		{0, []byte{0x00}, "NOP"},
		{0, []byte{0x3E, 0x12}, "LD A,$12"},
		{0, []byte{0x21, 0x34, 0x12}, "LD HL,$1234"},
		{0, []byte{0x32, 0x00, 0x40}, "LD ($4000),A"},
		{0, []byte{0xED, 0x4B, 0x00, 0x58}, "LD BC,($5800)"},
		{0, []byte{0xDD, 0x7E, 0x05}, "LD A,(IX+$05)"},
		{0, []byte{0xFD, 0x77, 0xFF}, "LD (IY-$01),A"},
		{0, []byte{0xDD, 0x36, 0x80, 0x12}, "LD (IX-$80),$12"},
		{0, []byte{0xDD, 0x26, 0x01}, "LD IXH,$01"},
		{0x8000, []byte{0x18, 0xFE}, "JR $8000"},
		{0x8000, []byte{0x20, 0x10}, "JR NZ,$8012"},
		{0x0000, []byte{0x10, 0xFE}, "DJNZ $0000"},
		{0, []byte{0xC2, 0x00, 0x40}, "JP NZ,$4000"},
		{0, []byte{0xE9}, "JP (HL)"},
		{0, []byte{0xDD, 0xE9}, "JP (IX)"},
		{0, []byte{0xCD, 0x34, 0x12}, "CALL $1234"},
		{0, []byte{0xFC, 0x34, 0x12}, "CALL M,$1234"},
		{0, []byte{0xD8}, "RET C"},
		{0, []byte{0xFF}, "RST $38"},
		{0, []byte{0xC7}, "RST $00"},
		{0, []byte{0x08}, "EX AF,AF'"},
		{0, []byte{0xE3}, "EX (SP),HL"},
		{0, []byte{0xD3, 0xFE}, "OUT ($FE),A"},
		{0, []byte{0xDB, 0x1F}, "IN A,($1F)"},
		{0, []byte{0xED, 0x78}, "IN A,(C)"},
		{0, []byte{0xED, 0x71}, "OUT (C),0"},
		{0, []byte{0xED, 0x56}, "IM 1"},
		{0, []byte{0xED, 0xB0}, "LDIR"},
		{0, []byte{0xCB, 0x7E}, "BIT 7,(HL)"},
		{0, []byte{0xCB, 0xC7}, "SET 0,A"},
		{0, []byte{0xDD, 0xCB, 0x02, 0x06}, "RLC (IX+$02)"},
		{0, []byte{0xDD, 0xCB, 0x02, 0x00}, "RLC (IX+$02),B"},
		{0, []byte{0xFD, 0xCB, 0xFE, 0xC7}, "SET 0,(IY-$02),A"},
		{0, []byte{0xFD, 0xCB, 0x00, 0x46}, "BIT 0,(IY+$00)"},
		{0, []byte{0xED, 0x00}, "NOP*"},
		{0, []byte{0xDD, 0x00}, "NOP"},
		{0, []byte{0x76}, "HALT"},
	}
	for _, tt := range tests {
		_, dis := DisasmAt(Buffer{Origin: tt.pc, Data: tt.code}, tt.pc)
		if got := dis.Text(); got != tt.want {
			t.Errorf("% X: got %q, want %q", tt.code, got, tt.want)
		}
		if len(dis.Buf) != len(tt.code) {
			t.Errorf("% X: got bytes % X", tt.code, dis.Buf)
		}
	}
}

func TestDisasmLabels(t *testing.T) {
	labels := Labels{0x0D6B: "CLS", 0x5C3C: "TVFLAG"}

	tests := []struct {
		code []byte
		want string
	}{
		{[]byte{0xCD, 0x6B, 0x0D}, "CALL CLS"},
		{[]byte{0x32, 0x3C, 0x5C}, "LD (TVFLAG),A"},
		{[]byte{0xC3, 0x6C, 0x0D}, "JP $0D6C"},
	}
	for _, tt := range tests {
		_, dis := labels.DisasmAt(Buffer{Data: tt.code}, 0)
		if got := dis.Text(); got != tt.want {
			t.Errorf("% X: got %q, want %q", tt.code, got, tt.want)
		}
		// Labels are a per-call value, plain disassembly never sees them.
		_, plain := DisasmAt(Buffer{Data: tt.code}, 0)
		if strings.Contains(plain.Text(), "CLS") || strings.Contains(plain.Text(), "TVFLAG") {
			t.Errorf("% X: unlabelled disassembly %q uses a label", tt.code, plain.Text())
		}
	}
}

func TestDisasmNoSideEffects(t *testing.T) {
	cpu := newTestCPU(t, `
0000: ed b0        # LDIR
`)
	before := cpu.Regs
	for range 3 {
		if got := cpu.Disasm(0).Text(); got != "LDIR" {
			t.Fatalf("got %q, want LDIR", got)
		}
	}
	if cpu.Regs != before || cpu.Clock() != 0 {
		t.Errorf("disassembly changed cpu state")
	}
}

func TestDisasmOpString(t *testing.T) {
	tests := []struct {
		op   DisasmOp
		want string
	}{
		{
			op:   DisasmOp{PC: 0x8000, Buf: []byte{0x00}, Opcode: "NOP"},
			want: "8000  00          NOP",
		},
		{
			op:   DisasmOp{PC: 0x0D6B, Buf: []byte{0xDD, 0xCB, 0x02, 0x06}, Opcode: "RLC", Oper: "(IX+$02)"},
			want: "0D6B  DD CB 02 06 RLC (IX+$02)",
		},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func BenchmarkDisasmOpString(b *testing.B) {
	const want = `C000  CD 34 12    CALL $1234                    `

	op := DisasmOp{
		Opcode: "CALL",
		Oper:   "$1234",
		Buf:    []byte{0xcd, 0x34, 0x12},
		PC:     0xC000,
	}

	var opbytes []byte
	for range b.N {
		opbytes = op.Bytes()
	}

	if string(opbytes) != want {
		b.Fatalf("\ngot:  \"%s\"\nwant: \"%s\"\n", string(opbytes), want)
	}
}
