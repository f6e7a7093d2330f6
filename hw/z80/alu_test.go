package z80

import "testing"

func TestAdd8Sub8Boundaries(t *testing.T) {
	tests := []struct {
		a, b    uint8
		add     uint8
		addF    Flags
		sub     uint8
		subF    Flags
		cpFlags Flags
	}{
		{a: 0x00, b: 0x00, add: 0x00, addF: 0x40, sub: 0x00, subF: 0x42, cpFlags: 0x42},
		{a: 0x7F, b: 0x01, add: 0x80, addF: 0x94, sub: 0x7E, subF: 0x2A, cpFlags: 0x02},
		{a: 0x80, b: 0xFF, add: 0x7F, addF: 0x2D, sub: 0x81, subF: 0x93, cpFlags: 0xBB},
		{a: 0xFF, b: 0xFF, add: 0xFE, addF: 0xB9, sub: 0x00, subF: 0x42, cpFlags: 0x6A},
	}
	for _, tt := range tests {
		res, f := add8(tt.a, tt.b, 0)
		if res != tt.add || f != tt.addF {
			t.Errorf("add8(%02X, %02X) = %02X %s, want %02X %s", tt.a, tt.b, res, f, tt.add, tt.addF)
		}
		res, f = sub8(tt.a, tt.b, 0)
		if res != tt.sub || f != tt.subF {
			t.Errorf("sub8(%02X, %02X) = %02X %s, want %02X %s", tt.a, tt.b, res, f, tt.sub, tt.subF)
		}
		if f := cp8(tt.a, tt.b); f != tt.cpFlags {
			t.Errorf("cp8(%02X, %02X) = %s, want %s", tt.a, tt.b, f, tt.cpFlags)
		}
	}
}

func TestAdcSbcCarryIn(t *testing.T) {
	res, f := add8(0x7F, 0x00, 1)
	if res != 0x80 || f != FlagS|FlagH|FlagPV {
		t.Errorf("adc 7F+00+1 = %02X %s", res, f)
	}
	res, f = sub8(0x80, 0x00, 1)
	if res != 0x7F || f != FlagY|FlagX|FlagH|FlagPV|FlagN {
		t.Errorf("sbc 80-00-1 = %02X %s", res, f)
	}
	res, f = add8(0xFF, 0x00, 1)
	if res != 0x00 || f != FlagZ|FlagH|FlagC {
		t.Errorf("adc FF+00+1 = %02X %s", res, f)
	}
}

func TestIncDec8(t *testing.T) {
	tests := []struct {
		name string
		fn   func(uint8, Flags) (uint8, Flags)
		v    uint8
		in   Flags
		want uint8
		f    Flags
	}{
		{"inc 7F", inc8, 0x7F, 0, 0x80, FlagS | FlagH | FlagPV},
		{"inc FF keeps C", inc8, 0xFF, FlagC, 0x00, FlagZ | FlagH | FlagC},
		{"inc 00", inc8, 0x00, FlagN, 0x01, 0},
		{"dec 80", dec8, 0x80, 0, 0x7F, FlagY | FlagH | FlagX | FlagPV | FlagN},
		{"dec 00", dec8, 0x00, FlagC, 0xFF, FlagS | FlagY | FlagH | FlagX | FlagN | FlagC},
		{"dec 01", dec8, 0x01, 0, 0x00, FlagZ | FlagN},
	}
	for _, tt := range tests {
		got, f := tt.fn(tt.v, tt.in)
		if got != tt.want || f != tt.f {
			t.Errorf("%s: got %02X %s, want %02X %s", tt.name, got, f, tt.want, tt.f)
		}
	}
}

func TestLogic8(t *testing.T) {
	if res, f := and8(0xF0, 0x0F); res != 0 || f != FlagZ|FlagH|FlagPV {
		t.Errorf("and8 = %02X %s", res, f)
	}
	if res, f := or8(0x80, 0x01); res != 0x81 || f != FlagS|FlagPV {
		t.Errorf("or8 = %02X %s", res, f)
	}
	if res, f := xor8(0xFF, 0xFE); res != 0x01 || f != 0 {
		t.Errorf("xor8 = %02X %s", res, f)
	}
}

func TestArith16(t *testing.T) {
	res, f := add16(0x0FFF, 0x0001, FlagS|FlagZ|FlagN)
	if res != 0x1000 || f != FlagS|FlagZ|FlagH {
		t.Errorf("add16 = %04X %s", res, f)
	}
	res, f = add16(0xFFFF, 0x0001, 0)
	if res != 0 || f != FlagH|FlagC {
		t.Errorf("add16 wrap = %04X %s", res, f)
	}
	res, f = adc16(0x7FFF, 0x0000, 1)
	if res != 0x8000 || f != FlagS|FlagH|FlagPV {
		t.Errorf("adc16 = %04X %s", res, f)
	}
	res, f = sbc16(0x0000, 0x0001, 0)
	if res != 0xFFFF || f != FlagS|FlagY|FlagH|FlagX|FlagN|FlagC {
		t.Errorf("sbc16 = %04X %s", res, f)
	}
	res, f = sbc16(0x1234, 0x1234, 0)
	if res != 0 || f != FlagZ|FlagN {
		t.Errorf("sbc16 equal = %04X %s", res, f)
	}
}

func TestDAA(t *testing.T) {
	tests := []struct {
		a, b uint8
		sub  bool
		want uint8
		c    bool
	}{
		{0x15, 0x27, false, 0x42, false},
		{0x99, 0x01, false, 0x00, true},
		{0x50, 0x50, false, 0x00, true},
		{0x42, 0x15, true, 0x27, false},
		{0x10, 0x01, true, 0x09, false},
		{0x00, 0x01, true, 0x99, true},
	}
	for _, tt := range tests {
		var res uint8
		var f Flags
		if tt.sub {
			res, f = sub8(tt.a, tt.b, 0)
		} else {
			res, f = add8(tt.a, tt.b, 0)
		}
		res, f = daa(res, f)
		if res != tt.want || f.Has(FlagC) != tt.c {
			t.Errorf("%02X %s %02X; DAA = %02X C=%t, want %02X C=%t", tt.a, map[bool]string{false: "+", true: "-"}[tt.sub], tt.b, res, f.Has(FlagC), tt.want, tt.c)
		}
	}
}

func TestShifts(t *testing.T) {
	tests := []struct {
		op   Op
		v    uint8
		cin  Flags
		want uint8
		c    bool
	}{
		{RLC, 0x81, 0, 0x03, true},
		{RRC, 0x01, 0, 0x80, true},
		{RL, 0x80, FlagC, 0x01, true},
		{RR, 0x01, FlagC, 0x80, true},
		{SLA, 0x81, 0, 0x02, true},
		{SRA, 0x81, 0, 0xC0, true},
		{SLL, 0x80, 0, 0x01, true},
		{SRL, 0x81, 0, 0x40, true},
		{RL, 0x40, 0, 0x80, false},
	}
	for _, tt := range tests {
		got, f := shift(tt.op, tt.v, tt.cin)
		if got != tt.want || f.Has(FlagC) != tt.c {
			t.Errorf("%s %02X = %02X C=%t, want %02X C=%t", tt.op, tt.v, got, f.Has(FlagC), tt.want, tt.c)
		}
		if f.Has(FlagZ) != (got == 0) {
			t.Errorf("%s %02X: Z=%t for result %02X", tt.op, tt.v, f.Has(FlagZ), got)
		}
	}

	// Accumulator rotates leave S, Z and PV alone.
	got, f := shiftA(RLCA, 0x80, FlagS|FlagZ|FlagPV|FlagH|FlagN)
	if got != 0x01 || f != FlagS|FlagZ|FlagPV|FlagC {
		t.Errorf("RLCA 80 = %02X %s", got, f)
	}
}

func TestBitFlags(t *testing.T) {
	if f := bit(7, 0x80, FlagC); f != FlagS|FlagH|FlagC {
		t.Errorf("BIT 7,$80 = %s", f)
	}
	if f := bit(0, 0xFE, 0); f != FlagZ|FlagPV|FlagH|FlagY|FlagX {
		t.Errorf("BIT 0,$FE = %s", f)
	}
}

func TestMiscAccFlags(t *testing.T) {
	if a, f := cpl(0x0F, FlagC); a != 0xF0 || f != FlagC|FlagH|FlagN|FlagY {
		t.Errorf("CPL = %02X %s", a, f)
	}
	if a, f := neg(0x80); a != 0x80 || f != FlagS|FlagPV|FlagN|FlagC {
		t.Errorf("NEG 80 = %02X %s", a, f)
	}
	if a, f := neg(0x00); a != 0x00 || f != FlagZ|FlagN {
		t.Errorf("NEG 00 = %02X %s", a, f)
	}
	if f := scf(0, FlagH|FlagN); f != FlagC {
		t.Errorf("SCF = %s", f)
	}
	if f := ccf(0, FlagC); f != FlagH {
		t.Errorf("CCF with carry = %s", f)
	}
	if f := ccf(0, 0); f != FlagC {
		t.Errorf("CCF without carry = %s", f)
	}
}

func TestFlagsString(t *testing.T) {
	tests := []struct {
		f    Flags
		want string
	}{
		{0x00, "sz5h3pnc"},
		{0xFF, "SZ5H3PNC"},
		{FlagS | FlagC, "Sz5h3pnC"},
		{FlagZ | FlagPV, "sZ5h3Pnc"},
	}
	for _, tt := range tests {
		if got := tt.f.String(); got != tt.want {
			t.Errorf("Flags(%02X).String() = %q, want %q", uint8(tt.f), got, tt.want)
		}
	}
}
