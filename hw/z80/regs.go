package z80

import (
	"fmt"
	"strings"
)

// Reg names a CPU register, 8 or 16 bits wide.
type Reg uint8

const (
	RegNone Reg = iota

	// 8-bit
	RegA
	RegF
	RegB
	RegC
	RegD
	RegE
	RegH
	RegL
	RegI
	RegR
	RegIXH
	RegIXL
	RegIYH
	RegIYL

	// 16-bit
	RegAF
	RegBC
	RegDE
	RegHL
	RegIX
	RegIY
	RegSP
	RegPC
)

var regNames = [...]string{
	RegNone: "", RegA: "A", RegF: "F", RegB: "B", RegC: "C", RegD: "D",
	RegE: "E", RegH: "H", RegL: "L", RegI: "I", RegR: "R",
	RegIXH: "IXH", RegIXL: "IXL", RegIYH: "IYH", RegIYL: "IYL",
	RegAF: "AF", RegBC: "BC", RegDE: "DE", RegHL: "HL", RegIX: "IX",
	RegIY: "IY", RegSP: "SP", RegPC: "PC",
}

func (r Reg) String() string {
	if int(r) < len(regNames) {
		return regNames[r]
	}
	return fmt.Sprintf("Reg(%d)", r)
}

// Is16 reports whether r is a 16-bit register.
func (r Reg) Is16() bool { return r >= RegAF }

// RegByName returns the register with the given name, case insensitive.
func RegByName(name string) (Reg, bool) {
	name = strings.ToUpper(name)
	for r, s := range regNames {
		if r != 0 && s == name {
			return Reg(r), true
		}
	}
	return RegNone, false
}

type afPair struct{ a, f uint8 }

type gpBank struct{ b, c, d, e, h, l uint8 }

// RegisterFile holds the complete programmer visible state of the Z80.
//
// AF and BC/DE/HL each exist twice. EX AF,AF' and EXX flip which copy is
// visible, the contents of the banks never move. A RegisterFile is a plain
// value, copying it takes a snapshot.
type RegisterFile struct {
	af    [2]afPair
	gp    [2]gpBank
	afSel uint8
	gpSel uint8

	IX, IY uint16
	SP, PC uint16
	I, R   uint8
	IFF1   bool
	IFF2   bool
	IM     uint8
}

func (r *RegisterFile) A() uint8       { return r.af[r.afSel].a }
func (r *RegisterFile) SetA(v uint8)   { r.af[r.afSel].a = v }
func (r *RegisterFile) F() Flags       { return Flags(r.af[r.afSel].f) }
func (r *RegisterFile) SetF(f Flags)   { r.af[r.afSel].f = uint8(f) }
func (r *RegisterFile) B() uint8       { return r.gp[r.gpSel].b }
func (r *RegisterFile) SetB(v uint8)   { r.gp[r.gpSel].b = v }
func (r *RegisterFile) C() uint8       { return r.gp[r.gpSel].c }
func (r *RegisterFile) SetC(v uint8)   { r.gp[r.gpSel].c = v }
func (r *RegisterFile) AF() uint16     { return uint16(r.A())<<8 | uint16(r.F()) }
func (r *RegisterFile) BC() uint16     { g := &r.gp[r.gpSel]; return uint16(g.b)<<8 | uint16(g.c) }
func (r *RegisterFile) DE() uint16     { g := &r.gp[r.gpSel]; return uint16(g.d)<<8 | uint16(g.e) }
func (r *RegisterFile) HL() uint16     { g := &r.gp[r.gpSel]; return uint16(g.h)<<8 | uint16(g.l) }
func (r *RegisterFile) SetAF(v uint16) { r.af[r.afSel] = afPair{uint8(v >> 8), uint8(v)} }
func (r *RegisterFile) SetBC(v uint16) { g := &r.gp[r.gpSel]; g.b, g.c = uint8(v>>8), uint8(v) }
func (r *RegisterFile) SetDE(v uint16) { g := &r.gp[r.gpSel]; g.d, g.e = uint8(v>>8), uint8(v) }
func (r *RegisterFile) SetHL(v uint16) { g := &r.gp[r.gpSel]; g.h, g.l = uint8(v>>8), uint8(v) }

// ExAF swaps AF with AF'.
func (r *RegisterFile) ExAF() { r.afSel ^= 1 }

// Exx swaps BC, DE and HL with their shadow copies.
func (r *RegisterFile) Exx() { r.gpSel ^= 1 }

// IncR increments the memory refresh counter. Bit 7 is left untouched.
func (r *RegisterFile) IncR(n uint8) {
	r.R = r.R&0x80 | (r.R+n)&0x7F
}

// Get8 returns the value of an 8-bit register.
func (r *RegisterFile) Get8(reg Reg) uint8 {
	g := &r.gp[r.gpSel]
	switch reg {
	case RegA:
		return r.af[r.afSel].a
	case RegF:
		return r.af[r.afSel].f
	case RegB:
		return g.b
	case RegC:
		return g.c
	case RegD:
		return g.d
	case RegE:
		return g.e
	case RegH:
		return g.h
	case RegL:
		return g.l
	case RegI:
		return r.I
	case RegR:
		return r.R
	case RegIXH:
		return uint8(r.IX >> 8)
	case RegIXL:
		return uint8(r.IX)
	case RegIYH:
		return uint8(r.IY >> 8)
	case RegIYL:
		return uint8(r.IY)
	}
	panic(fmt.Sprintf("z80: Get8 on %v", reg))
}

// Set8 sets the value of an 8-bit register.
func (r *RegisterFile) Set8(reg Reg, v uint8) {
	g := &r.gp[r.gpSel]
	switch reg {
	case RegA:
		r.af[r.afSel].a = v
	case RegF:
		r.af[r.afSel].f = v
	case RegB:
		g.b = v
	case RegC:
		g.c = v
	case RegD:
		g.d = v
	case RegE:
		g.e = v
	case RegH:
		g.h = v
	case RegL:
		g.l = v
	case RegI:
		r.I = v
	case RegR:
		r.R = v
	case RegIXH:
		r.IX = r.IX&0x00FF | uint16(v)<<8
	case RegIXL:
		r.IX = r.IX&0xFF00 | uint16(v)
	case RegIYH:
		r.IY = r.IY&0x00FF | uint16(v)<<8
	case RegIYL:
		r.IY = r.IY&0xFF00 | uint16(v)
	default:
		panic(fmt.Sprintf("z80: Set8 on %v", reg))
	}
}

// Get16 returns the value of a 16-bit register.
func (r *RegisterFile) Get16(reg Reg) uint16 {
	switch reg {
	case RegAF:
		return r.AF()
	case RegBC:
		return r.BC()
	case RegDE:
		return r.DE()
	case RegHL:
		return r.HL()
	case RegIX:
		return r.IX
	case RegIY:
		return r.IY
	case RegSP:
		return r.SP
	case RegPC:
		return r.PC
	}
	panic(fmt.Sprintf("z80: Get16 on %v", reg))
}

// Set16 sets the value of a 16-bit register.
func (r *RegisterFile) Set16(reg Reg, v uint16) {
	switch reg {
	case RegAF:
		r.SetAF(v)
	case RegBC:
		r.SetBC(v)
	case RegDE:
		r.SetDE(v)
	case RegHL:
		r.SetHL(v)
	case RegIX:
		r.IX = v
	case RegIY:
		r.IY = v
	case RegSP:
		r.SP = v
	case RegPC:
		r.PC = v
	default:
		panic(fmt.Sprintf("z80: Set16 on %v", reg))
	}
}

// Get returns the value of any register, widened to 16 bits.
func (r *RegisterFile) Get(reg Reg) uint16 {
	if reg.Is16() {
		return r.Get16(reg)
	}
	return uint16(r.Get8(reg))
}

// Alt returns the value of the hidden copy of AF, BC, DE or HL.
func (r *RegisterFile) Alt(reg Reg) uint16 {
	af := r.af[r.afSel^1]
	g := r.gp[r.gpSel^1]
	switch reg {
	case RegAF:
		return uint16(af.a)<<8 | uint16(af.f)
	case RegBC:
		return uint16(g.b)<<8 | uint16(g.c)
	case RegDE:
		return uint16(g.d)<<8 | uint16(g.e)
	case RegHL:
		return uint16(g.h)<<8 | uint16(g.l)
	}
	panic(fmt.Sprintf("z80: no alternate %v register", reg))
}

// SetAlt sets the hidden copy of AF, BC, DE or HL.
func (r *RegisterFile) SetAlt(reg Reg, v uint16) {
	af := &r.af[r.afSel^1]
	g := &r.gp[r.gpSel^1]
	hi, lo := uint8(v>>8), uint8(v)
	switch reg {
	case RegAF:
		af.a, af.f = hi, lo
	case RegBC:
		g.b, g.c = hi, lo
	case RegDE:
		g.d, g.e = hi, lo
	case RegHL:
		g.h, g.l = hi, lo
	default:
		panic(fmt.Sprintf("z80: no alternate %v register", reg))
	}
}

func (r *RegisterFile) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "AF:%04X BC:%04X DE:%04X HL:%04X IX:%04X IY:%04X\n",
		r.AF(), r.BC(), r.DE(), r.HL(), r.IX, r.IY)
	fmt.Fprintf(&sb, "AF'%04X BC'%04X DE'%04X HL'%04X SP:%04X PC:%04X\n",
		r.Alt(RegAF), r.Alt(RegBC), r.Alt(RegDE), r.Alt(RegHL), r.SP, r.PC)
	fmt.Fprintf(&sb, "I:%02X R:%02X IM:%d IFF1:%t IFF2:%t F:%s",
		r.I, r.R, r.IM, r.IFF1, r.IFF2, r.F())
	return sb.String()
}
