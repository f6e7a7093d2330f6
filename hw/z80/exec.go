package z80

import (
	"speccy/emu/log"
)

func (c *CPU) badOperand(in *Instr, o *Operand) {
	log.ModCPU.PanicZ("unsupported operand").
		Stringer("op", in.Op).
		Int("kind", int(o.Kind)).
		Stringer("reg", o.Reg).
		Hex16("addr", in.Addr).
		End()
}

func is16(o *Operand) bool {
	return o.Kind == KindReg16 || o.Kind == KindImm16
}

// ea returns the effective address of a memory operand.
func (c *CPU) ea(in *Instr, o *Operand) uint16 {
	switch o.Kind {
	case KindInd:
		return c.Regs.Get16(o.Reg)
	case KindIdx:
		return c.Regs.Get16(o.Reg) + uint16(int16(o.Disp))
	case KindAbs:
		return o.Val
	}
	c.badOperand(in, o)
	return 0
}

func (c *CPU) get8(in *Instr, o *Operand) uint8 {
	switch o.Kind {
	case KindReg8:
		return c.Regs.Get8(o.Reg)
	case KindImm8, KindNum:
		return uint8(o.Val)
	case KindInd, KindIdx, KindAbs:
		return c.Read8(c.ea(in, o))
	}
	c.badOperand(in, o)
	return 0
}

func (c *CPU) set8(in *Instr, o *Operand, v uint8) {
	switch o.Kind {
	case KindReg8:
		c.Regs.Set8(o.Reg, v)
	case KindInd, KindIdx, KindAbs:
		c.Write8(c.ea(in, o), v)
	default:
		c.badOperand(in, o)
	}
}

func (c *CPU) get16(in *Instr, o *Operand) uint16 {
	switch o.Kind {
	case KindReg16:
		return c.Regs.Get16(o.Reg)
	case KindImm16:
		return o.Val
	case KindInd, KindAbs:
		return c.Read16(c.ea(in, o))
	}
	c.badOperand(in, o)
	return 0
}

func (c *CPU) set16(in *Instr, o *Operand, v uint16) {
	switch o.Kind {
	case KindReg16:
		c.Regs.Set16(o.Reg, v)
	case KindInd, KindAbs:
		c.Write16(c.ea(in, o), v)
	default:
		c.badOperand(in, o)
	}
}

func (c *CPU) carry() uint8 {
	return c.Regs.F().bit(FlagC)
}

// execute runs a decoded instruction whose bytes have already been consumed
// (PC points to the next instruction). It returns the T-states spent.
func (c *CPU) execute(in *Instr) int {
	r := &c.Regs
	a0, a1 := &in.Args[0], &in.Args[1]
	cycles := int(in.Cycles)
	taken := int(in.Taken)

	switch in.Op {
	case NOP:

	case LD:
		if is16(a0) || is16(a1) {
			c.set16(in, a0, c.get16(in, a1))
			break
		}
		v := c.get8(in, a1)
		c.set8(in, a0, v)
		if a1.Kind == KindReg8 && (a1.Reg == RegI || a1.Reg == RegR) {
			r.SetF(r.F()&FlagC | szxyTable[v] | flagIf(r.IFF2, FlagPV))
		}

	case PUSH:
		c.push16(c.get16(in, a0))
	case POP:
		c.set16(in, a0, c.pop16())

	case EX:
		switch {
		case a1.Kind == KindAFAlt:
			r.ExAF()
		case a0.Kind == KindInd:
			v := c.Read16(r.SP)
			c.Write16(r.SP, c.get16(in, a1))
			c.set16(in, a1, v)
		default:
			de := r.DE()
			r.SetDE(r.HL())
			r.SetHL(de)
		}
	case EXX:
		r.Exx()

	case LDI, LDD, LDIR, LDDR:
		if c.blockLD(in.Op) {
			cycles = taken
		}
	case CPI, CPD, CPIR, CPDR:
		if c.blockCP(in.Op) {
			cycles = taken
		}
	case INI, IND, INIR, INDR:
		if c.blockIN(in.Op) {
			cycles = taken
		}
	case OUTI, OUTD, OTIR, OTDR:
		if c.blockOUT(in.Op) {
			cycles = taken
		}

	case ADD:
		if a0.Kind == KindReg16 {
			v, f := add16(c.get16(in, a0), c.get16(in, a1), r.F())
			c.set16(in, a0, v)
			r.SetF(f)
			break
		}
		v, f := add8(r.A(), c.get8(in, a1), 0)
		r.SetA(v)
		r.SetF(f)
	case ADC:
		if a0.Kind == KindReg16 {
			v, f := adc16(r.HL(), c.get16(in, a1), c.carry())
			r.SetHL(v)
			r.SetF(f)
			break
		}
		v, f := add8(r.A(), c.get8(in, a1), c.carry())
		r.SetA(v)
		r.SetF(f)
	case SUB:
		v, f := sub8(r.A(), c.get8(in, a0), 0)
		r.SetA(v)
		r.SetF(f)
	case SBC:
		if a0.Kind == KindReg16 {
			v, f := sbc16(r.HL(), c.get16(in, a1), c.carry())
			r.SetHL(v)
			r.SetF(f)
			break
		}
		v, f := sub8(r.A(), c.get8(in, a1), c.carry())
		r.SetA(v)
		r.SetF(f)
	case AND:
		v, f := and8(r.A(), c.get8(in, a0))
		r.SetA(v)
		r.SetF(f)
	case XOR:
		v, f := xor8(r.A(), c.get8(in, a0))
		r.SetA(v)
		r.SetF(f)
	case OR:
		v, f := or8(r.A(), c.get8(in, a0))
		r.SetA(v)
		r.SetF(f)
	case CP:
		r.SetF(cp8(r.A(), c.get8(in, a0)))

	case INC:
		if a0.Kind == KindReg16 {
			r.Set16(a0.Reg, r.Get16(a0.Reg)+1)
			break
		}
		v, f := inc8(c.get8(in, a0), r.F())
		c.set8(in, a0, v)
		r.SetF(f)
	case DEC:
		if a0.Kind == KindReg16 {
			r.Set16(a0.Reg, r.Get16(a0.Reg)-1)
			break
		}
		v, f := dec8(c.get8(in, a0), r.F())
		c.set8(in, a0, v)
		r.SetF(f)

	case DAA:
		v, f := daa(r.A(), r.F())
		r.SetA(v)
		r.SetF(f)
	case CPL:
		v, f := cpl(r.A(), r.F())
		r.SetA(v)
		r.SetF(f)
	case NEG:
		v, f := neg(r.A())
		r.SetA(v)
		r.SetF(f)
	case SCF:
		r.SetF(scf(r.A(), r.F()))
	case CCF:
		r.SetF(ccf(r.A(), r.F()))

	case HALT:
		c.halted = true
	case DI:
		r.IFF1, r.IFF2 = false, false
	case EI:
		r.IFF1, r.IFF2 = true, true
		c.eiDelay = true
	case IM:
		r.IM = uint8(a0.Val)

	case RLCA, RRCA, RLA, RRA:
		v, f := shiftA(in.Op, r.A(), r.F())
		r.SetA(v)
		r.SetF(f)
	case RLC, RRC, RL, RR, SLA, SRA, SLL, SRL:
		v, f := shift(in.Op, c.get8(in, a0), r.F())
		c.set8(in, a0, v)
		if in.Copy != RegNone {
			r.Set8(in.Copy, v)
		}
		r.SetF(f)
	case RLD:
		v := c.Read8(r.HL())
		a := r.A()
		c.Write8(r.HL(), v<<4|a&0x0F)
		a = a&0xF0 | v>>4
		r.SetA(a)
		r.SetF(r.F()&FlagC | szpxyTable[a])
	case RRD:
		v := c.Read8(r.HL())
		a := r.A()
		c.Write8(r.HL(), a<<4|v>>4)
		a = a&0xF0 | v&0x0F
		r.SetA(a)
		r.SetF(r.F()&FlagC | szpxyTable[a])

	case BIT:
		r.SetF(bit(uint8(a0.Val), c.get8(in, a1), r.F()))
	case SET, RES:
		v := c.get8(in, a1)
		if in.Op == SET {
			v |= 1 << a0.Val
		} else {
			v &^= 1 << a0.Val
		}
		c.set8(in, a1, v)
		if in.Copy != RegNone {
			r.Set8(in.Copy, v)
		}

	case JP:
		switch a0.Kind {
		case KindCond:
			if a0.Cond.Eval(r.F()) {
				r.PC = a1.Val
			}
		case KindInd:
			r.PC = r.Get16(a0.Reg)
		default:
			r.PC = a0.Val
		}
	case JR:
		if a0.Kind != KindCond {
			r.PC = a0.Val
			break
		}
		if a0.Cond.Eval(r.F()) {
			r.PC = a1.Val
			cycles = taken
		}
	case DJNZ:
		b := r.B() - 1
		r.SetB(b)
		if b != 0 {
			r.PC = a0.Val
			cycles = taken
		}
	case CALL:
		target := a0.Val
		if a0.Kind == KindCond {
			if !a0.Cond.Eval(r.F()) {
				break
			}
			target = a1.Val
			cycles = taken
		}
		c.call(in.Addr, target)
	case RST:
		c.call(in.Addr, a0.Val)
	case RET:
		if a0.Kind == KindCond {
			if !a0.Cond.Eval(r.F()) {
				break
			}
			cycles = taken
		}
		c.ret()
	case RETI, RETN:
		r.IFF1 = r.IFF2
		c.ret()

	case IN:
		switch {
		case a1.Kind == KindPortImm:
			r.SetA(c.In(uint16(r.A())<<8 | a1.Val))
		case a0.Kind == KindPortC:
			r.SetF(r.F()&FlagC | szpxyTable[c.In(r.BC())])
		default:
			v := c.In(r.BC())
			r.Set8(a0.Reg, v)
			r.SetF(r.F()&FlagC | szpxyTable[v])
		}
	case OUT:
		if a0.Kind == KindPortImm {
			c.Out(uint16(r.A())<<8|a0.Val, r.A())
			break
		}
		c.Out(r.BC(), c.get8(in, a1))

	default:
		log.ModCPU.PanicZ("unsupported instruction").
			Int("op", int(in.Op)).
			Hex16("addr", in.Addr).
			End()
	}
	return cycles
}

func (c *CPU) call(src, target uint16) {
	ret := c.Regs.PC
	c.push16(ret)
	c.Regs.PC = target
	c.dbg.Call(src, target, ret)
}

func (c *CPU) ret() {
	c.Regs.PC = c.pop16()
	c.dbg.Return(c.Regs.PC)
}

// blockLD runs LDI, LDD, LDIR or LDDR and reports whether it loops.
func (c *CPU) blockLD(op Op) bool {
	r := &c.Regs
	v := c.Read8(r.HL())
	c.Write8(r.DE(), v)

	step := uint16(1)
	if op == LDD || op == LDDR {
		step = 0xFFFF
	}
	r.SetHL(r.HL() + step)
	r.SetDE(r.DE() + step)
	bc := r.BC() - 1
	r.SetBC(bc)

	n := v + r.A()
	f := r.F()&(FlagS|FlagZ|FlagC) | flagIf(bc != 0, FlagPV)
	f |= Flags(n)&FlagX | Flags(n<<4)&FlagY
	r.SetF(f)

	if (op == LDIR || op == LDDR) && bc != 0 {
		r.PC -= 2
		return true
	}
	return false
}

// blockCP runs CPI, CPD, CPIR or CPDR and reports whether it loops.
func (c *CPU) blockCP(op Op) bool {
	r := &c.Regs
	v := c.Read8(r.HL())
	res, sf := sub8(r.A(), v, 0)

	step := uint16(1)
	if op == CPD || op == CPDR {
		step = 0xFFFF
	}
	r.SetHL(r.HL() + step)
	bc := r.BC() - 1
	r.SetBC(bc)

	n := res - sf.bit(FlagH)
	f := r.F()&FlagC | sf&(FlagS|FlagZ|FlagH) | FlagN | flagIf(bc != 0, FlagPV)
	f |= Flags(n)&FlagX | Flags(n<<4)&FlagY
	r.SetF(f)

	if (op == CPIR || op == CPDR) && bc != 0 && sf&FlagZ == 0 {
		r.PC -= 2
		return true
	}
	return false
}

// blockIN runs INI, IND, INIR or INDR and reports whether it loops.
func (c *CPU) blockIN(op Op) bool {
	r := &c.Regs
	v := c.In(r.BC())
	c.Write8(r.HL(), v)

	step := uint16(1)
	if op == IND || op == INDR {
		step = 0xFFFF
	}
	r.SetHL(r.HL() + step)
	b := r.B() - 1
	r.SetB(b)
	r.SetF(r.F()&FlagC | szxyTable[b] | FlagN)

	if (op == INIR || op == INDR) && b != 0 {
		r.PC -= 2
		return true
	}
	return false
}

// blockOUT runs OUTI, OUTD, OTIR or OTDR and reports whether it loops. B is
// decremented before it is put on the address bus.
func (c *CPU) blockOUT(op Op) bool {
	r := &c.Regs
	v := c.Read8(r.HL())
	b := r.B() - 1
	r.SetB(b)
	c.Out(r.BC(), v)

	step := uint16(1)
	if op == OUTD || op == OTDR {
		step = 0xFFFF
	}
	r.SetHL(r.HL() + step)
	r.SetF(r.F()&FlagC | szxyTable[b] | FlagN)

	if (op == OTIR || op == OTDR) && b != 0 {
		r.PC -= 2
		return true
	}
	return false
}
