package z80

// ByteSource is what the decoder reads instruction bytes from. Reads must not
// have side effects.
type ByteSource interface {
	Peek8(addr uint16) uint8
}

// maxPrefixes is the longest run of DD/FD prefixes decoded as a single
// instruction. Longer runs are split into prefix-only NOPs.
const maxPrefixes = 16

var (
	tblR   = [8]Reg{RegB, RegC, RegD, RegE, RegH, RegL, RegNone, RegA}
	tblRP  = [4]Reg{RegBC, RegDE, RegHL, RegSP}
	tblRP2 = [4]Reg{RegBC, RegDE, RegHL, RegAF}
	tblALU = [8]Op{ADD, ADC, SUB, SBC, AND, XOR, OR, CP}
	tblROT = [8]Op{RLC, RRC, RL, RR, SLA, SRA, SLL, SRL}
	tblAcc = [8]Op{RLCA, RRCA, RLA, RRA, DAA, CPL, SCF, CCF}
	tblIM  = [8]uint16{0, 0, 1, 2, 0, 0, 1, 2}
	tblBLI = [4][4]Op{
		{LDI, CPI, INI, OUTI},
		{LDD, CPD, IND, OUTD},
		{LDIR, CPIR, INIR, OTIR},
		{LDDR, CPDR, INDR, OTDR},
	}
)

type decoder struct {
	src ByteSource
	pc  uint16
	in  Instr

	idx     Reg  // RegHL, or RegIX/RegIY under a prefix
	usedIdx bool // the prefix changed the meaning of the instruction
	idxMem  bool // an (IX+d) operand was decoded
}

// Decode decodes the instruction at pc. Every byte sequence decodes to some
// instruction: unassigned opcodes become NOPs.
func Decode(src ByteSource, pc uint16) Instr {
	d := decoder{src: src, pc: pc, idx: RegHL}
	d.in.Addr = pc
	d.decode()
	d.in.Len = uint8(d.pc - pc)
	if !d.usedIdx {
		d.in.Prefix = 0
	}
	return d.in
}

func (d *decoder) fetch() uint8 {
	v := d.src.Peek8(d.pc)
	d.pc++
	return v
}

func (d *decoder) fetch16() uint16 {
	lo := d.fetch()
	hi := d.fetch()
	return uint16(hi)<<8 | uint16(lo)
}

func (d *decoder) rel() Operand {
	disp := int8(d.fetch())
	return rel(d.pc + uint16(int16(disp)))
}

func (d *decoder) set(op Op, cycles uint8, args ...Operand) {
	d.in.Op = op
	d.in.Cycles = cycles
	copy(d.in.Args[:], args)
}

func (d *decoder) decode() {
	npref := 0
	for {
		b := d.src.Peek8(d.pc)
		if b != 0xDD && b != 0xFD {
			break
		}
		if npref == maxPrefixes {
			d.in.Op = NOP
			d.in.Cycles = uint8(4 * npref)
			d.in.Fetches = uint8(npref)
			return
		}
		d.pc++
		npref++
		d.in.Prefix = b
		d.idx = RegIX
		if b == 0xFD {
			d.idx = RegIY
		}
	}

	op := d.fetch()
	d.in.Fetches = uint8(npref) + 1
	switch {
	case op == 0xCB && npref > 0:
		d.decodeIndexedCB()
	case op == 0xCB:
		d.in.Fetches++
		d.decodeCB()
	case op == 0xED:
		// Prefixes before ED are wasted.
		d.in.Fetches++
		d.idx = RegHL
		d.decodeED()
	default:
		d.decodeMain(op)
	}

	d.in.Cycles += uint8(4 * npref)
	if d.in.Taken != 0 {
		d.in.Taken += uint8(4 * npref)
	}
}

// r returns the operand for register index i. With a prefix, H and L become
// the index register halves unless the instruction also has a memory operand,
// and (HL) becomes (IX+d).
func (d *decoder) r(i uint8, hasMem bool) Operand {
	switch {
	case i == 6 && d.idx == RegHL:
		return ind(RegHL)
	case i == 6:
		d.usedIdx, d.idxMem = true, true
		return idx(d.idx, int8(d.fetch()))
	case (i == 4 || i == 5) && d.idx != RegHL && !hasMem:
		d.usedIdx = true
		if d.idx == RegIX {
			return reg8([2]Reg{RegIXH, RegIXL}[i-4])
		}
		return reg8([2]Reg{RegIYH, RegIYL}[i-4])
	}
	return reg8(tblR[i])
}

func (d *decoder) hl() Reg {
	if d.idx != RegHL {
		d.usedIdx = true
	}
	return d.idx
}

func (d *decoder) rp(p uint8) Operand {
	if p == 2 {
		return reg16(d.hl())
	}
	return reg16(tblRP[p])
}

func (d *decoder) rp2(p uint8) Operand {
	if p == 2 {
		return reg16(d.hl())
	}
	return reg16(tblRP2[p])
}

// memCycles returns c for a (HL) operand and its (IX+d) cost otherwise.
func (d *decoder) memCycles(hl uint8) uint8 {
	if d.idxMem {
		return hl + 8
	}
	return hl
}

func (d *decoder) decodeMain(op uint8) {
	x, y, z := op>>6, (op>>3)&7, op&7
	p, q := y>>1, y&1

	switch x {
	case 0:
		switch z {
		case 0:
			switch y {
			case 0:
				d.set(NOP, 4)
			case 1:
				d.set(EX, 4, reg16(RegAF), afAlt())
			case 2:
				d.set(DJNZ, 8, d.rel())
				d.in.Taken = 13
			case 3:
				d.set(JR, 12, d.rel())
			default:
				c := cond(Cond(y - 4))
				d.set(JR, 7, c, d.rel())
				d.in.Taken = 12
			}
		case 1:
			if q == 0 {
				dst := d.rp(p)
				d.set(LD, 10, dst, imm16(d.fetch16()))
			} else {
				d.set(ADD, 11, reg16(d.hl()), d.rp(p))
			}
		case 2:
			switch p<<1 | q {
			case 0:
				d.set(LD, 7, ind(RegBC), reg8(RegA))
			case 2:
				d.set(LD, 7, ind(RegDE), reg8(RegA))
			case 4:
				d.set(LD, 16, abs(d.fetch16()), reg16(d.hl()))
			case 6:
				d.set(LD, 13, abs(d.fetch16()), reg8(RegA))
			case 1:
				d.set(LD, 7, reg8(RegA), ind(RegBC))
			case 3:
				d.set(LD, 7, reg8(RegA), ind(RegDE))
			case 5:
				dst := reg16(d.hl())
				d.set(LD, 16, dst, abs(d.fetch16()))
			case 7:
				d.set(LD, 13, reg8(RegA), abs(d.fetch16()))
			}
		case 3:
			d.set([2]Op{INC, DEC}[q], 6, d.rp(p))
		case 4, 5:
			dst := d.r(y, y == 6)
			c := uint8(4)
			if y == 6 {
				c = d.memCycles(11)
			}
			d.set([2]Op{INC, DEC}[z-4], c, dst)
		case 6:
			dst := d.r(y, y == 6)
			n := d.fetch()
			c := uint8(7)
			if y == 6 {
				c = 10
				if d.idxMem {
					c = 15
				}
			}
			d.set(LD, c, dst, imm8(n))
		case 7:
			d.set(tblAcc[y], 4)
		}

	case 1:
		if y == 6 && z == 6 {
			d.set(HALT, 4)
			return
		}
		hasMem := y == 6 || z == 6
		dst := d.r(y, hasMem)
		src := d.r(z, hasMem)
		c := uint8(4)
		if hasMem {
			c = d.memCycles(7)
		}
		d.set(LD, c, dst, src)

	case 2:
		d.alu(tblALU[y], d.r(z, z == 6), z == 6)

	case 3:
		switch z {
		case 0:
			d.set(RET, 5, cond(Cond(y)))
			d.in.Taken = 11
		case 1:
			if q == 0 {
				d.set(POP, 10, d.rp2(p))
				return
			}
			switch p {
			case 0:
				d.set(RET, 10)
			case 1:
				d.set(EXX, 4)
			case 2:
				d.set(JP, 4, ind(d.hl()))
			case 3:
				d.set(LD, 6, reg16(RegSP), reg16(d.hl()))
			}
		case 2:
			d.set(JP, 10, cond(Cond(y)), imm16(d.fetch16()))
			d.in.Taken = 10
		case 3:
			switch y {
			case 0:
				d.set(JP, 10, imm16(d.fetch16()))
			case 2:
				d.set(OUT, 11, portImm(d.fetch()), reg8(RegA))
			case 3:
				d.set(IN, 11, reg8(RegA), portImm(d.fetch()))
			case 4:
				d.set(EX, 19, ind(RegSP), reg16(d.hl()))
			case 5:
				// Not affected by DD/FD.
				d.set(EX, 4, reg16(RegDE), reg16(RegHL))
			case 6:
				d.set(DI, 4)
			case 7:
				d.set(EI, 4)
			}
		case 4:
			d.set(CALL, 10, cond(Cond(y)), imm16(d.fetch16()))
			d.in.Taken = 17
		case 5:
			if q == 0 {
				d.set(PUSH, 11, d.rp2(p))
			} else {
				// p != 0 are the prefixes, handled by decode.
				d.set(CALL, 17, imm16(d.fetch16()))
			}
		case 6:
			d.alu(tblALU[y], imm8(d.fetch()), false)
		case 7:
			d.set(RST, 11, num(uint16(y)*8))
		}
	}
}

func (d *decoder) alu(op Op, src Operand, mem bool) {
	c := uint8(4)
	switch {
	case mem:
		c = d.memCycles(7)
	case src.Kind == KindImm8:
		c = 7
	}
	switch op {
	case ADD, ADC, SBC:
		d.set(op, c, reg8(RegA), src)
	default:
		d.set(op, c, src)
	}
}

func (d *decoder) decodeCB() {
	op := d.fetch()
	x, y, z := op>>6, (op>>3)&7, op&7

	dst := d.r(z, true)
	mem := z == 6
	switch x {
	case 0:
		d.set(tblROT[y], 8, dst)
		if mem {
			d.in.Cycles = 15
		}
	case 1:
		d.set(BIT, 8, num(uint16(y)), dst)
		if mem {
			d.in.Cycles = 12
		}
	default:
		d.set([2]Op{RES, SET}[x-2], 8, num(uint16(y)), dst)
		if mem {
			d.in.Cycles = 15
		}
	}
}

// decodeIndexedCB decodes DD CB d op and FD CB d op. The displacement comes
// before the opcode.
func (d *decoder) decodeIndexedCB() {
	d.usedIdx, d.idxMem = true, true
	dst := idx(d.idx, int8(d.fetch()))
	op := d.fetch()
	x, y, z := op>>6, (op>>3)&7, op&7

	if x != 1 && z != 6 {
		d.in.Copy = tblR[z]
	}
	switch x {
	case 0:
		d.set(tblROT[y], 19, dst)
	case 1:
		d.set(BIT, 16, num(uint16(y)), dst)
	default:
		d.set([2]Op{RES, SET}[x-2], 19, num(uint16(y)), dst)
	}
}

func (d *decoder) illegal() {
	d.set(NOP, 8)
	d.in.Illegal = true
}

func (d *decoder) decodeED() {
	op := d.fetch()
	x, y, z := op>>6, (op>>3)&7, op&7
	p, q := y>>1, y&1

	switch x {
	case 1:
		switch z {
		case 0:
			if y == 6 {
				d.set(IN, 12, portC())
			} else {
				d.set(IN, 12, reg8(tblR[y]), portC())
			}
		case 1:
			if y == 6 {
				d.set(OUT, 12, portC(), num(0))
			} else {
				d.set(OUT, 12, portC(), reg8(tblR[y]))
			}
		case 2:
			d.set([2]Op{SBC, ADC}[q], 15, reg16(RegHL), reg16(tblRP[p]))
		case 3:
			if q == 0 {
				d.set(LD, 20, abs(d.fetch16()), reg16(tblRP[p]))
			} else {
				d.set(LD, 20, reg16(tblRP[p]), abs(d.fetch16()))
			}
		case 4:
			d.set(NEG, 8)
		case 5:
			if y == 1 {
				d.set(RETI, 14)
			} else {
				d.set(RETN, 14)
			}
		case 6:
			d.set(IM, 8, num(tblIM[y]))
		case 7:
			switch y {
			case 0:
				d.set(LD, 9, reg8(RegI), reg8(RegA))
			case 1:
				d.set(LD, 9, reg8(RegR), reg8(RegA))
			case 2:
				d.set(LD, 9, reg8(RegA), reg8(RegI))
			case 3:
				d.set(LD, 9, reg8(RegA), reg8(RegR))
			case 4:
				d.set(RRD, 18)
			case 5:
				d.set(RLD, 18)
			default:
				d.illegal()
			}
		}
	case 2:
		if z > 3 || y < 4 {
			d.illegal()
			return
		}
		d.set(tblBLI[y-4][z], 16)
		if y >= 6 {
			d.in.Taken = 21
		}
	default:
		d.illegal()
	}
}
