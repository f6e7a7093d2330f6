package z80

// OperandKind tells how an Operand is accessed.
type OperandKind uint8

const (
	KindNone    OperandKind = iota
	KindReg8                // 8-bit register
	KindReg16               // 16-bit register pair
	KindAFAlt               // AF', only in EX AF,AF'
	KindImm8                // n
	KindImm16               // nn
	KindInd                 // (BC) (DE) (HL) (SP), or the jump target of JP (HL)
	KindIdx                 // (IX+d) (IY+d)
	KindAbs                 // (nn)
	KindRel                 // relative branch, Val is the absolute target
	KindCond                // branch condition
	KindPortImm             // (n)
	KindPortC               // (C)
	KindNum                 // bit number, interrupt mode, restart vector
)

// Operand is a decoded instruction operand.
type Operand struct {
	Kind OperandKind
	Reg  Reg
	Cond Cond
	Val  uint16
	Disp int8
}

func reg8(r Reg) Operand        { return Operand{Kind: KindReg8, Reg: r} }
func reg16(r Reg) Operand       { return Operand{Kind: KindReg16, Reg: r} }
func ind(r Reg) Operand         { return Operand{Kind: KindInd, Reg: r} }
func imm8(v uint8) Operand      { return Operand{Kind: KindImm8, Val: uint16(v)} }
func imm16(v uint16) Operand    { return Operand{Kind: KindImm16, Val: v} }
func abs(v uint16) Operand      { return Operand{Kind: KindAbs, Val: v} }
func num(v uint16) Operand      { return Operand{Kind: KindNum, Val: v} }
func cond(c Cond) Operand       { return Operand{Kind: KindCond, Cond: c} }
func idx(r Reg, d int8) Operand { return Operand{Kind: KindIdx, Reg: r, Disp: d} }
func rel(target uint16) Operand { return Operand{Kind: KindRel, Val: target} }
func portImm(n uint8) Operand   { return Operand{Kind: KindPortImm, Val: uint16(n)} }
func portC() Operand            { return Operand{Kind: KindPortC} }
func afAlt() Operand            { return Operand{Kind: KindAFAlt} }

// Instr is a fully decoded instruction. It is an immutable value produced by
// Decode and consumed by the executor and the disassembler.
type Instr struct {
	Op   Op
	Args [2]Operand

	Addr uint16 // address of the first byte, prefixes included
	Len  uint8  // bytes consumed, prefixes included

	// Cycles is the cost in T-states. For conditional branches it is the
	// cost when the branch isn't taken, and Taken the cost when it is. For
	// repeating block instructions Taken is the cost of an iteration that
	// loops.
	Cycles uint8
	Taken  uint8

	Fetches uint8 // number of opcode fetches (M1 cycles)
	Prefix  uint8 // 0, 0xDD or 0xFD
	Copy    Reg   // register receiving a copy of a DDCB/FDCB result
	Illegal bool  // unassigned opcode, executed as a NOP
}

// NumArgs returns the number of operands.
func (in *Instr) NumArgs() int {
	switch {
	case in.Args[0].Kind == KindNone:
		return 0
	case in.Args[1].Kind == KindNone:
		return 1
	}
	return 2
}

// IsBranch reports whether the instruction may change the flow of control.
func (in *Instr) IsBranch() bool {
	switch in.Op {
	case JP, JR, DJNZ, CALL, RET, RETI, RETN, RST:
		return true
	}
	return false
}
