package z80

import "strings"

// Op is an instruction mnemonic. The executor switches on it and the
// disassembler prints it, so both always agree on what an instruction is.
type Op uint8

const (
	NOP Op = iota
	LD
	PUSH
	POP
	EX
	EXX
	LDI
	LDIR
	LDD
	LDDR
	CPI
	CPIR
	CPD
	CPDR
	ADD
	ADC
	SUB
	SBC
	AND
	XOR
	OR
	CP
	INC
	DEC
	DAA
	CPL
	NEG
	CCF
	SCF
	HALT
	DI
	EI
	IM
	RLCA
	RRCA
	RLA
	RRA
	RLC
	RRC
	RL
	RR
	SLA
	SRA
	SLL
	SRL
	RLD
	RRD
	BIT
	SET
	RES
	JP
	JR
	DJNZ
	CALL
	RET
	RETI
	RETN
	RST
	IN
	INI
	INIR
	IND
	INDR
	OUT
	OUTI
	OTIR
	OUTD
	OTDR

	numOps
)

var opNames = [numOps]string{
	"NOP", "LD", "PUSH", "POP", "EX", "EXX", "LDI", "LDIR", "LDD", "LDDR",
	"CPI", "CPIR", "CPD", "CPDR", "ADD", "ADC", "SUB", "SBC", "AND", "XOR",
	"OR", "CP", "INC", "DEC", "DAA", "CPL", "NEG", "CCF", "SCF", "HALT",
	"DI", "EI", "IM", "RLCA", "RRCA", "RLA", "RRA", "RLC", "RRC", "RL",
	"RR", "SLA", "SRA", "SLL", "SRL", "RLD", "RRD", "BIT", "SET", "RES",
	"JP", "JR", "DJNZ", "CALL", "RET", "RETI", "RETN", "RST", "IN", "INI",
	"INIR", "IND", "INDR", "OUT", "OUTI", "OTIR", "OUTD", "OTDR",
}

func (op Op) String() string {
	if op < numOps {
		return opNames[op]
	}
	return "???"
}

// OpByName returns the Op for a mnemonic, case insensitive.
func OpByName(name string) (Op, bool) {
	name = strings.ToUpper(name)
	for i, s := range opNames {
		if s == name {
			return Op(i), true
		}
	}
	return 0, false
}

// Cond is a branch condition.
type Cond uint8

const (
	CondNZ Cond = iota
	CondZ
	CondNC
	CondC
	CondPO
	CondPE
	CondP
	CondM
)

var condNames = [...]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}

func (c Cond) String() string { return condNames[c&7] }

// Eval reports whether c holds for the given flags.
func (c Cond) Eval(f Flags) bool {
	switch c {
	case CondNZ:
		return f&FlagZ == 0
	case CondZ:
		return f&FlagZ != 0
	case CondNC:
		return f&FlagC == 0
	case CondC:
		return f&FlagC != 0
	case CondPO:
		return f&FlagPV == 0
	case CondPE:
		return f&FlagPV != 0
	case CondP:
		return f&FlagS == 0
	case CondM:
		return f&FlagS != 0
	}
	return false
}
