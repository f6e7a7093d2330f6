package z80

import "math/bits"

// Flag lookup tables indexed by an 8-bit result: S, Z and the undocumented
// X/Y bits, with or without parity in PV.
var szxyTable, szpxyTable = func() (szxy, szpxy [256]Flags) {
	for i := range 256 {
		f := Flags(i) & (FlagS | flagsXY)
		if i == 0 {
			f |= FlagZ
		}
		szxy[i] = f
		szpxy[i] = f | flagIf(bits.OnesCount8(uint8(i))%2 == 0, FlagPV)
	}
	return
}()

func add8(a, b, carry uint8) (uint8, Flags) {
	sum := uint16(a) + uint16(b) + uint16(carry)
	res := uint8(sum)
	f := szxyTable[res]
	f |= flagIf((a^b^res)&0x10 != 0, FlagH)
	f |= flagIf((a^b^0x80)&(a^res)&0x80 != 0, FlagPV)
	f |= flagIf(sum > 0xFF, FlagC)
	return res, f
}

func sub8(a, b, carry uint8) (uint8, Flags) {
	diff := uint16(a) - uint16(b) - uint16(carry)
	res := uint8(diff)
	f := szxyTable[res] | FlagN
	f |= flagIf((a^b^res)&0x10 != 0, FlagH)
	f |= flagIf((a^b)&(a^res)&0x80 != 0, FlagPV)
	f |= flagIf(diff > 0xFF, FlagC)
	return res, f
}

// cp8 compares a with b. X and Y come from the operand, not the result.
func cp8(a, b uint8) Flags {
	_, f := sub8(a, b, 0)
	return f&^flagsXY | Flags(b)&flagsXY
}

func and8(a, b uint8) (uint8, Flags) {
	res := a & b
	return res, szpxyTable[res] | FlagH
}

func or8(a, b uint8) (uint8, Flags) {
	res := a | b
	return res, szpxyTable[res]
}

func xor8(a, b uint8) (uint8, Flags) {
	res := a ^ b
	return res, szpxyTable[res]
}

func inc8(v uint8, f Flags) (uint8, Flags) {
	res := v + 1
	nf := f&FlagC | szxyTable[res]
	nf |= flagIf(v&0x0F == 0x0F, FlagH)
	nf |= flagIf(v == 0x7F, FlagPV)
	return res, nf
}

func dec8(v uint8, f Flags) (uint8, Flags) {
	res := v - 1
	nf := f&FlagC | szxyTable[res] | FlagN
	nf |= flagIf(v&0x0F == 0, FlagH)
	nf |= flagIf(v == 0x80, FlagPV)
	return res, nf
}

// add16 is ADD HL,rr. S, Z and PV are left untouched.
func add16(a, b uint16, f Flags) (uint16, Flags) {
	sum := uint32(a) + uint32(b)
	res := uint16(sum)
	nf := f & (FlagS | FlagZ | FlagPV)
	nf |= Flags(res>>8) & flagsXY
	nf |= flagIf((a^b^res)&0x1000 != 0, FlagH)
	nf |= flagIf(sum > 0xFFFF, FlagC)
	return res, nf
}

func adc16(a, b uint16, carry uint8) (uint16, Flags) {
	sum := uint32(a) + uint32(b) + uint32(carry)
	res := uint16(sum)
	f := Flags(res>>8) & (FlagS | flagsXY)
	f |= flagIf(res == 0, FlagZ)
	f |= flagIf((a^b^res)&0x1000 != 0, FlagH)
	f |= flagIf((a^b^0x8000)&(a^res)&0x8000 != 0, FlagPV)
	f |= flagIf(sum > 0xFFFF, FlagC)
	return res, f
}

func sbc16(a, b uint16, carry uint8) (uint16, Flags) {
	diff := uint32(a) - uint32(b) - uint32(carry)
	res := uint16(diff)
	f := Flags(res>>8)&(FlagS|flagsXY) | FlagN
	f |= flagIf(res == 0, FlagZ)
	f |= flagIf((a^b^res)&0x1000 != 0, FlagH)
	f |= flagIf((a^b)&(a^res)&0x8000 != 0, FlagPV)
	f |= flagIf(diff > 0xFFFF, FlagC)
	return res, f
}

func daa(a uint8, f Flags) (uint8, Flags) {
	var corr uint8
	carry := f & FlagC
	if f&FlagH != 0 || a&0x0F > 9 {
		corr |= 0x06
	}
	if f&FlagC != 0 || a > 0x99 {
		corr |= 0x60
		carry = FlagC
	}

	var res uint8
	var half Flags
	if f&FlagN != 0 {
		res = a - corr
		half = flagIf(f&FlagH != 0 && a&0x0F < 6, FlagH)
	} else {
		res = a + corr
		half = flagIf(a&0x0F > 9, FlagH)
	}
	return res, szpxyTable[res] | f&FlagN | carry | half
}

func cpl(a uint8, f Flags) (uint8, Flags) {
	res := ^a
	return res, f&(FlagS|FlagZ|FlagPV|FlagC) | FlagH | FlagN | Flags(res)&flagsXY
}

func neg(a uint8) (uint8, Flags) {
	return sub8(0, a, 0)
}

func scf(a uint8, f Flags) Flags {
	return f&(FlagS|FlagZ|FlagPV) | FlagC | Flags(a)&flagsXY
}

func ccf(a uint8, f Flags) Flags {
	nf := f&(FlagS|FlagZ|FlagPV) | Flags(a)&flagsXY
	if f&FlagC != 0 {
		return nf | FlagH
	}
	return nf | FlagC
}

// shift applies a CB rotate or shift operation.
func shift(op Op, v uint8, f Flags) (uint8, Flags) {
	var res, cout uint8
	cin := f.bit(FlagC)
	switch op {
	case RLC:
		res, cout = v<<1|v>>7, v>>7
	case RRC:
		res, cout = v>>1|v<<7, v&1
	case RL:
		res, cout = v<<1|cin, v>>7
	case RR:
		res, cout = v>>1|cin<<7, v&1
	case SLA:
		res, cout = v<<1, v>>7
	case SRA:
		res, cout = v>>1|v&0x80, v&1
	case SLL:
		res, cout = v<<1|1, v>>7
	case SRL:
		res, cout = v>>1, v&1
	}
	return res, szpxyTable[res] | Flags(cout)&FlagC
}

// shiftA is RLCA, RRCA, RLA and RRA: S, Z and PV are left untouched.
func shiftA(op Op, a uint8, f Flags) (uint8, Flags) {
	cb := RLC
	switch op {
	case RRCA:
		cb = RRC
	case RLA:
		cb = RL
	case RRA:
		cb = RR
	}
	res, nf := shift(cb, a, f)
	return res, f&(FlagS|FlagZ|FlagPV) | nf&(FlagC|flagsXY)
}

func bit(n uint8, v uint8, f Flags) Flags {
	nf := f&FlagC | FlagH | Flags(v)&flagsXY
	if v&(1<<n) == 0 {
		nf |= FlagZ | FlagPV
	} else if n == 7 {
		nf |= FlagS
	}
	return nf
}
