package hwio

// Bit helpers for 8-bit registers and latches, bits are numbered from 0.

func GetBit8(v uint8, n uint) bool {
	return GetBiti8(v, n) != 0
}

func GetBiti8(v uint8, n uint) uint8 {
	return v >> n & 0x01
}

func SetBit8(v *uint8, n uint) {
	*v |= 1 << n
}

func ClearBit8(v *uint8, n uint) {
	*v &^= 1 << n
}

// PutBit8 sets bit n of v if on, clears it otherwise.
func PutBit8(v *uint8, n uint, on bool) {
	if on {
		SetBit8(v, n)
	} else {
		ClearBit8(v, n)
	}
}
