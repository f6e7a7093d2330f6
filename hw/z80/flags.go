package z80

// Flags is the content of the F register.
type Flags uint8

const (
	FlagC  Flags = 1 << iota // carry
	FlagN                    // add/subtract
	FlagPV                   // parity/overflow
	FlagX                    // undocumented, bit 3
	FlagH                    // half carry
	FlagY                    // undocumented, bit 5
	FlagZ                    // zero
	FlagS                    // sign

	flagsXY = FlagX | FlagY
)

func (f Flags) String() string {
	const bits = "sz5h3pncSZ5H3PNC"

	s := make([]byte, 8)
	for i := range 8 {
		ibit := (uint8(f) >> (7 - i)) & 1
		s[i] = bits[i+int(8*ibit)]
	}
	return string(s)
}

// Has reports whether all bits of flag are set.
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

func (f Flags) bit(flag Flags) uint8 {
	if f&flag != 0 {
		return 1
	}
	return 0
}

func flagIf(cond bool, flag Flags) Flags {
	if cond {
		return flag
	}
	return 0
}
