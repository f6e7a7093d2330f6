package snapshot

// Version of the snapshot layout.
const Version = 1

// Spectrum is the complete state of a 48K machine.
type Spectrum struct {
	Version int
	CPU     CPU
	RAM     [0xC000]uint8 // 0x4000-0xFFFF
	Border  uint8
}

type CPU struct {
	AF, BC, DE, HL     uint16
	AF_, BC_, DE_, HL_ uint16
	IX, IY, SP, PC     uint16

	I, R uint8
	IM   uint8

	IFF1, IFF2 bool
	Halted     bool

	Clock int64
}
