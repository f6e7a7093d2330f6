package z80

import (
	"fmt"
	"io"
)

// cpuState stores the CPU state for the execution trace.
type cpuState struct {
	AF, BC, DE, HL uint16
	IX, IY, SP, PC uint16

	Clock int64
}

type disasmer interface {
	Disasm(pc uint16) DisasmOp
}

type tracer struct {
	d disasmer
	w io.Writer
}

func appendReg(buf []byte, name string, v uint16) []byte {
	var hex [4]byte
	hexEncode(hex[0:], byte(v>>8))
	hexEncode(hex[2:], byte(v))
	buf = append(buf, name...)
	buf = append(buf, ':')
	buf = append(buf, hex[:]...)
	return append(buf, ' ')
}

// write the execution trace for the instruction about to be executed.
func (t *tracer) write(state cpuState) {
	dis := t.d.Disasm(state.PC)
	buf := make([]byte, 0, 128)
	buf = append(buf, dis.Bytes()...)

	buf = appendReg(buf, "AF", state.AF)
	buf = appendReg(buf, "BC", state.BC)
	buf = appendReg(buf, "DE", state.DE)
	buf = appendReg(buf, "HL", state.HL)
	buf = appendReg(buf, "IX", state.IX)
	buf = appendReg(buf, "IY", state.IY)
	buf = appendReg(buf, "SP", state.SP)

	buf = fmt.Appendf(buf, "CYC:%d\n", state.Clock)
	t.w.Write(buf)
}
