package z80

import (
	"fmt"
	"strings"
)

type DisasmOp struct {
	Opcode string
	Oper   string
	Buf    []byte
	PC     uint16
}

// Text returns the assembly text of the instruction, without address and
// bytes.
func (d DisasmOp) Text() string {
	if d.Oper == "" {
		return d.Opcode
	}
	return d.Opcode + " " + d.Oper
}

func (d DisasmOp) String() string {
	return strings.TrimRight(string(d.Bytes()), " ")
}

// Bytes returns the string representation of a DisasmOp, this is optimized
// version, suitable for the execution tracer.
func (d DisasmOp) Bytes() []byte {
	const (
		totalLen = 48
		textCol  = 18
	)
	buf := make([]byte, totalLen)

	hexEncode(buf[0:], byte(d.PC>>8))
	hexEncode(buf[2:], byte(d.PC))
	buf[4] = ' '
	buf[5] = ' '

	off := 6
	for i := range d.Buf {
		if off+3 > len(buf) {
			buf = append(buf, make([]byte, 3)...)
		}
		hexEncode(buf[off:], d.Buf[i])
		buf[off+2] = ' '
		off += 3
	}

	for ; off < textCol; off++ {
		buf[off] = ' '
	}

	buf = append(buf[:off], d.Opcode...)
	off += len(d.Opcode)
	if d.Oper != "" {
		buf = append(buf, ' ')
		buf = append(buf, d.Oper...)
		off += 1 + len(d.Oper)
	}

	if len(buf) >= totalLen {
		return append(buf, ' ')
	}
	buf = buf[:totalLen]
	for i := off; i < totalLen; i++ {
		buf[i] = ' '
	}
	return buf
}

func hexEncode(dst []byte, v byte) {
	const hextable = "0123456789ABCDEF"
	dst[0] = hextable[v>>4]
	dst[1] = hextable[v&0x0f]
}

// Labels maps addresses to the symbols printed in their place.
type Labels map[uint16]string

// Disassemble formats a decoded instruction. raw holds its bytes.
func Disassemble(in *Instr, raw []byte) DisasmOp {
	return Labels(nil).Disassemble(in, raw)
}

// Disassemble formats a decoded instruction, replacing 16-bit addresses and
// immediates that have a label with the label.
func (l Labels) Disassemble(in *Instr, raw []byte) DisasmOp {
	dis := DisasmOp{
		Opcode: in.Op.String(),
		Buf:    raw,
		PC:     in.Addr,
	}
	if in.Illegal {
		dis.Opcode = "NOP*"
	}

	var opers [3]string
	n := 0
	for i := range in.NumArgs() {
		opers[n] = l.formatOperand(in.Op, &in.Args[i])
		n++
	}
	if in.Copy != RegNone {
		opers[n] = in.Copy.String()
		n++
	}
	dis.Oper = strings.Join(opers[:n], ",")
	return dis
}

func (l Labels) formatOperand(op Op, o *Operand) string {
	switch o.Kind {
	case KindReg8, KindReg16:
		return o.Reg.String()
	case KindAFAlt:
		return "AF'"
	case KindImm8:
		return fmt.Sprintf("$%02X", o.Val)
	case KindImm16, KindRel:
		return l.formatAddr(o.Val)
	case KindInd:
		return "(" + o.Reg.String() + ")"
	case KindIdx:
		if o.Disp < 0 {
			return fmt.Sprintf("(%s-$%02X)", o.Reg, -int(o.Disp))
		}
		return fmt.Sprintf("(%s+$%02X)", o.Reg, o.Disp)
	case KindAbs:
		return "(" + l.formatAddr(o.Val) + ")"
	case KindCond:
		return o.Cond.String()
	case KindPortImm:
		return fmt.Sprintf("($%02X)", o.Val)
	case KindPortC:
		return "(C)"
	case KindNum:
		if op == RST {
			return fmt.Sprintf("$%02X", o.Val)
		}
		return fmt.Sprint(o.Val)
	}
	return "?"
}

func (l Labels) formatAddr(addr uint16) string {
	if label, ok := l[addr]; ok {
		return label
	}
	return fmt.Sprintf("$%04X", addr)
}

// Buffer is a ByteSource over a byte slice loaded at Origin. Bytes outside
// the slice read as zero.
type Buffer struct {
	Origin uint16
	Data   []byte
}

func (b Buffer) Peek8(addr uint16) uint8 {
	if off := int(addr - b.Origin); off < len(b.Data) {
		return b.Data[off]
	}
	return 0
}

// DisasmAt decodes and formats the instruction at pc.
func DisasmAt(src ByteSource, pc uint16) (Instr, DisasmOp) {
	return Labels(nil).DisasmAt(src, pc)
}

// DisasmAt decodes and formats the instruction at pc using the labels.
func (l Labels) DisasmAt(src ByteSource, pc uint16) (Instr, DisasmOp) {
	in := Decode(src, pc)
	raw := make([]byte, in.Len)
	for i := range raw {
		raw[i] = src.Peek8(pc + uint16(i))
	}
	return in, l.Disassemble(&in, raw)
}

// Disasm disassembles the instruction at pc without side effects.
func (c *CPU) Disasm(pc uint16) DisasmOp {
	_, dis := DisasmAt(c.Bus, pc)
	return dis
}
