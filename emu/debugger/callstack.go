package debugger

import (
	"fmt"
	"slices"
)

type stackFrameFlag uint8

const (
	sffNone stackFrameFlag = iota
	sffNMI
	sffIRQ
)

// Deepest tracked call stack. Programs that never return (or discard
// return addresses) would otherwise grow the stack forever.
const maxStackDepth = 256

type stackFrame struct {
	src    uint16
	target uint16
	ret    uint16
	flag   stackFrameFlag
}

type callStack []stackFrame

func (cs *callStack) push(src, dst, ret uint16, flag stackFrameFlag) {
	if cs.len() == maxStackDepth {
		*cs = slices.Delete(*cs, 0, 1)
	}
	*cs = append(*cs, stackFrame{
		src:    src,
		target: dst,
		ret:    ret,
		flag:   flag,
	})
}

func (cs *callStack) len() int {
	return len(*cs)
}

func (cs *callStack) pop() {
	if cs.len() == 0 {
		return
	}
	*cs = (*cs)[:cs.len()-1]
}

// ret unwinds the stack after a return to pc. Frames above the one whose
// return address is pc are discarded too, when the program dropped return
// addresses from the stack. A return matching no frame pops the innermost.
func (cs *callStack) ret(pc uint16) {
	for i := cs.len() - 1; i >= 0; i-- {
		if (*cs)[i].ret == pc {
			*cs = (*cs)[:i]
			return
		}
	}
	cs.pop()
}

func (cs *callStack) reset() {
	*cs = (*cs)[:0]
}

// A Frame is one level of the call stack.
type Frame struct {
	// Entry is the address of the called routine, or of the interrupt
	// handler.
	Entry uint16
	// PC is the current address in the frame: the CPU program counter for
	// the innermost frame, the call site for the others.
	PC uint16

	IRQ, NMI bool
	// Bottom frame has no known entry point.
	Bottom bool
}

func (f Frame) String() string {
	entry := ""
	switch {
	case f.Bottom:
		entry = "[bottom of stack]"
	case f.NMI:
		entry = fmt.Sprintf("[nmi] $%04X", f.Entry)
	case f.IRQ:
		entry = fmt.Sprintf("[irq] $%04X", f.Entry)
	default:
		entry = fmt.Sprintf("$%04X", f.Entry)
	}
	return fmt.Sprintf("%-18s $%04X", entry, f.PC)
}

// build returns the frames, innermost first.
func (cs *callStack) build(pc uint16) []Frame {
	frames := make([]Frame, 0, cs.len()+1)
	for i := cs.len() - 1; i >= 0; i-- {
		frames = append(frames, cs.frame(i, pc))
		pc = (*cs)[i].src
	}
	return append(frames, Frame{PC: pc, Bottom: true})
}

func (cs *callStack) frame(i int, pc uint16) Frame {
	f := (*cs)[i]
	return Frame{
		Entry: f.target,
		PC:    pc,
		IRQ:   f.flag == sffIRQ,
		NMI:   f.flag == sffNMI,
	}
}
