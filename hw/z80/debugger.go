package z80

// A Debugger monitors the control flow of a CPU.
type Debugger interface {
	// Reset is called when the CPU is reset.
	Reset()

	// Interrupt is called when an interrupt is acknowledged. prevpc is the
	// address of the instruction that was about to be executed, curpc is
	// the address of the interrupt handler, and isNMI is true if the
	// interrupt is a non-maskable interrupt.
	Interrupt(prevpc, curpc uint16, isNMI bool)

	// Call is called when a CALL or RST transfers control. src is the
	// address of the instruction, ret the address pushed on the stack.
	Call(src, dst, ret uint16)

	// Return is called after RET, RETI or RETN transferred control to pc.
	Return(pc uint16)
}

type nopDebugger struct{}

func (nopDebugger) Reset()                                     {}
func (nopDebugger) Interrupt(prevpc, curpc uint16, isNMI bool) {}
func (nopDebugger) Call(src, dst, ret uint16)                  {}
func (nopDebugger) Return(pc uint16)                           {}
