package z80

import (
	"io"

	"speccy/emu/log"
	"speccy/hw/hwio"
	"speccy/hw/snapshot"
)

//go:generate go tool stringer -type=State,StepKind

// Vectors.
const (
	NMIVector = uint16(0x0066)
	IM1Vector = uint16(0x0038)
)

// Interrupt acknowledge costs, in T-states.
const (
	nmiCycles   = 11
	im01Cycles  = 13
	im2Cycles   = 19
	haltCycles  = 4
	im0Fallback = 0xFF // RST 38h
)

// State is the execution state of the CPU, as seen between two steps.
type State uint8

const (
	Fetching State = iota
	Executing
	Halted
	InterruptPending
)

// StepKind tells what a call to Step did.
type StepKind uint8

const (
	StepInstr  StepKind = iota // executed an instruction
	StepHalted                 // idled in HALT
	StepNMI                    // acknowledged a non-maskable interrupt
	StepIRQ                    // acknowledged a maskable interrupt
)

// StepInfo describes a single step.
type StepInfo struct {
	Kind   StepKind
	PC     uint16 // program counter before the step
	Instr  Instr  // for StepInstr
	Cycles int
}

// A Ticker is notified after each step with the current clock.
type Ticker interface {
	Tick(clock int64)
}

type CPU struct {
	Regs  RegisterFile
	Bus   *hwio.Table
	Ports *hwio.Ports

	clock   int64
	state   State
	halted  bool
	eiDelay bool // previous instruction was EI

	intLine    bool
	intData    uint8
	nmiPending bool

	// Non-nil when execution tracing is enabled.
	tracer *tracer
	dbg    Debugger
	ticker Ticker
}

// NewCPU creates a CPU at power-up state. A nil ports creates an empty port
// space.
func NewCPU(bus *hwio.Table, ports *hwio.Ports) *CPU {
	if ports == nil {
		ports = hwio.NewPorts("io")
	}
	c := &CPU{
		Bus:   bus,
		Ports: ports,
		dbg:   nopDebugger{},
	}
	c.Reset()
	return c
}

// Reset puts the CPU in its power-up state. Memory is left untouched.
func (c *CPU) Reset() {
	c.Regs = RegisterFile{}
	c.Regs.SetAF(0xFFFF)
	c.Regs.SetAlt(RegAF, 0xFFFF)
	c.Regs.SP = 0xFFFF

	c.clock = 0
	c.state = Fetching
	c.halted = false
	c.eiDelay = false
	c.intLine = false
	c.nmiPending = false
	c.dbg.Reset()
}

// Clock returns the number of T-states elapsed since reset.
func (c *CPU) Clock() int64 { return c.clock }

// IsHalted reports whether the CPU is idling in HALT.
func (c *CPU) IsHalted() bool { return c.halted }

func (c *CPU) State() State {
	switch {
	case c.state == Executing:
		return Executing
	case c.nmiPending || c.irqAcceptable():
		return InterruptPending
	case c.halted:
		return Halted
	}
	return Fetching
}

// SetINT drives the maskable interrupt line. data is the byte the device puts
// on the data bus during the acknowledge cycle.
func (c *CPU) SetINT(asserted bool, data uint8) {
	c.intLine = asserted
	c.intData = data
}

// NMI requests a non-maskable interrupt. It is acknowledged at the next
// instruction boundary.
func (c *CPU) NMI() {
	c.nmiPending = true
}

func (c *CPU) irqAcceptable() bool {
	return c.intLine && c.Regs.IFF1 && !c.eiDelay
}

// Step executes exactly one instruction, acknowledges one interrupt, or
// idles for one HALT cycle.
func (c *CPU) Step() StepInfo {
	var info StepInfo
	switch {
	case c.nmiPending:
		info = c.nmi()
	case c.irqAcceptable():
		info = c.irq()
	case c.halted:
		c.Regs.IncR(1)
		info = StepInfo{Kind: StepHalted, PC: c.Regs.PC, Cycles: haltCycles}
	default:
		info = c.step()
	}

	c.clock += int64(info.Cycles)
	if c.ticker != nil {
		c.ticker.Tick(c.clock)
	}
	return info
}

func (c *CPU) step() StepInfo {
	pc := c.Regs.PC
	c.eiDelay = false

	if c.tracer != nil {
		c.traceOp()
	}

	in := Decode(c.Bus, pc)
	c.Regs.IncR(in.Fetches)
	c.Regs.PC = pc + uint16(in.Len)

	c.state = Executing
	cycles := c.execute(&in)
	c.state = Fetching

	return StepInfo{Kind: StepInstr, PC: pc, Instr: in, Cycles: cycles}
}

// Run steps the CPU until at least ncycles T-states have elapsed.
func (c *CPU) Run(ncycles int64) {
	until := c.clock + ncycles
	for c.clock < until {
		c.Step()
	}
}

func (c *CPU) nmi() StepInfo {
	pc := c.Regs.PC
	c.nmiPending = false
	c.halted = false
	c.Regs.IFF1 = false
	c.Regs.IncR(1)
	c.push16(pc)
	c.Regs.PC = NMIVector

	log.ModCPU.DebugZ("nmi").Hex16("from", pc).End()
	c.dbg.Interrupt(pc, c.Regs.PC, true)
	return StepInfo{Kind: StepNMI, PC: pc, Cycles: nmiCycles}
}

func (c *CPU) irq() StepInfo {
	pc := c.Regs.PC
	c.halted = false
	c.Regs.IFF1, c.Regs.IFF2 = false, false
	c.Regs.IncR(1)
	c.push16(pc)

	cycles := im01Cycles
	switch c.Regs.IM {
	case 0:
		// Only RST instructions are supported on the data bus.
		op := c.intData
		if op&0xC7 != 0xC7 {
			op = im0Fallback
		}
		c.Regs.PC = uint16(op & 0x38)
	case 1:
		c.Regs.PC = IM1Vector
	case 2:
		vec := uint16(c.Regs.I)<<8 | uint16(c.intData)
		c.Regs.PC = c.Read16(vec)
		cycles = im2Cycles
	}

	log.ModCPU.DebugZ("irq").
		Hex16("from", pc).
		Hex16("to", c.Regs.PC).
		Int("im", int(c.Regs.IM)).
		End()
	c.dbg.Interrupt(pc, c.Regs.PC, false)
	return StepInfo{Kind: StepIRQ, PC: pc, Cycles: cycles}
}

/* bus accesses */

func (c *CPU) Read8(addr uint16) uint8 {
	return c.Bus.Read8(addr, false)
}

func (c *CPU) Write8(addr uint16, val uint8) {
	c.Bus.Write8(addr, val)
}

func (c *CPU) Read16(addr uint16) uint16 {
	lo := c.Read8(addr)
	hi := c.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) Write16(addr uint16, val uint16) {
	c.Write8(addr, uint8(val))
	c.Write8(addr+1, uint8(val>>8))
}

func (c *CPU) In(port uint16) uint8 {
	return c.Ports.In(port, false)
}

func (c *CPU) Out(port uint16, val uint8) {
	c.Ports.Out(port, val)
}

/* stack operations */

func (c *CPU) push16(val uint16) {
	c.Regs.SP -= 2
	c.Write16(c.Regs.SP, val)
}

func (c *CPU) pop16() uint16 {
	v := c.Read16(c.Regs.SP)
	c.Regs.SP += 2
	return v
}

/* tracing / debugging */

func (c *CPU) traceOp() {
	r := &c.Regs
	c.tracer.write(cpuState{
		AF: r.AF(), BC: r.BC(), DE: r.DE(), HL: r.HL(),
		IX: r.IX, IY: r.IY, SP: r.SP, PC: r.PC,
		Clock: c.clock,
	})
}

// SetTraceOutput enables the execution trace. A nil writer disables it.
func (c *CPU) SetTraceOutput(w io.Writer) {
	if w == nil {
		c.tracer = nil
		return
	}
	c.tracer = &tracer{w: w, d: c}
}

func (c *CPU) SetDebugger(dbg Debugger) {
	if dbg == nil {
		dbg = nopDebugger{}
	}
	c.dbg = dbg
}

func (c *CPU) SetTicker(t Ticker) {
	c.ticker = t
}

// AddLogContext adds the CPU position to log entries.
func (c *CPU) AddLogContext(z *log.EntryZ) {
	z.Hex16("pc", c.Regs.PC).Int64("clk", c.clock)
}

// SaveState returns a snapshot of the CPU registers and execution state.
func (c *CPU) SaveState() *snapshot.CPU {
	r := &c.Regs
	return &snapshot.CPU{
		AF: r.AF(), BC: r.BC(), DE: r.DE(), HL: r.HL(),
		AF_: r.Alt(RegAF), BC_: r.Alt(RegBC), DE_: r.Alt(RegDE), HL_: r.Alt(RegHL),
		IX: r.IX, IY: r.IY, SP: r.SP, PC: r.PC,
		I: r.I, R: r.R, IM: r.IM,
		IFF1: r.IFF1, IFF2: r.IFF2,
		Halted: c.halted,
		Clock:  c.clock,
	}
}

// SetState restores a snapshot taken with SaveState. Pending interrupts are
// discarded.
func (c *CPU) SetState(s *snapshot.CPU) {
	r := &c.Regs
	*r = RegisterFile{}
	r.SetAF(s.AF)
	r.SetBC(s.BC)
	r.SetDE(s.DE)
	r.SetHL(s.HL)
	r.SetAlt(RegAF, s.AF_)
	r.SetAlt(RegBC, s.BC_)
	r.SetAlt(RegDE, s.DE_)
	r.SetAlt(RegHL, s.HL_)
	r.IX, r.IY, r.SP, r.PC = s.IX, s.IY, s.SP, s.PC
	r.I, r.R, r.IM = s.I, s.R, s.IM
	r.IFF1, r.IFF2 = s.IFF1, s.IFF2

	c.halted = s.Halted
	c.clock = s.Clock
	c.state = Fetching
	c.eiDelay = false
	c.nmiPending = false
	c.dbg.Reset()
}
