package debugger

import (
	"fmt"
	"sync/atomic"

	"speccy/emu/log"
	"speccy/hw/z80"
)

//go:generate go tool stringer -type=State

// State is the state of the debug controller.
type State int32

const (
	Idle State = iota
	Running
	SteppingOne
	StoppedBreakpoint
	StoppedWatchpoint
)

// A StopReason tells why Run returned.
type StopReason struct {
	State State
	PC    uint16

	// Watch is the watchpoint that fired, for StoppedWatchpoint.
	Watch *Watchpoint
	Old   uint16
	New   uint16
}

func (r StopReason) String() string {
	switch r.State {
	case StoppedBreakpoint:
		return fmt.Sprintf("breakpoint at $%04X", r.PC)
	case StoppedWatchpoint:
		return fmt.Sprintf("watchpoint %d (%s %s): $%04X -> $%04X at $%04X",
			r.Watch.ID, r.Watch.Target, r.Watch.Pred, r.Old, r.New, r.PC)
	}
	return fmt.Sprintf("stopped at $%04X", r.PC)
}

// A Controller drives a CPU one instruction, or many, at a time. It keeps
// the breakpoints and watchpoints and follows the call stack, even while
// the CPU runs freely.
//
// All methods but State and Stop must be called from the goroutine owning
// the CPU.
type Controller struct {
	cpu *z80.CPU

	state atomic.Int32
	stop  atomic.Bool

	bps breakpoints
	wps watchpoints

	// PC at which the last breakpoint stop happened.
	bpStopPC uint16

	cstack  callStack
	resetPC uint16
}

// NewController returns a Controller attached to cpu.
func NewController(cpu *z80.CPU) *Controller {
	c := &Controller{cpu: cpu}
	c.bps.init()
	cpu.SetDebugger(c)
	c.resetPC = cpu.Regs.PC
	return c
}

// CPU returns the controlled CPU.
func (c *Controller) CPU() *z80.CPU { return c.cpu }

// State can be called from any goroutine.
func (c *Controller) State() State { return State(c.state.Load()) }

func (c *Controller) setState(s State) {
	prev := State(c.state.Swap(int32(s)))
	if prev != s {
		log.ModDbg.DebugZ("state change").
			Stringer("from", prev).
			Stringer("to", s).
			Hex16("pc", c.cpu.Regs.PC).
			End()
	}
}

// Stop requests a running Run call to return. The request is observed at
// the next instruction boundary. Stop can be called from any goroutine.
func (c *Controller) Stop() { c.stop.Store(true) }

// Step executes exactly one CPU step, ignoring breakpoints.
func (c *Controller) Step() z80.StepInfo {
	c.setState(SteppingOne)
	info := c.cpu.Step()
	c.wps.refresh(c.cpu)
	c.setState(Idle)
	return info
}

// StepN executes n steps, ignoring breakpoints. Stop cuts it short at the
// next instruction boundary.
func (c *Controller) StepN(n int) z80.StepInfo {
	c.stop.Store(false)
	c.setState(SteppingOne)

	var info z80.StepInfo
	for range n {
		info = c.cpu.Step()
		c.wps.refresh(c.cpu)
		if c.stop.CompareAndSwap(true, false) {
			break
		}
	}
	c.setState(Idle)
	return info
}

// Run steps the CPU until an enabled breakpoint is reached, a watchpoint
// fires or Stop is called.
func (c *Controller) Run() StopReason {
	// Resuming from a breakpoint: the instruction at the breakpoint address
	// must execute once.
	skip := c.State() == StoppedBreakpoint && c.bpStopPC == c.cpu.Regs.PC

	c.stop.Store(false)
	c.setState(Running)
	c.wps.refresh(c.cpu)

	for {
		pc := c.cpu.Regs.PC
		if !skip && !c.cpu.IsHalted() && c.bps.hit(pc) {
			c.bpStopPC = pc
			c.setState(StoppedBreakpoint)
			return StopReason{State: StoppedBreakpoint, PC: pc}
		}
		skip = false

		c.cpu.Step()

		if wp, old, cur, ok := c.wps.eval(c.cpu); ok {
			c.setState(StoppedWatchpoint)
			return StopReason{
				State: StoppedWatchpoint,
				PC:    c.cpu.Regs.PC,
				Watch: wp,
				Old:   old,
				New:   cur,
			}
		}

		if c.stop.CompareAndSwap(true, false) {
			c.setState(Idle)
			return StopReason{State: Idle, PC: c.cpu.Regs.PC}
		}
	}
}

// SetBreakpoint sets an enabled breakpoint at addr. Setting an existing
// breakpoint is a no-op.
func (c *Controller) SetBreakpoint(addr uint16) { c.bps.set(addr) }

// ClearBreakpoint removes the breakpoint at addr, if any.
func (c *Controller) ClearBreakpoint(addr uint16) { c.bps.clear(addr) }

// EnableBreakpoint enables or disables the breakpoint at addr. It reports
// whether such a breakpoint exists.
func (c *Controller) EnableBreakpoint(addr uint16, on bool) bool { return c.bps.enable(addr, on) }

// Breakpoints returns all breakpoints, sorted by address.
func (c *Controller) Breakpoints() []Breakpoint { return c.bps.list() }

// SetWatchpoint adds a watchpoint and returns its id.
func (c *Controller) SetWatchpoint(target Target, pred Predicate) int {
	return c.wps.add(c.cpu, target, pred)
}

// ClearWatchpoint removes the watchpoint with the given id, if any.
func (c *Controller) ClearWatchpoint(id int) { c.wps.remove(id) }

// Watchpoints returns all watchpoints, sorted by id.
func (c *Controller) Watchpoints() []Watchpoint { return c.wps.list() }

// CallStack returns the call stack, innermost frame first.
func (c *Controller) CallStack() []Frame { return c.cstack.build(c.cpu.Regs.PC) }

// Render disassembles n instructions forward from anchor.
func (c *Controller) Render(anchor uint16, n int) Listing {
	l := Render(c.cpu.Bus, anchor, n)
	c.mark(&l)
	return l
}

// RenderAround disassembles the instructions surrounding pc. Lines before
// pc are a best-effort guess.
func (c *Controller) RenderAround(pc uint16, before, after int) Listing {
	l := RenderAround(c.cpu.Bus, pc, before, after)
	c.mark(&l)
	return l
}

func (c *Controller) mark(l *Listing) {
	for i := range l.Lines {
		ln := &l.Lines[i]
		ln.Current = ln.Addr == c.cpu.Regs.PC
		ln.Breakpoint = c.bps.has(ln.Addr)
	}
}

/* z80.Debugger implementation */

func (c *Controller) Reset() {
	c.cstack.reset()
	c.resetPC = c.cpu.Regs.PC
	c.wps.refresh(c.cpu)
}

func (c *Controller) Interrupt(prevpc, curpc uint16, isNMI bool) {
	flag := sffIRQ
	if isNMI {
		flag = sffNMI
	}
	c.cstack.push(prevpc, curpc, prevpc, flag)
}

func (c *Controller) Call(src, dst, ret uint16) {
	c.cstack.push(src, dst, ret, sffNone)
}

func (c *Controller) Return(pc uint16) {
	c.cstack.ret(pc)
}
