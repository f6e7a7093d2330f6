package debugger

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"speccy/hw/hwio"
	"speccy/hw/z80"
)

// ErrQuit is returned by Exec when the user asked to quit.
var ErrQuit = errors.New("quit")

// A Machine is the hardware the debugged CPU belongs to.
type Machine interface {
	Reset()
	MemoryMap() []hwio.Region
}

// A Shell executes textual debugger commands.
//
// Commands can be abbreviated to any unique prefix, an empty line repeats
// the previous command.
type Shell struct {
	ctrl *Controller
	mach Machine
	out  io.Writer

	cmds []command
	last string
}

type command struct {
	name string
	args string
	help string
	run  func(sh *Shell, args []string) error
}

// NewShell returns a Shell writing command output to out. mach may be nil,
// in which case the map command is unavailable and reset only resets the
// CPU.
func NewShell(ctrl *Controller, mach Machine, out io.Writer) *Shell {
	sh := &Shell{ctrl: ctrl, mach: mach, out: out}
	sh.cmds = []command{
		{"help", "[command]", "show help", (*Shell).help},
		{"quit", "", "exit the debugger", (*Shell).quit},
		{"regs", "", "show CPU registers", (*Shell).regs},
		{"print", "<expr>...", "print registers, (addr) bytes or w(addr) words", (*Shell).print},
		{"mem", "<addr> [len]", "hex dump memory", (*Shell).mem},
		{"step", "[n]", "execute n instructions (default 1)", (*Shell).step},
		{"continue", "", "run until a breakpoint or watchpoint", (*Shell).cont},
		{"break", "<addr>", "set a breakpoint", (*Shell).brk},
		{"delete", "<addr>", "delete a breakpoint", (*Shell).del},
		{"enable", "<addr>", "enable a breakpoint", (*Shell).enable},
		{"disable", "<addr>", "disable a breakpoint", (*Shell).disable},
		{"breakpoints", "", "list breakpoints", (*Shell).breakpoints},
		{"watch", "<target> [change|eq N|ne N|gt N|lt N]", "set a watchpoint on a register, (addr) or w(addr)", (*Shell).watch},
		{"unwatch", "<id>", "delete a watchpoint", (*Shell).unwatch},
		{"watchpoints", "", "list watchpoints", (*Shell).watchpoints},
		{"disasm", "[addr] [n]", "disassemble n instructions from addr (default PC)", (*Shell).disasm},
		{"around", "[before] [after]", "disassemble around PC", (*Shell).around},
		{"stack", "", "show the call stack", (*Shell).stack},
		{"map", "", "show the memory map", (*Shell).memMap},
		{"reset", "", "reset the machine", (*Shell).reset},
	}
	return sh
}

// Exec executes a command line.
func (sh *Shell) Exec(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		line = sh.last
	}
	if line == "" {
		return nil
	}
	sh.last = line

	fields := strings.Fields(line)
	cmd, err := sh.lookup(fields[0])
	if err != nil {
		return err
	}
	return cmd.run(sh, fields[1:])
}

func (sh *Shell) lookup(name string) (*command, error) {
	name = strings.ToLower(name)
	var matches []*command
	for i := range sh.cmds {
		cmd := &sh.cmds[i]
		if cmd.name == name {
			return cmd, nil
		}
		if strings.HasPrefix(cmd.name, name) {
			matches = append(matches, cmd)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("unknown command %q, try help", name)
	case 1:
		return matches[0], nil
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.name
	}
	return nil, fmt.Errorf("ambiguous command %q: %s", name, strings.Join(names, ", "))
}

func (sh *Shell) printf(format string, args ...any) {
	fmt.Fprintf(sh.out, format, args...)
}

func (sh *Shell) regsFile() *z80.RegisterFile { return &sh.ctrl.cpu.Regs }

func (sh *Shell) addr(s string) (uint16, error) { return evalExpr(sh.regsFile(), s) }

func nargs(args []string, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		return fmt.Errorf("wrong number of arguments")
	}
	return nil
}

func (sh *Shell) help(args []string) error {
	if err := nargs(args, 0, 1); err != nil {
		return err
	}
	if len(args) == 1 {
		cmd, err := sh.lookup(args[0])
		if err != nil {
			return err
		}
		sh.printf("%s %s\n    %s\n", cmd.name, cmd.args, cmd.help)
		return nil
	}
	for _, cmd := range sh.cmds {
		sh.printf("%-12s %-40s %s\n", cmd.name, cmd.args, cmd.help)
	}
	return nil
}

func (sh *Shell) quit([]string) error { return ErrQuit }

func (sh *Shell) regs(args []string) error {
	if err := nargs(args, 0, 0); err != nil {
		return err
	}
	cpu := sh.ctrl.cpu
	sh.printf("%s\n", cpu.Regs.String())
	sh.printf("T:%d %s\n", cpu.Clock(), cpu.State())
	return nil
}

func (sh *Shell) print(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("print: missing expression")
	}
	regs := sh.regsFile()
	for _, arg := range args {
		if reg, ok := z80.RegByName(arg); ok {
			if reg.Is16() {
				sh.printf("%s = $%04X\n", reg, regs.Get(reg))
			} else if reg == z80.RegF {
				sh.printf("F = $%02X %s\n", regs.Get(reg), regs.F())
			} else {
				sh.printf("%s = $%02X\n", reg, regs.Get(reg))
			}
			continue
		}

		t, err := ParseTarget(regs, arg)
		if err == nil {
			v := t.value(sh.ctrl.cpu)
			if t.Kind == TargetMem16 {
				sh.printf("%s = $%04X\n", t, v)
			} else {
				sh.printf("%s = $%02X\n", t, v)
			}
			continue
		}

		v, err := sh.addr(arg)
		if err != nil {
			return err
		}
		sh.printf("%s = $%04X (%d)\n", arg, v, v)
	}
	return nil
}

func (sh *Shell) mem(args []string) error {
	if err := nargs(args, 1, 2); err != nil {
		return err
	}
	begin, err := sh.addr(args[0])
	if err != nil {
		return err
	}
	n := 64
	if len(args) == 2 {
		v, err := parseNumber(args[1])
		if err != nil {
			return err
		}
		n = max(int(v), 1)
	}
	end := min(int(begin)+n-1, 0xFFFF)

	buf := sh.ctrl.cpu.Bus.Snapshot(begin, uint16(end))
	for off := 0; off < len(buf); off += 16 {
		row := buf[off:min(off+16, len(buf))]
		sh.printf("%04X ", int(begin)+off)
		for _, b := range row {
			sh.printf(" %02X", b)
		}
		sh.printf("%s  |", strings.Repeat("   ", 16-len(row)))
		for _, b := range row {
			if b < 0x20 || b > 0x7E {
				b = '.'
			}
			sh.printf("%c", b)
		}
		sh.printf("|\n")
	}
	return nil
}

func (sh *Shell) current() {
	pc := sh.ctrl.cpu.Regs.PC
	sh.printf("%s", sh.ctrl.Render(pc, 1))
}

func (sh *Shell) step(args []string) error {
	if err := nargs(args, 0, 1); err != nil {
		return err
	}
	n := 1
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return fmt.Errorf("step: invalid count %q", args[0])
		}
		n = v
	}
	sh.ctrl.StepN(n)
	sh.current()
	return nil
}

func (sh *Shell) cont(args []string) error {
	if err := nargs(args, 0, 0); err != nil {
		return err
	}
	reason := sh.ctrl.Run()
	sh.printf("%s\n", reason)
	sh.current()
	return nil
}

func (sh *Shell) brkAddr(args []string) (uint16, error) {
	if err := nargs(args, 1, 1); err != nil {
		return 0, err
	}
	return sh.addr(args[0])
}

func (sh *Shell) brk(args []string) error {
	addr, err := sh.brkAddr(args)
	if err != nil {
		return err
	}
	sh.ctrl.SetBreakpoint(addr)
	sh.printf("breakpoint at $%04X\n", addr)
	return nil
}

func (sh *Shell) del(args []string) error {
	addr, err := sh.brkAddr(args)
	if err != nil {
		return err
	}
	sh.ctrl.ClearBreakpoint(addr)
	return nil
}

func (sh *Shell) enable(args []string) error {
	addr, err := sh.brkAddr(args)
	if err != nil {
		return err
	}
	sh.ctrl.EnableBreakpoint(addr, true)
	return nil
}

func (sh *Shell) disable(args []string) error {
	addr, err := sh.brkAddr(args)
	if err != nil {
		return err
	}
	sh.ctrl.EnableBreakpoint(addr, false)
	return nil
}

func (sh *Shell) breakpoints(args []string) error {
	if err := nargs(args, 0, 0); err != nil {
		return err
	}
	bps := sh.ctrl.Breakpoints()
	if len(bps) == 0 {
		sh.printf("no breakpoints\n")
	}
	for _, bp := range bps {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}
		sh.printf("$%04X %s\n", bp.Addr, status)
	}
	return nil
}

func (sh *Shell) watch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("watch: missing target")
	}
	t, err := ParseTarget(sh.regsFile(), args[0])
	if err != nil {
		return err
	}
	p, err := ParsePredicate(args[1:])
	if err != nil {
		return err
	}
	id := sh.ctrl.SetWatchpoint(t, p)
	sh.printf("watchpoint %d: %s %s\n", id, t, p)
	return nil
}

func (sh *Shell) unwatch(args []string) error {
	if err := nargs(args, 1, 1); err != nil {
		return err
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("unwatch: invalid id %q", args[0])
	}
	sh.ctrl.ClearWatchpoint(id)
	return nil
}

func (sh *Shell) watchpoints(args []string) error {
	if err := nargs(args, 0, 0); err != nil {
		return err
	}
	wps := sh.ctrl.Watchpoints()
	if len(wps) == 0 {
		sh.printf("no watchpoints\n")
	}
	for _, wp := range wps {
		sh.printf("%d: %s %s\n", wp.ID, wp.Target, wp.Pred)
	}
	return nil
}

func (sh *Shell) disasm(args []string) error {
	if err := nargs(args, 0, 2); err != nil {
		return err
	}
	addr, n := sh.ctrl.cpu.Regs.PC, 10
	if len(args) > 0 {
		v, err := sh.addr(args[0])
		if err != nil {
			return err
		}
		addr = v
	}
	if len(args) > 1 {
		v, err := strconv.Atoi(args[1])
		if err != nil || v < 1 {
			return fmt.Errorf("disasm: invalid count %q", args[1])
		}
		n = v
	}
	sh.printf("%s", sh.ctrl.Render(addr, n))
	return nil
}

func (sh *Shell) around(args []string) error {
	if err := nargs(args, 0, 2); err != nil {
		return err
	}
	counts := []int{5, 5}
	for i, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil || v < 0 {
			return fmt.Errorf("around: invalid count %q", arg)
		}
		counts[i] = v
	}
	sh.printf("%s", sh.ctrl.RenderAround(sh.ctrl.cpu.Regs.PC, counts[0], counts[1]))
	return nil
}

func (sh *Shell) stack(args []string) error {
	if err := nargs(args, 0, 0); err != nil {
		return err
	}
	for i, f := range sh.ctrl.CallStack() {
		sh.printf("#%-2d %s\n", i, f)
	}
	return nil
}

func (sh *Shell) memMap(args []string) error {
	if sh.mach == nil {
		return fmt.Errorf("map: no machine attached")
	}
	for _, r := range sh.mach.MemoryMap() {
		sh.printf("%s\n", r)
	}
	return nil
}

func (sh *Shell) reset(args []string) error {
	if err := nargs(args, 0, 0); err != nil {
		return err
	}
	if sh.mach != nil {
		sh.mach.Reset()
	} else {
		sh.ctrl.cpu.Reset()
	}
	sh.current()
	return nil
}
