package debugger

import (
	"fmt"
	"slices"
	"strings"

	"speccy/hw/hwio"
	"speccy/hw/z80"
)

// TargetKind is the kind of location a watchpoint observes.
type TargetKind uint8

const (
	TargetReg   TargetKind = iota // CPU register
	TargetMem8                    // memory byte
	TargetMem16                   // little-endian memory word
)

// A Target is a register or a memory location.
type Target struct {
	Kind TargetKind
	Reg  z80.Reg
	Addr uint16
}

func (t Target) String() string {
	switch t.Kind {
	case TargetMem8:
		return fmt.Sprintf("($%04X)", t.Addr)
	case TargetMem16:
		return fmt.Sprintf("w($%04X)", t.Addr)
	}
	return t.Reg.String()
}

func (t Target) value(cpu *z80.CPU) uint16 {
	switch t.Kind {
	case TargetMem8:
		return uint16(cpu.Bus.Peek8(t.Addr))
	case TargetMem16:
		return hwio.Peek16(cpu.Bus, t.Addr)
	}
	return cpu.Regs.Get(t.Reg)
}

// ParseTarget parses a register name, "(expr)" for a memory byte or
// "w(expr)" for a memory word. Address expressions are evaluated once, with
// the current register values.
func ParseTarget(regs *z80.RegisterFile, s string) (Target, error) {
	kind := TargetMem8
	if len(s) > 1 && (s[0] == 'w' || s[0] == 'W') && s[1] == '(' {
		kind = TargetMem16
		s = s[1:]
	}
	if inner, ok := parens(s); ok {
		addr, err := evalExpr(regs, inner)
		if err != nil {
			return Target{}, fmt.Errorf("watch target %q: %w", s, err)
		}
		return Target{Kind: kind, Addr: addr}, nil
	}

	reg, ok := z80.RegByName(s)
	if !ok {
		return Target{}, fmt.Errorf("unknown watch target %q", s)
	}
	return Target{Kind: TargetReg, Reg: reg}, nil
}

func parens(s string) (string, bool) {
	if len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' {
		return strings.TrimSpace(s[1 : len(s)-1]), true
	}
	return "", false
}

// PredKind is the condition tested by a watchpoint.
type PredKind uint8

const (
	PredChange PredKind = iota
	PredEq
	PredNe
	PredGt
	PredLt
)

var predNames = [...]string{"change", "eq", "ne", "gt", "lt"}

// A Predicate fires a watchpoint. Change fires whenever the value differs
// from the previous one. The comparisons fire when the value starts to
// satisfy them.
type Predicate struct {
	Kind  PredKind
	Value uint16
}

func (p Predicate) String() string {
	if p.Kind == PredChange {
		return predNames[p.Kind]
	}
	return fmt.Sprintf("%s $%X", predNames[p.Kind], p.Value)
}

func (p Predicate) holds(v uint16) bool {
	switch p.Kind {
	case PredEq:
		return v == p.Value
	case PredNe:
		return v != p.Value
	case PredGt:
		return v > p.Value
	case PredLt:
		return v < p.Value
	}
	return false
}

func (p Predicate) fires(prev, cur uint16) bool {
	if p.Kind == PredChange {
		return prev != cur
	}
	return p.holds(cur) && !p.holds(prev)
}

// ParsePredicate parses a predicate from its words: nothing or "change",
// or one of "eq", "ne", "gt", "lt" followed by a number.
func ParsePredicate(args []string) (Predicate, error) {
	if len(args) == 0 {
		return Predicate{Kind: PredChange}, nil
	}
	idx := slices.Index(predNames[:], strings.ToLower(args[0]))
	if idx == -1 {
		return Predicate{}, fmt.Errorf("unknown predicate %q", args[0])
	}
	p := Predicate{Kind: PredKind(idx)}
	if p.Kind == PredChange {
		if len(args) != 1 {
			return Predicate{}, fmt.Errorf("change takes no value")
		}
		return p, nil
	}
	if len(args) != 2 {
		return Predicate{}, fmt.Errorf("%s requires a value", args[0])
	}
	v, err := parseNumber(args[1])
	if err != nil {
		return Predicate{}, err
	}
	p.Value = v
	return p, nil
}

// A Watchpoint stops Run after the instruction that made its predicate
// fire.
type Watchpoint struct {
	ID     int
	Target Target
	Pred   Predicate

	// last observed value.
	prev uint16
}

type watchpoints struct {
	wps    []*Watchpoint
	nextID int
}

func (w *watchpoints) add(cpu *z80.CPU, t Target, p Predicate) int {
	w.nextID++
	w.wps = append(w.wps, &Watchpoint{
		ID:     w.nextID,
		Target: t,
		Pred:   p,
		prev:   t.value(cpu),
	})
	return w.nextID
}

func (w *watchpoints) remove(id int) {
	w.wps = slices.DeleteFunc(w.wps, func(wp *Watchpoint) bool { return wp.ID == id })
}

func (w *watchpoints) list() []Watchpoint {
	list := make([]Watchpoint, len(w.wps))
	for i, wp := range w.wps {
		list[i] = *wp
	}
	return list
}

// refresh records current values without evaluating predicates.
func (w *watchpoints) refresh(cpu *z80.CPU) {
	for _, wp := range w.wps {
		wp.prev = wp.Target.value(cpu)
	}
}

// eval updates all watchpoints and returns the first one that fired.
func (w *watchpoints) eval(cpu *z80.CPU) (fired *Watchpoint, old, cur uint16, ok bool) {
	for _, wp := range w.wps {
		v := wp.Target.value(cpu)
		if !ok && wp.Pred.fires(wp.prev, v) {
			fired, old, cur, ok = wp, wp.prev, v, true
		}
		wp.prev = v
	}
	return fired, old, cur, ok
}
