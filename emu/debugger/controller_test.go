package debugger

import (
	"math"
	"runtime"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"speccy/hw/z80"
)

func TestBreakpointStop(t *testing.T) {
	ctrl := newTestController(t,
		0x00,       // 0000 NOP
		0x00,       // 0001 NOP
		0x00,       // 0002 NOP
		0x3C,       // 0003 INC A
		0x18, 0xFE, // 0004 JR $0004
	)
	ctrl.CPU().Regs.SetA(0x10)
	ctrl.SetBreakpoint(0x0003)

	r := ctrl.Run()
	if r.State != StoppedBreakpoint || r.PC != 0x0003 {
		t.Fatalf("Run() = %+v, want breakpoint stop at $0003", r)
	}
	if got := ctrl.State(); got != StoppedBreakpoint {
		t.Errorf("state = %s, want %s", got, StoppedBreakpoint)
	}
	if pc := ctrl.CPU().Regs.PC; pc != 0x0003 {
		t.Errorf("PC = $%04X, want $0003", pc)
	}
	if a := ctrl.CPU().Regs.A(); a != 0x10 {
		t.Errorf("A = $%02X, instruction at breakpoint must not have run", a)
	}

	// Resuming executes the instruction at the breakpoint.
	ctrl.SetBreakpoint(0x0004)
	r = ctrl.Run()
	if r.State != StoppedBreakpoint || r.PC != 0x0004 {
		t.Fatalf("Run() = %+v, want breakpoint stop at $0004", r)
	}
	if a := ctrl.CPU().Regs.A(); a != 0x11 {
		t.Errorf("A = $%02X, want $11", a)
	}
}

func TestDisabledBreakpoint(t *testing.T) {
	ctrl := newTestController(t, 0x00, 0x00, 0x00, 0x18, 0xFE)
	ctrl.SetBreakpoint(0x0001)
	ctrl.SetBreakpoint(0x0003)
	if !ctrl.EnableBreakpoint(0x0001, false) {
		t.Fatal("EnableBreakpoint: breakpoint not found")
	}
	if ctrl.EnableBreakpoint(0x0002, true) {
		t.Fatal("EnableBreakpoint: found a breakpoint never set")
	}

	if r := ctrl.Run(); r.PC != 0x0003 {
		t.Fatalf("Run() stopped at $%04X, want $0003", r.PC)
	}

	want := []Breakpoint{
		{Addr: 0x0001, Enabled: false},
		{Addr: 0x0003, Enabled: true},
	}
	if diff := cmp.Diff(want, ctrl.Breakpoints()); diff != "" {
		t.Errorf("breakpoints mismatch (-want +got):\n%s", diff)
	}
}

func TestBreakpointIdempotence(t *testing.T) {
	ctrl := newTestController(t)

	ctrl.SetBreakpoint(0x1234)
	ctrl.SetBreakpoint(0x1234)
	ctrl.ClearBreakpoint(0x1234)

	if bps := ctrl.Breakpoints(); len(bps) != 0 {
		t.Errorf("breakpoints = %v, want none", bps)
	}
	if ctrl.bps.hit(0x1234) {
		t.Errorf("breakpoint still active")
	}

	// Clearing a missing breakpoint is a no-op.
	ctrl.ClearBreakpoint(0x4321)
}

func TestStepIgnoresBreakpoints(t *testing.T) {
	ctrl := newTestController(t, 0x00, 0x00)
	ctrl.SetBreakpoint(0x0000)

	info := ctrl.Step()
	if info.PC != 0x0000 {
		t.Errorf("step PC = $%04X, want $0000", info.PC)
	}
	if pc := ctrl.CPU().Regs.PC; pc != 0x0001 {
		t.Errorf("PC = $%04X, want $0001", pc)
	}
	if st := ctrl.State(); st != Idle {
		t.Errorf("state = %s, want %s", st, Idle)
	}
}

func TestStepN(t *testing.T) {
	ctrl := newTestController(t,
		0x3E, 0x01, // LD A,$01
		0x06, 0x02, // LD B,$02
		0x80, // ADD A,B
		0x00, // NOP
	)
	ctrl.StepN(4)

	cpu := ctrl.CPU()
	if pc := cpu.Regs.PC; pc != 6 {
		t.Errorf("PC = %d, want 6", pc)
	}
	if clk := cpu.Clock(); clk != 7+7+4+4 {
		t.Errorf("clock = %d, want %d", clk, 7+7+4+4)
	}
	if a := cpu.Regs.A(); a != 3 {
		t.Errorf("A = %d, want 3", a)
	}
}

func TestWatchpointRegisterChange(t *testing.T) {
	ctrl := newTestController(t,
		0x06, 0x05, // 0000 LD B,5
		0x78,       // 0002 LD A,B
		0x04,       // 0003 INC B
		0x18, 0xFE, // 0004 JR $0004
	)
	target, err := ParseTarget(&ctrl.CPU().Regs, "B")
	if err != nil {
		t.Fatal(err)
	}
	id := ctrl.SetWatchpoint(target, Predicate{Kind: PredChange})

	r := ctrl.Run()
	if r.State != StoppedWatchpoint || r.Watch.ID != id {
		t.Fatalf("Run() = %+v, want watchpoint %d", r, id)
	}
	if r.PC != 0x0002 || r.Old != 0 || r.New != 5 {
		t.Errorf("first stop: pc=$%04X %d -> %d, want pc=$0002 0 -> 5", r.PC, r.Old, r.New)
	}

	// LD A,B doesn't modify B, INC B does.
	r = ctrl.Run()
	if r.State != StoppedWatchpoint {
		t.Fatalf("Run() = %+v, want watchpoint", r)
	}
	if r.PC != 0x0004 || r.Old != 5 || r.New != 6 {
		t.Errorf("second stop: pc=$%04X %d -> %d, want pc=$0004 5 -> 6", r.PC, r.Old, r.New)
	}
	if st := ctrl.State(); st != StoppedWatchpoint {
		t.Errorf("state = %s, want %s", st, StoppedWatchpoint)
	}
}

func TestWatchpointPredicates(t *testing.T) {
	// INC A; JR $0000
	prog := []byte{0x3C, 0x18, 0xFD}

	tests := []struct {
		pred   string
		args   []string
		start  uint8
		want   uint8
		rounds int // number of stops
	}{
		{pred: "eq 3", args: []string{"eq", "3"}, start: 0, want: 3, rounds: 2},
		{pred: "ne 0", args: []string{"ne", "0"}, start: 0, want: 1, rounds: 2},
		{pred: "gt 0xFD", args: []string{"gt", "0xFD"}, start: 0, want: 0xFE, rounds: 2},
		{pred: "lt 2", args: []string{"lt", "2"}, start: 0, want: 0, rounds: 2},
	}
	for _, tt := range tests {
		t.Run(tt.pred, func(t *testing.T) {
			ctrl := newTestController(t, prog...)
			ctrl.CPU().Regs.SetA(tt.start)

			p, err := ParsePredicate(tt.args)
			if err != nil {
				t.Fatal(err)
			}
			ctrl.SetWatchpoint(Target{Kind: TargetReg, Reg: z80.RegA}, p)

			prevClock := ctrl.CPU().Clock()
			for i := range tt.rounds {
				r := ctrl.Run()
				if r.State != StoppedWatchpoint {
					t.Fatalf("round %d: Run() = %+v", i, r)
				}
				if a := ctrl.CPU().Regs.A(); a != tt.want {
					t.Fatalf("round %d: A = $%02X, want $%02X", i, a, tt.want)
				}
				if r.PC != 0x0001 {
					t.Fatalf("round %d: stopped at $%04X, want $0001", i, r.PC)
				}
				// Edge triggered: the next stop needs A to wrap around.
				if clk := ctrl.CPU().Clock(); i > 0 && clk-prevClock < 256*4 {
					t.Fatalf("round %d: stopped again after %d T-states", i, clk-prevClock)
				}
				prevClock = ctrl.CPU().Clock()
			}
		})
	}
}

func TestMemoryWatchpoint(t *testing.T) {
	ctrl := newTestController(t,
		0x21, 0x00, 0x40, // 0000 LD HL,$4000
		0x34,       // 0003 INC (HL)
		0x18, 0xFD, // 0004 JR $0003
	)
	cpu := ctrl.CPU()
	cpu.Bus.Write8(0x4000, 0xFE)

	tgt, err := ParseTarget(&cpu.Regs, "(0x4000)")
	if err != nil {
		t.Fatal(err)
	}
	ctrl.SetWatchpoint(tgt, Predicate{Kind: PredEq, Value: 0})

	r := ctrl.Run()
	if r.State != StoppedWatchpoint || r.PC != 0x0004 {
		t.Fatalf("Run() = %+v, want watchpoint stop at $0004", r)
	}
	if v := cpu.Bus.Peek8(0x4000); v != 0 {
		t.Errorf("($4000) = $%02X, want 0", v)
	}
	if r.Old != 0xFF || r.New != 0 {
		t.Errorf("old/new = $%02X/$%02X, want $FF/$00", r.Old, r.New)
	}

	// Word watchpoint sees the carry into the high byte.
	ctrl.ClearWatchpoint(1)
	tgt, err = ParseTarget(&cpu.Regs, "w(HL)")
	if err != nil {
		t.Fatal(err)
	}
	if want := (Target{Kind: TargetMem16, Addr: 0x4000}); tgt != want {
		t.Fatalf("ParseTarget(w(HL)) = %+v, want %+v", tgt, want)
	}
	cpu.Bus.Write8(0x4001, 0x12)
	ctrl.SetWatchpoint(tgt, Predicate{Kind: PredGt, Value: 0x1202})
	r = ctrl.Run()
	if r.State != StoppedWatchpoint || r.New != 0x1203 {
		t.Fatalf("Run() = %+v, want word watchpoint at $1203", r)
	}
}

func TestWatchpointList(t *testing.T) {
	ctrl := newTestController(t)
	a := ctrl.SetWatchpoint(Target{Kind: TargetReg, Reg: z80.RegA}, Predicate{})
	b := ctrl.SetWatchpoint(Target{Kind: TargetMem8, Addr: 0x5C00}, Predicate{Kind: PredEq, Value: 1})
	ctrl.ClearWatchpoint(a)
	ctrl.ClearWatchpoint(42)

	wps := ctrl.Watchpoints()
	if len(wps) != 1 || wps[0].ID != b {
		t.Fatalf("watchpoints = %+v, want only %d", wps, b)
	}
	if got, want := wps[0].Target.String()+" "+wps[0].Pred.String(), "($5C00) eq $1"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStop(t *testing.T) {
	ctrl := newTestController(t, 0x18, 0xFE) // JR $0000

	done := make(chan StopReason)
	go func() { done <- ctrl.Run() }()

	for ctrl.State() != Running {
		runtime.Gosched()
	}
	ctrl.Stop()

	r := <-done
	if r.State != Idle {
		t.Errorf("Run() = %+v, want idle", r)
	}
	if st := ctrl.State(); st != Idle {
		t.Errorf("state = %s, want %s", st, Idle)
	}
}

func TestStopStepN(t *testing.T) {
	ctrl := newTestController(t, 0x18, 0xFE) // JR $0000

	done := make(chan struct{})
	go func() {
		ctrl.StepN(math.MaxInt)
		close(done)
	}()

	for ctrl.State() != SteppingOne {
		runtime.Gosched()
	}
	ctrl.Stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("StepN still running after Stop")
	}
	if st := ctrl.State(); st != Idle {
		t.Errorf("state = %s, want %s", st, Idle)
	}
}

func TestControllerCallStack(t *testing.T) {
	ctrl := newTestController(t,
		0xCD, 0x10, 0x00, // 0000 CALL $0010
		0x18, 0xFE, // 0003 JR $0003
	)
	cpu := ctrl.CPU()
	cpu.Bus.Write8(0x0010, 0x00) // NOP
	cpu.Bus.Write8(0x0011, 0xC9) // RET

	ctrl.Step()
	want := []Frame{
		{Entry: 0x0010, PC: 0x0010},
		{PC: 0x0000, Bottom: true},
	}
	if diff := cmp.Diff(want, ctrl.CallStack()); diff != "" {
		t.Fatalf("call stack after CALL (-want +got):\n%s", diff)
	}

	ctrl.StepN(2)
	want = []Frame{{PC: 0x0003, Bottom: true}}
	if diff := cmp.Diff(want, ctrl.CallStack()); diff != "" {
		t.Fatalf("call stack after RET (-want +got):\n%s", diff)
	}

	ctrl.Step()
	ctrl.Step()
	cpu.Reset()
	if n := len(ctrl.CallStack()); n != 1 {
		t.Errorf("call stack has %d frames after reset, want 1", n)
	}
}

func TestStopReasonString(t *testing.T) {
	wp := &Watchpoint{ID: 2, Target: Target{Kind: TargetMem16, Addr: 0x5C78}, Pred: Predicate{Kind: PredChange}}
	tests := []struct {
		r    StopReason
		want string
	}{
		{StopReason{State: StoppedBreakpoint, PC: 0x0038}, "breakpoint at $0038"},
		{StopReason{State: Idle, PC: 0x1234}, "stopped at $1234"},
		{
			StopReason{State: StoppedWatchpoint, PC: 0x0040, Watch: wp, Old: 1, New: 2},
			"watchpoint 2 (w($5C78) change): $0001 -> $0002 at $0040",
		},
	}
	for _, tt := range tests {
		if got := tt.r.String(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}
