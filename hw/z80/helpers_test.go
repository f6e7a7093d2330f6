package z80

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"speccy/hw/hwio"
)

/* cpu specific testing helpers */

type dumpline struct {
	off   uint16
	bytes []byte
}

// loadDump parses lines of the form "0100: 3e 05 06 07 # comment". Empty
// lines and lines starting with '#' are ignored.
func loadDump(tb testing.TB, dump string) []dumpline {
	tb.Helper()

	var lines []dumpline
	scan := bufio.NewScanner(strings.NewReader(dump))
	for scan.Scan() {
		line := scan.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		off, octets, ok := strings.Cut(line, ":")
		if !ok {
			tb.Fatalf("malformed line: %s", line)
		}

		ioff, err := strconv.ParseUint(strings.TrimSpace(off), 16, 16)
		if err != nil {
			tb.Fatalf("malformed offset %s: %s", off, err)
		}
		octets, _, _ = strings.Cut(octets, "#")
		var buf []byte
		for _, c := range octets {
			if c != ' ' && c != '\t' {
				buf = append(buf, byte(c))
			}
		}
		n, err := hex.Decode(buf, buf)
		if err != nil {
			tb.Fatalf("hex decode: %s", err)
		}
		lines = append(lines, dumpline{off: uint16(ioff), bytes: buf[:n]})
	}
	if scan.Err() != nil {
		tb.Fatalf("scan error: %s", scan.Err())
	}

	return lines
}

// newTestCPU returns a CPU with 64K of flat RAM loaded with dump.
func newTestCPU(tb testing.TB, dump string) *CPU {
	tb.Helper()

	ram := make([]byte, 0x10000)
	for _, line := range loadDump(tb, dump) {
		copy(ram[line.off:], line.bytes)
	}
	bus := hwio.NewTable("cpu")
	bus.MapMem(0x0000, &hwio.Mem{Name: "ram", Data: ram})

	cpu := NewCPU(bus, nil)
	if testing.Verbose() {
		cpu.SetTraceOutput(tbwriter{tb})
	}
	return cpu
}

// newProgCPU returns a CPU with prog loaded at address 0.
func newProgCPU(tb testing.TB, prog ...byte) *CPU {
	tb.Helper()

	ram := make([]byte, 0x10000)
	copy(ram, prog)
	bus := hwio.NewTable("cpu")
	bus.MapMem(0x0000, &hwio.Mem{Name: "ram", Data: ram})
	return NewCPU(bus, nil)
}

func wantMem(t *testing.T, cpu *CPU, dl dumpline) {
	t.Helper()

	mem := cpu.Bus.Snapshot(dl.off, dl.off+uint16(len(dl.bytes))-1)
	if !bytes.Equal(mem, dl.bytes) {
		t.Errorf("mem mismatch at 0x%04x.\ngot:  % x\nwant: % x", dl.off, mem, dl.bytes)
	}
}

// stepAndCheckState executes nsteps steps then checks the given states,
// passed as name/value pairs. Names are register names ("A", "BC", "PC",
// ...), "F" for the whole flag register, "F" followed by flag letters
// (e.g. "Fzc") for individual flags, "clock", or "mem" followed by a dump.
func stepAndCheckState(t *testing.T, cpu *CPU, nsteps int, states ...any) {
	t.Helper()

	if len(states)%2 != 0 {
		panic("odd number of states")
	}

	for range nsteps {
		cpu.Step()
	}

	for i := 0; i < len(states); i += 2 {
		s := states[i].(string)
		switch {
		case s == "F":
			if got, want := cpu.Regs.F(), Flags(states[i+1].(uint8)); got != want {
				t.Errorf("got F=$%02X(%s), want $%02X(%s)", uint8(got), got, uint8(want), want)
			}
		case len(s) > 1 && s[0] == 'F':
			want := states[i+1].(uint8)
			for j := 1; j < len(s); j++ {
				flag, ok := flagLetters[s[j]]
				if !ok {
					panic("unknown flag: " + string(s[j]))
				}
				if got := cpu.Regs.F().bit(flag); got != want {
					t.Errorf("got F%c=%d, want %d (F=%s)", s[j], got, want, cpu.Regs.F())
				}
			}
		case s == "clock":
			if got, want := cpu.Clock(), int64(states[i+1].(int)); got != want {
				t.Errorf("got clock=%d, want %d", got, want)
			}
		case s == "mem":
			for _, line := range loadDump(t, states[i+1].(string)) {
				wantMem(t, cpu, line)
			}
		default:
			reg, ok := RegByName(s)
			if !ok {
				panic("unknown state: " + s)
			}
			if reg.Is16() {
				if got, want := cpu.Regs.Get16(reg), states[i+1].(uint16); got != want {
					t.Errorf("got %s=$%04X, want $%04X", s, got, want)
				}
			} else {
				if got, want := cpu.Regs.Get8(reg), states[i+1].(uint8); got != want {
					t.Errorf("got %s=$%02X, want $%02X", s, got, want)
				}
			}
		}
	}

	if t.Failed() {
		t.FailNow()
	}
}

var flagLetters = map[byte]Flags{
	's': FlagS, 'z': FlagZ, 'y': FlagY, 'h': FlagH,
	'x': FlagX, 'p': FlagPV, 'n': FlagN, 'c': FlagC,
}

type tbwriter struct {
	testing.TB
}

func (t tbwriter) Write(p []byte) (int, error) {
	t.TB.Helper()
	t.TB.Log(string(bytes.TrimSpace(p)))
	return len(p), nil
}

func TestLoadDump(t *testing.T) {
	tests := []struct {
		dump string
		want []dumpline
	}{
		{
			dump: `01f0: 0f 0e 0d`,
			want: []dumpline{{0x01f0, []byte{0x0f, 0x0e, 0x0d}}},
		},
		{
			dump: `
# comment
01f0: 0f 0e 0d 0c
0210: 01
`,
			want: []dumpline{
				{0x01f0, []byte{0x0f, 0x0e, 0x0d, 0x0c}},
				{0x0210, []byte{0x01}},
			},
		},
	}
	for _, tt := range tests {
		got := loadDump(t, tt.dump)
		if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(dumpline{})); diff != "" {
			t.Errorf("loadDump mismatch (-want +got):\n%s", diff)
		}
	}
}
