package debugger

import (
	"fmt"
	"slices"
	"strings"

	"speccy/hw/z80"
)

// Longest instruction without redundant prefixes.
const maxInstrLen = 4

// A Line is one disassembled instruction.
type Line struct {
	Addr  uint16
	Bytes []byte
	Text  string

	// Guess is set on lines decoded backward, their alignment may be wrong.
	Guess bool

	Current    bool // at the CPU program counter
	Breakpoint bool // a breakpoint is set at Addr
}

func (l Line) String() string {
	var mark [3]byte
	mark[0], mark[1], mark[2] = ' ', ' ', ' '
	if l.Breakpoint {
		mark[0] = '*'
	}
	if l.Current {
		mark[1] = '>'
	}
	if l.Guess {
		mark[2] = '?'
	}
	hex := make([]string, len(l.Bytes))
	for i, b := range l.Bytes {
		hex[i] = fmt.Sprintf("%02X", b)
	}
	return fmt.Sprintf("%s %04X  %-12s %s", mark[:], l.Addr, strings.Join(hex, " "), l.Text)
}

// A Listing is a window of disassembly. Exact is false when the lines
// decoded backward could have been aligned differently.
type Listing struct {
	Lines []Line
	Exact bool
}

func (l Listing) String() string {
	var sb strings.Builder
	for _, ln := range l.Lines {
		sb.WriteString(ln.String())
		sb.WriteByte('\n')
	}
	if !l.Exact {
		sb.WriteString("(lines marked ? are a guess, other alignments are possible)\n")
	}
	return sb.String()
}

func line(src z80.ByteSource, addr uint16) (Line, uint16) {
	in, dis := z80.DisasmAt(src, addr)
	return Line{Addr: addr, Bytes: dis.Buf, Text: dis.Text()}, addr + uint16(in.Len)
}

// Render disassembles n instructions from anchor onward. Forward decoding
// is always exact.
func Render(src z80.ByteSource, anchor uint16, n int) Listing {
	l := Listing{Exact: true, Lines: make([]Line, 0, n)}
	addr := anchor
	for range n {
		var ln Line
		ln, addr = line(src, addr)
		l.Lines = append(l.Lines, ln)
	}
	return l
}

// RenderAround disassembles up to before instructions preceding pc, then
// the instruction at pc and after instructions following it.
//
// Decoding backward is ambiguous: the tail of a multi-byte instruction can
// itself be a valid instruction. Every address up to before*maxInstrLen
// bytes ahead of pc is tried as a starting point, keeping the paths that
// land exactly on pc. Paths sharing their last instructions agree with each
// other, the largest group of agreeing paths wins. The listing is exact only
// if all converging paths agree.
func RenderAround(src z80.ByteSource, pc uint16, before, after int) Listing {
	back, exact := backward(src, pc, before)
	fwd := Render(src, pc, after+1)
	return Listing{
		Lines: append(back, fwd.Lines...),
		Exact: exact,
	}
}

type alignment struct {
	addrs []uint16 // instruction addresses of the longest path
	score int      // number of paths agreeing
}

func backward(src z80.ByteSource, pc uint16, n int) ([]Line, bool) {
	if n <= 0 {
		return nil, true
	}

	window := min(n*maxInstrLen, int(pc))
	if window == 0 {
		return nil, true
	}
	var paths [][]uint16
	for dist := window; dist > 0; dist-- {
		if p, ok := decodePath(src, pc-uint16(dist), dist); ok {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return nil, false
	}

	// Longest first so that each group is represented by its longest path.
	slices.SortStableFunc(paths, func(a, b []uint16) int { return len(b) - len(a) })

	var groups []alignment
	for _, p := range paths {
		i := slices.IndexFunc(groups, func(g alignment) bool { return hasSuffix(g.addrs, p) })
		if i == -1 {
			groups = append(groups, alignment{addrs: p, score: 1})
			continue
		}
		groups[i].score++
	}

	best := groups[0]
	for _, g := range groups[1:] {
		if g.score > best.score {
			best = g
		}
	}

	addrs := best.addrs
	if len(addrs) > n {
		addrs = addrs[len(addrs)-n:]
	}
	lines := make([]Line, len(addrs))
	for i, a := range addrs {
		lines[i], _ = line(src, a)
		lines[i].Guess = true
	}
	return lines, len(groups) == 1
}

// decodePath decodes forward from start and reports whether it lands
// exactly dist bytes further.
func decodePath(src z80.ByteSource, start uint16, dist int) ([]uint16, bool) {
	var addrs []uint16
	addr := start
	for consumed := 0; consumed < dist; {
		in := z80.Decode(src, addr)
		addrs = append(addrs, addr)
		addr += uint16(in.Len)
		consumed += int(in.Len)
		if consumed > dist {
			return nil, false
		}
	}
	return addrs, true
}

func hasSuffix(s, suffix []uint16) bool {
	return len(suffix) <= len(s) && slices.Equal(s[len(s)-len(suffix):], suffix)
}
