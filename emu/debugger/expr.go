package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"speccy/hw/z80"
)

// parseNumber parses a decimal number, or an hexadecimal one prefixed with
// 0x or $.
func parseNumber(s string) (uint16, error) {
	base := 10
	digits := s
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		base, digits = 16, s[2:]
	case strings.HasPrefix(s, "$"):
		base, digits = 16, s[1:]
	}
	v, err := strconv.ParseUint(digits, base, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return uint16(v), nil
}

// evalExpr evaluates an address expression: a number, a register, or a
// register or number followed by +n or -n.
func evalExpr(regs *z80.RegisterFile, s string) (uint16, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty expression")
	}

	base, off, sign := s, "", byte(0)
	if i := strings.LastIndexAny(s, "+-"); i > 0 {
		base, off, sign = strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:]), s[i]
	}

	v, err := evalTerm(regs, base)
	if err != nil {
		return 0, err
	}
	if sign == 0 {
		return v, nil
	}

	d, err := parseNumber(off)
	if err != nil {
		return 0, err
	}
	if sign == '-' {
		return v - d, nil
	}
	return v + d, nil
}

func evalTerm(regs *z80.RegisterFile, s string) (uint16, error) {
	if reg, ok := z80.RegByName(s); ok {
		return regs.Get(reg), nil
	}
	return parseNumber(s)
}
