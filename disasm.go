package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"speccy/hw/z80"
)

// disasmMain writes the disassembly of a binary file to w, one instruction
// per line.
func disasmMain(args Disasm, w io.Writer) error {
	data, err := os.ReadFile(args.Path)
	if err != nil {
		return err
	}
	return disassemble(w, data, uint16(args.Origin), uint16(args.Start), args.Count)
}

func disassemble(w io.Writer, data []byte, origin, start uint16, count int) error {
	if start < origin {
		start = origin
	}
	end := int(origin) + len(data)
	if int(start) >= end {
		return fmt.Errorf("start address $%04X outside of file ($%04X-$%04X)", start, origin, end-1)
	}

	bw := bufio.NewWriter(w)
	src := z80.Buffer{Origin: origin, Data: data}
	pc := int(start)
	for n := 0; pc < end && (count == 0 || n < count); n++ {
		in, op := z80.DisasmAt(src, uint16(pc))
		fmt.Fprintln(bw, op)
		pc += int(in.Len)
	}
	return bw.Flush()
}
