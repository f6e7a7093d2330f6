package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"golang.org/x/term"

	"speccy/emu"
	"speccy/emu/debugger"
	"speccy/emu/log"
	"speccy/hw/spectrum"
)

const prompt = "(speccy) "

// debugMain runs the machine, without display, under the debugger.
func debugMain(args Debug, cfg emu.Config) {
	rom, err := loadROM(args.ROMPath, cfg)
	checkf(err, "error reading ROM")

	m, err := spectrum.New(rom)
	checkf(err, "failed to start machine")
	log.AddContext(m.CPU)
	if args.Trace != nil {
		m.CPU.SetTraceOutput(args.Trace)
		defer args.Trace.Close()
	}
	if args.SNA != "" {
		checkf(loadSNA(m, args.SNA), "failed to load snapshot")
	}

	ctrl := debugger.NewController(m.CPU)
	sh := debugger.NewShell(ctrl, m, os.Stdout)

	bps := cfg.Debugger.Breakpoints
	for _, a := range args.Break {
		bps = append(bps, fmt.Sprintf("$%04X", uint16(a)))
	}
	for _, bp := range bps {
		checkf(sh.Exec("break "+bp), "invalid breakpoint %q", bp)
	}

	if args.Listen != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		srv := debugger.NewServer(ctrl, m)
		fmt.Printf("remote debugger listening on ws://%s/ws\n", args.Listen)
		checkf(srv.ListenAndServe(ctx, args.Listen), "remote debugger")
		return
	}

	// SIGINT stops a running machine, it doesn't kill the debugger.
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	defer signal.Stop(sigc)
	go func() {
		for range sigc {
			log.ModDbg.DebugZ("interrupted").End()
			ctrl.Stop()
		}
	}()

	fmt.Print(ctrl.Render(m.CPU.Regs.PC, 1))
	checkf(repl(sh, os.Stdin, os.Stdout), "debugger")
}

// repl reads and executes commands until quit or end of input. It edits
// lines with a terminal prompt when in is a terminal.
func repl(sh *debugger.Shell, in *os.File, out io.Writer) error {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return runScript(sh, in, out)
	}

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{in, out}, prompt)

	for {
		// Raw mode only while reading, so that Ctrl-C raises SIGINT while
		// commands run.
		state, err := term.MakeRaw(fd)
		if err != nil {
			return err
		}
		line, err := t.ReadLine()
		term.Restore(fd, state)

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if exec(sh, line, out) {
			return nil
		}
	}
}

// runScript executes one command per line of r.
func runScript(sh *debugger.Shell, r io.Reader, out io.Writer) error {
	scan := bufio.NewScanner(r)
	for scan.Scan() {
		if exec(sh, scan.Text(), out) {
			return nil
		}
	}
	return scan.Err()
}

// exec executes a command line and reports whether the user asked to quit.
func exec(sh *debugger.Shell, line string, out io.Writer) bool {
	err := sh.Exec(line)
	if errors.Is(err, debugger.ErrQuit) {
		return true
	}
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
	}
	return false
}
