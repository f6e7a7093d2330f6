package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"speccy/emu"
)

func main() {
	cli, cmd := parseArgs(os.Args[1:])

	switch cmd {
	case "version":
		printVersion()
		return
	case "disasm":
		checkf(disasmMain(cli.Disasm, os.Stdout), "disassembly failed")
		return
	case "ctl":
		checkf(ctlMain(cli.Ctl), "remote control failed")
		return
	}

	cfg := emu.LoadConfigOrDefault()
	if cli.Config != "" {
		var err error
		cfg, err = emu.LoadConfig(cli.Config)
		checkf(err, "failed to load configuration %s", cli.Config)
	}

	switch cmd {
	case "run":
		runMain(cli.Run, cfg)
	case "debug":
		debugMain(cli.Debug, cfg)
	}
}

func printVersion() {
	version := "(devel)"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		version = bi.Main.Version
	}
	fmt.Println("speccy", version)
}

// loadROM reads the ROM at path, or the one from the configuration if path
// is empty.
func loadROM(path string, cfg emu.Config) ([]byte, error) {
	if path == "" {
		path = cfg.Machine.ROM
	}
	if path == "" {
		return nil, fmt.Errorf("no ROM given and none configured")
	}
	return os.ReadFile(path)
}
