package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/sync/errgroup"

	"speccy/emu"
	"speccy/emu/log"
	"speccy/emu/rpc"
	"speccy/hw/input"
	"speccy/hw/spectrum"
)

// runMain runs the emulator in a window.
func runMain(args Run, cfg emu.Config) {
	var exitcode int
	sdl.Main(func() {
		if err := runEmu(args, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "fatal error:\n\t%s\n", err)
			exitcode = 1
		}
	})
	os.Exit(exitcode)
}

func runEmu(args Run, cfg emu.Config) error {
	rom, err := loadROM(args.ROMPath, cfg)
	if err != nil {
		return fmt.Errorf("error reading ROM: %w", err)
	}

	if args.Trace != nil {
		cfg.TraceOut = args.Trace
		defer args.Trace.Close()
	}
	cfg.Video.Monitor = args.Monitor
	if args.Scale != 0 {
		cfg.Video.Scale = args.Scale
	}
	if args.Fast {
		cfg.Machine.Fast = true
	}

	window, err := emu.NewWindow("speccy", cfg.Video)
	if err != nil {
		return err
	}
	prov, err := input.NewProvider(cfg.Keyboard, window.Controllers())
	if err != nil {
		window.Close()
		return fmt.Errorf("invalid keyboard configuration: %w", err)
	}

	emulator, err := emu.Launch(rom, cfg, window, prov)
	if err != nil {
		window.Close()
		return fmt.Errorf("failed to start emulator: %w", err)
	}

	log.AddContext(emulator.Machine.CPU)

	if args.SNA != "" {
		if err := loadSNA(emulator.Machine, args.SNA); err != nil {
			window.Close()
			return err
		}
	}

	window.Hotkeys[sdl.SCANCODE_F5] = emulator.Reset
	window.Hotkeys[sdl.SCANCODE_PAUSE] = emulator.TogglePause
	window.Hotkeys[sdl.SCANCODE_F12] = func() { screenshot(emulator) }

	if args.CPUProfile != "" {
		f, err := os.Create(args.CPUProfile)
		checkf(err, "failed to create cpu profile file")
		checkf(pprof.StartCPUProfile(f), "failed to start cpu profile")
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
			fmt.Println("CPU profile written to", args.CPUProfile)
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return emulator.Run(ctx)
	})

	if args.Port != 0 {
		server, err := rpc.NewServer(args.Port, emulator)
		if err != nil {
			cancel()
			g.Wait()
			return fmt.Errorf("RPC error: %w", err)
		}
		g.Go(server.Serve)
		g.Go(func() error {
			<-ctx.Done()
			return server.Close()
		})
	}

	return g.Wait()
}

func loadSNA(m *spectrum.Machine, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := m.LoadSNA(f); err != nil {
		return fmt.Errorf("snapshot %s: %w", path, err)
	}
	return nil
}

func screenshot(e *emu.Emulator) {
	path := fmt.Sprintf("speccy-%s.png", time.Now().Format("20060102-150405"))
	if err := spectrum.SaveAsPNG(e.Screenshot(), path); err != nil {
		log.ModEmu.WarnZ("screenshot failed").Error("err", err).End()
		return
	}
	log.ModEmu.InfoZ("screenshot saved").String("path", path).End()
}
