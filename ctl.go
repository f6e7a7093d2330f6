package main

import (
	"speccy/emu/rpc"
)

// ctlMain sends a single command to an emulator started with run --port.
func ctlMain(args Ctl) error {
	c, err := rpc.NewClient(args.Port)
	if err != nil {
		return err
	}
	defer c.Close()

	switch args.Action {
	case "pause":
		return c.SetPause(true)
	case "resume":
		return c.SetPause(false)
	case "reset":
		return c.Reset()
	case "stop":
		return c.Stop()
	}
	return nil
}
