package debugger

import (
	"slices"

	"speccy/emu/log"
	"speccy/hw/hwio"
)

// A Breakpoint stops Run before the instruction at Addr is fetched.
type Breakpoint struct {
	Addr    uint16
	Enabled bool
}

type breakpoints struct {
	all map[uint16]*Breakpoint

	// enabled breakpoints, tested before each fetch.
	enabled hwio.Bitset
}

func (bps *breakpoints) init() {
	bps.all = make(map[uint16]*Breakpoint)
}

func (bps *breakpoints) set(addr uint16) {
	if _, ok := bps.all[addr]; ok {
		return
	}
	bps.all[addr] = &Breakpoint{Addr: addr, Enabled: true}
	bps.enabled.Set(uint(addr))
	log.ModDbg.DebugZ("breakpoint set").Hex16("addr", addr).End()
}

func (bps *breakpoints) clear(addr uint16) {
	if _, ok := bps.all[addr]; !ok {
		return
	}
	delete(bps.all, addr)
	bps.enabled.Clear(uint(addr))
	log.ModDbg.DebugZ("breakpoint cleared").Hex16("addr", addr).End()
}

func (bps *breakpoints) enable(addr uint16, on bool) bool {
	bp, ok := bps.all[addr]
	if !ok {
		return false
	}
	bp.Enabled = on
	if on {
		bps.enabled.Set(uint(addr))
	} else {
		bps.enabled.Clear(uint(addr))
	}
	return true
}

func (bps *breakpoints) has(addr uint16) bool {
	_, ok := bps.all[addr]
	return ok
}

func (bps *breakpoints) hit(pc uint16) bool {
	return bps.enabled.Test(uint(pc))
}

func (bps *breakpoints) list() []Breakpoint {
	list := make([]Breakpoint, 0, len(bps.all))
	for _, bp := range bps.all {
		list = append(list, *bp)
	}
	slices.SortFunc(list, func(a, b Breakpoint) int { return int(a.Addr) - int(b.Addr) })
	return list
}
