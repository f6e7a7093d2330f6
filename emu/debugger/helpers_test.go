package debugger

import (
	"testing"

	"speccy/hw/hwio"
	"speccy/hw/z80"
)

// newTestController returns a controller over a CPU with 64K of RAM
// holding prog at address 0.
func newTestController(t *testing.T, prog ...byte) *Controller {
	t.Helper()

	ram := make([]byte, 0x10000)
	copy(ram, prog)
	bus := hwio.NewTable("cpu")
	bus.MapMemorySlice(0x0000, 0xFFFF, ram, false)

	cpu := z80.NewCPU(bus, nil)
	return NewController(cpu)
}
