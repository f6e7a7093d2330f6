package hwio

import (
	"fmt"

	"speccy/emu/log"
)

type BankIO8 interface {
	// Read8 reads a byte from the given address. If peek is true, the read
	// must not have side effects (debugging, tracing, disassembly).
	Read8(addr uint16, peek bool) uint8
	Write8(addr uint16, val uint8)
}

func Write16(b BankIO8, addr uint16, val uint16) {
	b.Write8(addr, uint8(val))
	b.Write8(addr+1, uint8(val>>8))
}

func Read16(b BankIO8, addr uint16) uint16 {
	lo := b.Read8(addr, false)
	hi := b.Read8(addr+1, false)
	return uint16(hi)<<8 | uint16(lo)
}

func Peek16(b BankIO8, addr uint16) uint16 {
	lo := b.Read8(addr, true)
	hi := b.Read8(addr+1, true)
	return uint16(hi)<<8 | uint16(lo)
}

// OpenBus is the value read from an address nobody answers.
const OpenBus = 0xFF

type openBus struct{}

func (openBus) Read8(uint16, bool) uint8 { return OpenBus }
func (openBus) Write8(uint16, uint8)     {}

// Region describes a mapped address range.
type Region struct {
	Begin, End uint16
	Name       string
	ReadOnly   bool
}

func (r Region) String() string {
	ro := ""
	if r.ReadOnly {
		ro = " (ro)"
	}
	return fmt.Sprintf("%04X-%04X %s%s", r.Begin, r.End, r.Name, ro)
}

// Table is a 64K address space. Each address points to the slot of the
// device that answers it; slot 0 is the unmapped device.
type Table struct {
	Name string

	// Unmapped receives accesses to addresses no device is mapped to.
	// Defaults to an open bus reading OpenBus.
	Unmapped BankIO8

	slots [0x10000]uint8
	devs  []BankIO8
	infos []Region
}

func NewTable(name string) *Table {
	t := new(Table)
	t.Name = name
	t.Reset()
	return t
}

// Reset unmaps everything.
func (t *Table) Reset() {
	clear(t.slots[:])
	t.devs = []BankIO8{nil}
	t.infos = []Region{{}}
	if t.Unmapped == nil {
		t.Unmapped = openBus{}
	}
}

func (t *Table) mapBus8(begin, end uint16, io BankIO8, name string, ro bool) {
	if end < begin {
		panic(fmt.Sprintf("hwio: invalid range %04X-%04X on %s", begin, end, t.Name))
	}
	if len(t.devs) == 0x100 {
		panic(fmt.Sprintf("hwio: too many devices on %s", t.Name))
	}
	slot := uint8(len(t.devs))
	t.devs = append(t.devs, io)
	t.infos = append(t.infos, Region{Begin: begin, End: end, Name: name, ReadOnly: ro})
	for a := int(begin); a <= int(end); a++ {
		t.slots[a] = slot
	}
}

// MapMem maps mem at addr. The mapping covers mem.VSize bytes, or
// len(mem.Data) if VSize is zero; bigger virtual sizes mirror the data.
func (t *Table) MapMem(addr uint16, mem *Mem) {
	vsize := mem.VSize
	if vsize == 0 {
		vsize = len(mem.Data)
	}
	end := int(addr) + vsize - 1
	if end > 0xFFFF {
		panic(fmt.Sprintf("hwio: %s overflows the address space", mem.Name))
	}

	log.ModHwIo.DebugZ("mapping mem").
		Hex16("addr", addr).
		Hex16("end", uint16(end)).
		String("area", mem.Name).
		String("bus", t.Name).
		End()

	t.mapBus8(addr, uint16(end), mem.bankIO8(addr), mem.Name, mem.Flags&MemFlag8ReadOnly != 0)
}

func (t *Table) MapMemorySlice(addr, end uint16, buf []uint8, readonly bool) {
	var flags MemFlags
	if readonly {
		flags |= MemFlag8ReadOnly
	}
	t.MapMem(addr, &Mem{
		Name:  fmt.Sprintf("slice@%04X", addr),
		Data:  buf,
		Flags: flags,
		VSize: int(end) - int(addr) + 1,
	})
}

func (t *Table) MapDevice(addr uint16, dev *Device) {
	log.ModHwIo.DebugZ("mapping device").
		Hex16("addr", addr).
		Int("size", dev.Size).
		String("name", dev.Name).
		String("bus", t.Name).
		End()

	t.mapBus8(addr, addr+uint16(dev.Size-1), dev, dev.Name, dev.Flags&ReadOnlyFlag != 0)
}

func (t *Table) MapReg8(addr uint16, reg *Reg8) {
	t.mapBus8(addr, addr, reg, reg.Name, reg.Flags&ReadOnlyFlag != 0)
}

// Unmap removes any mapping in [begin, end].
func (t *Table) Unmap(begin, end uint16) {
	for a := int(begin); a <= int(end); a++ {
		t.slots[a] = 0
	}
}

func (t *Table) lookup(addr uint16) BankIO8 {
	if slot := t.slots[addr]; slot != 0 {
		return t.devs[slot]
	}
	return t.Unmapped
}

func (t *Table) Read8(addr uint16, peek bool) uint8 {
	return t.lookup(addr).Read8(addr, peek)
}

// Peek8 is a convenience function.
func (t *Table) Peek8(addr uint16) uint8 {
	return t.Read8(addr, true)
}

func (t *Table) Write8(addr uint16, val uint8) {
	t.lookup(addr).Write8(addr, val)
}

// Snapshot copies [begin, end] using side-effect free reads.
func (t *Table) Snapshot(begin, end uint16) []byte {
	buf := make([]byte, int(end)-int(begin)+1)
	for i := range buf {
		buf[i] = t.Peek8(begin + uint16(i))
	}
	return buf
}

// Regions lists the current mappings by address. Ranges that were partially
// unmapped or overlapped are reported as they are now.
func (t *Table) Regions() []Region {
	var regs []Region
	cur := -1
	for a := 0; a <= 0xFFFF; a++ {
		slot := int(t.slots[a])
		if slot == cur {
			if slot != 0 {
				regs[len(regs)-1].End = uint16(a)
			}
			continue
		}
		cur = slot
		if slot != 0 {
			r := t.infos[slot]
			r.Begin, r.End = uint16(a), uint16(a)
			regs = append(regs, r)
		}
	}
	return regs
}
