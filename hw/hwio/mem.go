package hwio

import (
	"speccy/emu/log"
)

type MemFlags int

const (
	MemFlagReadWrite MemFlags = 0
	MemFlag8ReadOnly MemFlags = (1 << iota) // read-only accesses
	MemFlagNoROLog                          // skip logging attempts to write when configured to readonly
)

// Mem is a linear memory area that can be mapped into a Table.
//
// Mem does not implement BankIO8 itself: the Table builds an adaptor when the
// area is mapped, so that flags are resolved once and not on every access.
type Mem struct {
	Name    string              // name of the memory area (for debugging)
	Data    []byte              // actual memory buffer
	VSize   int                 // virtual size, mirrors Data if bigger than len(Data)
	Flags   MemFlags            // flags determining how the memory can be accessed
	WriteCb func(uint16, uint8) // optional, called after each successful write
}

func (m *Mem) bankIO8(base uint16) BankIO8 {
	if len(m.Data) == 0 {
		panic("hwio: empty memory area " + m.Name)
	}
	return &mem{
		name: m.Name,
		buf:  m.Data,
		base: base,
		size: uint16(len(m.Data) - 1),
		wcb:  m.WriteCb,
		ro:   m.Flags,
	}
}

type mem struct {
	name string
	buf  []byte
	base uint16
	size uint16 // len(buf)-1
	wcb  func(uint16, uint8)
	ro   MemFlags
}

func (m *mem) off(addr uint16) int {
	off := int(addr - m.base)
	if off > int(m.size) {
		off %= int(m.size) + 1
	}
	return off
}

func (m *mem) Read8(addr uint16, _ bool) uint8 {
	return m.buf[m.off(addr)]
}

func (m *mem) Write8(addr uint16, val uint8) {
	switch {
	case m.ro&MemFlagNoROLog != 0:
		return
	case m.ro&MemFlag8ReadOnly != 0:
		log.ModHwIo.ErrorZ("Write8 to readonly memory").
			String("name", m.name).
			Hex16("addr", addr).
			Hex8("val", val).
			End()
		return
	}
	m.buf[m.off(addr)] = val
	if m.wcb != nil {
		m.wcb(addr, val)
	}
}
