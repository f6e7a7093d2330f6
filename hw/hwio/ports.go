package hwio

import "speccy/emu/log"

// Ports is an I/O port space addressed by the full 16-bit port number.
// Devices are selected by partial decoding: a device answers a port when
// port&mask == match. When more than one device answers a read, their values
// are ANDed together, as on a real open-collector data bus.
type Ports struct {
	Name string
	maps []portMap
}

type portMap struct {
	mask, match uint16
	io          BankIO8
	name        string
}

func NewPorts(name string) *Ports {
	return &Ports{Name: name}
}

func (p *Ports) Map(mask, match uint16, name string, io BankIO8) {
	log.ModHwIo.DebugZ("mapping port").
		Hex16("mask", mask).
		Hex16("match", match).
		String("name", name).
		String("bus", p.Name).
		End()

	p.maps = append(p.maps, portMap{mask: mask, match: match & mask, io: io, name: name})
}

// In reads from port. Nobody answering reads OpenBus.
func (p *Ports) In(port uint16, peek bool) uint8 {
	val := uint8(OpenBus)
	for i := range p.maps {
		if port&p.maps[i].mask == p.maps[i].match {
			val &= p.maps[i].io.Read8(port, peek)
		}
	}
	return val
}

// Out writes val to every device answering port.
func (p *Ports) Out(port uint16, val uint8) {
	for i := range p.maps {
		if port&p.maps[i].mask == p.maps[i].match {
			p.maps[i].io.Write8(port, val)
		}
	}
}

// Names returns the name of the devices answering port.
func (p *Ports) Names(port uint16) []string {
	var names []string
	for i := range p.maps {
		if port&p.maps[i].mask == p.maps[i].match {
			names = append(names, p.maps[i].name)
		}
	}
	return names
}
