package spectrum

import (
	"strings"

	"speccy/hw/hwio"
)

// A Key identifies one of the 40 keys of the Spectrum keyboard. Keys are
// numbered by half-row (the address line selecting them, A8 to A15) and by
// data bit within that half-row.
type Key uint8

const (
	KeyCapsShift Key = iota
	KeyZ
	KeyX
	KeyC
	KeyV

	KeyA
	KeyS
	KeyD
	KeyF
	KeyG

	KeyQ
	KeyW
	KeyE
	KeyR
	KeyT

	Key1
	Key2
	Key3
	Key4
	Key5

	Key0
	Key9
	Key8
	Key7
	Key6

	KeyP
	KeyO
	KeyI
	KeyU
	KeyY

	KeyEnter
	KeyL
	KeyK
	KeyJ
	KeyH

	KeySpace
	KeySymShift
	KeyM
	KeyN
	KeyB

	NumKeys
)

var keyNames = [NumKeys]string{
	"CapsShift", "Z", "X", "C", "V",
	"A", "S", "D", "F", "G",
	"Q", "W", "E", "R", "T",
	"1", "2", "3", "4", "5",
	"0", "9", "8", "7", "6",
	"P", "O", "I", "U", "Y",
	"Enter", "L", "K", "J", "H",
	"Space", "SymShift", "M", "N", "B",
}

func (k Key) String() string {
	if k < NumKeys {
		return keyNames[k]
	}
	return "Key(?)"
}

// Row returns the half-row of k, 0 for A8 through 7 for A15.
func (k Key) Row() int { return int(k) / 5 }

// Bit returns the number of the data bit k pulls low when pressed.
func (k Key) Bit() uint { return uint(k % 5) }

// KeyByName returns the key with the given name, case insensitive.
func KeyByName(name string) (Key, bool) {
	for k, s := range keyNames {
		if strings.EqualFold(s, name) {
			return Key(k), true
		}
	}
	return 0, false
}

// Keyboard is the 8x5 key matrix. It isn't safe for concurrent use, the
// emulation loop owns it and refreshes it between frames.
type Keyboard struct {
	rows [8]uint8 // pressed keys, active high
}

// SetKey presses or releases a key.
func (kb *Keyboard) SetKey(k Key, pressed bool) {
	if k >= NumKeys {
		return
	}
	hwio.PutBit8(&kb.rows[k.Row()], k.Bit(), pressed)
}

// Pressed reports whether k is currently pressed.
func (kb *Keyboard) Pressed(k Key) bool {
	return k < NumKeys && hwio.GetBit8(kb.rows[k.Row()], k.Bit())
}

// ReleaseAll releases every key.
func (kb *Keyboard) ReleaseAll() {
	clear(kb.rows[:])
}

// Read returns the 5 key bits (active low) of the half-rows selected by the
// low bits of hi, the high byte of the port address. Several half-rows can be
// selected at once, their keys are then merged.
func (kb *Keyboard) Read(hi uint8) uint8 {
	var pressed uint8
	for row := range kb.rows {
		if !hwio.GetBit8(hi, uint(row)) {
			pressed |= kb.rows[row]
		}
	}
	return ^pressed & 0x1F
}
