package input

import (
	"fmt"
	"strings"

	"speccy/hw/spectrum"
)

// Config maps host inputs to the Spectrum keyboard and to the Kempston
// joystick.
type Config struct {
	// Keys maps a Spectrum key name, or a '+' separated combination of key
	// names ("CapsShift+0"), to the host inputs pressing it.
	Keys     map[string][]Code `toml:"keys"`
	Joystick JoystickConfig    `toml:"joystick"`
}

type JoystickConfig struct {
	Right []Code `toml:"right"`
	Left  []Code `toml:"left"`
	Down  []Code `toml:"down"`
	Up    []Code `toml:"up"`
	Fire  []Code `toml:"fire"`
}

// byBit returns the joystick inputs in Kempston bit order.
func (jc *JoystickConfig) byBit() [5][]Code {
	return [5][]Code{jc.Right, jc.Left, jc.Down, jc.Up, jc.Fire}
}

func mustCodes(texts ...string) []Code {
	codes := make([]Code, len(texts))
	for i, txt := range texts {
		if err := codes[i].UnmarshalText([]byte(txt)); err != nil {
			panic(err)
		}
	}
	return codes
}

// DefaultConfig maps letters, digits, Enter and Space to themselves, shifts
// to CapsShift and SymShift, and cursor keys and Backspace to their CapsShift
// combination. The joystick follows the keypad and any game controller.
func DefaultConfig() Config {
	keys := make(map[string][]Code)
	for k := range spectrum.NumKeys {
		name := k.String()
		if len(name) == 1 {
			keys[name] = []Code{Key(name)}
		}
	}
	keys[spectrum.KeyCapsShift.String()] = []Code{Key("Left Shift")}
	keys[spectrum.KeySymShift.String()] = []Code{Key("Right Shift"), Key("Left Ctrl")}
	keys[spectrum.KeyEnter.String()] = []Code{Key("Return"), Key("Keypad Enter")}
	keys[spectrum.KeySpace.String()] = []Code{Key("Space")}
	keys["CapsShift+0"] = []Code{Key("Backspace")}
	keys["CapsShift+5"] = []Code{Key("Left")}
	keys["CapsShift+6"] = []Code{Key("Down")}
	keys["CapsShift+7"] = []Code{Key("Up")}
	keys["CapsShift+8"] = []Code{Key("Right")}

	return Config{
		Keys: keys,
		Joystick: JoystickConfig{
			Right: mustCodes("key Keypad 6", "joybtn dpright", "joyaxis leftx+"),
			Left:  mustCodes("key Keypad 4", "joybtn dpleft", "joyaxis leftx-"),
			Down:  mustCodes("key Keypad 2", "joybtn dpdown", "joyaxis lefty+"),
			Up:    mustCodes("key Keypad 8", "joybtn dpup", "joyaxis lefty-"),
			Fire:  mustCodes("key Keypad 0", "joybtn a"),
		},
	}
}

// parseKeys parses "Key" or "Key+Key+...".
func parseKeys(name string) ([]spectrum.Key, error) {
	var keys []spectrum.Key
	for _, s := range strings.Split(name, "+") {
		k, ok := spectrum.KeyByName(strings.TrimSpace(s))
		if !ok {
			return nil, fmt.Errorf("unknown Spectrum key %q in %q", s, name)
		}
		keys = append(keys, k)
	}
	return keys, nil
}
