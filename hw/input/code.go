package input

import (
	"fmt"
	"strings"

	"github.com/veandco/go-sdl2/sdl"
)

type ControllerType uint8

const (
	UnsetController ControllerType = iota
	Keyboard
	ControllerButton
	ControllerAxis
)

func (t ControllerType) String() string {
	switch t {
	case Keyboard:
		return "key"
	case ControllerButton:
		return "joy button"
	case ControllerAxis:
		return "joy axis"
	}
	return "not set"
}

// A Code describes a host input: a keyboard key, or a game controller button
// or axis direction. An empty CtrlGUID matches any controller.
type Code struct {
	Scancode sdl.Scancode

	CtrlGUID    string
	CtrlButton  sdl.GameControllerButton
	CtrlAxis    sdl.GameControllerAxis
	CtrlAxisDir int16

	Type ControllerType
}

// Key returns the Code of a keyboard key, given its SDL name.
func Key(name string) Code {
	var c Code
	if err := c.UnmarshalText([]byte("key " + name)); err != nil {
		panic(err)
	}
	return c
}

// Name returns an user-friendly name for the input code.
func (mc Code) Name() string {
	switch mc.Type {
	case Keyboard:
		return sdl.GetScancodeName(mc.Scancode)
	case ControllerButton:
		return sdl.GameControllerGetStringForButton(mc.CtrlButton)
	case ControllerAxis:
		axis := sdl.GameControllerGetStringForAxis(mc.CtrlAxis)
		if mc.CtrlAxisDir >= 0 {
			return axis + "+"
		}
		return axis + "-"
	}
	return ""
}

func (mc Code) MarshalText() ([]byte, error) {
	var s string
	switch mc.Type {
	case Keyboard:
		s = "key " + mc.Name()
	case ControllerButton:
		s = "joybtn " + mc.Name()
	case ControllerAxis:
		s = "joyaxis " + mc.Name()
	}
	if mc.CtrlGUID != "" && mc.Type != Keyboard {
		s += " " + mc.CtrlGUID
	}
	return []byte(s), nil
}

// UnmarshalText parses "key <scancode name>", "joybtn <button> [guid]" or
// "joyaxis <axis>(+|-) [guid]". Scancode names may contain spaces
// ("key Left Shift").
func (mc *Code) UnmarshalText(text []byte) error {
	*mc = Code{}
	kind, arg, _ := strings.Cut(strings.TrimSpace(string(text)), " ")
	arg = strings.TrimSpace(arg)

	switch kind {
	case "":
		return nil

	case "key":
		if arg == "" {
			return fmt.Errorf("malformed key code: %q", text)
		}
		mc.Scancode = sdl.GetScancodeFromName(arg)
		if mc.Scancode == sdl.SCANCODE_UNKNOWN {
			return fmt.Errorf("unrecognized scancode %q", arg)
		}
		mc.Type = Keyboard

	case "joybtn":
		name, guid, err := splitCtrl(arg)
		if err != nil {
			return fmt.Errorf("malformed joybtn code %q: %s", text, err)
		}
		mc.CtrlButton = sdl.GameControllerGetButtonFromString(name)
		if mc.CtrlButton == sdl.CONTROLLER_BUTTON_INVALID {
			return fmt.Errorf("unrecognized button %q", name)
		}
		mc.CtrlGUID = guid
		mc.Type = ControllerButton

	case "joyaxis":
		name, guid, err := splitCtrl(arg)
		if err != nil {
			return fmt.Errorf("malformed joyaxis code %q: %s", text, err)
		}
		switch {
		case strings.HasSuffix(name, "+"):
			mc.CtrlAxisDir = 1
		case strings.HasSuffix(name, "-"):
			mc.CtrlAxisDir = -1
		default:
			return fmt.Errorf("malformed axis direction: %q", name)
		}
		mc.CtrlAxis = sdl.GameControllerGetAxisFromString(name[:len(name)-1])
		if mc.CtrlAxis == sdl.CONTROLLER_AXIS_INVALID {
			return fmt.Errorf("unrecognized axis %q", name)
		}
		mc.CtrlGUID = guid
		mc.Type = ControllerAxis

	default:
		return fmt.Errorf("unrecognized input code: %q", text)
	}
	return nil
}

func splitCtrl(arg string) (name, guid string, err error) {
	fields := strings.Fields(arg)
	switch len(fields) {
	case 1:
		return fields[0], "", nil
	case 2:
		return fields[0], fields[1], nil
	}
	return "", "", fmt.Errorf("want <name> [guid]")
}
