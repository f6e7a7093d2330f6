package input

import (
	"slices"

	"github.com/veandco/go-sdl2/sdl"

	"speccy/hw/spectrum"
)

type binding struct {
	code Code
	keys []spectrum.Key
}

// Provider samples host inputs and translates them to Spectrum key presses
// and joystick state.
type Provider struct {
	keystate []uint8 // indexed by scancode, owned by SDL
	ctrls    *GameControllers

	bindings []binding
	joy      [5][]Code
}

// NewProvider creates a Provider. ctrls may be nil, in which case only the
// keyboard is read.
func NewProvider(cfg Config, ctrls *GameControllers) (*Provider, error) {
	var keystate []uint8
	sdl.Do(func() { keystate = sdl.GetKeyboardState() })
	return newProvider(cfg, keystate, ctrls)
}

func newProvider(cfg Config, keystate []uint8, ctrls *GameControllers) (*Provider, error) {
	p := &Provider{
		keystate: keystate,
		ctrls:    ctrls,
		joy:      cfg.Joystick.byBit(),
	}

	// Sorted for a deterministic order.
	names := make([]string, 0, len(cfg.Keys))
	for name := range cfg.Keys {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		keys, err := parseKeys(name)
		if err != nil {
			return nil, err
		}
		for _, code := range cfg.Keys[name] {
			if code.Type == UnsetController {
				continue
			}
			p.bindings = append(p.bindings, binding{code: code, keys: keys})
		}
	}
	return p, nil
}

func (p *Provider) pressed(code Code) bool {
	switch code.Type {
	case Keyboard:
		return int(code.Scancode) < len(p.keystate) && p.keystate[code.Scancode] != 0
	case ControllerButton, ControllerAxis:
		return p.ctrls.pressed(code)
	}
	return false
}

// Update refreshes the key matrix from the host inputs and returns the
// Kempston joystick state.
func (p *Provider) Update(kb *spectrum.Keyboard) uint8 {
	kb.ReleaseAll()
	for _, b := range p.bindings {
		if !p.pressed(b.code) {
			continue
		}
		for _, k := range b.keys {
			kb.SetKey(k, true)
		}
	}

	var joy uint8
	for bit, codes := range p.joy {
		if slices.ContainsFunc(codes, p.pressed) {
			joy |= 1 << bit
		}
	}
	return joy
}
