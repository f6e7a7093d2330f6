package input

import (
	"sync"

	"github.com/veandco/go-sdl2/sdl"

	"speccy/emu/log"
)

// Axis values beyond this threshold count as pressed. Axes go from -32768
// to 32767.
const JoyAxisThreshold = 16000

// GameControllers tracks the game controllers currently plugged. It must be
// kept in sync by feeding it controller device events.
type GameControllers struct {
	mu    sync.Mutex
	guids map[string]*sdl.GameController
	ids   map[sdl.JoystickID]*sdl.GameController
}

// OpenGameControllers opens every controller already plugged. It must be
// called from the SDL main thread.
func OpenGameControllers() *GameControllers {
	gcs := &GameControllers{
		guids: make(map[string]*sdl.GameController),
		ids:   make(map[sdl.JoystickID]*sdl.GameController),
	}
	for i := range sdl.NumJoysticks() {
		if sdl.IsGameController(i) {
			gcs.open(i)
		}
	}
	return gcs
}

func (gcs *GameControllers) open(idx int) {
	c := sdl.GameControllerOpen(idx)
	if c == nil {
		log.ModInput.WarnZ("failed to open controller").Int("index", idx).End()
		return
	}
	joy := c.Joystick()
	guid := sdl.JoystickGetGUIDString(joy.GUID())
	gcs.guids[guid] = c
	gcs.ids[joy.InstanceID()] = c

	log.ModInput.InfoZ("added controller").
		Int("id", int(joy.InstanceID())).
		String("guid", guid).
		String("name", c.Name()).
		End()
}

// UpdateDevices handles controller hotplug.
func (gcs *GameControllers) UpdateDevices(e sdl.ControllerDeviceEvent) {
	gcs.mu.Lock()
	defer gcs.mu.Unlock()

	switch e.Type {
	case sdl.CONTROLLERDEVICEADDED:
		gcs.open(int(e.Which))

	case sdl.CONTROLLERDEVICEREMOVED:
		c := gcs.ids[e.Which]
		if c == nil {
			return
		}
		guid := sdl.JoystickGetGUIDString(c.Joystick().GUID())
		delete(gcs.guids, guid)
		delete(gcs.ids, e.Which)
		c.Close()

		log.ModInput.InfoZ("removed controller").
			Int("id", int(e.Which)).
			String("guid", guid).
			End()
	}
}

// pressed reports whether the controller input described by code is active.
// An empty GUID matches any controller.
func (gcs *GameControllers) pressed(code Code) bool {
	if gcs == nil {
		return false
	}
	gcs.mu.Lock()
	defer gcs.mu.Unlock()

	if code.CtrlGUID != "" {
		c := gcs.guids[code.CtrlGUID]
		return c != nil && ctrlPressed(c, code)
	}
	for _, c := range gcs.ids {
		if ctrlPressed(c, code) {
			return true
		}
	}
	return false
}

func ctrlPressed(c *sdl.GameController, code Code) bool {
	switch code.Type {
	case ControllerButton:
		return c.Button(code.CtrlButton) != 0
	case ControllerAxis:
		v := int(c.Axis(code.CtrlAxis)) * int(code.CtrlAxisDir)
		return v >= JoyAxisThreshold
	}
	return false
}

func (gcs *GameControllers) Close() {
	gcs.mu.Lock()
	defer gcs.mu.Unlock()

	for _, c := range gcs.ids {
		c.Close()
	}
	clear(gcs.guids)
	clear(gcs.ids)
}
