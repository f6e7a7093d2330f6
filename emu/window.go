package emu

import (
	"fmt"
	"image"
	"sync"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/veandco/go-sdl2/sdl"

	"speccy/emu/log"
	"speccy/hw/input"
	"speccy/hw/shaders"
	"speccy/hw/spectrum"
)

// Window is an Output showing frames in an OpenGL window. All SDL and GL
// calls are made on the SDL main thread, so sdl.Main must be running.
type Window struct {
	*sdl.Window
	context sdl.GLContext
	prog    uint32
	texture uint32
	vao     uint32

	ctrls *input.GameControllers

	// Hotkeys are called from Poll when one of the keys is pressed.
	Hotkeys map[sdl.Scancode]func()

	mu  sync.Mutex
	img *image.RGBA // last rendered frame
}

// NewWindow opens a window showing the Spectrum frame, border included,
// scaled and positioned according to cfg.
func NewWindow(title string, cfg VideoConfig) (*Window, error) {
	cfg.Check()

	type result struct {
		w   *Window
		err error
	}
	errc := make(chan result, 1)
	sdl.Do(func() {
		w, err := newWindow(title, cfg)
		errc <- result{w, err}
	})
	res := <-errc
	return res.w, res.err
}

func newWindow(title string, cfg VideoConfig) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_JOYSTICK | sdl.INIT_GAMECONTROLLER); err != nil {
		return nil, fmt.Errorf("failed to initialize SDL: %s", err)
	}

	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 3)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 3)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)

	winw := int32(spectrum.FrameWidth * cfg.Scale)
	winh := int32(spectrum.FrameHeight * cfg.Scale)
	pos := int32(sdl.WINDOWPOS_CENTERED_MASK | uint32(cfg.Monitor))
	w, err := sdl.CreateWindow(title, pos, pos, winw, winh,
		sdl.WINDOW_OPENGL|sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %s", err)
	}

	context, err := w.GLCreateContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenGL context: %s", err)
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize opengl: %s", err)
	}

	swap := 1
	if cfg.DisableVSync {
		swap = 0
	}
	if err := sdl.GLSetSwapInterval(swap); err != nil {
		log.ModEmu.WarnZ("failed to set swap interval").Error("err", err).End()
	}

	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, spectrum.FrameWidth, spectrum.FrameHeight, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	prog, err := shaders.Program(cfg.Shader)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %s", cfg.Shader, err)
	}

	var vbo, vao, ebo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	gl.GenBuffers(1, &ebo)

	gl.BindVertexArray(vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	// Position attributes
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 5*4, 0)
	gl.EnableVertexAttribArray(0)

	// Texture coordinate attributes.
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, 5*4, 3*4)
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	log.ModEmu.InfoZ("window created").
		String("shader", cfg.Shader).
		Int("scale", cfg.Scale).
		End()

	return &Window{
		Window:  w,
		context: context,
		prog:    prog,
		texture: texture,
		vao:     vao,
		ctrls:   input.OpenGameControllers(),
		Hotkeys: make(map[sdl.Scancode]func()),
		img:     image.NewRGBA(image.Rect(0, 0, spectrum.FrameWidth, spectrum.FrameHeight)),
	}, nil
}

// Controllers returns the game controllers opened with the window.
func (w *Window) Controllers() *input.GameControllers { return w.ctrls }

func (w *Window) EndFrame(f spectrum.Frame) {
	w.mu.Lock()
	f.Render(w.img)
	pix := w.img.Pix
	w.mu.Unlock()

	sdl.Do(func() {
		w.mu.Lock()
		gl.BindTexture(gl.TEXTURE_2D, w.texture)
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, spectrum.FrameWidth, spectrum.FrameHeight, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
		w.mu.Unlock()

		gl.Clear(gl.COLOR_BUFFER_BIT)
		gl.UseProgram(w.prog)
		gl.BindVertexArray(w.vao)
		gl.DrawElements(gl.TRIANGLES, 6, gl.UNSIGNED_INT, nil)
		w.GLSwap()
	})
}

// Poll processes window events. It returns false once the window has been
// closed.
func (w *Window) Poll() bool {
	running := true
	var hotkeys []func()
	sdl.Do(func() {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				running = false
			case *sdl.ControllerDeviceEvent:
				w.ctrls.UpdateDevices(*e)
			case *sdl.WindowEvent:
				if e.Event == sdl.WINDOWEVENT_RESIZED {
					gl.Viewport(0, 0, e.Data1, e.Data2)
				}
			case *sdl.KeyboardEvent:
				if e.Type != sdl.KEYDOWN || e.Repeat != 0 {
					break
				}
				if fn := w.Hotkeys[e.Keysym.Scancode]; fn != nil {
					hotkeys = append(hotkeys, fn)
				}
			}
		}
	})
	// Hotkeys may call into SDL, so they run outside of the main thread
	// callback.
	for _, fn := range hotkeys {
		fn()
	}
	return running
}

// Screenshot returns a copy of the last frame shown.
func (w *Window) Screenshot() *image.RGBA {
	w.mu.Lock()
	defer w.mu.Unlock()

	img := image.NewRGBA(w.img.Rect)
	copy(img.Pix, w.img.Pix)
	return img
}

// FocusWindow raises the window above others.
func (w *Window) FocusWindow() {
	sdl.Do(func() { w.Raise() })
}

func (w *Window) Close() {
	sdl.Do(func() {
		w.ctrls.Close()
		if w.context != nil {
			sdl.GLDeleteContext(w.context)
		}
		if err := w.Destroy(); err != nil {
			log.ModEmu.WarnZ("failed to destroy window").Error("err", err).End()
		}
		sdl.Quit()
	})
}

// Columns are position and texture coordinates.
// Rows are the quad vertices in clockwise order.
var vertices = []float32{
	// x, y, z, s, t
	1.0, 1.0, 0, 1, 0, // top right
	1.0, -1.0, 0, 1, 1, // bottom right
	-1.0, -1.0, 0, 0, 1, // bottom left
	-1.0, 1.0, 0, 0, 0, // top left
}

var indices = []uint32{
	0, 1, 3,
	1, 2, 3,
}
