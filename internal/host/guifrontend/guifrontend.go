// Package guifrontend is a minimal desktop shell for the emulator: an
// SDL2 window and GL context (veandco/go-sdl2, go-gl/gl) presenting the
// PPU's framebuffer as a texture, and an SDL audio queue fed by the APU's
// sample callback. An imgui-go context is created, but no ImGui frame is
// rendered.
package guifrontend

import (
	"unsafe"

	"github.com/go-gl/gl/v2.1/gl"
	imgui "github.com/inkyblackness/imgui-go/v4"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/ljsdev/goba/internal/gba"
	"github.com/ljsdev/goba/internal/ppu"
)

// keymap associates SDL scancodes with GBA buttons, the host's default
// binding (spec.md leaves exact key bindings to the host).
var keymap = map[sdl.Scancode]gba.Key{
	sdl.SCANCODE_X:     gba.KeyA,
	sdl.SCANCODE_Z:     gba.KeyB,
	sdl.SCANCODE_RSHIFT: gba.KeySelect,
	sdl.SCANCODE_RETURN: gba.KeyStart,
	sdl.SCANCODE_RIGHT: gba.KeyRight,
	sdl.SCANCODE_LEFT:  gba.KeyLeft,
	sdl.SCANCODE_UP:    gba.KeyUp,
	sdl.SCANCODE_DOWN:  gba.KeyDown,
	sdl.SCANCODE_S:     gba.KeyR,
	sdl.SCANCODE_A:     gba.KeyL,
}

// Frontend owns the SDL window, GL texture and imgui context for one
// running machine.
type Frontend struct {
	machine *gba.Gba

	window  *sdl.Window
	glCtx   sdl.GLContext
	texture uint32
	audioID sdl.AudioDeviceID

	imguiCtx *imgui.Context

	running bool
}

// New creates the window and wires the machine's frame/audio callbacks
// to it. Call Run to enter the event loop.
func New(machine *gba.Gba, title string, scale int) (*Frontend, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return nil, err
	}

	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 2)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)

	width := int32(ppu.ScreenWidth * scale)
	height := int32(ppu.ScreenHeight * scale)

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		width, height, sdl.WINDOW_OPENGL|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return nil, err
	}

	glCtx, err := window.GLCreateContext()
	if err != nil {
		return nil, err
	}
	if err := gl.Init(); err != nil {
		return nil, err
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

	audioSpec := &sdl.AudioSpec{Freq: 32768, Format: sdl.AUDIO_S16LSB, Channels: 2, Samples: 1024}
	audioID, err := sdl.OpenAudioDevice("", false, audioSpec, nil, 0)
	if err != nil {
		return nil, err
	}
	sdl.PauseAudioDevice(audioID, false)

	f := &Frontend{
		machine: machine,
		window:  window,
		glCtx:   glCtx,
		texture: tex,
		audioID: audioID,
	}

	f.imguiCtx = imgui.CreateContext(nil)

	machine.SetFrameFunc(f.onFrame)
	machine.SetAudioFunc(f.onSample)

	return f, nil
}

func (f *Frontend) onFrame(pixels *[ppu.ScreenWidth * ppu.ScreenHeight]uint16) {
	rgba := make([]byte, len(pixels)*4)
	for i, p := range pixels {
		r := uint8(p&0x1F) << 3
		g := uint8((p>>5)&0x1F) << 3
		b := uint8((p>>10)&0x1F) << 3
		rgba[i*4+0] = r
		rgba[i*4+1] = g
		rgba[i*4+2] = b
		rgba[i*4+3] = 0xFF
	}

	gl.BindTexture(gl.TEXTURE_2D, f.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, ppu.ScreenWidth, ppu.ScreenHeight, 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&rgba[0]))
}

func (f *Frontend) onSample(left, right int16) {
	buf := []byte{byte(left), byte(left >> 8), byte(right), byte(right >> 8)}
	sdl.QueueAudio(f.audioID, buf)
}

// Run pumps SDL events, drives the machine forward one frame's worth of
// cycles per iteration, and presents the latest framebuffer texture
// until the window is closed.
func (f *Frontend) Run(cyclesPerFrame int32) {
	f.running = true
	for f.running {
		f.pollEvents()
		f.machine.Run(cyclesPerFrame)
		f.present()
	}
}

func (f *Frontend) pollEvents() {
	pressed := map[gba.Key]bool{}
	keyState := sdl.GetKeyboardState()
	for scancode, key := range keymap {
		pressed[key] = keyState[scancode] != 0
	}
	f.machine.SetKeys(pressed)

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if _, ok := event.(*sdl.QuitEvent); ok {
			f.running = false
		}
	}
}

func (f *Frontend) present() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.Enable(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, f.texture)
	gl.Begin(gl.QUADS)
	gl.TexCoord2f(0, 1)
	gl.Vertex2f(-1, -1)
	gl.TexCoord2f(1, 1)
	gl.Vertex2f(1, -1)
	gl.TexCoord2f(1, 0)
	gl.Vertex2f(1, 1)
	gl.TexCoord2f(0, 0)
	gl.Vertex2f(-1, 1)
	gl.End()
	f.window.GLSwap()
}

// Close tears down SDL and imgui resources.
func (f *Frontend) Close() {
	f.imguiCtx.Destroy()
	sdl.CloseAudioDevice(f.audioID)
	sdl.GLDeleteContext(f.glCtx)
	f.window.Destroy()
	sdl.Quit()
}
