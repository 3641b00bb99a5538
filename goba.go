// Package goba is the public entry point for embedding the emulator core
// in a host application, re-exporting internal/gba's host API per
// spec.md §6.
package goba

import (
	"github.com/ljsdev/goba/internal/apu"
	"github.com/ljsdev/goba/internal/gba"
	"github.com/ljsdev/goba/internal/ppu"
	"github.com/ljsdev/goba/internal/prefs"
)

// Key identifies one of the ten GBA buttons/directions.
type Key = gba.Key

const (
	KeyA      = gba.KeyA
	KeyB      = gba.KeyB
	KeySelect = gba.KeySelect
	KeyStart  = gba.KeyStart
	KeyRight  = gba.KeyRight
	KeyLeft   = gba.KeyLeft
	KeyUp     = gba.KeyUp
	KeyDown   = gba.KeyDown
	KeyR      = gba.KeyR
	KeyL      = gba.KeyL
)

// ScreenWidth and ScreenHeight are the native output dimensions.
const (
	ScreenWidth  = ppu.ScreenWidth
	ScreenHeight = ppu.ScreenHeight
)

// FrameFunc and SampleFunc are the host callbacks passed to
// (*Gba).SetFrameFunc / SetAudioFunc.
type FrameFunc = ppu.FrameFunc
type SampleFunc = apu.SampleFunc

// Prefs exposes the tunable preferences described in spec.md §9's open
// questions.
type Prefs = prefs.Prefs

// DefaultPrefs returns the preferences a freshly constructed Gba uses.
func DefaultPrefs() Prefs { return prefs.Default() }

// Gba is the emulator instance.
type Gba = gba.Gba

// New constructs a Gba with default preferences.
func New() *Gba { return gba.New() }

// NewWithPrefs constructs a Gba with explicit preferences.
func NewWithPrefs(p Prefs) *Gba { return gba.NewWithPrefs(p) }
