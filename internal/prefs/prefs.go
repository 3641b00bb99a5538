// Package prefs holds the small set of typed, named configuration values
// that spec.md leaves as open questions rather than hard-coded constants
// (e.g. the timer start-up delay). It is deliberately tiny: this project
// does not need disk-backed preference persistence (that is a host
// concern, out of scope per spec.md §1), only a typed container that can
// be constructed with defaults and overridden by a host frontend.
package prefs

// Prefs holds the emulator-wide tunables.
type Prefs struct {
	// TimerStartDelay is the number of cycles a timer's first overflow is
	// delayed by after its enable bit is set, per spec.md §4.5. The
	// hardware value is believed to be 2 cycles; spec.md leaves it
	// configurable rather than hard-coded since it was derived from
	// external test ROMs rather than documentation.
	TimerStartDelay int32

	// RandomState names the choice between seeding uninitialised work RAM
	// pseudo-randomly (true) and leaving it zeroed (false, the default).
	// No component reads it: work RAM always starts zeroed.
	RandomState bool

	// HaltOutsideBIOSIsFatal names the choice between treating a write to
	// the halt-control register from outside the BIOS as a hard error and
	// only warning about it (false, the default). No component reads it:
	// the bus has no halt-control register, so such writes are ignored
	// without an error or a warning.
	HaltOutsideBIOSIsFatal bool

	// LogChannel3Capture names the choice of logging a one-time warning
	// the first time DMA channel 3's video-capture Special mode is engaged,
	// since that mode is only a stub (spec.md §4.4, §9). No component reads
	// it: internal/dma logs that warning unconditionally.
	LogChannel3Capture bool
}

// Default returns the preferences used by a freshly constructed Gba.
func Default() Prefs {
	return Prefs{
		TimerStartDelay:        2,
		RandomState:            false,
		HaltOutsideBIOSIsFatal: false,
		LogChannel3Capture:     true,
	}
}
