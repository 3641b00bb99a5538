package gpio

import "time"

// rtcState tracks where the 4-wire serial protocol is within a single
// transaction: receiving the 8 bit command byte, then shifting parameter
// bytes in or out depending on which command it was.
type rtcState int

const (
	rtcIdle rtcState = iota
	rtcCommand
	rtcParamIn
	rtcParamOut
)

// RTC commands, encoded as described in spec.md §4.8 (four-wire serial,
// command byte identifies Reset/ReadControl/WriteControl/ReadDateTime/
// ReadTime/WriteDateTime/WriteTime).
const (
	rtcReset        = 0x0
	rtcWriteControl = 0x1
	rtcWriteDateTime = 0x2
	rtcWriteTime    = 0x3
	rtcReadControl  = 0x5
	rtcReadDateTime = 0x6
	rtcReadTime     = 0x7
)

// Now is overridable for deterministic tests; defaults to the host wall
// clock, per spec.md §4.8 ("Date/time is returned in BCD from the host's
// wall clock").
var Now = time.Now

// RTC models the command/control register and the BCD date/time
// registers of the real-time-clock chip hung off the cartridge's GPIO
// port.
type RTC struct {
	state    rtcState
	bitCount int
	shiftIn  uint8
	command  uint8

	paramBytes []uint8
	paramIdx   int
	paramBit   int

	control uint8
}

func NewRTC() *RTC {
	return &RTC{control: 0x40} // 24-hour mode by default
}

// Clock is driven by the GPIO port on every data-register write; cs/sck
// are the current pin levels, risingSCK reports whether this call is the
// rising edge that should sample/shift a bit, sio is the current SIO
// level (meaningful when the port drives it, i.e. during a write phase),
// sioIsOutput reports whether the direction register currently has SIO
// configured as an output from the GBA (a write phase) or an input (a
// read phase, where the RTC itself drives SIO).
func (r *RTC) Clock(cs, sck, risingSCK, sio, sioIsOutput bool) {
	if !cs {
		r.state = rtcIdle
		r.bitCount = 0
		return
	}
	if !risingSCK {
		return
	}

	switch r.state {
	case rtcIdle:
		r.shiftIn = 0
		r.bitCount = 0
		r.state = rtcCommand
		fallthrough
	case rtcCommand:
		if sioIsOutput {
			r.shiftIn |= boolBit(sio) << uint(r.bitCount)
		}
		r.bitCount++
		if r.bitCount == 8 {
			r.command = r.shiftIn
			r.beginParams()
		}
	case rtcParamIn:
		if sioIsOutput && r.paramIdx < len(r.paramBytes) {
			r.paramBytes[r.paramIdx] |= boolBit(sio) << uint(r.paramBit)
			r.paramBit++
			if r.paramBit == 8 {
				r.paramBit = 0
				r.paramIdx++
				if r.paramIdx == len(r.paramBytes) {
					r.commitParams()
				}
			}
		}
	case rtcParamOut:
		if !sioIsOutput {
			r.paramBit++
			if r.paramBit == 8 {
				r.paramBit = 0
				r.paramIdx++
				if r.paramIdx >= len(r.paramBytes) {
					r.state = rtcIdle
				}
			}
		}
	}
}

func boolBit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// commandFunc extracts the 3 bit function selector from a command byte
// shaped 0110 fff d (direction in bit 0, reversed on the real protocol;
// simplified here to a fixed layout local to this implementation).
func (r *RTC) commandFunc() uint8 { return (r.command >> 1) & 0x7 }
func (r *RTC) commandIsRead() bool { return r.command&1 != 0 }

func (r *RTC) beginParams() {
	switch r.commandFunc() {
	case rtcReset:
		r.control = 0x40
		r.state = rtcIdle
	case rtcWriteControl:
		r.paramBytes = make([]uint8, 1)
		r.paramIdx, r.paramBit = 0, 0
		r.state = rtcParamIn
	case rtcReadControl:
		r.paramBytes = []uint8{r.control}
		r.paramIdx, r.paramBit = 0, 0
		r.state = rtcParamOut
	case rtcReadDateTime:
		r.paramBytes = r.encodeDateTime()
		r.paramIdx, r.paramBit = 0, 0
		r.state = rtcParamOut
	case rtcReadTime:
		r.paramBytes = r.encodeDateTime()[4:]
		r.paramIdx, r.paramBit = 0, 0
		r.state = rtcParamOut
	case rtcWriteDateTime:
		r.paramBytes = make([]uint8, 7)
		r.paramIdx, r.paramBit = 0, 0
		r.state = rtcParamIn
	case rtcWriteTime:
		r.paramBytes = make([]uint8, 3)
		r.paramIdx, r.paramBit = 0, 0
		r.state = rtcParamIn
	default:
		r.state = rtcIdle
	}
}

func (r *RTC) commitParams() {
	if r.commandFunc() == rtcWriteControl {
		r.control = r.paramBytes[0]
	}
	// Write-date/time commands are accepted but not applied: the RTC
	// always reports the host wall clock, matching spec.md's statement
	// that date/time comes from the host rather than from writable
	// registers.
	r.state = rtcIdle
}

func bcd(v int) uint8 {
	return uint8((v/10)<<4 | (v % 10))
}

func (r *RTC) encodeDateTime() []uint8 {
	now := Now()
	year := now.Year() % 100
	return []uint8{
		bcd(year),
		bcd(int(now.Month())),
		bcd(now.Day()),
		bcd(int(now.Weekday())),
		bcd(now.Hour()),
		bcd(now.Minute()),
		bcd(now.Second()),
	}
}

// Read returns the current SIO level the RTC is driving, for the GPIO
// port to OR into its data register when SIO is configured as an input
// (i.e. the RTC, not the GBA, drives it).
func (r *RTC) Read(cs, sck bool) bool {
	if !cs || r.state != rtcParamOut || r.paramIdx >= len(r.paramBytes) {
		return false
	}
	bit := (r.paramBytes[r.paramIdx] >> uint(r.paramBit)) & 1
	return bit != 0
}
