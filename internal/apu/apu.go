// Package apu implements the audio processing unit described in spec.md
// §4.7: an 8-step frame sequencer driving four legacy tone channels plus
// two DMA-fed FIFOs, mixed into a signed 16 bit stereo sample stream.
package apu

import "github.com/ljsdev/goba/internal/scheduler"

const (
	cpuHz          = 16777216
	frameSeqHz     = 512
	sampleHz       = 32768 // standard GBA host output rate; matches internal/host/audiodump and guifrontend
	frameSeqPeriod = cpuHz / frameSeqHz
	samplePeriod   = cpuHz / sampleHz
)

// SampleFunc receives one stereo sample pair, signed 16 bit, matching the
// host audio callback in spec.md §6.
type SampleFunc func(left, right int16)

// APU is the top-level audio unit.
type APU struct {
	sched    *scheduler.Scheduler
	idSeq    scheduler.ID
	idSample scheduler.ID

	sq0   squareChannel
	sq1   squareChannel
	wave  waveChannel
	noise noiseChannel

	fifoA, fifoB           FIFO
	fifoATimer, fifoBTimer int

	seqStep int

	masterEnable bool
	leftVol      uint8
	rightVol     uint8
	leftEnable   [6]bool // sq0,sq1,wave,noise,fifoA,fifoB
	rightEnable  [6]bool
	globalVolume uint8 // 0=25%,1=50%,2=100%
	fifoAVolFull bool  // false=50%, true=100%
	fifoBVolFull bool

	onSample SampleFunc
}

// New constructs the APU, arming its frame-sequencer and sample-tick
// scheduler events.
func New(sched *scheduler.Scheduler, idSeq, idSample scheduler.ID) *APU {
	a := &APU{sched: sched, idSeq: idSeq, idSample: idSample}
	a.sq0.hasSweep = true
	a.sched.Add(idSeq, frameSeqPeriod, a.onFrameSeq, a)
	a.sched.Add(idSample, samplePeriod, a.onSampleTick, a)
	return a
}

// SetSampleFunc installs the host audio callback.
func (a *APU) SetSampleFunc(fn SampleFunc) { a.onSample = fn }

func (a *APU) onFrameSeq(user interface{}, id scheduler.ID, lateness int32) {
	switch a.seqStep {
	case 0, 2, 4, 6:
		a.sq0.clockLength()
		a.sq1.clockLength()
		a.wave.clockLength()
		a.noise.clockLength()
	}
	if a.seqStep == 2 || a.seqStep == 6 {
		a.sq0.clockSweep()
	}
	if a.seqStep == 7 {
		a.sq0.clockEnvelope()
		a.sq1.clockEnvelope()
		a.noise.clockEnvelope()
	}
	a.seqStep = (a.seqStep + 1) % 8
	interval := frameSeqPeriod - lateness
	if interval < 1 {
		interval = 1
	}
	a.sched.Add(a.idSeq, interval, a.onFrameSeq, a)
}

func (a *APU) onSampleTick(user interface{}, id scheduler.ID, lateness int32) {
	a.sq0.step()
	a.sq1.step()
	a.wave.step()
	a.noise.step()

	var left, right int32
	sources := [4]int32{a.sq0.output(), a.sq1.output(), a.wave.output(), a.noise.output()}
	for i, s := range sources {
		if a.leftEnable[i] {
			left += s
		}
		if a.rightEnable[i] {
			right += s
		}
	}
	shift := [3]int32{2, 1, 0}[a.globalVolume]
	left >>= shift
	right >>= shift

	left += int32(int8(a.fifoA.current)) * fifoScale(a.fifoAVolFull)
	right += int32(int8(a.fifoA.current)) * fifoScale(a.fifoAVolFull)
	left += int32(int8(a.fifoB.current)) * fifoScale(a.fifoBVolFull)
	right += int32(int8(a.fifoB.current)) * fifoScale(a.fifoBVolFull)

	left = clamp16(left * int32(a.leftVol+1))
	right = clamp16(right * int32(a.rightVol+1))

	if a.onSample != nil && a.masterEnable {
		a.onSample(int16(left), int16(right))
	} else if a.onSample != nil {
		a.onSample(0, 0)
	}

	interval := samplePeriod - lateness
	if interval < 1 {
		interval = 1
	}
	a.sched.Add(a.idSample, interval, a.onSampleTick, a)
}

func fifoScale(full bool) int32 {
	if full {
		return 2
	}
	return 1
}

func clamp16(v int32) int32 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return v
}

// FIFODrain implements timer.FIFODrain for whichever timer index a FIFO
// is bound to (SOUNDCNT_H selects timer 0 or 1 per FIFO).
func (a *APU) FIFODrain(timerIndex int) {
	if a.fifoATimer == timerIndex {
		a.fifoA.pop()
	}
	if a.fifoBTimer == timerIndex {
		a.fifoB.pop()
	}
}
