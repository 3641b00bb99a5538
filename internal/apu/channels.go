package apu

// dutyTable holds the eight-step waveform for each of the four duty
// cycle settings (12.5%, 25%, 50%, 75%), matching the legacy tone
// channel hardware.
var dutyTable = [4][8]int32{
	{0, 0, 0, 0, 0, 0, 0, 1},
	{1, 0, 0, 0, 0, 0, 0, 1},
	{1, 0, 0, 0, 0, 1, 1, 1},
	{0, 1, 1, 1, 1, 1, 1, 0},
}

// squareChannel implements tone channels 0 (with sweep) and 1.
type squareChannel struct {
	duty     uint8
	dutyStep int
	freqTimer int32
	period    int32

	lengthCounter uint8
	lengthEnable  bool

	envInitial  uint8
	envIncrease bool
	envPeriod   uint8
	envTimer    uint8
	envVolume   uint8

	sweepPeriod    uint8
	sweepIncrease  bool
	sweepShift     uint8
	sweepTimer     uint8
	sweepEnabled   bool
	sweepShadowFreq uint32
	hasSweep       bool

	rawFreq uint32
	enabled bool
}

func freqToPeriod(raw uint32) int32 {
	return (2048 - int32(raw)) * 4
}

func (s *squareChannel) writeFreqControl(v uint16, trigger bool) {
	s.rawFreq = uint32(v) & 0x7FF
	s.lengthEnable = v&(1<<14) != 0
	s.period = freqToPeriod(s.rawFreq)
	if trigger {
		s.trigger()
	}
}

func (s *squareChannel) writeDutyLengthEnv(v uint16) {
	s.duty = uint8((v >> 6) & 0x3)
	s.lengthCounter = 64 - uint8(v&0x3F)
	s.envInitial = uint8((v >> 12) & 0xF)
	s.envIncrease = v&(1<<11) != 0
	s.envPeriod = uint8((v >> 8) & 0x7)
}

func (s *squareChannel) writeSweep(v uint16) {
	s.sweepPeriod = uint8((v >> 4) & 0x7)
	s.sweepIncrease = v&(1<<3) == 0
	s.sweepShift = uint8(v & 0x7)
}

func (s *squareChannel) trigger() {
	s.enabled = true
	if s.lengthCounter == 0 {
		s.lengthCounter = 64
	}
	s.freqTimer = s.period
	s.envVolume = s.envInitial
	s.envTimer = s.envPeriod
	s.sweepShadowFreq = s.rawFreq
	s.sweepTimer = s.sweepPeriod
	s.sweepEnabled = s.sweepPeriod != 0 || s.sweepShift != 0
	if s.hasSweep && s.sweepShift != 0 {
		s.sweepCalc()
	}
}

func (s *squareChannel) sweepCalc() uint32 {
	delta := s.sweepShadowFreq >> s.sweepShift
	var newFreq uint32
	if s.sweepIncrease {
		newFreq = s.sweepShadowFreq + delta
	} else {
		newFreq = s.sweepShadowFreq - delta
	}
	if newFreq > 2047 {
		s.enabled = false
	}
	return newFreq
}

func (s *squareChannel) clockSweep() {
	if !s.hasSweep || !s.sweepEnabled {
		return
	}
	if s.sweepTimer > 0 {
		s.sweepTimer--
	}
	if s.sweepTimer != 0 {
		return
	}
	s.sweepTimer = s.sweepPeriod
	if s.sweepTimer == 0 {
		s.sweepTimer = 8
	}
	if s.sweepPeriod == 0 {
		return
	}
	newFreq := s.sweepCalc()
	if newFreq <= 2047 && s.sweepShift != 0 {
		s.sweepShadowFreq = newFreq
		s.rawFreq = newFreq
		s.period = freqToPeriod(newFreq)
		s.sweepCalc()
	}
}

func (s *squareChannel) clockLength() {
	if s.lengthEnable && s.lengthCounter > 0 {
		s.lengthCounter--
		if s.lengthCounter == 0 {
			s.enabled = false
		}
	}
}

func (s *squareChannel) clockEnvelope() {
	if s.envPeriod == 0 {
		return
	}
	if s.envTimer > 0 {
		s.envTimer--
	}
	if s.envTimer == 0 {
		s.envTimer = s.envPeriod
		if s.envIncrease && s.envVolume < 15 {
			s.envVolume++
		} else if !s.envIncrease && s.envVolume > 0 {
			s.envVolume--
		}
	}
}

func (s *squareChannel) step() {
	s.freqTimer--
	if s.freqTimer <= 0 {
		s.freqTimer += s.period
		s.dutyStep = (s.dutyStep + 1) % 8
	}
}

func (s *squareChannel) output() int32 {
	if !s.enabled {
		return 0
	}
	return dutyTable[s.duty][s.dutyStep] * int32(s.envVolume) * 2
}

// waveChannel is tone channel 2, playing a 32-sample 4 bit wavetable.
type waveChannel struct {
	dacEnabled bool
	ram        [16]byte // 32 4 bit samples
	lengthCounter uint16
	lengthEnable  bool
	volumeShift   uint8 // 0=mute,1=100%,2=50%,3=25%
	rawFreq       uint32
	period        int32
	freqTimer     int32
	samplePos     int
	enabled       bool
}

func (w *waveChannel) writeFreqControl(v uint16, trigger bool) {
	w.rawFreq = uint32(v) & 0x7FF
	w.lengthEnable = v&(1<<14) != 0
	w.period = freqToPeriod(w.rawFreq) / 2
	if trigger {
		w.trigger()
	}
}

func (w *waveChannel) writeLengthVolume(v uint16) {
	w.lengthCounter = 256 - (v & 0xFF)
	w.volumeShift = uint8((v >> 13) & 0x3)
}

func (w *waveChannel) writeControl(v uint16) {
	w.dacEnabled = v&(1<<7) != 0
}

func (w *waveChannel) writeRAM(offset int, v byte) {
	if offset >= 0 && offset < len(w.ram) {
		w.ram[offset] = v
	}
}

func (w *waveChannel) trigger() {
	w.enabled = w.dacEnabled
	if w.lengthCounter == 0 {
		w.lengthCounter = 256
	}
	w.freqTimer = w.period
	w.samplePos = 0
}

func (w *waveChannel) clockLength() {
	if w.lengthEnable && w.lengthCounter > 0 {
		w.lengthCounter--
		if w.lengthCounter == 0 {
			w.enabled = false
		}
	}
}

func (w *waveChannel) step() {
	if w.period <= 0 {
		return
	}
	w.freqTimer--
	if w.freqTimer <= 0 {
		w.freqTimer += w.period
		w.samplePos = (w.samplePos + 1) % 32
	}
}

func (w *waveChannel) output() int32 {
	if !w.enabled || !w.dacEnabled {
		return 0
	}
	b := w.ram[w.samplePos/2]
	var nibble byte
	if w.samplePos%2 == 0 {
		nibble = b >> 4
	} else {
		nibble = b & 0xF
	}
	sample := int32(nibble)
	switch w.volumeShift {
	case 0:
		return 0
	case 1:
		return sample * 2
	case 2:
		return sample
	default:
		return sample / 2
	}
}

// noiseChannel is tone channel 3, an LFSR-driven pseudo-random generator.
type noiseChannel struct {
	lengthCounter uint8
	lengthEnable  bool

	envInitial  uint8
	envIncrease bool
	envPeriod   uint8
	envTimer    uint8
	envVolume   uint8

	shiftFreq  uint8
	widthMode7 bool
	divRatio   uint8

	lfsr      uint16
	freqTimer int32
	enabled   bool
}

var noiseDivisors = [8]int32{8, 16, 32, 48, 64, 80, 96, 112}

func (n *noiseChannel) writeLengthEnv(v uint16) {
	n.lengthCounter = 64 - uint8(v&0x3F)
	n.envInitial = uint8((v >> 12) & 0xF)
	n.envIncrease = v&(1<<11) != 0
	n.envPeriod = uint8((v >> 8) & 0x7)
}

func (n *noiseChannel) writeFreqControl(v uint16, trigger bool) {
	n.divRatio = uint8(v & 0x7)
	n.widthMode7 = v&(1<<3) != 0
	n.shiftFreq = uint8((v >> 4) & 0xF)
	n.lengthEnable = v&(1<<14) != 0
	if trigger {
		n.trigger()
	}
}

func (n *noiseChannel) period() int32 {
	return noiseDivisors[n.divRatio] << n.shiftFreq
}

func (n *noiseChannel) trigger() {
	n.enabled = true
	if n.lengthCounter == 0 {
		n.lengthCounter = 64
	}
	n.envVolume = n.envInitial
	n.envTimer = n.envPeriod
	n.lfsr = 0x7FFF
	n.freqTimer = n.period()
}

func (n *noiseChannel) clockLength() {
	if n.lengthEnable && n.lengthCounter > 0 {
		n.lengthCounter--
		if n.lengthCounter == 0 {
			n.enabled = false
		}
	}
}

func (n *noiseChannel) clockEnvelope() {
	if n.envPeriod == 0 {
		return
	}
	if n.envTimer > 0 {
		n.envTimer--
	}
	if n.envTimer == 0 {
		n.envTimer = n.envPeriod
		if n.envIncrease && n.envVolume < 15 {
			n.envVolume++
		} else if !n.envIncrease && n.envVolume > 0 {
			n.envVolume--
		}
	}
}

func (n *noiseChannel) step() {
	n.freqTimer--
	if n.freqTimer <= 0 {
		n.freqTimer += n.period()
		xorBit := (n.lfsr & 1) ^ ((n.lfsr >> 1) & 1)
		n.lfsr = (n.lfsr >> 1) | (xorBit << 14)
		if n.widthMode7 {
			n.lfsr = (n.lfsr &^ (1 << 6)) | (xorBit << 6)
		}
	}
}

func (n *noiseChannel) output() int32 {
	if !n.enabled {
		return 0
	}
	if n.lfsr&1 != 0 {
		return 0
	}
	return int32(n.envVolume) * 2
}
