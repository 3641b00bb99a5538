// Package audiodump records the emulator's audio callback to a WAV file
// and can decode a reference MP3 fixture, for the goba-headless host
// binary's audio capture.
package audiodump

import (
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"

	"github.com/ljsdev/goba/internal/apu"
)

const (
	sampleRate = 32768 // matches the APU's mixer tick rate
	bitDepth   = 16
	numChans   = 2
)

// Recorder buffers emitted stereo samples and flushes them to a WAV
// encoder on Close.
type Recorder struct {
	enc  *wav.Encoder
	buf  *audio.IntBuffer
}

// NewRecorder wraps w in a 16 bit PCM stereo WAV encoder.
func NewRecorder(w io.WriteSeeker) *Recorder {
	return &Recorder{
		enc: wav.NewEncoder(w, sampleRate, bitDepth, numChans, 1),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: numChans, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}
}

// SampleFunc returns an apu.SampleFunc that appends every sample pair to
// the recorder's internal buffer, flushing in fixed-size chunks so memory
// use stays bounded across a long capture.
func (r *Recorder) SampleFunc() apu.SampleFunc {
	return func(left, right int16) {
		r.buf.Data = append(r.buf.Data, int(left), int(right))
		if len(r.buf.Data) >= 8192 {
			r.flush()
		}
	}
}

func (r *Recorder) flush() {
	if len(r.buf.Data) == 0 {
		return
	}
	r.enc.Write(r.buf)
	r.buf.Data = r.buf.Data[:0]
}

// Close flushes any buffered samples and finalises the WAV file.
func (r *Recorder) Close() error {
	r.flush()
	return r.enc.Close()
}

// DecodeReferenceMP3 decodes an MP3 fixture into interleaved signed 16
// bit stereo samples. Nothing in this module calls it.
func DecodeReferenceMP3(r io.Reader) ([]int16, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}

	var out []int16
	frame := make([]byte, 4096)
	for {
		n, err := dec.Read(frame)
		for i := 0; i+1 < n; i += 2 {
			out = append(out, int16(uint16(frame[i])|uint16(frame[i+1])<<8))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, err
		}
	}
	return out, nil
}
