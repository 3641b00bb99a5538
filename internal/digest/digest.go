// Package digest produces a cheap running hash of a frame's video or audio
// output, used by the end-to-end scenario tests in place of embedding
// golden image/audio fixtures.
package digest

import "hash/fnv"

// Video hashes a 240x160 15-bit-BGR pixel buffer.
func Video(pixels []uint16) uint64 {
	h := fnv.New64a()
	buf := make([]byte, 2)
	for _, p := range pixels {
		buf[0] = byte(p)
		buf[1] = byte(p >> 8)
		h.Write(buf)
	}
	return h.Sum64()
}

// Audio hashes a stream of interleaved signed 16 bit stereo samples.
func Audio(samples []int16) uint64 {
	h := fnv.New64a()
	buf := make([]byte, 2)
	for _, s := range samples {
		buf[0] = byte(s)
		buf[1] = byte(s >> 8)
		h.Write(buf)
	}
	return h.Sum64()
}
