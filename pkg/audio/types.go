// ABOUTME: Audio type definitions
// ABOUTME: Defines audio formats and s16le sample conversions
package audio

import (
	"encoding/binary"
	"fmt"
)

// BytesPerSample is the size of one s16le sample, the only input format
// the encoders accept.
const BytesPerSample = 2

// Format describes audio stream format
type Format struct {
	Codec       string
	SampleRate  int
	Channels    int
	BitDepth    int
	CodecHeader []byte // For Opus, etc.
}

// String renders the format for logs
func (f Format) String() string {
	return fmt.Sprintf("%s %dHz %dch %dbit", f.Codec, f.SampleRate, f.Channels, f.BitDepth)
}

// FrameBytes returns the byte length of samplesPerChannel interleaved s16le frames
func FrameBytes(samplesPerChannel, channels int) int {
	return samplesPerChannel * channels * BytesPerSample
}

// DecodeS16LE converts little-endian 16-bit bytes into samples.
// dst must hold at least len(src)/2 samples. Returns samples written.
func DecodeS16LE(dst []int16, src []byte) int {
	n := len(src) / BytesPerSample
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = int16(binary.LittleEndian.Uint16(src[i*2:]))
	}
	return n
}

// EncodeS16LE converts samples into little-endian 16-bit bytes.
// dst must hold at least 2*len(src) bytes. Returns bytes written.
func EncodeS16LE(dst []byte, src []int16) int {
	n := len(src)
	if n*BytesPerSample > len(dst) {
		n = len(dst) / BytesPerSample
	}
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(src[i]))
	}
	return n * BytesPerSample
}

// SampleFromBitDepth scales a signed sample of the given bit depth to 16-bit
func SampleFromBitDepth(sample int32, bitDepth int) int16 {
	switch {
	case bitDepth > 16:
		return int16(sample >> (bitDepth - 16))
	case bitDepth < 16:
		return int16(sample << (16 - bitDepth))
	default:
		return int16(sample)
	}
}
