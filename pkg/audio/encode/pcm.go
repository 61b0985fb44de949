// ABOUTME: PCM audio encoder
// ABOUTME: Packs 1024-frame int16 blocks into 16-bit or 24-bit little-endian PCM
package encode

import (
	"encoding/binary"
	"fmt"

	"github.com/Resonate-Protocol/streamenc-go/pkg/audio"
)

// PCMFrameSize is the block length, in samples per channel, of a PCM packet
const PCMFrameSize = 1024

// PCMEncoder encodes PCM audio
type PCMEncoder struct {
	bitDepth   int
	sampleRate int
	channels   int
}

// NewPCM creates a new PCM encoder
func NewPCM(format audio.Format) (Encoder, error) {
	if format.Codec != "pcm" {
		return nil, fmt.Errorf("invalid codec for PCM encoder: %s", format.Codec)
	}

	if format.BitDepth != 16 && format.BitDepth != 24 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", format.BitDepth)
	}

	if format.Channels < 1 {
		return nil, fmt.Errorf("invalid channel count: %d", format.Channels)
	}

	return &PCMEncoder{
		bitDepth:   format.BitDepth,
		sampleRate: format.SampleRate,
		channels:   format.Channels,
	}, nil
}

// Encode converts int16 samples to PCM bytes
func (e *PCMEncoder) Encode(pcm []int16) ([]byte, error) {
	if len(pcm) != PCMFrameSize*e.channels {
		return nil, fmt.Errorf("pcm block has %d samples, want %d", len(pcm), PCMFrameSize*e.channels)
	}

	if e.bitDepth == 24 {
		// 24-bit PCM: 3 bytes per sample, 16-bit value in the upper bytes
		output := make([]byte, len(pcm)*3)
		for i, sample := range pcm {
			output[i*3] = 0
			output[i*3+1] = byte(sample)
			output[i*3+2] = byte(sample >> 8)
		}
		return output, nil
	}

	output := make([]byte, len(pcm)*2)
	for i, sample := range pcm {
		binary.LittleEndian.PutUint16(output[i*2:], uint16(sample))
	}
	return output, nil
}

func (e *PCMEncoder) FrameSize() int  { return PCMFrameSize }
func (e *PCMEncoder) SampleRate() int { return e.sampleRate }
func (e *PCMEncoder) Channels() int   { return e.channels }

// Close releases resources
func (e *PCMEncoder) Close() error {
	return nil
}
