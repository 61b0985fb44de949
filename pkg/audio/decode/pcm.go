// ABOUTME: PCM audio decoder
// ABOUTME: Decodes 16-bit and 24-bit PCM audio to int16 samples
package decode

import (
	"fmt"

	"github.com/Resonate-Protocol/streamenc-go/pkg/audio"
)

// PCMDecoder decodes PCM audio
type PCMDecoder struct {
	bitDepth int
}

// NewPCM creates a new PCM decoder
func NewPCM(format audio.Format) (Decoder, error) {
	if format.Codec != "pcm" {
		return nil, fmt.Errorf("invalid codec for PCM decoder: %s", format.Codec)
	}

	if format.BitDepth != 16 && format.BitDepth != 24 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", format.BitDepth)
	}

	return &PCMDecoder{
		bitDepth: format.BitDepth,
	}, nil
}

// Decode converts PCM bytes to int16 samples. 24-bit input keeps the
// upper 16 bits.
func (d *PCMDecoder) Decode(data []byte) ([]int16, error) {
	if d.bitDepth == 24 {
		numSamples := len(data) / 3
		samples := make([]int16, numSamples)
		for i := 0; i < numSamples; i++ {
			v := int32(data[i*3]) | int32(data[i*3+1])<<8 | int32(data[i*3+2])<<16
			if v&0x800000 != 0 {
				v |= ^0xFFFFFF
			}
			samples[i] = audio.SampleFromBitDepth(v, 24)
		}
		return samples, nil
	}

	samples := make([]int16, len(data)/audio.BytesPerSample)
	audio.DecodeS16LE(samples, data)
	return samples, nil
}

// Close releases resources
func (d *PCMDecoder) Close() error {
	return nil
}
