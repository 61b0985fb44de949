// ABOUTME: Built-in codecs: Opus via libopus and raw s16le PCM
// ABOUTME: Registered at init so the adapter can look them up by name
package codec

import (
	"github.com/Resonate-Protocol/streamenc-go/pkg/audio"
	"github.com/Resonate-Protocol/streamenc-go/pkg/audio/encode"
)

// OpusResampleRate is the rate non-native Opus sessions are resampled to
const OpusResampleRate = 48000

func init() {
	Register(Descriptor{
		Name:        "opus",
		MinBitrate:  6,
		MaxBitrate:  510,
		MinChannels: 1,
		MaxChannels: 2,
		SupportsRate: func(rate int) bool {
			// 20ms must be a whole number of frames at the session rate
			return rate >= 8000 && rate <= 96000 && rate%50 == 0
		},
		FrameSize: func(rate int) int {
			return rate * encode.OpusFrameMs / 1000
		},
		New: newOpus,
	})

	Register(Descriptor{
		Name:        "pcm",
		MinChannels: 1,
		MaxChannels: 8,
		SupportsRate: func(rate int) bool {
			return rate >= 8000 && rate <= 192000
		},
		FrameSize: func(int) int {
			return encode.PCMFrameSize
		},
		New: newPCM,
	})
}

func newOpus(p Params) (Transform, error) {
	codecRate := p.SampleRate
	if !encode.IsOpusRate(codecRate) {
		codecRate = OpusResampleRate
	}

	enc, err := encode.NewOpus(audio.Format{
		Codec:      "opus",
		SampleRate: codecRate,
		Channels:   p.Channels,
		BitDepth:   16,
	}, p.Bitrate*1000)
	if err != nil {
		return nil, err
	}

	header := encode.OpusHead(p.Channels, p.SampleRate, encode.OpusPreSkip)
	t, err := NewBlockTransform(enc, p.SampleRate, header)
	if err != nil {
		enc.Close()
		return nil, err
	}
	return t, nil
}

func newPCM(p Params) (Transform, error) {
	enc, err := encode.NewPCM(audio.Format{
		Codec:      "pcm",
		SampleRate: p.SampleRate,
		Channels:   p.Channels,
		BitDepth:   16,
	})
	if err != nil {
		return nil, err
	}
	return NewBlockTransform(enc, p.SampleRate, nil)
}
