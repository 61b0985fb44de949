// ABOUTME: Opus audio encoder
// ABOUTME: Encodes 20ms int16 blocks to Opus packets and builds the OpusHead header
package encode

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Resonate-Protocol/streamenc-go/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

const (
	// OpusFrameMs is the block duration every Opus packet covers
	OpusFrameMs = 20

	// OpusPreSkip is the libopus encoder lookahead at 48kHz (6.5ms)
	OpusPreSkip = 312

	maxOpusPacket = 4000
)

// ErrEncoderClosed is returned when encoding after Close
var ErrEncoderClosed = errors.New("encoder closed")

// OpusEncoder encodes Opus audio
type OpusEncoder struct {
	encoder    *opus.Encoder
	sampleRate int
	channels   int
	frameSize  int
	bitrate    int
}

// IsOpusRate reports whether libopus accepts rate without resampling
func IsOpusRate(rate int) bool {
	switch rate {
	case 8000, 12000, 16000, 24000, 48000:
		return true
	}
	return false
}

// NewOpus creates a new Opus encoder. bitrate is in bits per second;
// zero selects 64 kbps per channel.
func NewOpus(format audio.Format, bitrate int) (Encoder, error) {
	if format.Codec != "opus" {
		return nil, fmt.Errorf("invalid codec for Opus encoder: %s", format.Codec)
	}
	if format.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16)", format.BitDepth)
	}

	encoder, err := opus.NewEncoder(format.SampleRate, format.Channels, opus.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus encoder: %w", err)
	}

	if bitrate == 0 {
		bitrate = 64000 * format.Channels
	}
	if err := encoder.SetBitrate(bitrate); err != nil {
		return nil, fmt.Errorf("failed to set opus bitrate %d: %w", bitrate, err)
	}

	return &OpusEncoder{
		encoder:    encoder,
		sampleRate: format.SampleRate,
		channels:   format.Channels,
		frameSize:  format.SampleRate * OpusFrameMs / 1000,
		bitrate:    bitrate,
	}, nil
}

// Encode converts one block of int16 samples to an Opus packet
func (e *OpusEncoder) Encode(pcm []int16) ([]byte, error) {
	if e.encoder == nil {
		return nil, ErrEncoderClosed
	}
	if len(pcm) != e.frameSize*e.channels {
		return nil, fmt.Errorf("opus block has %d samples, want %d", len(pcm), e.frameSize*e.channels)
	}

	data := make([]byte, maxOpusPacket)
	n, err := e.encoder.Encode(pcm, data)
	if err != nil {
		return nil, fmt.Errorf("opus encode error: %w", err)
	}

	return data[:n], nil
}

func (e *OpusEncoder) FrameSize() int  { return e.frameSize }
func (e *OpusEncoder) SampleRate() int { return e.sampleRate }
func (e *OpusEncoder) Channels() int   { return e.channels }

// Bitrate returns the configured target bitrate in bits per second
func (e *OpusEncoder) Bitrate() int { return e.bitrate }

// Close releases resources
func (e *OpusEncoder) Close() error {
	// opus.Encoder is garbage collected, dropping the reference is enough
	e.encoder = nil
	return nil
}

// OpusHead builds the RFC 7845 identification header used as codec extra data.
// inputRate is informational for decoders; Opus always decodes at 48kHz.
func OpusHead(channels, inputRate int, preSkip uint16) []byte {
	head := make([]byte, 19)
	copy(head, "OpusHead")
	head[8] = 1 // version
	head[9] = byte(channels)
	binary.LittleEndian.PutUint16(head[10:], preSkip)
	binary.LittleEndian.PutUint32(head[12:], uint32(inputRate))
	binary.LittleEndian.PutUint16(head[16:], 0) // output gain
	head[18] = 0                                // mapping family: mono/stereo
	return head
}
