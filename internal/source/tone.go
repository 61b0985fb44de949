// ABOUTME: Test tone generator
// ABOUTME: Sine wave at a configurable frequency, rate and length
package source

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/Resonate-Protocol/streamenc-go/pkg/audio"
)

// ToneSource generates a sine test tone on every channel
type ToneSource struct {
	opts        ToneOptions
	sampleIndex int64
	total       int64 // frames to produce, -1 for endless
}

// NewTone creates a tone generator
func NewTone(opts ToneOptions) (*ToneSource, error) {
	if opts.SampleRate <= 0 || opts.Channels <= 0 {
		return nil, fmt.Errorf("invalid tone format: %dHz %dch", opts.SampleRate, opts.Channels)
	}
	if opts.Frequency <= 0 {
		opts.Frequency = 440.0 // A4 note
	}

	total := int64(-1)
	if opts.Duration > 0 {
		total = int64(opts.Duration) * int64(opts.SampleRate) / int64(time.Second)
	}
	return &ToneSource{opts: opts, total: total}, nil
}

func (s *ToneSource) Read(p []byte) (int, error) {
	frameBytes := s.opts.Channels * audio.BytesPerSample
	frames := int64(len(p) / frameBytes)
	if frames == 0 && len(p) > 0 {
		return 0, io.ErrShortBuffer
	}
	if s.total >= 0 {
		if remaining := s.total - s.sampleIndex; remaining < frames {
			frames = remaining
		}
		if frames == 0 {
			return 0, io.EOF
		}
	}

	for i := int64(0); i < frames; i++ {
		t := float64(s.sampleIndex+i) / float64(s.opts.SampleRate)
		// 50% volume
		v := int16(math.Sin(2*math.Pi*s.opts.Frequency*t) * 32767.0 * 0.5)
		for ch := 0; ch < s.opts.Channels; ch++ {
			binary.LittleEndian.PutUint16(p[(int(i)*s.opts.Channels+ch)*2:], uint16(v))
		}
	}
	s.sampleIndex += frames

	return int(frames) * frameBytes, nil
}

func (s *ToneSource) SampleRate() int { return s.opts.SampleRate }
func (s *ToneSource) Channels() int   { return s.opts.Channels }
func (s *ToneSource) Metadata() (string, string, string) {
	return fmt.Sprintf("Test Tone %.0fHz", s.opts.Frequency), "streamenc", ""
}
func (s *ToneSource) Close() error { return nil }
