// ABOUTME: Block transform over a fixed-block encoder
// ABOUTME: Queues resampled input, emits one packet per block, maps packet pts back to input pts
package codec

import (
	"fmt"

	"github.com/Resonate-Protocol/streamenc-go/pkg/audio/encode"
	"github.com/Resonate-Protocol/streamenc-go/pkg/audio/resample"
)

// anchor pins a session-clock pts to the session frame where its input began
type anchor struct {
	frame int64
	pts   int64
}

type blockTransform struct {
	enc    encode.Encoder
	header []byte

	sessionRate int
	codecRate   int
	channels    int
	frameSize   int // session-rate samples per channel per ProcessInput
	blockFrames int // codec-rate samples per channel per packet

	rs      *resample.Resampler
	scratch []int16

	fifo      []int16
	submitted int64 // session frames accepted
	consumed  int64 // codec frames encoded
	anchors   []anchor

	draining bool
	closed   bool
}

// NewBlockTransform wraps enc, which runs at its own rate, in a Transform
// fed at sessionRate. Input is resampled when the two rates differ. The
// encoder block must map to a whole number of session frames.
func NewBlockTransform(enc encode.Encoder, sessionRate int, header []byte) (Transform, error) {
	codecRate := enc.SampleRate()
	blockFrames := enc.FrameSize()
	if sessionRate <= 0 || codecRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: session %d, codec %d", sessionRate, codecRate)
	}
	if (blockFrames*sessionRate)%codecRate != 0 {
		return nil, fmt.Errorf("block of %d frames at %dHz is not a whole number of frames at %dHz",
			blockFrames, codecRate, sessionRate)
	}

	t := &blockTransform{
		enc:         enc,
		header:      header,
		sessionRate: sessionRate,
		codecRate:   codecRate,
		channels:    enc.Channels(),
		frameSize:   blockFrames * sessionRate / codecRate,
		blockFrames: blockFrames,
	}
	if sessionRate != codecRate {
		t.rs = resample.New(sessionRate, codecRate, t.channels)
		t.scratch = make([]int16, t.rs.MaxOutputSamples(t.frameSize*t.channels))
	}
	t.fifo = make([]int16, 0, 2*t.blockFrames*t.channels)
	return t, nil
}

func (t *blockTransform) ProcessInput(pcm []int16, pts int64) error {
	if t.closed {
		return ErrClosed
	}
	if t.draining {
		return ErrDrained
	}
	if len(pcm) != t.frameSize*t.channels {
		return fmt.Errorf("input has %d samples, want %d", len(pcm), t.frameSize*t.channels)
	}
	if len(t.fifo) >= t.blockFrames*t.channels {
		return ErrNotAccepting
	}

	t.anchors = append(t.anchors, anchor{frame: t.submitted, pts: pts})
	t.submitted += int64(t.frameSize)

	if t.rs != nil {
		n := t.rs.Resample(pcm, t.scratch)
		t.fifo = append(t.fifo, t.scratch[:n]...)
	} else {
		t.fifo = append(t.fifo, pcm...)
	}
	return nil
}

func (t *blockTransform) ProcessOutput() (Sample, error) {
	if t.closed {
		return Sample{}, ErrClosed
	}
	block := t.blockFrames * t.channels
	if len(t.fifo) < block {
		return Sample{}, ErrNeedMoreInput
	}

	data, err := t.enc.Encode(t.fifo[:block])
	if err != nil {
		return Sample{}, err
	}

	pts := t.ptsAt(t.consumed)
	n := copy(t.fifo, t.fifo[block:])
	t.fifo = t.fifo[:n]
	t.consumed += int64(t.blockFrames)

	return Sample{
		Data:     data,
		PTS:      pts,
		Duration: int64(t.frameSize),
	}, nil
}

// ptsAt maps a codec-rate frame position to the session clock via the
// latest anchor at or before it. Anchors behind it are discarded.
func (t *blockTransform) ptsAt(codecFrame int64) int64 {
	frame := codecFrame * int64(t.sessionRate) / int64(t.codecRate)
	for len(t.anchors) > 1 && t.anchors[1].frame <= frame {
		t.anchors = t.anchors[1:]
	}
	if len(t.anchors) == 0 {
		return frame
	}
	a := t.anchors[0]
	return a.pts + frame - a.frame
}

func (t *blockTransform) Drain() error {
	if t.closed {
		return ErrClosed
	}
	if t.draining {
		return nil
	}
	t.draining = true

	if t.rs != nil {
		n := t.rs.Flush(t.scratch)
		t.fifo = append(t.fifo, t.scratch[:n]...)
	}

	block := t.blockFrames * t.channels
	if rem := len(t.fifo) % block; rem != 0 {
		t.fifo = append(t.fifo, make([]int16, block-rem)...)
	}
	return nil
}

func (t *blockTransform) CodecHeader() []byte { return t.header }

func (t *blockTransform) FrameSize() int { return t.frameSize }

func (t *blockTransform) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	t.fifo = nil
	t.anchors = nil
	return t.enc.Close()
}
