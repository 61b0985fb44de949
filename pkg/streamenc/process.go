// ABOUTME: Input submission, output drain and end-of-stream flush
// ABOUTME: Translates codec sentinels into Accepted/NotAccepting and ProducedPacket/NeedMoreInput
package streamenc

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Resonate-Protocol/streamenc-go/internal/metrics"
	"github.com/Resonate-Protocol/streamenc-go/pkg/audio"
	"github.com/Resonate-Protocol/streamenc-go/pkg/codec"
)

// ProcessInput submits one frame of interleaved s16le PCM tagged with pts in
// sample-clock units. buf must be exactly FrameBytes() long. The frame is
// copied; buf can be reused once the call returns.
//
// NotAccepting is backpressure: nothing was queued, drain then resubmit the
// same frame.
func (e *Encoder) ProcessInput(buf []byte, pts int64) (InputStatus, error) {
	if err := e.usable(); err != nil {
		return NotAccepting, err
	}
	if e.flushed {
		return NotAccepting, ErrFlushed
	}
	if len(buf) != e.FrameBytes() {
		return NotAccepting, fmt.Errorf("%w: frame is %d bytes, want %d", ErrInvalidArgument, len(buf), e.FrameBytes())
	}

	audio.DecodeS16LE(e.pcm, buf)
	err := e.transform.ProcessInput(e.pcm, pts)
	switch {
	case err == nil:
		e.stats.FramesIn++
		metrics.FramesTotal.WithLabelValues(e.cfg.Codec).Inc()
		return Accepted, nil
	case errors.Is(err, codec.ErrNotAccepting):
		e.stats.Backpressure++
		metrics.BackpressureTotal.WithLabelValues(e.cfg.Codec).Inc()
		e.logger.Debug("codec not accepting input", zap.Int64("pts", pts))
		return NotAccepting, nil
	default:
		return NotAccepting, e.fail("process input", err)
	}
}

// ProcessOutput pulls at most one packet. NeedMoreInput means the codec has
// nothing ready, which is normal while it primes.
func (e *Encoder) ProcessOutput() (Packet, OutputStatus, error) {
	if err := e.usable(); err != nil {
		return Packet{}, NeedMoreInput, err
	}

	s, err := e.transform.ProcessOutput()
	if errors.Is(err, codec.ErrNeedMoreInput) {
		return Packet{}, NeedMoreInput, nil
	}
	if err != nil {
		return Packet{}, NeedMoreInput, e.fail("process output", err)
	}

	e.stats.PacketsOut++
	e.stats.BytesOut += int64(len(s.Data))
	metrics.PacketsTotal.WithLabelValues(e.cfg.Codec).Inc()
	metrics.BytesTotal.WithLabelValues(e.cfg.Codec).Add(float64(len(s.Data)))

	return Packet{
		Data:     s.Data,
		PTS:      s.PTS,
		DTS:      s.PTS,
		Duration: s.Duration,
		TimeBase: TimeBase{Num: 1, Den: e.cfg.SampleRate},
		Type:     MediaTypeAudio,
	}, ProducedPacket, nil
}

// Drain calls ProcessOutput until NeedMoreInput, handing each packet to fn.
// It returns the number of packets delivered. An error from fn stops the
// drain and is returned as is.
func (e *Encoder) Drain(fn func(Packet) error) (int, error) {
	n := 0
	for {
		pkt, status, err := e.ProcessOutput()
		if err != nil {
			return n, err
		}
		if status == NeedMoreInput {
			return n, nil
		}
		n++
		if fn != nil {
			if err := fn(pkt); err != nil {
				return n, err
			}
		}
	}
}

// Flush marks end of stream. The codec pads its last partial block with
// silence; drain afterwards to collect the tail. ProcessInput fails with
// ErrFlushed from here on.
func (e *Encoder) Flush() error {
	if err := e.usable(); err != nil {
		return err
	}
	if e.flushed {
		return nil
	}
	if err := e.transform.Drain(); err != nil {
		return e.fail("flush", err)
	}
	e.flushed = true
	e.logger.Debug("encoder flushed", zap.Int64("frames_in", e.stats.FramesIn))
	return nil
}
