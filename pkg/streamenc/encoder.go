// ABOUTME: Encoder adapter lifecycle and accessors
// ABOUTME: New validates, Initialize acquires the codec, Close releases it
package streamenc

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Resonate-Protocol/streamenc-go/internal/metrics"
	"github.com/Resonate-Protocol/streamenc-go/pkg/audio"
	"github.com/Resonate-Protocol/streamenc-go/pkg/codec"
)

// Stats counts what passed through a session
type Stats struct {
	FramesIn     int64
	PacketsOut   int64
	BytesOut     int64
	Backpressure int64
}

// Encoder adapts one codec transform. It owns the transform exclusively.
type Encoder struct {
	cfg       Config
	desc      codec.Descriptor
	frameSize int

	id     string
	logger *zap.Logger

	transform codec.Transform
	pcm       []int16

	extra        []byte
	extraFetched bool

	flushed bool
	closed  bool
	failure error

	stats Stats
}

// New validates cfg and returns an uninitialized Encoder. No codec
// resources are acquired until Initialize.
func New(cfg Config, opts ...Option) (*Encoder, error) {
	desc, err := cfg.validate()
	if err != nil {
		return nil, err
	}

	e := &Encoder{
		cfg:       cfg,
		desc:      desc,
		frameSize: desc.FrameSize(cfg.SampleRate),
		id:        uuid.New().String(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(zap.String("session", e.id), zap.String("codec", cfg.Codec))

	if e.frameSize <= 0 {
		return nil, fmt.Errorf("%w: no frame size for %dHz", ErrInvalidConfig, cfg.SampleRate)
	}
	return e, nil
}

// Initialize constructs the codec transform. On failure nothing is kept and
// the Encoder stays uninitialized.
func (e *Encoder) Initialize() error {
	if e.closed {
		return ErrClosed
	}
	if e.transform != nil {
		return ErrAlreadyInitialized
	}

	t, err := e.desc.New(e.cfg.params())
	if err != nil {
		e.logger.Warn("codec rejected configuration", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrInitFailed, err)
	}
	if t.FrameSize() != e.frameSize {
		t.Close()
		return fmt.Errorf("%w: codec frame size %d, expected %d", ErrInitFailed, t.FrameSize(), e.frameSize)
	}

	e.transform = t
	e.pcm = make([]int16, e.frameSize*e.cfg.Channels)
	metrics.ActiveSessions.WithLabelValues(e.cfg.Codec).Inc()

	e.logger.Info("encoder initialized",
		zap.Int("bitrate_kbps", e.cfg.Bitrate),
		zap.Int("channels", e.cfg.Channels),
		zap.Int("sample_rate", e.cfg.SampleRate),
		zap.Int("frame_size", e.frameSize))
	return nil
}

// Close releases the codec. It is safe at any point, including mid-stream
// and after a failed Initialize. Later calls do nothing.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	if e.transform == nil {
		return nil
	}
	err := e.transform.Close()
	e.transform = nil
	e.pcm = nil
	metrics.ActiveSessions.WithLabelValues(e.cfg.Codec).Dec()

	e.logger.Info("encoder closed",
		zap.Int64("frames_in", e.stats.FramesIn),
		zap.Int64("packets_out", e.stats.PacketsOut),
		zap.Int64("bytes_out", e.stats.BytesOut),
		zap.Int64("backpressure", e.stats.Backpressure))
	return err
}

// FrameSize returns the samples per channel every ProcessInput must carry
func (e *Encoder) FrameSize() int { return e.frameSize }

// FrameBytes returns the byte length every ProcessInput buffer must have
func (e *Encoder) FrameBytes() int { return audio.FrameBytes(e.frameSize, e.cfg.Channels) }

// SampleRate returns the session rate, which is also the packet time base
func (e *Encoder) SampleRate() int { return e.cfg.SampleRate }

func (e *Encoder) Channels() int { return e.cfg.Channels }

func (e *Encoder) Codec() string { return e.cfg.Codec }

func (e *Encoder) Bitrate() int { return e.cfg.Bitrate }

// ID returns the session ID attached to every log line
func (e *Encoder) ID() string { return e.id }

// Stats returns counters for the session so far
func (e *Encoder) Stats() Stats { return e.stats }

// ExtraData returns the codec's decoder initialization bytes. ok is false
// before Initialize, after Close, or when the codec has none. The returned
// slice is the same for the whole session and must not be modified.
func (e *Encoder) ExtraData() ([]byte, bool) {
	if e.transform == nil {
		return nil, false
	}
	if !e.extraFetched {
		if header := e.transform.CodecHeader(); len(header) > 0 {
			e.extra = append([]byte(nil), header...)
		}
		e.extraFetched = true
	}
	return e.extra, len(e.extra) > 0
}

// usable reports the first reason the session cannot take calls
func (e *Encoder) usable() error {
	switch {
	case e.closed:
		return ErrClosed
	case e.transform == nil:
		return ErrNotInitialized
	case e.failure != nil:
		return e.failure
	}
	return nil
}

// fail latches a codec error so every later call reports it
func (e *Encoder) fail(op string, err error) error {
	e.failure = fmt.Errorf("%w: %s: %w", ErrEncodeFailure, op, err)
	metrics.EncodeErrorsTotal.WithLabelValues(e.cfg.Codec).Inc()
	e.logger.Error("encode failed", zap.String("op", op), zap.Error(err))
	return e.failure
}

// Failed reports whether the session has latched an encode failure
func (e *Encoder) Failed() bool {
	return errors.Is(e.failure, ErrEncodeFailure)
}
