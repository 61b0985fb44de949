// ABOUTME: WebM container writer using at-wat/ebml-go
// ABOUTME: One Opus audio track, CodecPrivate carries the OpusHead
package mux

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/at-wat/ebml-go/mkvcore"
	"github.com/at-wat/ebml-go/webm"
	"go.uber.org/zap"

	"github.com/Resonate-Protocol/streamenc-go/pkg/streamenc"
)

// WebMWriter muxes packets into a WebM stream
type WebMWriter struct {
	track  Track
	block  webm.BlockWriteCloser
	sink   *latchWriter
	logger *zap.Logger

	packets uint64
}

// latchWriter records the first sink error and swallows later writes, so the
// container goroutine keeps consuming blocks and never stalls a writer. It
// also keeps the container from closing the caller's writer.
type latchWriter struct {
	w io.Writer

	mu  sync.Mutex
	err error
}

func (l *latchWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return len(p), nil
	}
	if _, err := l.w.Write(p); err != nil {
		l.err = err
	}
	return len(p), nil
}

func (l *latchWriter) Close() error { return nil }

func (l *latchWriter) fail(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err == nil {
		l.err = err
	}
}

func (l *latchWriter) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// NewWebM writes the WebM header for track to w
func NewWebM(w io.Writer, track Track, logger *zap.Logger) (*WebMWriter, error) {
	if track.Codec != "opus" {
		return nil, fmt.Errorf("webm: unsupported codec %q (supported: opus)", track.Codec)
	}

	m := &WebMWriter{track: track, sink: &latchWriter{w: w}, logger: logger}

	entry := webm.TrackEntry{
		Name:         "Audio",
		TrackNumber:  1,
		TrackUID:     1,
		CodecID:      "A_OPUS",
		CodecPrivate: track.CodecPrivate,
		TrackType:    2, // audio
		Audio: &webm.Audio{
			SamplingFrequency: float64(track.SampleRate),
			Channels:          uint64(track.Channels),
		},
	}
	if track.FrameDuration > 0 && track.SampleRate > 0 {
		entry.DefaultDuration = uint64(track.FrameDuration * 1e9 / int64(track.SampleRate))
	}

	writers, err := webm.NewSimpleBlockWriter(m.sink, []webm.TrackEntry{entry},
		mkvcore.WithOnFatalHandler(func(err error) {
			logger.Error("webm writer failed", zap.Error(err))
			m.sink.fail(err)
		}))
	if err != nil {
		return nil, fmt.Errorf("failed to create webm writer: %w", err)
	}
	m.block = writers[0]
	if err := m.sink.Err(); err != nil {
		m.block.Close()
		return nil, fmt.Errorf("failed to write webm header: %w", err)
	}
	return m, nil
}

// WritePacket appends one SimpleBlock. Timestamps are in milliseconds.
func (m *WebMWriter) WritePacket(pkt streamenc.Packet) error {
	if err := m.sink.Err(); err != nil {
		return fmt.Errorf("webm output failed: %w", err)
	}
	if m.block == nil {
		return errors.New("webm: writer closed")
	}
	if len(pkt.Data) == 0 {
		return nil
	}

	ms := pkt.TimeBase.Duration(pkt.PTS).Milliseconds()
	if _, err := m.block.Write(true, ms, pkt.Data); err != nil {
		return fmt.Errorf("failed to write webm block: %w", err)
	}
	m.packets++
	return nil
}

func (m *WebMWriter) Close() error {
	if m.block == nil {
		return nil
	}
	// Close returns once the container goroutine has written the last cluster
	_ = m.block.Close()
	m.block = nil
	m.logger.Debug("webm finalized", zap.Uint64("packets", m.packets))
	if err := m.sink.Err(); err != nil {
		return fmt.Errorf("webm output failed: %w", err)
	}
	return nil
}
