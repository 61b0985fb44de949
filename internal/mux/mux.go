// ABOUTME: Container writers for encoded packets
// ABOUTME: Picks WebM, fragmented MP4 or raw output by name
package mux

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/Resonate-Protocol/streamenc-go/pkg/streamenc"
)

// Track describes the single audio track being written
type Track struct {
	Codec      string
	SampleRate int
	Channels   int

	// CodecPrivate is the encoder extra data, e.g. OpusHead
	CodecPrivate []byte

	// FrameDuration is the nominal packet duration in sample-clock ticks
	FrameDuration int64
}

// Writer consumes encoder packets in pts order
type Writer interface {
	WritePacket(pkt streamenc.Packet) error

	// Close finalizes the container. It does not close the underlying writer.
	Close() error
}

// New returns a writer for container ("webm", "mp4" or "raw")
func New(container string, w io.Writer, track Track, logger *zap.Logger) (Writer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("container", container))

	switch container {
	case "webm":
		return NewWebM(w, track, logger)
	case "mp4":
		return NewFMP4(w, track, logger)
	case "raw":
		return &rawWriter{w: w}, nil
	default:
		return nil, fmt.Errorf("unknown container %q", container)
	}
}

// rawWriter concatenates packet payloads
type rawWriter struct {
	w io.Writer
}

func (r *rawWriter) WritePacket(pkt streamenc.Packet) error {
	_, err := r.w.Write(pkt.Data)
	return err
}

func (r *rawWriter) Close() error { return nil }
