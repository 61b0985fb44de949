// ABOUTME: Fragmented MP4 writer using bluenviron/mediacommon
// ABOUTME: Opus or LPCM track, one fragment per FragmentPackets packets
package mux

import (
	"errors"
	"fmt"
	"io"

	"github.com/bluenviron/mediacommon/v2/pkg/formats/fmp4"
	"github.com/bluenviron/mediacommon/v2/pkg/formats/fmp4/seekablebuffer"
	"github.com/bluenviron/mediacommon/v2/pkg/formats/mp4"
	"go.uber.org/zap"

	"github.com/Resonate-Protocol/streamenc-go/pkg/streamenc"
)

// FragmentPackets is how many packets go into each moof/mdat pair
const FragmentPackets = 50

const audioTrackID = 1

// FMP4Writer muxes packets into fragmented MP4. The track timescale is the
// session sample rate, so packet ticks are written unchanged.
type FMP4Writer struct {
	w      io.Writer
	logger *zap.Logger

	pending  []*fmp4.Sample
	baseTime int64 // pts of pending[0]
	firstPTS int64
	started  bool

	sequenceNumber uint32
	closed         bool
}

func mp4Codec(track Track) (mp4.Codec, error) {
	switch track.Codec {
	case "opus":
		return &mp4.CodecOpus{ChannelCount: track.Channels}, nil
	case "pcm":
		return &mp4.CodecLPCM{
			LittleEndian: true,
			BitDepth:     16,
			SampleRate:   track.SampleRate,
			ChannelCount: track.Channels,
		}, nil
	default:
		return nil, fmt.Errorf("mp4: unsupported codec %q", track.Codec)
	}
}

// NewFMP4 writes the init segment for track to w
func NewFMP4(w io.Writer, track Track, logger *zap.Logger) (*FMP4Writer, error) {
	codec, err := mp4Codec(track)
	if err != nil {
		return nil, err
	}

	init := &fmp4.Init{
		Tracks: []*fmp4.InitTrack{
			{
				ID:        audioTrackID,
				TimeScale: uint32(track.SampleRate),
				Codec:     codec,
			},
		},
	}

	var buf seekablebuffer.Buffer
	if err := init.Marshal(&buf); err != nil {
		return nil, fmt.Errorf("failed to marshal init segment: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to write init segment: %w", err)
	}
	logger.Debug("fmp4 init segment written", zap.Int("size", len(buf.Bytes())))

	return &FMP4Writer{
		w:              w,
		logger:         logger,
		sequenceNumber: 1,
	}, nil
}

// WritePacket queues a sample and emits a fragment every FragmentPackets
func (f *FMP4Writer) WritePacket(pkt streamenc.Packet) error {
	if f.closed {
		return errors.New("mp4: writer closed")
	}
	if len(pkt.Data) == 0 {
		return nil
	}
	if !f.started {
		f.firstPTS = pkt.PTS
		f.started = true
	}
	if len(f.pending) == 0 {
		f.baseTime = pkt.PTS - f.firstPTS
	}

	// The payload is only valid until the next encoder call
	payload := append([]byte(nil), pkt.Data...)
	f.pending = append(f.pending, &fmp4.Sample{
		Duration: uint32(pkt.Duration),
		Payload:  payload,
	})

	if len(f.pending) >= FragmentPackets {
		return f.flush()
	}
	return nil
}

func (f *FMP4Writer) flush() error {
	if len(f.pending) == 0 {
		return nil
	}

	part := &fmp4.Part{
		SequenceNumber: f.sequenceNumber,
		Tracks: []*fmp4.PartTrack{
			{
				ID:       audioTrackID,
				BaseTime: uint64(f.baseTime),
				Samples:  f.pending,
			},
		},
	}

	var buf seekablebuffer.Buffer
	if err := part.Marshal(&buf); err != nil {
		return fmt.Errorf("failed to marshal fragment: %w", err)
	}
	if _, err := f.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write fragment: %w", err)
	}

	f.logger.Debug("fmp4 fragment written",
		zap.Uint32("sequence", f.sequenceNumber),
		zap.Int("samples", len(f.pending)))
	f.sequenceNumber++
	f.pending = nil
	return nil
}

// Close writes any partial fragment
func (f *FMP4Writer) Close() error {
	if f.closed {
		return nil
	}
	err := f.flush()
	f.closed = true
	return err
}
