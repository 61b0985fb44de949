// ABOUTME: FLAC file source backed by mewkiz/flac
// ABOUTME: Decodes frame by frame and narrows any bit depth to s16le
package source

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/mewkiz/flac"

	"github.com/Resonate-Protocol/streamenc-go/pkg/audio"
)

// FLACSource reads from a FLAC file
type FLACSource struct {
	file       *os.File
	stream     *flac.Stream
	sampleRate int
	channels   int
	bitDepth   int
	title      string

	// pending holds the undelivered tail of the last decoded frame
	pending []byte
}

// NewFLAC opens a FLAC file
func NewFLAC(filePath string) (*FLACSource, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open FLAC file: %w", err)
	}

	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	return &FLACSource{
		file:       f,
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		bitDepth:   int(info.BitsPerSample),
		title:      titleFromPath(filePath),
	}, nil
}

func (s *FLACSource) Read(p []byte) (int, error) {
	for len(s.pending) == 0 {
		frame, err := s.stream.ParseNext()
		if err == io.EOF {
			return 0, io.EOF
		}
		if err != nil {
			return 0, fmt.Errorf("failed to parse FLAC frame: %w", err)
		}

		blockSize := int(frame.BlockSize)
		buf := make([]byte, blockSize*s.channels*audio.BytesPerSample)
		for i := 0; i < blockSize; i++ {
			for ch := 0; ch < s.channels; ch++ {
				v := audio.SampleFromBitDepth(frame.Subframes[ch].Samples[i], s.bitDepth)
				binary.LittleEndian.PutUint16(buf[(i*s.channels+ch)*2:], uint16(v))
			}
		}
		s.pending = buf
	}

	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func (s *FLACSource) SampleRate() int { return s.sampleRate }
func (s *FLACSource) Channels() int   { return s.channels }
func (s *FLACSource) Metadata() (string, string, string) {
	return s.title, "Unknown Artist", "Unknown Album"
}

func (s *FLACSource) Close() error {
	return s.file.Close()
}
