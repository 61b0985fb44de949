// ABOUTME: Audio source abstraction for encoding from files, URLs or test tones
// ABOUTME: Sources stream interleaved s16le PCM through io.Reader
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Source provides interleaved signed 16-bit little-endian PCM. Read returns
// io.EOF once the source is exhausted.
type Source interface {
	io.Reader

	SampleRate() int
	Channels() int

	// Metadata returns title, artist, album
	Metadata() (title, artist, album string)

	Close() error
}

// ToneOptions configures the generated tone used for the "tone" input
type ToneOptions struct {
	SampleRate int
	Channels   int
	Frequency  float64
	Duration   time.Duration // zero means endless
}

// Open creates a source from "tone", an http(s) URL, or a local .mp3/.flac file
func Open(ctx context.Context, input string, tone ToneOptions, logger *zap.Logger) (Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if input == "tone" {
		return NewTone(tone)
	}

	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		src, err := NewHTTPMP3(ctx, input)
		if err != nil {
			return nil, err
		}
		logger.Info("streaming MP3 from HTTP", zap.String("url", input), zap.Int("sample_rate", src.SampleRate()))
		return src, nil
	}

	if _, err := os.Stat(input); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", input)
	}

	var (
		src Source
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(input)); ext {
	case ".mp3":
		src, err = NewMP3(input)
	case ".flac":
		src, err = NewFLAC(input)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s (supported: .mp3, .flac)", ext)
	}
	if err != nil {
		return nil, err
	}

	title, _, _ := src.Metadata()
	logger.Info("loaded audio file",
		zap.String("title", title),
		zap.Int("sample_rate", src.SampleRate()),
		zap.Int("channels", src.Channels()))
	return src, nil
}

func titleFromPath(path string) string {
	filename := filepath.Base(path)
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
