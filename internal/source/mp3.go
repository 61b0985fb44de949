// ABOUTME: MP3 sources backed by go-mp3
// ABOUTME: Local files and HTTP streams, both decoded to stereo s16le
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// MP3Source reads from an MP3 file
type MP3Source struct {
	file    *os.File
	decoder *mp3.Decoder
	title   string
}

// NewMP3 opens an MP3 file
func NewMP3(filePath string) (*MP3Source, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open MP3 file: %w", err)
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	return &MP3Source{
		file:    f,
		decoder: decoder,
		title:   titleFromPath(filePath),
	}, nil
}

// Read returns decoded PCM; go-mp3 already emits s16le
func (s *MP3Source) Read(p []byte) (int, error) { return s.decoder.Read(p) }

func (s *MP3Source) SampleRate() int { return s.decoder.SampleRate() }

// Channels is always 2, go-mp3 upmixes mono
func (s *MP3Source) Channels() int { return 2 }

func (s *MP3Source) Metadata() (string, string, string) {
	return s.title, "Unknown Artist", "Unknown Album"
}

func (s *MP3Source) Close() error {
	return s.file.Close()
}

// HTTPMP3Source streams MP3 from an HTTP URL
type HTTPMP3Source struct {
	url     string
	body    io.ReadCloser
	decoder *mp3.Decoder
}

// NewHTTPMP3 starts streaming url. The request is bound to ctx.
func NewHTTPMP3(ctx context.Context, url string) (*HTTPMP3Source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid stream URL: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch HTTP stream: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	decoder, err := mp3.NewDecoder(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to decode MP3 stream: %w", err)
	}

	return &HTTPMP3Source{
		url:     url,
		body:    resp.Body,
		decoder: decoder,
	}, nil
}

func (s *HTTPMP3Source) Read(p []byte) (int, error) { return s.decoder.Read(p) }

func (s *HTTPMP3Source) SampleRate() int { return s.decoder.SampleRate() }
func (s *HTTPMP3Source) Channels() int   { return 2 }
func (s *HTTPMP3Source) Metadata() (string, string, string) {
	return s.url, "HTTP Stream", ""
}

func (s *HTTPMP3Source) Close() error {
	return s.body.Close()
}
