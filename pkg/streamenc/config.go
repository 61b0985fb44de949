// ABOUTME: Encoder configuration and validation
// ABOUTME: Validation happens in New, before any codec resources exist
package streamenc

import (
	"fmt"

	"github.com/Resonate-Protocol/streamenc-go/pkg/codec"
)

const (
	// DefaultCodec is used when Config.Codec is empty
	DefaultCodec = "opus"

	// BitsPerSample is the only supported input sample width
	BitsPerSample = 16
)

// Config is fixed for the lifetime of an Encoder
type Config struct {
	// Codec names a registered codec, see codec.Names
	Codec string

	// Bitrate is the target bitrate in kbps. It is passed to the codec
	// untouched.
	Bitrate int

	Channels      int
	SampleRate    int
	BitsPerSample int
}

func (c Config) params() codec.Params {
	return codec.Params{
		SampleRate: c.SampleRate,
		Channels:   c.Channels,
		Bitrate:    c.Bitrate,
	}
}

// validate fills defaults and resolves the codec descriptor
func (c *Config) validate() (codec.Descriptor, error) {
	if c.Codec == "" {
		c.Codec = DefaultCodec
	}
	if c.BitsPerSample != BitsPerSample {
		return codec.Descriptor{}, fmt.Errorf("%w: bits per sample %d, want %d", ErrInvalidConfig, c.BitsPerSample, BitsPerSample)
	}
	if c.Channels <= 0 {
		return codec.Descriptor{}, fmt.Errorf("%w: channels %d", ErrInvalidConfig, c.Channels)
	}
	if c.SampleRate <= 0 {
		return codec.Descriptor{}, fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, c.SampleRate)
	}

	desc, ok := codec.Lookup(c.Codec)
	if !ok {
		return codec.Descriptor{}, fmt.Errorf("%w: unknown codec %q", ErrInvalidConfig, c.Codec)
	}
	if err := desc.Validate(c.params()); err != nil {
		return codec.Descriptor{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return desc, nil
}
