// ABOUTME: Tests for Opus decoder
// ABOUTME: Tests Opus decoder creation and round trips through the encoder
package decode

import (
	"testing"

	"github.com/Resonate-Protocol/streamenc-go/pkg/audio"
	"github.com/Resonate-Protocol/streamenc-go/pkg/audio/encode"
)

func TestNewOpus(t *testing.T) {
	tests := []struct {
		name     string
		channels int
	}{
		{"stereo", 2},
		{"mono", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format := audio.Format{Codec: "opus", SampleRate: 48000, Channels: tt.channels, BitDepth: 16}
			decoder, err := NewOpus(format)
			if err != nil {
				t.Fatalf("failed to create decoder: %v", err)
			}
			if decoder == nil {
				t.Fatal("expected decoder to be created")
			}
		})
	}
}

func TestNewOpus_InvalidCodec(t *testing.T) {
	format := audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 2, BitDepth: 16}

	decoder, err := NewOpus(format)
	if err == nil {
		t.Fatal("expected error for invalid codec, got nil")
	}
	if decoder != nil {
		t.Fatal("expected decoder to be nil for invalid codec")
	}

	expectedError := "invalid codec for Opus decoder: pcm"
	if err.Error() != expectedError {
		t.Errorf("expected error %q, got %q", expectedError, err.Error())
	}
}

func TestOpusRoundTrip(t *testing.T) {
	format := audio.Format{Codec: "opus", SampleRate: 48000, Channels: 2, BitDepth: 16}

	encoder, err := encode.NewOpus(format, 128000)
	if err != nil {
		t.Fatalf("failed to create encoder: %v", err)
	}
	defer encoder.Close()

	decoder, err := NewOpus(format)
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}
	defer decoder.Close()

	block := make([]int16, encoder.FrameSize()*format.Channels)
	packet, err := encoder.Encode(block)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	samples, err := decoder.Decode(packet)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(samples) != len(block) {
		t.Errorf("expected %d decoded samples, got %d", len(block), len(samples))
	}
}

func TestOpusDecode_Garbage(t *testing.T) {
	format := audio.Format{Codec: "opus", SampleRate: 48000, Channels: 2, BitDepth: 16}

	decoder, err := NewOpus(format)
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	// TOC byte announcing a code-3 packet with no frame count byte
	if _, err := decoder.Decode([]byte{0xFF}); err == nil {
		t.Error("expected error decoding a truncated packet")
	}
}
