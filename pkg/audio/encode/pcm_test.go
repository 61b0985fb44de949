// ABOUTME: Unit tests for PCM encoder
// ABOUTME: Tests 16-bit and 24-bit PCM block encoding
package encode

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/Resonate-Protocol/streamenc-go/pkg/audio"
)

func TestNewPCM(t *testing.T) {
	tests := []struct {
		name        string
		format      audio.Format
		wantErr     bool
		errContains string
	}{
		{
			name:   "valid 16-bit PCM",
			format: audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 2, BitDepth: 16},
		},
		{
			name:   "valid 24-bit PCM",
			format: audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 2, BitDepth: 24},
		},
		{
			name:        "invalid codec",
			format:      audio.Format{Codec: "opus", SampleRate: 48000, Channels: 2, BitDepth: 16},
			wantErr:     true,
			errContains: "invalid codec",
		},
		{
			name:        "unsupported bit depth",
			format:      audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 2, BitDepth: 32},
			wantErr:     true,
			errContains: "unsupported bit depth",
		},
		{
			name:        "no channels",
			format:      audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 0, BitDepth: 16},
			wantErr:     true,
			errContains: "invalid channel count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoder, err := NewPCM(tt.format)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NewPCM() expected error, got nil")
				} else if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("NewPCM() error = %v, want error containing %v", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Errorf("NewPCM() unexpected error = %v", err)
			}
			if encoder == nil {
				t.Fatal("NewPCM() returned nil encoder")
			}
			if encoder.FrameSize() != PCMFrameSize {
				t.Errorf("FrameSize() = %d, want %d", encoder.FrameSize(), PCMFrameSize)
			}
		})
	}
}

func TestPCMEncoder_Encode16Bit(t *testing.T) {
	format := audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 1, BitDepth: 16}

	encoder, err := NewPCM(format)
	if err != nil {
		t.Fatalf("NewPCM() failed: %v", err)
	}
	defer encoder.Close()

	samples := make([]int16, PCMFrameSize)
	for i := range samples {
		samples[i] = int16(i*64 - 32768)
	}

	output, err := encoder.Encode(samples)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	// Check output size: 2 bytes per sample for 16-bit
	if len(output) != len(samples)*2 {
		t.Fatalf("Encode() output size = %d, want %d", len(output), len(samples)*2)
	}

	for i, sample := range samples {
		actual := int16(binary.LittleEndian.Uint16(output[i*2:]))
		if actual != sample {
			t.Errorf("Sample %d: got %d, want %d", i, actual, sample)
		}
	}
}

func TestPCMEncoder_Encode24Bit(t *testing.T) {
	format := audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 1, BitDepth: 24}

	encoder, err := NewPCM(format)
	if err != nil {
		t.Fatalf("NewPCM() failed: %v", err)
	}
	defer encoder.Close()

	samples := make([]int16, PCMFrameSize)
	samples[0] = 0x1234
	samples[1] = -1

	output, err := encoder.Encode(samples)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	// Check output size: 3 bytes per sample for 24-bit
	if len(output) != len(samples)*3 {
		t.Fatalf("Encode() output size = %d, want %d", len(output), len(samples)*3)
	}

	if got := [3]byte{output[0], output[1], output[2]}; got != [3]byte{0x00, 0x34, 0x12} {
		t.Errorf("Sample 0: got %v", got)
	}
	if got := [3]byte{output[3], output[4], output[5]}; got != [3]byte{0x00, 0xFF, 0xFF} {
		t.Errorf("Sample 1: got %v", got)
	}
}

func TestPCMEncoder_EncodeWrongBlockSize(t *testing.T) {
	format := audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 2, BitDepth: 16}

	encoder, err := NewPCM(format)
	if err != nil {
		t.Fatalf("NewPCM() failed: %v", err)
	}

	if _, err := encoder.Encode(make([]int16, PCMFrameSize)); err == nil {
		t.Error("expected error for a mono-sized block on a stereo encoder")
	}
}

func TestPCMEncoder_Close(t *testing.T) {
	format := audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 2, BitDepth: 16}

	encoder, err := NewPCM(format)
	if err != nil {
		t.Fatalf("NewPCM() failed: %v", err)
	}

	if err := encoder.Close(); err != nil {
		t.Errorf("Close() unexpected error = %v", err)
	}
}
