// ABOUTME: Tests for audio resampler
// ABOUTME: Tests linear interpolation resampling and chunk continuity
package resample

import (
	"testing"
)

func TestNew(t *testing.T) {
	r := New(44100, 48000, 2)

	if r == nil {
		t.Fatal("expected resampler to be created")
	}

	if r.InputRate() != 44100 {
		t.Errorf("expected inputRate 44100, got %d", r.InputRate())
	}

	if r.OutputRate() != 48000 {
		t.Errorf("expected outputRate 48000, got %d", r.OutputRate())
	}

	if r.channels != 2 {
		t.Errorf("expected channels 2, got %d", r.channels)
	}
}

func TestResampleUpsampling(t *testing.T) {
	// 44100 -> 48000 (upsampling by factor of ~1.088)
	r := New(44100, 48000, 2)

	// Input: 100 stereo frames (200 int16 values)
	input := make([]int16, 200)
	for i := range input {
		input[i] = int16(i * 100) // Ramp signal
	}

	expectedSize := int(float64(len(input)) * float64(48000) / float64(44100))
	output := make([]int16, r.MaxOutputSamples(len(input)))

	n := r.Resample(input, output)

	if n == 0 {
		t.Fatal("resampler produced no output")
	}

	// Allow some tolerance for the carried frame
	if n < expectedSize-10 || n > expectedSize+10 {
		t.Errorf("expected ~%d samples, got %d", expectedSize, n)
	}
}

func TestResampleDownsampling(t *testing.T) {
	// 48000 -> 44100 (downsampling by factor of ~0.91875)
	r := New(48000, 44100, 2)

	input := make([]int16, 200)
	for i := range input {
		input[i] = int16(i * 100)
	}

	expectedSize := int(float64(len(input)) * float64(44100) / float64(48000))
	output := make([]int16, r.MaxOutputSamples(len(input)))

	n := r.Resample(input, output)

	if n == 0 {
		t.Fatal("resampler produced no output")
	}

	if n < expectedSize-10 || n > expectedSize+10 {
		t.Errorf("expected ~%d samples, got %d", expectedSize, n)
	}
}

func TestResampleSameRate(t *testing.T) {
	// No resampling needed (48000 -> 48000)
	r := New(48000, 48000, 2)

	input := make([]int16, 200)
	for i := range input {
		input[i] = int16(i * 100)
	}

	output := make([]int16, r.MaxOutputSamples(len(input)))
	n := r.Resample(input, output)

	// The last frame is held back as the next chunk's left neighbour
	if n != len(input)-2 {
		t.Errorf("expected %d samples, got %d", len(input)-2, n)
	}

	for i := 0; i < n; i++ {
		if output[i] != input[i] {
			t.Errorf("sample %d: expected %d, got %d", i, input[i], output[i])
		}
	}
}

func TestResampleChunkContinuity(t *testing.T) {
	// 20ms chunks at 44.1kHz must average exactly 960 frames at 48kHz
	r := New(44100, 48000, 2)

	const chunkFrames = 882
	const chunks = 50
	input := make([]int16, chunkFrames*2)
	output := make([]int16, r.MaxOutputSamples(len(input)))

	total := 0
	for c := 0; c < chunks; c++ {
		for i := range input {
			input[i] = int16((c*chunkFrames + i/2) % 3000)
		}
		n := r.Resample(input, output)
		total += n / 2

		// Every prefix lags the ideal count by exactly the one carried frame
		want := (c+1)*960 - 1
		if total != want {
			t.Fatalf("after chunk %d: expected %d frames, got %d", c, want, total)
		}
	}
}

func TestResampleFlushEmitsTail(t *testing.T) {
	r := New(44100, 48000, 2)

	input := make([]int16, 882*2)
	for i := range input {
		input[i] = 700
	}
	output := make([]int16, r.MaxOutputSamples(len(input)))

	total := 0
	for c := 0; c < 3; c++ {
		n := r.Resample(input, output)
		total += n / 2
	}
	if total != 2879 {
		t.Fatalf("expected 2879 frames before flush, got %d", total)
	}

	n := r.Flush(output)
	total += n / 2
	if total != 2880 {
		t.Errorf("expected 2880 frames after flush, got %d", total)
	}
	if n == 0 || output[n-1] != 700 {
		t.Errorf("expected the tail to hold 700, got %v", output[:n])
	}

	if n := r.Flush(output); n != 0 {
		t.Errorf("second flush wrote %d samples", n)
	}
}

func TestResampleFlushDownsampling(t *testing.T) {
	// 10 frames at 48k make ceil(10*44100/48000) = 10 frames at 44.1k
	r := New(48000, 44100, 1)

	input := make([]int16, 10)
	for i := range input {
		input[i] = int16(i * 100)
	}
	output := make([]int16, r.MaxOutputSamples(len(input)))

	total := r.Resample(input, output)
	total += r.Flush(output[total:])
	if total != 10 {
		t.Errorf("expected 10 frames, got %d", total)
	}
	if output[total-1] != 900 {
		t.Errorf("expected tail to hold 900, got %d", output[total-1])
	}
}

func TestResampleFlushEmpty(t *testing.T) {
	r := New(44100, 48000, 2)
	if n := r.Flush(make([]int16, 16)); n != 0 {
		t.Errorf("flush with no input wrote %d samples", n)
	}
}

func TestResampleInterpolatesAcrossChunks(t *testing.T) {
	// A constant signal must stay constant across chunk boundaries
	r := New(44100, 48000, 1)

	input := make([]int16, 441)
	for i := range input {
		input[i] = 1234
	}
	output := make([]int16, r.MaxOutputSamples(len(input)))

	for c := 0; c < 4; c++ {
		n := r.Resample(input, output)
		for i := 0; i < n; i++ {
			if output[i] != 1234 {
				t.Fatalf("chunk %d sample %d: expected 1234, got %d", c, i, output[i])
			}
		}
	}
}

func TestResampleStereo(t *testing.T) {
	// Test that stereo channels are handled correctly
	r := New(44100, 48000, 2)

	// Create input with different L/R patterns
	input := make([]int16, 20) // 10 stereo frames
	for i := 0; i < 10; i++ {
		input[i*2] = 1000    // Left channel
		input[i*2+1] = -1000 // Right channel
	}

	output := make([]int16, 30)
	n := r.Resample(input, output)

	if n == 0 {
		t.Fatal("resampler produced no output")
	}

	for i := 0; i < n/2; i++ {
		if output[i*2] != 1000 {
			t.Errorf("frame %d: left channel expected 1000, got %d", i, output[i*2])
		}
		if output[i*2+1] != -1000 {
			t.Errorf("frame %d: right channel expected -1000, got %d", i, output[i*2+1])
		}
	}
}

func TestResampleLargeRatioUp(t *testing.T) {
	// Test large upsampling ratio (44.1k -> 192k)
	r := New(44100, 192000, 2)

	input := make([]int16, 200)
	for i := range input {
		input[i] = int16(i * 10)
	}

	output := make([]int16, r.MaxOutputSamples(len(input)))
	n := r.Resample(input, output)

	// Should have significantly more samples
	if n < len(input)*3 {
		t.Errorf("expected at least 3x upsampling, got %d from %d", n, len(input))
	}
}

func TestResampleLargeRatioDown(t *testing.T) {
	// Test large downsampling ratio (192k -> 48k)
	r := New(192000, 48000, 2)

	input := make([]int16, 200)
	for i := range input {
		input[i] = int16(i * 10)
	}

	output := make([]int16, r.MaxOutputSamples(len(input)))
	n := r.Resample(input, output)

	if n == 0 {
		t.Fatal("resampler produced no output")
	}

	if n > len(input)/2 {
		t.Errorf("expected at most 1/2 samples after downsampling, got %d from %d", n, len(input))
	}
}

func TestResampleEmptyInput(t *testing.T) {
	r := New(44100, 48000, 2)

	n := r.Resample([]int16{}, make([]int16, 100))

	if n != 0 {
		t.Errorf("expected 0 samples from empty input, got %d", n)
	}
}

func TestResampleReset(t *testing.T) {
	r := New(44100, 48000, 1)

	input := make([]int16, 441)
	output := make([]int16, r.MaxOutputSamples(len(input)))

	first := r.Resample(input, output)
	r.Resample(input, output)
	r.Reset()

	if got := r.Resample(input, output); got != first {
		t.Errorf("expected %d samples after reset, got %d", first, got)
	}
}
