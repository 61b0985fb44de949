// ABOUTME: Stateful linear resampler for converting audio sample rates
// ABOUTME: Carries phase and the previous frame across chunks so streams never drift
package resample

// Resampler performs linear interpolation to convert between sample rates.
//
// The read position is kept as an exact rational (phase / outputRate input
// frames) so a stream converted chunk by chunk yields the same number of
// frames as the whole stream converted at once.
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int

	// phase is the position of the next output frame relative to the start
	// of the next input chunk, in units of 1/outputRate input frames.
	// Negative values address the carried frame from the previous chunk.
	phase   int64
	prev    []int16 // last input frame of the previous chunk, one sample per channel
	hasPrev bool
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		prev:       make([]int16, channels),
	}
}

// InputRate returns the source sample rate
func (r *Resampler) InputRate() int { return r.inputRate }

// OutputRate returns the target sample rate
func (r *Resampler) OutputRate() int { return r.outputRate }

// Resample converts interleaved input at inputRate into interleaved output at
// outputRate. Returns the number of output samples (not frames) written.
// output should hold at least MaxOutputSamples(len(input)) samples; frames that
// do not fit are lost.
func (r *Resampler) Resample(input []int16, output []int16) int {
	inputFrames := len(input) / r.channels
	if inputFrames == 0 {
		return 0
	}

	out := int64(r.outputRate)
	step := int64(r.inputRate)
	outputFrames := len(output) / r.channels
	outIdx := 0

	// Interpolation needs idx+1 inside the chunk, so the last input frame is
	// only ever used as the right-hand neighbour and carried to the next call.
	for outIdx < outputFrames {
		idx := r.phase / out
		if r.phase < 0 && r.phase%out != 0 {
			idx--
		}
		if idx >= int64(inputFrames-1) {
			break
		}
		frac := r.phase - idx*out

		for ch := 0; ch < r.channels; ch++ {
			var s1 int16
			if idx < 0 {
				s1 = r.prev[ch]
			} else {
				s1 = input[int(idx)*r.channels+ch]
			}
			s2 := input[int(idx+1)*r.channels+ch]

			v := (int64(s1)*(out-frac) + int64(s2)*frac) / out
			output[outIdx*r.channels+ch] = int16(v)
		}

		outIdx++
		r.phase += step
	}

	// Rebase phase onto the next chunk and remember its left neighbour.
	r.phase -= int64(inputFrames) * out
	copy(r.prev, input[(inputFrames-1)*r.channels:inputFrames*r.channels])
	r.hasPrev = true

	return outIdx * r.channels
}

// Flush ends the stream. It writes the output frames that fall after the
// last interpolation point, holding the carried frame, so the whole stream
// yields ceil(inputFrames*outputRate/inputRate) frames. Returns the number
// of output samples written and leaves the resampler reset.
func (r *Resampler) Flush(output []int16) int {
	if !r.hasPrev {
		return 0
	}

	outIdx := 0
	outputFrames := len(output) / r.channels
	for r.phase < 0 && outIdx < outputFrames {
		copy(output[outIdx*r.channels:(outIdx+1)*r.channels], r.prev)
		outIdx++
		r.phase += int64(r.inputRate)
	}

	r.Reset()
	return outIdx * r.channels
}

// Reset resets the resampler state
func (r *Resampler) Reset() {
	r.phase = 0
	r.hasPrev = false
	for i := range r.prev {
		r.prev[i] = 0
	}
}

// MaxOutputSamples returns an upper bound on the samples produced from inputSamples
func (r *Resampler) MaxOutputSamples(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	outputFrames := (inputFrames+1)*r.outputRate/r.inputRate + 2
	return outputFrames * r.channels
}
