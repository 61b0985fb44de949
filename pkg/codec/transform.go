// ABOUTME: Transform interface and sentinel statuses
// ABOUTME: The push/pull contract between the adapter and a codec
package codec

import "errors"

var (
	// ErrNotAccepting means a complete block is already queued; drain first
	ErrNotAccepting = errors.New("transform not accepting input")

	// ErrNeedMoreInput means no complete block is queued yet
	ErrNeedMoreInput = errors.New("transform needs more input")

	// ErrDrained is returned when input arrives after Drain
	ErrDrained = errors.New("transform drained")

	// ErrClosed is returned by any call after Close
	ErrClosed = errors.New("transform closed")
)

// Sample is one encoded unit. PTS and Duration are in session sample-clock
// units. Data is owned by the transform until the next ProcessOutput call.
type Sample struct {
	Data     []byte
	PTS      int64
	Duration int64
}

// Transform is a push/pull audio codec
type Transform interface {
	// ProcessInput queues one frame of interleaved samples. pcm must hold
	// exactly FrameSize()*channels samples.
	ProcessInput(pcm []int16, pts int64) error

	// ProcessOutput returns the next encoded sample, or ErrNeedMoreInput
	ProcessOutput() (Sample, error)

	// Drain marks end of stream and pads the final partial block with
	// silence. Further input is refused with ErrDrained.
	Drain() error

	// CodecHeader returns decoder initialization bytes, nil if the codec
	// has none
	CodecHeader() []byte

	// FrameSize returns the samples per channel expected by ProcessInput
	FrameSize() int

	Close() error
}
