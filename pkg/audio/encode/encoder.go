// ABOUTME: Encoder interface definition
// ABOUTME: Common interface for all fixed-block audio encoders
package encode

// Encoder encodes fixed-size blocks of interleaved int16 PCM
type Encoder interface {
	// Encode converts exactly FrameSize()*Channels() samples to one packet
	Encode(pcm []int16) ([]byte, error)

	// FrameSize returns the samples per channel consumed by each Encode call
	FrameSize() int

	// SampleRate returns the rate the encoder runs at
	SampleRate() int

	// Channels returns the interleaved channel count
	Channels() int

	// Close releases encoder resources
	Close() error
}
