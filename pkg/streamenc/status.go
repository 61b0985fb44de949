// ABOUTME: Status values returned by ProcessInput and ProcessOutput
// ABOUTME: Backpressure and priming are statuses, not errors
package streamenc

// InputStatus is the result of ProcessInput
type InputStatus int

const (
	// Accepted means the codec absorbed the frame
	Accepted InputStatus = iota

	// NotAccepting means the codec still holds a full block. The frame was
	// not buffered; drain and resubmit it.
	NotAccepting
)

func (s InputStatus) String() string {
	switch s {
	case Accepted:
		return "accepted"
	case NotAccepting:
		return "not_accepting"
	default:
		return "unknown"
	}
}

// OutputStatus is the result of ProcessOutput
type OutputStatus int

const (
	// ProducedPacket means a packet was returned
	ProducedPacket OutputStatus = iota

	// NeedMoreInput means the codec has no complete packet yet
	NeedMoreInput
)

func (s OutputStatus) String() string {
	switch s {
	case ProducedPacket:
		return "produced_packet"
	case NeedMoreInput:
		return "need_more_input"
	default:
		return "unknown"
	}
}
