// ABOUTME: Streaming audio encoder adapter
// ABOUTME: Drives a push/pull codec transform through a submit/drain interface
// Package streamenc adapts a push/pull codec transform to a two-call
// streaming interface: submit one fixed-size PCM frame, then drain packets.
//
// The codec's internal latency (resampling, block accumulation) is hidden
// behind status values. ProcessInput reports NotAccepting when the codec is
// still holding a full block, and ProcessOutput reports NeedMoreInput while
// the codec is priming. Neither is an error.
//
// Example:
//
//	enc, err := streamenc.New(streamenc.Config{
//		Bitrate:       128,
//		Channels:      2,
//		SampleRate:    44100,
//		BitsPerSample: 16,
//	})
//	if err != nil {
//		return err
//	}
//	if err := enc.Initialize(); err != nil {
//		return err
//	}
//	defer enc.Close()
//
//	for frame := range frames { // each frame is enc.FrameBytes() long
//		if _, err := enc.ProcessInput(frame.Data, frame.PTS); err != nil {
//			return err
//		}
//		if _, err := enc.Drain(writePacket); err != nil {
//			return err
//		}
//	}
//	enc.Flush()
//	enc.Drain(writePacket)
//
// An Encoder is not safe for concurrent use.
package streamenc
