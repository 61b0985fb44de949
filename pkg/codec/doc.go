// ABOUTME: Push/pull codec transforms driven by the stream encoder adapter
// ABOUTME: Provides the Transform interface, a block transform and a codec registry
// Package codec wraps fixed-block encoders from pkg/audio/encode in a
// push/pull Transform with internal buffering, resampling and timestamp
// translation.
//
// A Transform accepts input until one complete codec block is queued, then
// reports ErrNotAccepting until ProcessOutput consumes it. ProcessOutput
// reports ErrNeedMoreInput while less than one block is queued.
//
// Codecs are looked up by name:
//
//	desc, ok := codec.Lookup("opus")
//	t, err := desc.New(codec.Params{SampleRate: 44100, Channels: 2, Bitrate: 128})
package codec
