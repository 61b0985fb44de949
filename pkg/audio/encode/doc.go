// ABOUTME: Audio encoder package for encoding PCM blocks to various formats
// ABOUTME: Provides Encoder interface and implementations for PCM, Opus
// Package encode provides fixed-block audio encoders.
//
// Supports: PCM (16-bit and 24-bit output), Opus
//
// Every encoder consumes exactly FrameSize() interleaved int16 frames per
// Encode call and returns one packet. Buffering, resampling and timestamps
// are handled one layer up, in pkg/codec.
//
// Example:
//
//	encoder, err := encode.NewOpus(format, 128000)
//	packet, err := encoder.Encode(block)
package encode
