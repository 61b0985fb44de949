// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format and s16le sample conversion functions
// Package audio provides fundamental audio types shared by the encoder stack.
//
// Every encoder in this module consumes interleaved signed 16-bit
// little-endian PCM. This package defines:
//   - Format: Describes audio stream format (codec, sample rate, channels, bit depth)
//   - FrameBytes: byte length of a block of interleaved frames
//
// It also provides utilities for converting between byte and sample form:
//   - s16le bytes ↔ int16 samples
//   - arbitrary bit depth → 16-bit
//
// Example:
//
//	format := audio.Format{
//	    Codec:      "opus",
//	    SampleRate: 48000,
//	    Channels:   2,
//	    BitDepth:   16,
//	}
//
//	pcm := make([]int16, len(buf)/2)
//	audio.DecodeS16LE(pcm, buf)
package audio
