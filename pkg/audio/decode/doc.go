// ABOUTME: Audio decoder package for checking encoded packets
// ABOUTME: Provides Decoder interface and implementations for PCM, Opus
// Package decode turns encoded packets back into interleaved int16 PCM.
//
// Supports: PCM (16-bit and 24-bit), Opus
//
// The decoders mirror pkg/audio/encode and are used to verify encoder
// output, for example by `streamenc encode --verify`.
//
// Example:
//
//	decoder, err := decode.ForFormat(format)
//	samples, err := decoder.Decode(packet)
package decode
