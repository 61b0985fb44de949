// ABOUTME: Decoder interface definition
// ABOUTME: Common interface for all audio decoders
package decode

import (
	"fmt"

	"github.com/Resonate-Protocol/streamenc-go/pkg/audio"
)

// Decoder decodes audio in various formats to interleaved int16 samples
type Decoder interface {
	// Decode converts one encoded packet to PCM samples
	Decode(data []byte) ([]int16, error)

	// Close releases decoder resources
	Close() error
}

// ForFormat picks the decoder matching format.Codec
func ForFormat(format audio.Format) (Decoder, error) {
	switch format.Codec {
	case "opus":
		return NewOpus(format)
	case "pcm":
		return NewPCM(format)
	default:
		return nil, fmt.Errorf("no decoder for codec: %s", format.Codec)
	}
}
