// ABOUTME: Host-facing encoder registration table and hooks
// ABOUTME: Declares encoder IDs and settings schema, creates encoders and runs the one-call encode hook
package registration

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Resonate-Protocol/streamenc-go/pkg/streamenc"
)

// ErrUnexpectedBackpressure is returned by Encode when the codec refuses a
// frame. Draining after every submit keeps this from happening.
var ErrUnexpectedBackpressure = errors.New("encoder refused input after drain")

// PropertyKind is the value type of a setting
type PropertyKind string

const PropertyInt PropertyKind = "int"

// Property describes one user-editable setting
type Property struct {
	Key     string
	Label   string
	Kind    PropertyKind
	Min     int
	Max     int
	Step    int
	Default int
}

// Info describes an encoder the host can instantiate
type Info struct {
	ID    string
	Codec string
	Name  string
	Type  string // always "audio"

	Properties []Property

	// AudioFormat is the sample format the host must deliver
	AudioFormat string
}

// AudioInfo is the format of the host's audio output
type AudioInfo struct {
	SampleRate int
	Channels   int
}

// Frame is one block of host audio
type Frame struct {
	Data []byte
	PTS  int64
}

var bitrateProperty = Property{
	Key:     "bitrate",
	Label:   "Bitrate",
	Kind:    PropertyInt,
	Min:     32,
	Max:     256,
	Step:    32,
	Default: 128,
}

var encoders = []Info{
	{
		ID:          "streamenc_opus",
		Codec:       "opus",
		Name:        "Opus Encoder",
		Type:        "audio",
		Properties:  []Property{bitrateProperty},
		AudioFormat: "s16",
	},
	{
		ID:          "streamenc_pcm",
		Codec:       "pcm",
		Name:        "PCM (s16le)",
		Type:        "audio",
		AudioFormat: "s16",
	},
}

// Encoders lists every registered encoder
func Encoders() []Info {
	out := make([]Info, len(encoders))
	copy(out, encoders)
	return out
}

// Find returns the encoder with the given ID
func Find(id string) (Info, bool) {
	for _, info := range encoders {
		if info.ID == id {
			return info, true
		}
	}
	return Info{}, false
}

// Defaults seeds settings with every property's default value
func (i Info) Defaults(settings *viper.Viper) {
	for _, p := range i.Properties {
		settings.SetDefault(p.Key, p.Default)
	}
}

// Validate checks settings against the property schema
func (i Info) Validate(settings *viper.Viper) error {
	for _, p := range i.Properties {
		v := settings.GetInt(p.Key)
		if v < p.Min || v > p.Max {
			return fmt.Errorf("%s: %s %d outside [%d, %d]", i.ID, p.Key, v, p.Min, p.Max)
		}
		if p.Step > 0 && (v-p.Min)%p.Step != 0 {
			return fmt.Errorf("%s: %s %d is not a multiple of %d from %d", i.ID, p.Key, v, p.Step, p.Min)
		}
	}
	return nil
}

// Create builds and initializes an encoder for id. Bitrate comes from
// settings, channels and rate from the host audio. Nothing leaks on failure.
func Create(id string, settings *viper.Viper, audio AudioInfo, logger *zap.Logger) (*streamenc.Encoder, error) {
	info, ok := Find(id)
	if !ok {
		return nil, fmt.Errorf("unknown encoder id %q", id)
	}
	if settings == nil {
		settings = viper.New()
	}
	info.Defaults(settings)
	if err := info.Validate(settings); err != nil {
		return nil, err
	}

	enc, err := streamenc.New(streamenc.Config{
		Codec:         info.Codec,
		Bitrate:       settings.GetInt(bitrateProperty.Key),
		Channels:      audio.Channels,
		SampleRate:    audio.SampleRate,
		BitsPerSample: streamenc.BitsPerSample,
	}, streamenc.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	if err := enc.Initialize(); err != nil {
		enc.Close()
		return nil, err
	}
	return enc, nil
}

// Encode submits one frame and drains at most one packet. received is false
// while the codec primes, which is not an error.
func Encode(enc *streamenc.Encoder, frame Frame) (pkt streamenc.Packet, received bool, err error) {
	status, err := enc.ProcessInput(frame.Data, frame.PTS)
	if err != nil {
		return streamenc.Packet{}, false, err
	}
	if status == streamenc.NotAccepting {
		return streamenc.Packet{}, false, ErrUnexpectedBackpressure
	}

	pkt, out, err := enc.ProcessOutput()
	if err != nil {
		return streamenc.Packet{}, false, err
	}
	if out == streamenc.NeedMoreInput {
		return streamenc.Packet{}, false, nil
	}
	return pkt, true, nil
}

// ExtraData returns the encoder's codec header, if any
func ExtraData(enc *streamenc.Encoder) ([]byte, bool) {
	return enc.ExtraData()
}

// FrameSize returns the samples per channel the host must deliver per frame
func FrameSize(enc *streamenc.Encoder) int {
	return enc.FrameSize()
}
