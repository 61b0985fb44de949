// ABOUTME: Codec registry keyed by name
// ABOUTME: Descriptors declare supported ranges and construct transforms
package codec

import (
	"fmt"
	"sort"
	"sync"
)

// Params configures a new transform
type Params struct {
	SampleRate int // session rate in Hz
	Channels   int
	Bitrate    int // kbps
}

// Descriptor describes a codec and how to build its transform
type Descriptor struct {
	Name string

	// MinBitrate and MaxBitrate bound Params.Bitrate in kbps. A zero
	// MaxBitrate means the codec ignores bitrate.
	MinBitrate int
	MaxBitrate int

	MinChannels int
	MaxChannels int

	// SupportsRate reports whether the codec can run a session at rate
	SupportsRate func(rate int) bool

	// FrameSize returns the samples per channel per input frame at a
	// supported session rate, without constructing the codec
	FrameSize func(rate int) int

	New func(p Params) (Transform, error)
}

// Validate checks p against the descriptor's ranges
func (d Descriptor) Validate(p Params) error {
	if p.Channels < d.MinChannels || p.Channels > d.MaxChannels {
		return fmt.Errorf("%s: channels %d outside [%d, %d]", d.Name, p.Channels, d.MinChannels, d.MaxChannels)
	}
	if d.SupportsRate != nil && !d.SupportsRate(p.SampleRate) {
		return fmt.Errorf("%s: unsupported sample rate %d", d.Name, p.SampleRate)
	}
	if d.MaxBitrate > 0 && (p.Bitrate < d.MinBitrate || p.Bitrate > d.MaxBitrate) {
		return fmt.Errorf("%s: bitrate %d kbps outside [%d, %d]", d.Name, p.Bitrate, d.MinBitrate, d.MaxBitrate)
	}
	return nil
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Descriptor)
)

// Register makes a codec available by name. It panics if the name is empty,
// already taken or the descriptor has no constructor.
func Register(d Descriptor) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if d.Name == "" || d.New == nil || d.FrameSize == nil {
		panic("codec: Register called with incomplete descriptor")
	}
	if _, dup := registry[d.Name]; dup {
		panic("codec: Register called twice for " + d.Name)
	}
	registry[d.Name] = d
}

// Lookup returns the descriptor registered under name
func Lookup(name string) (Descriptor, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[name]
	return d, ok
}

// Names returns the registered codec names, sorted
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
