// ABOUTME: Encoded packet type returned by the adapter
// ABOUTME: Carries pts/dts in sample-clock units with a 1/SampleRate time base
package streamenc

import (
	"fmt"
	"time"
)

// MediaType tags what a packet carries
type MediaType int

const (
	MediaTypeAudio MediaType = iota + 1
)

func (m MediaType) String() string {
	if m == MediaTypeAudio {
		return "audio"
	}
	return "unknown"
}

// TimeBase is the duration of one timestamp tick, Num/Den seconds
type TimeBase struct {
	Num int
	Den int
}

func (tb TimeBase) String() string {
	return fmt.Sprintf("%d/%d", tb.Num, tb.Den)
}

// Duration converts ticks in this time base to a time.Duration
func (tb TimeBase) Duration(ticks int64) time.Duration {
	if tb.Den == 0 {
		return 0
	}
	// Whole seconds and the remainder are scaled apart so long streams do not
	// overflow int64 nanoseconds.
	n := ticks * int64(tb.Num)
	den := int64(tb.Den)
	return time.Duration(n/den)*time.Second + time.Duration(n%den*int64(time.Second)/den)
}

// Packet is one encoded audio unit. Data belongs to the encoder and is only
// valid until the next ProcessOutput or Close; copy it to keep it.
type Packet struct {
	Data     []byte
	PTS      int64
	DTS      int64 // always equal to PTS
	Duration int64
	TimeBase TimeBase
	Type     MediaType
}
