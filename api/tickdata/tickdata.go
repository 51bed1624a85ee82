package tickdata

import (
	"fmt"
	"time"
)

// Tick is one fixed-width price observation decoded from a bi5 file.
//
// Ask and Bid are integer-scaled by the feed's per-instrument decimal
// factor; the decoder leaves them uninterpreted. TimeMs is the offset in
// milliseconds from the start of the owning file's period.
type Tick struct {
	TimeMs  uint32
	Ask     uint32
	Bid     uint32
	AskSize float32
	BidSize float32
}

func (t Tick) String() string {
	return fmt.Sprintf("%d %d %d %v %v", t.TimeMs, t.Bid, t.Ask, t.BidSize, t.AskSize)
}

// TimestampedTick pairs a tick with the period-start time of the file it
// came from. Consumers that need an absolute time add TimeMs themselves;
// see UTC.
type TimestampedTick struct {
	Time time.Time
	Tick Tick
}

// UTC returns the tick's absolute time in UTC.
func (t TimestampedTick) UTC() time.Time {
	return t.Time.Add(time.Duration(t.Tick.TimeMs) * time.Millisecond).UTC()
}
