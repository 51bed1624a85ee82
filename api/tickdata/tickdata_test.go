package tickdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTick_String(t *testing.T) {
	tick := Tick{TimeMs: 1860002, Ask: 133153, Bid: 133117, AskSize: 0.015, BidSize: 0.02}
	assert.Equal(t, "1860002 133117 133153 0.02 0.015", tick.String())
}

func TestTimestampedTick_UTC(t *testing.T) {
	tt := TimestampedTick{
		Time: time.Date(2020, time.January, 15, 7, 0, 0, 0, time.UTC),
		Tick: Tick{TimeMs: 1860002},
	}
	assert.Equal(t, time.Date(2020, time.January, 15, 7, 31, 0, 2e6, time.UTC), tt.UTC())
}
