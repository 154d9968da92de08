// Package clock supplies the 1 Hz wall-clock tick that drives countdowns.
package clock

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// TimeSource wraps a clockwork.Clock. In production use clockwork.NewRealClock(),
// in tests a FakeClock.
type TimeSource struct {
	clock    clockwork.Clock
	interval time.Duration
}

func New(c clockwork.Clock) *TimeSource {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	return &TimeSource{clock: c, interval: time.Second}
}

func (s *TimeSource) Now() time.Time { return s.clock.Now() }

func (s *TimeSource) Clock() clockwork.Clock { return s.clock }

// Ticks emits the current time once per second until ctx is done, then closes
// the channel. Ticks are strictly increasing: one that is not after the
// previous tick is dropped. A slow reader misses ticks rather than queueing them.
func (s *TimeSource) Ticks(ctx context.Context) <-chan time.Time {
	out := make(chan time.Time, 1)
	ticker := s.clock.NewTicker(s.interval)

	go func() {
		defer close(out)
		defer ticker.Stop()

		var last time.Time
		for {
			var now time.Time
			select {
			case <-ctx.Done():
				return
			case now = <-ticker.Chan():
			}
			if !now.After(last) {
				continue
			}
			last = now

			select {
			case out <- now:
			default:
				// reader is behind; replace the stale tick
				select {
				case <-out:
				default:
				}
				out <- now
			}
		}
	}()
	return out
}
