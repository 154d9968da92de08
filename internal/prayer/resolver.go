package prayer

import "time"

// Next is the upcoming prayer. It is derived every tick and never stored.
type Next struct {
	Key      Key       `json:"key"`
	At       time.Time `json:"at"`
	Tomorrow bool      `json:"is_tomorrow"`
}

// Resolve returns the first prayer, in Keys order, whose instant today is
// strictly after now. When none remain it rolls over to tomorrow's Fajr.
// Entries that do not parse are skipped. ok is false when s is nil or when
// nothing remains today and Fajr itself is unusable.
func Resolve(now time.Time, s Schedule) (Next, bool) {
	if s == nil {
		return Next{}, false
	}

	for _, k := range Keys {
		at, ok := s.On(now, k)
		if !ok {
			continue
		}
		if at.After(now) {
			return Next{Key: k, At: at}, true
		}
	}

	fajr, ok := s.On(now, Fajr)
	if !ok {
		return Next{}, false
	}
	return Next{Key: Fajr, At: fajr.AddDate(0, 0, 1), Tomorrow: true}, true
}
