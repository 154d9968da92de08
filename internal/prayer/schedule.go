// Package prayer resolves the next daily prayer from an upstream schedule
// and renders countdowns to it and to one-off broadcasts.
package prayer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type Key string

const (
	Fajr    Key = "Fajr"
	Sunrise Key = "Sunrise"
	Dhuhr   Key = "Dhuhr"
	Asr     Key = "Asr"
	Maghrib Key = "Maghrib"
	Isha    Key = "Isha"
)

// Keys is the fixed daily order. Resolution walks it front to back.
var Keys = []Key{Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha}

// Schedule maps each prayer to a local "HH:MM". A nil Schedule means the
// upstream has not answered (or failed).
type Schedule map[Key]string

// leading H:MM or HH:MM; anything after it (e.g. " (SAST)") is ignored
var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})`)

// ParseClock reads the leading wall-clock time of s.
func ParseClock(s string) (hour, minute int, ok bool) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// normalizeClock returns "HH:MM" when s parses and s unchanged otherwise,
// so a bad entry is still visible and simply dropped at resolution time.
func normalizeClock(s string) string {
	h, m, ok := ParseClock(s)
	if !ok {
		return s
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// On combines the calendar date of day (in day's location) with the
// schedule entry for k.
func (s Schedule) On(day time.Time, k Key) (time.Time, bool) {
	h, m, ok := ParseClock(s[k])
	if !ok {
		return time.Time{}, false
	}
	y, mo, d := day.Date()
	return time.Date(y, mo, d, h, m, 0, 0, day.Location()), true
}

// Format12h renders "17:30" as "5:30 PM". Unparseable input is returned as is.
func Format12h(hhmm string) string {
	if hhmm == "" {
		return ""
	}
	m := clockPattern.FindStringSubmatch(hhmm)
	if m == nil {
		return hhmm
	}
	h, _ := strconv.Atoi(m[1])
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%s %s", h, m[2], period)
}
