package prayer

import (
	"regexp"
	"time"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

var (
	broadcastDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	broadcastTime = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// ParseBroadcast turns an admin-entered YYYY-MM-DD and 24h HH:MM into an
// instant in loc. It fails closed: any malformed or impossible value
// (2024-2-1, 9:00, 2024-02-30, 24:00) reports ok=false.
func ParseBroadcast(date, clock string, loc *time.Location) (at time.Time, ok bool) {
	if !broadcastDate.MatchString(date) || !broadcastTime.MatchString(clock) {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	at, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, loc)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

// DefaultBroadcastName labels a scheduled broadcast that has no name.
const DefaultBroadcastName = "Live broadcast"

// Broadcast is the site's scheduled live broadcast as seen at some instant.
type Broadcast struct {
	Name      string    `json:"name"`
	At        time.Time `json:"at"`
	Countdown string    `json:"countdown"`
}

// ScheduledBroadcast reads the broadcast from site, interpreting its date
// and time in loc. ok is false when none is scheduled or the fields are
// malformed.
func ScheduledBroadcast(site model.SiteConfig, now time.Time, loc *time.Location) (Broadcast, bool) {
	at, ok := ParseBroadcast(site.BroadcastDate, site.BroadcastTime, loc)
	if !ok {
		return Broadcast{}, false
	}
	name := site.BroadcastName
	if name == "" {
		name = DefaultBroadcastName
	}
	return Broadcast{Name: name, At: at, Countdown: Countdown(now, at)}, true
}
