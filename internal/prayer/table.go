package prayer

import (
	"fmt"
	"strings"
	"time"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

// SignageKeys are the rows shown on screens; Sunrise is not a prayer.
var SignageKeys = []Key{Fajr, Dhuhr, Asr, Maghrib, Isha}

// Table renders s as signage rows at now, flagging the upcoming prayer.
func Table(now time.Time, s Schedule) []model.Prayer {
	next, hasNext := Resolve(now, s)

	rows := make([]model.Prayer, 0, len(SignageKeys))
	for _, k := range SignageKeys {
		row := model.Prayer{Name: strings.ToUpper(string(k)), Time: "--:--"}
		if h, m, ok := ParseClock(s[k]); ok {
			row.Period = "AM"
			if h >= 12 {
				row.Period = "PM"
			}
			if h %= 12; h == 0 {
				h = 12
			}
			row.Time = fmt.Sprintf("%02d:%02d", h, m)
		}
		row.Next = hasNext && next.Key == k
		rows = append(rows, row)
	}
	return rows
}

// AthanPage builds the full signage page for city at now.
func AthanPage(now time.Time, city string, s Schedule) model.AthanPageData {
	data := model.AthanPageData{
		City:      strings.ToUpper(city),
		Date:      strings.ToUpper(now.Format("January 2, 2006")),
		Prayers:   Table(now, s),
		Countdown: "--:--:--",
	}
	if next, ok := Resolve(now, s); ok {
		data.NextName = strings.ToUpper(string(next.Key))
		data.Countdown = Countdown(now, next.At)
	}
	return data
}
