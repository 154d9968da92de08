package prayer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

func TestFormatCountdown(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{-5 * time.Second, "00:00:00"},
		{999 * time.Millisecond, "00:00:00"},
		{30 * time.Second, "00:00:30"},
		{time.Hour + 2*time.Minute + 3*time.Second + 900*time.Millisecond, "01:02:03"},
		{49*time.Hour + 59*time.Minute, "49:59:00"},
		{123 * time.Hour, "123:00:00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatCountdown(tc.in), tc.in.String())
	}
}

func TestFormatCountdown_MonotoneTowardZero(t *testing.T) {
	prev := FormatCountdown(3 * time.Hour)
	for d := 3 * time.Hour; d >= -2*time.Second; d -= 7 * time.Second {
		cur := FormatCountdown(d)
		// zero-padded fields compare lexically while hours stay two digits
		assert.LessOrEqual(t, cur, prev)
		prev = cur
	}
	assert.Equal(t, "00:00:00", prev)
}

func TestParseBroadcast(t *testing.T) {
	got, ok := ParseBroadcast("2024-03-01", "18:30", capeTown)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, time.March, 1, 18, 30, 0, 0, capeTown), got)

	bad := [][2]string{
		{"2024-02-30", "18:30"},
		{"2024-2-1", "18:30"},
		{"2024-03-01", "9:00"},
		{"2024-03-01", "24:00"},
		{"2024-03-01", "18:60"},
		{"", ""},
		{"01/03/2024", "18:30"},
		{"2024-03-01", "18:30:00"},
	}
	for _, b := range bad {
		_, ok := ParseBroadcast(b[0], b[1], capeTown)
		assert.False(t, ok, "%q %q", b[0], b[1])
	}
}

func TestBroadcastCountdownStaysAtZeroOncePast(t *testing.T) {
	target, ok := ParseBroadcast("2024-03-01", "18:30", capeTown)
	assert.True(t, ok)
	assert.Equal(t, "26:30:00", Countdown(at(16, 0, 0).AddDate(0, 0, -1), target))
	assert.Equal(t, "00:00:00", Countdown(at(18, 30, 0), target))
	assert.Equal(t, "00:00:00", Countdown(at(20, 0, 0), target))
}

func TestScheduledBroadcast(t *testing.T) {
	now := time.Date(2024, 5, 10, 17, 59, 30, 0, time.UTC)

	bc, ok := ScheduledBroadcast(model.SiteConfig{BroadcastDate: "2024-05-10", BroadcastTime: "18:45"}, now, time.UTC)
	assert.True(t, ok)
	assert.Equal(t, DefaultBroadcastName, bc.Name)
	assert.Equal(t, "00:45:30", bc.Countdown)

	bc, ok = ScheduledBroadcast(model.SiteConfig{BroadcastName: "Jumuah khutbah", BroadcastDate: "2024-05-10", BroadcastTime: "18:00"}, now, time.UTC)
	assert.True(t, ok)
	assert.Equal(t, "Jumuah khutbah", bc.Name)
	assert.Equal(t, "00:00:30", bc.Countdown)

	_, ok = ScheduledBroadcast(model.SiteConfig{BroadcastName: "x", BroadcastDate: "2024-5-10", BroadcastTime: "18:00"}, now, time.UTC)
	assert.False(t, ok)
	_, ok = ScheduledBroadcast(model.SiteConfig{}, now, time.UTC)
	assert.False(t, ok)
}
