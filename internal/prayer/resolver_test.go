package prayer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var capeTown = time.FixedZone("SAST", 2*60*60)

func testSchedule() Schedule {
	return Schedule{
		Fajr:    "05:10",
		Sunrise: "06:30",
		Dhuhr:   "12:15",
		Asr:     "15:45",
		Maghrib: "18:20",
		Isha:    "19:40",
	}
}

func at(hour, min, sec int) time.Time {
	return time.Date(2024, time.March, 1, hour, min, sec, 0, capeTown)
}

func TestResolve_NilSchedule(t *testing.T) {
	_, ok := Resolve(at(12, 0, 0), nil)
	assert.False(t, ok)
}

func TestResolve_BeforeFajr(t *testing.T) {
	for _, now := range []time.Time{at(0, 0, 0), at(3, 59, 59), at(5, 9, 59)} {
		next, ok := Resolve(now, testSchedule())
		require.True(t, ok)
		assert.Equal(t, Fajr, next.Key)
		assert.False(t, next.Tomorrow)
		assert.Equal(t, at(5, 10, 0), next.At)
	}
}

func TestResolve_AfterIsha(t *testing.T) {
	for _, now := range []time.Time{at(19, 40, 1), at(22, 0, 0), at(23, 59, 59)} {
		next, ok := Resolve(now, testSchedule())
		require.True(t, ok)
		assert.Equal(t, Fajr, next.Key)
		assert.True(t, next.Tomorrow)
		assert.Equal(t, time.Date(2024, time.March, 2, 5, 10, 0, 0, capeTown), next.At)
	}
}

func TestResolve_RollsAcrossMonthEnd(t *testing.T) {
	now := time.Date(2024, time.February, 29, 21, 0, 0, 0, capeTown)
	next, ok := Resolve(now, testSchedule())
	require.True(t, ok)
	assert.True(t, next.Tomorrow)
	y, m, d := next.At.Date()
	assert.Equal(t, []int{2024, 3, 1}, []int{y, int(m), d})
}

func TestResolve_BoundaryIsNotUpcoming(t *testing.T) {
	cases := map[Key]Key{
		Fajr:    Sunrise,
		Sunrise: Dhuhr,
		Dhuhr:   Asr,
		Asr:     Maghrib,
		Maghrib: Isha,
	}
	s := testSchedule()
	for current, want := range cases {
		now, ok := s.On(at(0, 0, 0), current)
		require.True(t, ok)
		next, ok := Resolve(now, s)
		require.True(t, ok)
		assert.Equal(t, want, next.Key, "at %s", current)
	}

	isha, _ := s.On(at(0, 0, 0), Isha)
	next, ok := Resolve(isha, s)
	require.True(t, ok)
	assert.Equal(t, Fajr, next.Key)
	assert.True(t, next.Tomorrow)
}

func TestResolve_EndToEnd(t *testing.T) {
	next, ok := Resolve(at(12, 0, 0), testSchedule())
	require.True(t, ok)
	assert.Equal(t, Dhuhr, next.Key)
	assert.Equal(t, at(12, 15, 0), next.At)
	assert.Equal(t, "00:00:30", Countdown(at(12, 14, 30), next.At))
}

func TestResolve_SkipsUnparseableEntries(t *testing.T) {
	s := testSchedule()
	s[Dhuhr] = "noon"
	next, ok := Resolve(at(12, 0, 0), s)
	require.True(t, ok)
	assert.Equal(t, Asr, next.Key)
}

func TestResolve_NoFajrAfterIsha(t *testing.T) {
	s := testSchedule()
	delete(s, Fajr)
	_, ok := Resolve(at(23, 0, 0), s)
	assert.False(t, ok)

	next, ok := Resolve(at(6, 0, 0), s)
	require.True(t, ok)
	assert.Equal(t, Sunrise, next.Key)
}

func TestParseClock(t *testing.T) {
	h, m, ok := ParseClock("05:10 (SAST)")
	require.True(t, ok)
	assert.Equal(t, 5, h)
	assert.Equal(t, 10, m)

	h, m, ok = ParseClock("5:07")
	require.True(t, ok)
	assert.Equal(t, []int{5, 7}, []int{h, m})

	for _, bad := range []string{"", "noon", "25:00", "12:61", ":30"} {
		_, _, ok := ParseClock(bad)
		assert.False(t, ok, bad)
	}
}

func TestFormat12h(t *testing.T) {
	assert.Equal(t, "5:30 PM", Format12h("17:30"))
	assert.Equal(t, "12:05 AM", Format12h("00:05"))
	assert.Equal(t, "12:15 PM", Format12h("12:15"))
	assert.Equal(t, "5:10 AM", Format12h("05:10 (SAST)"))
	assert.Equal(t, "", Format12h(""))
	assert.Equal(t, "soon", Format12h("soon"))
}
