package prayer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	rows := Table(at(12, 0, 0), testSchedule())
	require.Len(t, rows, 5)

	assert.Equal(t, "FAJR", rows[0].Name)
	assert.Equal(t, "05:10", rows[0].Time)
	assert.Equal(t, "AM", rows[0].Period)

	assert.Equal(t, "DHUHR", rows[1].Name)
	assert.Equal(t, "12:15", rows[1].Time)
	assert.Equal(t, "PM", rows[1].Period)
	assert.True(t, rows[1].Next)

	assert.Equal(t, "07:40", rows[4].Time)
	assert.False(t, rows[4].Next)
}

func TestTable_MissingSchedule(t *testing.T) {
	rows := Table(at(12, 0, 0), nil)
	require.Len(t, rows, 5)
	for _, r := range rows {
		assert.Equal(t, "--:--", r.Time)
		assert.False(t, r.Next)
	}
}

func TestAthanPage(t *testing.T) {
	page := AthanPage(at(12, 14, 30), "Cape Town", testSchedule())
	assert.Equal(t, "CAPE TOWN", page.City)
	assert.Equal(t, "DHUHR", page.NextName)
	assert.Equal(t, "00:00:30", page.Countdown)

	empty := AthanPage(at(12, 0, 0), "Cape Town", nil)
	assert.Empty(t, empty.NextName)
	assert.Equal(t, "--:--:--", empty.Countdown)
}
