package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-api/internal/model"
)

func TestComposeRoundTrip(t *testing.T) {
	cases := []struct{ date, tm string }{
		{"2024-03-10", "00:00"},
		{"2024-03-10", "23:59"},
		{"2024-02-29", "12:30"},
		{"2023-12-31", "18:01"},
		{"2024-01-01", "05:59"},
	}
	for _, c := range cases {
		t.Run(c.date+" "+c.tm, func(t *testing.T) {
			x, err := Compose(c.date, c.tm)
			require.NoError(t, err)
			assert.Equal(t, c.date, DateString(x))
			assert.Equal(t, c.tm, TimeString(x))
		})
	}
}

func TestInstantRoundTrip(t *testing.T) {
	// independent of the host zone: the input is UTC, output compared as instants
	for _, x := range []time.Time{
		time.Date(2024, 3, 11, 5, 59, 0, 0, time.UTC),
		time.Date(2024, 3, 11, 6, 0, 0, 0, time.UTC),
		time.Date(2025, 11, 2, 23, 17, 0, 0, time.UTC),
	} {
		back, err := Compose(DateString(x), TimeString(x))
		require.NoError(t, err)
		assert.True(t, back.Equal(x), "%s != %s", back, x)
	}
}

func TestComposeIsUTCMinusSix(t *testing.T) {
	x, err := Compose("2024-03-10", "23:59")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 11, 5, 59, 0, 0, time.UTC), x.UTC())
}

func TestComposeDefaultsToMidnight(t *testing.T) {
	x, err := Compose("2024-03-10", "")
	require.NoError(t, err)
	start, err := StartOfDay("2024-03-10")
	require.NoError(t, err)
	assert.True(t, x.Equal(start))
}

func TestDayBoundsSpan(t *testing.T) {
	for _, d := range []string{"2024-01-01", "2024-02-29", "2024-03-10", "2024-11-03", "2023-12-31"} {
		start, err := StartOfDay(d)
		require.NoError(t, err)
		end, err := EndOfDay(d)
		require.NoError(t, err)
		assert.Equal(t, int64(86399999), end.Sub(start).Milliseconds(), d)
		assert.Equal(t, d, DateString(start))
		assert.Equal(t, d, DateString(end))
	}
}

func TestInvalidDate(t *testing.T) {
	for _, d := range []string{"2024-02-30", "2023-02-29", "2024-13-01", "2024-3-10", "10/03/2024", ""} {
		_, err := StartOfDay(d)
		assert.ErrorIs(t, err, model.ErrInvalidDate, d)
		assert.ErrorIs(t, err, model.ErrValidation, d)
	}
}

func TestInvalidTime(t *testing.T) {
	for _, tm := range []string{"24:00", "23:60", "9:00", "09:00:00", "noon"} {
		_, err := Compose("2024-03-10", tm)
		assert.ErrorIs(t, err, model.ErrInvalidTime, tm)
	}
}

func TestTodayMatchesNow(t *testing.T) {
	before := DateString(time.Now())
	today := Today()
	after := DateString(time.Now())
	assert.Contains(t, []string{before, after}, today)
	assert.Equal(t, Location, Now().Location())
}
