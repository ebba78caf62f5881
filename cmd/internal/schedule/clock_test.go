package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "07:00", want: 420},
		{in: "10:30", want: 630},
		{in: "23:55", want: 1435},
		{in: "10:30:45", want: 630},
		{in: "9:05", want: 545},
		{in: " 10:00 ", want: 600},
		{in: "24:00", wantErr: true},
		{in: "10:60", wantErr: true},
		{in: "10:30:60", wantErr: true},
		{in: "10", wantErr: true},
		{in: "aa:bb", wantErr: true},
		{in: "-1:00", wantErr: true},
		{in: "+1:00", wantErr: true},
		{in: "-0:05", wantErr: true},
		{in: "10:+5", wantErr: true},
		{in: "", wantErr: true},
		{in: "10:30:00:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTime)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "07:05", FormatClock(425))
	assert.Equal(t, "23:55", FormatClock(1435))
	assert.Equal(t, "00:00", FormatClock(1440))
	assert.Equal(t, "23:55", FormatClock(-5))
}

func TestRoundClock(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10:25", "10:25"},
		{"10:30", "10:30"},
		{"10:27", "10:25"},
		{"10:28", "10:30"},
		{"10:26", "10:25"},
		{"10:29", "10:30"},
		{"10:57", "10:55"},
		{"10:58", "11:00"},
		{"23:57", "23:55"},
		{"23:58", "00:00"},
		{"00:02", "00:00"},
		{"10:28:59", "10:30"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := RoundClock(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := RoundClock("25:00")
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestRoundToStep_Idempotent(t *testing.T) {
	for m := 0; m < MinutesPerDay; m++ {
		once := RoundToStep(m, RoundingStep)
		assert.Zero(t, once%RoundingStep, "minute %d", m)
		assert.Equal(t, once, RoundToStep(once, RoundingStep), "minute %d", m)
	}
}

func TestRoundToStep_Negative(t *testing.T) {
	assert.Equal(t, 1435, RoundToStep(-3, 5))
	assert.Equal(t, 0, RoundToStep(-2, 5))
}

func TestInterval_Overlaps(t *testing.T) {
	base := Interval{Start: 600, End: 630}

	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"touching after", Interval{630, 645}, false},
		{"touching before", Interval{570, 600}, false},
		{"strictly before", Interval{500, 550}, false},
		{"strictly after", Interval{700, 710}, false},
		{"starts inside", Interval{615, 625}, true},
		{"ends inside", Interval{590, 605}, true},
		{"contains", Interval{590, 640}, true},
		{"contained", Interval{605, 620}, true},
		{"identical", Interval{600, 630}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base), "overlap must be symmetric")
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-08-04")
	require.NoError(t, err)
	assert.Equal(t, "2025-08-04", FormatDate(d))

	_, err = ParseDate("2025-13-01")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = ParseDate("04/08/2025")
	assert.ErrorIs(t, err, ErrInvalidDate)
}
