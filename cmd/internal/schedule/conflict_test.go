package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasConflict(t *testing.T) {
	existing := []Booking{{ID: 1, Start: 600, Duration: 30}}

	tests := []struct {
		name      string
		candidate Candidate
		want      bool
	}{
		{"ends when existing starts", Candidate{Start: 585, Duration: 15}, false},
		{"starts when existing ends", Candidate{Start: 630, Duration: 15}, false},
		{"overlaps tail", Candidate{Start: 615, Duration: 10}, true},
		{"overlaps head", Candidate{Start: 590, Duration: 15}, true},
		{"inside existing", Candidate{Start: 605, Duration: 5}, true},
		{"contains existing", Candidate{Start: 590, Duration: 60}, true},
		{"same range", Candidate{Start: 600, Duration: 30}, true},
		{"far later", Candidate{Start: 900, Duration: 30}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HasConflict(tt.candidate, existing, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHasConflict_Symmetric(t *testing.T) {
	inner := Booking{ID: 1, Start: 610, Duration: 5}
	outer := Booking{ID: 2, Start: 600, Duration: 30}

	got, err := HasConflict(Candidate{Start: inner.Start, Duration: inner.Duration}, []Booking{outer}, 0)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = HasConflict(Candidate{Start: outer.Start, Duration: outer.Duration}, []Booking{inner}, 0)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestFindConflict_SelfExclusion(t *testing.T) {
	existing := []Booking{{ID: 42, Start: 600, Duration: 30}}

	b, err := FindConflict(Candidate{Start: 610, Duration: 30}, existing, 42)
	require.NoError(t, err)
	assert.Nil(t, b)

	b, err = FindConflict(Candidate{Start: 610, Duration: 30}, existing, 7)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, 42, b.ID)
}

func TestFindConflict_ReturnsFirstMatch(t *testing.T) {
	existing := []Booking{
		{ID: 3, Start: 540, Duration: 15},
		{ID: 5, Start: 600, Duration: 30},
		{ID: 4, Start: 620, Duration: 30},
	}

	b, err := FindConflict(Candidate{Start: 610, Duration: 30}, existing, 0)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, 5, b.ID)
}

func TestFindConflict_InvalidInput(t *testing.T) {
	existing := []Booking{{ID: 1, Start: 600, Duration: 30}}

	_, err := FindConflict(Candidate{Start: 600, Duration: 0}, existing, 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = FindConflict(Candidate{Start: 600, Duration: -15}, existing, 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = FindConflict(Candidate{Start: -5, Duration: 15}, existing, 0)
	assert.ErrorIs(t, err, ErrInvalidTime)

	_, err = FindConflict(Candidate{Start: 700, Duration: 15}, []Booking{{ID: 9, Start: 600, Duration: 0}}, 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestFindConflict_DoesNotMutateInput(t *testing.T) {
	existing := []Booking{{ID: 1, Start: 600, Duration: 30}, {ID: 2, Start: 660, Duration: 15}}
	snapshot := append([]Booking(nil), existing...)

	b, err := FindConflict(Candidate{Start: 665, Duration: 5}, existing, 0)
	require.NoError(t, err)
	require.NotNil(t, b)
	b.Start = 0

	assert.Equal(t, snapshot, existing)
}

// Accepting candidates one at a time never produces overlapping pairs.
func TestHasConflict_AcceptedSetStaysDisjoint(t *testing.T) {
	var accepted []Booking
	id := 0
	for start := 420; start < 1200; start += 5 {
		for _, dur := range []int{5, 15, 20, 45} {
			ok, err := HasConflict(Candidate{Start: start, Duration: dur}, accepted, 0)
			require.NoError(t, err)
			if !ok {
				id++
				accepted = append(accepted, Booking{ID: id, Start: start, Duration: dur})
			}
		}
	}

	require.NotEmpty(t, accepted)
	for i := range accepted {
		for j := i + 1; j < len(accepted); j++ {
			assert.False(t, accepted[i].Interval().Overlaps(accepted[j].Interval()),
				"bookings %d and %d overlap", accepted[i].ID, accepted[j].ID)
		}
	}
}
