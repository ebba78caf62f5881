package schedule

import "fmt"

// Booking is an existing appointment as seen by the conflict checker.
// Callers pass only bookings for the same provider and date as the candidate.
type Booking struct {
	ID       int
	Start    int
	Duration int
}

func (b Booking) Interval() Interval {
	return Interval{Start: b.Start, End: b.Start + b.Duration}
}

// Candidate is a proposed appointment. Start should already be rounded to
// RoundingStep; the checker itself accepts any non-negative minute.
type Candidate struct {
	Start    int
	Duration int
}

func (c Candidate) Interval() Interval {
	return Interval{Start: c.Start, End: c.Start + c.Duration}
}

func (c Candidate) validate() error {
	if c.Start < 0 {
		return fmt.Errorf("%w: start %d is negative", ErrInvalidTime, c.Start)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDuration, c.Duration)
	}
	return nil
}

// FindConflict returns the first existing booking whose interval overlaps the
// candidate, skipping excludeID (the appointment being edited). An excludeID of
// zero excludes nothing. A nil booking means the candidate is clear.
func FindConflict(c Candidate, existing []Booking, excludeID int) (*Booking, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	want := c.Interval()
	for i := range existing {
		b := existing[i]
		if excludeID != 0 && b.ID == excludeID {
			continue
		}
		if b.Duration <= 0 {
			return nil, fmt.Errorf("%w: appointment %d has duration %d", ErrInvalidDuration, b.ID, b.Duration)
		}
		if want.Overlaps(b.Interval()) {
			return &b, nil
		}
	}
	return nil, nil
}

// HasConflict reports whether the candidate overlaps any booking other than excludeID.
func HasConflict(c Candidate, existing []Booking, excludeID int) (bool, error) {
	b, err := FindConflict(c, existing, excludeID)
	if err != nil {
		return false, err
	}
	return b != nil, nil
}
