package schedule

import "fmt"

// Status is the visit state of an appointment. It drives styling and the
// cycle-on-click action only; conflict detection ignores it.
type Status string

const (
	StatusBooked    Status = "booked"
	StatusPresent   Status = "present"
	StatusBeingSeen Status = "being_seen"
	StatusFinished  Status = "finished"
	StatusMissed    Status = "missed"
)

var statusCycle = [...]Status{StatusBooked, StatusPresent, StatusBeingSeen, StatusFinished, StatusMissed}

var statusLabels = map[Status]string{
	StatusBooked:    "To Do",
	StatusPresent:   "Here",
	StatusBeingSeen: "In Room",
	StatusFinished:  "Billed",
	StatusMissed:    "No Show",
}

// Statuses returns every status in cycle order.
func Statuses() []Status {
	out := make([]Status, len(statusCycle))
	copy(out, statusCycle[:])
	return out
}

// ParseStatus accepts only the five known values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Next advances along booked → present → being_seen → finished → missed → booked.
// An unknown status restarts the cycle at booked.
func (s Status) Next() Status {
	for i, st := range statusCycle {
		if st == s {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return StatusBooked
}

// Label is the front-desk name shown in the booking form.
func (s Status) Label() string {
	return statusLabels[s]
}

func (s Status) String() string {
	return string(s)
}
