package schedule

import "errors"

var (
	ErrInvalidDuration = errors.New("duration must be a positive number of minutes")
	ErrInvalidTime     = errors.New("invalid time")
	ErrInvalidDate     = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidStatus   = errors.New("invalid appointment status")
	ErrConflict        = errors.New("time slot already booked for this provider")
	ErrConfiguration   = errors.New("invalid grid configuration")
)
