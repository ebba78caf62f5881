package config

import (
	"clinic/cmd/internal/schedule"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultAppointmentMinutes = 15

// Schedule holds the clinic's day layout and its provider roster.
type Schedule struct {
	Grid            schedule.GridConfig
	DefaultDuration int
	Doctors         []string
}

type scheduleFile struct {
	Grid struct {
		Start string `yaml:"start"`
		End   string `yaml:"end"`
		Step  int    `yaml:"step"`
	} `yaml:"grid"`
	DefaultDuration int      `yaml:"default_duration"`
	Doctors         []string `yaml:"doctors"`
}

func DefaultSchedule() *Schedule {
	return &Schedule{
		Grid:            schedule.DefaultGridConfig(),
		DefaultDuration: defaultAppointmentMinutes,
		Doctors:         []string{"Dr. Wong", "Dr. Smith"},
	}
}

// LoadSchedule reads a schedule file. A missing file yields the defaults.
func LoadSchedule(path string) (*Schedule, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSchedule(), nil
	}
	if err != nil {
		return nil, err
	}
	return ParseSchedule(data)
}

// ParseSchedule decodes a schedule document. ${ENV_VAR} placeholders are
// expanded first and omitted keys keep their defaults.
func ParseSchedule(data []byte) (*Schedule, error) {
	data = []byte(os.ExpandEnv(string(data)))

	var raw scheduleFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", schedule.ErrConfiguration, err)
	}

	s := DefaultSchedule()
	if raw.Grid.Start != "" {
		m, err := schedule.ParseClock(raw.Grid.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: grid.start: %v", schedule.ErrConfiguration, err)
		}
		s.Grid.DayStart = m
	}
	if raw.Grid.End != "" {
		m, err := schedule.ParseClock(raw.Grid.End)
		if err != nil {
			return nil, fmt.Errorf("%w: grid.end: %v", schedule.ErrConfiguration, err)
		}
		s.Grid.DayEnd = m
	}
	if raw.Grid.Step != 0 {
		s.Grid.Step = raw.Grid.Step
	}
	if err := s.Grid.Validate(); err != nil {
		return nil, err
	}

	if raw.DefaultDuration < 0 {
		return nil, fmt.Errorf("%w: default_duration must be positive", schedule.ErrConfiguration)
	}
	if raw.DefaultDuration > 0 {
		s.DefaultDuration = raw.DefaultDuration
	}
	if raw.Doctors != nil {
		s.Doctors = raw.Doctors
	}
	return s, nil
}
