package schedule

import (
	"fmt"
	"sort"
)

// GridConfig describes the visible day: rows from DayStart to DayEnd
// (both inclusive, minutes since midnight) every Step minutes.
type GridConfig struct {
	DayStart int
	DayEnd   int
	Step     int
}

// DefaultGridConfig is the front desk view: 07:00 to 23:55 in 5 minute rows.
func DefaultGridConfig() GridConfig {
	return GridConfig{DayStart: 7 * 60, DayEnd: 23*60 + 55, Step: 5}
}

func (c GridConfig) Validate() error {
	switch {
	case c.Step <= 0:
		return fmt.Errorf("%w: step must be positive, got %d", ErrConfiguration, c.Step)
	case c.DayStart < 0 || c.DayEnd >= MinutesPerDay:
		return fmt.Errorf("%w: range %d-%d is outside a single day", ErrConfiguration, c.DayStart, c.DayEnd)
	case c.DayStart > c.DayEnd:
		return fmt.Errorf("%w: day starts after it ends", ErrConfiguration)
	case (c.DayEnd-c.DayStart)%c.Step != 0:
		return fmt.Errorf("%w: step %d does not divide %s-%s", ErrConfiguration, c.Step, FormatClock(c.DayStart), FormatClock(c.DayEnd))
	}
	return nil
}

// RowCount is the number of rows in a valid configuration.
func (c GridConfig) RowCount() int {
	return (c.DayEnd-c.DayStart)/c.Step + 1
}

// SpanRows is how many rows an appointment of the given length covers, at least one.
func (c GridConfig) SpanRows(duration int) int {
	return max(1, ceilDiv(duration, c.Step))
}

type CellKind string

const (
	CellEmpty  CellKind = "empty"
	CellAnchor CellKind = "anchor"
	CellHidden CellKind = "hidden"
)

// Action identifies something the front end can trigger from a cell.
type Action string

const (
	ActionAdd          Action = "add"
	ActionEdit         Action = "edit"
	ActionCycleStatus  Action = "cycle_status"
	ActionEChart       Action = "echart"
	ActionBilling      Action = "billing"
	ActionMasterRecord Action = "master_record"
	ActionRx           Action = "rx"
)

var anchorActions = []Action{ActionEdit, ActionCycleStatus, ActionEChart, ActionBilling, ActionMasterRecord, ActionRx}

// GridAppointment is an appointment as drawn on the day view.
type GridAppointment struct {
	ID          int
	ProviderID  int
	Date        string
	Start       int
	Duration    int
	Status      Status
	PatientID   int
	PatientName string
	Reason      string
}

type Cell struct {
	ProviderID  int
	Kind        CellKind
	Appointment *GridAppointment
	// SpanRows is the full height of an anchor; VisibleRows is the part that
	// fits before the end of the visible day.
	SpanRows    int
	VisibleRows int
}

// Clickable reports whether the cell may start a new booking.
func (c Cell) Clickable() bool {
	return c.Kind == CellEmpty
}

func (c Cell) Actions() []Action {
	switch c.Kind {
	case CellEmpty:
		return []Action{ActionAdd}
	case CellAnchor:
		out := make([]Action, len(anchorActions))
		copy(out, anchorActions)
		return out
	}
	return nil
}

type Row struct {
	Minute int
	Label  string
	Cells  []Cell
}

type DayGrid struct {
	Date      string
	Providers []int
	Step      int
	Rows      []Row
	// Unplaced holds appointments of the listed providers that no row could
	// anchor: off-grid starts, starts outside the visible range, or starts
	// inside another appointment's span.
	Unplaced []GridAppointment
}

// Layout builds the day view for the given providers. Each provider column is
// laid out independently and every (row, provider) pair gets exactly one cell.
// Appointments dated other than date are ignored; an empty Date is taken as
// already filtered to the day.
func Layout(date string, providers []int, appts []GridAppointment, cfg GridConfig) (*DayGrid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	date = FormatDate(day)

	columns := make(map[int]int, len(providers))
	for i, p := range providers {
		if _, dup := columns[p]; dup {
			return nil, fmt.Errorf("%w: provider %d listed twice", ErrConfiguration, p)
		}
		columns[p] = i
	}

	own := make([]GridAppointment, 0, len(appts))
	for _, a := range appts {
		if _, ok := columns[a.ProviderID]; !ok {
			continue
		}
		if a.Date != "" && a.Date != date {
			continue
		}
		if a.Duration <= 0 {
			return nil, fmt.Errorf("%w: appointment %d has duration %d", ErrInvalidDuration, a.ID, a.Duration)
		}
		own = append(own, a)
	}

	// Lowest id wins when two appointments share a start. The checker should
	// prevent this; it only happens after out-of-band writes.
	sort.SliceStable(own, func(i, j int) bool { return own[i].ID < own[j].ID })
	starts := make([]map[int]*GridAppointment, len(providers))
	for i := range starts {
		starts[i] = make(map[int]*GridAppointment)
	}
	for i := range own {
		a := &own[i]
		col := starts[columns[a.ProviderID]]
		if _, taken := col[a.Start]; !taken {
			col[a.Start] = a
		}
	}

	hidden := make([]map[int]bool, len(providers))
	for i := range hidden {
		hidden[i] = make(map[int]bool)
	}

	n := cfg.RowCount()
	anchored := make(map[*GridAppointment]bool)
	grid := &DayGrid{
		Date:      date,
		Providers: append([]int(nil), providers...),
		Step:      cfg.Step,
		Rows:      make([]Row, n),
	}

	for r := 0; r < n; r++ {
		minute := cfg.DayStart + r*cfg.Step
		row := Row{Minute: minute, Label: FormatClock(minute), Cells: make([]Cell, len(providers))}

		for col, p := range providers {
			if hidden[col][minute] {
				row.Cells[col] = Cell{ProviderID: p, Kind: CellHidden}
				continue
			}

			a, ok := starts[col][minute]
			if !ok {
				row.Cells[col] = Cell{ProviderID: p, Kind: CellEmpty}
				continue
			}

			span := cfg.SpanRows(a.Duration)
			for i := 1; i < span; i++ {
				next := minute + i*cfg.Step
				if next > cfg.DayEnd {
					break
				}
				hidden[col][next] = true
			}
			anchored[a] = true
			row.Cells[col] = Cell{
				ProviderID:  p,
				Kind:        CellAnchor,
				Appointment: a,
				SpanRows:    span,
				VisibleRows: min(span, n-r),
			}
		}
		grid.Rows[r] = row
	}

	for i := range own {
		if !anchored[&own[i]] {
			grid.Unplaced = append(grid.Unplaced, own[i])
		}
	}
	sort.SliceStable(grid.Unplaced, func(i, j int) bool {
		if grid.Unplaced[i].Start != grid.Unplaced[j].Start {
			return grid.Unplaced[i].Start < grid.Unplaced[j].Start
		}
		return grid.Unplaced[i].ID < grid.Unplaced[j].ID
	})

	return grid, nil
}

// Column returns the cells of one provider top to bottom.
func (g *DayGrid) Column(providerID int) []Cell {
	col := -1
	for i, p := range g.Providers {
		if p == providerID {
			col = i
			break
		}
	}
	if col < 0 {
		return nil
	}
	cells := make([]Cell, len(g.Rows))
	for i, row := range g.Rows {
		cells[i] = row.Cells[col]
	}
	return cells
}
