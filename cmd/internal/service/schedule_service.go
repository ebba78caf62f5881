package service

import (
	"clinic/cmd/internal/domain/entity"
	"clinic/cmd/internal/metrics"
	"clinic/cmd/internal/schedule"
	"clinic/cmd/internal/utils/apierror"
	"time"

	"github.com/labstack/gommon/log"
)

type DayGridRequest struct {
	Date        string `query:"date" validate:"required,isodate"`
	ProviderIDs []int  `query:"providerId" validate:"omitempty,nodupes,dive,gt=0"`
}

type GridAppointmentResponse struct {
	ID          int    `json:"id"`
	PatientID   int    `json:"patient_id"`
	PatientName string `json:"patient_name"`
	ProviderID  int    `json:"provider_id"`
	Time        string `json:"time"`
	Duration    int    `json:"duration"`
	Reason      string `json:"reason,omitempty"`
	Status      string `json:"status"`
	StatusLabel string `json:"status_label"`
}

type GridCellResponse struct {
	ProviderID  int                      `json:"provider_id"`
	Kind        string                   `json:"kind"`
	Clickable   bool                     `json:"clickable"`
	Actions     []string                 `json:"actions,omitempty"`
	SpanRows    int                      `json:"span_rows,omitempty"`
	VisibleRows int                      `json:"visible_rows,omitempty"`
	Appointment *GridAppointmentResponse `json:"appointment,omitempty"`
}

type GridRowResponse struct {
	Time  string              `json:"time"`
	Cells []*GridCellResponse `json:"cells"`
}

type DayGridResponse struct {
	Date      string                     `json:"date"`
	Step      int                        `json:"step"`
	Providers []*DoctorResponse          `json:"providers"`
	Rows      []*GridRowResponse         `json:"rows"`
	Unplaced  []*GridAppointmentResponse `json:"unplaced"`
}

// GetDayGrid lays out a day for the requested providers, or for every
// provider when none are named, in the order they were asked for.
func (a *DefaultAppointmentService) GetDayGrid(req *DayGridRequest) (*DayGridResponse, apierror.ErrorResponse) {
	if valerr := a.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	began := time.Now()
	doctors, apierr := a.gridProviders(req.ProviderIDs)
	if apierr != nil {
		return nil, apierr
	}

	appts, err := a.AppointmentRepo.FindByDay(req.Date, 0)
	if err != nil {
		log.Errorf("failed to load appointments for %s: %v", req.Date, err)
		return nil, apierror.InternalServerError
	}

	providerIDs := make([]int, len(doctors))
	for i, d := range doctors {
		providerIDs[i] = d.ID
	}
	gridAppts := make([]schedule.GridAppointment, len(appts))
	for i, appt := range appts {
		gridAppts[i] = toGridAppointment(appt)
	}

	grid, err := schedule.Layout(req.Date, providerIDs, gridAppts, a.Schedule.Grid)
	if err != nil {
		return nil, a.scheduleError("lay out "+req.Date, err)
	}
	if len(grid.Unplaced) > 0 {
		log.Warnf("%d appointment(s) on %s could not be placed on the grid", len(grid.Unplaced), req.Date)
	}
	metrics.ObserveGridLayout(time.Since(began))

	return toDayGridResponse(grid, doctors), nil
}

func (a *DefaultAppointmentService) gridProviders(ids []int) ([]*entity.Doctor, apierror.ErrorResponse) {
	if len(ids) == 0 {
		doctors, err := a.DoctorRepo.FindAll()
		if err != nil {
			log.Errorf("failed to fetch doctors: %v", err)
			return nil, apierror.InternalServerError
		}
		return doctors, nil
	}

	doctors := make([]*entity.Doctor, len(ids))
	for i, id := range ids {
		doctor, apierr := a.fetchDoctor(id)
		if apierr != nil {
			return nil, apierr
		}
		doctors[i] = doctor
	}
	return doctors, nil
}

func toGridAppointment(appt *entity.Appointment) schedule.GridAppointment {
	g := schedule.GridAppointment{
		ID:          appt.ID,
		ProviderID:  appt.ProviderID,
		Date:        appt.Date,
		Start:       appt.StartMinute,
		Duration:    appt.Duration,
		Status:      schedule.Status(appt.Status),
		PatientID:   appt.PatientID,
		PatientName: patientName(&appt.Patient),
	}
	if appt.Reason != nil {
		g.Reason = *appt.Reason
	}
	return g
}

func toGridAppointmentResponse(g *schedule.GridAppointment) *GridAppointmentResponse {
	return &GridAppointmentResponse{
		ID:          g.ID,
		PatientID:   g.PatientID,
		PatientName: g.PatientName,
		ProviderID:  g.ProviderID,
		Time:        schedule.FormatClock(g.Start),
		Duration:    g.Duration,
		Reason:      g.Reason,
		Status:      g.Status.String(),
		StatusLabel: g.Status.Label(),
	}
}

func toDayGridResponse(grid *schedule.DayGrid, doctors []*entity.Doctor) *DayGridResponse {
	resp := &DayGridResponse{
		Date:      grid.Date,
		Step:      grid.Step,
		Providers: make([]*DoctorResponse, len(doctors)),
		Rows:      make([]*GridRowResponse, len(grid.Rows)),
		Unplaced:  make([]*GridAppointmentResponse, len(grid.Unplaced)),
	}
	for i, d := range doctors {
		resp.Providers[i] = toDoctorResponse(d)
	}

	for i, row := range grid.Rows {
		cells := make([]*GridCellResponse, len(row.Cells))
		for j, cell := range row.Cells {
			c := &GridCellResponse{
				ProviderID:  cell.ProviderID,
				Kind:        string(cell.Kind),
				Clickable:   cell.Clickable(),
				SpanRows:    cell.SpanRows,
				VisibleRows: cell.VisibleRows,
			}
			for _, action := range cell.Actions() {
				c.Actions = append(c.Actions, string(action))
			}
			if cell.Appointment != nil {
				c.Appointment = toGridAppointmentResponse(cell.Appointment)
			}
			cells[j] = c
		}
		resp.Rows[i] = &GridRowResponse{Time: row.Label, Cells: cells}
	}

	for i := range grid.Unplaced {
		resp.Unplaced[i] = toGridAppointmentResponse(&grid.Unplaced[i])
	}
	return resp
}
