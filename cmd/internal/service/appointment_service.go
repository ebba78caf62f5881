package service

import (
	"clinic/cmd/internal/config"
	"clinic/cmd/internal/domain/entity"
	"clinic/cmd/internal/events"
	"clinic/cmd/internal/metrics"
	"clinic/cmd/internal/schedule"
	"clinic/cmd/internal/utils"
	"clinic/cmd/internal/utils/apierror"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type AppointmentRepository interface {
	FindByID(id int) (*entity.Appointment, error)
	FindByDay(date string, providerID int) ([]*entity.Appointment, error)
	SaveChecked(appointment *entity.Appointment, check func(sameDay []*entity.Appointment) error) error
	UpdateStatus(id int, status string) (bool, error)
	Delete(id int) (bool, error)
}

type EventPublisher interface {
	Publish(event events.Event)
}

type AppointmentRequest struct {
	PatientID  int     `json:"patient_id" validate:"required,gt=0"`
	ProviderID int     `json:"provider_id" validate:"required,gt=0"`
	Date       string  `json:"date" validate:"required,isodate"`
	Time       string  `json:"time" validate:"required,clock"`
	Duration   *int    `json:"duration"`
	Reason     *string `json:"reason" validate:"omitempty,max=500"`
	Status     string  `json:"status" validate:"omitempty,apptstatus"`
}

// AppointmentPatch changes only the fields that are present.
type AppointmentPatch struct {
	PatientID  *int    `json:"patient_id" validate:"omitempty,gt=0"`
	ProviderID *int    `json:"provider_id" validate:"omitempty,gt=0"`
	Date       *string `json:"date" validate:"omitempty,isodate"`
	Time       *string `json:"time" validate:"omitempty,clock"`
	Duration   *int    `json:"duration"`
	Reason     *string `json:"reason" validate:"omitempty,max=500"`
	Status     *string `json:"status" validate:"omitempty,apptstatus"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,apptstatus"`
}

type AvailabilityRequest struct {
	ProviderID int    `json:"provider_id" validate:"required,gt=0"`
	Date       string `json:"date" validate:"required,isodate"`
	Time       string `json:"time" validate:"required,clock"`
	Duration   *int   `json:"duration"`
	// ExcludeID is the appointment being edited, if any.
	ExcludeID int `json:"exclude_id" validate:"gte=0"`
}

type AppointmentResponse struct {
	ID           int    `json:"id"`
	PatientID    int    `json:"patient_id"`
	PatientName  string `json:"patient_name,omitempty"`
	ProviderID   int    `json:"provider_id"`
	ProviderName string `json:"provider_name,omitempty"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	EndTime      string `json:"end_time"`
	Duration     int    `json:"duration"`
	Reason       string `json:"reason"`
	Status       string `json:"status"`
	StatusLabel  string `json:"status_label"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

type AvailabilityResponse struct {
	Available     bool                 `json:"available"`
	Time          string               `json:"time"`
	EndTime       string               `json:"end_time"`
	ConflictsWith *AppointmentResponse `json:"conflicts_with,omitempty"`
}

type DefaultAppointmentService struct {
	AppointmentRepo AppointmentRepository
	PatientRepo     PatientRepository
	DoctorRepo      DoctorRepository
	UserRepo        UserRepository
	Validate        *validator.Validate
	Events          EventPublisher
	Schedule        *config.Schedule
}

func NewAppointmentService(
	apptRepo AppointmentRepository,
	patientRepo PatientRepository,
	doctorRepo DoctorRepository,
	userRepo UserRepository,
	validate *validator.Validate,
	publisher EventPublisher,
	sched *config.Schedule,
) *DefaultAppointmentService {
	return &DefaultAppointmentService{
		AppointmentRepo: apptRepo,
		PatientRepo:     patientRepo,
		DoctorRepo:      doctorRepo,
		UserRepo:        userRepo,
		Validate:        validate,
		Events:          publisher,
		Schedule:        sched,
	}
}

// GetAppointments lists a day's appointments ordered by start time.
// providerID zero means every provider.
func (a *DefaultAppointmentService) GetAppointments(date string, providerID int) ([]*AppointmentResponse, apierror.ErrorResponse) {
	if _, err := schedule.ParseDate(date); err != nil {
		return nil, apierror.InvalidDateError
	}

	appts, err := a.AppointmentRepo.FindByDay(date, providerID)
	if err != nil {
		log.Errorf("failed to find appointments for %s: %v", date, err)
		return nil, apierror.InternalServerError
	}

	response := make([]*AppointmentResponse, len(appts))
	for i, appt := range appts {
		response[i] = toAppointmentResponse(appt)
	}
	return response, nil
}

func (a *DefaultAppointmentService) GetAppointment(id int) (*AppointmentResponse, apierror.ErrorResponse) {
	appt, apierr := a.fetchAppointment(id)
	if apierr != nil {
		return nil, apierr
	}
	return toAppointmentResponse(appt), nil
}

// CreateAppointment books a slot. The start is rounded to the booking
// granularity and the conflict check runs in the same transaction as the insert.
func (a *DefaultAppointmentService) CreateAppointment(req *AppointmentRequest, subId string) (*AppointmentResponse, apierror.ErrorResponse) {
	caller, apierr := a.fetchCaller(subId)
	if apierr != nil {
		return nil, apierr
	}

	utils.Sanitize(req)
	if valerr := a.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	duration, apierr := a.durationOrDefault(req.Duration)
	if apierr != nil {
		return nil, apierr
	}
	start, apierr := roundedStart(req.Time)
	if apierr != nil {
		return nil, apierr
	}

	status := schedule.StatusBooked
	if req.Status != "" {
		status = schedule.Status(req.Status)
	}

	patient, apierr := a.fetchPatient(req.PatientID)
	if apierr != nil {
		return nil, apierr
	}
	doctor, apierr := a.fetchDoctor(req.ProviderID)
	if apierr != nil {
		return nil, apierr
	}

	appointment := &entity.Appointment{
		PatientID:   patient.ID,
		ProviderID:  doctor.ID,
		Date:        req.Date,
		StartMinute: start,
		Duration:    duration,
		Reason:      req.Reason,
		Status:      status.String(),
		CreatedByID: caller.ID,
	}

	check := conflictCheck(schedule.Candidate{Start: start, Duration: duration}, 0)
	if err := a.AppointmentRepo.SaveChecked(appointment, check); err != nil {
		return nil, a.scheduleError("create appointment", err)
	}

	appointment.Patient = *patient
	appointment.Provider = *doctor
	a.publish(events.AppointmentCreated, appointment)
	return toAppointmentResponse(appointment), nil
}

// UpdateAppointment applies a partial edit. When the time slot moves, the
// merged booking is checked against the provider's other bookings of the
// (possibly new) day, never against itself.
func (a *DefaultAppointmentService) UpdateAppointment(id int, patch *AppointmentPatch) (*AppointmentResponse, apierror.ErrorResponse) {
	utils.Sanitize(patch)
	if valerr := a.Validate.Struct(patch); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}
	if patch.isEmpty() {
		return nil, apierror.NothingToUpdateError
	}

	appt, apierr := a.fetchAppointment(id)
	if apierr != nil {
		return nil, apierr
	}
	before := *appt

	if patch.PatientID != nil && *patch.PatientID != appt.PatientID {
		patient, apierr := a.fetchPatient(*patch.PatientID)
		if apierr != nil {
			return nil, apierr
		}
		appt.PatientID = patient.ID
		appt.Patient = *patient
	}
	if patch.ProviderID != nil && *patch.ProviderID != appt.ProviderID {
		doctor, apierr := a.fetchDoctor(*patch.ProviderID)
		if apierr != nil {
			return nil, apierr
		}
		appt.ProviderID = doctor.ID
		appt.Provider = *doctor
	}
	if patch.Date != nil {
		appt.Date = *patch.Date
	}
	if patch.Time != nil {
		start, apierr := roundedStart(*patch.Time)
		if apierr != nil {
			return nil, apierr
		}
		appt.StartMinute = start
	}
	if patch.Duration != nil {
		if *patch.Duration <= 0 {
			return nil, apierror.InvalidDurationError
		}
		appt.Duration = *patch.Duration
	}
	if patch.Reason != nil {
		appt.Reason = patch.Reason
	}
	if patch.Status != nil {
		appt.Status = *patch.Status
	}

	moved := appt.ProviderID != before.ProviderID ||
		appt.Date != before.Date ||
		appt.StartMinute != before.StartMinute ||
		appt.Duration != before.Duration

	check := func([]*entity.Appointment) error { return nil }
	if moved {
		check = conflictCheck(schedule.Candidate{Start: appt.StartMinute, Duration: appt.Duration}, appt.ID)
	}
	if err := a.AppointmentRepo.SaveChecked(appt, check); err != nil {
		return nil, a.scheduleError(fmt.Sprintf("update appointment %d", id), err)
	}

	a.publish(events.AppointmentUpdated, appt)
	if before.Date != appt.Date || before.ProviderID != appt.ProviderID {
		a.publish(events.AppointmentMoved, &before)
	}
	return toAppointmentResponse(appt), nil
}

func (a *DefaultAppointmentService) DeleteAppointment(id int) apierror.ErrorResponse {
	appt, apierr := a.fetchAppointment(id)
	if apierr != nil {
		return apierr
	}

	found, err := a.AppointmentRepo.Delete(id)
	if err != nil {
		log.Errorf("failed to delete appointment %d: %v", id, err)
		return apierror.InternalServerError
	}
	if !found {
		return apierror.NotFoundError
	}

	a.publish(events.AppointmentDeleted, appt)
	return nil
}

// UpdateAppointmentStatus sets the status directly, as picked from the edit form.
func (a *DefaultAppointmentService) UpdateAppointmentStatus(id int, req *StatusRequest) (*AppointmentResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if valerr := a.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}
	return a.setStatus(id, func(schedule.Status) schedule.Status {
		return schedule.Status(req.Status)
	})
}

// CycleAppointmentStatus advances the status one step around the cycle,
// which is what a click on the status cell does.
func (a *DefaultAppointmentService) CycleAppointmentStatus(id int) (*AppointmentResponse, apierror.ErrorResponse) {
	return a.setStatus(id, schedule.Status.Next)
}

func (a *DefaultAppointmentService) setStatus(id int, next func(schedule.Status) schedule.Status) (*AppointmentResponse, apierror.ErrorResponse) {
	appt, apierr := a.fetchAppointment(id)
	if apierr != nil {
		return nil, apierr
	}

	status := next(schedule.Status(appt.Status))
	found, err := a.AppointmentRepo.UpdateStatus(id, status.String())
	if err != nil {
		log.Errorf("failed to update status of appointment %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if !found {
		return nil, apierror.NotFoundError
	}

	appt.Status = status.String()
	a.publish(events.StatusChanged, appt)
	return toAppointmentResponse(appt), nil
}

// CheckAvailability is a dry run of the booking check, used while the
// booking form is open. It never writes.
func (a *DefaultAppointmentService) CheckAvailability(req *AvailabilityRequest) (*AvailabilityResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if valerr := a.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	duration, apierr := a.durationOrDefault(req.Duration)
	if apierr != nil {
		return nil, apierr
	}
	start, apierr := roundedStart(req.Time)
	if apierr != nil {
		return nil, apierr
	}

	sameDay, err := a.AppointmentRepo.FindByDay(req.Date, req.ProviderID)
	if err != nil {
		log.Errorf("failed to load bookings of provider %d on %s: %v", req.ProviderID, req.Date, err)
		return nil, apierror.InternalServerError
	}

	hit, err := schedule.FindConflict(schedule.Candidate{Start: start, Duration: duration}, toBookings(sameDay), req.ExcludeID)
	if err != nil {
		return nil, a.scheduleError("check availability", err)
	}

	resp := &AvailabilityResponse{
		Available: hit == nil,
		Time:      schedule.FormatClock(start),
		EndTime:   schedule.FormatClock(start + duration),
	}
	if hit != nil {
		for _, appt := range sameDay {
			if appt.ID == hit.ID {
				resp.ConflictsWith = toAppointmentResponse(appt)
				break
			}
		}
	}
	return resp, nil
}

func (a *DefaultAppointmentService) fetchCaller(sub string) (*entity.User, apierror.ErrorResponse) {
	caller, err := a.UserRepo.FindBySub(sub)
	if err != nil {
		log.Errorf("failed to fetch user %s: %v", sub, err)
		return nil, apierror.InternalServerError
	}
	if caller == nil {
		return nil, apierror.UnknownCallerError
	}
	return caller, nil
}

func (a *DefaultAppointmentService) fetchAppointment(id int) (*entity.Appointment, apierror.ErrorResponse) {
	appt, err := a.AppointmentRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch appointment by id %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if appt == nil {
		return nil, apierror.NotFoundError
	}
	return appt, nil
}

func (a *DefaultAppointmentService) fetchPatient(id int) (*entity.Patient, apierror.ErrorResponse) {
	patient, err := a.PatientRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch patient %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if patient == nil {
		return nil, apierror.UnknownPatientError
	}
	return patient, nil
}

func (a *DefaultAppointmentService) fetchDoctor(id int) (*entity.Doctor, apierror.ErrorResponse) {
	doctor, err := a.DoctorRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch doctor %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if doctor == nil {
		return nil, apierror.UnknownProviderError
	}
	return doctor, nil
}

func (a *DefaultAppointmentService) durationOrDefault(d *int) (int, apierror.ErrorResponse) {
	if d == nil {
		return a.Schedule.DefaultDuration, nil
	}
	if *d <= 0 {
		return 0, apierror.InvalidDurationError
	}
	return *d, nil
}

func (a *DefaultAppointmentService) publish(eventType string, appt *entity.Appointment) {
	if a.Events == nil {
		return
	}
	a.Events.Publish(events.Event{
		Type:          eventType,
		AppointmentID: appt.ID,
		ProviderID:    appt.ProviderID,
		Date:          appt.Date,
		Status:        appt.Status,
	})
}

// scheduleError maps errors of the scheduling core onto API errors and logs
// anything it does not recognise.
func (a *DefaultAppointmentService) scheduleError(op string, err error) apierror.ErrorResponse {
	var conflict *conflictError
	switch {
	case errors.As(err, &conflict):
		metrics.IncBookingConflict()
		b := conflict.booking
		return apierror.NewConflictError(b.ID, schedule.FormatClock(b.Start)+"-"+schedule.FormatClock(b.Start+b.Duration))
	case errors.Is(err, schedule.ErrInvalidDuration):
		return apierror.InvalidDurationError
	case errors.Is(err, schedule.ErrInvalidDate):
		return apierror.InvalidDateError
	case errors.Is(err, schedule.ErrInvalidTime):
		return apierror.InvalidTimeError
	case errors.Is(err, schedule.ErrInvalidStatus):
		return apierror.InvalidStatusError
	case errors.Is(err, schedule.ErrConfiguration):
		log.Errorf("failed to %s: %v", op, err)
		return apierror.GridConfigurationError
	}
	log.Errorf("failed to %s: %v", op, err)
	return apierror.InternalServerError
}

// conflictError carries the booking that blocked a write.
type conflictError struct {
	booking schedule.Booking
}

func (e *conflictError) Error() string {
	return fmt.Sprintf("%v with appointment %d", schedule.ErrConflict, e.booking.ID)
}

func (e *conflictError) Unwrap() error {
	return schedule.ErrConflict
}

func conflictCheck(candidate schedule.Candidate, excludeID int) func([]*entity.Appointment) error {
	return func(sameDay []*entity.Appointment) error {
		hit, err := schedule.FindConflict(candidate, toBookings(sameDay), excludeID)
		if err != nil {
			return err
		}
		if hit != nil {
			return &conflictError{booking: *hit}
		}
		return nil
	}
}

func roundedStart(clock string) (int, apierror.ErrorResponse) {
	m, err := schedule.ParseClock(clock)
	if err != nil {
		return 0, apierror.InvalidTimeError
	}
	return schedule.RoundToStep(m, schedule.RoundingStep), nil
}

func (p *AppointmentPatch) isEmpty() bool {
	return p.PatientID == nil && p.ProviderID == nil && p.Date == nil && p.Time == nil &&
		p.Duration == nil && p.Reason == nil && p.Status == nil
}

func toBookings(appts []*entity.Appointment) []schedule.Booking {
	out := make([]schedule.Booking, len(appts))
	for i, appt := range appts {
		out[i] = schedule.Booking{ID: appt.ID, Start: appt.StartMinute, Duration: appt.Duration}
	}
	return out
}

func toAppointmentResponse(appt *entity.Appointment) *AppointmentResponse {
	resp := &AppointmentResponse{
		ID:          appt.ID,
		PatientID:   appt.PatientID,
		PatientName: patientName(&appt.Patient),
		ProviderID:  appt.ProviderID,
		Date:        appt.Date,
		Time:        schedule.FormatClock(appt.StartMinute),
		EndTime:     schedule.FormatClock(appt.StartMinute + appt.Duration),
		Duration:    appt.Duration,
		Status:      appt.Status,
		StatusLabel: schedule.Status(appt.Status).Label(),
		CreatedAt:   utils.FormatEpoch(appt.CreatedAt),
		UpdatedAt:   utils.FormatEpoch(appt.UpdatedAt),
	}
	if appt.Provider.ID != 0 {
		resp.ProviderName = appt.Provider.Name
	}
	if appt.Reason != nil {
		resp.Reason = *appt.Reason
	}
	return resp
}
