package routes

import (
	"clinic/cmd/internal/service"
	"clinic/cmd/internal/utils/apierror"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

type AppointmentService interface {
	GetAppointments(date string, providerID int) ([]*service.AppointmentResponse, apierror.ErrorResponse)
	GetAppointment(id int) (*service.AppointmentResponse, apierror.ErrorResponse)
	CreateAppointment(req *service.AppointmentRequest, subId string) (*service.AppointmentResponse, apierror.ErrorResponse)
	UpdateAppointment(id int, patch *service.AppointmentPatch) (*service.AppointmentResponse, apierror.ErrorResponse)
	DeleteAppointment(id int) apierror.ErrorResponse
	UpdateAppointmentStatus(id int, req *service.StatusRequest) (*service.AppointmentResponse, apierror.ErrorResponse)
	CycleAppointmentStatus(id int) (*service.AppointmentResponse, apierror.ErrorResponse)
	CheckAvailability(req *service.AvailabilityRequest) (*service.AvailabilityResponse, apierror.ErrorResponse)
	GetDayGrid(req *service.DayGridRequest) (*service.DayGridResponse, apierror.ErrorResponse)
}

type DefaultAppointmentRoute struct {
	AppointmentService AppointmentService
}

func NewAppointmentDefault(apptService AppointmentService) *DefaultAppointmentRoute {
	return &DefaultAppointmentRoute{AppointmentService: apptService}
}

func (a *DefaultAppointmentRoute) GetAppointments(c echo.Context) error {
	date := strings.TrimSpace(c.QueryParam("date"))
	if date == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("date"))
	}

	providerID := 0
	if raw := strings.TrimSpace(c.QueryParam("providerId")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, apierror.NewInvalidParamTypeError("providerId", "int"))
		}
		providerID = id
	}

	appts, apierr := a.AppointmentService.GetAppointments(date, providerID)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"appointments": appts}
	return c.JSON(http.StatusOK, &resp)
}

func (a *DefaultAppointmentRoute) GetAppointment(c echo.Context) error {
	id, errResp := pathID(c)
	if errResp != nil {
		return c.JSON(errResp.Code(), errResp)
	}

	appt, apierr := a.AppointmentService.GetAppointment(id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appt)
}

func (a *DefaultAppointmentRoute) CreateAppointment(c echo.Context) error {
	var req service.AppointmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	sub, errResp := callerSub(c)
	if errResp != nil {
		return c.JSON(errResp.Code(), errResp)
	}

	appt, apierr := a.AppointmentService.CreateAppointment(&req, sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, appt)
}

func (a *DefaultAppointmentRoute) UpdateAppointment(c echo.Context) error {
	id, errResp := pathID(c)
	if errResp != nil {
		return c.JSON(errResp.Code(), errResp)
	}

	var patch service.AppointmentPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	appt, apierr := a.AppointmentService.UpdateAppointment(id, &patch)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appt)
}

func (a *DefaultAppointmentRoute) DeleteAppointment(c echo.Context) error {
	id, errResp := pathID(c)
	if errResp != nil {
		return c.JSON(errResp.Code(), errResp)
	}

	serr := a.AppointmentService.DeleteAppointment(id)
	if serr != nil {
		return c.JSON(serr.Code(), serr)
	}
	return c.NoContent(http.StatusOK)
}

func (a *DefaultAppointmentRoute) UpdateStatus(c echo.Context) error {
	id, errResp := pathID(c)
	if errResp != nil {
		return c.JSON(errResp.Code(), errResp)
	}

	var req service.StatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	appt, apierr := a.AppointmentService.UpdateAppointmentStatus(id, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appt)
}

func (a *DefaultAppointmentRoute) CycleStatus(c echo.Context) error {
	id, errResp := pathID(c)
	if errResp != nil {
		return c.JSON(errResp.Code(), errResp)
	}

	appt, apierr := a.AppointmentService.CycleAppointmentStatus(id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appt)
}

func (a *DefaultAppointmentRoute) CheckAvailability(c echo.Context) error {
	var req service.AvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := a.AppointmentService.CheckAvailability(&req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func pathID(c echo.Context) (int, apierror.ErrorResponse) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, apierror.NewSimple(http.StatusBadRequest, "ID is not a number")
	}
	return id, nil
}
