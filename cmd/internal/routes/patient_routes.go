package routes

import (
	"clinic/cmd/internal/service"
	"clinic/cmd/internal/utils/apierror"
	"net/http"

	"github.com/labstack/echo/v4"
)

type PatientService interface {
	SearchPatients(mode, keyword string) ([]*service.PatientResponse, apierror.ErrorResponse)
	GetPatient(id int) (*service.PatientResponse, apierror.ErrorResponse)
	CreatePatient(req *service.PatientRequest) (*service.PatientResponse, apierror.ErrorResponse)
	UpdatePatient(id int, patch *service.PatientPatch) (*service.PatientResponse, apierror.ErrorResponse)
}

type DefaultPatientRoute struct {
	PatientService PatientService
}

func NewPatientDefault(patientService PatientService) *DefaultPatientRoute {
	return &DefaultPatientRoute{PatientService: patientService}
}

func (p *DefaultPatientRoute) SearchPatients(c echo.Context) error {
	patients, apierr := p.PatientService.SearchPatients(c.QueryParam("mode"), c.QueryParam("keyword"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"patients": patients}
	return c.JSON(http.StatusOK, &resp)
}

func (p *DefaultPatientRoute) GetPatient(c echo.Context) error {
	id, errResp := pathID(c)
	if errResp != nil {
		return c.JSON(errResp.Code(), errResp)
	}

	patient, apierr := p.PatientService.GetPatient(id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, patient)
}

func (p *DefaultPatientRoute) CreatePatient(c echo.Context) error {
	var req service.PatientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	patient, apierr := p.PatientService.CreatePatient(&req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, patient)
}

func (p *DefaultPatientRoute) UpdatePatient(c echo.Context) error {
	id, errResp := pathID(c)
	if errResp != nil {
		return c.JSON(errResp.Code(), errResp)
	}

	var patch service.PatientPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	patient, apierr := p.PatientService.UpdatePatient(id, &patch)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, patient)
}
