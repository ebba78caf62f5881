package routes

import (
	"clinic/cmd/internal/service"
	"clinic/cmd/internal/utils/apierror"
	"net/http"

	"github.com/labstack/echo/v4"
)

type DoctorService interface {
	GetDoctors() ([]*service.DoctorResponse, apierror.ErrorResponse)
}

type DefaultDoctorRoute struct {
	DoctorService DoctorService
}

func NewDoctorDefault(doctorService DoctorService) *DefaultDoctorRoute {
	return &DefaultDoctorRoute{DoctorService: doctorService}
}

func (d *DefaultDoctorRoute) GetDoctors(c echo.Context) error {
	doctors, apierr := d.DoctorService.GetDoctors()
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"doctors": doctors}
	return c.JSON(http.StatusOK, &resp)
}
