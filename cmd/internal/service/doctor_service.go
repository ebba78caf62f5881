package service

import (
	"clinic/cmd/internal/domain/entity"
	"clinic/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
)

type DoctorRepository interface {
	FindAll() ([]*entity.Doctor, error)
	FindByID(id int) (*entity.Doctor, error)
	EnsureNames(names []string) error
}

type DoctorResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type DefaultDoctorService struct {
	DoctorRepo DoctorRepository
}

func NewDoctorService(doctorRepo DoctorRepository) *DefaultDoctorService {
	return &DefaultDoctorService{DoctorRepo: doctorRepo}
}

func (d *DefaultDoctorService) GetDoctors() ([]*DoctorResponse, apierror.ErrorResponse) {
	doctors, err := d.DoctorRepo.FindAll()
	if err != nil {
		log.Errorf("failed to fetch doctors: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*DoctorResponse, len(doctors))
	for i, doctor := range doctors {
		resp[i] = toDoctorResponse(doctor)
	}
	return resp, nil
}

// EnsureRoster stores the configured doctors that are not known yet.
func (d *DefaultDoctorService) EnsureRoster(names []string) error {
	if err := d.DoctorRepo.EnsureNames(names); err != nil {
		return err
	}
	log.Infof("doctor roster ready (%d configured)", len(names))
	return nil
}

func toDoctorResponse(d *entity.Doctor) *DoctorResponse {
	return &DoctorResponse{ID: d.ID, Name: d.Name}
}
