package service

import (
	"clinic/cmd/internal/domain/entity"
	"clinic/cmd/internal/utils"
	"clinic/cmd/internal/utils/apierror"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type PatientRepository interface {
	FindByID(id int) (*entity.Patient, error)
	SearchByName(last, firstPrefix string) ([]*entity.Patient, error)
	SearchContains(columns []string, keyword string) ([]*entity.Patient, error)
	Save(patient *entity.Patient) error
	Update(id int, fields map[string]any) (bool, error)
}

const SearchModeName = "search_name"

// searchColumns maps the remaining search modes to the columns they scan.
var searchColumns = map[string][]string{
	"search_phone":         {"homephone", "cellphone", "workphone"},
	"search_dob":           {"dob"},
	"search_health_number": {"healthinsurance_number"},
	"search_email":         {"email"},
	"search_address":       {"address"},
}

type PatientRequest struct {
	LastName        string  `json:"lastname" validate:"required,max=100"`
	FirstName       string  `json:"firstname" validate:"required,max=100"`
	PreferredName   *string `json:"preferredname" validate:"omitempty,max=100"`
	Address         *string `json:"address" validate:"omitempty,max=255"`
	City            *string `json:"city" validate:"omitempty,max=100"`
	Province        *string `json:"province" validate:"omitempty,max=100"`
	PostalCode      *string `json:"postalcode" validate:"omitempty,max=20"`
	HomePhone       *string `json:"homephone" validate:"omitempty,max=20"`
	WorkPhone       *string `json:"workphone" validate:"omitempty,max=20"`
	CellPhone       *string `json:"cellphone" validate:"omitempty,max=20"`
	Email           *string `json:"email" validate:"omitempty,email"`
	DOB             *string `json:"dob" validate:"omitempty,isodate"`
	Sex             *string `json:"sex" validate:"omitempty,max=10"`
	HealthNumber    *string `json:"health_number" validate:"omitempty,max=50"`
	HealthVersion   *string `json:"health_version" validate:"omitempty,max=10"`
	Status          *string `json:"status" validate:"omitempty,oneof=active 'not enrolled'"`
	FamilyPhysician *string `json:"family_physician" validate:"omitempty,max=150"`
}

// PatientPatch changes only the fields that are present.
type PatientPatch struct {
	LastName        *string `json:"lastname" validate:"omitempty,min=1,max=100"`
	FirstName       *string `json:"firstname" validate:"omitempty,min=1,max=100"`
	PreferredName   *string `json:"preferredname" validate:"omitempty,max=100"`
	Address         *string `json:"address" validate:"omitempty,max=255"`
	City            *string `json:"city" validate:"omitempty,max=100"`
	Province        *string `json:"province" validate:"omitempty,max=100"`
	PostalCode      *string `json:"postalcode" validate:"omitempty,max=20"`
	HomePhone       *string `json:"homephone" validate:"omitempty,max=20"`
	WorkPhone       *string `json:"workphone" validate:"omitempty,max=20"`
	CellPhone       *string `json:"cellphone" validate:"omitempty,max=20"`
	Email           *string `json:"email" validate:"omitempty,email"`
	DOB             *string `json:"dob" validate:"omitempty,isodate"`
	Sex             *string `json:"sex" validate:"omitempty,max=10"`
	HealthNumber    *string `json:"health_number" validate:"omitempty,max=50"`
	HealthVersion   *string `json:"health_version" validate:"omitempty,max=10"`
	Status          *string `json:"status" validate:"omitempty,oneof=active 'not enrolled'"`
	FamilyPhysician *string `json:"family_physician" validate:"omitempty,max=150"`
}

type PatientResponse struct {
	ID              int     `json:"id"`
	LastName        string  `json:"lastname"`
	FirstName       string  `json:"firstname"`
	PreferredName   *string `json:"preferredname"`
	Address         *string `json:"address"`
	City            *string `json:"city"`
	Province        *string `json:"province"`
	PostalCode      *string `json:"postalcode"`
	HomePhone       *string `json:"homephone"`
	WorkPhone       *string `json:"workphone"`
	CellPhone       *string `json:"cellphone"`
	Email           *string `json:"email"`
	DOB             *string `json:"dob"`
	Sex             *string `json:"sex"`
	HealthNumber    *string `json:"health_number"`
	HealthVersion   *string `json:"health_version"`
	Status          string  `json:"status"`
	FamilyPhysician *string `json:"family_physician"`
}

type DefaultPatientService struct {
	PatientRepo PatientRepository
	Validate    *validator.Validate
}

func NewPatientService(patientRepo PatientRepository, validate *validator.Validate) *DefaultPatientService {
	return &DefaultPatientService{PatientRepo: patientRepo, Validate: validate}
}

// SearchPatients looks patients up by one of the search modes. search_name
// takes "Last" (prefix) or "Last, First" (exact last name, first name prefix);
// every other mode matches the keyword anywhere in its columns.
func (p *DefaultPatientService) SearchPatients(mode, keyword string) ([]*PatientResponse, apierror.ErrorResponse) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, apierror.NewMissingParamError("keyword")
	}
	if mode == "" {
		mode = SearchModeName
	}

	var (
		patients []*entity.Patient
		err      error
	)
	if mode == SearchModeName {
		last, first, _ := strings.Cut(keyword, ",")
		last, first = strings.TrimSpace(last), strings.TrimSpace(first)
		if last == "" {
			return nil, apierror.NewSimple(400, "Invalid name format, expected 'Last' or 'Last, First'")
		}
		patients, err = p.PatientRepo.SearchByName(last, first)
	} else {
		columns, ok := searchColumns[mode]
		if !ok {
			return nil, apierror.InvalidSearchModeError
		}
		patients, err = p.PatientRepo.SearchContains(columns, keyword)
	}

	if err != nil {
		log.Errorf("failed to search patients (%s %q): %v", mode, keyword, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*PatientResponse, len(patients))
	for i, patient := range patients {
		resp[i] = toPatientResponse(patient)
	}
	return resp, nil
}

func (p *DefaultPatientService) GetPatient(id int) (*PatientResponse, apierror.ErrorResponse) {
	patient, err := p.PatientRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch patient %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if patient == nil {
		return nil, apierror.NotFoundError
	}
	return toPatientResponse(patient), nil
}

func (p *DefaultPatientService) CreatePatient(req *PatientRequest) (*PatientResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := p.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	patient := &entity.Patient{
		LastName:                   req.LastName,
		FirstName:                  req.FirstName,
		PreferredName:              req.PreferredName,
		Address:                    req.Address,
		City:                       req.City,
		Province:                   req.Province,
		PostalCode:                 req.PostalCode,
		HomePhone:                  req.HomePhone,
		WorkPhone:                  req.WorkPhone,
		CellPhone:                  req.CellPhone,
		Email:                      req.Email,
		DOB:                        req.DOB,
		Sex:                        req.Sex,
		HealthInsuranceNumber:      req.HealthNumber,
		HealthInsuranceVersionCode: req.HealthVersion,
		Status:                     "active",
		FamilyPhysician:            req.FamilyPhysician,
	}
	if req.Status != nil {
		patient.Status = *req.Status
	}

	if err := p.PatientRepo.Save(patient); err != nil {
		log.Errorf("failed to create patient: %v", err)
		return nil, apierror.InternalServerError
	}
	return toPatientResponse(patient), nil
}

func (p *DefaultPatientService) UpdatePatient(id int, patch *PatientPatch) (*PatientResponse, apierror.ErrorResponse) {
	utils.Sanitize(patch)
	if err := p.Validate.Struct(patch); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	fields := patch.columns()
	if len(fields) == 0 {
		return nil, apierror.NothingToUpdateError
	}

	found, err := p.PatientRepo.Update(id, fields)
	if err != nil {
		log.Errorf("failed to update patient %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if !found {
		return nil, apierror.NotFoundError
	}
	return p.GetPatient(id)
}

func (p *PatientPatch) columns() map[string]any {
	all := map[string]*string{
		"lastname":                     p.LastName,
		"firstname":                    p.FirstName,
		"preferredname":                p.PreferredName,
		"address":                      p.Address,
		"city":                         p.City,
		"province":                     p.Province,
		"postalcode":                   p.PostalCode,
		"homephone":                    p.HomePhone,
		"workphone":                    p.WorkPhone,
		"cellphone":                    p.CellPhone,
		"email":                        p.Email,
		"dob":                          p.DOB,
		"sex":                          p.Sex,
		"healthinsurance_number":       p.HealthNumber,
		"healthinsurance_version_code": p.HealthVersion,
		"patient_status":               p.Status,
		"family_physician":             p.FamilyPhysician,
	}

	fields := make(map[string]any)
	for col, v := range all {
		if v != nil {
			fields[col] = *v
		}
	}
	return fields
}

func toPatientResponse(p *entity.Patient) *PatientResponse {
	return &PatientResponse{
		ID:              p.ID,
		LastName:        p.LastName,
		FirstName:       p.FirstName,
		PreferredName:   p.PreferredName,
		Address:         p.Address,
		City:            p.City,
		Province:        p.Province,
		PostalCode:      p.PostalCode,
		HomePhone:       p.HomePhone,
		WorkPhone:       p.WorkPhone,
		CellPhone:       p.CellPhone,
		Email:           p.Email,
		DOB:             p.DOB,
		Sex:             p.Sex,
		HealthNumber:    p.HealthInsuranceNumber,
		HealthVersion:   p.HealthInsuranceVersionCode,
		Status:          p.Status,
		FamilyPhysician: p.FamilyPhysician,
	}
}

func patientName(p *entity.Patient) string {
	if p == nil || p.ID == 0 {
		return ""
	}
	return p.LastName + ", " + p.FirstName
}
