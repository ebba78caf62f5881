package service

import (
	"errors"
	"net/http"
	"testing"

	"clinic/cmd/internal/domain/entity"
	"clinic/cmd/internal/utils/apierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPatientRepo struct {
	mock.Mock
}

func (m *mockPatientRepo) FindByID(id int) (*entity.Patient, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Patient), args.Error(1)
}

func (m *mockPatientRepo) SearchByName(last, firstPrefix string) ([]*entity.Patient, error) {
	args := m.Called(last, firstPrefix)
	return args.Get(0).([]*entity.Patient), args.Error(1)
}

func (m *mockPatientRepo) SearchContains(columns []string, keyword string) ([]*entity.Patient, error) {
	args := m.Called(columns, keyword)
	return args.Get(0).([]*entity.Patient), args.Error(1)
}

func (m *mockPatientRepo) Save(patient *entity.Patient) error {
	return m.Called(patient).Error(0)
}

func (m *mockPatientRepo) Update(id int, fields map[string]any) (bool, error) {
	args := m.Called(id, fields)
	return args.Bool(0), args.Error(1)
}

func TestSearchPatients_ByName(t *testing.T) {
	repo := &mockPatientRepo{}
	svc := NewPatientService(repo, newValidate())

	repo.On("SearchByName", "Smith", "").Return([]*entity.Patient{{ID: 1, LastName: "Smith", FirstName: "Anna"}}, nil).Once()
	repo.On("SearchByName", "Smith", "An").Return([]*entity.Patient{}, nil).Once()

	got, apierr := svc.SearchPatients("", " Smith ")
	require.Nil(t, apierr)
	require.Len(t, got, 1)
	assert.Equal(t, "Anna", got[0].FirstName)

	got, apierr = svc.SearchPatients(SearchModeName, "Smith, An")
	require.Nil(t, apierr)
	assert.Empty(t, got)

	_, apierr = svc.SearchPatients(SearchModeName, ", Anna")
	require.NotNil(t, apierr)
	assert.Equal(t, http.StatusBadRequest, apierr.Code())

	repo.AssertExpectations(t)
}

func TestSearchPatients_OtherModes(t *testing.T) {
	repo := &mockPatientRepo{}
	svc := NewPatientService(repo, newValidate())

	repo.On("SearchContains", []string{"homephone", "cellphone", "workphone"}, "0101").
		Return([]*entity.Patient{{ID: 2, LastName: "Jones"}}, nil)
	repo.On("SearchContains", []string{"healthinsurance_number"}, "1234").
		Return([]*entity.Patient(nil), errors.New("db down"))

	got, apierr := svc.SearchPatients("search_phone", "0101")
	require.Nil(t, apierr)
	require.Len(t, got, 1)

	_, apierr = svc.SearchPatients("search_health_number", "1234")
	assert.Same(t, apierror.InternalServerError, apierr)

	_, apierr = svc.SearchPatients("search_shoe_size", "42")
	assert.Same(t, apierror.InvalidSearchModeError, apierr)

	_, apierr = svc.SearchPatients("search_phone", "  ")
	require.NotNil(t, apierr)
	assert.Equal(t, http.StatusBadRequest, apierr.Code())
}

func TestCreatePatient(t *testing.T) {
	repo := &mockPatientRepo{}
	svc := NewPatientService(repo, newValidate())

	repo.On("Save", mock.MatchedBy(func(p *entity.Patient) bool {
		return p.LastName == "Doe" && p.Status == "active" && *p.HealthInsuranceNumber == "1234-567"
	})).Run(func(args mock.Arguments) {
		args.Get(0).(*entity.Patient).ID = 7
	}).Return(nil)

	resp, apierr := svc.CreatePatient(&PatientRequest{
		LastName:     " Doe",
		FirstName:    "Jane",
		HealthNumber: strPtr("1234-567"),
		DOB:          strPtr("1980-02-29"),
	})
	require.Nil(t, apierr)
	assert.Equal(t, 7, resp.ID)
	assert.Equal(t, "active", resp.Status)

	_, apierr = svc.CreatePatient(&PatientRequest{LastName: "Doe", FirstName: "Jane", DOB: strPtr("1981-02-29")})
	require.NotNil(t, apierr)
	assert.Equal(t, http.StatusUnprocessableEntity, apierr.Code())

	_, apierr = svc.CreatePatient(&PatientRequest{LastName: "Doe", FirstName: "Jane", Status: strPtr("deceased")})
	require.NotNil(t, apierr)
	assert.Equal(t, http.StatusUnprocessableEntity, apierr.Code())

	repo.AssertNumberOfCalls(t, "Save", 1)
}

func TestUpdatePatient(t *testing.T) {
	repo := &mockPatientRepo{}
	svc := NewPatientService(repo, newValidate())

	repo.On("Update", 7, map[string]any{"city": "Toronto", "patient_status": "not enrolled"}).Return(true, nil)
	repo.On("Update", 8, mock.Anything).Return(false, nil)
	repo.On("FindByID", 7).Return(&entity.Patient{ID: 7, LastName: "Doe", City: strPtr("Toronto"), Status: "not enrolled"}, nil)

	resp, apierr := svc.UpdatePatient(7, &PatientPatch{City: strPtr("Toronto "), Status: strPtr("not enrolled")})
	require.Nil(t, apierr)
	assert.Equal(t, "Toronto", *resp.City)

	_, apierr = svc.UpdatePatient(8, &PatientPatch{City: strPtr("Ottawa")})
	assert.Same(t, apierror.NotFoundError, apierr)

	_, apierr = svc.UpdatePatient(7, &PatientPatch{})
	assert.Same(t, apierror.NothingToUpdateError, apierr)
}

func TestGetPatient(t *testing.T) {
	repo := &mockPatientRepo{}
	svc := NewPatientService(repo, newValidate())
	repo.On("FindByID", 1).Return(nil, nil)

	_, apierr := svc.GetPatient(1)
	assert.Same(t, apierror.NotFoundError, apierr)
}
