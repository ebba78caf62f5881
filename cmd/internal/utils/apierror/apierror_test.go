package apierror

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleError_JSON(t *testing.T) {
	body, err := json.Marshal(NotFoundError)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"Resource not found"}`, string(body))
	assert.Equal(t, http.StatusNotFound, NotFoundError.Code())
}

func TestNewConflictError(t *testing.T) {
	e := NewConflictError(12, "10:00-10:30")
	assert.Equal(t, http.StatusConflict, e.Code())
	assert.Equal(t, "12", e.Fields["conflicts_with"])
	assert.Equal(t, "10:00-10:30", e.Fields["span"])
}

func TestFromValidationError(t *testing.T) {
	type req struct {
		PatientID int    `validate:"required"`
		Time      string `validate:"required,len=5"`
	}

	err := validator.New().Struct(&req{Time: "9:00"})
	require.Error(t, err)

	apierr := FromValidationError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, apierr.Code())
	assert.Equal(t, "required", apierr.Fields["patientID"])
	assert.Equal(t, "len=5", apierr.Fields["time"])
}

func TestFromValidationError_OtherErrors(t *testing.T) {
	assert.Same(t, MalformedBodyError, FromValidationError(errors.New("boom")))
}

func TestParamErrors(t *testing.T) {
	missing := NewMissingParamError("date")
	assert.Equal(t, http.StatusBadRequest, missing.Code())
	assert.Contains(t, missing.Error(), "date")

	typed := NewInvalidParamTypeError("id", "int32")
	assert.Equal(t, "int32", typed.Fields["id"])
}
