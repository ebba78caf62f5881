package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	reason := "  checkup \n"
	req := struct {
		Time      string
		Reason    *string
		Providers []string
		Missing   *string
		Duration  int
	}{
		Time:      " 10:30 ",
		Reason:    &reason,
		Providers: []string{" 1", "2 "},
		Duration:  15,
	}

	Sanitize(&req)

	assert.Equal(t, "10:30", req.Time)
	assert.Equal(t, "checkup", *req.Reason)
	assert.Equal(t, []string{"1", "2"}, req.Providers)
	assert.Nil(t, req.Missing)
	assert.Equal(t, 15, req.Duration)
}

func TestSanitize_PanicsOnNonPointer(t *testing.T) {
	assert.Panics(t, func() { Sanitize(struct{}{}) })
	var s *struct{}
	assert.Panics(t, func() { Sanitize(s) })
}

func TestFormatEpoch(t *testing.T) {
	assert.Equal(t, "2025-08-04T10:00:00Z", FormatEpoch(1754301600000))
}

func TestParseTokenDataCtx(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, err := ParseTokenDataCtx(c)
	assert.ErrorIs(t, err, ErrNoTokenData)

	c.Set(TokenContextKey, &TokenData{Sub: "abc"})
	data, err := ParseTokenDataCtx(c)
	require.NoError(t, err)
	assert.Equal(t, "abc", data.Sub)
}
