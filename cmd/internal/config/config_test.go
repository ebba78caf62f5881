package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"clinic/cmd/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchedule(t *testing.T) {
	t.Setenv("CLINIC_STEP", "15")
	doc := `
grid:
  start: "08:00"
  end: "17:45"
  step: ${CLINIC_STEP}
default_duration: 30
doctors:
  - Dr. Wong
  - Dr. Patel
`
	s, err := ParseSchedule([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, schedule.GridConfig{DayStart: 480, DayEnd: 1065, Step: 15}, s.Grid)
	assert.Equal(t, 30, s.DefaultDuration)
	assert.Equal(t, []string{"Dr. Wong", "Dr. Patel"}, s.Doctors)
}

func TestParseSchedule_Defaults(t *testing.T) {
	s, err := ParseSchedule([]byte("doctors: [Dr. Who]\n"))
	require.NoError(t, err)
	assert.Equal(t, schedule.DefaultGridConfig(), s.Grid)
	assert.Equal(t, 15, s.DefaultDuration)
	assert.Equal(t, []string{"Dr. Who"}, s.Doctors)
}

func TestParseSchedule_Invalid(t *testing.T) {
	docs := []string{
		"grid: {start: \"25:00\"}",
		"grid: {step: 10}",
		"grid: {start: \"12:00\", end: \"08:00\"}",
		"default_duration: -5",
		"grid: [not, a, map]",
	}
	for _, doc := range docs {
		_, err := ParseSchedule([]byte(doc))
		assert.ErrorIs(t, err, schedule.ErrConfiguration, doc)
	}
}

func TestLoadSchedule_MissingFileUsesDefaults(t *testing.T) {
	s, err := LoadSchedule(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSchedule(), s)
}

func TestLoadSchedule_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_duration: 20\n"), 0o600))

	s, err := LoadSchedule(path)
	require.NoError(t, err)
	assert.Equal(t, 20, s.DefaultDuration)
}

func TestLoad(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "8080")
	t.Setenv("AUTH_DISABLED", "true")
	t.Setenv("LOGIN_RATE_LIMIT", "2.5")
	t.Setenv("REQUEST_TIMEOUT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.AuthDisabled)
	assert.Equal(t, 2.5, cfg.LoginRateLimit)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
}

func TestLoad_RequiresCognito(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("AUTH_DISABLED", "false")
	t.Setenv("COGNITO_REGION", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("AUTH_DISABLED", "maybe")

	_, err := Load()
	assert.Error(t, err)
}

func TestCognito_Issuer(t *testing.T) {
	c := Cognito{Region: "ca-central-1", UserPoolID: "ca-central-1_abc"}
	assert.Equal(t, "https://cognito-idp.ca-central-1.amazonaws.com/ca-central-1_abc", c.Issuer())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (stand-in for testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
