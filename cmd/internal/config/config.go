package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Cognito struct {
	Region       string
	UserPoolID   string
	ClientID     string
	ClientSecret string
}

// Issuer is the token issuer of the user pool, also the base of its JWKS url.
func (c Cognito) Issuer() string {
	return "https://cognito-idp." + c.Region + ".amazonaws.com/" + c.UserPoolID
}

type Config struct {
	Port           string
	DatabasePath   string
	SchedulePath   string
	RequestTimeout time.Duration

	// AuthDisabled skips token verification and treats every request as DevSub.
	AuthDisabled bool
	DevSub       string

	// LoginRateLimit is the sustained number of login attempts per second per client.
	LoginRateLimit float64

	Cognito Cognito
}

// Load reads the process environment, after merging a .env file when one
// is present in the working directory.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{
		Port:         getEnv("PORT", "6060"),
		DatabasePath: getEnv("DATABASE_PATH", "clinic.db"),
		SchedulePath: getEnv("SCHEDULE_CONFIG", "configs/schedule.yaml"),
		DevSub:       getEnv("AUTH_DEV_SUB", "dev-user"),
		Cognito: Cognito{
			Region:       os.Getenv("COGNITO_REGION"),
			UserPoolID:   os.Getenv("COGNITO_USER_POOL_ID"),
			ClientID:     os.Getenv("COGNITO_CLIENT_ID"),
			ClientSecret: os.Getenv("COGNITO_CLIENT_SECRET"),
		},
	}

	var err error
	if cfg.AuthDisabled, err = getBool("AUTH_DISABLED", false); err != nil {
		return nil, err
	}
	if cfg.LoginRateLimit, err = getFloat("LOGIN_RATE_LIMIT", 1); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}

	if !cfg.AuthDisabled && (cfg.Cognito.Region == "" || cfg.Cognito.UserPoolID == "" || cfg.Cognito.ClientID == "") {
		return nil, errors.New("COGNITO_REGION, COGNITO_USER_POOL_ID and COGNITO_CLIENT_ID are required unless AUTH_DISABLED is set")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(key + " must be a boolean")
	}
	return b, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, errors.New(key + " must be a positive number")
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, errors.New(key + " must be a positive duration such as 15s")
	}
	return d, nil
}
