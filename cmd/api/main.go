package main

import (
	"clinic/cmd/internal/auth"
	"clinic/cmd/internal/config"
	"clinic/cmd/internal/domain/sqlite"
	"clinic/cmd/internal/domain/sqlite/repository"
	"clinic/cmd/internal/events"
	cognitoclient "clinic/cmd/internal/integration/aws/cognito"
	"clinic/cmd/internal/metrics"
	"clinic/cmd/internal/routes"
	"clinic/cmd/internal/service"
	"clinic/cmd/internal/utils/apierror"
	"clinic/cmd/internal/utils/validators"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const (
	eventsPath      = "/api/schedule/events"
	shutdownTimeout = 10 * time.Second
	jwksCacheTTL    = time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}

	sched, err := config.LoadSchedule(cfg.SchedulePath)
	if err != nil {
		log.Fatal("failed to load schedule configuration: ", err)
	}

	validate := validator.New()
	validators.Register(validate)

	// Init SQLite
	db, err := sqlite.Init(cfg.DatabasePath)
	if err != nil {
		log.Fatal("failed to initialize database: ", err)
	}

	// Getting repositories
	userRepo := repository.NewUserRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)
	doctorRepo := repository.NewDoctorRepository(db)
	patientRepo := repository.NewPatientRepository(db)

	bus := events.NewBus()
	metrics.Register()
	metrics.Observe(bus)

	// Cognito client, or a fixed dev caller when auth is off
	var cogClient cognitoclient.CognitoInterface
	var authMiddleware echo.MiddlewareFunc
	if cfg.AuthDisabled {
		log.Warnf("authentication is disabled, every request acts as %q", cfg.DevSub)
		authMiddleware = auth.DevMiddleware(cfg.DevSub)
	} else {
		client, err := cognitoclient.InitCognitoClient(cfg.Cognito)
		if err != nil {
			log.Fatal("failed to initialize cognito client: ", err)
		}
		cogClient = client

		keys := auth.NewJWKSClient(cfg.Cognito.Issuer()+"/.well-known/jwks.json", jwksCacheTTL)
		authMiddleware = auth.Middleware(auth.NewVerifier(keys, cfg.Cognito.Issuer(), cfg.Cognito.ClientID))
	}

	// Getting services
	userService := service.NewUserService(userRepo, validate, cogClient)
	doctorService := service.NewDoctorService(doctorRepo)
	patientService := service.NewPatientService(patientRepo, validate)
	apptService := service.NewAppointmentService(apptRepo, patientRepo, doctorRepo, userRepo, validate, bus, sched)

	if err = doctorService.EnsureRoster(sched.Doctors); err != nil {
		log.Fatal("failed to seed doctors: ", err)
	}
	if cfg.AuthDisabled {
		if err = userService.EnsureUser(cfg.DevSub, cfg.DevSub); err != nil {
			log.Fatal("failed to create dev user: ", err)
		}
	}

	// Getting routes
	userRoutes := routes.NewUserDefault(userService)
	doctorRoutes := routes.NewDoctorDefault(doctorService)
	patientRoutes := routes.NewPatientDefault(patientService)
	apptRoutes := routes.NewAppointmentDefault(apptService)
	scheduleRoutes := routes.NewScheduleDefault(apptService, bus)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == eventsPath
		},
		Timeout:      cfg.RequestTimeout,
		ErrorMessage: `{"message":"Request timed out"}`,
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Sign-up and login go straight to Cognito and need no token
	if !cfg.AuthDisabled {
		loginLimiter := middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.LoginRateLimit),
				Burst:     5,
				ExpiresIn: 3 * time.Minute,
			}),
			DenyHandler: func(c echo.Context, _ string, _ error) error {
				return c.JSON(http.StatusTooManyRequests, apierror.TooManyRequestsError)
			},
		})

		e.POST("/api/users", userRoutes.Signup)
		e.POST("/api/users/login", userRoutes.Login, loginLimiter)
		e.POST("/api/users/verify", userRoutes.ConfirmSignup)
	}

	api := e.Group("/api", authMiddleware)

	// Users
	api.GET("/users", userRoutes.ListStaff)
	api.GET("/users/:id", userRoutes.GetStaff)

	// Doctors
	api.GET("/doctors", doctorRoutes.GetDoctors)

	// Patients
	api.GET("/patients", patientRoutes.SearchPatients)
	api.POST("/patients", patientRoutes.CreatePatient)
	api.GET("/patients/:id", patientRoutes.GetPatient)
	api.PUT("/patients/:id", patientRoutes.UpdatePatient)

	// Appointments
	api.GET("/appointments", apptRoutes.GetAppointments)
	api.POST("/appointments", apptRoutes.CreateAppointment)
	api.POST("/appointments/check", apptRoutes.CheckAvailability)
	api.GET("/appointments/:id", apptRoutes.GetAppointment)
	api.PUT("/appointments/:id", apptRoutes.UpdateAppointment)
	api.DELETE("/appointments/:id", apptRoutes.DeleteAppointment)
	api.PUT("/appointments/:id/status", apptRoutes.UpdateStatus)
	api.POST("/appointments/:id/status/next", apptRoutes.CycleStatus)

	// Day view
	api.GET("/schedule/day", scheduleRoutes.GetDayGrid)
	api.GET("/schedule/events", scheduleRoutes.StreamEvents)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = e.Shutdown(ctx); err != nil {
		log.Errorf("server shutdown failed: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
