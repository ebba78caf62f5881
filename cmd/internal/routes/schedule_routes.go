package routes

import (
	"clinic/cmd/internal/events"
	"clinic/cmd/internal/service"
	"clinic/cmd/internal/utils/apierror"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

const keepAliveInterval = 25 * time.Second

type EventSource interface {
	Subscribe(eventType string, handler events.Handler) func()
}

type DefaultScheduleRoute struct {
	AppointmentService AppointmentService
	Events             EventSource
}

func NewScheduleDefault(apptService AppointmentService, source EventSource) *DefaultScheduleRoute {
	return &DefaultScheduleRoute{AppointmentService: apptService, Events: source}
}

// GetDayGrid serves the day view. Providers come as repeated or comma
// separated providerId parameters; none means every provider.
func (s *DefaultScheduleRoute) GetDayGrid(c echo.Context) error {
	date := strings.TrimSpace(c.QueryParam("date"))
	if date == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("date"))
	}

	var providers []int
	for _, raw := range c.QueryParams()["providerId"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil {
				return c.JSON(http.StatusBadRequest, apierror.NewInvalidParamTypeError("providerId", "int"))
			}
			providers = append(providers, id)
		}
	}

	grid, apierr := s.AppointmentService.GetDayGrid(&service.DayGridRequest{Date: date, ProviderIDs: providers})
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, grid)
}

// StreamEvents pushes schedule changes to open views as server-sent events,
// optionally only those of one date.
func (s *DefaultScheduleRoute) StreamEvents(c echo.Context) error {
	date := strings.TrimSpace(c.QueryParam("date"))

	queue := make(chan events.Event, 32)
	unsubscribe := s.Events.Subscribe(events.All, func(e events.Event) error {
		if date != "" && e.Date != date {
			return nil
		}
		select {
		case queue <- e:
			return nil
		default:
			return errors.New("event stream is full, dropping " + e.ID)
		}
	})
	defer unsubscribe()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-queue:
			data, err := json.Marshal(e)
			if err != nil {
				log.Errorf("failed to encode event %s: %v", e.ID, err)
				continue
			}
			if _, err = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", e.ID, e.Type, data); err != nil {
				return nil
			}
			w.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
