package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"weekcal/internal/config"
	appLog "weekcal/internal/log"
	"weekcal/internal/model"
)

// HomeAssistant reads calendar entities through the Home Assistant REST
// API.
type HomeAssistant struct {
	client *resty.Client
}

// apiError is the JSON body Home Assistant sends with a failure.
type apiError struct {
	Message string `json:"message"`
}

// NewHomeAssistant returns a client for the instance at baseURL using a
// long-lived access token.
func NewHomeAssistant(baseURL, token string) *HomeAssistant {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(20*time.Second).
		SetHeader("Accept", "application/json")
	if token != "" {
		client.SetAuthToken(token)
	}
	return &HomeAssistant{client: client}
}

// FetchEvents calls GET /api/calendars/{entity}?start=&end=.
func (h *HomeAssistant) FetchEvents(ctx context.Context, cal *config.CalendarConfig, start, end time.Time) ([]model.RawEvent, error) {
	var events []model.RawEvent
	var apiErr apiError

	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParam("entity", cal.Entity).
		SetQueryParams(map[string]string{
			"start": start.Format(time.RFC3339),
			"end":   end.Format(time.RFC3339),
		}).
		SetResult(&events).
		SetError(&apiErr).
		Get("/api/calendars/{entity}")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		if apiErr.Message != "" {
			return nil, fmt.Errorf("%s (%d)", apiErr.Message, resp.StatusCode())
		}
		return nil, fmt.Errorf("unexpected status %s", resp.Status())
	}

	appLog.Debug("home assistant events fetched", "calendar", cal.Entity, "count", len(events))
	return events, nil
}
