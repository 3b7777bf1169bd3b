package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"dinnerdice/internal/models"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// DefaultCalendarID is used when no calendar is configured.
const DefaultCalendarID = "primary"

// CalendarClient provides a client for interacting with the Google Calendar API.
type CalendarClient struct {
	service    *calendar.Service
	logger     *slog.Logger
	calendarID string
}

// NewCalendarClient creates a Google Calendar client writing to calendarID.
func NewCalendarClient(ctx context.Context, logger *slog.Logger, httpClient *http.Client, calendarID string) (*CalendarClient, error) {
	service, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	return &CalendarClient{service: service, logger: logger, calendarID: calendarID}, nil
}

// CreateEvent inserts event into the configured calendar. Guests are not
// notified. The returned copy carries the ID and link assigned by Google.
func (c *CalendarClient) CreateEvent(ctx context.Context, event *models.Event) (*models.Event, error) {
	c.logger.Debug("Creating Google Calendar event", "title", event.Title, "calendarID", c.calendarID)

	created, err := c.service.Events.Insert(c.calendarID, toGoogleEvent(event)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}

	out := *event
	out.ID = created.Id
	out.Link = created.HtmlLink
	out.Source = fmt.Sprintf("google-%s", c.calendarID)
	c.logger.Info("Created Google Calendar event", "title", event.Title, "id", created.Id)
	return &out, nil
}

// ListCalendars returns the IDs and names of the calendars visible to the account.
func (c *CalendarClient) ListCalendars(ctx context.Context) (map[string]string, error) {
	list, err := c.service.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	calendars := make(map[string]string, len(list.Items))
	for _, item := range list.Items {
		calendars[item.Id] = item.Summary
	}
	return calendars, nil
}

func toGoogleEvent(event *models.Event) *calendar.Event {
	return &calendar.Event{
		Summary:     event.Title,
		Location:    event.Location,
		Description: event.Description,
		Start: &calendar.EventDateTime{
			DateTime: event.StartTime.Format(time.RFC3339),
			TimeZone: event.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: event.EndTime.Format(time.RFC3339),
			TimeZone: event.TimeZone,
		},
	}
}
