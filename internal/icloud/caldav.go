package icloud

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"dinnerdice/internal/models"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"
)

const (
	// ICloudCalDAVEndpoint is the iCloud CalDAV server root.
	ICloudCalDAVEndpoint = "https://caldav.icloud.com/"

	productID = "-//dinnerdice//EN"
)

// customTransport handles adding Basic Auth and custom headers to requests.
type customTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
}

// RoundTrip adds required headers and authentication to each request.
func (t *customTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.Username, t.Password)
	req.Header.Set("User-Agent", "dinnerdice/1.0")
	return t.Transport.RoundTrip(req)
}

// CalDAVClient writes dinner events to a CalDAV calendar (iCloud by default).
type CalDAVClient struct {
	caldavClient *caldav.Client
	webdavClient *webdav.Client
	logger       *slog.Logger
	endpoint     string
	calendarURL  string
}

// NewClient connects to endpoint and locates the calendar named calendarName.
// An empty endpoint means iCloud.
func NewClient(ctx context.Context, logger *slog.Logger, endpoint, username, password, calendarName string) (*CalDAVClient, error) {
	if endpoint == "" {
		endpoint = ICloudCalDAVEndpoint
	}
	transport := &customTransport{
		Username:  username,
		Password:  password,
		Transport: http.DefaultTransport,
	}
	httpClient := &http.Client{Transport: transport, Timeout: 30 * time.Second}

	c, err := newClient(logger, httpClient, endpoint)
	if err != nil {
		return nil, err
	}

	logger.Info("Finding CalDAV calendar", "calendarName", calendarName)
	calendarURL, err := c.findCalendar(ctx, calendarName)
	if err != nil {
		return nil, fmt.Errorf("could not find calendar '%s': %w", calendarName, err)
	}
	c.calendarURL = calendarURL
	logger.Info("Successfully found CalDAV calendar", "url", calendarURL)

	return c, nil
}

func newClient(logger *slog.Logger, httpClient webdav.HTTPClient, endpoint string) (*CalDAVClient, error) {
	caldavClient, err := caldav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}

	webdavClient, err := webdav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create webdav client: %w", err)
	}

	return &CalDAVClient{
		caldavClient: caldavClient,
		webdavClient: webdavClient,
		logger:       logger,
		endpoint:     endpoint,
	}, nil
}

// CreateEvent stores event in the calendar as a new .ics resource.
// A UID is generated when the event has none.
func (c *CalDAVClient) CreateEvent(ctx context.Context, event *models.Event) (*models.Event, error) {
	out := *event
	if out.UID == "" {
		out.UID = GenerateUID()
	}
	c.logger.Debug("Creating CalDAV event", "title", out.Title, "uid", out.UID)

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Children = append(cal.Children, toICal(&out, time.Now().UTC()))

	// The event path must be relative to the endpoint for the webdav client.
	eventPath := path.Join(strings.TrimPrefix(c.calendarURL, strings.TrimSuffix(c.endpoint, "/")), fmt.Sprintf("%s.ics", out.UID))

	writer, err := c.webdavClient.Create(ctx, eventPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create event on CalDAV server: %w", err)
	}
	if err := ical.NewEncoder(writer).Encode(cal); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to encode event to iCal format: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to store event on CalDAV server: %w", err)
	}

	out.ID = out.UID
	out.Source = "caldav"
	c.logger.Info("Created CalDAV event", "title", out.Title, "uid", out.UID)
	return &out, nil
}

// toICal converts an internal Event model to an ical.Component (VEvent).
func toICal(event *models.Event, stamp time.Time) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, event.UID)
	ve.Props.SetText(ical.PropSummary, event.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	ve.Props.SetDateTime(ical.PropDateTimeStart, event.StartTime)
	ve.Props.SetDateTime(ical.PropDateTimeEnd, event.EndTime)

	if event.Description != "" {
		ve.Props.SetText(ical.PropDescription, event.Description)
	}
	if event.Location != "" {
		ve.Props.SetText(ical.PropLocation, event.Location)
	}
	return ve
}

// findCalendar discovers the user's calendars and returns the URL for the one with the matching name.
func (c *CalDAVClient) findCalendar(ctx context.Context, name string) (string, error) {
	principalPath, err := c.caldavClient.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal path: %w", err)
	}

	homeSetPath, err := c.caldavClient.FindCalendarHomeSet(ctx, principalPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	calendars, err := c.caldavClient.FindCalendars(ctx, homeSetPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}

	for _, cal := range calendars {
		if cal.Name == name {
			// Return the full URL for the calendar
			return fmt.Sprintf("%s%s", strings.TrimSuffix(c.endpoint, "/"), cal.Path), nil
		}
	}

	return "", fmt.Errorf("no calendar found with name '%s'", name)
}

// GenerateUID creates a new unique identifier for an event.
func GenerateUID() string {
	return uuid.New().String()
}
