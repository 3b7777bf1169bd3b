package models

import "time"

// Event represents a dinner reservation to be placed on a calendar.
// This is an internal representation, independent of any specific calendar provider.
type Event struct {
	ID          string    // Identifier assigned by the calendar that stored the event
	Title       string    // Summary or title of the event
	Description string    // Detailed description of the event
	Location    string    // Street address of the restaurant
	StartTime   time.Time // Start time of the event
	EndTime     time.Time // End time of the event
	TimeZone    string    // IANA zone name, e.g. "America/Los_Angeles"
	UID         string    // The iCalendar UID, used by CalDAV calendars
	Link        string    // Link to the stored event, when the calendar returns one
	Source      string    // The calendar the event was written to (e.g., "google")
}
