// Package roller runs one dinner roll: pick a cuisine, find an unvisited
// restaurant, record it and put it on the calendar.
package roller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dinnerdice/internal/models"
	"dinnerdice/internal/picker"
	"dinnerdice/internal/places"
)

// DefaultAnchor is the location text appended to every search.
const DefaultAnchor = "92117"

// ErrNoEligiblePlace means the search returned nothing that passed the filter.
var ErrNoEligiblePlace = errors.New("no eligible restaurant found")

// PlaceSearcher finds candidate restaurants.
type PlaceSearcher interface {
	SearchText(ctx context.Context, req places.SearchRequest) ([]models.Place, error)
}

// HistoryStore is the log of past selections.
type HistoryStore interface {
	PlaceIDs(ctx context.Context) (map[string]struct{}, error)
	Append(ctx context.Context, entry models.HistoryEntry) error
}

// Scheduler puts an event on a calendar.
type Scheduler interface {
	CreateEvent(ctx context.Context, event *models.Event) (*models.Event, error)
}

// Options tune a Roller. Zero values fall back to the defaults.
type Options struct {
	Anchor   string
	Criteria picker.Criteria
	Location *time.Location
	DryRun   bool

	// Mirrors receive a copy of the event; their failures are logged only.
	Mirrors []Scheduler

	Now  func() time.Time
	Rand picker.Rand
}

// Result describes a successful roll.
type Result struct {
	Cuisine   string
	EventDate time.Time
	Place     models.Place
	Entry     models.HistoryEntry
	Event     *models.Event
	DryRun    bool
}

// Roller orchestrates a single roll.
type Roller struct {
	logger   *slog.Logger
	searcher PlaceSearcher
	history  HistoryStore
	calendar Scheduler
	mirrors  []Scheduler
	anchor   string
	criteria picker.Criteria
	loc      *time.Location
	dryRun   bool
	now      func() time.Time
	rand     picker.Rand
}

// NewRoller creates a new Roller.
func NewRoller(logger *slog.Logger, searcher PlaceSearcher, history HistoryStore, calendar Scheduler, opts Options) (*Roller, error) {
	if searcher == nil || history == nil || calendar == nil {
		return nil, errors.New("roller needs a place searcher, a history store and a calendar")
	}

	r := &Roller{
		logger:   logger,
		searcher: searcher,
		history:  history,
		calendar: calendar,
		mirrors:  opts.Mirrors,
		anchor:   opts.Anchor,
		criteria: opts.Criteria,
		loc:      opts.Location,
		dryRun:   opts.DryRun,
		now:      opts.Now,
		rand:     opts.Rand,
	}
	if r.anchor == "" {
		r.anchor = DefaultAnchor
	}
	if r.criteria == (picker.Criteria{}) {
		r.criteria = picker.DefaultCriteria()
	}
	if r.loc == nil {
		r.loc = time.UTC
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.rand == nil {
		r.rand = picker.NewRand()
	}
	return r, nil
}

// Roll runs the pipeline. An empty cuisine picks one at random.
// It returns ErrNoEligiblePlace when no restaurant qualifies.
func (r *Roller) Roll(ctx context.Context, cuisine string) (*Result, error) {
	if cuisine == "" {
		cuisine = picker.RandomCuisine(r.rand)
	}
	now := r.now().In(r.loc)
	eventDate := picker.NextMonday(now, r.loc)
	r.logger.Info("Starting roll.", "cuisine", cuisine, "eventDate", eventDate.Format(time.DateOnly))

	visited, err := r.history.PlaceIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	r.logger.Debug("Loaded history.", "visited", len(visited))

	found, err := r.searcher.SearchText(ctx, places.SearchRequest{
		TextQuery: places.Query(cuisine, r.anchor),
		MinRating: r.criteria.MinRating,
		OpenNow:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search places: %w", err)
	}

	place, ok := picker.Choose(r.rand, found, visited, r.criteria)
	if !ok {
		r.logger.Warn("No eligible restaurant.", "cuisine", cuisine, "candidates", len(found))
		return nil, fmt.Errorf("%w for %s", ErrNoEligiblePlace, cuisine)
	}
	r.logger.Info("Chose restaurant.", "name", place.Name(), "placeID", place.ID)

	res := &Result{
		Cuisine:   cuisine,
		EventDate: eventDate,
		Place:     place,
		Entry:     models.NewHistoryEntry(place, cuisine, eventDate, now),
		Event:     r.dinnerEvent(place, eventDate),
		DryRun:    r.dryRun,
	}

	if r.dryRun {
		r.logger.Info("[DRY RUN] Would record the choice and create a calendar event", "name", place.Name(), "start", res.Event.StartTime)
		return res, nil
	}

	if err := r.history.Append(ctx, res.Entry); err != nil {
		return nil, fmt.Errorf("failed to record choice: %w", err)
	}

	created, err := r.calendar.CreateEvent(ctx, res.Event)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}
	res.Event = created

	for _, m := range r.mirrors {
		if _, err := m.CreateEvent(ctx, created); err != nil {
			r.logger.Error("Failed to mirror calendar event", "title", created.Title, "error", err)
		}
	}

	r.logger.Info("Roll finished.", "name", place.Name())
	return res, nil
}

func (r *Roller) dinnerEvent(place models.Place, date time.Time) *models.Event {
	start, end := picker.DinnerWindow(date, r.loc)
	return &models.Event{
		Title:    fmt.Sprintf("Dinner @ %s", place.Name()),
		Location: place.FormattedAddress,
		Description: fmt.Sprintf("%s | Rating: %s | Reviews: %s | Link: %s",
			place.Name(), place.RatingText("N/A"), place.ReviewCountText("N/A"), place.GoogleMapsURI),
		StartTime: start,
		EndTime:   end,
		TimeZone:  r.loc.String(),
	}
}
