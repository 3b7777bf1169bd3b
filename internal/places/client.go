// Package places is a small client for the Google Places API (New) text search.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"dinnerdice/internal/models"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Places API (New) endpoint root.
	DefaultBaseURL = "https://places.googleapis.com/v1"

	// RequestTimeout bounds a single search call.
	RequestTimeout = 30 * time.Second

	fieldMask = "places.id,places.displayName,places.rating,places.userRatingCount," +
		"places.priceLevel,places.formattedAddress,places.googleMapsUri"
)

// APIError is returned when the Places API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("places: status %d", e.StatusCode)
	}
	return fmt.Sprintf("places: status %d: %s", e.StatusCode, e.Message)
}

// SearchRequest is a text search with server-side filters.
type SearchRequest struct {
	TextQuery string
	MinRating float64
	OpenNow   bool
}

// Client performs text searches against the Places API.
type Client struct {
	base   string
	hc     *http.Client
	key    string
	rl     *rate.Limiter
	logger *slog.Logger
}

// NewClient creates a Places client. An empty base uses DefaultBaseURL.
func NewClient(logger *slog.Logger, base, key string) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("places API key is required")
	}
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		base:   strings.TrimSuffix(base, "/"),
		hc:     &http.Client{Timeout: RequestTimeout},
		key:    key,
		rl:     rate.NewLimiter(rate.Limit(2), 2),
		logger: logger,
	}, nil
}

// Query builds the text query for a cuisine near a location anchor.
func Query(cuisine, anchor string) string {
	return fmt.Sprintf("%s food near %s", cuisine, anchor)
}

// SearchText runs a text search and returns the places found, possibly none.
func (c *Client) SearchText(ctx context.Context, req SearchRequest) ([]models.Place, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]any{
		"textQuery": req.TextQuery,
		"minRating": req.MinRating,
		"openNow":   req.OpenNow,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/places:searchText", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.key)
	httpReq.Header.Set("X-Goog-FieldMask", fieldMask)

	c.logger.Debug("Searching places", "query", req.TextQuery, "minRating", req.MinRating, "openNow", req.OpenNow)
	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("places search request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read places response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := gjson.GetBytes(data, "error.message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(data))
			if len(msg) > 512 {
				msg = msg[:512]
			}
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("places response is not valid JSON")
	}
	found := parsePlaces(gjson.GetBytes(data, "places"))
	c.logger.Info("Places search finished", "query", req.TextQuery, "count", len(found))
	return found, nil
}

// parsePlaces converts the "places" array. A missing array yields no places.
func parsePlaces(arr gjson.Result) []models.Place {
	var out []models.Place
	arr.ForEach(func(_, item gjson.Result) bool {
		p := models.Place{
			ID:               item.Get("id").String(),
			DisplayName:      item.Get("displayName.text").String(),
			PriceLevel:       item.Get("priceLevel").String(),
			FormattedAddress: item.Get("formattedAddress").String(),
			GoogleMapsURI:    item.Get("googleMapsUri").String(),
		}
		if r := item.Get("rating"); r.Exists() {
			v := r.Float()
			p.Rating = &v
		}
		if n := item.Get("userRatingCount"); n.Exists() {
			v := int(n.Int())
			p.UserRatingCount = &v
		}
		out = append(out, p)
		return true
	})
	return out
}
