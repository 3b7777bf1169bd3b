package models

import "time"

// Column headers of the history sheet, in storage order.
const (
	ColTimestamp   = "Timestamp"
	ColEventDate   = "Event Date"
	ColCuisine     = "Cuisine"
	ColRestaurant  = "Restaurant"
	ColPlaceID     = "Google Place ID"
	ColRating      = "Rating"
	ColReviewCount = "Review Count"
	ColPriceLevel  = "Price Level"
	ColAddress     = "Address"
	ColMapsLink    = "Google Maps Link"
)

// HistoryHeader is the first row of the history sheet.
var HistoryHeader = []string{
	ColTimestamp,
	ColEventDate,
	ColCuisine,
	ColRestaurant,
	ColPlaceID,
	ColRating,
	ColReviewCount,
	ColPriceLevel,
	ColAddress,
	ColMapsLink,
}

// HistoryEntry is one past selection. Values are kept as the strings stored
// in the sheet, since the sheet is edited by hand as well.
type HistoryEntry struct {
	Timestamp   string
	EventDate   string
	Cuisine     string
	Restaurant  string
	PlaceID     string
	Rating      string
	ReviewCount string
	PriceLevel  string
	Address     string
	MapsLink    string
}

// NewHistoryEntry records the choice of place for cuisine on eventDate.
// now is stamped as the selection time.
func NewHistoryEntry(place Place, cuisine string, eventDate, now time.Time) HistoryEntry {
	return HistoryEntry{
		Timestamp:   now.Format(time.RFC3339),
		EventDate:   eventDate.Format(time.DateOnly),
		Cuisine:     cuisine,
		Restaurant:  place.Name(),
		PlaceID:     place.ID,
		Rating:      place.RatingText(""),
		ReviewCount: place.ReviewCountText(""),
		PriceLevel:  place.PriceLevel,
		Address:     place.FormattedAddress,
		MapsLink:    place.GoogleMapsURI,
	}
}

// Row returns the entry as a sheet row matching HistoryHeader.
func (e HistoryEntry) Row() []string {
	return []string{
		e.Timestamp,
		e.EventDate,
		e.Cuisine,
		e.Restaurant,
		e.PlaceID,
		e.Rating,
		e.ReviewCount,
		e.PriceLevel,
		e.Address,
		e.MapsLink,
	}
}

// HistoryEntryFromRow maps a sheet row onto an entry using the header row to
// locate columns. Missing columns and short rows yield empty fields.
func HistoryEntryFromRow(header, row []string) HistoryEntry {
	get := func(col string) string {
		for i, h := range header {
			if h == col && i < len(row) {
				return row[i]
			}
		}
		return ""
	}
	return HistoryEntry{
		Timestamp:   get(ColTimestamp),
		EventDate:   get(ColEventDate),
		Cuisine:     get(ColCuisine),
		Restaurant:  get(ColRestaurant),
		PlaceID:     get(ColPlaceID),
		Rating:      get(ColRating),
		ReviewCount: get(ColReviewCount),
		PriceLevel:  get(ColPriceLevel),
		Address:     get(ColAddress),
		MapsLink:    get(ColMapsLink),
	}
}
