package models

import "strconv"

// UnknownPlaceName is shown when the search result carries no display name.
const UnknownPlaceName = "Unknown Restaurant"

// Place is a restaurant returned by the places search.
// Rating and UserRatingCount are nil when the API omitted them.
type Place struct {
	ID               string
	DisplayName      string
	Rating           *float64
	UserRatingCount  *int
	PriceLevel       string
	FormattedAddress string
	GoogleMapsURI    string
}

// Name returns the display name or UnknownPlaceName.
func (p Place) Name() string {
	if p.DisplayName == "" {
		return UnknownPlaceName
	}
	return p.DisplayName
}

// RatingValue returns the rating, or 0 when it is missing.
func (p Place) RatingValue() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// ReviewCount returns the number of user ratings, or 0 when it is missing.
func (p Place) ReviewCount() int {
	if p.UserRatingCount == nil {
		return 0
	}
	return *p.UserRatingCount
}

// RatingText formats the rating, returning fallback when it is missing.
func (p Place) RatingText(fallback string) string {
	if p.Rating == nil {
		return fallback
	}
	return strconv.FormatFloat(*p.Rating, 'f', -1, 64)
}

// ReviewCountText formats the review count, returning fallback when it is missing.
func (p Place) ReviewCountText(fallback string) string {
	if p.UserRatingCount == nil {
		return fallback
	}
	return strconv.Itoa(*p.UserRatingCount)
}
