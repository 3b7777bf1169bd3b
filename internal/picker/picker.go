// Package picker holds the selection rules for a dinner roll: which cuisine,
// which restaurants are eligible, which one wins and on what date.
package picker

import (
	"math/rand/v2"

	"dinnerdice/internal/models"
)

const (
	// DefaultMinRating is the lowest Places rating a restaurant may have.
	DefaultMinRating = 4.2
	// DefaultMinReviews is the fewest user ratings a restaurant may have.
	DefaultMinReviews = 200
)

// Cuisines is the fixed list a roll chooses from.
var Cuisines = []string{
	"Mexican",
	"Seafood",
	"Japanese",
	"Korean",
	"Chinese",
	"Vietnamese",
	"Thai",
	"Filipino",
	"Italian",
	"Greek",
	"Turkish",
	"Iranian",
	"Lebanese",
	"Indian",
	"Ethiopian",
	"Peruvian",
	"Hawaiian",
	"Barbeque",
	"Spanish",
	"Brazilian",
}

// Rand is the source of randomness. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// Criteria are the thresholds a place must meet.
type Criteria struct {
	MinRating  float64
	MinReviews int
}

// DefaultCriteria returns the standard thresholds.
func DefaultCriteria() Criteria {
	return Criteria{MinRating: DefaultMinRating, MinReviews: DefaultMinReviews}
}

// RandomCuisine picks one entry of Cuisines.
func RandomCuisine(r Rand) string {
	return Cuisines[r.IntN(len(Cuisines))]
}

// Eligible returns the places that have an ID, are not in visited and meet c.
// A missing rating or review count is treated as zero.
func Eligible(places []models.Place, visited map[string]struct{}, c Criteria) []models.Place {
	var out []models.Place
	for _, p := range places {
		if p.ID == "" {
			continue
		}
		if _, seen := visited[p.ID]; seen {
			continue
		}
		if p.RatingValue() < c.MinRating || p.ReviewCount() < c.MinReviews {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Choose picks one eligible place uniformly at random.
// ok is false when nothing survives the filter.
func Choose(r Rand, places []models.Place, visited map[string]struct{}, c Criteria) (place models.Place, ok bool) {
	eligible := Eligible(places, visited, c)
	if len(eligible) == 0 {
		return models.Place{}, false
	}
	return eligible[r.IntN(len(eligible))], true
}

// NewRand returns a randomly seeded source.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
