package picker_test

import (
	"math/rand/v2"
	"testing"

	"dinnerdice/internal/models"
	"dinnerdice/internal/picker"
)

func ptr[T any](v T) *T { return &v }

func place(id string, rating float64, reviews int) models.Place {
	return models.Place{ID: id, DisplayName: "Place " + id, Rating: ptr(rating), UserRatingCount: ptr(reviews)}
}

func ids(places []models.Place) []string {
	out := make([]string, 0, len(places))
	for _, p := range places {
		out = append(out, p.ID)
	}
	return out
}

func TestEligible(t *testing.T) {
	c := picker.DefaultCriteria()

	tests := []struct {
		name    string
		places  []models.Place
		visited map[string]struct{}
		want    []string
	}{
		{
			name:   "Keeps places meeting both thresholds",
			places: []models.Place{place("a", 4.2, 200), place("b", 4.9, 5000)},
			want:   []string{"a", "b"},
		},
		{
			name:   "Drops rating below minimum",
			places: []models.Place{place("a", 4.19, 900), place("b", 4.5, 900)},
			want:   []string{"b"},
		},
		{
			name:   "Drops review count below minimum",
			places: []models.Place{place("a", 4.8, 199), place("b", 4.8, 200)},
			want:   []string{"b"},
		},
		{
			name:    "Drops visited places",
			places:  []models.Place{place("a", 4.8, 900), place("b", 4.8, 900)},
			visited: map[string]struct{}{"a": {}},
			want:    []string{"b"},
		},
		{
			name:   "Drops places without an ID",
			places: []models.Place{place("", 5, 1000)},
			want:   []string{},
		},
		{
			name:   "Missing rating and count count as zero",
			places: []models.Place{{ID: "a"}, {ID: "b", Rating: ptr(4.6)}},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(picker.Eligible(tt.places, tt.visited, c))
			if len(got) != len(tt.want) {
				t.Fatalf("Eligible() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Eligible()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestEligibleNeverReturnsVisited(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for round := 0; round < 200; round++ {
		var places []models.Place
		visited := map[string]struct{}{}
		for i := 0; i < 20; i++ {
			id := string(rune('a' + r.IntN(26)))
			places = append(places, place(id, 3.5+r.Float64()*1.5, r.IntN(1000)))
			if r.IntN(3) == 0 {
				visited[id] = struct{}{}
			}
		}
		for _, p := range picker.Eligible(places, visited, picker.DefaultCriteria()) {
			if _, seen := visited[p.ID]; seen {
				t.Fatalf("round %d: visited place %q returned", round, p.ID)
			}
			if p.RatingValue() < picker.DefaultMinRating || p.ReviewCount() < picker.DefaultMinReviews {
				t.Fatalf("round %d: place %q below thresholds", round, p.ID)
			}
		}
	}
}

func TestChoose(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	c := picker.DefaultCriteria()

	t.Run("No survivors returns not ok", func(t *testing.T) {
		_, ok := picker.Choose(r, []models.Place{place("a", 3.0, 10)}, nil, c)
		if ok {
			t.Fatalf("expected no choice")
		}
		_, ok = picker.Choose(r, nil, nil, c)
		if ok {
			t.Fatalf("expected no choice for empty input")
		}
	})

	t.Run("Only survivors are chosen", func(t *testing.T) {
		places := []models.Place{place("low", 3.0, 1000), place("seen", 4.8, 1000), place("ok1", 4.5, 300), place("ok2", 4.4, 250)}
		visited := map[string]struct{}{"seen": {}}
		counts := map[string]int{}
		for i := 0; i < 500; i++ {
			p, ok := picker.Choose(r, places, visited, c)
			if !ok {
				t.Fatalf("expected a choice")
			}
			counts[p.ID]++
		}
		if counts["low"] != 0 || counts["seen"] != 0 {
			t.Fatalf("ineligible place chosen: %v", counts)
		}
		if counts["ok1"] == 0 || counts["ok2"] == 0 {
			t.Fatalf("expected both eligible places to be chosen at least once: %v", counts)
		}
	})
}

func TestRandomCuisine(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	known := map[string]bool{}
	for _, c := range picker.Cuisines {
		known[c] = true
	}
	for i := 0; i < 100; i++ {
		if c := picker.RandomCuisine(r); !known[c] {
			t.Fatalf("unexpected cuisine %q", c)
		}
	}
	if len(picker.Cuisines) != 20 {
		t.Errorf("expected 20 cuisines, got %d", len(picker.Cuisines))
	}
}
