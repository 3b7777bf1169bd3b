package google

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"dinnerdice/internal/models"
)

func TestPlaceIDs(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want []string
	}{
		{name: "Empty sheet", rows: nil, want: nil},
		{name: "Header only", rows: [][]string{models.HistoryHeader}, want: nil},
		{name: "Missing column", rows: [][]string{{"Timestamp", "Cuisine"}, {"t", "Thai"}}, want: nil},
		{
			name: "Collects IDs and skips blanks and short rows",
			rows: [][]string{
				{"Cuisine", "Google Place ID"},
				{"Thai", "p1"},
				{"Greek", ""},
				{"Korean"},
				{"Thai", "p2"},
				{"Thai", "p1"},
			},
			want: []string{"p1", "p2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := placeIDs(tt.rows)
			if len(got) != len(tt.want) {
				t.Fatalf("placeIDs() = %v, want %v", got, tt.want)
			}
			for _, id := range tt.want {
				if _, ok := got[id]; !ok {
					t.Errorf("missing %q in %v", id, got)
				}
			}
		})
	}
}

func TestHistoryLog(t *testing.T) {
	ctx := context.Background()

	t.Run("Requires spreadsheet ID", func(t *testing.T) {
		if _, err := NewHistoryLog(ctx, testLogger(), http.DefaultClient, ""); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("Read IDs and entries", func(t *testing.T) {
		client := fakeGoogle(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet && r.URL.Path == "/v4/spreadsheets/sheet-1/values/History!A:J" {
				w.Write([]byte(`{
					"range": "History!A1:J3",
					"majorDimension": "ROWS",
					"values": [
						["Timestamp","Event Date","Cuisine","Restaurant","Google Place ID","Rating","Review Count","Price Level","Address","Google Maps Link"],
						["2024-05-01T10:00:00-07:00","2024-05-06","Thai","Lotus","p1","4.6","900","PRICE_LEVEL_MODERATE","1 Main St","https://maps"],
						["2024-05-08T10:00:00-07:00","2024-05-13","Greek","Olive","p2"]
					]
				}`))
				return
			}
			w.WriteHeader(http.StatusNotFound)
		})

		history, err := NewHistoryLog(ctx, testLogger(), client, "sheet-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		ids, err := history.PlaceIDs(ctx)
		if err != nil {
			t.Fatalf("PlaceIDs: %v", err)
		}
		if len(ids) != 2 {
			t.Fatalf("expected 2 ids, got %v", ids)
		}

		entries, err := history.Entries(ctx)
		if err != nil {
			t.Fatalf("Entries: %v", err)
		}
		if len(entries) != 2 || entries[0].Restaurant != "Lotus" || entries[1].PlaceID != "p2" || entries[1].Address != "" {
			t.Errorf("unexpected entries: %+v", entries)
		}
	})

	t.Run("Append row", func(t *testing.T) {
		var body struct {
			Values [][]string `json:"values"`
		}
		var query string
		client := fakeGoogle(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append") {
				query = r.URL.RawQuery
				_ = json.NewDecoder(r.Body).Decode(&body)
				w.Write([]byte(`{"spreadsheetId": "sheet-1", "updates": {"updatedRows": 1}}`))
				return
			}
			w.WriteHeader(http.StatusNotFound)
		})

		history, _ := NewHistoryLog(ctx, testLogger(), client, "sheet-1")
		entry := models.HistoryEntry{Cuisine: "Thai", Restaurant: "Lotus", PlaceID: "p1"}
		if err := history.Append(ctx, entry); err != nil {
			t.Fatalf("Append: %v", err)
		}

		if len(body.Values) != 1 || len(body.Values[0]) != 10 {
			t.Fatalf("expected one 10 field row, got %v", body.Values)
		}
		if body.Values[0][4] != "p1" {
			t.Errorf("place ID in wrong column: %v", body.Values[0])
		}
		if !strings.Contains(query, "valueInputOption=USER_ENTERED") || !strings.Contains(query, "insertDataOption=INSERT_ROWS") {
			t.Errorf("unexpected query %q", query)
		}
	})

	t.Run("Ensure header only on empty sheet", func(t *testing.T) {
		appended := 0
		empty := true
		client := fakeGoogle(t, func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodGet:
				if empty {
					w.Write([]byte(`{"range": "History!A1:J1"}`))
					return
				}
				w.Write([]byte(`{"values": [["Timestamp"]]}`))
			case r.Method == http.MethodPost:
				appended++
				w.Write([]byte(`{}`))
			}
		})

		history, _ := NewHistoryLog(ctx, testLogger(), client, "sheet-1")
		wrote, err := history.EnsureHeader(ctx)
		if err != nil || !wrote || appended != 1 {
			t.Fatalf("expected header write, got wrote=%v appended=%d err=%v", wrote, appended, err)
		}

		empty = false
		wrote, err = history.EnsureHeader(ctx)
		if err != nil || wrote || appended != 1 {
			t.Fatalf("expected no write, got wrote=%v appended=%d err=%v", wrote, appended, err)
		}
	})

	t.Run("API error", func(t *testing.T) {
		client := fakeGoogle(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error": {"code": 403, "message": "The caller does not have permission"}}`))
		})

		history, _ := NewHistoryLog(ctx, testLogger(), client, "sheet-1")
		if _, err := history.PlaceIDs(ctx); err == nil {
			t.Fatalf("expected error")
		}
	})
}
