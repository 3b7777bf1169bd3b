package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"dinnerdice/internal/models"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// HistoryRange covers the ten history columns of the History tab.
const HistoryRange = "History!A:J"

// HistoryLog is the append-only selection history kept in a Google Sheet.
type HistoryLog struct {
	service       *sheets.Service
	logger        *slog.Logger
	spreadsheetID string
}

// NewHistoryLog creates a history log over spreadsheetID.
func NewHistoryLog(ctx context.Context, logger *slog.Logger, httpClient *http.Client, spreadsheetID string) (*HistoryLog, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is required")
	}
	service, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &HistoryLog{service: service, logger: logger, spreadsheetID: spreadsheetID}, nil
}

// Rows returns every row of the history range, header first.
func (h *HistoryLog) Rows(ctx context.Context) ([][]string, error) {
	resp, err := h.service.Spreadsheets.Values.Get(h.spreadsheetID, HistoryRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	h.logger.Debug("Read history rows", "count", len(rows))
	return rows, nil
}

// PlaceIDs returns the set of place IDs already in the history.
// An empty sheet or one without the place ID column yields an empty set.
func (h *HistoryLog) PlaceIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := h.Rows(ctx)
	if err != nil {
		return nil, err
	}
	return placeIDs(rows), nil
}

func placeIDs(rows [][]string) map[string]struct{} {
	ids := make(map[string]struct{})
	if len(rows) == 0 {
		return ids
	}

	col := -1
	for i, name := range rows[0] {
		if name == models.ColPlaceID {
			col = i
			break
		}
	}
	if col < 0 {
		return ids
	}

	for _, row := range rows[1:] {
		if col < len(row) && row[col] != "" {
			ids[row[col]] = struct{}{}
		}
	}
	return ids
}

// Entries returns every recorded selection in sheet order.
func (h *HistoryLog) Entries(ctx context.Context) ([]models.HistoryEntry, error) {
	rows, err := h.Rows(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}

	entries := make([]models.HistoryEntry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		entries = append(entries, models.HistoryEntryFromRow(rows[0], row))
	}
	return entries, nil
}

// Append adds one entry to the end of the history.
func (h *HistoryLog) Append(ctx context.Context, entry models.HistoryEntry) error {
	if err := h.appendRow(ctx, entry.Row()); err != nil {
		return fmt.Errorf("failed to append history row: %w", err)
	}
	h.logger.Info("Appended history row", "restaurant", entry.Restaurant, "placeID", entry.PlaceID)
	return nil
}

// EnsureHeader writes the header row when the sheet is empty.
// It reports whether a header was written.
func (h *HistoryLog) EnsureHeader(ctx context.Context) (bool, error) {
	rows, err := h.Rows(ctx)
	if err != nil {
		return false, err
	}
	if len(rows) > 0 {
		return false, nil
	}
	if err := h.appendRow(ctx, models.HistoryHeader); err != nil {
		return false, fmt.Errorf("failed to write history header: %w", err)
	}
	h.logger.Info("Wrote history header", "spreadsheetID", h.spreadsheetID)
	return true, nil
}

func (h *HistoryLog) appendRow(ctx context.Context, row []string) error {
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	_, err := h.service.Spreadsheets.Values.Append(h.spreadsheetID, HistoryRange, &sheets.ValueRange{
		Values: [][]interface{}{values},
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return err
}
