// Package google mirrors each owner's grouped records into a Google
// spreadsheet. Every owner gets their own tab, so re-exporting one owner
// never disturbs another's mirror. A tab is a pure projection of that
// owner's dashboard: month sections with the same rows and totals the CSV
// export produces.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"drivelogger/internal/core"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service-account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS. Optional: GOOGLE_SHEET_NAME
// (default "Records").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Records"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service from service-account
// credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ExportOwner replaces the owner's tab with their month sections: a label
// row per bucket followed by the bucket's CSV projection, with a blank
// spacer row between months. Only that owner's tab is cleared; other
// owners' tabs are untouched.
func (c *Client) ExportOwner(ctx context.Context, ownerID string, buckets []core.Bucket) error {
	title := ownerTabTitle(c.sheetName, ownerID)
	if err := c.ensureTab(ctx, title); err != nil {
		return fmt.Errorf("ensure tab %q: %w", title, err)
	}

	values := OwnerValues(ownerID, buckets)

	clearRange := quoteTabTitle(title)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear tab %q: %w", title, err)
	}

	vr := &gsheet.ValueRange{Values: values}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, quoteTabTitle(title)+"!A1", vr).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update tab %q: %w", title, err)
	}

	slog.InfoContext(ctx, "Exported records to Google Sheets",
		"owner", ownerID,
		"months", len(buckets),
		"rows", len(values),
		"sheet", title)
	return nil
}

// ensureTab creates the owner's tab if the spreadsheet does not have it yet.
func (c *Client) ensureTab(ctx context.Context, title string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sheet := range ss.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			return nil
		}
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: title},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	return nil
}

// ownerTabTitle derives the owner's tab name from the configured base name,
// e.g. "Records u1".
func ownerTabTitle(base, ownerID string) string {
	return base + " " + ownerID
}

// quoteTabTitle quotes a tab title for use in an A1 range. Titles with
// spaces or punctuation must be single-quoted, with embedded quotes doubled.
func quoteTabTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// OwnerValues builds the cell matrix ExportOwner writes. Split out so the
// projection can be tested without a Sheets service.
func OwnerValues(ownerID string, buckets []core.Bucket) [][]interface{} {
	values := [][]interface{}{{"Records for " + ownerID}, {}}
	for _, b := range buckets {
		values = append(values, []interface{}{b.Label})
		for _, row := range core.BucketRows(b) {
			cells := make([]interface{}, len(row))
			for i, cell := range row {
				cells[i] = cell
			}
			values = append(values, cells)
		}
		values = append(values, []interface{}{})
	}
	return values
}
