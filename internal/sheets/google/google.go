package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"informe/internal/core"
	applog "informe/internal/log"
	ports "informe/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// lastColumn is the column of the last Header cell.
const lastColumn = "N"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *applog.Logger

	// serializes row lookup and write so two upserts never pick the same
	// free row
	mu sync.Mutex
}

var _ ports.RecordWriter = (*Client)(nil)

// Options configure the Sheets client. Credentials are a service account,
// inline or from a file; GOOGLE_APPLICATION_CREDENTIALS is the fallback.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
	Logger          *applog.Logger
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	creds, err := loadCredentials(opts)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, opts)
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheet := strings.TrimSpace(opts.SheetName)
	if sheet == "" {
		sheet = "Informes"
	}
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(opts.SpreadsheetID),
		sheetName:     sheet,
		logger:        logger.WithComponent(applog.ComponentSheets),
	}, nil
}

func loadCredentials(opts Options) ([]byte, error) {
	inline := strings.TrimSpace(opts.CredentialsJSON)
	file := strings.TrimSpace(opts.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// UpsertRecord writes the row for the record's date. Column A holds the
// YYYY-MM-DD key; the header row is written when the sheet is empty.
func (c *Client) UpsertRecord(ctx context.Context, row ports.Row) (string, error) {
	if err := row.Date.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	keys, err := c.readKeys(ctx)
	if err != nil {
		return "", err
	}

	if len(keys) == 0 {
		if _, err := c.writeRow(ctx, 1, ports.Header); err != nil {
			return "", fmt.Errorf("write header: %w", err)
		}
		keys = []string{fmt.Sprint(ports.Header[0])}
	}

	target := findRow(keys, row.Date)
	if target == 0 {
		target = len(keys) + 1
	}

	ref, err := c.writeRow(ctx, target, row.Values())
	if err != nil {
		return "", err
	}
	c.logger.InfoContext(ctx, "Record mirrored to sheet",
		applog.FieldDate, row.Date.Key(),
		applog.FieldSheetsRef, ref)
	return ref, nil
}

func (c *Client) readKeys(ctx context.Context) ([]string, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	keys := make([]string, len(resp.Values))
	for i, r := range resp.Values {
		if len(r) > 0 {
			keys[i] = strings.TrimSpace(fmt.Sprint(r[0]))
		}
	}
	return keys, nil
}

func (c *Client) writeRow(ctx context.Context, n int, values []any) (string, error) {
	rng := fmt.Sprintf("%s!A%d:%s%d", c.sheetName, n, lastColumn, n)
	vr := &gsheet.ValueRange{Values: [][]any{values}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", rng, err)
	}
	return rng, nil
}

// findRow returns the 1-based row whose key matches date, or 0. Rows typed
// by hand as DD/MM/YYYY also match.
func findRow(keys []string, date core.Date) int {
	for i, k := range keys {
		if k == date.Key() || k == date.BR() {
			return i + 1
		}
	}
	return 0
}
