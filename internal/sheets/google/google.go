package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"timetrack/internal/core"
	ports "timetrack/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Options configures the Sheets mirror.
type Options struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.EntryMirror = (*Client)(nil)

var (
	ErrMissingSpreadsheet   = errors.New("missing GOOGLE_SPREADSHEET_ID")
	ErrMissingCredentials   = errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	errServiceUninitialized = errors.New("sheets service not initialized")
)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	opts.SpreadsheetID = strings.TrimSpace(opts.SpreadsheetID)
	if opts.SpreadsheetID == "" {
		return nil, ErrMissingSpreadsheet
	}
	if strings.TrimSpace(opts.SheetName) == "" {
		opts.SheetName = "Entries"
	}

	creds, err := credentials(opts)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope),
		goption.WithHTTPClient(newHTTPClientWithPooling()))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets mirror ready",
		"spreadsheet_id", opts.SpreadsheetID,
		"sheet", opts.SheetName)

	return &Client{svc: svc, spreadsheetID: opts.SpreadsheetID, sheetName: opts.SheetName}, nil
}

// credentials prefers inline JSON over a file path.
func credentials(opts Options) ([]byte, error) {
	if j := strings.TrimSpace(opts.ServiceAccountJSON); j != "" {
		return []byte(j), nil
	}
	if path := strings.TrimSpace(opts.ServiceAccountFile); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	return nil, ErrMissingCredentials
}

func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

// AppendEntry appends one row after the last filled row of the sheet and
// returns the updated A1 range.
func (c *Client) AppendEntry(ctx context.Context, e core.TimeEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errServiceUninitialized
	}

	vr := &gsheet.ValueRange{Values: [][]any{ports.Row(e)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.appendRange(), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return c.appendRange(), nil
}

func (c *Client) appendRange() string {
	return fmt.Sprintf("%s!A:G", c.sheetName)
}
