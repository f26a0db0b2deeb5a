// Package sheets is the Google Sheets backend for the record store.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// RAW keeps free text such as "=1+1" or "007" from being parsed by Sheets.
const valueInputOption = "RAW"

type Config struct {
	SpreadsheetID   string
	Worksheet       string
	CredentialsFile string
	CredentialsJSON string
}

// Worksheet reads and writes one tab of a spreadsheet.
type Worksheet struct {
	values        *gsheets.SpreadsheetsValuesService
	spreadsheetID string
	name          string
}

// Open authenticates with a service account. Extra options are appended,
// which lets tests point the client at a local endpoint.
func Open(ctx context.Context, cfg Config, extra ...option.ClientOption) (*Worksheet, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, fmt.Errorf("open spreadsheet: missing spreadsheet id")
	}

	opts := []option.ClientOption{option.WithScopes(gsheets.SpreadsheetsScope)}
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, extra...)

	srv, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	return &Worksheet{
		values:        srv.Spreadsheets.Values,
		spreadsheetID: cfg.SpreadsheetID,
		name:          cfg.Worksheet,
	}, nil
}

// a1 quotes the worksheet name for use in a range.
func (w *Worksheet) a1(cells string) string {
	quoted := "'" + strings.ReplaceAll(w.name, "'", "''") + "'"
	if cells == "" {
		return quoted
	}
	return quoted + "!" + cells
}

func (w *Worksheet) Header(ctx context.Context) ([]string, error) {
	resp, err := w.values.Get(w.spreadsheetID, w.a1("1:1")).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get header of %s: %w", w.name, err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return toStrings(resp.Values[0]), nil
}

func (w *Worksheet) Rows(ctx context.Context) ([][]string, error) {
	resp, err := w.values.Get(w.spreadsheetID, w.a1("")).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get rows of %s: %w", w.name, err)
	}
	out := make([][]string, 0, len(resp.Values))
	for i, row := range resp.Values {
		if i == 0 {
			continue
		}
		out = append(out, toStrings(row))
	}
	return out, nil
}

func (w *Worksheet) WriteHeader(ctx context.Context, header []string) error {
	body := &gsheets.ValueRange{Values: [][]interface{}{toValues(header)}}
	_, err := w.values.Update(w.spreadsheetID, w.a1("A1"), body).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write header of %s: %w", w.name, err)
	}
	return nil
}

func (w *Worksheet) Append(ctx context.Context, cells []string) error {
	body := &gsheets.ValueRange{Values: [][]interface{}{toValues(cells)}}
	_, err := w.values.Append(w.spreadsheetID, w.a1("A1"), body).
		ValueInputOption(valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row to %s: %w", w.name, err)
	}
	return nil
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

func toValues(cells []string) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}
