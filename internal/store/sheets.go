package store

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsStore implements Store on top of a Google Sheets spreadsheet, one
// worksheet per table. This is the production remote store; it is slow and
// subject to per-minute API quotas, which is why all reads go through the
// local cache and writes are batched by the synchronizer.
type SheetsStore struct {
	svc     *sheets.Service
	sheetID string
}

func NewSheetsStore(ctx context.Context, credentialsFile, sheetID string) (*SheetsStore, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to sheets: %w", err)
	}
	return &SheetsStore{svc: svc, sheetID: sheetID}, nil
}

func (s *SheetsStore) Header(ctx context.Context, table string) ([]string, error) {
	resp, err := s.svc.Spreadsheets.Values.
		Get(s.sheetID, fmt.Sprintf("%s!1:1", table)).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading %s header: %w", table, err)
	}
	if len(resp.Values) == 0 {
		return nil, ErrTableNotFound
	}
	return cellsToStrings(resp.Values[0]), nil
}

func (s *SheetsStore) ReadRows(ctx context.Context, table string) ([]Row, error) {
	resp, err := s.svc.Spreadsheets.Values.
		Get(s.sheetID, table).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", table, err)
	}
	if len(resp.Values) == 0 {
		return nil, ErrTableNotFound
	}
	header := cellsToStrings(resp.Values[0])
	rows := make([]Row, 0, len(resp.Values)-1)
	for _, raw := range resp.Values[1:] {
		cells := cellsToStrings(raw)
		row := make(Row, len(header))
		for i, name := range header {
			if i < len(cells) {
				row[name] = cells[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *SheetsStore) WriteCell(ctx context.Context, table string, row, col int, value string) error {
	cell := fmt.Sprintf("%s!%s%d", table, columnLetter(col), row)
	_, err := s.svc.Spreadsheets.Values.
		Update(s.sheetID, cell, &sheets.ValueRange{Values: [][]interface{}{{value}}}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing %s: %w", cell, err)
	}
	return nil
}

func (s *SheetsStore) AppendRow(ctx context.Context, table string, values []string) error {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	_, err := s.svc.Spreadsheets.Values.
		Append(s.sheetID, fmt.Sprintf("%s!A1", table), &sheets.ValueRange{Values: [][]interface{}{cells}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("appending to %s: %w", table, err)
	}
	return nil
}

func cellsToStrings(raw []interface{}) []string {
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i] = fmt.Sprint(v)
	}
	return out
}

// columnLetter converts a 1-based column number to its A1 letter form.
func columnLetter(col int) string {
	letters := ""
	for col > 0 {
		col--
		letters = string(rune('A'+col%26)) + letters
		col /= 26
	}
	return letters
}
