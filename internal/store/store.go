package store

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// Remote table names. The remote store is header-addressed: row 1 of every
// table is the header, data rows start at row 2.
const (
	TableCoffee       = "CoffeeStock"
	TableAdditives    = "Additives"
	TableReferences   = "PaymentRefs"
	TableSales        = "Sales"
	TableOnlineOrders = "OnlineOrders"
)

// Column names per table.
const (
	ColCoffeeName  = "Coffee"
	ColCoffeePrice = "Price"
	ColStock       = "Stock"

	ColAdditiveName = "Additive"

	ColRefID     = "Reference ID"
	ColRefAmount = "Amount"
	ColRefMethod = "Method"
	ColRefTime   = "Timestamp"
	ColStatus    = "Status"

	ColOrderCode     = "Code"
	ColOrderQuantity = "Quantity"
	ColOrderTemp     = "Temperature"
)

// DataRowOffset converts a zero-based data index into a remote row number.
const DataRowOffset = 2

var ErrTableNotFound = errors.New("remote table not found")

// Row is one data row keyed by header name.
type Row map[string]string

// Int reads a cell as an integer, 0 when missing or malformed.
func (r Row) Int(col string) int {
	n, err := strconv.Atoi(strings.TrimSpace(r[col]))
	if err != nil {
		return 0
	}
	return n
}

// Store is the remote tabular store boundary. Every call is an independent
// network operation; there are no transactions. Implementations are slow
// and rate-limited, so callers batch reads into the local cache and push
// writes from the synchronizer.
type Store interface {
	// Header returns the row-1 column names of a table.
	Header(ctx context.Context, table string) ([]string, error)
	// ReadRows returns all data rows of a table, in row order. The row
	// number of ReadRows(...)[i] is i + DataRowOffset.
	ReadRows(ctx context.Context, table string) ([]Row, error)
	// WriteCell overwrites a single cell. Row and column are 1-based.
	WriteCell(ctx context.Context, table string, row, col int, value string) error
	// AppendRow appends values as a new data row.
	AppendRow(ctx context.Context, table string, values []string) error
}

// ColumnIndex resolves a header name to its 1-based column number, 0 when
// the column does not exist.
func ColumnIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i + 1
		}
	}
	return 0
}
