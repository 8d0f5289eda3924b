package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used by tests and for running the
// terminal without remote credentials. Tables are plain cell grids with a
// header row, matching the remote layout exactly.
type MemoryStore struct {
	mu     sync.Mutex
	tables map[string][][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string][][]string)}
}

// SeedTable installs a table from a header plus data rows, replacing any
// existing content.
func (m *MemoryStore) SeedTable(table string, header []string, rows ...[]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	grid := [][]string{append([]string(nil), header...)}
	for _, row := range rows {
		grid = append(grid, append([]string(nil), row...))
	}
	m.tables[table] = grid
}

func (m *MemoryStore) Header(ctx context.Context, table string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	grid, ok := m.tables[table]
	if !ok || len(grid) == 0 {
		return nil, ErrTableNotFound
	}
	return append([]string(nil), grid[0]...), nil
}

func (m *MemoryStore) ReadRows(ctx context.Context, table string) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	grid, ok := m.tables[table]
	if !ok || len(grid) == 0 {
		return nil, ErrTableNotFound
	}
	header := grid[0]
	rows := make([]Row, 0, len(grid)-1)
	for _, cells := range grid[1:] {
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

func (m *MemoryStore) WriteCell(ctx context.Context, table string, row, col int, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	grid, ok := m.tables[table]
	if !ok {
		return ErrTableNotFound
	}
	for len(grid) < row {
		grid = append(grid, []string{})
	}
	cells := grid[row-1]
	for len(cells) < col {
		cells = append(cells, "")
	}
	cells[col-1] = value
	grid[row-1] = cells
	m.tables[table] = grid
	return nil
}

func (m *MemoryStore) AppendRow(ctx context.Context, table string, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	grid, ok := m.tables[table]
	if !ok {
		return ErrTableNotFound
	}
	m.tables[table] = append(grid, append([]string(nil), values...))
	return nil
}

// Cell reads one cell back out, for tests.
func (m *MemoryStore) Cell(table string, row, col int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	grid, ok := m.tables[table]
	if !ok || len(grid) < row || len(grid[row-1]) < col {
		return ""
	}
	return grid[row-1][col-1]
}

// RowCount returns the number of data rows, for tests.
func (m *MemoryStore) RowCount(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	grid, ok := m.tables[table]
	if !ok || len(grid) == 0 {
		return 0
	}
	return len(grid) - 1
}
