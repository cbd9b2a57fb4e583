// Package pivot folds per-component contributions into the two report
// pivots: installed lengths and discrete part counts, keyed by billable
// identifier, work category and unit, across network-segment columns.
package pivot

import (
	"golang.org/x/exp/slices"

	"github.com/dd0wney/cluso-takeoff/pkg/model"
)

// Fixed report columns. Every table carries the blank column for
// unroutable tags and the total column maintained alongside every add.
const (
	BlankColumn = "(blank)"
	TotalColumn = "total"
)

// Key identifies one pivot row.
type Key struct {
	// BillableID is the formatted stable identifier of the row's billable
	// unit.
	BillableID string
	// Label is the display label the row sorts by within its category,
	// normally the line tag or the synthetic fallback key.
	Label string
	// Category is the fixed work-category ordinal.
	Category Category
	// Unit is the unit label, e.g. "m" or "pcs".
	Unit string
}

// Table is one pivot: row key to column to running sum. Adds also maintain
// the total column, so a row's data columns always sum to its total.
type Table struct {
	cells   map[Key]map[string]float64
	columns map[string]bool
}

// NewTable creates an empty pivot table.
func NewTable() *Table {
	return &Table{
		cells:   make(map[Key]map[string]float64),
		columns: make(map[string]bool),
	}
}

// Add accumulates a value into the row's column and total. An empty column
// name lands in the blank column.
func (t *Table) Add(key Key, column string, value float64) {
	if column == "" {
		column = BlankColumn
	}
	t.columns[column] = true

	row, ok := t.cells[key]
	if !ok {
		row = make(map[string]float64)
		t.cells[key] = row
	}
	row[column] += value
	row[TotalColumn] += value
}

// Value reads one cell; absent cells are zero.
func (t *Table) Value(key Key, column string) float64 {
	return t.cells[key][column]
}

// Row returns a copy of the row's cells, nil when the row is absent.
func (t *Table) Row(key Key) map[string]float64 {
	row, ok := t.cells[key]
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(row))
	for col, v := range row {
		out[col] = v
	}
	return out
}

// Rows returns the row keys in report order: category ordinal first, then
// natural ordering of the label, then billable identifier.
func (t *Table) Rows() []Key {
	rows := make([]Key, 0, len(t.cells))
	for key := range t.cells {
		rows = append(rows, key)
	}
	slices.SortFunc(rows, func(a, b Key) int {
		if a.Category != b.Category {
			if a.Category < b.Category {
				return -1
			}
			return 1
		}
		if a.Label != b.Label {
			if model.NaturalLess(a.Label, b.Label) {
				return -1
			}
			return 1
		}
		if a.BillableID != b.BillableID {
			if model.NaturalLess(a.BillableID, b.BillableID) {
				return -1
			}
			return 1
		}
		if a.Unit < b.Unit {
			return -1
		}
		if a.Unit > b.Unit {
			return 1
		}
		return 0
	})
	return rows
}

// Columns returns the report column set: observed segment columns in
// natural order, then blank, then total.
func (t *Table) Columns() []string {
	var observed []string
	for col := range t.columns {
		if col != BlankColumn {
			observed = append(observed, col)
		}
	}
	slices.SortFunc(observed, func(a, b string) int {
		if a == b {
			return 0
		}
		if model.NaturalLess(a, b) {
			return -1
		}
		return 1
	})
	return append(append(observed, BlankColumn), TotalColumn)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.cells)
}
