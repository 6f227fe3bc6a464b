package dataset

import (
	"fmt"
)

// Cell is a single value in a column. A nil cell is missing.
type Cell = any

// Column is a named, row-aligned sequence of cells
type Column struct {
	Name   string `json:"name"`
	Values []Cell `json:"values"`
}

// Dataset is an ordered collection of uniquely named columns sharing one row count.
type Dataset struct {
	columns []Column
	index   map[string]int
	rows    int
}

// New creates an empty dataset with the given row count and no columns.
func New(rows int) *Dataset {
	if rows < 0 {
		rows = 0
	}
	return &Dataset{
		index: make(map[string]int),
		rows:  rows,
	}
}

// FromRows builds a dataset from a header and row-major records. Short
// records are padded with missing cells; extra trailing cells are ignored.
func FromRows(headers []string, records [][]Cell) (*Dataset, error) {
	ds := New(len(records))
	for colIdx, name := range headers {
		values := make([]Cell, len(records))
		for rowIdx, record := range records {
			if colIdx < len(record) {
				values[rowIdx] = record[colIdx]
			}
		}
		if err := ds.AddColumn(name, values); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// RowCount returns the number of rows
func (d *Dataset) RowCount() int {
	return d.rows
}

// ColumnCount returns the number of columns
func (d *Dataset) ColumnCount() int {
	return len(d.columns)
}

// Names returns the column names in order
func (d *Dataset) Names() []string {
	names := make([]string, len(d.columns))
	for i, col := range d.columns {
		names[i] = col.Name
	}
	return names
}

// Has reports whether a column with the given name exists
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns the named column's cells. The returned slice is shared
// with the dataset and must not be modified.
func (d *Dataset) Column(name string) ([]Cell, bool) {
	idx, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.columns[idx].Values, true
}

// Columns returns the columns in order. The slice is a copy; cell slices are shared.
func (d *Dataset) Columns() []Column {
	out := make([]Column, len(d.columns))
	copy(out, d.columns)
	return out
}

// Row returns the cells of row i in column order.
func (d *Dataset) Row(i int) []Cell {
	row := make([]Cell, len(d.columns))
	for c, col := range d.columns {
		row[c] = col.Values[i]
	}
	return row
}

// AddColumn appends a column. The name must be new and the values must
// match the dataset's row count.
func (d *Dataset) AddColumn(name string, values []Cell) error {
	if _, exists := d.index[name]; exists {
		return &DuplicateColumnError{Name: name}
	}
	if len(values) != d.rows {
		return fmt.Errorf("column %q has %d values, dataset has %d rows", name, len(values), d.rows)
	}
	d.index[name] = len(d.columns)
	d.columns = append(d.columns, Column{Name: name, Values: values})
	return nil
}

// DropColumns removes the named columns, preserving the order of the rest.
// Names that are not present are ignored.
func (d *Dataset) DropColumns(names ...string) {
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		drop[name] = true
	}

	kept := d.columns[:0:0]
	for _, col := range d.columns {
		if !drop[col.Name] {
			kept = append(kept, col)
		}
	}

	d.columns = kept
	d.index = make(map[string]int, len(kept))
	for i, col := range kept {
		d.index[col.Name] = i
	}
}

// Clone returns a copy whose column list and cell slices are independent of d.
func (d *Dataset) Clone() *Dataset {
	clone := &Dataset{
		columns: make([]Column, len(d.columns)),
		index:   make(map[string]int, len(d.index)),
		rows:    d.rows,
	}
	for i, col := range d.columns {
		values := make([]Cell, len(col.Values))
		copy(values, col.Values)
		clone.columns[i] = Column{Name: col.Name, Values: values}
		clone.index[col.Name] = i
	}
	return clone
}

// DuplicateColumnError is returned when a column name is added twice
type DuplicateColumnError struct {
	Name string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("column %q already exists", e.Name)
}
