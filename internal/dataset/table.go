// Package dataset binds tabular records to spatial geometry, producing the
// labeled samples consumed by the model, resampling, and raster packages.
package dataset

import "github.com/wasatch-geo/riskmodel/internal/errs"

// Table is a column-oriented numeric record set. Missing or non-numeric
// cells are stored as NaN. Column order is preserved from insertion.
type Table struct {
	names []string
	cols  map[string][]float64
	n     int
}

// NewTable returns an empty table. The first column added fixes the record
// count.
func NewTable() *Table {
	return &Table{cols: make(map[string][]float64)}
}

// AddColumn appends a named column. The column length must match the record
// count established by the first column.
func (t *Table) AddColumn(name string, values []float64) error {
	if name == "" {
		return errs.Schemaf("table: empty column name")
	}
	if _, ok := t.cols[name]; ok {
		return errs.Schemaf("table: duplicate column %q", name)
	}
	if len(t.names) > 0 && len(values) != t.n {
		return errs.Schemaf("table: column %q has %d values, want %d", name, len(values), t.n)
	}
	if len(t.names) == 0 {
		t.n = len(values)
	}
	t.names = append(t.names, name)
	t.cols[name] = values
	return nil
}

// Len returns the number of records.
func (t *Table) Len() int { return t.n }

// Names returns the column names in insertion order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Column returns the values of the named column. The returned slice is the
// table's backing storage and must not be mutated.
func (t *Table) Column(name string) ([]float64, bool) {
	v, ok := t.cols[name]
	return v, ok
}
