// Package dataset provides the tabular data layer for the pipeline: CSV
// ingest, named-column access, fail-fast schema validation and conversion to
// gonum matrices for the estimators.
package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/riskfold/riskfold/pkg/errors"
)

// Table is an immutable-by-convention column store. Numeric and string
// columns live side by side under a shared row count; derived features are
// appended as new numeric columns.
type Table struct {
	name    string
	nRows   int
	order   []string
	numeric map[string][]float64
	strs    map[string][]string
}

// NewTable creates an empty table with a fixed row count.
func NewTable(name string, nRows int) *Table {
	return &Table{
		name:    name,
		nRows:   nRows,
		numeric: make(map[string][]float64),
		strs:    make(map[string][]string),
	}
}

// Name returns the table identifier used in error messages.
func (t *Table) Name() string { return t.name }

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.nRows }

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// HasColumn reports whether a column of either kind exists.
func (t *Table) HasColumn(name string) bool {
	_, numOK := t.numeric[name]
	_, strOK := t.strs[name]
	return numOK || strOK
}

// RequireColumns validates the schema, returning a SchemaError for the first
// missing column. Callers run this before any computation so that a schema
// mismatch fails before it can corrupt derived features.
func (t *Table) RequireColumns(names ...string) error {
	for _, name := range names {
		if !t.HasColumn(name) {
			return errors.NewSchemaError(t.name, name)
		}
	}
	return nil
}

// Column returns a numeric column. The returned slice is the backing store;
// callers must not mutate it.
func (t *Table) Column(name string) ([]float64, error) {
	vals, ok := t.numeric[name]
	if !ok {
		return nil, errors.NewSchemaError(t.name, name)
	}
	return vals, nil
}

// StringColumn returns a categorical column.
func (t *Table) StringColumn(name string) ([]string, error) {
	vals, ok := t.strs[name]
	if !ok {
		return nil, errors.NewSchemaError(t.name, name)
	}
	return vals, nil
}

// AddColumn appends a numeric column, replacing any column of the same name.
func (t *Table) AddColumn(name string, vals []float64) error {
	if len(vals) != t.nRows {
		return errors.NewDimensionError("AddColumn", t.nRows, len(vals), 0)
	}
	if !t.HasColumn(name) {
		t.order = append(t.order, name)
	}
	delete(t.strs, name)
	t.numeric[name] = vals
	return nil
}

// AddStringColumn appends a categorical column, replacing any column of the
// same name.
func (t *Table) AddStringColumn(name string, vals []string) error {
	if len(vals) != t.nRows {
		return errors.NewDimensionError("AddStringColumn", t.nRows, len(vals), 0)
	}
	if !t.HasColumn(name) {
		t.order = append(t.order, name)
	}
	delete(t.numeric, name)
	t.strs[name] = vals
	return nil
}

// Matrix assembles the named numeric columns into a dense row-major matrix
// in the given column order.
func (t *Table) Matrix(cols ...string) (*mat.Dense, error) {
	if len(cols) == 0 {
		return nil, errors.NewValueError("Matrix", "no columns requested")
	}
	m := mat.NewDense(t.nRows, len(cols), nil)
	for j, name := range cols {
		vals, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		for i := 0; i < t.nRows; i++ {
			m.Set(i, j, vals[i])
		}
	}
	return m, nil
}

// Vector returns a numeric column as a gonum vector.
func (t *Table) Vector(name string) (*mat.VecDense, error) {
	vals, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(vals))
	copy(out, vals)
	return mat.NewVecDense(len(out), out), nil
}

// SelectRows builds a new table containing only the given row indices, in
// order. Used to materialize per-fold views.
func (t *Table) SelectRows(indices []int) (*Table, error) {
	sub := NewTable(t.name, len(indices))
	for _, name := range t.order {
		if vals, ok := t.numeric[name]; ok {
			picked := make([]float64, len(indices))
			for i, idx := range indices {
				if idx < 0 || idx >= t.nRows {
					return nil, errors.Newf("SelectRows: index %d out of range [0,%d)", idx, t.nRows)
				}
				picked[i] = vals[idx]
			}
			if err := sub.AddColumn(name, picked); err != nil {
				return nil, err
			}
			continue
		}
		vals := t.strs[name]
		picked := make([]string, len(indices))
		for i, idx := range indices {
			if idx < 0 || idx >= t.nRows {
				return nil, errors.Newf("SelectRows: index %d out of range [0,%d)", idx, t.nRows)
			}
			picked[i] = vals[idx]
		}
		if err := sub.AddStringColumn(name, picked); err != nil {
			return nil, err
		}
	}
	return sub, nil
}
