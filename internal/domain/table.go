package domain

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

var (
	ErrInvalidSchema = errors.New("invalid table schema")
	ErrInvalidRow    = errors.New("invalid table row")
)

// Row is one entity. Values[0] is the base value, Values[j] belongs to column j+1.
type Row struct {
	Name   string
	Values []float64
}

// Table is an ordered set of rows sharing a fixed schema. The first column
// holds the row name, the second the base value, any further column is derived.
type Table struct {
	columns []string
	rows    []Row
	names   map[string]struct{}
}

func NewTable(columns ...string) (*Table, error) {
	if len(columns) < 2 {
		return nil, fmt.Errorf("%w: need a name column and a base column, got %d columns", ErrInvalidSchema, len(columns))
	}
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if strings.TrimSpace(c) == "" {
			return nil, fmt.Errorf("%w: empty column name", ErrInvalidSchema)
		}
		if _, ok := seen[c]; ok {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrInvalidSchema, c)
		}
		seen[c] = struct{}{}
	}
	return &Table{
		columns: slices.Clone(columns),
		names:   make(map[string]struct{}),
	}, nil
}

func (t *Table) Columns() []string { return slices.Clone(t.columns) }

func (t *Table) Len() int { return len(t.rows) }

func (t *Table) NameColumn() string { return t.columns[0] }

func (t *Table) BaseColumn() string { return t.columns[1] }

// Row returns a copy of row i.
func (t *Table) Row(i int) Row {
	r := t.rows[i]
	return Row{Name: r.Name, Values: slices.Clone(r.Values)}
}

func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i := range t.rows {
		out[i] = t.Row(i)
	}
	return out
}

func (t *Table) BaseValue(i int) float64 { return t.rows[i].Values[0] }

// ColumnIndex returns -1 when the column is not part of the schema.
func (t *Table) ColumnIndex(name string) int {
	return slices.Index(t.columns, name)
}

// AddRow appends a row. Partial rows, empty or duplicate names and negative
// or non-finite values are rejected.
func (t *Table) AddRow(row Row) error {
	name := strings.TrimSpace(row.Name)
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidRow)
	}
	if _, ok := t.names[name]; ok {
		return fmt.Errorf("%w: duplicate name %q", ErrInvalidRow, name)
	}
	if len(row.Values) != len(t.columns)-1 {
		return fmt.Errorf("%w: %q has %d values, schema expects %d", ErrInvalidRow, name, len(row.Values), len(t.columns)-1)
	}
	for _, v := range row.Values {
		if err := checkValue(v); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidRow, name, err)
		}
	}
	t.names[name] = struct{}{}
	t.rows = append(t.rows, Row{Name: name, Values: slices.Clone(row.Values)})
	return nil
}

// SetColumn appends a derived column, or replaces it when it already exists.
// The name and base columns are never replaced.
func (t *Table) SetColumn(name string, values []float64) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty column name", ErrInvalidSchema)
	}
	if len(values) != len(t.rows) {
		return fmt.Errorf("%w: column %q has %d values for %d rows", ErrInvalidSchema, name, len(values), len(t.rows))
	}
	for _, v := range values {
		if err := checkValue(v); err != nil {
			return fmt.Errorf("%w: column %q: %v", ErrInvalidSchema, name, err)
		}
	}

	idx := t.ColumnIndex(name)
	switch {
	case idx == 0 || idx == 1:
		return fmt.Errorf("%w: column %q cannot be replaced", ErrInvalidSchema, name)
	case idx > 1:
		for i := range t.rows {
			t.rows[i].Values[idx-1] = values[i]
		}
	default:
		t.columns = append(t.columns, name)
		for i := range t.rows {
			t.rows[i].Values = append(t.rows[i].Values, values[i])
		}
	}
	return nil
}

func checkValue(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("value %v is not finite", v)
	}
	if v < 0 {
		return fmt.Errorf("value %v is negative", v)
	}
	return nil
}
