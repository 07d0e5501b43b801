package table

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrNoColumn          = errors.New("column not found")
	ErrUnsupportedFormat = errors.New("unsupported table format")
)

// Table is an ordered set of equal-length columns.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New assembles a table; column names must be unique and lengths equal.
func New(columns ...*Column) (*Table, error) {
	t := &Table{
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if c == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if c.Name == "" {
			return nil, fmt.Errorf("column %d has no name", i)
		}
		if _, ok := t.index[c.Name]; ok {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), t.rows)
		}
		t.index[c.Name] = len(t.columns)
		t.columns = append(t.columns, c)
	}
	return t, nil
}

func (t *Table) Len() int { return t.rows }

func (t *Table) Width() int { return len(t.columns) }

// Names returns the column names in source order.
func (t *Table) Names() []string {
	out := make([]string, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.Name
	}
	return out
}

func (t *Table) Columns() []*Column {
	return slices.Clone(t.columns)
}

func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Drop returns a table without the named columns. Unknown names are ignored.
func (t *Table) Drop(names ...string) *Table {
	out := &Table{index: make(map[string]int, len(t.columns)), rows: t.rows}
	for _, c := range t.columns {
		if slices.Contains(names, c.Name) {
			continue
		}
		out.index[c.Name] = len(out.columns)
		out.columns = append(out.columns, c)
	}
	return out
}

// Take returns a table holding the given rows in the given order.
func (t *Table) Take(rows []int) *Table {
	out := &Table{index: make(map[string]int, len(t.columns)), rows: len(rows)}
	for _, c := range t.columns {
		out.index[c.Name] = len(out.columns)
		out.columns = append(out.columns, c.take(rows))
	}
	return out
}

// SortBy returns a table stably sorted ascending by the named column, with
// missing values last.
func (t *Table) SortBy(name string) (*Table, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoColumn, name)
	}
	order := make([]int, t.rows)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, c.compare)
	return t.Take(order), nil
}
