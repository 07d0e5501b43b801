package table

import (
	"strconv"
	"strings"
	"time"
)

// Kind is the inferred type of a column. It is computed once when the column
// is built and consumed by every downstream component.
type Kind string

const (
	KindInt      Kind = "int"
	KindFloat    Kind = "float"
	KindBool     Kind = "bool"
	KindDatetime Kind = "datetime"
	KindString   Kind = "string"
)

// Numeric reports whether values of the kind convert to float64.
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat || k == KindBool
}

// DefaultNAValues are the tokens read as missing values.
var DefaultNAValues = []string{"", "None", "NA", "N/A", "null", "NaN", "nan"}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Column is a named, typed sequence of raw cell values.
type Column struct {
	Name    string
	Kind    Kind
	values  []string
	missing []bool
}

// NewColumn builds a column from raw cells, marking the default NA tokens as
// missing and inferring its kind.
func NewColumn(name string, cells []string) *Column {
	return buildColumn(name, cells, naSet(DefaultNAValues), false)
}

// NewStringColumn builds a column whose kind is always KindString.
func NewStringColumn(name string, cells []string) *Column {
	return buildColumn(name, cells, naSet(DefaultNAValues), true)
}

func buildColumn(name string, cells []string, na map[string]struct{}, forceString bool) *Column {
	c := &Column{
		Name:    name,
		values:  make([]string, len(cells)),
		missing: make([]bool, len(cells)),
	}
	for i, cell := range cells {
		v := strings.TrimSpace(cell)
		if _, ok := na[v]; ok {
			c.missing[i] = true
			continue
		}
		c.values[i] = v
	}
	if forceString {
		c.Kind = KindString
	} else {
		c.Kind = inferKind(c.values, c.missing)
	}
	return c
}

func naSet(tokens []string) map[string]struct{} {
	out := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		out[strings.TrimSpace(t)] = struct{}{}
	}
	return out
}

func inferKind(values []string, missing []bool) Kind {
	present := 0
	isInt, isFloat, isBool, isTime := true, true, true, true
	for i, v := range values {
		if missing[i] {
			continue
		}
		present++
		if isInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			if _, ok := parseBool(v); !ok {
				isBool = false
			}
		}
		if isTime {
			if _, ok := parseTime(v); !ok {
				isTime = false
			}
		}
		if !isInt && !isFloat && !isBool && !isTime {
			return KindString
		}
	}
	switch {
	case present == 0:
		return KindString
	case isInt:
		return KindInt
	case isFloat:
		return KindFloat
	case isBool:
		return KindBool
	case isTime:
		return KindDatetime
	default:
		return KindString
	}
}

func parseBool(v string) (bool, bool) {
	switch strings.ToLower(v) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

func parseTime(v string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (c *Column) Len() int { return len(c.values) }

func (c *Column) Missing(i int) bool { return c.missing[i] }

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, m := range c.missing {
		if m {
			n++
		}
	}
	return n
}

// String returns the trimmed raw cell, or "" when missing.
func (c *Column) String(i int) string { return c.values[i] }

// Float converts a numeric cell. Booleans map to 1 and 0.
func (c *Column) Float(i int) (float64, bool) {
	if c.missing[i] || !c.Kind.Numeric() {
		return 0, false
	}
	if c.Kind == KindBool {
		b, _ := parseBool(c.values[i])
		if b {
			return 1, true
		}
		return 0, true
	}
	f, err := strconv.ParseFloat(c.values[i], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Time parses a datetime cell.
func (c *Column) Time(i int) (time.Time, bool) {
	if c.missing[i] || c.Kind != KindDatetime {
		return time.Time{}, false
	}
	return parseTime(c.values[i])
}

// Cells returns a copy of the raw cells with missing entries as "".
func (c *Column) Cells() []string {
	out := make([]string, len(c.values))
	copy(out, c.values)
	return out
}

func (c *Column) take(rows []int) *Column {
	out := &Column{
		Name:    c.Name,
		Kind:    c.Kind,
		values:  make([]string, len(rows)),
		missing: make([]bool, len(rows)),
	}
	for i, r := range rows {
		out.values[i] = c.values[r]
		out.missing[i] = c.missing[r]
	}
	return out
}

// compare orders two rows of the column; missing cells sort last.
func (c *Column) compare(a, b int) int {
	ma, mb := c.missing[a], c.missing[b]
	switch {
	case ma && mb:
		return 0
	case ma:
		return 1
	case mb:
		return -1
	}
	switch {
	case c.Kind == KindDatetime:
		ta, _ := c.Time(a)
		tb, _ := c.Time(b)
		return ta.Compare(tb)
	case c.Kind.Numeric():
		fa, _ := c.Float(a)
		fb, _ := c.Float(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	default:
		return strings.Compare(c.values[a], c.values[b])
	}
}
