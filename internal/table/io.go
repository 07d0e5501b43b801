package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
)

// ReadOptions controls CSV decoding.
type ReadOptions struct {
	// Comma defaults to ',' (or '\t' for .tsv files in Load).
	Comma rune
	// NAValues defaults to DefaultNAValues.
	NAValues []string
	// StringColumns are never type-inferred; identifiers belong here.
	StringColumns []string
}

// ReadCSV decodes a headered CSV stream.
func ReadCSV(r io.Reader, opts ReadOptions) (*Table, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty table: missing header")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
		if header[i] == "" {
			header[i] = fmt.Sprintf("Unnamed: %d", i)
		}
	}

	cells := make([][]string, len(header))
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		for i, v := range record {
			cells[i] = append(cells[i], v)
		}
	}

	na := DefaultNAValues
	if opts.NAValues != nil {
		na = opts.NAValues
	}
	naTokens := naSet(na)
	columns := make([]*Column, len(header))
	for i, name := range header {
		columns[i] = buildColumn(name, cells[i], naTokens, slices.Contains(opts.StringColumns, name))
	}
	return New(columns...)
}

// Load reads a table file by extension. A .parquet path falls back to a
// sibling .csv when one exists; the path actually read is returned.
func Load(fs afero.Fs, path string, opts ReadOptions) (*Table, string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv", ".txt":
	case ".tsv":
		if opts.Comma == 0 {
			opts.Comma = '\t'
		}
	case ".parquet":
		sibling := strings.TrimSuffix(path, filepath.Ext(path)) + ".csv"
		ok, err := afero.Exists(fs, sibling)
		if err != nil {
			return nil, "", err
		}
		if !ok {
			return nil, "", fmt.Errorf("%w: %s (no sibling csv)", ErrUnsupportedFormat, path)
		}
		path = sibling
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	t, err := ReadCSV(f, opts)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return t, path, nil
}

// WriteCSV encodes the table with a header row. Missing cells are empty.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Names()); err != nil {
		return err
	}
	record := make([]string, t.Width())
	for row := 0; row < t.Len(); row++ {
		for i, c := range t.columns {
			record[i] = c.String(row)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save writes the table as CSV, creating parent directories.
func Save(fs afero.Fs, path string, t *Table) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
