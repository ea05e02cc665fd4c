// Package table loads the measurement spreadsheet into an in-memory table of
// named columns and rows of nullable cells.
package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "familymeter/internal/errors"
)

// Cell is a single table value. Valid is false for missing values.
type Cell struct {
	Value string
	Valid bool
}

// Null is the missing cell.
var Null = Cell{}

// Text returns the cell value, or "" for a missing cell.
func (c Cell) Text() string {
	if !c.Valid {
		return ""
	}
	return c.Value
}

// Row is one table record, aligned with Table.Columns.
type Row []Cell

// Table is an ordered set of named columns and rows.
type Table struct {
	Columns []string
	Rows    []Row

	index map[string]int
}

// Options controls how delimited text is read.
type Options struct {
	// NAValues are the trimmed cell contents treated as missing.
	NAValues []string
	// Comma is the field delimiter; zero means ','.
	Comma rune
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadFile reads the table stored at path.
func LoadFile(path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("cannot open measurement table %s", path), err).
			WithContext("path", path)
	}
	defer f.Close()

	return Load(f, opts)
}

// Load parses delimited text with a header row. Short rows are padded with
// missing cells; rows wider than the header are rejected.
func Load(r io.Reader, opts Options) (*Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("cannot read measurement table", err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewParsingError("measurement table has no header row", nil)
	}

	na := make(map[string]struct{}, len(opts.NAValues))
	for _, v := range opts.NAValues {
		na[v] = struct{}{}
	}

	t := New(records[0])
	for i, rec := range records[1:] {
		if len(rec) > len(t.Columns) {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("row %d has %d fields, header has %d", i+1, len(rec), len(t.Columns)), nil).
				WithContext("row", i+1)
		}
		row := make(Row, len(t.Columns))
		for j, raw := range rec {
			value := strings.TrimSpace(raw)
			if _, missing := na[value]; missing || value == "" {
				continue
			}
			row[j] = Cell{Value: value, Valid: true}
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// New creates an empty table with the given header.
func New(columns []string) *Table {
	t := &Table{Columns: make([]string, len(columns))}
	for i, c := range columns {
		t.Columns[i] = strings.TrimSpace(c)
	}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	if t.index == nil {
		t.reindex()
	}
	i, ok := t.index[name]
	return i, ok
}

// Cell returns the cell at (row, col), or Null when out of range.
func (t *Table) Cell(row, col int) Cell {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return Null
	}
	return t.Rows[row][col]
}

// Get returns the cell in the named column of a row.
func (t *Table) Get(row int, column string) Cell {
	col, ok := t.ColumnIndex(column)
	if !ok {
		return Null
	}
	return t.Cell(row, col)
}

// Display returns the rows as strings with missing cells rendered empty.
func (t *Table) Display() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		line := make([]string, len(t.Columns))
		for j := range line {
			if j < len(row) {
				line[j] = row[j].Text()
			}
		}
		out[i] = line
	}
	return out
}
