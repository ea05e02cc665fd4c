package exporter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"familymeter/internal/family"
	"familymeter/internal/table"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"zero value", 0.0, "0"},
		{"whole height", 123.0, "123"},
		{"one decimal", 140.50, "140.5"},
		{"two decimals", 10.01, "10.01"},
		{"negative age", -0.25, "-0.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFloat(tt.input))
		})
	}
}

func TestCSVWriter(t *testing.T) {
	tests := []struct {
		name     string
		options  WriteOptions
		records  [][]string
		expected string
	}{
		{
			name:     "headers and records",
			options:  WriteOptions{Headers: []string{"a", "b"}},
			records:  [][]string{{"1", "2"}, {"x,y", "z"}},
			expected: "a,b\n1,2\n\"x,y\",z\n",
		},
		{
			name:     "bom prefix",
			options:  WriteOptions{Headers: []string{"meno"}, BOMPrefix: true},
			records:  [][]string{{"Štefan"}},
			expected: "\xEF\xBB\xBFmeno\nŠtefan\n",
		},
		{
			name:     "headers only",
			options:  WriteOptions{Headers: []string{"a"}},
			expected: "a\n",
		},
		{
			name:     "semicolon delimiter",
			options:  WriteOptions{Comma: ';'},
			records:  [][]string{{"1", "2"}},
			expected: "1;2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewCSVWriter(&buf, tt.options)
			for _, r := range tt.records {
				require.NoError(t, w.WriteRecord(r))
			}
			require.NoError(t, w.Close())
			assert.Equal(t, tt.expected, buf.String())
			assert.Equal(t, len(tt.records), w.Records())
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestCSVWriter_PropagatesWriteErrors(t *testing.T) {
	w := NewCSVWriter(failingWriter{}, WriteOptions{BOMPrefix: true})
	err := w.WriteRecord([]string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOM")
}

func TestWriteObservationsCSV(t *testing.T) {
	people := []family.Person{
		{
			FirstName: "Anna", LastName: "Nováková", Sex: "žena", Lineage: "Elena",
			BirthDate:    time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
			Observations: []family.Observation{{Age: 10, Height: 140.5}, {Age: 5, Height: 110}},
		},
		{
			FirstName: "Peter", LastName: "Novák", Sex: "muž", Lineage: "Jozef",
			BirthDate: time.Date(2002, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	w := NewCSVWriter(&buf, WriteOptions{Headers: ObservationHeaders})
	require.NoError(t, WriteObservationsCSV(w, people))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		ObservationHeaders,
		{"Anna", "Nováková", "žena", "Elena", "2000-01-01", "10", "140.5"},
		{"Anna", "Nováková", "žena", "Elena", "2000-01-01", "5", "110"},
	}, records)
}

func TestWriteTableXLSX(t *testing.T) {
	tbl, err := table.Load(strings.NewReader(
		"priezvisko,meno,pohlavie,narodenie,vetva,01.01.2010\n"+
			"Nováková,Anna,žena,01.01.2000,Elena,140.5\n"+
			"Novák,Peter,muž,01.01.2002,Jozef,\n"),
		table.Options{NAValues: []string{"", "NA"}})
	require.NoError(t, err)

	tests := []struct {
		name      string
		sheet     string
		wantSheet string
	}{
		{"default sheet", "", DefaultSheetName},
		{"named sheet", "merania", "merania"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteTableXLSX(&buf, tbl, tt.sheet))

			f, err := excelize.OpenReader(&buf)
			require.NoError(t, err)
			defer f.Close()

			assert.Equal(t, []string{tt.wantSheet}, f.GetSheetList())

			rows, err := f.GetRows(tt.wantSheet)
			require.NoError(t, err)
			require.Len(t, rows, 3)
			assert.Equal(t, tbl.Columns, rows[0])
			assert.Equal(t, []string{"Nováková", "Anna", "žena", "01.01.2000", "Elena", "140.5"}, rows[1])
			assert.Equal(t, []string{"Novák", "Peter", "muž", "01.01.2002", "Jozef"}, rows[2])
		})
	}
}
