package family

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"familymeter/internal/config"
	apperrors "familymeter/internal/errors"
	"familymeter/internal/table"
)

// Identity column positions.
const (
	ColLastName = iota
	ColFirstName
	ColSex
	ColBirthDate
	ColLineage
)

// Stats counts what an extraction kept and skipped.
type Stats struct {
	Rows         int `json:"rows"`
	People       int `json:"people"`
	SkippedRows  int `json:"skipped_rows"`
	Observations int `json:"observations"`
	SkippedCells int `json:"skipped_cells"`
}

// Extractor builds people from table rows.
type Extractor struct {
	// FirstDataRow is the index of the first row considered.
	FirstDataRow int
	// FirstDataColumn is the index of the first measurement column; all
	// columns before it must be present for a row to be used.
	FirstDataColumn int
	// DateLayout parses birth dates and measurement column headers.
	DateLayout string
}

// NewExtractor creates an extractor from the source configuration.
func NewExtractor(cfg config.SourceConfig) *Extractor {
	return &Extractor{
		FirstDataRow:    cfg.FirstDataRow,
		FirstDataColumn: cfg.FirstDataColumn,
		DateLayout:      cfg.DateLayout,
	}
}

// Extract returns one Person per complete row, in row order. Rows missing
// any identity value and empty measurement cells are skipped. A malformed
// date or height aborts the extraction.
func (e *Extractor) Extract(t *table.Table) ([]Person, Stats, error) {
	var stats Stats
	people := make([]Person, 0, len(t.Rows))
	headerDates := make(map[int]time.Time)

	for i := e.FirstDataRow; i < len(t.Rows); i++ {
		stats.Rows++
		if !e.complete(t, i) {
			stats.SkippedRows++
			continue
		}

		birth, err := e.parseDate(t.Cell(i, ColBirthDate).Value)
		if err != nil {
			return nil, stats, apperrors.NewParsingError(
				fmt.Sprintf("row %d: invalid birth date %q", i+1, t.Cell(i, ColBirthDate).Value), err).
				WithContext("row", i+1).
				WithContext("column", t.Columns[ColBirthDate])
		}

		person := Person{
			FirstName: t.Cell(i, ColFirstName).Value,
			LastName:  t.Cell(i, ColLastName).Value,
			Sex:       t.Cell(i, ColSex).Value,
			BirthDate: birth,
			Lineage:   t.Cell(i, ColLineage).Value,
		}

		for j := e.FirstDataColumn; j < len(t.Columns); j++ {
			cell := t.Cell(i, j)
			if !cell.Valid {
				stats.SkippedCells++
				continue
			}

			measured, ok := headerDates[j]
			if !ok {
				measured, err = e.parseDate(t.Columns[j])
				if err != nil {
					return nil, stats, apperrors.NewParsingError(
						fmt.Sprintf("column %d: header %q is not a date", j+1, t.Columns[j]), err).
						WithContext("column", t.Columns[j])
				}
				headerDates[j] = measured
			}

			height, err := strconv.ParseFloat(cell.Value, 64)
			if err == nil && (math.IsInf(height, 0) || math.IsNaN(height)) {
				err = strconv.ErrRange
			}
			if err != nil {
				return nil, stats, apperrors.NewParsingError(
					fmt.Sprintf("row %d, column %s: height %q is not a number", i+1, t.Columns[j], cell.Value), err).
					WithContext("row", i+1).
					WithContext("column", t.Columns[j])
			}

			person.Observations = append(person.Observations, Observation{
				Age:    Age(birth, measured),
				Height: height,
			})
			stats.Observations++
		}

		people = append(people, person)
	}

	stats.People = len(people)
	return people, stats, nil
}

// complete reports whether every identity column of row i has a value.
func (e *Extractor) complete(t *table.Table, i int) bool {
	for j := 0; j < e.FirstDataColumn; j++ {
		if !t.Cell(i, j).Valid {
			return false
		}
	}
	return true
}

// parseDate accepts the layout as configured and, failing that, with day and
// month written without a leading zero ("1.1.2000").
func (e *Extractor) parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(e.DateLayout, s, time.UTC)
	if err == nil {
		return t, nil
	}
	if loose := unpadded.Replace(e.DateLayout); loose != e.DateLayout {
		if t, looseErr := time.ParseInLocation(loose, s, time.UTC); looseErr == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

var unpadded = strings.NewReplacer("02", "2", "01", "1")
