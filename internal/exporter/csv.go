package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"familymeter/internal/family"
)

// ObservationHeaders are the columns of the long-format observations export.
var ObservationHeaders = []string{"first_name", "last_name", "sex", "lineage", "birth_date", "age", "height"}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
	Comma     rune
}

// CSVWriter provides streaming CSV export to any writer
type CSVWriter struct {
	w       io.Writer
	writer  *csv.Writer
	options WriteOptions
	started bool
	records int
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(w io.Writer, options WriteOptions) *CSVWriter {
	writer := csv.NewWriter(w)
	if options.Comma != 0 {
		writer.Comma = options.Comma
	}
	return &CSVWriter{w: w, writer: writer, options: options}
}

// start writes the BOM and headers once, before the first record
func (c *CSVWriter) start() error {
	if c.started {
		return nil
	}
	c.started = true

	// Write BOM if requested (helps Excel recognize UTF-8)
	if c.options.BOMPrefix {
		if _, err := c.w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	if len(c.options.Headers) > 0 {
		if err := c.writer.Write(c.options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	return nil
}

// WriteRecord writes a single record to the stream
func (c *CSVWriter) WriteRecord(record []string) error {
	if err := c.start(); err != nil {
		return err
	}
	if err := c.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record %d: %w", c.records, err)
	}
	c.records++
	return nil
}

// Records returns the number of records written so far
func (c *CSVWriter) Records() int {
	return c.records
}

// Close writes any pending header and flushes buffered records
func (c *CSVWriter) Close() error {
	if err := c.start(); err != nil {
		return err
	}
	c.writer.Flush()
	return c.writer.Error()
}

// WriteObservationsCSV writes one record per observation, people in order
// and each person's observations in column order.
func WriteObservationsCSV(c *CSVWriter, people []family.Person) error {
	for _, p := range people {
		for _, o := range p.Observations {
			record := []string{
				p.FirstName,
				p.LastName,
				p.Sex,
				p.Lineage,
				p.BirthDate.Format("2006-01-02"),
				formatFloat(o.Age),
				formatFloat(o.Height),
			}
			if err := c.WriteRecord(record); err != nil {
				return err
			}
		}
	}
	return c.Close()
}
