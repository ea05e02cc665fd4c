// Package exporter writes pipeline results as downloadable files.
//
// CSVWriter streams records as UTF-8 CSV with an optional BOM so that Excel
// recognizes the encoding. WriteObservationsCSV uses it to flatten every
// person's observations into one row per measurement.
//
// WriteTableXLSX writes the raw measurement table as an Excel workbook,
// storing numeric cells as numbers.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(rw, exporter.WriteOptions{BOMPrefix: true})
//	if err := exporter.WriteObservationsCSV(w, people); err != nil {
//		return err
//	}
//
//	if err := exporter.WriteTableXLSX(rw, tbl, "measurements"); err != nil {
//		return err
//	}
package exporter
