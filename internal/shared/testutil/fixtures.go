package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SampleMeasurementCSV has two complete people (a woman of the Elena line
// and a man of the Jozef line) and one row without a sex value.
const SampleMeasurementCSV = `priezvisko,meno,pohlavie,narodenie,vetva,01.01.2010,01.01.2005
Nováková,Anna,žena,01.01.2000,Elena,140,110
Novák,Peter,muž,01.01.2002,Jozef,130,
Bez,Pohlavia,,01.01.2001,Miro,120,100
`

// WriteMeasurementCSV writes content to a measurement file in a fresh
// temporary directory and returns its path.
func WriteMeasurementCSV(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rodinny_merac.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write measurement fixture: %v", err)
	}
	return path
}
