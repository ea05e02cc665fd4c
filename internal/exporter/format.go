package exporter

import (
	"strconv"
)

// formatFloat formats a float64 with the shortest representation that
// round-trips, so 140.50 is written as 140.5
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
