// Package family turns measurement table rows into people with dated height
// observations.
package family

import (
	"math"
	"time"
)

// DaysPerYear is the mean Julian year length used for ages.
const DaysPerYear = 365.25

// Observation is one height reading at a given age.
type Observation struct {
	Age    float64 `json:"age"`
	Height float64 `json:"height"`
}

// Person is one row of the measurement table.
type Person struct {
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	Sex          string        `json:"sex"`
	BirthDate    time.Time     `json:"birth_date"`
	Lineage      string        `json:"lineage"`
	Observations []Observation `json:"observations"`
}

// DisplayName is the legend label used for the person's series.
func (p Person) DisplayName() string {
	return p.FirstName + " " + p.LastName
}

// Age returns the age in years at measured, rounded to two decimals.
// Only whole days count; a measurement before birth yields a negative age.
func Age(birth, measured time.Time) float64 {
	days := math.Floor(measured.Sub(birth).Hours() / 24)
	return math.Round(days/DaysPerYear*100) / 100
}
