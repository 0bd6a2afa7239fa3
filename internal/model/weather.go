package model

import "time"

// Forecast is one flattened 3-hour forecast entry
type Forecast struct {
	CityID      int64     `db:"city_id"`
	Timestamp   time.Time `db:"timestamp"`
	Temperature float64   `db:"temperature"`
	FeelsLike   float64   `db:"feeled_temperature"`
	Humidity    int       `db:"humidity"`
	Overall     string    `db:"overall"`
	Clouds      int       `db:"clouds"`
	WindSpeed   float64   `db:"windspeed"`
	Rain        float64   `db:"rain"`
	Visibility  int       `db:"visibility"`
}

// Arrival is a scheduled flight arrival at an airport
type Arrival struct {
	ICAO      string    `db:"icao"`
	Scheduled time.Time `db:"arrival"`
	FromWhere string    `db:"from_where"`
}

// Outcome is the on-boarding result of one city in a batch
type Outcome string

const (
	OutcomeOnboarded Outcome = "onboarded"
	OutcomeExisting  Outcome = "existing"
	OutcomeFailed    Outcome = "failed"
)

// CityResult summarizes the work done for one city in a batch
type CityResult struct {
	City      string
	Outcome   Outcome
	Refreshed bool
	Forecasts int
	Arrivals  int
	Err       error
}

// RunReport summarizes a batch run
type RunReport struct {
	RunID   string
	Started time.Time
	Results []CityResult
}

// Failed returns the number of cities that could not be processed
func (r RunReport) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}
