package model

// UnknownPopulation marks a population figure that could not be extracted
const UnknownPopulation int64 = -1

// City represents a city in the database
type City struct {
	ID   int64  `db:"city_id" json:"id"`
	Name string `db:"city" json:"name"`
}

// Geo holds the static geographic facts of a city
type Geo struct {
	CityID    int64   `db:"city_id" json:"-"`
	Latitude  float64 `db:"latitude" json:"latitude"`
	Longitude float64 `db:"longitude" json:"longitude"`
	Country   string  `db:"country" json:"country"`
	Timezone  string  `db:"tz" json:"timezone"`
}

// Population is one observation of a city's population
type Population struct {
	CityID        int64 `db:"city_id" json:"-"`
	Population    int64 `db:"population" json:"population"`
	YearRetrieved int   `db:"year_retrieved" json:"year_retrieved"`
}

// Airport links an ICAO code to a city
type Airport struct {
	CityID int64  `db:"city_id" json:"-"`
	ICAO   string `db:"icao" json:"icao"`
}

// GeoFacts is what can be read from a place document
type GeoFacts struct {
	Latitude   float64
	Longitude  float64
	Country    string
	Population int64
	// TimezoneAbbr is best-effort, e.g. "CET"; empty when absent
	TimezoneAbbr string
}

// AirportSearch is the result of a coordinate based airport lookup
type AirportSearch struct {
	ICAOs []string
	// Timezone is the IANA zone of the first airport found, empty if none
	Timezone string
}

// CityProfile bundles everything persisted when a city is on-boarded
type CityProfile struct {
	Name       string
	Geo        Geo
	Population Population
	Airports   []string
}

// CityDetail is the read-out of an on-boarded city
type CityDetail struct {
	City
	Geo        *Geo        `json:"geo"`
	Population *Population `json:"population"`
	Airports   []string    `json:"airports"`
}
