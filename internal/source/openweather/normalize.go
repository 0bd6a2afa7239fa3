// Package openweather fetches 5 day / 3 hour forecasts and flattens them
// into forecast rows.
package openweather

import (
	"errors"
	"fmt"
	"time"

	"github.com/alexivanou/gans/internal/model"
)

// SourceName identifies this source in errors and logs
const SourceName = "openweather"

// All disables truncation in Normalize
const All = -1

// TimestampLayout is the layout of dt_txt, always UTC
const TimestampLayout = "2006-01-02 15:04:05"

// Main holds the thermodynamic part of an entry
type Main struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Humidity  int     `json:"humidity"`
}

// Condition is a textual weather condition
type Condition struct {
	Description string `json:"description"`
}

// Clouds holds cloud cover in percent
type Clouds struct {
	All int `json:"all"`
}

// Wind holds wind speed in m/s
type Wind struct {
	Speed float64 `json:"speed"`
}

// Rain holds the precipitation volume of the last 3 hours in mm
type Rain struct {
	ThreeHours float64 `json:"3h"`
}

// Entry is one raw 3-hour forecast entry
type Entry struct {
	DtTxt      string      `json:"dt_txt"`
	Main       *Main       `json:"main"`
	Weather    []Condition `json:"weather"`
	Clouds     *Clouds     `json:"clouds"`
	Wind       *Wind       `json:"wind"`
	Rain       *Rain       `json:"rain,omitempty"`
	Visibility *int        `json:"visibility"`
}

// Normalize flattens the first upto entries in source order; upto < 0 keeps
// all of them. An entry missing a required field fails the whole call.
func Normalize(entries []Entry, upto int) ([]model.Forecast, error) {
	if upto >= 0 && upto < len(entries) {
		entries = entries[:upto]
	}

	forecasts := make([]model.Forecast, 0, len(entries))
	for i, e := range entries {
		f, err := flatten(e)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		forecasts = append(forecasts, f)
	}
	return forecasts, nil
}

func flatten(e Entry) (model.Forecast, error) {
	missing := func(field string) error {
		return &model.ParseError{Source: SourceName, Field: field, Err: errors.New("missing")}
	}

	switch {
	case e.Main == nil:
		return model.Forecast{}, missing("main")
	case len(e.Weather) == 0:
		return model.Forecast{}, missing("weather")
	case e.Clouds == nil:
		return model.Forecast{}, missing("clouds")
	case e.Wind == nil:
		return model.Forecast{}, missing("wind")
	case e.Visibility == nil:
		return model.Forecast{}, missing("visibility")
	}

	ts, err := time.ParseInLocation(TimestampLayout, e.DtTxt, time.UTC)
	if err != nil {
		return model.Forecast{}, &model.ParseError{Source: SourceName, Field: "dt_txt", Err: err}
	}

	var rain float64
	if e.Rain != nil {
		rain = e.Rain.ThreeHours
	}

	return model.Forecast{
		Timestamp:   ts,
		Temperature: e.Main.Temp,
		FeelsLike:   e.Main.FeelsLike,
		Humidity:    e.Main.Humidity,
		Overall:     e.Weather[0].Description,
		Clouds:      e.Clouds.All,
		WindSpeed:   e.Wind.Speed,
		Rain:        rain,
		Visibility:  *e.Visibility,
	}, nil
}
