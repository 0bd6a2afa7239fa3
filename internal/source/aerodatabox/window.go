package aerodatabox

import (
	"time"

	// airport zones must resolve on hosts without a zoneinfo database
	_ "time/tzdata"
)

// WindowLength matches the forecast grid so consecutive windows tile time
const WindowLength = 3 * time.Hour

// LocalMinuteLayout formats window bounds in the airport's local time
const LocalMinuteLayout = "2006-01-02T15:04"

// Window is an arrival search span anchored at a UTC instant
type Window struct {
	Start time.Time
	End   time.Time
}

// ArrivalWindow returns the WindowLength span starting at at, expressed in loc.
// The UTC span is always exactly WindowLength; only the local wall clock
// readings move across DST changes.
func ArrivalWindow(at time.Time, loc *time.Location) Window {
	return Window{
		Start: at.In(loc),
		End:   at.Add(WindowLength).In(loc),
	}
}

// Bounds returns the local start and end at minute precision
func (w Window) Bounds() (string, string) {
	return w.Start.Format(LocalMinuteLayout), w.End.Format(LocalMinuteLayout)
}
