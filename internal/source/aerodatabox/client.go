// Package aerodatabox looks up airports around a position and the arrivals
// scheduled at an airport.
package aerodatabox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alexivanou/gans/internal/model"
	"github.com/alexivanou/gans/internal/source"
	"go.uber.org/zap"
)

// SourceName identifies this source in errors and logs
const SourceName = "aerodatabox"

// Host is sent as x-rapidapi-host
const Host = "aerodatabox.p.rapidapi.com"

const (
	searchRadiusKm = 50
	searchLimit    = 10
	// ScheduledLayout is the layout of scheduledTime.utc
	ScheduledLayout = "2006-01-02 15:04Z"
)

type airportItem struct {
	ICAO     string `json:"icao"`
	Name     string `json:"name"`
	TimeZone string `json:"timeZone"`
}

type airportSearchResponse struct {
	Items []airportItem `json:"items"`
}

type movement struct {
	Airport struct {
		ICAO string `json:"icao"`
		Name string `json:"name"`
	} `json:"airport"`
	ScheduledTime struct {
		UTC   string `json:"utc"`
		Local string `json:"local"`
	} `json:"scheduledTime"`
}

type flight struct {
	Number   string   `json:"number"`
	Movement movement `json:"movement"`
}

type arrivalsResponse struct {
	Arrivals []flight `json:"arrivals"`
}

// Client talks to the AeroDataBox API. Both http clients should carry the
// x-rapidapi-host and x-rapidapi-key headers. Airport search and arrivals go
// through separate clients so failing arrival lookups never open the circuit
// that city on-boarding depends on.
type Client struct {
	baseURL string
	search  *source.Client
	flights *source.Client
	logger  *zap.Logger
}

// NewClient creates an AeroDataBox client
func NewClient(baseURL string, search, flights *source.Client, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		search:  search,
		flights: flights,
		logger:  logger,
	}
}

// NearbyAirports returns the ICAO codes of airports with flight information
// within 50km, and the timezone of the first one. No airport is not an error.
func (c *Client) NearbyAirports(ctx context.Context, lat, lon float64) (model.AirportSearch, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("radiusKm", strconv.Itoa(searchRadiusKm))
	query.Set("limit", strconv.Itoa(searchLimit))
	query.Set("withFlightInfoOnly", "true")

	var payload airportSearchResponse
	if err := c.search.GetJSON(ctx, c.baseURL+"/airports/search/location", query, &payload); err != nil {
		return model.AirportSearch{}, err
	}

	result := model.AirportSearch{ICAOs: make([]string, 0, len(payload.Items))}
	for _, item := range payload.Items {
		if item.ICAO == "" {
			continue
		}
		result.ICAOs = append(result.ICAOs, item.ICAO)
	}
	if len(payload.Items) > 0 {
		result.Timezone = payload.Items[0].TimeZone
	}
	return result, nil
}

// Arrivals returns the arrivals scheduled at icao within the window starting
// at at, with window bounds expressed in timezone tz. A failed request or any
// non-200 answer, 5xx and 204 No Content included, yields no arrivals and no
// error. Only an unknown timezone, a malformed payload or a cancelled ctx
// are reported.
func (c *Client) Arrivals(ctx context.Context, icao string, at time.Time, tz string) ([]model.Arrival, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, &model.ParseError{Source: SourceName, Field: "timezone", Err: err}
	}

	from, to := ArrivalWindow(at, loc).Bounds()
	endpoint := fmt.Sprintf("%s/flights/airports/icao/%s/%s/%s",
		c.baseURL, url.PathEscape(icao), url.PathEscape(from), url.PathEscape(to))

	query := url.Values{}
	query.Set("direction", "Arrival")
	query.Set("withCancelled", "false")
	query.Set("withCargo", "false")
	query.Set("withPrivate", "false")
	query.Set("withLocation", "false")

	resp, err := c.flights.Get(ctx, endpoint, query)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Warn("arrival lookup failed, treating as no arrivals",
			zap.String("icao", icao),
			zap.String("from", from),
			zap.String("to", to),
			zap.Error(err),
		)
		return nil, nil
	}
	if !resp.OK() {
		c.logger.Debug("no arrivals",
			zap.String("icao", icao),
			zap.String("from", from),
			zap.String("to", to),
			zap.Int("status", resp.StatusCode),
		)
		return nil, nil
	}

	var payload arrivalsResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, &model.ParseError{Source: SourceName, Field: "arrivals", Err: err}
	}

	arrivals := make([]model.Arrival, 0, len(payload.Arrivals))
	for _, f := range payload.Arrivals {
		scheduled, err := time.Parse(ScheduledLayout, f.Movement.ScheduledTime.UTC)
		if err != nil {
			c.logger.Warn("skipping arrival without scheduled time",
				zap.String("icao", icao),
				zap.String("flight", f.Number),
				zap.Error(err),
			)
			continue
		}
		arrivals = append(arrivals, model.Arrival{
			ICAO:      icao,
			Scheduled: scheduled.UTC(),
			FromWhere: f.Movement.Airport.Name,
		})
	}
	return arrivals, nil
}
