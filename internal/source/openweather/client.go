package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/alexivanou/gans/internal/model"
	"github.com/alexivanou/gans/internal/source"
)

type forecastResponse struct {
	// "200" on success; error payloads carry a number instead of a string
	Cod  json.RawMessage `json:"cod"`
	List []Entry         `json:"list"`
}

func (r forecastResponse) code() string {
	return strings.Trim(string(r.Cod), `" `)
}

// Client talks to the forecast endpoint
type Client struct {
	baseURL string
	apiKey  string
	http    *source.Client
}

// NewClient creates a forecast client. The http client should carry the
// X-Api-Key header.
func NewClient(baseURL, apiKey string, httpClient *source.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
	}
}

// Entries fetches the raw forecast entries for a position, metric units
func (c *Client) Entries(ctx context.Context, lat, lon float64) ([]Entry, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("units", "metric")
	if c.apiKey != "" {
		query.Set("appid", c.apiKey)
	}

	var payload forecastResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/forecast", query, &payload); err != nil {
		return nil, err
	}
	if code := payload.code(); code != "200" {
		return nil, &model.LookupError{
			Source: SourceName,
			Err:    fmt.Errorf("unexpected cod %q", code),
		}
	}
	return payload.List, nil
}

// Forecasts fetches and normalizes the first upto entries for a position
func (c *Client) Forecasts(ctx context.Context, lat, lon float64, upto int) ([]model.Forecast, error) {
	entries, err := c.Entries(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	return Normalize(entries, upto)
}
