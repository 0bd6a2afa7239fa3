package wikipedia

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/alexivanou/gans/internal/model"
	"github.com/alexivanou/gans/internal/source"
)

// Client fetches place pages
type Client struct {
	baseURL string
	http    *source.Client
}

// NewClient creates a client reading pages below baseURL
func NewClient(baseURL string, httpClient *source.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// PageURL returns the page address for a place name
func (c *Client) PageURL(place string) string {
	return c.baseURL + "/" + url.PathEscape(strings.ReplaceAll(place, " ", "_"))
}

// Document fetches and parses the page of a place
func (c *Client) Document(ctx context.Context, place string) (*goquery.Document, error) {
	resp, err := c.http.Get(ctx, c.PageURL(place), nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &model.LookupError{
			Source:     SourceName,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("no page for %q", place),
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, &model.ParseError{Source: SourceName, Field: "document", Err: err}
	}
	return doc, nil
}

// LookupPlace fetches the page of a place and extracts its geo facts
func (c *Client) LookupPlace(ctx context.Context, place string) (model.GeoFacts, error) {
	doc, err := c.Document(ctx, place)
	if err != nil {
		return model.GeoFacts{}, err
	}
	return Extract(doc)
}

// LookupPopulation fetches the page of a place and extracts its population,
// model.UnknownPopulation when the page has none
func (c *Client) LookupPopulation(ctx context.Context, place string) (int64, error) {
	doc, err := c.Document(ctx, place)
	if err != nil {
		return 0, err
	}
	return ExtractPopulation(doc), nil
}
