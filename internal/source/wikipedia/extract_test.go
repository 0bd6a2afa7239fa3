package wikipedia

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/alexivanou/gans/internal/model"
	"github.com/alexivanou/gans/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func page(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>" + body + "</body></html>"))
	require.NoError(t, err)
	return doc
}

func row(label, data string) string {
	return fmt.Sprintf(`<tr><th class="infobox-label">%s</th><td class="infobox-data">%s</td></tr>`, label, data)
}

func header(text string) string {
	return fmt.Sprintf(`<tr><th class="infobox-header" colspan="2">%s</th></tr>`, text)
}

func coords(lat, lon string) string {
	return fmt.Sprintf(`<span class="latitude">%s</span> <span class="longitude">%s</span>`, lat, lon)
}

const springfieldPage = `
<span class="geo-dms"><span class="latitude">39°48′N</span> <span class="longitude">89°38′W</span></span>
<table class="infobox">
<tr><th class="infobox-label">Country</th><td class="infobox-data">United States</td></tr>
<tr><th class="infobox-label">State</th><td class="infobox-data">Illinois</td></tr>
<tr><th class="infobox-header" colspan="2">Population<div>(2020)</div></th></tr>
<tr><th class="infobox-label">• City</th><td class="infobox-data">114,394</td></tr>
<tr><th class="infobox-label">• Estimate (2022)</th><td class="infobox-data">112,544</td></tr>
<tr><th class="infobox-label">Time zone</th><td class="infobox-data">UTC−6 (CST)</td></tr>
<tr><th class="infobox-label">• Summer (DST)</th><td class="infobox-data">UTC−5 (CDT)</td></tr>
</table>`

func TestParseDMS(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		want       float64
		hemisphere byte
	}{
		{"No seconds", "39°48′N", 39 + 48.0/60, 'N'},
		{"With seconds", "52°31′12″N", 52 + 31.0/60 + 12.0/3600, 'N'},
		{"Zero minutes", "13°00′E", 13, 'E'},
		{"Surrounding text", " 89°38′W (approx)", 89 + 38.0/60, 'W'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hemisphere, err := ParseDMS(tt.input)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.Equal(t, tt.hemisphere, hemisphere)
		})
	}

	_, _, err := ParseDMS("somewhere")
	assert.Error(t, err)
}

func TestParseCoordinates_Sign(t *testing.T) {
	// every degree/minute/second combination converts the same way
	for _, deg := range []int{0, 1, 45, 89} {
		for _, mins := range []int{0, 7, 59} {
			for _, sec := range []int{-1, 0, 30} {
				want := float64(deg) + float64(mins)/60
				secPart := ""
				if sec >= 0 {
					want += float64(sec) / 3600
					secPart = fmt.Sprintf("%d″", sec)
				}

				for _, h := range []string{"N", "S"} {
					got, err := ParseLatitude(fmt.Sprintf("%d°%d′%s%s", deg, mins, secPart, h))
					require.NoError(t, err)
					expected := want
					if h == "S" {
						expected = -want
					}
					assert.InDelta(t, expected, got, 1e-9)
				}
				for _, h := range []string{"E", "W"} {
					got, err := ParseLongitude(fmt.Sprintf("%d°%d′%s%s", deg, mins, secPart, h))
					require.NoError(t, err)
					expected := want
					if h == "W" {
						expected = -want
					}
					assert.InDelta(t, expected, got, 1e-9)
				}
			}
		}
	}

	_, err := ParseLatitude("12°30′E")
	assert.Error(t, err, "east is not a latitude")
	_, err = ParseLongitude("12°30′N")
	assert.Error(t, err, "north is not a longitude")
}

func TestExtract_Springfield(t *testing.T) {
	facts, err := Extract(page(t, springfieldPage))
	require.NoError(t, err)

	assert.InDelta(t, 39.8, facts.Latitude, 1e-9)
	assert.InDelta(t, -89.633, facts.Longitude, 1e-3)
	assert.Equal(t, "United States", facts.Country)
	assert.Equal(t, int64(114394), facts.Population)
	assert.Equal(t, "CST", facts.TimezoneAbbr)
}

func TestExtract_Country(t *testing.T) {
	tests := []struct {
		name string
		rows string
		want string
	}{
		{"Country only", row("Country", "Germany"), "Germany"},
		{"Sovereign state after Country", row("Country", "England") + row("Sovereign state", "United Kingdom"), "United Kingdom"},
		{"Sovereign state before Country", row("Sovereign state", "Denmark") + row("Country", "Greenland"), "Denmark"},
		{"Label must match exactly", row("Country code", "DE"), ""},
		{"Neither", row("State", "Bavaria"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts, err := Extract(page(t, coords("1°0′N", "1°0′E")+"<table>"+tt.rows+"</table>"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, facts.Country)
		})
	}
}

func TestExtract_Population(t *testing.T) {
	tests := []struct {
		name string
		rows string
		want int64
	}{
		{
			name: "Last labeled row wins",
			rows: row("Population (2011)", "3,292,365") + row("Population (2021)", "3,755,251"),
			want: 3755251,
		},
		{
			name: "Header fallback",
			rows: header("Population (2020)") + row("• City", "114,394") + row("• Metro", "208,640"),
			want: 114394,
		},
		{
			name: "Labels beat headers",
			rows: header("Population") + row("• Total", "1,000") + row("Population (2015)", "2,000"),
			want: 2000,
		},
		{
			name: "Case sensitive",
			rows: row("population", "5"),
			want: model.UnknownPopulation,
		},
		{
			name: "Unparseable row is skipped",
			rows: row("Population (2001)", "1,234") + row("Population (est.)", "unknown"),
			want: 1234,
		},
		{
			name: "Footnotes are ignored",
			rows: row("Population", "56,789[1]"),
			want: 56789,
		},
		{
			name: "Nothing",
			rows: row("Area", "42 km2"),
			want: model.UnknownPopulation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := page(t, coords("1°0′N", "1°0′E")+"<table>"+tt.rows+"</table>")
			facts, err := Extract(doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, facts.Population)
			assert.Equal(t, tt.want, ExtractPopulation(doc))
		})
	}
}

func TestExtract_TimezoneAbbr(t *testing.T) {
	doc := page(t, coords("52°31′N", "13°24′E")+"<table>"+
		row("Time zone", "UTC+01:00 (CET)")+
		row("Time zone (summer)", "UTC+02:00 (CEST)")+"</table>")
	facts, err := Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, "CEST", facts.TimezoneAbbr)

	facts, err = Extract(page(t, coords("52°31′N", "13°24′E")))
	require.NoError(t, err)
	assert.Empty(t, facts.TimezoneAbbr)
}

func TestExtract_MissingCoordinates(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"No coordinates", "<table>" + row("Country", "Atlantis") + "</table>", "latitude"},
		{"Malformed latitude", coords("north-ish", "1°0′E"), "latitude"},
		{"Missing longitude", `<span class="latitude">1°0′N</span>`, "longitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(page(t, tt.body))
			var parseErr *model.ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, tt.field, parseErr.Field)
			assert.Equal(t, SourceName, parseErr.Source)
		})
	}
}

func TestClient_LookupPlace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/Springfield,_Illinois":
			w.Write([]byte("<html><body>" + springfieldPage + "</body></html>"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", source.NewClient(SourceName, source.Options{}, zap.NewNop()))
	ctx := context.Background()

	facts, err := c.LookupPlace(ctx, "Springfield, Illinois")
	require.NoError(t, err)
	assert.Equal(t, "United States", facts.Country)

	population, err := c.LookupPopulation(ctx, "Springfield, Illinois")
	require.NoError(t, err)
	assert.Equal(t, int64(114394), population)

	_, err = c.LookupPlace(ctx, "Atlantis")
	var lookupErr *model.LookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, http.StatusNotFound, lookupErr.StatusCode)
}
