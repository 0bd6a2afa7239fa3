// Package wikipedia reads geographic facts from encyclopedia place pages.
package wikipedia

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/alexivanou/gans/internal/model"
)

// SourceName identifies this source in errors and logs
const SourceName = "wikipedia"

const (
	labelClass  = "infobox-label"
	headerClass = "infobox-header"
	dataClass   = "infobox-data"
)

var (
	leadingNumber = regexp.MustCompile(`\d[\d,]*`)
	parenthesized = regexp.MustCompile(`\(([^()]+)\)`)
)

// cell is one infobox element in document order
type cell struct {
	class string
	text  string
}

type infobox []cell

func readInfobox(doc *goquery.Document) infobox {
	var box infobox
	sel := "." + labelClass + ", ." + headerClass + ", ." + dataClass
	doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
		c := cell{text: strings.TrimSpace(s.Text())}
		switch {
		case s.HasClass(labelClass):
			c.class = labelClass
		case s.HasClass(headerClass):
			c.class = headerClass
		default:
			c.class = dataClass
		}
		box = append(box, c)
	})
	return box
}

// dataAfter returns the text of the first data cell following position i
func (b infobox) dataAfter(i int) (string, bool) {
	for j := i + 1; j < len(b); j++ {
		if b[j].class == dataClass {
			return b[j].text, true
		}
	}
	return "", false
}

// country prefers "Sovereign state" over "Country" wherever they appear
func (b infobox) country() string {
	var country string
	for i, c := range b {
		if c.class != labelClass {
			continue
		}
		switch c.text {
		case "Sovereign state":
			v, _ := b.dataAfter(i)
			return v
		case "Country":
			if v, ok := b.dataAfter(i); ok {
				country = v
			}
		}
	}
	return country
}

// lastPopulation returns the last parseable figure found after a cell of the
// given class whose text starts with "Population"
func (b infobox) lastPopulation(class string) int64 {
	population := model.UnknownPopulation
	for i, c := range b {
		if c.class != class || !strings.HasPrefix(c.text, "Population") {
			continue
		}
		v, ok := b.dataAfter(i)
		if !ok {
			continue
		}
		if n, ok := parsePopulation(v); ok {
			population = n
		}
	}
	return population
}

// population tries labeled rows first and falls back to header rows only
// when labels yielded nothing
func (b infobox) population() int64 {
	if p := b.lastPopulation(labelClass); p != model.UnknownPopulation {
		return p
	}
	return b.lastPopulation(headerClass)
}

func (b infobox) timezoneAbbr() string {
	var abbr string
	for i, c := range b {
		if c.class != labelClass || !strings.HasPrefix(c.text, "Time zone") {
			continue
		}
		v, ok := b.dataAfter(i)
		if !ok {
			continue
		}
		if m := parenthesized.FindAllStringSubmatch(v, -1); len(m) > 0 {
			abbr = strings.TrimSpace(m[len(m)-1][1])
		}
	}
	return abbr
}

func parsePopulation(s string) (int64, bool) {
	token := leadingNumber.FindString(s)
	if token == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(token, ",", ""), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Extract reads coordinates, country, population and timezone abbreviation
// from a parsed place page. Missing coordinates are a ParseError; every other
// fact is optional.
func Extract(doc *goquery.Document) (model.GeoFacts, error) {
	var facts model.GeoFacts

	lat, err := ParseLatitude(doc.Find(".latitude").First().Text())
	if err != nil {
		return facts, &model.ParseError{Source: SourceName, Field: "latitude", Err: err}
	}
	lon, err := ParseLongitude(doc.Find(".longitude").First().Text())
	if err != nil {
		return facts, &model.ParseError{Source: SourceName, Field: "longitude", Err: err}
	}

	box := readInfobox(doc)
	facts.Latitude = lat
	facts.Longitude = lon
	facts.Country = box.country()
	facts.Population = box.population()
	facts.TimezoneAbbr = box.timezoneAbbr()
	return facts, nil
}

// ExtractPopulation reads only the population figure
func ExtractPopulation(doc *goquery.Document) int64 {
	return readInfobox(doc).population()
}
