package wikipedia

import (
	"fmt"
	"regexp"
	"strconv"
)

// degrees°minutes′[seconds″]hemisphere, e.g. 39°48′N or 52°31′12″N
var dmsPattern = regexp.MustCompile(`(\d+)°(\d+)′(?:(\d+(?:\.\d+)?)″)?([A-Za-z])`)

// ParseDMS converts a degrees/minutes/seconds string to decimal degrees.
// The hemisphere letter is returned as is; the value is always positive.
func ParseDMS(s string) (float64, byte, error) {
	m := dmsPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("no coordinate in %q", s)
	}

	deg, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, 0, err
	}
	minutes, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, 0, err
	}
	var sec float64
	if m[3] != "" {
		if sec, err = strconv.ParseFloat(m[3], 64); err != nil {
			return 0, 0, err
		}
	}

	return deg + minutes/60 + sec/3600, m[4][0], nil
}

// ParseLatitude parses a DMS latitude, south is negative
func ParseLatitude(s string) (float64, error) {
	return signed(s, 'N', 'S')
}

// ParseLongitude parses a DMS longitude, west is negative
func ParseLongitude(s string) (float64, error) {
	return signed(s, 'E', 'W')
}

func signed(s string, positive, negative byte) (float64, error) {
	value, hemisphere, err := ParseDMS(s)
	if err != nil {
		return 0, err
	}
	switch hemisphere {
	case positive:
		return value, nil
	case negative:
		return -value, nil
	default:
		return 0, fmt.Errorf("unexpected hemisphere %q in %q", hemisphere, s)
	}
}
