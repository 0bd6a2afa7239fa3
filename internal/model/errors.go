package model

import "fmt"

// ParseError reports an expected field or pattern missing from a fetched document
type ParseError struct {
	Source string
	Field  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: cannot parse %s: %v", e.Source, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: cannot parse %s", e.Source, e.Field)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LookupError reports a failed call to an external source
type LookupError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *LookupError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s lookup failed (status %d): %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s lookup failed: %v", e.Source, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// NotFoundError reports a city absent from storage that could not be on-boarded
type NotFoundError struct {
	City string
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("city %q not in storage: %v", e.City, e.Err)
	}
	return fmt.Sprintf("city %q not in storage", e.City)
}

func (e *NotFoundError) Unwrap() error { return e.Err }
