package feed

import "fmt"

// SourceFetchError reports that one source could not be fetched or parsed.
// The aggregator absorbs it and carries on with the remaining sources.
type SourceFetchError struct {
	Source string
	Err    error
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceFetchError) Unwrap() error {
	return e.Err
}

// UnsupportedSelectorError is returned for a language or category that has
// no source set.
type UnsupportedSelectorError struct {
	Selector string
}

func (e *UnsupportedSelectorError) Error() string {
	return fmt.Sprintf("unsupported selector %q", e.Selector)
}

// EmptyResultError is returned when every source of a selector failed or
// returned nothing.
type EmptyResultError struct {
	Selector Selector
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("no news found for %s", e.Selector)
}
