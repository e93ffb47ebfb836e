package rebalance

import "fmt"

// ConfigurationError reports an invalid account or portfolio configuration.
// It is detected eagerly, before a simulation begins, and is fatal to the run.
type ConfigurationError struct {
	Field  string // the offending field or constraint
	Reason string // human readable description including the offending values
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

func configErrorf(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// DataCoverageError reports that the requested date range is not covered by
// the market feed.
type DataCoverageError struct {
	Reason string
}

func (e *DataCoverageError) Error() string {
	return fmt.Sprintf("market data coverage: %s", e.Reason)
}

func coverageErrorf(format string, args ...any) *DataCoverageError {
	return &DataCoverageError{Reason: fmt.Sprintf(format, args...)}
}
