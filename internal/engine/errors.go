package engine

import "fmt"

// ConfigurationError marks a run configuration that cannot produce a valid
// analysis: an unknown currency code or selector weights that do not sum to
// one. It is fatal before any row is processed.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

func configErrorf(format string, args ...interface{}) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// CapacityExceededError is returned when a join fans out beyond the
// configured row bound. The run fails fast with the offending count instead
// of degrading silently.
type CapacityExceededError struct {
	Stage string
	Rows  int
	Limit int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("capacity exceeded in %s: %d rows over limit %d", e.Stage, e.Rows, e.Limit)
}

// SchemaViolationError is returned when a required key column is missing
// entirely from an input table. Per-row nulls are data, not schema errors.
type SchemaViolationError struct {
	Table  string
	Column string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation: table %s is missing required column %s", e.Table, e.Column)
}
