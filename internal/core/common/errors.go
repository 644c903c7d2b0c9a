package common

import "fmt"

// ValidationError reports a source record that cannot be normalized.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// ResolutionError reports a sample whose resolution could not be accepted:
// an id outside the offered candidate set, a malformed verdict, or an empty
// candidate set.
type ResolutionError struct {
	Sample string
	Output string
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolution of %q rejected: %s (arbiter output %q)", e.Sample, e.Reason, e.Output)
}

// MergeIntegrityError reports edge rows whose endpoints were absent from the
// graph at merge time.
type MergeIntegrityError struct {
	Op      string
	Missing int
}

func (e *MergeIntegrityError) Error() string {
	return fmt.Sprintf("%s: %d edge rows skipped, endpoint nodes missing", e.Op, e.Missing)
}

// ExternalDependencyError wraps a failure from an external system (the Nobel
// API, the embedder, Neo4j) after retries were exhausted.
type ExternalDependencyError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *ExternalDependencyError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *ExternalDependencyError) Unwrap() error {
	return e.Err
}
