package shared

import "fmt"

// ValidationError rejects user input that is missing a required field.
// The operation that returns it has not mutated or persisted anything.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SchemaError rejects imported data whose columns do not match the
// expected schema. Imports fail wholesale; there are no partial imports.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("import is missing required columns: %v", e.Missing)
}

// PersistenceError reports a backing-store write failure. In-memory state
// keeps the attempted new value and is NOT rolled back, so memory and disk
// may diverge until the next successful save.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
