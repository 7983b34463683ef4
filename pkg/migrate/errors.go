package migrate

import "fmt"

// LookupError means a required id or codename could not be resolved in
// environment data. Per-item fatal: the item is dropped from its batch.
type LookupError struct {
	Entity     string // "asset", "taxonomy term", "workflow step", ...
	Identifier string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s %q could not be resolved", e.Entity, e.Identifier)
}

// TransformError means an element value did not have the shape its
// declared type requires. Per-item fatal.
type TransformError struct {
	ElementCodename string
	Reason          string
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("element %q: %s", e.ElementCodename, e.Reason)
}
