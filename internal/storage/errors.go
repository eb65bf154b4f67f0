package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no record matches an id.
var ErrNotFound = errors.New("news record not found")

// PersistenceError reports a failed write. When returned by Gate.SaveNew no
// record of the batch was stored.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
