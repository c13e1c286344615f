package store

import (
	"errors"
	"strings"
)

// ErrDuplicateKey is returned when an insert hits a unique index, most
// importantly the (household_id, generation_key) index that backstops
// generation idempotence across processes.
var ErrDuplicateKey = errors.New("duplicate key")

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
