package sqlxrepos

import (
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const (
	pqUniqueViolation   = "23505"
	pqInvalidTextSyntax = "22P02" // e.g. malformed uuid in a text parameter
)

// uniqueViolation returns the violated constraint name, or "".
func uniqueViolation(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return pqErr.Constraint
	}
	return ""
}

// isInvalidID reports whether err is the driver rejecting a malformed id
// value; callers treat those ids as simply not found.
func isInvalidID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqInvalidTextSyntax
}
