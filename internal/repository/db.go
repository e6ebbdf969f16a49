package repository

import (
	"github.com/lib/pq"
)

// uniqueViolation reports whether err is a Postgres unique-constraint
// violation, optionally on the named constraint.
func uniqueViolation(err error, constraint string) bool {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return false
	}
	if pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
