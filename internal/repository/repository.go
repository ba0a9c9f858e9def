package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// Sentinel errors returned by all repositories. The service layer maps
// them onto the engine's fault taxonomy.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// isUniqueViolation detects a primary-key or unique-index conflict from
// either the Postgres driver or the sqlite driver used in tests.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint")
}
