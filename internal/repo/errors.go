package repo

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrEmailTaken  = errors.New("email already registered")
	ErrActiveRound = errors.New("guard already has an active round")
	ErrActiveShift = errors.New("guard already has an active shift")
	// ErrNotActive is returned when closing a round or shift that is no longer active.
	ErrNotActive = errors.New("not active")
)

// DefaultListLimit and MaxListLimit bound every listing.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// isUniqueViolation reports a postgres unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// validID reports whether id can be a primary key. Anything else cannot exist,
// so callers answer ErrNotFound without asking the database.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func newID() string {
	return uuid.NewString()
}

// nonNil keeps empty arrays serialized as [] rather than null.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
