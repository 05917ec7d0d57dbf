package parsers

import (
	"io"

	"github.com/username/rentfolio/backend/src/models"
)

// ParseResult carries the parsed rows plus bookkeeping the upload summary
// reports back to the caller.
type ParseResult struct {
	Transactions []models.CanonicalTransaction

	// DatesDefaulted counts rows whose date could not be parsed and was
	// replaced with the current time. Surfaced instead of silently
	// swallowed so period bucketing corruption is at least visible.
	DatesDefaulted int
}

type Parser interface {
	Parse(file io.Reader) (*ParseResult, error)
}
