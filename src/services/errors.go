package services

import "errors"

var (
	// ErrValidation covers rejected input: missing file/format, empty
	// uploads, out-of-range report periods. No partial effects.
	ErrValidation = errors.New("validation failed")

	ErrParsingFailed = errors.New("csv parsing failed")

	ErrCustomerNotFound = errors.New("customer not found")
	ErrPropertyNotFound = errors.New("property not found")

	// ErrNoDataForPeriod is an expected outcome, not a true error:
	// callers classify it as "skipped" and never log it at error level.
	ErrNoDataForPeriod = errors.New("no transaction data found for this period")

	ErrPersistenceFailed = errors.New("datastore operation failed")
	ErrRenderFailed      = errors.New("report rendering failed")
	ErrStorageFailed     = errors.New("report upload failed")

	ErrReviewSessionNotFound = errors.New("review session not found or expired")
)
