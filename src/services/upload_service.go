package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/username/rentfolio/backend/src/database"
	"github.com/username/rentfolio/backend/src/logger"
	"github.com/username/rentfolio/backend/src/matching"
	"github.com/username/rentfolio/backend/src/models"
	"github.com/username/rentfolio/backend/src/parsers"
)

type uploadServiceImpl struct {
	reviewSessions *cache.Cache
	sessionTTL     time.Duration
}

func NewUploadService(reviewSessions *cache.Cache, sessionTTL time.Duration) UploadService {
	return &uploadServiceImpl{
		reviewSessions: reviewSessions,
		sessionTTL:     sessionTTL,
	}
}

func sessionKey(customerID, sessionID string) string {
	return fmt.Sprintf("review_session_%s_%s", customerID, sessionID)
}

// ProcessUpload runs the ingestion pipeline for one CSV file: parse into
// canonical transactions, resolve property hints against the customer's
// properties, persist the exactly-matched rows in a single database
// transaction, and park everything else in an ephemeral review session.
func (s *uploadServiceImpl) ProcessUpload(ctx context.Context, fileReader io.Reader, customerID, format string) (*UploadResult, error) {
	overallStartTime := time.Now()
	logger.L.Info("ProcessUpload START", "customerID", customerID, "format", format)

	if _, err := getCustomer(customerID); err != nil {
		return nil, err
	}

	parser, err := parsers.GetParser(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	parsed, err := parser.Parse(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	if len(parsed.Transactions) == 0 {
		return nil, fmt.Errorf("%w: no valid transactions found in file", ErrValidation)
	}

	properties, err := listProperties(customerID)
	if err != nil {
		return nil, err
	}

	matchResult := matching.Match(parsed.Transactions, properties)

	// Matched rows persist atomically: a single insert failure aborts the
	// whole upload with no partial effects.
	if len(matchResult.Matched) > 0 {
		dbTx, err := database.DB.Begin()
		if err != nil {
			return nil, fmt.Errorf("%w: beginning database transaction: %v", ErrPersistenceFailed, err)
		}
		defer dbTx.Rollback()

		for _, m := range groupMatchedByProperty(matchResult.Matched) {
			if err := insertCanonicalTransactions(dbTx, customerID, m.propertyID, m.transactions); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
			}
		}
		if err := dbTx.Commit(); err != nil {
			return nil, fmt.Errorf("%w: committing transactions: %v", ErrPersistenceFailed, err)
		}
	}

	result := &UploadResult{
		Summary: summarize(matchResult.Matched, parsed.DatesDefaulted),
	}

	if len(matchResult.Unmatched) > 0 {
		sessionID := uuid.NewString()
		s.reviewSessions.Set(sessionKey(customerID, sessionID), matchResult.Unmatched, s.sessionTTL)
		result.NeedsReview = true
		result.SessionID = sessionID
		result.UnmatchedGroups = matchResult.Unmatched
		logger.L.Info("Upload needs review", "customerID", customerID,
			"sessionID", sessionID, "unmatchedGroups", len(matchResult.Unmatched),
			"autoMatched", len(matchResult.Matched))
	}

	logger.L.Info("ProcessUpload END", "customerID", customerID,
		"persisted", len(matchResult.Matched), "datesDefaulted", parsed.DatesDefaulted,
		"duration", time.Since(overallStartTime))
	return result, nil
}

// GetReviewSession re-fetches the pending unmatched groups for a session,
// making the review step resumable until the session expires.
func (s *uploadServiceImpl) GetReviewSession(customerID, sessionID string) ([]models.UnmatchedGroup, error) {
	cached, found := s.reviewSessions.Get(sessionKey(customerID, sessionID))
	if !found {
		return nil, ErrReviewSessionNotFound
	}
	return cached.([]models.UnmatchedGroup), nil
}

type matchedGroup struct {
	propertyID   string
	transactions []models.CanonicalTransaction
}

// groupMatchedByProperty keeps one prepared-statement loop per property,
// preserving input row order within each group.
func groupMatchedByProperty(matched []matching.MatchedTransaction) []matchedGroup {
	index := make(map[string]int)
	var groups []matchedGroup
	for _, m := range matched {
		i, ok := index[m.PropertyID]
		if !ok {
			groups = append(groups, matchedGroup{propertyID: m.PropertyID})
			i = len(groups) - 1
			index[m.PropertyID] = i
		}
		groups[i].transactions = append(groups[i].transactions, m.Transaction)
	}
	return groups
}

func summarize(matched []matching.MatchedTransaction, datesDefaulted int) UploadSummary {
	summary := UploadSummary{
		TransactionCount: len(matched),
		TotalIncome:      decimal.Zero,
		TotalExpenses:    decimal.Zero,
		DatesDefaulted:   datesDefaulted,
	}
	for _, m := range matched {
		tx := m.Transaction
		if tx.TransactionType == models.TypeIncome {
			summary.TotalIncome = summary.TotalIncome.Add(tx.Amount)
		} else {
			summary.TotalExpenses = summary.TotalExpenses.Add(tx.Amount)
		}
		date := tx.DateString()
		if summary.DateRangeStart == "" || date < summary.DateRangeStart {
			summary.DateRangeStart = date
		}
		if summary.DateRangeEnd == "" || date > summary.DateRangeEnd {
			summary.DateRangeEnd = date
		}
	}
	return summary
}
