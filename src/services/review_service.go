package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/patrickmn/go-cache"
	"github.com/username/rentfolio/backend/src/database"
	"github.com/username/rentfolio/backend/src/logger"
	"github.com/username/rentfolio/backend/src/models"
)

type reviewServiceImpl struct {
	reviewSessions *cache.Cache
}

func NewReviewService(reviewSessions *cache.Cache) ReviewService {
	return &reviewServiceImpl{reviewSessions: reviewSessions}
}

// ResolveGroups finalizes unmatched groups into persisted transactions.
// Each decision maps its group to an existing property or creates one, with
// optional sign inversion when the vendor export carried the opposite sign
// convention. Groups fail independently: an insert error is recorded and
// the remaining groups still process.
func (s *reviewServiceImpl) ResolveGroups(ctx context.Context, customerID, sessionID string, items []ReviewItem) (*ReviewResult, error) {
	if _, err := getCustomer(customerID); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no review items submitted", ErrValidation)
	}

	// The server-held session is authoritative when alive; inline
	// transactions are the round-trip fallback after expiry.
	sessionGroups := make(map[string][]models.CanonicalTransaction)
	if sessionID != "" {
		if cached, found := s.reviewSessions.Get(sessionKey(customerID, sessionID)); found {
			for _, group := range cached.([]models.UnmatchedGroup) {
				sessionGroups[group.CSVPropertyName] = group.Transactions
			}
		}
	}

	result := &ReviewResult{Errors: []string{}}
	for _, item := range items {
		transactions := item.Transactions
		if held, ok := sessionGroups[item.CSVPropertyName]; ok {
			transactions = held
		}

		n, err := s.resolveGroup(customerID, item, transactions)
		if err != nil {
			logger.L.Error("Review group failed", "customerID", customerID,
				"csvPropertyName", item.CSVPropertyName, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", item.CSVPropertyName, err))
			continue
		}
		result.Processed += n
	}

	if sessionID != "" {
		s.reviewSessions.Delete(sessionKey(customerID, sessionID))
	}

	logger.L.Info("Review resolution complete", "customerID", customerID,
		"processed", result.Processed, "failedGroups", len(result.Errors))
	return result, nil
}

func (s *reviewServiceImpl) resolveGroup(customerID string, item ReviewItem, transactions []models.CanonicalTransaction) (int, error) {
	if len(transactions) == 0 {
		return 0, fmt.Errorf("group has no transactions")
	}

	property, err := s.resolveTargetProperty(customerID, item)
	if err != nil {
		return 0, err
	}

	rows := make([]models.CanonicalTransaction, len(transactions))
	for i, tx := range transactions {
		// Amounts arriving via JSON round-trip may have been encoded as
		// strings; decimal handles both forms, so by now tx.Amount is a
		// clean non-negative value and only the sign needs attention.
		if item.InvertSign {
			tx.TransactionType = tx.TransactionType.Invert()
		}
		tx.Amount = tx.Amount.Abs()
		rows[i] = tx
	}

	dbTx, err := database.DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := insertCanonicalTransactions(dbTx, customerID, property.ID, rows); err != nil {
		return 0, err
	}
	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transactions: %w", err)
	}
	return len(rows), nil
}

// resolveTargetProperty maps a decision to a property record. CREATE_NEW
// checks for an existing property of the same name first so repeated
// submissions do not duplicate properties under one customer.
func (s *reviewServiceImpl) resolveTargetProperty(customerID string, item ReviewItem) (*models.Property, error) {
	if item.PropertyID != CreateNewProperty {
		return getProperty(customerID, item.PropertyID)
	}

	name := strings.TrimSpace(item.NewPropertyName)
	if name == "" {
		name = item.CSVPropertyName
	}
	if name == "" {
		return nil, fmt.Errorf("%w: new property requires a name", ErrValidation)
	}

	existing, err := findPropertyByName(customerID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return createProperty(customerID, name, 1)
}
