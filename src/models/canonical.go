package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Invert flips income to expense and back. Used when a review decision
// reports that a vendor export carried the opposite sign convention.
func (t TransactionType) Invert() TransactionType {
	if t == TypeIncome {
		return TypeExpense
	}
	return TypeIncome
}

// CanonicalTransaction is the unified, intermediate representation of one
// CSV ledger row. The parser populates every field; nothing dynamically
// typed survives past the parsing boundary. Amount is always non-negative,
// with TransactionType carrying the sign information.
type CanonicalTransaction struct {
	TransactionDate  time.Time       `json:"transaction_date"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	Category         string          `json:"category"`
	TransactionType  TransactionType `json:"transaction_type"`
	PropertyNameHint string          `json:"property_name_hint,omitempty"`
}

// DateString renders the transaction date the way the datastore keys it.
func (t CanonicalTransaction) DateString() string {
	return t.TransactionDate.Format("2006-01-02")
}

// SignedAmount applies the type's sign convention for persistence.
func (t CanonicalTransaction) SignedAmount() decimal.Decimal {
	if t.TransactionType == TypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// CandidateMatch is a fuzzy suggestion for an unmatched CSV property name.
type CandidateMatch struct {
	Property   Property `json:"property"`
	Confidence float64  `json:"confidence"`
}

// UnmatchedGroup collects the transactions sharing one unresolved CSV
// property name, plus at most one qualifying candidate. Groups are held in
// an ephemeral review session between upload and review; they are never
// persisted directly.
type UnmatchedGroup struct {
	CSVPropertyName string                 `json:"csv_property_name"`
	Transactions    []CanonicalTransaction `json:"transactions"`
	Candidates      []CandidateMatch       `json:"candidate_matches"`
}
