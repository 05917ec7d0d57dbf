package services

import (
	"context"
	"io"

	"github.com/shopspring/decimal"
	"github.com/username/rentfolio/backend/src/models"
)

// CreateNewProperty is the sentinel property id a review decision uses to
// request creation of a property instead of mapping to an existing one.
const CreateNewProperty = "CREATE_NEW"

// UploadSummary describes the rows persisted by an upload.
type UploadSummary struct {
	TransactionCount int             `json:"transactionCount"`
	DateRangeStart   string          `json:"dateRangeStart,omitempty"`
	DateRangeEnd     string          `json:"dateRangeEnd,omitempty"`
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpenses    decimal.Decimal `json:"totalExpenses"`

	// Rows whose date could not be parsed and defaulted to upload time.
	DatesDefaulted int `json:"datesDefaulted,omitempty"`
}

// UploadResult is the synchronous response to a CSV upload. Either the
// upload fully succeeded (NeedsReview false, Summary covers every row), or
// exactly-matched rows were persisted and the rest wait in a review session
// the caller must resolve.
type UploadResult struct {
	NeedsReview     bool                    `json:"needsReview"`
	SessionID       string                  `json:"sessionId,omitempty"`
	Summary         UploadSummary           `json:"summary"`
	UnmatchedGroups []models.UnmatchedGroup `json:"unmatchedGroups,omitempty"`
}

type UploadService interface {
	ProcessUpload(ctx context.Context, fileReader io.Reader, customerID, format string) (*UploadResult, error)
	GetReviewSession(customerID, sessionID string) ([]models.UnmatchedGroup, error)
}

// ReviewItem is one decision for one unmatched group. Transactions may be
// round-tripped inline by the caller; when the review session is still
// alive the server-held copy is authoritative.
type ReviewItem struct {
	CSVPropertyName string                        `json:"csvPropertyName"`
	Transactions    []models.CanonicalTransaction `json:"transactions,omitempty"`
	PropertyID      string                        `json:"propertyId"`
	NewPropertyName string                        `json:"newPropertyName,omitempty"`
	InvertSign      bool                          `json:"invertSign,omitempty"`
}

// ReviewResult aggregates per-group outcomes. One group's failure never
// aborts the remaining groups.
type ReviewResult struct {
	Processed int      `json:"processed"`
	Errors    []string `json:"errors"`
}

type ReviewService interface {
	ResolveGroups(ctx context.Context, customerID, sessionID string, items []ReviewItem) (*ReviewResult, error)
}

// GeneratedReport is the product of one report generation: the public URL
// of the stored PDF plus the raw bytes for the caller to attach or stream.
type GeneratedReport struct {
	URL string
	PDF []byte
}

type ReportService interface {
	GenerateReport(ctx context.Context, customerID, propertyID string, month, year int) (*GeneratedReport, error)
}

// BatchItemResult is one line of the batch breakdown.
type BatchItemResult struct {
	Customer string `json:"customer"`
	Property string `json:"property,omitempty"`
	Status   string `json:"status"` // success | skipped | failed | completed
	Reason   string `json:"reason,omitempty"`
	Error    string `json:"error,omitempty"`
}

// BatchResult is the complete status report of one batch invocation. The
// batch always returns a breakdown; per-item failures never escape it.
type BatchResult struct {
	Processed int               `json:"processed"`
	HasMore   bool              `json:"hasMore"`
	Succeeded int               `json:"succeeded"`
	Skipped   int               `json:"skipped"`
	Failed    int               `json:"failed"`
	Results   []BatchItemResult `json:"results"`
}

type BatchService interface {
	RunMonthlyReports(ctx context.Context) (*BatchResult, error)
}

// ReportMailer delivers a generated statement. A send failure fails the
// operation for that item only.
type ReportMailer interface {
	SendReportEmail(to, subject, htmlBody string, attachment []byte, attachmentName string) error
}
