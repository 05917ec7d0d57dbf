package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

func TestProcessUploadAllMatched(t *testing.T) {
	customer := seedCustomer(t, "active")
	property := seedProperty(t, customer.ID, "123 Main St")

	csv := strings.Join([]string{
		"Date,Description,Category,Amount,Property",
		"03/01/2025,March rent,Rent,\"$1,000.00\",123 Main St",
		"03/15/2025,Pipe fix,Repairs,(150.00),123 Main St",
	}, "\n")

	svc := NewUploadService(cache.New(time.Minute, time.Minute), time.Minute)
	result, err := svc.ProcessUpload(context.Background(), strings.NewReader(csv), customer.ID, "buildium")
	if err != nil {
		t.Fatalf("ProcessUpload: %v", err)
	}

	if result.NeedsReview {
		t.Error("expected no review with every row exactly matched")
	}
	if result.Summary.TransactionCount != 2 {
		t.Errorf("transaction count = %d, want 2", result.Summary.TransactionCount)
	}
	if !result.Summary.TotalIncome.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("total income = %s, want 1000", result.Summary.TotalIncome)
	}
	if !result.Summary.TotalExpenses.Equal(decimal.NewFromInt(150)) {
		t.Errorf("total expenses = %s, want 150", result.Summary.TotalExpenses)
	}
	if result.Summary.DateRangeStart != "2025-03-01" || result.Summary.DateRangeEnd != "2025-03-15" {
		t.Errorf("date range = %s..%s", result.Summary.DateRangeStart, result.Summary.DateRangeEnd)
	}

	rows := countRows(t, `SELECT COUNT(*) FROM property_transactions WHERE property_id = ?`, property.ID)
	if rows != 2 {
		t.Errorf("persisted rows = %d, want 2", rows)
	}
}

func TestProcessUploadNeedsReview(t *testing.T) {
	customer := seedCustomer(t, "active")
	property := seedProperty(t, customer.ID, "123 Main St")

	csv := strings.Join([]string{
		"Date,Description,Category,Amount,Property",
		"03/01/2025,March rent,Rent,1000.00,123 Main St",
		"03/02/2025,April deposit,Rent,500.00,Mystery Manor",
	}, "\n")

	sessions := cache.New(time.Minute, time.Minute)
	svc := NewUploadService(sessions, time.Minute)
	result, err := svc.ProcessUpload(context.Background(), strings.NewReader(csv), customer.ID, "buildium")
	if err != nil {
		t.Fatalf("ProcessUpload: %v", err)
	}

	if !result.NeedsReview {
		t.Fatal("expected review for the unmatched property name")
	}
	if result.SessionID == "" {
		t.Fatal("expected a session id")
	}
	if len(result.UnmatchedGroups) != 1 || result.UnmatchedGroups[0].CSVPropertyName != "Mystery Manor" {
		t.Fatalf("unexpected unmatched groups: %+v", result.UnmatchedGroups)
	}
	// Matched rows persist even while the rest waits for review.
	if result.Summary.TransactionCount != 1 {
		t.Errorf("matched count = %d, want 1", result.Summary.TransactionCount)
	}
	rows := countRows(t, `SELECT COUNT(*) FROM property_transactions WHERE property_id = ?`, property.ID)
	if rows != 1 {
		t.Errorf("persisted rows = %d, want 1", rows)
	}

	groups, err := svc.GetReviewSession(customer.ID, result.SessionID)
	if err != nil {
		t.Fatalf("GetReviewSession: %v", err)
	}
	if len(groups) != 1 || len(groups[0].Transactions) != 1 {
		t.Errorf("session groups: %+v", groups)
	}
}

func TestProcessUploadRejectsEmptyFile(t *testing.T) {
	customer := seedCustomer(t, "active")
	svc := NewUploadService(cache.New(time.Minute, time.Minute), time.Minute)

	csv := "Date,Description,Category,Amount,Property\n"
	_, err := svc.ProcessUpload(context.Background(), strings.NewReader(csv), customer.ID, "appfolio")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for a file with no transactions, got %v", err)
	}
}

func TestProcessUploadUnknownFormat(t *testing.T) {
	customer := seedCustomer(t, "active")
	svc := NewUploadService(cache.New(time.Minute, time.Minute), time.Minute)

	_, err := svc.ProcessUpload(context.Background(), strings.NewReader("x"), customer.ID, "yardi")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown format, got %v", err)
	}
}

func TestProcessUploadUnknownCustomer(t *testing.T) {
	svc := NewUploadService(cache.New(time.Minute, time.Minute), time.Minute)
	_, err := svc.ProcessUpload(context.Background(), strings.NewReader("x"), "no-such-customer", "appfolio")
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestGetReviewSessionExpired(t *testing.T) {
	customer := seedCustomer(t, "active")
	svc := NewUploadService(cache.New(time.Minute, time.Minute), time.Minute)
	if _, err := svc.GetReviewSession(customer.ID, "gone"); !errors.Is(err, ErrReviewSessionNotFound) {
		t.Fatalf("expected ErrReviewSessionNotFound, got %v", err)
	}
}
