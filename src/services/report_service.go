package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/username/rentfolio/backend/src/logger"
	"github.com/username/rentfolio/backend/src/reports"
	"github.com/username/rentfolio/backend/src/storage"
	"github.com/username/rentfolio/backend/src/utils"
)

type reportServiceImpl struct {
	store storage.ObjectStore
}

func NewReportService(store storage.ObjectStore) ReportService {
	return &reportServiceImpl{store: store}
}

// GenerateReport produces the owner statement for one property and period:
// fetch property and customer branding, fetch the month's transactions,
// aggregate, render, store the PDF at its deterministic path, and upsert
// the report record. Safe to re-run: regeneration overwrites the stored
// object and refreshes the record instead of duplicating either.
func (s *reportServiceImpl) GenerateReport(ctx context.Context, customerID, propertyID string, month, year int) (*GeneratedReport, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month must be between 1 and 12, got %d", ErrValidation, month)
	}

	startTime := time.Now()
	property, err := getProperty(customerID, propertyID)
	if err != nil {
		return nil, err
	}
	customer, err := getCustomer(customerID)
	if err != nil {
		return nil, err
	}

	startDate, endDate := utils.MonthRange(month, year)
	transactions, err := fetchPropertyTransactions(propertyID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return nil, fmt.Errorf("%w: property %s, period %d/%d", ErrNoDataForPeriod, propertyID, month, year)
	}

	aggregate := reports.Aggregate(transactions)

	var logo []byte
	if customer.LogoURL != "" {
		logo = fetchLogo(ctx, customer.LogoURL)
	}

	pdfBytes, err := reports.RenderStatement(reports.StatementData{
		CompanyName:  customer.CompanyName,
		PropertyName: property.PropertyName,
		Logo:         logo,
		Month:        month,
		Year:         year,
		Aggregate:    aggregate,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	objectPath := storage.ReportObjectPath(customerID, propertyID, month, year)
	url, err := s.store.Upload(ctx, objectPath, pdfBytes, "application/pdf")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}

	// The PDF is already stored and reachable at this point; a record
	// failure loses the listing but not the statement, so it is logged
	// rather than failing the generation.
	if err := upsertReportRecord(customerID, propertyID, month, year, url, objectPath); err != nil {
		logger.L.Error("Failed to save report record", "customerID", customerID,
			"propertyID", propertyID, "month", month, "year", year, "error", err)
	}

	logger.L.Info("Report generated", "customerID", customerID, "propertyID", propertyID,
		"month", month, "year", year, "transactions", len(transactions),
		"pdfBytes", len(pdfBytes), "duration", time.Since(startTime))
	return &GeneratedReport{URL: url, PDF: pdfBytes}, nil
}

const maxLogoBytes = 2 << 20

// fetchLogo downloads the customer's logo for the statement header.
// Branding is optional: every failure is logged at warn level and the
// statement renders without the image.
func fetchLogo(ctx context.Context, url string) []byte {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		logger.L.Warn("Invalid customer logo URL", "url", url, "error", err)
		return nil
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.L.Warn("Failed to fetch customer logo", "url", url, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.L.Warn("Customer logo request rejected", "url", url, "status", resp.StatusCode)
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxLogoBytes))
	if err != nil {
		logger.L.Warn("Failed to read customer logo", "url", url, "error", err)
		return nil
	}
	return data
}
