package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/username/rentfolio/backend/src/logger"
	"github.com/username/rentfolio/backend/src/oplog"
	"github.com/username/rentfolio/backend/src/utils"
)

type batchServiceImpl struct {
	reportService ReportService
	mailer        ReportMailer
	opsLog        oplog.Sink
	batchSize     int
	firstNErrors  int
	now           func() time.Time
}

func NewBatchService(reportService ReportService, mailer ReportMailer, opsLog oplog.Sink, batchSize, firstNErrors int) BatchService {
	return &batchServiceImpl{
		reportService: reportService,
		mailer:        mailer,
		opsLog:        opsLog,
		batchSize:     batchSize,
		firstNErrors:  firstNErrors,
		now:           time.Now,
	}
}

// RunMonthlyReports processes one bounded slice of active customers that
// have not yet been handled this calendar month, generating and emailing
// the previous month's statement per property. One property's failure
// never aborts its siblings; the batch always returns a full breakdown.
// HasMore signals the cron caller to re-invoke for the remaining slice.
func (s *batchServiceImpl) RunMonthlyReports(ctx context.Context) (*BatchResult, error) {
	now := s.now()
	currentMonth := int(now.Month())
	currentYear := now.Year()
	reportMonth, reportYear := utils.PreviousMonth(currentMonth, currentYear)

	customers, err := listActiveCustomersDue(currentMonth, currentYear, s.batchSize)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{
		Processed: len(customers),
		HasMore:   len(customers) == s.batchSize,
		Results:   []BatchItemResult{},
	}
	if len(customers) == 0 {
		logger.L.Info("Monthly report batch: all customers processed for this month")
		return result, nil
	}

	logger.L.Info("Monthly report batch START", "customers", len(customers),
		"reportMonth", reportMonth, "reportYear", reportYear)

	for _, customer := range customers {
		properties, err := listProperties(customer.ID)
		if err != nil {
			result.Failed++
			result.Results = append(result.Results, BatchItemResult{
				Customer: customer.CompanyName, Status: "failed", Error: err.Error(),
			})
			continue
		}

		if len(properties) == 0 {
			result.Skipped++
			result.Results = append(result.Results, BatchItemResult{
				Customer: customer.CompanyName, Status: "skipped", Reason: "no_properties",
			})
			markCustomerProcessed(customer.ID, currentMonth, currentYear)
			continue
		}

		for _, property := range properties {
			item := s.processProperty(ctx, customer.CompanyName, customer.ContactEmail,
				customer.ID, property.ID, property.PropertyName, reportMonth, reportYear)
			switch item.Status {
			case "success":
				result.Succeeded++
			case "skipped":
				result.Skipped++
			default:
				result.Failed++
			}
			result.Results = append(result.Results, item)
		}

		markCustomerProcessed(customer.ID, currentMonth, currentYear)
		result.Results = append(result.Results, BatchItemResult{
			Customer: customer.CompanyName, Status: "completed",
		})
	}

	s.recordSummary(ctx, result, reportMonth, reportYear)
	logger.L.Info("Monthly report batch END", "processed", result.Processed,
		"succeeded", result.Succeeded, "skipped", result.Skipped, "failed", result.Failed,
		"hasMore", result.HasMore)
	return result, nil
}

// processProperty generates and delivers one statement. Every error is
// caught and classified here so it surfaces in the results list instead of
// escaping the batch.
func (s *batchServiceImpl) processProperty(ctx context.Context, companyName, contactEmail, customerID, propertyID, propertyName string, month, year int) BatchItemResult {
	item := BatchItemResult{Customer: companyName, Property: propertyName}

	report, err := s.reportService.GenerateReport(ctx, customerID, propertyID, month, year)
	if errors.Is(err, ErrNoDataForPeriod) {
		item.Status = "skipped"
		item.Reason = "no_data_in_period"
		return item
	}
	if err != nil {
		logger.L.Error("Batch report generation failed", "customerID", customerID,
			"propertyID", propertyID, "error", err)
		item.Status = "failed"
		item.Error = err.Error()
		s.emit(ctx, oplog.EventError,
			fmt.Sprintf("Report generation failed for %s (%s)", propertyName, companyName),
			map[string]any{"customerID": customerID, "propertyID": propertyID, "error": err.Error()})
		return item
	}

	subject := fmt.Sprintf("Monthly Statement: %s", propertyName)
	htmlBody := fmt.Sprintf("<p>Here is your automated monthly statement for %d/%d.</p>", month, year)
	attachmentName := fmt.Sprintf("Statement_%d_%d.pdf", year, month)
	if err := s.mailer.SendReportEmail(contactEmail, subject, htmlBody, report.PDF, attachmentName); err != nil {
		logger.L.Error("Batch report email failed", "customerID", customerID,
			"propertyID", propertyID, "error", err)
		item.Status = "failed"
		item.Error = fmt.Sprintf("email delivery failed: %v", err)
		s.emit(ctx, oplog.EventError,
			fmt.Sprintf("Statement email failed for %s (%s)", propertyName, companyName),
			map[string]any{"customerID": customerID, "propertyID": propertyID, "error": err.Error()})
		return item
	}

	item.Status = "success"
	s.emit(ctx, oplog.EventReportGenerated,
		fmt.Sprintf("Statement generated and emailed for %s (%s) %d/%d", propertyName, companyName, month, year),
		map[string]any{"customerID": customerID, "propertyID": propertyID, "url": report.URL})
	return item
}

// emit forwards an event to the operational log sink. Sink trouble never
// affects batch outcomes.
func (s *batchServiceImpl) emit(ctx context.Context, eventType oplog.EventType, message string, metadata map[string]any) {
	if err := s.opsLog.Log(ctx, eventType, message, metadata); err != nil {
		logger.L.Warn("Operational log sink rejected event", "type", string(eventType), "error", err)
	}
}

func (s *batchServiceImpl) recordSummary(ctx context.Context, result *BatchResult, reportMonth, reportYear int) {
	var firstErrors []string
	for _, item := range result.Results {
		if item.Error != "" && len(firstErrors) < s.firstNErrors {
			firstErrors = append(firstErrors, fmt.Sprintf("%s/%s: %s", item.Customer, item.Property, item.Error))
		}
	}

	message := fmt.Sprintf("Monthly report batch for %d/%d: %d customers, %d succeeded, %d skipped, %d failed",
		reportMonth, reportYear, result.Processed, result.Succeeded, result.Skipped, result.Failed)
	metadata := map[string]any{
		"reportMonth": reportMonth,
		"reportYear":  reportYear,
		"processed":   result.Processed,
		"succeeded":   result.Succeeded,
		"skipped":     result.Skipped,
		"failed":      result.Failed,
		"hasMore":     result.HasMore,
		"firstErrors": firstErrors,
	}

	metaJSON, _ := json.Marshal(metadata)
	insertAutomationRun("monthly_reports", message, string(metaJSON))

	s.emit(ctx, oplog.EventBatchCompleted, message, metadata)
}
