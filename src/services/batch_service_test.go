package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/username/rentfolio/backend/src/database"
	"github.com/username/rentfolio/backend/src/oplog"
)

type mockReportService struct {
	errByProperty map[string]error
	generated     []string
}

func (m *mockReportService) GenerateReport(ctx context.Context, customerID, propertyID string, month, year int) (*GeneratedReport, error) {
	if err, ok := m.errByProperty[propertyID]; ok {
		return nil, err
	}
	m.generated = append(m.generated, propertyID)
	return &GeneratedReport{URL: "https://example.com/" + propertyID, PDF: []byte("%PDF-fake")}, nil
}

type mockMailer struct {
	sent     []string
	failWith error
}

func (m *mockMailer) SendReportEmail(to, subject, htmlBody string, attachment []byte, attachmentName string) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.sent = append(m.sent, to)
	return nil
}

type recordingSink struct {
	events []oplog.EventType
}

func (r *recordingSink) Log(ctx context.Context, eventType oplog.EventType, message string, metadata map[string]any) error {
	r.events = append(r.events, eventType)
	return nil
}

var batchNow = time.Date(2025, 4, 15, 8, 0, 0, 0, time.UTC)

// neutralizeExistingCustomers marks every previously seeded customer as
// already handled for the batch's current month so tests only see their
// own fixtures.
func neutralizeExistingCustomers(t *testing.T) {
	t.Helper()
	_, err := database.DB.Exec(`UPDATE customers SET last_report_month = ?, last_report_year = ?`,
		int(batchNow.Month()), batchNow.Year())
	if err != nil {
		t.Fatalf("neutralizing customers: %v", err)
	}
}

func newTestBatchService(reports ReportService, mailer ReportMailer, sink oplog.Sink, batchSize int) *batchServiceImpl {
	return &batchServiceImpl{
		reportService: reports,
		mailer:        mailer,
		opsLog:        sink,
		batchSize:     batchSize,
		firstNErrors:  5,
		now:           func() time.Time { return batchNow },
	}
}

func TestRunMonthlyReportsMixedOutcomes(t *testing.T) {
	neutralizeExistingCustomers(t)
	customer := seedCustomer(t, "active")
	good := seedProperty(t, customer.ID, "Good House")
	broken := seedProperty(t, customer.ID, "Broken House")
	empty := seedProperty(t, customer.ID, "Empty House")

	reports := &mockReportService{errByProperty: map[string]error{
		broken.ID: errors.New("render exploded"),
		empty.ID:  fmt.Errorf("%w: nothing there", ErrNoDataForPeriod),
	}}
	mailer := &mockMailer{}
	sink := &recordingSink{}

	svc := newTestBatchService(reports, mailer, sink, 10)
	result, err := svc.RunMonthlyReports(context.Background())
	if err != nil {
		t.Fatalf("RunMonthlyReports: %v", err)
	}

	if result.Processed != 1 {
		t.Errorf("processed customers = %d, want 1", result.Processed)
	}
	if result.Succeeded != 1 || result.Skipped != 1 || result.Failed != 1 {
		t.Errorf("counts = %d/%d/%d (success/skip/fail), want 1/1/1",
			result.Succeeded, result.Skipped, result.Failed)
	}
	if result.HasMore {
		t.Error("hasMore should be false below the batch size")
	}

	// One property failing never stops its siblings.
	if len(reports.generated) != 1 || reports.generated[0] != good.ID {
		t.Errorf("generated = %v, want only %s", reports.generated, good.ID)
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != customer.ContactEmail {
		t.Errorf("emails sent = %v", mailer.sent)
	}

	var haveCompleted, haveNoData bool
	for _, item := range result.Results {
		if item.Status == "completed" {
			haveCompleted = true
		}
		if item.Status == "skipped" && item.Reason == "no_data_in_period" {
			haveNoData = true
		}
	}
	if !haveCompleted || !haveNoData {
		t.Errorf("result breakdown incomplete: %+v", result.Results)
	}

	// Customer is marked handled for this month.
	refreshed, err := getCustomer(customer.ID)
	if err != nil {
		t.Fatalf("getCustomer: %v", err)
	}
	if refreshed.LastReportMonth != 4 || refreshed.LastReportYear != 2025 {
		t.Errorf("last report marker = %d/%d, want 4/2025", refreshed.LastReportMonth, refreshed.LastReportYear)
	}

	// One error event for the broken property, one generated event for the
	// good one, and the closing batch summary.
	wantEvents := []oplog.EventType{oplog.EventError, oplog.EventReportGenerated, oplog.EventBatchCompleted}
	if len(sink.events) != len(wantEvents) {
		t.Fatalf("ops log events = %v, want %v", sink.events, wantEvents)
	}
	for i, want := range wantEvents {
		if sink.events[i] != want {
			t.Errorf("event[%d] = %s, want %s", i, sink.events[i], want)
		}
	}

	runs, err := listAutomationRuns("monthly_reports", 1)
	if err != nil {
		t.Fatalf("listAutomationRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("automation runs = %d, want 1", len(runs))
	}
	if !strings.Contains(runs[0].Message, "1 succeeded, 1 skipped, 1 failed") {
		t.Errorf("run message = %q", runs[0].Message)
	}
	if runs[0].Metadata == "" {
		t.Error("expected run metadata JSON")
	}
}

func TestRunMonthlyReportsEmailFailure(t *testing.T) {
	neutralizeExistingCustomers(t)
	customer := seedCustomer(t, "active")
	seedProperty(t, customer.ID, "Mail Trouble House")

	svc := newTestBatchService(&mockReportService{}, &mockMailer{failWith: errors.New("smtp down")}, &recordingSink{}, 10)
	result, err := svc.RunMonthlyReports(context.Background())
	if err != nil {
		t.Fatalf("RunMonthlyReports: %v", err)
	}
	if result.Failed != 1 || result.Succeeded != 0 {
		t.Errorf("counts = %d failed / %d succeeded, want 1/0", result.Failed, result.Succeeded)
	}

	// Delivery failure still marks the customer so the batch makes
	// progress instead of retrying the same slice forever.
	refreshed, _ := getCustomer(customer.ID)
	if refreshed.LastReportMonth != 4 {
		t.Errorf("customer not marked processed after email failure")
	}
}

func TestRunMonthlyReportsNoProperties(t *testing.T) {
	neutralizeExistingCustomers(t)
	customer := seedCustomer(t, "active")

	svc := newTestBatchService(&mockReportService{}, &mockMailer{}, &recordingSink{}, 10)
	result, err := svc.RunMonthlyReports(context.Background())
	if err != nil {
		t.Fatalf("RunMonthlyReports: %v", err)
	}
	if result.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", result.Skipped)
	}
	if result.Results[0].Reason != "no_properties" {
		t.Errorf("reason = %q, want no_properties", result.Results[0].Reason)
	}

	refreshed, _ := getCustomer(customer.ID)
	if refreshed.LastReportMonth != 4 {
		t.Error("customer without properties must still be marked processed")
	}
}

func TestRunMonthlyReportsIgnoresInactiveCustomers(t *testing.T) {
	neutralizeExistingCustomers(t)
	inactive := seedCustomer(t, "inactive")
	seedProperty(t, inactive.ID, "Dormant House")

	svc := newTestBatchService(&mockReportService{}, &mockMailer{}, &recordingSink{}, 10)
	result, err := svc.RunMonthlyReports(context.Background())
	if err != nil {
		t.Fatalf("RunMonthlyReports: %v", err)
	}
	if result.Processed != 0 {
		t.Errorf("processed = %d, want 0 for inactive customers", result.Processed)
	}
}

func TestRunMonthlyReportsPagination(t *testing.T) {
	neutralizeExistingCustomers(t)
	for i := 0; i < 3; i++ {
		c := seedCustomer(t, "active")
		seedProperty(t, c.ID, fmt.Sprintf("Paged House %d", i))
	}

	svc := newTestBatchService(&mockReportService{}, &mockMailer{}, &recordingSink{}, 2)

	first, err := svc.RunMonthlyReports(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Processed != 2 || !first.HasMore {
		t.Fatalf("first run processed %d, hasMore %v; want 2, true", first.Processed, first.HasMore)
	}

	second, err := svc.RunMonthlyReports(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Processed != 1 {
		t.Fatalf("second run processed %d, want the remaining 1", second.Processed)
	}

	third, err := svc.RunMonthlyReports(context.Background())
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if third.Processed != 0 || third.HasMore {
		t.Errorf("third run should find nothing left, got %d / hasMore %v", third.Processed, third.HasMore)
	}
}
