package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is the owner of properties and the recipient of generated
// statements. Account provisioning happens outside this service.
type Customer struct {
	ID              string `json:"id"`
	CompanyName     string `json:"company_name"`
	ContactEmail    string `json:"contact_email"`
	LogoURL         string `json:"logo_url,omitempty"`
	Status          string `json:"status"`
	LastReportMonth int    `json:"last_report_month,omitempty"`
	LastReportYear  int    `json:"last_report_year,omitempty"`
}

type Property struct {
	ID           string `json:"id"`
	CustomerID   string `json:"customer_id"`
	PropertyName string `json:"property_name"`
	Address      string `json:"address,omitempty"`
	UnitCount    int    `json:"unit_count"`
}

// PersistedTransaction is a ledger row bound to a property. Amount is
// signed by type: income positive, expense negative. Rows are never
// mutated after insertion; deleting a property cascades to its rows.
type PersistedTransaction struct {
	ID              int64           `json:"id"`
	CustomerID      string          `json:"customer_id"`
	PropertyID      string          `json:"property_id"`
	TransactionDate string          `json:"transaction_date"` // YYYY-MM-DD
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType TransactionType `json:"transaction_type"`
}

// ReportRecord tracks a generated owner statement. At most one exists per
// (customer, property, month, year); regeneration updates in place.
type ReportRecord struct {
	ID          int64     `json:"id"`
	CustomerID  string    `json:"customer_id"`
	PropertyID  string    `json:"property_id"`
	ReportMonth int       `json:"report_month"`
	ReportYear  int       `json:"report_year"`
	PdfURL      string    `json:"pdf_url"`
	StoragePath string    `json:"storage_path"`
	Status      string    `json:"status"`
	GeneratedAt time.Time `json:"generated_at"`
}

// AutomationRun is one row of the operational log for batch executions.
type AutomationRun struct {
	ID        int64     `json:"id"`
	RunType   string    `json:"run_type"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
