package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/username/rentfolio/backend/src/database"
	"github.com/username/rentfolio/backend/src/logger"
	"github.com/username/rentfolio/backend/src/models"
)

func getCustomer(customerID string) (*models.Customer, error) {
	var c models.Customer
	var logoURL sql.NullString
	var lastMonth, lastYear sql.NullInt64
	err := database.DB.QueryRow(
		`SELECT id, company_name, contact_email, logo_url, status, last_report_month, last_report_year
		 FROM customers WHERE id = ?`, customerID,
	).Scan(&c.ID, &c.CompanyName, &c.ContactEmail, &logoURL, &c.Status, &lastMonth, &lastYear)
	if err == sql.ErrNoRows {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: querying customer %s: %v", ErrPersistenceFailed, customerID, err)
	}
	c.LogoURL = logoURL.String
	c.LastReportMonth = int(lastMonth.Int64)
	c.LastReportYear = int(lastYear.Int64)
	return &c, nil
}

func getProperty(customerID, propertyID string) (*models.Property, error) {
	var p models.Property
	var address sql.NullString
	err := database.DB.QueryRow(
		`SELECT id, customer_id, property_name, address, unit_count
		 FROM properties WHERE id = ? AND customer_id = ?`, propertyID, customerID,
	).Scan(&p.ID, &p.CustomerID, &p.PropertyName, &address, &p.UnitCount)
	if err == sql.ErrNoRows {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: querying property %s: %v", ErrPersistenceFailed, propertyID, err)
	}
	p.Address = address.String
	return &p, nil
}

func listProperties(customerID string) ([]models.Property, error) {
	rows, err := database.DB.Query(
		`SELECT id, customer_id, property_name, address, unit_count
		 FROM properties WHERE customer_id = ? ORDER BY property_name ASC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying properties for customer %s: %v", ErrPersistenceFailed, customerID, err)
	}
	defer rows.Close()

	var properties []models.Property
	for rows.Next() {
		var p models.Property
		var address sql.NullString
		if err := rows.Scan(&p.ID, &p.CustomerID, &p.PropertyName, &address, &p.UnitCount); err != nil {
			return nil, fmt.Errorf("%w: scanning property row: %v", ErrPersistenceFailed, err)
		}
		p.Address = address.String
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating property rows: %v", ErrPersistenceFailed, err)
	}
	return properties, nil
}

func findPropertyByName(customerID, name string) (*models.Property, error) {
	var p models.Property
	var address sql.NullString
	err := database.DB.QueryRow(
		`SELECT id, customer_id, property_name, address, unit_count
		 FROM properties WHERE customer_id = ? AND property_name = ?`, customerID, name,
	).Scan(&p.ID, &p.CustomerID, &p.PropertyName, &address, &p.UnitCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: querying property by name %q: %v", ErrPersistenceFailed, name, err)
	}
	p.Address = address.String
	return &p, nil
}

func createProperty(customerID, name string, unitCount int) (*models.Property, error) {
	p := &models.Property{
		ID:           uuid.NewString(),
		CustomerID:   customerID,
		PropertyName: name,
		UnitCount:    unitCount,
	}
	_, err := database.DB.Exec(
		`INSERT INTO properties (id, customer_id, property_name, unit_count) VALUES (?, ?, ?, ?)`,
		p.ID, p.CustomerID, p.PropertyName, p.UnitCount)
	if err != nil {
		return nil, fmt.Errorf("%w: inserting property %q: %v", ErrPersistenceFailed, name, err)
	}
	return p, nil
}

// insertCanonicalTransactions binds canonical transactions to a property
// inside an open database transaction. Amounts are persisted signed by
// type: income positive, expense negative.
func insertCanonicalTransactions(dbTx *sql.Tx, customerID, propertyID string, transactions []models.CanonicalTransaction) error {
	stmt, err := dbTx.Prepare(
		`INSERT INTO property_transactions (customer_id, property_id, transaction_date, category, description, amount, transaction_type)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for _, tx := range transactions {
		_, err := stmt.Exec(customerID, propertyID, tx.DateString(), tx.Category, tx.Description,
			tx.SignedAmount().InexactFloat64(), string(tx.TransactionType))
		if err != nil {
			return fmt.Errorf("error inserting transaction (%s %s): %w", tx.DateString(), tx.Description, err)
		}
	}
	return nil
}

// fetchPropertyTransactions returns the persisted rows for one property
// within [startDate, endDate], ordered for deterministic aggregation.
func fetchPropertyTransactions(propertyID, startDate, endDate string) ([]models.PersistedTransaction, error) {
	rows, err := database.DB.Query(
		`SELECT id, customer_id, property_id, transaction_date, category, description, amount, transaction_type
		 FROM property_transactions
		 WHERE property_id = ? AND transaction_date >= ? AND transaction_date <= ?
		 ORDER BY transaction_date ASC, id ASC`, propertyID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: querying transactions for property %s: %v", ErrPersistenceFailed, propertyID, err)
	}
	defer rows.Close()

	var transactions []models.PersistedTransaction
	for rows.Next() {
		var tx models.PersistedTransaction
		var amount float64
		var txType string
		if err := rows.Scan(&tx.ID, &tx.CustomerID, &tx.PropertyID, &tx.TransactionDate,
			&tx.Category, &tx.Description, &amount, &txType); err != nil {
			return nil, fmt.Errorf("%w: scanning transaction row: %v", ErrPersistenceFailed, err)
		}
		tx.Amount = decimal.NewFromFloat(amount)
		tx.TransactionType = models.TransactionType(txType)
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating transaction rows: %v", ErrPersistenceFailed, err)
	}
	return transactions, nil
}

// upsertReportRecord atomically inserts or refreshes the report record for
// one (customer, property, month, year). The UNIQUE index on that key plus
// ON CONFLICT DO UPDATE closes the read-then-write race a separate
// existence check would leave open.
func upsertReportRecord(customerID, propertyID string, month, year int, pdfURL, storagePath string) error {
	_, err := database.DB.Exec(
		`INSERT INTO reports (customer_id, property_id, report_month, report_year, pdf_url, storage_path, status, generated_at)
		 VALUES (?, ?, ?, ?, ?, ?, 'generated', CURRENT_TIMESTAMP)
		 ON CONFLICT(customer_id, property_id, report_month, report_year)
		 DO UPDATE SET pdf_url = excluded.pdf_url, storage_path = excluded.storage_path,
		               status = 'generated', generated_at = CURRENT_TIMESTAMP`,
		customerID, propertyID, month, year, pdfURL, storagePath)
	if err != nil {
		return fmt.Errorf("%w: upserting report record: %v", ErrPersistenceFailed, err)
	}
	return nil
}

// getReportRecord returns the statement record for one (customer, property,
// month, year), or nil when none was generated yet.
func getReportRecord(customerID, propertyID string, month, year int) (*models.ReportRecord, error) {
	var r models.ReportRecord
	var generatedAt string
	err := database.DB.QueryRow(
		`SELECT id, customer_id, property_id, report_month, report_year, pdf_url, storage_path, status, generated_at
		 FROM reports WHERE customer_id = ? AND property_id = ? AND report_month = ? AND report_year = ?`,
		customerID, propertyID, month, year,
	).Scan(&r.ID, &r.CustomerID, &r.PropertyID, &r.ReportMonth, &r.ReportYear,
		&r.PdfURL, &r.StoragePath, &r.Status, &generatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: querying report record: %v", ErrPersistenceFailed, err)
	}
	if ts, err := time.Parse("2006-01-02 15:04:05", generatedAt); err == nil {
		r.GeneratedAt = ts
	}
	return &r, nil
}

// listAutomationRuns returns the most recent batch run records, newest
// first.
func listAutomationRuns(runType string, limit int) ([]models.AutomationRun, error) {
	rows, err := database.DB.Query(
		`SELECT id, run_type, message, metadata, created_at
		 FROM automation_runs WHERE run_type = ? ORDER BY id DESC LIMIT ?`, runType, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: querying automation runs: %v", ErrPersistenceFailed, err)
	}
	defer rows.Close()

	var runs []models.AutomationRun
	for rows.Next() {
		var run models.AutomationRun
		var metadata sql.NullString
		var createdAt string
		if err := rows.Scan(&run.ID, &run.RunType, &run.Message, &metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scanning automation run row: %v", ErrPersistenceFailed, err)
		}
		run.Metadata = metadata.String
		if ts, err := time.Parse("2006-01-02 15:04:05", createdAt); err == nil {
			run.CreatedAt = ts
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating automation run rows: %v", ErrPersistenceFailed, err)
	}
	return runs, nil
}

func listActiveCustomersDue(currentMonth, currentYear, limit int) ([]models.Customer, error) {
	rows, err := database.DB.Query(
		`SELECT id, company_name, contact_email, logo_url, status, last_report_month, last_report_year
		 FROM customers
		 WHERE status = 'active'
		   AND (last_report_month IS NULL OR last_report_month != ? OR last_report_year IS NULL OR last_report_year != ?)
		 ORDER BY id ASC LIMIT ?`, currentMonth, currentYear, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: querying due customers: %v", ErrPersistenceFailed, err)
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		var logoURL sql.NullString
		var lastMonth, lastYear sql.NullInt64
		if err := rows.Scan(&c.ID, &c.CompanyName, &c.ContactEmail, &logoURL, &c.Status, &lastMonth, &lastYear); err != nil {
			return nil, fmt.Errorf("%w: scanning customer row: %v", ErrPersistenceFailed, err)
		}
		c.LogoURL = logoURL.String
		c.LastReportMonth = int(lastMonth.Int64)
		c.LastReportYear = int(lastYear.Int64)
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating customer rows: %v", ErrPersistenceFailed, err)
	}
	return customers, nil
}

func markCustomerProcessed(customerID string, month, year int) {
	_, err := database.DB.Exec(
		`UPDATE customers SET last_report_month = ?, last_report_year = ? WHERE id = ?`,
		month, year, customerID)
	if err != nil {
		logger.L.Error("Failed to mark customer as processed", "customerID", customerID, "error", err)
	}
}

func insertAutomationRun(runType, message, metadata string) {
	_, err := database.DB.Exec(
		`INSERT INTO automation_runs (run_type, message, metadata) VALUES (?, ?, ?)`,
		runType, message, metadata)
	if err != nil {
		logger.L.Error("Failed to record automation run", "runType", runType, "error", err)
	}
}
