package services

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/username/rentfolio/backend/src/database"
	"github.com/username/rentfolio/backend/src/logger"
	"github.com/username/rentfolio/backend/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	database.InitDB(":memory:")
	// The pool would otherwise hand out fresh empty in-memory databases.
	database.DB.SetMaxOpenConns(1)
	os.Exit(m.Run())
}

func seedCustomer(t *testing.T, status string) *models.Customer {
	t.Helper()
	c := &models.Customer{
		ID:           uuid.NewString(),
		CompanyName:  "Test Property Co " + uuid.NewString()[:8],
		ContactEmail: "owner@example.com",
		Status:       status,
	}
	_, err := database.DB.Exec(
		`INSERT INTO customers (id, company_name, contact_email, status) VALUES (?, ?, ?, ?)`,
		c.ID, c.CompanyName, c.ContactEmail, c.Status)
	if err != nil {
		t.Fatalf("seeding customer: %v", err)
	}
	return c
}

func seedProperty(t *testing.T, customerID, name string) *models.Property {
	t.Helper()
	p, err := createProperty(customerID, name, 1)
	if err != nil {
		t.Fatalf("seeding property: %v", err)
	}
	return p
}

func seedTransaction(t *testing.T, customerID, propertyID, date, category string, amount float64, txType models.TransactionType) {
	t.Helper()
	_, err := database.DB.Exec(
		`INSERT INTO property_transactions (customer_id, property_id, transaction_date, category, description, amount, transaction_type)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		customerID, propertyID, date, category, category, amount, string(txType))
	if err != nil {
		t.Fatalf("seeding transaction: %v", err)
	}
}

func countRows(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	if err := database.DB.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	return n
}
