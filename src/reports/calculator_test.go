package reports

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/username/rentfolio/backend/src/models"
)

func row(category string, amount float64, txType models.TransactionType) models.PersistedTransaction {
	return models.PersistedTransaction{
		TransactionDate: "2025-03-15",
		Category:        category,
		Description:     category,
		Amount:          decimal.NewFromFloat(amount),
		TransactionType: txType,
	}
}

func TestAggregate(t *testing.T) {
	transactions := []models.PersistedTransaction{
		row("Rent", 1000, models.TypeIncome),
		row("Late Fee", 50, models.TypeIncome),
		row("Plumbing Repair", -200, models.TypeExpense),
	}

	agg := Aggregate(transactions)

	if !agg.TotalIncome.Equal(decimal.NewFromInt(1050)) {
		t.Errorf("TotalIncome = %s, want 1050", agg.TotalIncome)
	}
	if !agg.TotalExpenses.Equal(decimal.NewFromInt(200)) {
		t.Errorf("TotalExpenses = %s, want 200 (absolute)", agg.TotalExpenses)
	}
	if !agg.NetOperatingIncome.Equal(decimal.NewFromInt(850)) {
		t.Errorf("NetOperatingIncome = %s, want 850", agg.NetOperatingIncome)
	}
	if math.Abs(agg.ExpenseRatio-19.05) > 0.01 {
		t.Errorf("ExpenseRatio = %v, want ~19.05", agg.ExpenseRatio)
	}
	if math.Abs(agg.NetMargin-80.95) > 0.01 {
		t.Errorf("NetMargin = %v, want ~80.95", agg.NetMargin)
	}

	if !agg.IncomeByCategory["Rent Income"].Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Rent Income bucket = %s", agg.IncomeByCategory["Rent Income"])
	}
	if !agg.IncomeByCategory["Late Fees"].Equal(decimal.NewFromInt(50)) {
		t.Errorf("Late Fees bucket = %s", agg.IncomeByCategory["Late Fees"])
	}
	if !agg.ExpenseByCategory["Maintenance & Repairs"].Equal(decimal.NewFromInt(200)) {
		t.Errorf("Maintenance & Repairs bucket = %s", agg.ExpenseByCategory["Maintenance & Repairs"])
	}
}

func TestAggregateZeroIncome(t *testing.T) {
	agg := Aggregate([]models.PersistedTransaction{
		row("Insurance", -300, models.TypeExpense),
	})
	if agg.ExpenseRatio != 0 || agg.NetMargin != 0 {
		t.Errorf("ratios must stay zero without income, got %v / %v", agg.ExpenseRatio, agg.NetMargin)
	}
	if !agg.NetOperatingIncome.Equal(decimal.NewFromInt(-300)) {
		t.Errorf("NetOperatingIncome = %s, want -300", agg.NetOperatingIncome)
	}
}

func TestAggregateDeterministic(t *testing.T) {
	transactions := []models.PersistedTransaction{
		row("Rent", 500, models.TypeIncome),
		row("Rent", 500, models.TypeIncome),
		row("Lawn care", -120, models.TypeExpense),
	}
	first := Aggregate(transactions)
	second := Aggregate(transactions)
	if !first.TotalIncome.Equal(second.TotalIncome) || !first.NetOperatingIncome.Equal(second.NetOperatingIncome) {
		t.Error("aggregation of the same input must be identical")
	}
	if !first.ExpenseByCategory["Landscaping"].Equal(decimal.NewFromInt(120)) {
		t.Errorf("Landscaping bucket = %s", first.ExpenseByCategory["Landscaping"])
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		category string
		txType   models.TransactionType
		want     string
	}{
		{"Monthly Rent", models.TypeIncome, "Rent Income"},
		{"Late charge fee", models.TypeIncome, "Late Fees"},
		{"Parking", models.TypeIncome, "Other Income"},
		{"HVAC repair", models.TypeExpense, "Maintenance & Repairs"},
		{"Water & sewer", models.TypeExpense, "Utilities"},
		{"Management fee", models.TypeExpense, "Property Management Fees"},
		{"Landlord insurance", models.TypeExpense, "Insurance"},
		{"Garden service", models.TypeExpense, "Landscaping"},
		{"County tax", models.TypeExpense, "Property Taxes"},
		{"HOA dues", models.TypeExpense, "HOA Fees"},
		{"Miscellaneous", models.TypeExpense, "Other Expenses"},
	}
	for _, tt := range tests {
		if got := NormalizeCategory(tt.category, tt.txType); got != tt.want {
			t.Errorf("NormalizeCategory(%q, %s) = %q, want %q", tt.category, tt.txType, got, tt.want)
		}
	}
}
