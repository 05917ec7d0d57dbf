package reports

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/rentfolio/backend/src/models"
)

// PeriodAggregate is the derived financial summary for one property and
// reporting period. It is recomputed on demand, never persisted: the same
// set of transactions always produces the same aggregate, which is what
// makes report regeneration safe.
type PeriodAggregate struct {
	IncomeByCategory   map[string]decimal.Decimal `json:"income"`
	ExpenseByCategory  map[string]decimal.Decimal `json:"expenses"`
	TotalIncome        decimal.Decimal            `json:"totalIncome"`
	TotalExpenses      decimal.Decimal            `json:"totalExpenses"`
	NetOperatingIncome decimal.Decimal            `json:"noi"`
	ExpenseRatio       float64                    `json:"expenseRatio"` // percent
	NetMargin          float64                    `json:"netMargin"`    // percent
}

// Aggregate buckets transactions by normalized category per type and
// computes the period totals and ratios. Amounts are summed as absolute
// values; the persisted sign convention is already encoded in the type.
func Aggregate(transactions []models.PersistedTransaction) PeriodAggregate {
	agg := PeriodAggregate{
		IncomeByCategory:  make(map[string]decimal.Decimal),
		ExpenseByCategory: make(map[string]decimal.Decimal),
		TotalIncome:       decimal.Zero,
		TotalExpenses:     decimal.Zero,
	}

	for _, tx := range transactions {
		amount := tx.Amount.Abs()
		if tx.TransactionType == models.TypeIncome {
			category := NormalizeCategory(tx.Category, models.TypeIncome)
			agg.IncomeByCategory[category] = agg.IncomeByCategory[category].Add(amount)
			agg.TotalIncome = agg.TotalIncome.Add(amount)
		} else {
			category := NormalizeCategory(tx.Category, models.TypeExpense)
			agg.ExpenseByCategory[category] = agg.ExpenseByCategory[category].Add(amount)
			agg.TotalExpenses = agg.TotalExpenses.Add(amount)
		}
	}

	agg.NetOperatingIncome = agg.TotalIncome.Sub(agg.TotalExpenses)
	if agg.TotalIncome.IsPositive() {
		hundred := decimal.NewFromInt(100)
		agg.ExpenseRatio = agg.TotalExpenses.Div(agg.TotalIncome).Mul(hundred).InexactFloat64()
		agg.NetMargin = agg.NetOperatingIncome.Div(agg.TotalIncome).Mul(hundred).InexactFloat64()
	}
	return agg
}

// NormalizeCategory buckets free-text vendor categories by keyword
// substring, first match wins, case-insensitive. Unrecognized categories
// land in the type's "Other" bucket.
func NormalizeCategory(category string, txType models.TransactionType) string {
	normalized := strings.ToLower(strings.TrimSpace(category))

	if txType == models.TypeIncome {
		switch {
		case strings.Contains(normalized, "rent"):
			return "Rent Income"
		case strings.Contains(normalized, "late"), strings.Contains(normalized, "fee"):
			return "Late Fees"
		default:
			return "Other Income"
		}
	}

	switch {
	case strings.Contains(normalized, "maintenance"), strings.Contains(normalized, "repair"):
		return "Maintenance & Repairs"
	case strings.Contains(normalized, "utilit"), strings.Contains(normalized, "water"),
		strings.Contains(normalized, "electric"), strings.Contains(normalized, "gas"):
		return "Utilities"
	case strings.Contains(normalized, "management"), strings.Contains(normalized, "fee"):
		return "Property Management Fees"
	case strings.Contains(normalized, "insurance"):
		return "Insurance"
	case strings.Contains(normalized, "landscape"), strings.Contains(normalized, "lawn"),
		strings.Contains(normalized, "garden"):
		return "Landscaping"
	case strings.Contains(normalized, "tax"):
		return "Property Taxes"
	case strings.Contains(normalized, "hoa"):
		return "HOA Fees"
	default:
		return "Other Expenses"
	}
}
