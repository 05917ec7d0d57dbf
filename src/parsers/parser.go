package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/rentfolio/backend/src/logger"
	"github.com/username/rentfolio/backend/src/models"
)

// ledgerParser turns a vendor CSV export into canonical transactions. Both
// supported vendors normalize through the same synonym-based extraction;
// the vendor tag only selects which synonym table variant to consult.
type ledgerParser struct {
	vendor string
}

func (p *ledgerParser) Parse(file io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := resolveColumns(p.vendor, headers)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read all CSV records: %w", err)
	}

	result := &ParseResult{}
	now := time.Now()
	for _, record := range records {
		dateStr := columns.value(record, fieldDate)
		amountStr := columns.value(record, fieldAmount)

		// Rows without a date or amount cell are not transactions
		// (subtotal lines, section headers). Dropped, not reported.
		if dateStr == "" || amountStr == "" {
			continue
		}

		date, ok := parseLedgerDate(dateStr, now)
		if !ok {
			if logger.L != nil {
				logger.L.Warn("Unparsable transaction date, defaulting to current time",
					"vendor", p.vendor, "date", dateStr)
			}
			result.DatesDefaulted++
		}

		amount := ParseAmount(amountStr)
		txType := models.TypeIncome
		if amount.IsNegative() {
			txType = models.TypeExpense
		}

		description := columns.value(record, fieldDescription)
		if description == "" {
			description = "Unknown Description"
		}
		category := columns.value(record, fieldCategory)
		if category == "" {
			category = "Uncategorized"
		}

		result.Transactions = append(result.Transactions, models.CanonicalTransaction{
			TransactionDate:  date,
			Description:      description,
			Amount:           amount.Abs(),
			Category:         category,
			TransactionType:  txType,
			PropertyNameHint: columns.value(record, fieldProperty),
		})
	}

	return result, nil
}

// ParseAmount normalizes a ledger amount cell: currency symbols, commas and
// whitespace are stripped, and accounting-style "(123.45)" parses as
// negative. Unparsable input defaults to zero rather than failing the row.
func ParseAmount(s string) decimal.Decimal {
	clean := strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		negative = true
		clean = clean[1 : len(clean)-1]
	}

	replacer := strings.NewReplacer("$", "", ",", "", " ", "", "\t", "")
	clean = replacer.Replace(clean)

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero
	}
	if negative {
		return d.Neg()
	}
	return d
}

// generalDateLayouts are tried after the two explicit vendor formats.
var generalDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01-02-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// parseLedgerDate parses US-style MM/DD/YYYY (and M/D/YYYY) deterministically,
// passes ISO dates through, then attempts general layouts. On total failure it
// falls back to now and reports ok=false so the caller can count the row.
func parseLedgerDate(s string, now time.Time) (time.Time, bool) {
	clean := strings.TrimSpace(s)

	if t, err := time.Parse("1/2/2006", clean); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", clean); err == nil {
		return t, true
	}
	for _, layout := range generalDateLayouts {
		if t, err := time.Parse(layout, clean); err == nil {
			return t, true
		}
	}
	return now, false
}
