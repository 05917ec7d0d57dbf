package reports

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// StatementData is everything the PDF renderer needs for one owner
// statement. Logo holds the customer's raw logo image bytes; empty or
// unusable bytes render a statement without branding image.
type StatementData struct {
	CompanyName  string
	PropertyName string
	Logo         []byte
	Month        int
	Year         int
	Aggregate    PeriodAggregate
}

type categoryLine struct {
	Category string
	Amount   decimal.Decimal
}

// sortedLines orders a category map descending by amount, category name as
// the tiebreak so rendering is deterministic.
func sortedLines(byCategory map[string]decimal.Decimal) []categoryLine {
	lines := make([]categoryLine, 0, len(byCategory))
	for category, amount := range byCategory {
		lines = append(lines, categoryLine{Category: category, Amount: amount})
	}
	sort.Slice(lines, func(i, j int) bool {
		if !lines[i].Amount.Equal(lines[j].Amount) {
			return lines[i].Amount.GreaterThan(lines[j].Amount)
		}
		return lines[i].Category < lines[j].Category
	})
	return lines
}

// RenderStatement produces the owner statement PDF: branding header, income
// and expense sections sorted descending, net operating income and the
// ratio metrics.
func RenderStatement(data StatementData) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Owner Statement %s %d/%d", data.PropertyName, data.Month, data.Year), false)
	pdf.AddPage()

	company := data.CompanyName
	if company == "" {
		company = "Owner Statement"
	}
	period := fmt.Sprintf("%s %d", time.Month(data.Month).String(), data.Year)

	if imgType := logoImageType(data.Logo); imgType != "" {
		opts := fpdf.ImageOptions{ImageType: imgType}
		pdf.RegisterImageOptionsReader("customer-logo", opts, bytes.NewReader(data.Logo))
		if pdf.Ok() {
			pdf.ImageOptions("customer-logo", 165, 12, 30, 0, false, opts, 0, "")
		}
		if pdf.Err() {
			// A corrupt logo must not take the whole statement down.
			pdf.ClearError()
		}
	}

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, company, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, fmt.Sprintf("Monthly Owner Statement - %s", period), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, data.PropertyName, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	writeSection(pdf, "Income", sortedLines(data.Aggregate.IncomeByCategory), data.Aggregate.TotalIncome)
	pdf.Ln(3)
	writeSection(pdf, "Expenses", sortedLines(data.Aggregate.ExpenseByCategory), data.Aggregate.TotalExpenses)
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(120, 9, "Net Operating Income", "T", 0, "L", false, 0, "")
	pdf.CellFormat(60, 9, formatMoney(data.Aggregate.NetOperatingIncome), "T", 1, "R", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(120, 6, "Expense Ratio", "", 0, "L", false, 0, "")
	pdf.CellFormat(60, 6, fmt.Sprintf("%.2f%%", data.Aggregate.ExpenseRatio), "", 1, "R", false, 0, "")
	pdf.CellFormat(120, 6, "Net Margin", "", 0, "L", false, 0, "")
	pdf.CellFormat(60, 6, fmt.Sprintf("%.2f%%", data.Aggregate.NetMargin), "", 1, "R", false, 0, "")

	pdf.SetY(-20)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated by %s", company), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering statement PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSection(pdf *fpdf.Fpdf, title string, lines []categoryLine, total decimal.Decimal) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(0, 8, title, "B", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range lines {
		pdf.CellFormat(120, 7, line.Category, "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, formatMoney(line.Amount), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(120, 7, fmt.Sprintf("Total %s", title), "T", 0, "L", false, 0, "")
	pdf.CellFormat(60, 7, formatMoney(total), "T", 1, "R", false, 0, "")
}

func formatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// logoImageType sniffs the logo bytes into an fpdf image type, or "" when
// the content is not an embeddable image.
func logoImageType(logo []byte) string {
	if len(logo) == 0 {
		return ""
	}
	switch http.DetectContentType(logo) {
	case "image/png":
		return "PNG"
	case "image/jpeg":
		return "JPG"
	case "image/gif":
		return "GIF"
	}
	return ""
}
