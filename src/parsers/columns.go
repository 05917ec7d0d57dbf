package parsers

import "strings"

// Canonical fields a ledger row can map onto. Only date and amount are
// mandatory for a row to become a transaction.
type field int

const (
	fieldDate field = iota
	fieldAmount
	fieldDescription
	fieldCategory
	fieldProperty
)

// Synonym tables per vendor. Headers are compared case- and
// punctuation-insensitively, so "Amount ($)" and "amount" collapse to the
// same key. Order matters: the first synonym with a matching column wins.
var baseSynonyms = map[field][]string{
	fieldDate:        {"date", "transaction date", "txn date", "posting date"},
	fieldAmount:      {"amount", "amount ($)", "total", "debit/credit", "net amount"},
	fieldDescription: {"description", "memo", "details"},
	fieldCategory:    {"category"},
	fieldProperty:    {"property", "property name"},
}

var vendorSynonyms = map[string]map[field][]string{
	// AppFolio owner statements label the counterparty column
	// "Payee / Payer" and categorize by GL account.
	"appfolio": {
		fieldDescription: {"description", "payee / payer", "memo", "details"},
		fieldCategory:    {"gl account", "category"},
	},
	// Buildium general ledgers reuse "Type" as the category column.
	"buildium": {
		fieldCategory: {"category", "type"},
	},
}

// normalizeHeader lowers and strips everything that is not a letter or
// digit, tolerating punctuation and spacing differences between exports.
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func synonymsFor(vendor string, f field) []string {
	if v, ok := vendorSynonyms[vendor]; ok {
		if syns, ok := v[f]; ok {
			return syns
		}
	}
	return baseSynonyms[f]
}

// columnMap resolves canonical fields to column indexes for one header row.
type columnMap map[field]int

// resolveColumns builds the field→column mapping. A field with no matching
// synonym is simply absent; callers decide which fields are mandatory.
// Column order in the file is irrelevant.
func resolveColumns(vendor string, headers []string) columnMap {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	cm := make(columnMap)
	for f := fieldDate; f <= fieldProperty; f++ {
		for _, syn := range synonymsFor(vendor, f) {
			target := normalizeHeader(syn)
			found := false
			for i, h := range normalized {
				if h == target {
					cm[f] = i
					found = true
					break
				}
			}
			if found {
				break
			}
		}
	}
	return cm
}

// value returns the cell for a canonical field, or "" when the field's
// column is absent or the row is short.
func (cm columnMap) value(record []string, f field) string {
	idx, ok := cm[f]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
