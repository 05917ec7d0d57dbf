package matching

import (
	"strings"

	"github.com/username/rentfolio/backend/src/models"
)

// UnknownPropertyName stands in for rows whose CSV carried no property
// column. Those rows still need a review decision, so they group under this
// literal rather than being dropped.
const UnknownPropertyName = "Unknown Property"

// MatchedTransaction is a canonical transaction resolved to a property id.
type MatchedTransaction struct {
	Transaction models.CanonicalTransaction
	PropertyID  string
}

// Result partitions an upload. Every input transaction appears in exactly
// one of the two sets; nothing is dropped for lack of a property match.
type Result struct {
	Matched   []MatchedTransaction
	Unmatched []models.UnmatchedGroup
}

// Match resolves each transaction's property hint against the customer's
// existing properties. The exact pass compares the raw hint case- and
// whitespace-insensitively against raw property names; only transactions
// with no exact match reach the fuzzy scoring, grouped by raw CSV name with
// at most one qualifying candidate each.
func Match(transactions []models.CanonicalTransaction, properties []models.Property) Result {
	exact := make(map[string]string, len(properties))
	for _, p := range properties {
		exact[exactKey(p.PropertyName)] = p.ID
	}

	var result Result
	groups := make(map[string]int) // raw CSV name → index into result.Unmatched

	for _, tx := range transactions {
		hint := tx.PropertyNameHint
		if strings.TrimSpace(hint) == "" {
			hint = UnknownPropertyName
		}

		if id, ok := exact[exactKey(hint)]; ok {
			result.Matched = append(result.Matched, MatchedTransaction{Transaction: tx, PropertyID: id})
			continue
		}

		idx, ok := groups[hint]
		if !ok {
			group := models.UnmatchedGroup{
				CSVPropertyName: hint,
				Candidates:      []models.CandidateMatch{},
			}
			if candidate := FindBestMatch(hint, properties); candidate != nil {
				group.Candidates = append(group.Candidates, *candidate)
			}
			result.Unmatched = append(result.Unmatched, group)
			idx = len(result.Unmatched) - 1
			groups[hint] = idx
		}
		result.Unmatched[idx].Transactions = append(result.Unmatched[idx].Transactions, tx)
	}

	return result
}

func exactKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
