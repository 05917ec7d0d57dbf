package matching

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/rentfolio/backend/src/models"
)

func tx(hint string) models.CanonicalTransaction {
	return models.CanonicalTransaction{
		TransactionDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Description:      "test row",
		Amount:           decimal.NewFromInt(100),
		Category:         "Rent",
		TransactionType:  models.TypeIncome,
		PropertyNameHint: hint,
	}
}

func TestFindBestMatch(t *testing.T) {
	properties := []models.Property{
		{ID: "p1", PropertyName: "123 Main Street"},
		{ID: "p2", PropertyName: "456 Oak Avenue"},
	}

	t.Run("containment reaches threshold", func(t *testing.T) {
		candidate := FindBestMatch("123 Main Street Building A", properties)
		if candidate == nil {
			t.Fatal("expected a candidate")
		}
		if candidate.Property.ID != "p1" {
			t.Errorf("candidate = %s, want p1", candidate.Property.ID)
		}
		if candidate.Confidence != 0.8 {
			t.Errorf("confidence = %v, want 0.8", candidate.Confidence)
		}
	})

	t.Run("prefix score stays below threshold", func(t *testing.T) {
		// "123 Maple" scores 0.6 against "123 Main Street": below the
		// review threshold, so no candidate surfaces.
		if candidate := FindBestMatch("123 Maple", properties); candidate != nil {
			t.Errorf("expected no candidate, got %s at %v", candidate.Property.ID, candidate.Confidence)
		}
	})

	t.Run("no properties", func(t *testing.T) {
		if candidate := FindBestMatch("123 Main Street", nil); candidate != nil {
			t.Error("expected no candidate with empty property list")
		}
	})
}

func TestMatchExactPassPrecedence(t *testing.T) {
	properties := []models.Property{
		{ID: "p1", PropertyName: "123 Main Street"},
	}
	// Exact raw comparison is case- and whitespace-insensitive and wins
	// before any fuzzy scoring happens.
	result := Match([]models.CanonicalTransaction{tx("  123 MAIN STREET ")}, properties)

	if len(result.Matched) != 1 {
		t.Fatalf("expected 1 matched, got %d (unmatched: %d)", len(result.Matched), len(result.Unmatched))
	}
	if result.Matched[0].PropertyID != "p1" {
		t.Errorf("matched to %s, want p1", result.Matched[0].PropertyID)
	}
}

func TestMatchGroupsUnmatchedByRawName(t *testing.T) {
	properties := []models.Property{
		{ID: "p1", PropertyName: "123 Main Street"},
	}
	transactions := []models.CanonicalTransaction{
		tx("123 Main St Unit 2"),
		tx("123 Main St Unit 2"),
		tx("Sunset Apartments"),
	}

	result := Match(transactions, properties)
	if len(result.Matched) != 0 {
		t.Fatalf("expected 0 matched, got %d", len(result.Matched))
	}
	if len(result.Unmatched) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(result.Unmatched))
	}

	main := result.Unmatched[0]
	if main.CSVPropertyName != "123 Main St Unit 2" {
		t.Errorf("group name = %q", main.CSVPropertyName)
	}
	if len(main.Transactions) != 2 {
		t.Errorf("group size = %d, want 2", len(main.Transactions))
	}
	if len(main.Candidates) != 1 || main.Candidates[0].Property.ID != "p1" {
		t.Errorf("expected one candidate p1, got %+v", main.Candidates)
	}

	sunset := result.Unmatched[1]
	if sunset.Candidates == nil {
		t.Error("candidates must be an empty slice, not nil")
	}
	if len(sunset.Candidates) != 0 {
		t.Errorf("expected zero candidates for unrelated name, got %d", len(sunset.Candidates))
	}
}

func TestMatchEmptyHintGroupsUnderUnknown(t *testing.T) {
	result := Match([]models.CanonicalTransaction{tx(""), tx("   ")}, nil)
	if len(result.Unmatched) != 1 {
		t.Fatalf("blank hints should collapse into one group, got %d", len(result.Unmatched))
	}
	group := result.Unmatched[0]
	if group.CSVPropertyName != UnknownPropertyName {
		t.Errorf("group name = %q, want %q", group.CSVPropertyName, UnknownPropertyName)
	}
	if len(group.Transactions) != 2 {
		t.Errorf("group size = %d, want 2", len(group.Transactions))
	}
}
