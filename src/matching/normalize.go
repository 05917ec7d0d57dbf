package matching

import (
	"regexp"
	"strings"

	"github.com/username/rentfolio/backend/src/models"
)

var (
	streetSuffixRe = regexp.MustCompile(`(?i)\b(street|st|avenue|ave|boulevard|blvd|road|rd|drive|dr|lane|ln|court|ct|place|pl)\b\.?`)
	unitTokenRe    = regexp.MustCompile(`(?i)\b(apt|apartment|unit|#)\s*\w+`)
	nonAlnumRe     = regexp.MustCompile(`[^a-z0-9]`)
)

// NormalizePropertyName reduces a property name to a comparison key:
// "123 Sunset Blvd. Apt 4B" → "123sunset". Street-type suffixes and
// apartment/unit tokens carry no identity and are stripped before the
// remaining non-alphanumerics.
func NormalizePropertyName(name string) string {
	if name == "" {
		return ""
	}
	s := strings.ToLower(strings.TrimSpace(name))
	s = streetSuffixRe.ReplaceAllString(s, "")
	s = unitTokenRe.ReplaceAllString(s, "")
	return nonAlnumRe.ReplaceAllString(s, "")
}

// Similarity scores two property names in [0,1] over their normalized
// forms: identical 1, either-contains-other 0.8, first five characters
// equal 0.6, otherwise 0. The ladder is fixed; candidates below the review
// threshold are treated as no match at all.
func Similarity(a, b string) float64 {
	s1 := NormalizePropertyName(a)
	s2 := NormalizePropertyName(b)

	if s1 == s2 {
		return 1
	}
	if len(s1) == 0 || len(s2) == 0 {
		return 0
	}
	if strings.Contains(s1, s2) || strings.Contains(s2, s1) {
		return 0.8
	}
	if prefix(s1, 5) == prefix(s2, 5) {
		return 0.6
	}
	return 0
}

func prefix(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}

// CandidateThreshold is the minimum similarity at which a fuzzy match is
// surfaced for review. Lower scores are reported as zero candidates.
const CandidateThreshold = 0.8

// FindBestMatch returns the highest-scoring existing property for a CSV
// property name, or nil when no candidate reaches the threshold.
func FindBestMatch(csvPropertyName string, properties []models.Property) *models.CandidateMatch {
	var best *models.Property
	highest := 0.0

	for i := range properties {
		confidence := Similarity(csvPropertyName, properties[i].PropertyName)
		if confidence > highest {
			highest = confidence
			best = &properties[i]
		}
	}

	if best == nil || highest < CandidateThreshold {
		return nil
	}
	return &models.CandidateMatch{Property: *best, Confidence: highest}
}
