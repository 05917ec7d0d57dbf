package matching

import "testing"

func TestNormalizePropertyName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"street suffix stripped", "123 Sunset Blvd.", "123sunset"},
		{"unit token stripped", "123 Sunset Blvd. Apt 4B", "123sunset"},
		{"hash unit stripped", "456 Oak Ave #12", "456oak"},
		{"case and punctuation", "  OAK-VILLA  ", "oakvilla"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePropertyName(tt.input); got != tt.want {
				t.Errorf("NormalizePropertyName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical after normalization", "123 Main St", "123 Main Street", 1},
		{"containment", "123 Main", "123 Main Building B", 0.8},
		{"shared 5-char prefix", "123 Maple Grove", "123 Mayfield", 0.6},
		{"unrelated", "Oak Villa", "Sunset Apartments", 0},
		{"empty side", "", "Oak Villa", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Similarity(tt.a, tt.b); got != tt.want {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

