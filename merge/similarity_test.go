package merge

import (
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello   World", "hello world"},
		{"  MIXED Case\tText ", "mixed case text"},
		{"ﬁle", "file"}, // NFKC expands the fi ligature
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeText(tt.in); got != tt.want {
			t.Errorf("normalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("hello", 3); got != "hel" {
		t.Errorf("Expected 'hel', got %q", got)
	}
	if got := truncateRunes("hello", 10); got != "hello" {
		t.Errorf("Expected 'hello', got %q", got)
	}
	if got := truncateRunes("héllo", 2); got != "hé" {
		t.Errorf("Expected rune-wise truncation 'hé', got %q", got)
	}
	if got := truncateRunes("hello", 0); got != "hello" {
		t.Errorf("Expected no truncation at 0, got %q", got)
	}
}

func TestTextSimilarity_Identical(t *testing.T) {
	if got := textSimilarity("the quick brown fox", "the quick brown fox"); got != 1 {
		t.Errorf("Expected 1.0 for identical text, got %g", got)
	}
}

func TestTextSimilarity_Empty(t *testing.T) {
	if got := textSimilarity("", "something"); got != 0 {
		t.Errorf("Expected 0 against empty text, got %g", got)
	}
}

func TestTextSimilarity_Reordered(t *testing.T) {
	// Same tokens in a different order: the token-set term keeps the
	// score at 1 even though edit distance is large
	if got := textSimilarity("brown fox quick the", "the quick brown fox"); got != 1 {
		t.Errorf("Expected 1.0 for reordered tokens, got %g", got)
	}
}

func TestTextSimilarity_SmallTypo(t *testing.T) {
	got := textSimilarity("the quick brown fox", "the quick brown fpx")
	if got < 0.9 {
		t.Errorf("Expected a single typo to score above 0.9, got %g", got)
	}
}

func TestTextSimilarity_Unrelated(t *testing.T) {
	got := textSimilarity("alpha beta gamma", "completely different words")
	if got > 0.4 {
		t.Errorf("Expected unrelated text to score low, got %g", got)
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"same", "same", 0},
	}

	for _, tt := range tests {
		if got := levenshtein([]rune(tt.a), []rune(tt.b)); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTokenSetRatio(t *testing.T) {
	if got := tokenSetRatio("a b c", "a b c"); got != 1 {
		t.Errorf("Expected 1.0, got %g", got)
	}
	if got := tokenSetRatio("a b", "c d"); got != 0 {
		t.Errorf("Expected 0, got %g", got)
	}
	// 2 common tokens over set sizes 3+3
	if got := tokenSetRatio("a b c", "a b d"); got < 0.66 || got > 0.67 {
		t.Errorf("Expected about 0.667, got %g", got)
	}
}
