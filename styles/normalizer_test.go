package styles

import (
	"testing"

	"github.com/tsawler/strata/model"
)

func TestNormalizer_EqualTuplesShareID(t *testing.T) {
	n := NewNormalizer()

	id1, err := n.Intern(FromFont("Helvetica-Bold", 12, "#000000"))
	if err != nil {
		t.Fatalf("Intern failed: %v", err)
	}
	id2, err := n.Intern(FromFont("Helvetica-Bold", 12, "#000000"))
	if err != nil {
		t.Fatalf("Intern failed: %v", err)
	}

	if id1 != id2 {
		t.Errorf("Expected identical IDs for equal tuples, got %s and %s", id1, id2)
	}
	if n.Len() != 1 {
		t.Errorf("Expected 1 palette entry, got %d", n.Len())
	}
}

func TestNormalizer_DistinctTuplesDiffer(t *testing.T) {
	n := NewNormalizer()

	id1, _ := n.Intern(FromFont("Helvetica", 12, "#000000"))
	id2, _ := n.Intern(FromFont("Helvetica", 14, "#000000"))
	id3, _ := n.Intern(FromFont("Times-Roman", 12, "#000000"))

	if id1 == id2 || id1 == id3 || id2 == id3 {
		t.Errorf("Expected distinct IDs, got %s, %s, %s", id1, id2, id3)
	}
	if n.Len() != 3 {
		t.Errorf("Expected 3 palette entries, got %d", n.Len())
	}
}

func TestNormalizer_IDStableAcrossInstances(t *testing.T) {
	id1, _ := NewNormalizer().Intern(FromFont("Helvetica", 12, "#000000"))
	id2, _ := NewNormalizer().Intern(FromFont("Helvetica", 12, "#000000"))

	if id1 != id2 {
		t.Errorf("Expected content-addressed ID to be stable, got %s and %s", id1, id2)
	}
	if len(id1) != idLength {
		t.Errorf("Expected %d-char ID, got %d", idLength, len(id1))
	}
}

func TestFromFont_DerivesWeightAndItalic(t *testing.T) {
	s := FromFont("XYZABC+Helvetica-BoldItalic", 12.04, "#FF0000")

	if s.FontFamily != "helvetica" {
		t.Errorf("Expected family 'helvetica', got '%s'", s.FontFamily)
	}
	if s.Weight != model.WeightBold {
		t.Errorf("Expected bold weight, got '%s'", s.Weight)
	}
	if !s.Italic {
		t.Error("Expected italic to be derived from the font name")
	}
	if s.Size != 12.0 {
		t.Errorf("Expected size rounded to 12.0, got %g", s.Size)
	}
	if s.Color != "#ff0000" {
		t.Errorf("Expected lowercased color, got '%s'", s.Color)
	}
}

func TestFromFont_SubsetPrefixIgnored(t *testing.T) {
	a := FromFont("ABCDEF+Helvetica", 12, "#000000")
	b := FromFont("Helvetica", 12, "#000000")

	if a != b {
		t.Errorf("Expected subset prefix to be ignored: %+v vs %+v", a, b)
	}
}

func TestFamily(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Helvetica", "helvetica"},
		{"Helvetica-Bold", "helvetica"},
		{"ABCDEF+Times-Italic", "times"},
		{"Arial,BoldItalic", "arial"},
		{"Courier-Oblique", "courier"},
		{"  Open  Sans-Regular ", "open sans"},
	}

	for _, tt := range tests {
		if got := Family(tt.in); got != tt.want {
			t.Errorf("Family(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWeightOfAndIsItalic(t *testing.T) {
	if WeightOf("Helvetica-Bold") != model.WeightBold {
		t.Error("Expected bold for Helvetica-Bold")
	}
	if WeightOf("Helvetica") != model.WeightNormal {
		t.Error("Expected normal for Helvetica")
	}
	if !IsItalic("Times-Italic") || !IsItalic("Courier-Oblique") {
		t.Error("Expected italic detection for Italic and Oblique suffixes")
	}
	if IsItalic("Helvetica") {
		t.Error("Expected Helvetica to be upright")
	}
}
