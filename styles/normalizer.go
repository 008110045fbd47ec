// Package styles deduplicates visual style tuples into a content-addressed
// palette. Identical normalized tuples anywhere in a document resolve to
// the same identifier; the identifier is a truncated SHA-256 of a lossless
// canonical string, so distinct tuples collide only with cryptographically
// negligible probability. A detected collision (same identifier, unequal
// tuples) is fatal for the document.
package styles

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tsawler/strata/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// ErrCollision is returned when two unequal style tuples hash to the same
// identifier. Should never happen in practice.
var ErrCollision = errors.New("styles: hash collision between distinct styles")

// idLength is the number of hex characters kept from the SHA-256 digest
const idLength = 12

var foldCaser = cases.Fold()

// Normalizer interns style tuples into a shared palette. It is not safe
// for concurrent use; the pipeline runs it single-threaded during
// assembly.
type Normalizer struct {
	palette map[string]model.Style
}

// NewNormalizer creates an empty style normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{
		palette: make(map[string]model.Style),
	}
}

// Intern canonicalizes the style, stores it in the palette, and returns
// its content-addressed identifier. Interning an equal tuple again returns
// the same identifier.
func (n *Normalizer) Intern(s model.Style) (string, error) {
	canonical := Canonicalize(s)
	id := hashKey(canonicalKey(canonical))

	if existing, ok := n.palette[id]; ok {
		if existing != canonical {
			return "", fmt.Errorf("%w: %q vs %q", ErrCollision,
				canonicalKey(existing), canonicalKey(canonical))
		}
		return id, nil
	}

	n.palette[id] = canonical
	return id, nil
}

// Palette returns the interned styles keyed by identifier. The returned
// map is the normalizer's own; callers must not mutate it.
func (n *Normalizer) Palette() map[string]model.Style {
	return n.palette
}

// Len returns the number of distinct styles interned so far
func (n *Normalizer) Len() int {
	return len(n.palette)
}

// Canonicalize normalizes a style's field values: the font name is cleaned
// and case/whitespace folded into a family name, and the size is rounded
// to 0.1pt. Weight and italic are derived from the raw font name when not
// already set.
func Canonicalize(s model.Style) model.Style {
	out := s
	if out.Weight == "" {
		out.Weight = WeightOf(s.FontFamily)
	}
	if !out.Italic {
		out.Italic = IsItalic(s.FontFamily)
	}
	out.FontFamily = Family(s.FontFamily)
	out.Size = math.Round(s.Size*10) / 10
	out.Color = strings.ToLower(strings.TrimSpace(s.Color))
	return out
}

// FromFont builds a canonical style record from raw font attributes
func FromFont(fontName string, size float64, color string) model.Style {
	return Canonicalize(model.Style{
		FontFamily: fontName,
		Size:       size,
		Color:      color,
		Align:      model.AlignLeft,
	})
}

// canonicalKey builds the lossless string the identifier is hashed over
func canonicalKey(s model.Style) string {
	return fmt.Sprintf("%s|%.1f|%s|%t|%t|%s|%s",
		s.FontFamily, s.Size, s.Weight, s.Italic, s.Underline, s.Color, s.Align)
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:idLength]
}

// CleanFontName strips the subset prefix ("ABCDEF+") embedded font names
// carry, and trims surrounding whitespace
func CleanFontName(fontName string) string {
	if i := strings.Index(fontName, "+"); i >= 0 {
		fontName = fontName[i+1:]
	}
	return strings.TrimSpace(fontName)
}

// familySuffixes are the style suffixes stripped when reducing a font name
// to its family
var familySuffixes = []string{
	"-BoldItalic", ",BoldItalic", "-BoldOblique",
	"-Bold", ",Bold",
	"-Italic", ",Italic", "-Oblique",
	"-Regular", ",Regular",
	"-Light", "-Medium", "-Semibold",
}

// Family reduces a raw font name to a normalized family name: subset
// prefix and style suffixes stripped, Unicode-normalized, case folded
func Family(fontName string) string {
	name := CleanFontName(fontName)
	for _, suffix := range familySuffixes {
		if i := strings.Index(name, suffix); i >= 0 {
			name = name[:i]
		}
	}
	name = norm.NFKC.String(name)
	name = foldCaser.String(name)
	return strings.Join(strings.Fields(name), " ")
}

// WeightOf derives the font weight from a raw font name
func WeightOf(fontName string) model.WeightType {
	if strings.Contains(strings.ToLower(fontName), "bold") {
		return model.WeightBold
	}
	return model.WeightNormal
}

// IsItalic reports whether a raw font name indicates an italic face
func IsItalic(fontName string) bool {
	lower := strings.ToLower(fontName)
	return strings.Contains(lower, "italic") || strings.Contains(lower, "oblique")
}
