package strata

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tsawler/strata/model"
)

// wordChars emits one character box per rune so the word builder
// reassembles the text at the given position
func wordChars(txt string, x, y, size float64) []model.Char {
	var chars []model.Char
	cx := x
	for _, r := range txt {
		w := size * 0.55
		chars = append(chars, model.Char{
			Text:     string(r),
			BBox:     model.NewBBox(cx, y, cx+w, y+size),
			FontName: "Helvetica",
			Size:     size,
			Color:    "#000000",
		})
		cx += w + 0.5
	}
	return chars
}

// testInput builds a one-page document with a heading and two paragraphs
func testInput() model.DocumentInput {
	var chars []model.Char
	chars = append(chars, wordChars("Introduction", 72, 100, 18)...)
	chars = append(chars, wordChars("opening", 72, 150, 12)...)
	chars = append(chars, wordChars("words", 130, 150, 12)...)
	chars = append(chars, wordChars("closing", 72, 200, 12)...)
	chars = append(chars, wordChars("remarks", 130, 200, 12)...)

	return model.DocumentInput{
		DocumentID: "doc-test",
		Source:     model.SourcePDF,
		Pages: []model.PageInput{
			{Number: 1, Width: 612, Height: 792, Chars: chars},
		},
	}
}

func TestPipeline_PureGeometry(t *testing.T) {
	doc, warnings, err := NewPipeline().Process(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got: %s", FormatWarnings(warnings))
	}

	if doc.Document.DocumentID != "doc-test" {
		t.Errorf("Expected 'doc-test', got '%s'", doc.Document.DocumentID)
	}
	if doc.Document.SchemaVersion != "3.0" {
		t.Errorf("Expected schema 3.0, got '%s'", doc.Document.SchemaVersion)
	}
	if len(doc.Blocks) != 3 {
		t.Fatalf("Expected 3 blocks, got %d", len(doc.Blocks))
	}
	if doc.Blocks[0].Text != "Introduction" || doc.Blocks[0].Type != model.BlockHeading {
		t.Errorf("Expected heading first, got %+v", doc.Blocks[0])
	}
	if !strings.Contains(doc.GetText(), "opening words") {
		t.Errorf("Expected reassembled text, got %q", doc.GetText())
	}
}

func TestPipeline_Idempotent(t *testing.T) {
	run := func() []byte {
		doc, _, err := NewPipeline().Process(context.Background(), testInput())
		if err != nil {
			t.Fatalf("Process failed: %v", err)
		}
		data, err := model.MarshalDocument(doc)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		return data
	}

	first := run()
	for i := 0; i < 3; i++ {
		if !bytes.Equal(first, run()) {
			t.Fatal("Expected byte-identical output across runs")
		}
	}
}

func TestPipeline_WithTags(t *testing.T) {
	tags := []model.SemanticTag{
		{
			Text: "Introduction", Page: 1,
			Type: model.BlockHeading, Role: model.RoleTitle,
			Rhetoric: &model.Rhetoric{Tone: "neutral"},
		},
	}

	doc, warnings, err := NewPipeline().
		WithTagSource(NewStaticTags(tags)).
		Process(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got: %s", FormatWarnings(warnings))
	}

	heading := doc.Blocks[0]
	if heading.Role != model.RoleTitle {
		t.Errorf("Expected tag role 'title', got '%s'", heading.Role)
	}
	if heading.Rhetoric == nil || heading.Rhetoric.Tone != "neutral" {
		t.Errorf("Expected rhetoric transferred, got %+v", heading.Rhetoric)
	}
}

func TestPipeline_UnmatchedTagWarning(t *testing.T) {
	tags := []model.SemanticTag{
		{Text: "no such content anywhere on the page", Page: 1, Type: model.BlockHeading},
	}

	_, warnings, err := NewPipeline().
		WithTagSource(NewStaticTags(tags)).
		Process(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if len(warnings) != 1 || warnings[0].Kind != WarnUnmatchedTag {
		t.Errorf("Expected one unmatched-tag warning, got: %s", FormatWarnings(warnings))
	}
}

// failingTags always errors, exercising the degrade path
type failingTags struct{}

func (failingTags) TagsForPage(context.Context, int) ([]model.SemanticTag, error) {
	return nil, errors.New("tag service unavailable")
}

func TestPipeline_TagSourceFailureDegrades(t *testing.T) {
	doc, warnings, err := NewPipeline().
		WithTagSource(failingTags{}).
		Process(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Expected tag source failure to be non-fatal, got: %v", err)
	}

	if len(warnings) != 1 || warnings[0].Kind != WarnTagSource {
		t.Errorf("Expected one tag-source warning, got: %s", FormatWarnings(warnings))
	}
	// The page still carries geometry-derived blocks
	if len(doc.Blocks) != 3 {
		t.Errorf("Expected geometry blocks despite tag failure, got %d", len(doc.Blocks))
	}
}

func TestPipeline_BadGeometrySkipsPage(t *testing.T) {
	input := testInput()
	input.Pages = append(input.Pages, model.PageInput{
		Number: 2, Width: -10, Height: 792,
	})

	doc, warnings, err := NewPipeline().Process(context.Background(), input)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	var found bool
	for _, w := range warnings {
		if w.Kind == WarnBadGeometry && w.Page == 2 {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected bad-geometry warning for page 2, got: %s", FormatWarnings(warnings))
	}
	// The bad page still appears in page metadata, just without blocks
	if len(doc.Pages) != 2 {
		t.Errorf("Expected 2 page records, got %d", len(doc.Pages))
	}
	for _, b := range doc.Blocks {
		if b.Page == 2 {
			t.Error("Expected no blocks from the skipped page")
		}
	}
}

func TestPipeline_EmptyInput(t *testing.T) {
	_, _, err := NewPipeline().Process(context.Background(), model.DocumentInput{})
	if err == nil {
		t.Error("Expected an error for input without pages")
	}
}

func TestPipeline_EmptyPageWarning(t *testing.T) {
	input := model.DocumentInput{
		DocumentID: "doc-empty",
		Pages: []model.PageInput{
			{Number: 1, Width: 612, Height: 792},
		},
	}

	doc, warnings, err := NewPipeline().Process(context.Background(), input)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(warnings) != 1 || warnings[0].Kind != WarnEmptyPage {
		t.Errorf("Expected an empty-page warning, got: %s", FormatWarnings(warnings))
	}
	if len(doc.Blocks) != 0 {
		t.Errorf("Expected no blocks, got %d", len(doc.Blocks))
	}
}

func TestPipeline_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewPipeline().Process(ctx, testInput())
	if err == nil {
		t.Error("Expected an error for a cancelled context")
	}
}

func TestFormatWarnings(t *testing.T) {
	warnings := []Warning{
		{Page: 1, Kind: WarnEmptyPage, Message: "no characters or ruled lines"},
		{Kind: WarnTagSource, Message: "service down"},
	}

	got := FormatWarnings(warnings)
	if !strings.Contains(got, "page 1: empty_page") {
		t.Errorf("Expected page-prefixed warning, got %q", got)
	}
	if !strings.Contains(got, "tag_source: service down") {
		t.Errorf("Expected document-level warning, got %q", got)
	}

	if FormatWarnings(nil) != "" {
		t.Error("Expected empty string for no warnings")
	}
}
