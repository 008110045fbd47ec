package model

import (
	"bytes"
	"strings"
	"testing"
)

// testDocument builds a small but fully populated document
func testDocument() *Document {
	return &Document{
		Document: DocumentMeta{
			DocumentID:    "doc-1",
			SchemaVersion: SchemaVersion,
			Source:        SourcePDF,
			PageCount:     1,
		},
		Pages: []Page{
			{PageNumber: 1, Width: 612, Height: 792, Unit: "pt"},
		},
		Blocks: []Block{
			{
				ID:           "b-000000000001",
				Type:         BlockHeading,
				Role:         RoleSectionTitle,
				Page:         1,
				BBox:         []float64{72, 100, 300, 118},
				BBoxNorm:     []float64{0.117647, 0.126263, 0.490196, 0.148990},
				ReadingOrder: 0,
				Text:         "Introduction",
				StyleID:      "aaaaaaaaaaaa",
			},
		},
		Styles: map[string]Style{
			"aaaaaaaaaaaa": {FontFamily: "helvetica", Size: 18, Weight: WeightBold, Align: AlignLeft},
			"bbbbbbbbbbbb": {FontFamily: "times", Size: 12, Weight: WeightNormal, Align: AlignLeft},
		},
		ReadingGraph: []Edge{
			{From: "b-000000000001", To: "b-000000000002", Relation: RelationNext},
		},
	}
}

func TestMarshalDocument_Roundtrip(t *testing.T) {
	doc := testDocument()

	data, err := MarshalDocument(doc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	got, err := UnmarshalDocument(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if got.Document.DocumentID != "doc-1" {
		t.Errorf("Expected document_id 'doc-1', got '%s'", got.Document.DocumentID)
	}
	if got.Document.SchemaVersion != "3.0" {
		t.Errorf("Expected schema_version '3.0', got '%s'", got.Document.SchemaVersion)
	}
	if len(got.Blocks) != 1 || got.Blocks[0].Type != BlockHeading {
		t.Errorf("Blocks did not survive the roundtrip: %+v", got.Blocks)
	}
	if got.Styles["aaaaaaaaaaaa"].Weight != WeightBold {
		t.Error("Styles did not survive the roundtrip")
	}
}

func TestMarshalDocument_Deterministic(t *testing.T) {
	doc := testDocument()

	first, err := MarshalDocument(doc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		next, err := MarshalDocument(doc)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if !bytes.Equal(first, next) {
			t.Fatal("Expected byte-identical output across marshals")
		}
	}
}

func TestMarshalDocument_FieldNames(t *testing.T) {
	data, err := MarshalDocument(testDocument())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	for _, field := range []string{
		`"document_id"`, `"schema_version"`, `"page_count"`,
		`"bbox"`, `"bbox_norm"`, `"reading_order"`, `"z_index"`,
		`"style_id"`, `"reading_graph"`, `"relation"`,
	} {
		if !strings.Contains(string(data), field) {
			t.Errorf("Expected serialized field %s in output", field)
		}
	}
}

func TestWriteReadDocument(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDocument(&buf, testDocument()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := ReadDocument(&buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.Document.PageCount != 1 {
		t.Errorf("Expected page_count 1, got %d", got.Document.PageCount)
	}
}

func TestDocument_GetText(t *testing.T) {
	doc := testDocument()
	doc.Blocks = append(doc.Blocks, Block{
		ID: "b-000000000002", Type: BlockParagraph, Page: 1,
		ReadingOrder: 1, Text: "Body text.",
	})

	if got := doc.GetText(); got != "Introduction\n\nBody text." {
		t.Errorf("Unexpected text: %q", got)
	}
}

func TestTable_ToMarkdown(t *testing.T) {
	table := Table{
		Rows: 2, Cols: 2,
		Cells: []TableCell{
			{Row: 0, Col: 0, Text: "Name"},
			{Row: 0, Col: 1, Text: "Value"},
			{Row: 1, Col: 0, Text: "total"},
			{Row: 1, Col: 1, Text: "42"},
		},
	}

	got := table.ToMarkdown()
	want := "| Name | Value |\n|---|---|\n| total | 42 |\n"
	if got != want {
		t.Errorf("ToMarkdown() = %q, want %q", got, want)
	}
}
