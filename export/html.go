// Package export renders an assembled document into presentational
// formats. The HTML renderer walks blocks in page and reading order,
// grouping consecutive list items into lists and rendering tables from
// their structured cell grids. Header, footer, and page number blocks
// are margin furniture and stay out of the exported body.
package export

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/strata/model"
)

// HTMLConfig holds configuration for HTML export
type HTMLConfig struct {
	// Title overrides the <title> element; when empty the document ID
	// is used
	Title string

	// IncludeStyles emits a class attribute carrying each block's style
	// ID so downstream CSS can target the palette (default: false)
	IncludeStyles bool
}

// DefaultHTMLConfig returns sensible default configuration
func DefaultHTMLConfig() HTMLConfig {
	return HTMLConfig{}
}

// HTMLExporter renders a document as a standalone HTML page
type HTMLExporter struct {
	config HTMLConfig
}

// NewHTMLExporter creates an exporter with default configuration
func NewHTMLExporter() *HTMLExporter {
	return &HTMLExporter{
		config: DefaultHTMLConfig(),
	}
}

// NewHTMLExporterWithConfig creates an exporter with custom configuration
func NewHTMLExporterWithConfig(config HTMLConfig) *HTMLExporter {
	return &HTMLExporter{
		config: config,
	}
}

// Export renders the whole document as an HTML page
func (e *HTMLExporter) Export(doc *model.Document) string {
	title := e.config.Title
	if title == "" {
		title = doc.Document.DocumentID
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	sb.WriteString("<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", html.EscapeString(title))
	sb.WriteString("</head>\n<body>\n")

	tablesByID := make(map[string]*model.Table, len(doc.Tables))
	for i := range doc.Tables {
		tablesByID[doc.Tables[i].ID] = &doc.Tables[i]
	}

	for _, page := range doc.Pages {
		e.renderPage(&sb, doc, page.PageNumber, tablesByID)
	}

	sb.WriteString("</body>\n</html>\n")
	return sb.String()
}

// renderPage renders one page's blocks in reading order
func (e *HTMLExporter) renderPage(sb *strings.Builder, doc *model.Document, pageNumber int, tablesByID map[string]*model.Table) {
	blocks := doc.BlocksOnPage(pageNumber)

	inList := false
	closeList := func() {
		if inList {
			sb.WriteString("</ul>\n")
			inList = false
		}
	}

	for _, b := range blocks {
		switch b.Type {
		case model.BlockHeader, model.BlockFooter, model.BlockPageNumber:
			continue
		case model.BlockCaption:
			// captions render inside their parent figure/table
			if b.Parent != "" {
				continue
			}
		}

		if b.Type == model.BlockListItem {
			if !inList {
				sb.WriteString("<ul>\n")
				inList = true
			}
			fmt.Fprintf(sb, "<li%s>%s</li>\n", e.attrs(b), html.EscapeString(stripListMarker(b.Text)))
			continue
		}
		closeList()

		switch b.Type {
		case model.BlockHeading:
			fmt.Fprintf(sb, "<%s%s>%s</%s>\n", headingTag(b.Role), e.attrs(b), html.EscapeString(b.Text), headingTag(b.Role))
		case model.BlockTable:
			e.renderTable(sb, b, tablesByID[b.ID], e.captionText(doc, b))
		case model.BlockFigure:
			sb.WriteString("<figure>\n")
			if b.Text != "" {
				fmt.Fprintf(sb, "<p>%s</p>\n", html.EscapeString(b.Text))
			}
			if caption := e.captionText(doc, b); caption != "" {
				fmt.Fprintf(sb, "<figcaption>%s</figcaption>\n", html.EscapeString(caption))
			}
			sb.WriteString("</figure>\n")
		case model.BlockCodeBlock:
			fmt.Fprintf(sb, "<pre%s>%s</pre>\n", e.attrs(b), html.EscapeString(b.Text))
		default:
			fmt.Fprintf(sb, "<p%s>%s</p>\n", e.attrs(b), html.EscapeString(b.Text))
		}
	}
	closeList()
}

// renderTable renders a structured table, honoring cell spans
func (e *HTMLExporter) renderTable(sb *strings.Builder, b model.Block, table *model.Table, caption string) {
	sb.WriteString("<table>\n")
	if caption != "" {
		fmt.Fprintf(sb, "<caption>%s</caption>\n", html.EscapeString(caption))
	}

	if table != nil {
		for r := 0; r < table.Rows; r++ {
			sb.WriteString("<tr>")
			for c := 0; c < table.Cols; c++ {
				cell := table.CellAt(r, c)
				if cell == nil {
					// covered by a span anchor elsewhere
					continue
				}
				sb.WriteString("<td")
				if cell.RowSpan > 1 {
					fmt.Fprintf(sb, " rowspan=\"%d\"", cell.RowSpan)
				}
				if cell.ColSpan > 1 {
					fmt.Fprintf(sb, " colspan=\"%d\"", cell.ColSpan)
				}
				sb.WriteString(">")
				sb.WriteString(html.EscapeString(cell.Text))
				sb.WriteString("</td>")
			}
			sb.WriteString("</tr>\n")
		}
	}
	sb.WriteString("</table>\n")
}

// captionText returns the text of the block's nested caption child, if any
func (e *HTMLExporter) captionText(doc *model.Document, b model.Block) string {
	for _, childID := range b.Children {
		if child := doc.BlockByID(childID); child != nil && child.Type == model.BlockCaption {
			return child.Text
		}
	}
	return ""
}

// attrs renders the optional per-block attribute list
func (e *HTMLExporter) attrs(b model.Block) string {
	if !e.config.IncludeStyles || b.StyleID == "" {
		return ""
	}
	return fmt.Sprintf(" class=%q", "style-"+b.StyleID)
}

// headingTag picks the heading level from the block's role
func headingTag(role model.RoleType) string {
	switch role {
	case model.RoleTitle:
		return "h1"
	case model.RoleSubsectionTitle:
		return "h3"
	default:
		return "h2"
	}
}

// listMarkerPrefixes are the bullet characters stripped when rendering
// list items, since the <li> element supplies its own marker
var listMarkerPrefixes = []string{"•", "◦", "▪", "‣", "-", "*"}

func stripListMarker(text string) string {
	trimmed := strings.TrimSpace(text)
	for _, p := range listMarkerPrefixes {
		if strings.HasPrefix(trimmed, p+" ") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, p))
		}
	}
	return trimmed
}
