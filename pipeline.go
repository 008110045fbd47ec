package strata

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/strata/assemble"
	"github.com/tsawler/strata/layout"
	"github.com/tsawler/strata/merge"
	"github.com/tsawler/strata/model"
	"github.com/tsawler/strata/tables"
)

// Pipeline runs the full reconstruction: geometry clustering, table
// detection, semantic tag matching, and tree assembly. Pages are
// processed in parallel; assembly is a single deterministic pass, so
// the same input and options always produce the same document.
type Pipeline struct {
	options Options
	tags    TagSource
	logger  *zap.Logger
}

// NewPipeline creates a pipeline with default options and no tag source
func NewPipeline() *Pipeline {
	return NewPipelineWithOptions(DefaultOptions())
}

// NewPipelineWithOptions creates a pipeline with custom options
func NewPipelineWithOptions(options Options) *Pipeline {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		options: options,
		logger:  logger,
	}
}

// WithTagSource sets the semantic tag source and returns the pipeline
// for chaining. Without a tag source the pipeline runs in pure-geometry
// mode.
func (p *Pipeline) WithTagSource(tags TagSource) *Pipeline {
	p.tags = tags
	return p
}

// WithLogger sets the structured logger and returns the pipeline for
// chaining
func (p *Pipeline) WithLogger(logger *zap.Logger) *Pipeline {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// pageOutcome collects one page's results plus its warnings, so warning
// order can be reassembled deterministically after the parallel stage
type pageOutcome struct {
	result   assemble.PageResult
	warnings []Warning
}

// Process runs the pipeline over the given input and returns the
// assembled document. Warnings report skipped pages, degraded tag
// sources, and unmatched tags; the error is non-nil only when no valid
// document could be produced at all.
func (p *Pipeline) Process(ctx context.Context, input model.DocumentInput) (*model.Document, []Warning, error) {
	if len(input.Pages) == 0 {
		return nil, nil, fmt.Errorf("strata: input has no pages")
	}

	pages := make([]model.PageInput, len(input.Pages))
	copy(pages, input.Pages)
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].Number < pages[j].Number
	})

	workers := p.options.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p.logger.Info("processing document",
		zap.String("document_id", input.DocumentID),
		zap.Int("pages", len(pages)),
		zap.Int("workers", workers))

	outcomes := make([]pageOutcome, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range pages {
		i := i
		g.Go(func() error {
			outcome, err := p.processPage(gctx, pages[i])
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var warnings []Warning
	results := make([]assemble.PageResult, len(outcomes))
	for i, o := range outcomes {
		results[i] = o.result
		warnings = append(warnings, o.warnings...)
	}

	assembler := assemble.NewAssemblerWithConfig(p.options.Assemble)
	doc, err := assembler.Assemble(input.DocumentID, input.Source, results)
	if err != nil {
		return nil, warnings, err
	}

	p.logger.Info("document assembled",
		zap.String("document_id", doc.Document.DocumentID),
		zap.Int("blocks", len(doc.Blocks)),
		zap.Int("tables", len(doc.Tables)),
		zap.Int("warnings", len(warnings)))

	return doc, warnings, nil
}

// processPage runs the per-page stages: geometry validation, clustering,
// classification, table detection, table-region dedup, and tag matching
func (p *Pipeline) processPage(ctx context.Context, page model.PageInput) (pageOutcome, error) {
	outcome := pageOutcome{
		result: assemble.PageResult{
			Number:   page.Number,
			Width:    page.Width,
			Height:   page.Height,
			Rotation: page.Rotation,
		},
	}

	if err := ctx.Err(); err != nil {
		return outcome, err
	}

	if msg := validateGeometry(page); msg != "" {
		outcome.warnings = append(outcome.warnings, Warning{
			Page:    page.Number,
			Kind:    WarnBadGeometry,
			Message: msg,
		})
		p.logger.Warn("skipping page with bad geometry",
			zap.Int("page", page.Number),
			zap.String("reason", msg))
		return outcome, nil
	}

	if len(page.Chars) == 0 && len(page.Rules) == 0 {
		outcome.warnings = append(outcome.warnings, Warning{
			Page:    page.Number,
			Kind:    WarnEmptyPage,
			Message: "no characters or ruled lines",
		})
		return outcome, nil
	}

	words := layout.NewWordBuilderWithConfig(p.options.Words).Build(page.Chars)
	lines := layout.NewLineBuilderWithConfig(p.options.Lines).Build(words)
	blocks := layout.NewBlockBuilderWithConfig(p.options.Blocks).Build(lines)
	for i := range blocks {
		blocks[i].Page = page.Number
	}
	layout.NewClassifierWithConfig(p.options.Classify).Classify(blocks, page.Width, page.Height)

	regions := tables.NewExtractorWithConfig(p.options.Tables).Detect(page.Chars, page.Rules)
	blocks, dropped := tables.FilterBlocks(blocks, regions, p.options.Tables.BlockOverlap)

	p.logger.Debug("page geometry reconstructed",
		zap.Int("page", page.Number),
		zap.Int("words", len(words)),
		zap.Int("lines", len(lines)),
		zap.Int("blocks", len(blocks)),
		zap.Int("tables", len(regions)),
		zap.Int("blocks_absorbed", dropped))

	if p.tags != nil {
		outcome.warnings = append(outcome.warnings, p.matchTags(ctx, page.Number, blocks)...)
	}

	outcome.result.Blocks = blocks
	outcome.result.Tables = regions
	return outcome, nil
}

// matchTags fetches this page's semantic tags and applies them onto the
// geometry blocks. Tag source failures degrade the page to pure
// geometry instead of failing the document.
func (p *Pipeline) matchTags(ctx context.Context, pageNumber int, blocks []layout.Block) []Warning {
	tags, err := p.tags.TagsForPage(ctx, pageNumber)
	if err != nil {
		p.logger.Warn("tag source failed, page degraded to pure geometry",
			zap.Int("page", pageNumber),
			zap.Error(err))
		return []Warning{{
			Page:    pageNumber,
			Kind:    WarnTagSource,
			Message: err.Error(),
		}}
	}
	if len(tags) == 0 {
		return nil
	}

	var warnings []Warning
	unmatched := merge.NewMatcherWithConfig(p.options.Merge).Match(blocks, tags)
	for _, u := range unmatched {
		warnings = append(warnings, Warning{
			Page: pageNumber,
			Kind: WarnUnmatchedTag,
			Message: fmt.Sprintf("no block above threshold for tag %q (best score %.2f)",
				snippet(u.Tag.Text, 40), u.BestScore),
		})
	}
	return warnings
}

// validateGeometry reports the first fatal geometry defect of a page,
// or an empty string when the page is usable
func validateGeometry(page model.PageInput) string {
	if page.Width <= 0 || page.Height <= 0 {
		return fmt.Sprintf("non-positive page dimensions %gx%g", page.Width, page.Height)
	}
	if math.IsNaN(page.Width) || math.IsInf(page.Width, 0) ||
		math.IsNaN(page.Height) || math.IsInf(page.Height, 0) {
		return "non-finite page dimensions"
	}
	for _, c := range page.Chars {
		if !c.BBox.IsValid() {
			return fmt.Sprintf("character %q has an invalid bounding box", c.Text)
		}
	}
	for _, r := range page.Rules {
		if !finitePoint(r.Start) || !finitePoint(r.End) {
			return "ruled line with non-finite coordinates"
		}
	}
	return ""
}

func finitePoint(pt model.Point) bool {
	return !math.IsNaN(pt.X) && !math.IsInf(pt.X, 0) &&
		!math.IsNaN(pt.Y) && !math.IsInf(pt.Y, 0)
}

// snippet truncates s to at most n runes for log and warning output
func snippet(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
