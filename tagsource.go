package strata

import (
	"context"

	"github.com/tsawler/strata/model"
)

// TagSource supplies external semantic tags for a page. Implementations
// may read tags from a file, a service, or an upstream classifier. A nil
// TagSource on the pipeline means pure-geometry mode: blocks keep their
// geometry-derived types and no rhetoric is attached.
//
// A TagSource error degrades the affected page to pure geometry and is
// reported as a warning; it never fails the document.
type TagSource interface {
	// TagsForPage returns the semantic tags targeting the given
	// 1-indexed page. An empty slice is a valid answer.
	TagsForPage(ctx context.Context, pageNumber int) ([]model.SemanticTag, error)
}

// StaticTags is a TagSource backed by an in-memory tag slice, bucketed
// by page on construction. It is the usual source when tags arrive as a
// single sidecar payload alongside the geometry.
type StaticTags struct {
	byPage map[int][]model.SemanticTag
}

// NewStaticTags creates a StaticTags source from a flat tag slice
func NewStaticTags(tags []model.SemanticTag) *StaticTags {
	byPage := make(map[int][]model.SemanticTag)
	for _, t := range tags {
		byPage[t.Page] = append(byPage[t.Page], t)
	}
	return &StaticTags{byPage: byPage}
}

// TagsForPage implements the TagSource interface
func (s *StaticTags) TagsForPage(_ context.Context, pageNumber int) ([]model.SemanticTag, error) {
	return s.byPage[pageNumber], nil
}
