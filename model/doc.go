// Package model defines the data types shared across the reconstruction
// pipeline: geometry primitives (points, bounding boxes, rule segments),
// the input records supplied by external extractors and taggers, and the
// final assembled document tree with its JSON serialization.
//
// Coordinates are y-down: (X0, Y0) is the top-left corner of a bounding
// box and (X1, Y1) the bottom-right, so X0 <= X1 and Y0 <= Y1 always hold
// for a valid box. All dimensions are in points (1 pt = 1/72 inch).
//
// Input types (Char, RuleSegment, PageInput, SemanticTag) are never
// mutated by the pipeline. The Document tree is built once by the
// assembler and treated as immutable afterwards.
package model
