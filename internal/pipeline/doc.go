// Package pipeline wires the processing stages into a single run.
//
// A run loads one grayscale micrograph, normalizes it, segments it into
// labeled objects, measures every object, and writes three files into the
// output directory:
//
//   - the feature table (CSV, one row per object)
//   - the overlay figure (PNG, optional)
//   - a JSON summary with the run ID, object count, output paths, and the
//     parameters used
//
// Stages run sequentially. Every failure is returned to the caller unchanged
// in kind, so *imaging.ShapeError, *imaging.NonFiniteError and
// *imaging.UnreadableImageError can be detected with imaging.IsShapeError,
// imaging.IsNonFinite and imaging.IsUnreadable.
package pipeline
