// Package imaging provides the raster types and intensity preprocessing used
// by the micrograph pipeline.
//
// It defines the three grids every later stage exchanges (Image, Mask and
// LabelMap), the file loader that turns PNG, JPEG, GIF, TIFF, and BMP files
// into single-channel images, and the Normalizer stage that denoises and
// contrast-stretches raw intensities into [0, 1].
//
// # Coordinate System
//
// All grids are addressed as (row, column), 0-based from the top-left corner:
//   - Row: vertical position (0 = topmost row)
//   - Column: horizontal position (0 = leftmost column)
//   - Storage is row-major; pixel (r, c) lives at Pix[r*Cols+c]
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Processing functions are
// stateless and never modify their inputs, so they can be called concurrently,
// including on the same shared cached image.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Grids that are empty, ragged, or whose buffer disagrees with their
//     dimensions (*ShapeError)
//   - NaN or infinite samples (*NonFiniteError)
//   - Missing, unreadable, or undecodable image files (*UnreadableImageError)
//   - Out-of-range percentile parameters
//
// # Performance Considerations
//
// For repeated operations on the same file, use ImageCache to avoid redundant
// disk reads and decodes. Consider using Evict() or Clear() to manage memory
// for long-running processes.
package imaging
