// Package features measures the labeled regions of a segmented micrograph.
//
// Extract turns a label map (and optionally the intensity image it was
// segmented from) into a Table with one Record per region: size, shape,
// position, best-fit ellipse, convexity, and intensity statistics. The table
// serializes to CSV with a fixed column order.
//
// # Coordinate System
//
// Positions are (row, column), 0-based from the top-left pixel. Centroids
// are real-valued means of pixel coordinates. Bounding boxes use an inclusive
// minimum and exclusive maximum, so bbox_rmax - bbox_rmin is the height.
//
// # Measurement Conventions
//
//   - Area counts pixels
//   - Perimeter weights 4-connected border pixels by their neighborhood
//     (see Perimeter)
//   - Ellipse parameters come from the second central moments (see FitEllipse)
//   - Convex area counts pixel centers inside the hull of the pixel edges
//     (see ConvexArea)
//
// Degenerate regions never fail: ratios with a possibly zero denominator are
// guarded by Epsilon.
package features
