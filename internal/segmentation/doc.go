// Package segmentation turns a normalized micrograph into a foreground mask
// and a map of labeled objects.
//
// # Pipeline
//
// Run applies the stages in a fixed order:
//
//  1. Thresholding: Otsu's method picks one global threshold from a 256-bin
//     histogram; foreground is every sample strictly above it
//  2. Morphological refinement: opening then closing with a disk
//  3. Hole filling: enclosed 4-connected background regions below a size
//     limit become foreground
//  4. Small-object removal: 4-connected foreground regions below a size
//     limit become background
//  5. Labeling: 8-connected components numbered 1..k in row-major order
//
// Each stage is also exported on its own (OtsuThreshold, Open, Close,
// FillHoles, RemoveSmallObjects, Label) and returns a new mask.
//
// # Determinism
//
// No stage depends on map iteration, goroutine scheduling or randomness, so
// the same image and Options always produce an identical mask and label map.
package segmentation
