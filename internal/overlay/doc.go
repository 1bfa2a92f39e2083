// Package overlay draws segmentation results for visual inspection.
//
// Render produces a two-panel figure: the normalized image in grayscale on
// the left and, on the right, the same image with every labeled region tinted
// by a palette color at a fixed opacity. Background pixels are left untinted.
// Save writes the figure to disk.
//
// Colors cycle through the palette by label, so label 1 always gets the
// first color and label len(palette)+1 wraps around to it again.
package overlay
