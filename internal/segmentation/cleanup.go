package segmentation

import "github.com/ironsheep/micrograph-features/internal/imaging"

// FillHoles flips enclosed background regions smaller than maxArea pixels to
// foreground and returns the result as a new mask.
//
// A hole is a 4-connected background component that does not touch the image
// border. maxArea <= 0 disables filling.
func FillHoles(m *imaging.Mask, maxArea int) *imaging.Mask {
	out := m.Clone()
	if maxArea <= 0 {
		return out
	}
	for _, comp := range components(m, false, Four) {
		if comp.touchesBorder || len(comp.pixels) >= maxArea {
			continue
		}
		for _, idx := range comp.pixels {
			out.Pix[idx] = true
		}
	}
	return out
}

// RemoveSmallObjects flips 4-connected foreground components smaller than
// minArea pixels to background and returns the result as a new mask.
// minArea <= 0 keeps everything.
//
// Size is judged on 4-connected pieces, so blobs that touch only at a corner
// must each reach minArea even though Label later joins them.
func RemoveSmallObjects(m *imaging.Mask, minArea int) *imaging.Mask {
	out := m.Clone()
	if minArea <= 0 {
		return out
	}
	for _, comp := range components(m, true, Four) {
		if len(comp.pixels) >= minArea {
			continue
		}
		for _, idx := range comp.pixels {
			out.Pix[idx] = false
		}
	}
	return out
}
