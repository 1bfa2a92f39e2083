package features

import "github.com/ironsheep/micrograph-features/internal/imaging"

// BBox is a bounding box in (row, column) pixel coordinates.
//
//   - (RMin, CMin) is the top-left pixel (inclusive)
//   - (RMax, CMax) is one past the bottom-right pixel (exclusive)
type BBox struct {
	RMin int `json:"bbox_rmin"`
	CMin int `json:"bbox_cmin"`
	RMax int `json:"bbox_rmax"`
	CMax int `json:"bbox_cmax"`
}

// Rows returns the bounding box height.
func (b BBox) Rows() int { return b.RMax - b.RMin }

// Cols returns the bounding box width.
func (b BBox) Cols() int { return b.CMax - b.CMin }

// Area returns the number of pixels the bounding box covers.
func (b BBox) Area() int { return b.Rows() * b.Cols() }

// region gathers the pixels of one label.
type region struct {
	label int
	rows  []float64
	cols  []float64
	index []int // row-major pixel indices into the label map
	bbox  BBox
}

// collectRegions scans the label map once and groups pixels by label.
// The result is indexed by label; entry 0 and labels that never occur are nil.
func collectRegions(labels *imaging.LabelMap) []*region {
	regions := make([]*region, labels.Max()+1)
	for i, l := range labels.Pix {
		if l <= 0 {
			continue
		}
		r, c := i/labels.Cols, i%labels.Cols
		reg := regions[l]
		if reg == nil {
			reg = &region{label: l, bbox: BBox{RMin: r, CMin: c, RMax: r + 1, CMax: c + 1}}
			regions[l] = reg
		}
		reg.rows = append(reg.rows, float64(r))
		reg.cols = append(reg.cols, float64(c))
		reg.index = append(reg.index, i)

		if c < reg.bbox.CMin {
			reg.bbox.CMin = c
		}
		if c+1 > reg.bbox.CMax {
			reg.bbox.CMax = c + 1
		}
		// Row-major scan: r never decreases.
		reg.bbox.RMax = r + 1
	}
	return regions
}

// crop returns the region as a mask over its bounding box.
func (reg *region) crop() *imaging.Mask {
	m := imaging.NewMask(reg.bbox.Rows(), reg.bbox.Cols())
	for i := range reg.rows {
		m.Set(int(reg.rows[i])-reg.bbox.RMin, int(reg.cols[i])-reg.bbox.CMin, true)
	}
	return m
}
