package segmentation

import "github.com/ironsheep/micrograph-features/internal/imaging"

// Offset is a (row, column) displacement within a structuring element.
type Offset struct {
	DR int
	DC int
}

// Disk returns the offsets of a disk-shaped structuring element: every
// (dr, dc) with dr^2 + dc^2 <= radius^2. Radius 0 yields the single origin
// offset.
func Disk(radius int) []Offset {
	if radius < 0 {
		radius = 0
	}
	r2 := radius * radius
	se := make([]Offset, 0, (2*radius+1)*(2*radius+1))
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			if dr*dr+dc*dc <= r2 {
				se = append(se, Offset{DR: dr, DC: dc})
			}
		}
	}
	return se
}

// reflect maps an index outside [0, n) back into range by mirroring about
// the edges, with the edge sample repeated (d c b a | a b c d | d c b a).
func reflect(i, n int) int {
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		} else {
			i = 2*n - i - 1
		}
	}
	return i
}

// Erode keeps a pixel only if every pixel under the structuring element is
// foreground. The mask is mirrored across its border, so an object touching
// the edge is not eroded from outside.
func Erode(m *imaging.Mask, se []Offset) *imaging.Mask {
	out := imaging.NewMask(m.Rows, m.Cols)
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			if !m.Pix[r*m.Cols+c] {
				continue
			}
			keep := true
			for _, o := range se {
				nr, nc := reflect(r+o.DR, m.Rows), reflect(c+o.DC, m.Cols)
				if !m.Pix[nr*m.Cols+nc] {
					keep = false
					break
				}
			}
			out.Pix[r*m.Cols+c] = keep
		}
	}
	return out
}

// Dilate sets a pixel if any pixel under the (symmetric) structuring element
// is foreground, with the same mirrored border as Erode.
func Dilate(m *imaging.Mask, se []Offset) *imaging.Mask {
	out := imaging.NewMask(m.Rows, m.Cols)
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			for _, o := range se {
				nr, nc := reflect(r-o.DR, m.Rows), reflect(c-o.DC, m.Cols)
				if m.Pix[nr*m.Cols+nc] {
					out.Pix[r*m.Cols+c] = true
					break
				}
			}
		}
	}
	return out
}

// Open removes protrusions and specks narrower than the structuring element
// (erosion followed by dilation).
func Open(m *imaging.Mask, se []Offset) *imaging.Mask {
	return Dilate(Erode(m, se), se)
}

// Close fills gaps narrower than the structuring element (dilation followed
// by erosion).
func Close(m *imaging.Mask, se []Offset) *imaging.Mask {
	return Erode(Dilate(m, se), se)
}
