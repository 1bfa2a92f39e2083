package imaging

import "math"

// Image is a single-channel grid of real-valued samples stored row-major.
//
// Stages in this module never modify an Image they receive; each stage returns
// a freshly allocated Image. Pixel (r, c) lives at Pix[r*Cols+c].
type Image struct {
	Rows int
	Cols int
	Pix  []float64
}

// NewImage allocates a zero-filled rows x cols image.
func NewImage(rows, cols int) *Image {
	return &Image{Rows: rows, Cols: cols, Pix: make([]float64, rows*cols)}
}

// FromRows builds an Image from a slice of equally sized rows.
//
// Returns a *ShapeError if rows is empty, any row is empty, or the rows are
// ragged.
func FromRows(rows [][]float64) (*Image, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, &ShapeError{Op: "from rows", Rows: len(rows), Detail: "empty grid"}
	}
	cols := len(rows[0])
	img := NewImage(len(rows), cols)
	for r, row := range rows {
		if len(row) != cols {
			return nil, &ShapeError{Op: "from rows", Rows: len(rows), Cols: cols, Len: len(row),
				Detail: "ragged rows"}
		}
		copy(img.Pix[r*cols:], row)
	}
	return img, nil
}

// At returns the sample at row r, column c.
func (im *Image) At(r, c int) float64 {
	return im.Pix[r*im.Cols+c]
}

// Set writes the sample at row r, column c.
func (im *Image) Set(r, c int, v float64) {
	im.Pix[r*im.Cols+c] = v
}

// Clone returns a deep copy of the image.
func (im *Image) Clone() *Image {
	out := NewImage(im.Rows, im.Cols)
	copy(out.Pix, im.Pix)
	return out
}

// Validate reports a *ShapeError if the image is not a well-formed 2D grid,
// and a *NonFiniteError if any sample is NaN or infinite.
func (im *Image) Validate(op string) error {
	if im == nil {
		return &ShapeError{Op: op, Detail: "nil image"}
	}
	if err := checkShape(op, im.Rows, im.Cols, len(im.Pix)); err != nil {
		return err
	}
	for i, v := range im.Pix {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &NonFiniteError{Op: op, Row: i / im.Cols, Col: i % im.Cols, Value: v}
		}
	}
	return nil
}

// Mask is a boolean grid, true marking foreground.
type Mask struct {
	Rows int
	Cols int
	Pix  []bool
}

// NewMask allocates an all-background rows x cols mask.
func NewMask(rows, cols int) *Mask {
	return &Mask{Rows: rows, Cols: cols, Pix: make([]bool, rows*cols)}
}

// At reports whether pixel (r, c) is foreground.
func (m *Mask) At(r, c int) bool {
	return m.Pix[r*m.Cols+c]
}

// Set marks pixel (r, c) as foreground (true) or background (false).
func (m *Mask) Set(r, c int, v bool) {
	m.Pix[r*m.Cols+c] = v
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	out := NewMask(m.Rows, m.Cols)
	copy(out.Pix, m.Pix)
	return out
}

// Count returns the number of foreground pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// Validate reports a *ShapeError if the mask is not a well-formed 2D grid.
func (m *Mask) Validate(op string) error {
	if m == nil {
		return &ShapeError{Op: op, Detail: "nil mask"}
	}
	return checkShape(op, m.Rows, m.Cols, len(m.Pix))
}

// LabelMap assigns every pixel a non-negative component label; 0 is background.
type LabelMap struct {
	Rows int
	Cols int
	Pix  []int
}

// NewLabelMap allocates an all-background rows x cols label map.
func NewLabelMap(rows, cols int) *LabelMap {
	return &LabelMap{Rows: rows, Cols: cols, Pix: make([]int, rows*cols)}
}

// At returns the label of pixel (r, c).
func (l *LabelMap) At(r, c int) int {
	return l.Pix[r*l.Cols+c]
}

// Set assigns label v to pixel (r, c).
func (l *LabelMap) Set(r, c int, v int) {
	l.Pix[r*l.Cols+c] = v
}

// Max returns the largest label present, 0 for an all-background map.
func (l *LabelMap) Max() int {
	max := 0
	for _, v := range l.Pix {
		if v > max {
			max = v
		}
	}
	return max
}

// Validate reports a *ShapeError if the label map is not a well-formed 2D grid.
func (l *LabelMap) Validate(op string) error {
	if l == nil {
		return &ShapeError{Op: op, Detail: "nil label map"}
	}
	return checkShape(op, l.Rows, l.Cols, len(l.Pix))
}

func checkShape(op string, rows, cols, n int) error {
	if rows <= 0 || cols <= 0 {
		return &ShapeError{Op: op, Rows: rows, Cols: cols, Len: n, Detail: "non-positive dimension"}
	}
	if n != rows*cols {
		return &ShapeError{Op: op, Rows: rows, Cols: cols, Len: n, Detail: "pixel buffer does not match dimensions"}
	}
	return nil
}
