package imaging

import (
	"errors"
	"fmt"
)

// ShapeError reports a grid that is not a well-formed two-dimensional array,
// or two paired grids whose shapes disagree.
type ShapeError struct {
	// Op names the operation that rejected the input (e.g. "normalize").
	Op string

	// Rows and Cols are the dimensions that were supplied.
	Rows int
	Cols int

	// Len is the length of the pixel buffer (or offending row) that was supplied.
	Len int

	// Detail describes what was wrong.
	Detail string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: expected a 2D grid, got %dx%d (len %d): %s", e.Op, e.Rows, e.Cols, e.Len, e.Detail)
}

// NonFiniteError reports a NaN or infinite sample. Thresholds, percentiles
// and histograms are undefined over such samples.
type NonFiniteError struct {
	Op    string
	Row   int
	Col   int
	Value float64
}

func (e *NonFiniteError) Error() string {
	return fmt.Sprintf("%s: non-finite sample %g at (%d, %d)", e.Op, e.Value, e.Row, e.Col)
}

// UnreadableImageError reports an image file that is missing, unreadable, or
// in an unsupported format.
type UnreadableImageError struct {
	Path string
	Err  error
}

func (e *UnreadableImageError) Error() string {
	return fmt.Sprintf("unreadable image %q: %v", e.Path, e.Err)
}

func (e *UnreadableImageError) Unwrap() error {
	return e.Err
}

// IsShapeError reports whether any error in err's chain is a *ShapeError.
func IsShapeError(err error) bool {
	var se *ShapeError
	return errors.As(err, &se)
}

// IsUnreadable reports whether any error in err's chain is an *UnreadableImageError.
func IsUnreadable(err error) bool {
	var ue *UnreadableImageError
	return errors.As(err, &ue)
}

// IsNonFinite reports whether any error in err's chain is a *NonFiniteError.
func IsNonFinite(err error) bool {
	var ne *NonFiniteError
	return errors.As(err, &ne)
}
