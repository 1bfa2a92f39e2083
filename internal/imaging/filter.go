package imaging

import (
	"fmt"
	"sort"
)

// MedianFilter replaces each sample with the median of its size x size
// neighborhood and returns the result as a new image.
//
// Parameters:
//   - img: Source image. Not modified.
//   - size: Window edge length in pixels. Values <= 1 return a copy of img.
//
// Returns:
//   - *Image: The filtered image, same shape as img.
//   - error: *ShapeError if img is not a well-formed 2D grid.
//
// # Window Placement
//
// For a window of size k the neighborhood covers offsets -k/2 through
// k-k/2-1 (integer division) on both axes, so odd sizes are centered and even
// sizes lean toward the top-left. When the window population is even the
// upper of the two middle values is taken.
//
// # Border Handling
//
// Samples outside the image replicate the nearest edge value (clamped
// coordinates), so the output shape always equals the input shape.
func MedianFilter(img *Image, size int) (*Image, error) {
	if err := img.Validate("median filter"); err != nil {
		return nil, err
	}
	if size <= 1 {
		return img.Clone(), nil
	}

	lo := -(size / 2)
	hi := size - size/2 - 1
	window := make([]float64, 0, size*size)
	out := NewImage(img.Rows, img.Cols)

	for r := 0; r < img.Rows; r++ {
		for c := 0; c < img.Cols; c++ {
			window = window[:0]
			for kr := lo; kr <= hi; kr++ {
				pr := clamp(r+kr, 0, img.Rows-1)
				for kc := lo; kc <= hi; kc++ {
					pc := clamp(c+kc, 0, img.Cols-1)
					window = append(window, img.Pix[pr*img.Cols+pc])
				}
			}
			sort.Float64s(window)
			out.Pix[r*img.Cols+c] = window[len(window)/2]
		}
	}
	return out, nil
}

// Percentile returns the p-th percentile (0-100) of the image samples using
// linear interpolation between the two nearest order statistics.
func Percentile(img *Image, p float64) (float64, error) {
	v, err := Percentiles(img, p)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

// Percentiles returns one percentile per entry of ps, sorting the samples once.
//
// Each p must lie in [0, 100]. The position of percentile p in the sorted
// samples is p/100*(n-1); fractional positions interpolate linearly between
// the neighboring samples.
func Percentiles(img *Image, ps ...float64) ([]float64, error) {
	if err := img.Validate("percentile"); err != nil {
		return nil, err
	}
	for _, p := range ps {
		if p < 0 || p > 100 {
			return nil, fmt.Errorf("percentile %g outside [0, 100]", p)
		}
	}

	sorted := make([]float64, len(img.Pix))
	copy(sorted, img.Pix)
	sort.Float64s(sorted)

	out := make([]float64, len(ps))
	last := len(sorted) - 1
	for i, p := range ps {
		pos := p / 100 * float64(last)
		below := int(pos)
		if below >= last {
			out[i] = sorted[last]
			continue
		}
		frac := pos - float64(below)
		out[i] = sorted[below] + frac*(sorted[below+1]-sorted[below])
	}
	return out, nil
}

// clamp constrains an integer value to the range [min, max].
// Used for edge replication in neighborhood operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
