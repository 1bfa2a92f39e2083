package imaging

import "fmt"

// ConstantLevel is the value every sample takes when the contrast range
// collapses (low percentile equals high percentile).
const ConstantLevel = 0.5

// NormalizeOptions controls denoising and contrast stretching.
type NormalizeOptions struct {
	// MedianSize is the median filter window edge. Values <= 1 skip filtering.
	MedianSize int

	// PLow and PHigh are the percentiles (0-100) mapped to 0.0 and 1.0.
	PLow  float64
	PHigh float64
}

// DefaultNormalizeOptions returns a 3x3 median filter and a 1st-99th
// percentile stretch.
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{MedianSize: 3, PLow: 1, PHigh: 99}
}

// Validate checks the percentile range.
func (o NormalizeOptions) Validate() error {
	if o.PLow < 0 || o.PHigh > 100 || o.PLow > o.PHigh {
		return fmt.Errorf("invalid percentile range [%g, %g]: need 0 <= low <= high <= 100", o.PLow, o.PHigh)
	}
	return nil
}

// Normalize denoises img and stretches its contrast into [0, 1].
//
// Parameters:
//   - img: Raw intensity image, any value range. Not modified.
//   - opts: Median window and percentile bounds.
//
// Returns:
//   - *Image: A new image with every sample in [0, 1].
//   - error: *ShapeError for a malformed grid, or an error for an invalid
//     percentile range.
//
// # Algorithm
//
//  1. Median filter with edge replication when opts.MedianSize > 1
//  2. lo, hi = the opts.PLow and opts.PHigh percentiles of the filtered image
//  3. Each sample is clipped to [lo, hi] and mapped linearly so lo -> 0, hi -> 1
//
// When lo == hi there is no contrast to stretch; every sample becomes
// ConstantLevel.
func Normalize(img *Image, opts NormalizeOptions) (*Image, error) {
	if err := img.Validate("normalize"); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	filtered, err := MedianFilter(img, opts.MedianSize)
	if err != nil {
		return nil, err
	}

	bounds, err := Percentiles(filtered, opts.PLow, opts.PHigh)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	lo, hi := bounds[0], bounds[1]

	out := NewImage(filtered.Rows, filtered.Cols)
	if hi <= lo {
		for i := range out.Pix {
			out.Pix[i] = ConstantLevel
		}
		return out, nil
	}

	span := hi - lo
	for i, v := range filtered.Pix {
		switch {
		case v <= lo:
			out.Pix[i] = 0
		case v >= hi:
			out.Pix[i] = 1
		default:
			out.Pix[i] = (v - lo) / span
		}
	}
	return out, nil
}
