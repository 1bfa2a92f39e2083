package segmentation

import "github.com/ironsheep/micrograph-features/internal/imaging"

// HistogramBins is the number of equal-width intensity bins Otsu's method
// evaluates between the image minimum and maximum.
const HistogramBins = 256

// OtsuThreshold returns the global threshold that maximizes the between-class
// variance of the image histogram.
//
// Parameters:
//   - img: Intensity image, any value range. Not modified.
//
// Returns:
//   - float64: The threshold t. Foreground is every sample strictly above t.
//   - error: *imaging.ShapeError if img is not a well-formed 2D grid.
//
// # Algorithm
//
//  1. Build a HistogramBins-bin histogram over [min, max]; the maximum falls
//     in the last bin
//  2. For each split between bin i and bin i+1, score w1*w2*(m1-m2)^2 where
//     w and m are the pixel count and mean (of bin centers) on each side
//  3. Return the center of bin i for the highest score; ties keep the lowest i
//
// A constant image has no split; its single value is returned, which leaves
// the foreground empty.
func OtsuThreshold(img *imaging.Image) (float64, error) {
	if err := img.Validate("otsu threshold"); err != nil {
		return 0, err
	}

	min, max := img.Pix[0], img.Pix[0]
	for _, v := range img.Pix {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max == min {
		return min, nil
	}

	span := max - min
	var hist [HistogramBins]float64
	for _, v := range img.Pix {
		idx := int((v - min) / span * HistogramBins)
		if idx >= HistogramBins {
			idx = HistogramBins - 1
		}
		hist[idx]++
	}

	binWidth := span / HistogramBins
	var centers [HistogramBins]float64
	for i := range centers {
		centers[i] = min + (float64(i)+0.5)*binWidth
	}

	// Cumulative class weights and sums from the left and from the right.
	var w1, s1, w2, s2 [HistogramBins]float64
	accW, accS := 0.0, 0.0
	for i := 0; i < HistogramBins; i++ {
		accW += hist[i]
		accS += hist[i] * centers[i]
		w1[i], s1[i] = accW, accS
	}
	accW, accS = 0, 0
	for i := HistogramBins - 1; i >= 0; i-- {
		accW += hist[i]
		accS += hist[i] * centers[i]
		w2[i], s2[i] = accW, accS
	}

	best, bestIdx := -1.0, 0
	for i := 0; i < HistogramBins-1; i++ {
		if w1[i] == 0 || w2[i+1] == 0 {
			continue
		}
		d := s1[i]/w1[i] - s2[i+1]/w2[i+1]
		score := w1[i] * w2[i+1] * d * d
		if score > best {
			best, bestIdx = score, i
		}
	}
	return centers[bestIdx], nil
}

// Threshold returns the mask of samples strictly greater than t.
func Threshold(img *imaging.Image, t float64) *imaging.Mask {
	mask := imaging.NewMask(img.Rows, img.Cols)
	for i, v := range img.Pix {
		mask.Pix[i] = v > t
	}
	return mask
}
