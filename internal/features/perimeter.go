package features

import (
	"math"

	"github.com/ironsheep/micrograph-features/internal/imaging"
)

// Perimeter estimates the boundary length of the foreground in m.
//
// # Algorithm
//
// Border pixels are foreground pixels with at least one 4-neighbor that is
// background or outside the grid. Each border pixel is scored by how its
// neighboring border pixels are arranged:
//
//	code = 1 + 2*(edge-adjacent border pixels) + 10*(corner-adjacent border pixels)
//
// and the code is mapped to a length contribution:
//   - 5, 7, 15, 17, 25, 27 (straight run): 1
//   - 21, 33 (diagonal step): sqrt(2)
//   - 13, 23 (corner): (1 + sqrt(2)) / 2
//   - anything else: 0
//
// A 6x6 square measures 20 and a single isolated pixel measures 0.
func Perimeter(m *imaging.Mask) float64 {
	border := make([]bool, len(m.Pix))
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			if !m.Pix[r*m.Cols+c] {
				continue
			}
			for _, o := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
				nr, nc := r+o[0], c+o[1]
				if nr < 0 || nr >= m.Rows || nc < 0 || nc >= m.Cols || !m.Pix[nr*m.Cols+nc] {
					border[r*m.Cols+c] = true
					break
				}
			}
		}
	}

	isBorder := func(r, c int) bool {
		return r >= 0 && r < m.Rows && c >= 0 && c < m.Cols && border[r*m.Cols+c]
	}

	total := 0.0
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			if !border[r*m.Cols+c] {
				continue
			}
			code := 1
			for _, o := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
				if isBorder(r+o[0], c+o[1]) {
					code += 2
				}
			}
			for _, o := range [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}} {
				if isBorder(r+o[0], c+o[1]) {
					code += 10
				}
			}
			total += perimeterWeight(code)
		}
	}
	return total
}

func perimeterWeight(code int) float64 {
	switch code {
	case 5, 7, 15, 17, 25, 27:
		return 1
	case 21, 33:
		return math.Sqrt2
	case 13, 23:
		return (1 + math.Sqrt2) / 2
	}
	return 0
}
