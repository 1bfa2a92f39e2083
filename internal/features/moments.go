package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Ellipse is the ellipse with the same normalized second central moments as
// a region.
type Ellipse struct {
	// MajorAxis and MinorAxis are full axis lengths in pixels.
	MajorAxis float64
	MinorAxis float64

	// Orientation is the angle in radians between the row axis and the major
	// axis, in [-pi/2, pi/2]. A region running from top-left to bottom-right
	// has orientation -pi/4; a horizontal region has pi/2.
	Orientation float64

	// Eccentricity is in [0, 1); 0 is a circle.
	Eccentricity float64
}

// FitEllipse fits an ellipse to the pixel coordinates (rows[i], cols[i]).
//
// # Algorithm
//
// With row variance vr, column variance vc and covariance cv, the inertia
// tensor is
//
//	| vc  -cv |
//	| -cv  vr |
//
// Its eigenvalues l1 >= l2 >= 0 give major = 4*sqrt(l1), minor = 4*sqrt(l2)
// and eccentricity = sqrt(1 - l2/l1). A region whose tensor is zero (a single
// pixel) has eccentricity 0.
func FitEllipse(rows, cols []float64) (Ellipse, error) {
	if len(rows) == 0 || len(rows) != len(cols) {
		return Ellipse{}, fmt.Errorf("fit ellipse: need matching non-empty coordinates, got %d rows and %d cols", len(rows), len(cols))
	}

	mr := stat.Mean(rows, nil)
	mc := stat.Mean(cols, nil)
	var vr, vc, cv float64
	for i := range rows {
		dr, dc := rows[i]-mr, cols[i]-mc
		vr += dr * dr
		vc += dc * dc
		cv += dr * dc
	}
	n := float64(len(rows))
	a, b, c := vc/n, -cv/n, vr/n

	var eig mat.EigenSym
	if ok := eig.Factorize(mat.NewSymDense(2, []float64{a, b, b, c}), false); !ok {
		return Ellipse{}, fmt.Errorf("fit ellipse: eigendecomposition failed")
	}
	vals := eig.Values(nil) // ascending
	l1, l2 := math.Max(vals[1], 0), math.Max(vals[0], 0)

	e := Ellipse{
		MajorAxis: 4 * math.Sqrt(l1),
		MinorAxis: 4 * math.Sqrt(l2),
	}
	if l1 > 0 {
		e.Eccentricity = math.Sqrt(1 - l2/l1)
	}

	switch {
	case a-c != 0:
		e.Orientation = 0.5 * math.Atan2(-2*b, c-a)
	case b < 0:
		e.Orientation = -math.Pi / 4
	default:
		e.Orientation = math.Pi / 4
	}
	return e, nil
}
