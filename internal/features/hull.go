package features

import (
	"sort"

	"github.com/ironsheep/micrograph-features/internal/imaging"
)

// point is a sub-pixel (row, column) coordinate.
type point struct {
	r, c float64
}

// hullTolerance absorbs rounding when testing pixel centers against hull edges.
const hullTolerance = 1e-10

// ConvexArea returns the number of pixel centers inside or on the convex hull
// of the foreground in m.
//
// Each foreground pixel contributes the midpoints of its four edges to the
// hull, so a single pixel has a convex area of 1 and a straight line of n
// pixels has a convex area of n.
func ConvexArea(m *imaging.Mask) int {
	var pts []point
	for r := 0; r < m.Rows; r++ {
		lo, hi := -1, -1
		for c := 0; c < m.Cols; c++ {
			if m.Pix[r*m.Cols+c] {
				if lo < 0 {
					lo = c
				}
				hi = c
			}
		}
		if lo < 0 {
			continue
		}
		// Only the extreme pixels of a row can reach the hull.
		for _, c := range []int{lo, hi} {
			fr, fc := float64(r), float64(c)
			pts = append(pts,
				point{fr - 0.5, fc}, point{fr + 0.5, fc},
				point{fr, fc - 0.5}, point{fr, fc + 0.5})
		}
	}
	if len(pts) == 0 {
		return 0
	}

	hull := convexHull(pts)
	count := 0
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			if insideHull(hull, point{float64(r), float64(c)}) {
				count++
			}
		}
	}
	return count
}

// convexHull returns the hull vertices in counter-clockwise order using
// Andrew's monotone chain. Collinear points are dropped.
func convexHull(pts []point) []point {
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].c != pts[j].c {
			return pts[i].c < pts[j].c
		}
		return pts[i].r < pts[j].r
	})

	hull := make([]point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// cross is the z component of (a->b) x (a->p) with c as x and r as y.
func cross(a, b, p point) float64 {
	return (b.c-a.c)*(p.r-a.r) - (b.r-a.r)*(p.c-a.c)
}

func insideHull(hull []point, p point) bool {
	n := len(hull)
	for i := 0; i < n; i++ {
		if cross(hull[i], hull[(i+1)%n], p) < -hullTolerance {
			return false
		}
	}
	return true
}
