package segmentation

import "github.com/ironsheep/micrograph-features/internal/imaging"

// Connectivity selects which neighbors join two pixels into one component.
type Connectivity int

const (
	// Four joins pixels that share an edge.
	Four Connectivity = 4
	// Eight also joins pixels that share only a corner.
	Eight Connectivity = 8
)

var (
	neighbors4 = []Offset{{-1, 0}, {0, -1}, {0, 1}, {1, 0}}
	neighbors8 = []Offset{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
)

func (c Connectivity) offsets() []Offset {
	if c == Four {
		return neighbors4
	}
	return neighbors8
}

// component is one connected set of pixels, stored as row-major indices.
type component struct {
	pixels        []int
	touchesBorder bool
}

// components finds every connected set of pixels whose value equals want.
// Components are returned in row-major order of their first pixel.
func components(m *imaging.Mask, want bool, conn Connectivity) []component {
	visited := make([]bool, len(m.Pix))
	var out []component

	for i, v := range m.Pix {
		if v != want || visited[i] {
			continue
		}
		out = append(out, floodFill(m, visited, i, want, conn.offsets()))
	}
	return out
}

// floodFill collects the component containing start.
//
// Uses an explicit stack rather than recursion so that large regions cannot
// overflow the goroutine stack.
func floodFill(m *imaging.Mask, visited []bool, start int, want bool, nbrs []Offset) component {
	var comp component
	stack := []int{start}
	visited[start] = true

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		comp.pixels = append(comp.pixels, idx)

		r, c := idx/m.Cols, idx%m.Cols
		if r == 0 || c == 0 || r == m.Rows-1 || c == m.Cols-1 {
			comp.touchesBorder = true
		}

		for _, o := range nbrs {
			nr, nc := r+o.DR, c+o.DC
			if nr < 0 || nr >= m.Rows || nc < 0 || nc >= m.Cols {
				continue
			}
			n := nr*m.Cols + nc
			if !visited[n] && m.Pix[n] == want {
				visited[n] = true
				stack = append(stack, n)
			}
		}
	}
	return comp
}

// Label assigns each 8-connected foreground component a distinct positive
// label.
//
// Labels are contiguous from 1 and numbered in row-major order of each
// component's first pixel, so the same mask always yields the same LabelMap.
//
// Returns the label map and the number of components k; the labels present
// are exactly 1..k.
func Label(m *imaging.Mask) (*imaging.LabelMap, int) {
	labels := imaging.NewLabelMap(m.Rows, m.Cols)
	comps := components(m, true, Eight)
	for i, comp := range comps {
		for _, idx := range comp.pixels {
			labels.Pix[idx] = i + 1
		}
	}
	return labels, len(comps)
}
