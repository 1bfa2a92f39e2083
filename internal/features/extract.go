package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/micrograph-features/internal/imaging"
)

// Epsilon guards the derived ratios against zero perimeters and axes.
const Epsilon = 1e-12

// Extract measures every labeled region.
//
// Parameters:
//   - labels: Label map; 0 is background, each positive value one region.
//   - intensity: Optional image of the same shape as labels. When non-nil the
//     table gains mean, min, and max intensity columns.
//
// Returns:
//   - *Table: One record per label present, in ascending label order. A map
//     with no labels yields zero records and the full column schema.
//   - error: *imaging.ShapeError if labels is malformed or intensity does not
//     match its shape.
//
// # Derived Metrics
//
//   - equivalent_diameter = sqrt(4*area/pi)
//   - circularity = 4*pi*area / (perimeter + Epsilon)^2
//   - aspect_ratio = (major + Epsilon) / (minor + Epsilon)
//   - solidity = area / convex area
//   - extent = area / bounding box area
//
// A single-pixel region has zero perimeter and zero minor axis; its
// circularity and aspect ratio are therefore very large but finite.
func Extract(labels *imaging.LabelMap, intensity *imaging.Image) (*Table, error) {
	if err := labels.Validate("extract features"); err != nil {
		return nil, err
	}
	if intensity != nil {
		if err := intensity.Validate("extract features"); err != nil {
			return nil, err
		}
		if intensity.Rows != labels.Rows || intensity.Cols != labels.Cols {
			return nil, &imaging.ShapeError{
				Op: "extract features", Rows: intensity.Rows, Cols: intensity.Cols, Len: len(intensity.Pix),
				Detail: fmt.Sprintf("intensity image does not match %dx%d label map", labels.Rows, labels.Cols),
			}
		}
	}

	table := &Table{Columns: Columns(intensity != nil), Records: []Record{}}
	for _, reg := range collectRegions(labels) {
		if reg == nil {
			continue
		}
		rec, err := measure(reg, intensity)
		if err != nil {
			return nil, fmt.Errorf("label %d: %w", reg.label, err)
		}
		table.Records = append(table.Records, rec)
	}
	return table, nil
}

func measure(reg *region, intensity *imaging.Image) (Record, error) {
	area := len(reg.index)
	crop := reg.crop()

	ell, err := FitEllipse(reg.rows, reg.cols)
	if err != nil {
		return Record{}, err
	}

	perim := Perimeter(crop)
	convex := ConvexArea(crop)
	a := float64(area)

	rec := Record{
		Label:              reg.label,
		Area:               area,
		Perimeter:          perim,
		EquivalentDiameter: math.Sqrt(4 * a / math.Pi),
		Circularity:        4 * math.Pi * a / ((perim + Epsilon) * (perim + Epsilon)),
		Eccentricity:       ell.Eccentricity,
		AspectRatio:        (ell.MajorAxis + Epsilon) / (ell.MinorAxis + Epsilon),
		Solidity:           a / float64(convex),
		Extent:             a / float64(reg.bbox.Area()),
		MajorAxisLength:    ell.MajorAxis,
		MinorAxisLength:    ell.MinorAxis,
		Orientation:        ell.Orientation,
		CentroidRow:        stat.Mean(reg.rows, nil),
		CentroidCol:        stat.Mean(reg.cols, nil),
		BBox:               reg.bbox,
		AreaBBox:           reg.bbox.Area(),
		AreaConvex:         convex,
	}

	if intensity != nil {
		vals := make([]float64, area)
		for i, idx := range reg.index {
			vals[i] = intensity.Pix[idx]
		}
		mean, min, max := stat.Mean(vals, nil), floats.Min(vals), floats.Max(vals)
		rec.MeanIntensity, rec.MinIntensity, rec.MaxIntensity = &mean, &min, &max
	}
	return rec, nil
}
