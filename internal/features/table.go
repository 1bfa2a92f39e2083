package features

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Column names in output order.
var (
	// leadingColumns come first in every table.
	leadingColumns = []string{
		"label", "area", "perimeter", "equivalent_diameter", "circularity",
		"eccentricity", "aspect_ratio", "solidity", "extent",
		"major_axis_length", "minor_axis_length", "orientation",
		"centroid_row", "centroid_col",
		"bbox_rmin", "bbox_cmin", "bbox_rmax", "bbox_cmax",
	}

	// intensityColumns follow when an intensity image was supplied.
	intensityColumns = []string{"mean_intensity", "min_intensity", "max_intensity"}

	// trailingColumns close every table.
	trailingColumns = []string{"area_bbox", "area_convex"}
)

// Columns returns the table schema, with or without the intensity columns.
func Columns(withIntensity bool) []string {
	cols := append([]string{}, leadingColumns...)
	if withIntensity {
		cols = append(cols, intensityColumns...)
	}
	return append(cols, trailingColumns...)
}

// Record holds the measurements of one labeled region.
type Record struct {
	// Label is the region's value in the label map.
	Label int `json:"label"`

	// Area is the pixel count.
	Area int `json:"area"`

	// Perimeter is the estimated boundary length in pixels.
	Perimeter float64 `json:"perimeter"`

	// EquivalentDiameter is the diameter of a circle with the same area.
	EquivalentDiameter float64 `json:"equivalent_diameter"`

	// Circularity is 4*pi*area / perimeter^2; about 1 for a disk.
	Circularity float64 `json:"circularity"`

	Eccentricity float64 `json:"eccentricity"`

	// AspectRatio is major axis over minor axis.
	AspectRatio float64 `json:"aspect_ratio"`

	// Solidity is area over convex area.
	Solidity float64 `json:"solidity"`

	// Extent is area over bounding box area.
	Extent float64 `json:"extent"`

	MajorAxisLength float64 `json:"major_axis_length"`
	MinorAxisLength float64 `json:"minor_axis_length"`
	Orientation     float64 `json:"orientation"`

	CentroidRow float64 `json:"centroid_row"`
	CentroidCol float64 `json:"centroid_col"`

	BBox

	// Intensity statistics; nil when no intensity image was supplied.
	MeanIntensity *float64 `json:"mean_intensity,omitempty"`
	MinIntensity  *float64 `json:"min_intensity,omitempty"`
	MaxIntensity  *float64 `json:"max_intensity,omitempty"`

	AreaBBox   int `json:"area_bbox"`
	AreaConvex int `json:"area_convex"`
}

// Table is the ordered set of region records produced by Extract.
type Table struct {
	// Columns is the schema, present even when Records is empty.
	Columns []string `json:"columns"`

	// Records has one entry per label, in ascending label order.
	Records []Record `json:"records"`
}

// HasIntensity reports whether the table carries intensity columns.
func (t *Table) HasIntensity() bool {
	for _, c := range t.Columns {
		if c == intensityColumns[0] {
			return true
		}
	}
	return false
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}

// Values formats a record as strings in column order. Integer columns are
// written as integers and real columns in their shortest round-trip form.
func (t *Table) Values(rec Record) []string {
	ints := func(v ...int) []string {
		out := make([]string, len(v))
		for i, x := range v {
			out[i] = strconv.Itoa(x)
		}
		return out
	}
	floats := func(v ...float64) []string {
		out := make([]string, len(v))
		for i, x := range v {
			out[i] = strconv.FormatFloat(x, 'g', -1, 64)
		}
		return out
	}

	row := make([]string, 0, len(t.Columns))
	row = append(row, ints(rec.Label, rec.Area)...)
	row = append(row, floats(rec.Perimeter, rec.EquivalentDiameter, rec.Circularity,
		rec.Eccentricity, rec.AspectRatio, rec.Solidity, rec.Extent,
		rec.MajorAxisLength, rec.MinorAxisLength, rec.Orientation,
		rec.CentroidRow, rec.CentroidCol)...)
	row = append(row, ints(rec.RMin, rec.CMin, rec.RMax, rec.CMax)...)
	if t.HasIntensity() {
		var mean, min, max float64
		if rec.MeanIntensity != nil {
			mean, min, max = *rec.MeanIntensity, *rec.MinIntensity, *rec.MaxIntensity
		}
		row = append(row, floats(mean, min, max)...)
	}
	return append(row, ints(rec.AreaBBox, rec.AreaConvex)...)
}

// WriteCSV writes the header row and one row per record to w.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, rec := range t.Records {
		if err := cw.Write(t.Values(rec)); err != nil {
			return fmt.Errorf("failed to write label %d: %w", rec.Label, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the table to path, creating parent directories as needed.
func (t *Table) SaveCSV(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
