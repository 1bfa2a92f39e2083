package imaging

import (
	"errors"
	"math"
	"testing"
)

// rampImage returns a rows x cols image whose samples increase row-major
// from 0 to rows*cols-1.
func rampImage(rows, cols int) *Image {
	img := NewImage(rows, cols)
	for i := range img.Pix {
		img.Pix[i] = float64(i)
	}
	return img
}

func TestFromRows(t *testing.T) {
	img, err := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}
	if img.Rows != 2 || img.Cols != 3 || img.At(1, 2) != 6 {
		t.Errorf("unexpected image: %+v", img)
	}

	tests := []struct {
		name string
		rows [][]float64
	}{
		{"nil", nil},
		{"empty row", [][]float64{{}}},
		{"ragged", [][]float64{{1, 2}, {3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromRows(tt.rows)
			if !IsShapeError(err) {
				t.Errorf("expected ShapeError, got %v", err)
			}
		})
	}
}

func TestValidate_ShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		img  *Image
	}{
		{"nil image", nil},
		{"zero rows", &Image{Rows: 0, Cols: 3}},
		{"buffer mismatch", &Image{Rows: 2, Cols: 2, Pix: make([]float64, 3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Normalize(tt.img, DefaultNormalizeOptions()); !IsShapeError(err) {
				t.Errorf("Normalize: expected ShapeError, got %v", err)
			}
			if _, err := MedianFilter(tt.img, 3); !IsShapeError(err) {
				t.Errorf("MedianFilter: expected ShapeError, got %v", err)
			}
		})
	}
}

func TestMedianFilter_RemovesImpulse(t *testing.T) {
	img := NewImage(5, 5)
	img.Set(2, 2, 1.0)

	out, err := MedianFilter(img, 3)
	if err != nil {
		t.Fatalf("MedianFilter failed: %v", err)
	}
	for i, v := range out.Pix {
		if v != 0 {
			t.Fatalf("pixel %d: got %g, want 0", i, v)
		}
	}
	if img.At(2, 2) != 1.0 {
		t.Error("MedianFilter modified its input")
	}
}

func TestMedianFilter_EdgeReplication(t *testing.T) {
	// Column 0 is bright; with replicated edges the left border stays bright.
	img := NewImage(4, 4)
	for r := 0; r < 4; r++ {
		img.Set(r, 0, 1.0)
	}

	out, err := MedianFilter(img, 3)
	if err != nil {
		t.Fatalf("MedianFilter failed: %v", err)
	}
	if out.Rows != 4 || out.Cols != 4 {
		t.Fatalf("shape changed: %dx%d", out.Rows, out.Cols)
	}
	for r := 0; r < 4; r++ {
		if out.At(r, 0) != 1.0 {
			t.Errorf("row %d col 0: got %g, want 1.0", r, out.At(r, 0))
		}
		if out.At(r, 1) != 0.0 {
			t.Errorf("row %d col 1: got %g, want 0.0", r, out.At(r, 1))
		}
	}
}

func TestMedianFilter_SizeOneIsCopy(t *testing.T) {
	img := rampImage(3, 3)
	out, err := MedianFilter(img, 1)
	if err != nil {
		t.Fatalf("MedianFilter failed: %v", err)
	}
	if out == img {
		t.Fatal("MedianFilter returned its input instead of a copy")
	}
	for i := range img.Pix {
		if out.Pix[i] != img.Pix[i] {
			t.Fatalf("pixel %d: got %g, want %g", i, out.Pix[i], img.Pix[i])
		}
	}
}

func TestPercentiles_LinearInterpolation(t *testing.T) {
	// Samples 0..10
	img := rampImage(1, 11)

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 0},
		{100, 10},
		{50, 5},
		{25, 2.5},
		{99, 9.9},
		{1, 0.1},
	}
	for _, tt := range tests {
		got, err := Percentile(img, tt.p)
		if err != nil {
			t.Fatalf("Percentile(%g) failed: %v", tt.p, err)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Percentile(%g): got %g, want %g", tt.p, got, tt.want)
		}
	}

	if _, err := Percentile(img, 101); err == nil {
		t.Error("Percentile(101) should fail")
	}
}

func TestNormalize_Bounds(t *testing.T) {
	img := NewImage(10, 10)
	for i := range img.Pix {
		// Values well outside [0, 1], including negatives
		img.Pix[i] = float64(i*i)/7.0 - 300
	}

	opts := []NormalizeOptions{
		{MedianSize: 1, PLow: 0, PHigh: 100},
		{MedianSize: 3, PLow: 1, PHigh: 99},
		{MedianSize: 5, PLow: 10, PHigh: 60},
		{MedianSize: 4, PLow: 2, PHigh: 98},
	}
	for _, o := range opts {
		out, err := Normalize(img, o)
		if err != nil {
			t.Fatalf("Normalize(%+v) failed: %v", o, err)
		}
		for i, v := range out.Pix {
			if v < 0 || v > 1 {
				t.Fatalf("Normalize(%+v) pixel %d = %g outside [0,1]", o, i, v)
			}
		}
	}
}

func TestNormalize_PercentileEndpoints(t *testing.T) {
	img := rampImage(5, 4) // 0..19

	out, err := Normalize(img, NormalizeOptions{MedianSize: 1, PLow: 0, PHigh: 100})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if out.Pix[0] != 0 {
		t.Errorf("minimum: got %g, want 0", out.Pix[0])
	}
	if math.Abs(out.Pix[19]-1) > 1e-12 {
		t.Errorf("maximum: got %g, want 1", out.Pix[19])
	}
	if math.Abs(out.Pix[10]-10.0/19.0) > 1e-12 {
		t.Errorf("midpoint: got %g, want %g", out.Pix[10], 10.0/19.0)
	}

	// Narrow percentile range clips the tails
	out, err = Normalize(img, NormalizeOptions{MedianSize: 1, PLow: 25, PHigh: 75})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if out.Pix[0] != 0 || out.Pix[4] != 0 {
		t.Errorf("low tail not clipped to 0: %g %g", out.Pix[0], out.Pix[4])
	}
	if out.Pix[19] != 1 || out.Pix[15] != 1 {
		t.Errorf("high tail not clipped to 1: %g %g", out.Pix[15], out.Pix[19])
	}
}

func TestNormalize_ConstantImage(t *testing.T) {
	img := NewImage(6, 6)
	for i := range img.Pix {
		img.Pix[i] = 42
	}

	out, err := Normalize(img, DefaultNormalizeOptions())
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	for i, v := range out.Pix {
		if v != ConstantLevel {
			t.Fatalf("pixel %d: got %g, want %g", i, v, ConstantLevel)
		}
	}
}

func TestNormalize_InvalidPercentiles(t *testing.T) {
	img := rampImage(3, 3)
	tests := []NormalizeOptions{
		{PLow: -1, PHigh: 99},
		{PLow: 1, PHigh: 101},
		{PLow: 80, PHigh: 20},
	}
	for _, o := range tests {
		_, err := Normalize(img, o)
		if err == nil {
			t.Errorf("Normalize(%+v) should fail", o)
		}
		if IsShapeError(err) {
			t.Errorf("Normalize(%+v) reported a ShapeError for a parameter problem", o)
		}
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	img := rampImage(4, 4)
	before := img.Clone()

	if _, err := Normalize(img, DefaultNormalizeOptions()); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	for i := range img.Pix {
		if img.Pix[i] != before.Pix[i] {
			t.Fatalf("input pixel %d changed from %g to %g", i, before.Pix[i], img.Pix[i])
		}
	}
}

func TestNormalize_NonFiniteSamples(t *testing.T) {
	tests := []struct {
		name  string
		value float64
	}{
		{"NaN", math.NaN()},
		{"+Inf", math.Inf(1)},
		{"-Inf", math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := rampImage(4, 4)
			img.Set(2, 1, tt.value)

			out, err := Normalize(img, NormalizeOptions{MedianSize: 1, PLow: 0, PHigh: 100})
			if !IsNonFinite(err) {
				t.Fatalf("expected NonFiniteError, got %v (output %v)", err, out)
			}
			var ne *NonFiniteError
			errors.As(err, &ne)
			if ne.Row != 2 || ne.Col != 1 {
				t.Errorf("position: got (%d, %d), want (2, 1)", ne.Row, ne.Col)
			}
			if IsShapeError(err) {
				t.Error("a non-finite sample is not a shape problem")
			}
			if _, err := Percentile(img, 50); !IsNonFinite(err) {
				t.Errorf("Percentile: expected NonFiniteError, got %v", err)
			}
		})
	}
}
