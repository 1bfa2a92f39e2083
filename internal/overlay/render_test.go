package overlay

import (
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	imgkit "github.com/disintegration/imaging"

	"github.com/ironsheep/micrograph-features/internal/imaging"
)

// createScene returns a 10x12 gradient image with two labeled blocks.
func createScene(t *testing.T) (*imaging.Image, *imaging.LabelMap) {
	t.Helper()
	img := imaging.NewImage(10, 12)
	for i := range img.Pix {
		img.Pix[i] = float64(i%12) / 11.0
	}
	labels := imaging.NewLabelMap(10, 12)
	for r := 1; r < 4; r++ {
		for c := 1; c < 4; c++ {
			labels.Set(r, c, 1)
		}
	}
	for r := 6; r < 9; r++ {
		for c := 7; c < 11; c++ {
			labels.Set(r, c, 2)
		}
	}
	return img, labels
}

func TestParsePalette(t *testing.T) {
	p, err := ParsePalette(DefaultPalette)
	if err != nil {
		t.Fatalf("ParsePalette failed: %v", err)
	}
	if len(p) != 10 {
		t.Fatalf("palette size: got %d, want 10", len(p))
	}

	tests := []struct {
		label   int
		r, g, b uint8
	}{
		{1, 255, 0, 0},
		{2, 0, 0, 255},
		{5, 0, 128, 0},
		{11, 255, 0, 0},
		{12, 0, 0, 255},
	}
	for _, tt := range tests {
		r, g, b := p.For(tt.label).RGB255()
		if r != tt.r || g != tt.g || b != tt.b {
			t.Errorf("label %d: got (%d,%d,%d), want (%d,%d,%d)", tt.label, r, g, b, tt.r, tt.g, tt.b)
		}
	}

	if _, err := ParsePalette(nil); err == nil {
		t.Error("empty palette should fail")
	}
	if _, err := ParsePalette([]string{"#ff0000", "blue"}); err == nil {
		t.Error("invalid hex should fail")
	}
}

func TestBlend(t *testing.T) {
	img, labels := createScene(t)
	p, err := ParsePalette(DefaultPalette)
	if err != nil {
		t.Fatalf("ParsePalette failed: %v", err)
	}

	out, err := Blend(img, labels, p, 0.35)
	if err != nil {
		t.Fatalf("Blend failed: %v", err)
	}
	if out.Bounds().Dx() != 12 || out.Bounds().Dy() != 10 {
		t.Fatalf("size: got %v, want 12x10", out.Bounds())
	}

	// Background keeps its exact gray
	for _, pt := range [][2]int{{0, 0}, {5, 5}, {9, 11}} {
		r, c := pt[0], pt[1]
		want := uint8(math.Round(img.At(r, c) * 255))
		got := out.RGBAAt(c, r)
		if got.R != want || got.G != want || got.B != want {
			t.Errorf("background (%d,%d): got %v, want gray %d", r, c, got, want)
		}
	}

	// Label 1 is tinted red
	r, c := 2, 2
	gray := math.Round(img.At(r, c) * 255)
	got := out.RGBAAt(c, r)
	wantR := 0.35*255 + 0.65*gray
	wantGB := 0.65 * gray
	if math.Abs(float64(got.R)-wantR) > 1.5 || math.Abs(float64(got.G)-wantGB) > 1.5 || math.Abs(float64(got.B)-wantGB) > 1.5 {
		t.Errorf("label 1 pixel: got %v, want about (%.0f,%.0f,%.0f)", got, wantR, wantGB, wantGB)
	}
	if got.A != 255 {
		t.Errorf("alpha: got %d, want 255", got.A)
	}
}

func TestBlend_ShapeMismatch(t *testing.T) {
	img := imaging.NewImage(4, 4)
	labels := imaging.NewLabelMap(4, 5)
	p, _ := ParsePalette(DefaultPalette)
	if _, err := Blend(img, labels, p, 0.35); !imaging.IsShapeError(err) {
		t.Errorf("expected ShapeError, got %v", err)
	}
}

func TestRender(t *testing.T) {
	img, labels := createScene(t)
	opts := DefaultOptions()
	opts.Width, opts.Height = 400, 200

	fig, err := Render(img, labels, opts)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if fig.Bounds().Dx() != 400 || fig.Bounds().Dy() != 200 {
		t.Errorf("canvas: got %v, want 400x200", fig.Bounds())
	}

	// Panels are scaled up; the right panel carries label colors, the left
	// panel stays gray.
	var leftColored, rightColored bool
	b := fig.Bounds()
	for y := b.Min.Y + titleBand; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := fig.At(x, y).RGBA()
			if r == g && g == bl {
				continue
			}
			if x < 200 {
				leftColored = true
			} else {
				rightColored = true
			}
		}
	}
	if leftColored {
		t.Error("left panel should be grayscale")
	}
	if !rightColored {
		t.Error("right panel should contain label colors")
	}
}

func TestRender_InvalidOptions(t *testing.T) {
	img, labels := createScene(t)
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"alpha above one", func(o *Options) { o.Alpha = 1.5 }},
		{"negative alpha", func(o *Options) { o.Alpha = -0.1 }},
		{"tiny canvas", func(o *Options) { o.Height = 10 }},
		{"bad palette", func(o *Options) { o.Palette = []string{"nope"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			if _, err := Render(img, labels, opts); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestSave_CreatesDirectories(t *testing.T) {
	img, labels := createScene(t)
	path := filepath.Join(t.TempDir(), "figs", "run1", "overlay.png")

	opts := DefaultOptions()
	opts.Width, opts.Height = 320, 160
	if err := Save(img, labels, path, opts); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("overlay not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("overlay file is empty")
	}

	decoded, err := imgkit.Open(path)
	if err != nil {
		t.Fatalf("failed to decode overlay: %v", err)
	}
	if decoded.Bounds().Dx() != 320 || decoded.Bounds().Dy() != 160 {
		t.Errorf("saved size: got %v, want 320x160", decoded.Bounds())
	}
	if c := color.NRGBAModel.Convert(decoded.At(0, 0)).(color.NRGBA); c.A != 255 {
		t.Errorf("canvas corner should be opaque, got %v", c)
	}
}
