package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/blend"
	imgkit "github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/micrograph-features/internal/imaging"
)

// titleBand is the height in pixels reserved above each panel for its title.
const titleBand = 24

// InputTitle labels the left panel.
const InputTitle = "Input"

// Options controls the composite figure.
type Options struct {
	// Title labels the right (overlay) panel.
	Title string

	// Alpha is the label color opacity in [0, 1].
	Alpha float64

	// Width and Height are the canvas size in pixels. Each panel gets half
	// the width.
	Width  int
	Height int

	// Palette lists "#rrggbb" label colors. Empty means DefaultPalette.
	Palette []string
}

// DefaultOptions returns a 1600x800 canvas with 35% label opacity.
func DefaultOptions() Options {
	return Options{
		Title:   "Segmentation overlay",
		Alpha:   0.35,
		Width:   1600,
		Height:  800,
		Palette: DefaultPalette,
	}
}

// Validate checks opacity and canvas size.
func (o Options) Validate() error {
	if o.Alpha < 0 || o.Alpha > 1 {
		return fmt.Errorf("alpha must be in [0, 1], got %g", o.Alpha)
	}
	if o.Width < 2 || o.Height <= titleBand {
		return fmt.Errorf("canvas %dx%d too small", o.Width, o.Height)
	}
	return nil
}

// Blend colors each labeled pixel of img and returns the blended image at
// the native resolution.
//
// Labeled pixels become Alpha*color + (1-Alpha)*gray; background pixels keep
// their gray value.
func Blend(img *imaging.Image, labels *imaging.LabelMap, palette Palette, alpha float64) (*image.RGBA, error) {
	if err := img.Validate("overlay"); err != nil {
		return nil, err
	}
	if err := labels.Validate("overlay"); err != nil {
		return nil, err
	}
	if img.Rows != labels.Rows || img.Cols != labels.Cols {
		return nil, &imaging.ShapeError{
			Op: "overlay", Rows: labels.Rows, Cols: labels.Cols, Len: len(labels.Pix),
			Detail: fmt.Sprintf("label map does not match %dx%d image", img.Rows, img.Cols),
		}
	}

	gray := grayRGBA(img)
	colored := image.NewRGBA(gray.Bounds())
	copy(colored.Pix, gray.Pix)
	for i, l := range labels.Pix {
		if l <= 0 {
			continue
		}
		r, g, b := palette.For(l).RGB255()
		off := (i/img.Cols)*colored.Stride + (i%img.Cols)*4
		colored.Pix[off+0] = r
		colored.Pix[off+1] = g
		colored.Pix[off+2] = b
	}

	out := blend.Opacity(gray, colored, alpha)
	// Blending truncates to 8 bits; put untouched background back exactly.
	for i, l := range labels.Pix {
		if l > 0 {
			continue
		}
		off := (i/img.Cols)*out.Stride + (i%img.Cols)*4
		copy(out.Pix[off:off+4], gray.Pix[off:off+4])
	}
	return out, nil
}

// Render builds the side-by-side figure: the grayscale image on the left and
// the label overlay on the right, each titled and scaled to fit its half.
//
// Parameters:
//   - img: Normalized image with samples in [0, 1]; values outside are clipped.
//   - labels: Label map with the same shape as img.
//   - opts: Canvas, title, and palette settings.
//
// Returns:
//   - image.Image: The composite, opts.Width x opts.Height.
//   - error: *imaging.ShapeError for mismatched inputs, or an error for
//     invalid options.
func Render(img *imaging.Image, labels *imaging.LabelMap, opts Options) (image.Image, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("overlay: %w", err)
	}
	hexes := opts.Palette
	if len(hexes) == 0 {
		hexes = DefaultPalette
	}
	palette, err := ParsePalette(hexes)
	if err != nil {
		return nil, fmt.Errorf("overlay: %w", err)
	}

	blended, err := Blend(img, labels, palette, opts.Alpha)
	if err != nil {
		return nil, err
	}

	canvas := imgkit.New(opts.Width, opts.Height, color.White)
	half := opts.Width / 2
	canvas = placePanel(canvas, grayRGBA(img), InputTitle, 0, half, opts.Height)
	canvas = placePanel(canvas, blended, opts.Title, half, opts.Width-half, opts.Height)
	return canvas, nil
}

// Save renders the figure and writes it to path, creating parent directories
// as needed. The format follows the file extension (PNG recommended).
func Save(img *imaging.Image, labels *imaging.LabelMap, path string, opts Options) error {
	fig, err := Render(img, labels, opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := imgkit.Save(fig, path); err != nil {
		return fmt.Errorf("failed to save overlay: %w", err)
	}
	return nil
}

// placePanel scales src with nearest-neighbor sampling to fit a panel of
// width w starting at column x0, centers it below the title band, and draws
// the title.
func placePanel(canvas *image.NRGBA, src image.Image, title string, x0, w, h int) *image.NRGBA {
	b := src.Bounds()
	scale := math.Min(float64(w)/float64(b.Dx()), float64(h-titleBand)/float64(b.Dy()))
	pw := max(1, int(float64(b.Dx())*scale))
	ph := max(1, int(float64(b.Dy())*scale))

	scaled := imgkit.Resize(src, pw, ph, imgkit.NearestNeighbor)
	pos := image.Pt(x0+(w-pw)/2, titleBand+(h-titleBand-ph)/2)
	canvas = imgkit.Paste(canvas, scaled, pos)

	drawTitle(canvas, title, x0, w)
	return canvas
}

func drawTitle(dst *image.NRGBA, title string, x0, w int) {
	if title == "" {
		return
	}
	face := basicfont.Face7x13
	ink, _ := colorful.Hex("#202020")
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(ink),
		Face: face,
	}
	tw := d.MeasureString(title).Round()
	x := x0 + max(0, (w-tw)/2)
	d.Dot = fixed.P(x, (titleBand+face.Metrics().Ascent.Round())/2)
	d.DrawString(title)
}

// grayRGBA renders img as opaque gray, mapping [0, 1] to [0, 255].
func grayRGBA(img *imaging.Image) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Cols, img.Rows))
	for i, v := range img.Pix {
		g := uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
		off := (i/img.Cols)*out.Stride + (i%img.Cols)*4
		out.Pix[off+0] = g
		out.Pix[off+1] = g
		out.Pix[off+2] = g
		out.Pix[off+3] = 255
	}
	return out
}
