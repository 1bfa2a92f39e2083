package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

// ImageCache provides thread-safe caching of decoded grayscale images to avoid
// redundant disk reads.
//
// Entries are keyed by the exact path string passed to Load. Cached images are
// shared between callers and must be treated as read-only; every processing
// stage in this module returns new images instead of modifying its input.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or Clear().
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	img, err := cache.Load("/path/to/cells.tif")
//	if err != nil {
//	    return err
//	}
//	cache.Evict("/path/to/cells.tif") // Optional: free memory
type ImageCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	gray *Image
	info ImageInfo
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		entries: make(map[string]*cacheEntry),
	}
}

// Load retrieves a grayscale image from the cache or decodes it from disk.
//
// Parameters:
//   - path: File path to a PNG, JPEG, GIF, TIFF, or BMP image.
//
// Returns:
//   - *Image: Single-channel image with samples in [0, 1]. Shared; do not modify.
//   - error: *UnreadableImageError if the file is missing, unreadable, or not
//     a supported image.
func (c *ImageCache) Load(path string) (*Image, error) {
	e, err := c.entry(path)
	if err != nil {
		return nil, err
	}
	return e.gray, nil
}

func (c *ImageCache) entry(path string) (*cacheEntry, error) {
	c.mu.RLock()
	if e, ok := c.entries[path]; ok {
		c.mu.RUnlock()
		return e, nil
	}
	c.mu.RUnlock()

	e, err := decodeEntry(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[path] = e
	c.mu.Unlock()

	return e, nil
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
//
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// LoadGrayscale decodes an image file into a single-channel Image without
// caching.
func LoadGrayscale(path string) (*Image, error) {
	e, err := decodeEntry(path)
	if err != nil {
		return nil, err
	}
	return e.gray, nil
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels (number of columns).
	Width int `json:"width"`

	// Height is the image height in pixels (number of rows).
	Height int `json:"height"`

	// Format is derived from the file extension: "png", "jpeg", "gif",
	// "tiff", "bmp", or "unknown".
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// Grayscale is true when the file was stored as a single gray channel.
	Grayscale bool `json:"grayscale"`

	// HasAlpha indicates whether the image has an alpha (transparency) channel.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through the cache and returns its metadata.
//
// # Color Depth Detection
//
// Color depth is determined by the decoded Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	e, err := cache.entry(path)
	if err != nil {
		return nil, err
	}
	info := e.info
	return &info, nil
}

func decodeEntry(path string) (*cacheEntry, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, &UnreadableImageError{Path: path, Err: err}
	}
	if stat.IsDir() {
		return nil, &UnreadableImageError{Path: path, Err: fmt.Errorf("is a directory")}
	}

	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &UnreadableImageError{Path: path, Err: err}
	}

	gray, err := ToGray(src)
	if err != nil {
		return nil, &UnreadableImageError{Path: path, Err: err}
	}

	info := describe(src)
	info.FileSizeBytes = stat.Size()
	info.Format = "unknown"
	if f, err := imaging.FormatFromFilename(path); err == nil {
		info.Format = strings.ToLower(f.String())
	}

	return &cacheEntry{gray: gray, info: info}, nil
}

// ToGray collapses any image.Image into a single-channel Image in [0, 1].
//
// # Luminance Rule
//
//   - *image.Gray and *image.Gray16 are read directly, keeping 16-bit precision
//   - Every other color model is converted with ITU-R BT.601 weights
//     (0.299*R + 0.587*G + 0.114*B) via imaging.Grayscale; alpha is ignored
func ToGray(src image.Image) (*Image, error) {
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &ShapeError{Op: "to gray", Rows: b.Dy(), Cols: b.Dx(), Detail: "empty image"}
	}
	out := NewImage(b.Dy(), b.Dx())

	switch g := src.(type) {
	case *image.Gray:
		for y := 0; y < out.Rows; y++ {
			for x := 0; x < out.Cols; x++ {
				out.Pix[y*out.Cols+x] = float64(g.GrayAt(b.Min.X+x, b.Min.Y+y).Y) / 255.0
			}
		}
	case *image.Gray16:
		for y := 0; y < out.Rows; y++ {
			for x := 0; x < out.Cols; x++ {
				out.Pix[y*out.Cols+x] = float64(g.Gray16At(b.Min.X+x, b.Min.Y+y).Y) / 65535.0
			}
		}
	default:
		// imaging.Grayscale returns an NRGBA image anchored at (0, 0).
		n := imaging.Grayscale(src)
		for y := 0; y < out.Rows; y++ {
			row := n.Pix[y*n.Stride:]
			for x := 0; x < out.Cols; x++ {
				out.Pix[y*out.Cols+x] = float64(row[x*4]) / 255.0
			}
		}
	}
	return out, nil
}

func describe(src image.Image) ImageInfo {
	b := src.Bounds()
	info := ImageInfo{
		Width:      b.Dx(),
		Height:     b.Dy(),
		ColorDepth: "8-bit",
	}
	switch src.(type) {
	case *image.Gray:
		info.Grayscale = true
	case *image.Gray16:
		info.Grayscale = true
		info.ColorDepth = "16-bit"
	case *image.RGBA, *image.NRGBA:
		info.HasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		info.HasAlpha = true
		info.ColorDepth = "16-bit"
	}
	return info
}
