package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ironsheep/micrograph-features/internal/config"
	"github.com/ironsheep/micrograph-features/internal/features"
	"github.com/ironsheep/micrograph-features/internal/imaging"
	"github.com/ironsheep/micrograph-features/internal/logging"
	"github.com/ironsheep/micrograph-features/internal/overlay"
	"github.com/ironsheep/micrograph-features/internal/segmentation"
)

// Runner executes the pipeline with a fixed configuration.
//
// A Runner holds no per-run state beyond its image cache, so one Runner may
// serve many runs, including concurrent ones.
type Runner struct {
	cfg    *config.Config
	logger zerolog.Logger
	cache  *imaging.ImageCache
}

// NewRunner creates a Runner. A nil cfg means config.DefaultConfig() and a nil
// cache gets a fresh one.
func NewRunner(cfg *config.Config, logger zerolog.Logger, cache *imaging.ImageCache) *Runner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if cache == nil {
		cache = imaging.NewImageCache()
	}
	return &Runner{
		cfg:    cfg,
		logger: logging.Component(logger, "pipeline"),
		cache:  cache,
	}
}

// Config returns the configuration the Runner was built with.
func (r *Runner) Config() *config.Config {
	return r.cfg
}

// Analysis holds the in-memory products of one pipeline pass.
type Analysis struct {
	// Normalized is the denoised, contrast-stretched image in [0, 1].
	Normalized *imaging.Image

	// Segmentation carries the threshold, mask, and label map.
	Segmentation *segmentation.Result

	// Table has one record per labeled object.
	Table *features.Table
}

// Analyze runs normalization, segmentation, and feature extraction on img
// without touching the filesystem.
//
// Returns *imaging.ShapeError for a malformed image and a wrapped error for
// invalid configuration.
func (r *Runner) Analyze(img *imaging.Image) (*Analysis, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	start := time.Now()
	norm, err := imaging.Normalize(img, r.cfg.NormalizeOptions())
	if err != nil {
		return nil, err
	}
	r.logger.Debug().
		Interface("options", r.cfg.NormalizeOptions()).
		Dur("elapsed", time.Since(start)).
		Msg("normalized")

	start = time.Now()
	seg, err := segmentation.Run(norm, r.cfg.SegmentOptions())
	if err != nil {
		return nil, err
	}
	r.logger.Debug().
		Interface("options", r.cfg.SegmentOptions()).
		Float64("threshold", seg.Threshold).
		Int("foreground_px", seg.Mask.Count()).
		Int("objects", seg.Count).
		Dur("elapsed", time.Since(start)).
		Msg("segmented")

	var intensity *imaging.Image
	if r.cfg.Features.Intensity {
		intensity = norm
	}
	start = time.Now()
	table, err := features.Extract(seg.Labels, intensity)
	if err != nil {
		return nil, err
	}
	r.logger.Debug().
		Int("records", table.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("features extracted")

	return &Analysis{Normalized: norm, Segmentation: seg, Table: table}, nil
}

// Params records the effective stage parameters of a run.
type Params struct {
	MedianSize  int     `json:"median_size"`
	PLow        float64 `json:"p_low"`
	PHigh       float64 `json:"p_high"`
	MinSize     int     `json:"min_size"`
	HoleSize    int     `json:"hole_size"`
	MorphRadius int     `json:"morph_radius"`
	Intensity   bool    `json:"intensity"`
}

// Summary describes a completed run. It is also written to the output
// directory as JSON.
type Summary struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// Input is the source image path.
	Input string `json:"input"`

	// Image is the source image metadata.
	Image *imaging.ImageInfo `json:"image"`

	// NObjects is the number of labeled objects.
	NObjects int `json:"n_objects"`

	// Threshold is the Otsu threshold on the normalized image.
	Threshold float64 `json:"threshold"`

	// CSV is the path of the feature table.
	CSV string `json:"csv"`

	// Overlay is the path of the overlay figure; empty when disabled.
	Overlay string `json:"overlay,omitempty"`

	// SummaryPath is where this summary was written.
	SummaryPath string `json:"summary"`

	Params Params `json:"params"`

	// ElapsedMS is the wall time of the run in milliseconds.
	ElapsedMS int64 `json:"elapsed_ms"`
}

// Run processes the image at inputPath and writes the feature table, the
// overlay figure (when enabled), and a JSON summary into outDir, which is
// created if needed.
//
// Returns *imaging.UnreadableImageError if the image cannot be loaded.
func (r *Runner) Run(inputPath, outDir string) (*Summary, error) {
	runID := uuid.NewString()
	log := r.logger.With().Str("run_id", runID).Logger()
	start := time.Now()

	log.Info().Str("input", inputPath).Str("outdir", outDir).Msg("run started")

	info, err := imaging.LoadImageInfo(r.cache, inputPath)
	if err != nil {
		return nil, err
	}
	raw, err := r.cache.Load(inputPath)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Int("width", info.Width).
		Int("height", info.Height).
		Str("format", info.Format).
		Str("color_depth", info.ColorDepth).
		Msg("image loaded")

	res, err := r.Analyze(raw)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", inputPath, err)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	summary := &Summary{
		RunID:       runID,
		Input:       inputPath,
		Image:       info,
		NObjects:    res.Segmentation.Count,
		Threshold:   res.Segmentation.Threshold,
		CSV:         filepath.Join(outDir, r.cfg.Output.FeaturesFile),
		SummaryPath: filepath.Join(outDir, r.cfg.Output.SummaryFile),
		Params:      r.params(),
	}

	if err := res.Table.SaveCSV(summary.CSV); err != nil {
		return nil, err
	}
	log.Info().Str("path", summary.CSV).Int("rows", res.Table.Len()).Msg("feature table written")

	if r.cfg.Overlay.Enabled {
		summary.Overlay = filepath.Join(outDir, r.cfg.Output.OverlayFile)
		if err := overlay.Save(res.Normalized, res.Segmentation.Labels, summary.Overlay, r.cfg.OverlayOptions()); err != nil {
			return nil, err
		}
		log.Info().Str("path", summary.Overlay).Msg("overlay written")
	}

	summary.ElapsedMS = time.Since(start).Milliseconds()
	if err := writeSummary(summary); err != nil {
		return nil, err
	}

	log.Info().
		Int("objects", summary.NObjects).
		Int64("elapsed_ms", summary.ElapsedMS).
		Msg("run complete")
	return summary, nil
}

func (r *Runner) params() Params {
	return ParamsFor(r.cfg)
}

// ParamsFor extracts the stage parameters recorded in a run summary.
func ParamsFor(cfg *config.Config) Params {
	return Params{
		MedianSize:  cfg.Normalize.MedianSize,
		PLow:        cfg.Normalize.PLow,
		PHigh:       cfg.Normalize.PHigh,
		MinSize:     cfg.Segment.MinSize,
		HoleSize:    cfg.Segment.HoleSize,
		MorphRadius: cfg.Segment.MorphRadius,
		Intensity:   cfg.Features.Intensity,
	}
}

func writeSummary(s *Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(s.SummaryPath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
