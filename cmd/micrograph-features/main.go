package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/ironsheep/micrograph-features/internal/config"
	"github.com/ironsheep/micrograph-features/internal/logging"
	"github.com/ironsheep/micrograph-features/internal/pipeline"
	"github.com/ironsheep/micrograph-features/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const defaultConfigPath = "micrograph-features.yaml"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Fprintf(stdout, "micrograph-features %s\n", Version)
			fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
			return 0
		case "--help", "-h", "help":
			printUsage(stdout)
			return 0
		case "serve":
			return serve(args[1:], stderr)
		case "init-config":
			return initConfig(args[1:], stdout, stderr)
		}
	}
	return analyze(args, stdout, stderr)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "micrograph-features - segment a grayscale micrograph and measure every object")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  micrograph-features -image PATH [options]   Run the pipeline once")
	fmt.Fprintln(w, "  micrograph-features serve [-config FILE]    Start the MCP server on stdin/stdout")
	fmt.Fprintln(w, "  micrograph-features init-config [FILE]      Write a default configuration file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs := newFlagSet(w, &cliOptions{})
	fs.PrintDefaults()
	fmt.Fprintln(w, "  --version, -v    Print version information")
	fmt.Fprintln(w, "  --help, -h       Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintf(w, "  %s=debug    Default log level\n", logging.EnvLevel)
}

// cliOptions holds the parsed command-line flags.
type cliOptions struct {
	image       string
	outDir      string
	configPath  string
	median      int
	minSize     int
	holeSize    int
	morphRadius int
	title       string
	logLevel    string
	logFormat   string
	noOverlay   bool
}

func newFlagSet(w io.Writer, o *cliOptions) *flag.FlagSet {
	fs := flag.NewFlagSet("micrograph-features", flag.ContinueOnError)
	fs.SetOutput(w)
	fs.StringVar(&o.image, "image", "", "Path to input image (png/tif/jpg/bmp/gif)")
	fs.StringVar(&o.outDir, "outdir", "outputs", "Output directory")
	fs.StringVar(&o.configPath, "config", defaultConfigPath, "YAML configuration file; missing means defaults")
	fs.IntVar(&o.median, "median", 0, "Median filter size (overrides config)")
	fs.IntVar(&o.minSize, "min-size", 0, "Minimum object size in pixels (overrides config)")
	fs.IntVar(&o.holeSize, "hole-size", 0, "Fill holes smaller than this many pixels (overrides config)")
	fs.IntVar(&o.morphRadius, "morph-radius", 0, "Morphology radius for opening/closing (overrides config)")
	fs.StringVar(&o.title, "title", "", "Overlay title (overrides config)")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	fs.StringVar(&o.logFormat, "log-format", "", "Log format: console or json (overrides config)")
	fs.BoolVar(&o.noOverlay, "no-overlay", false, "Skip the overlay figure")
	return fs
}

// loadConfig reads the configuration file and applies every flag that was
// set explicitly.
func loadConfig(fs *flag.FlagSet, o *cliOptions) (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	cfg.Logging.Level = logging.LevelFromEnv(cfg.Logging.Level)

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "median":
			cfg.Normalize.MedianSize = o.median
		case "min-size":
			cfg.Segment.MinSize = o.minSize
		case "hole-size":
			cfg.Segment.HoleSize = o.holeSize
		case "morph-radius":
			cfg.Segment.MorphRadius = o.morphRadius
		case "title":
			cfg.Overlay.Title = o.title
		case "log-level":
			cfg.Logging.Level = o.logLevel
		case "log-format":
			cfg.Logging.Format = o.logFormat
		case "no-overlay":
			cfg.Overlay.Enabled = !o.noOverlay
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setup(args []string, stderr io.Writer) (*cliOptions, *config.Config, zerolog.Logger, error) {
	o := &cliOptions{}
	fs := newFlagSet(stderr, o)
	if err := fs.Parse(args); err != nil {
		return nil, nil, zerolog.Nop(), err
	}
	if fs.NArg() > 0 {
		return nil, nil, zerolog.Nop(), fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg, err := loadConfig(fs, o)
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}

	// stdout carries the summary or the MCP protocol
	logger, err := logging.New(stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}
	return o, cfg, logger, nil
}

func analyze(args []string, stdout, stderr io.Writer) int {
	o, cfg, logger, err := setup(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if o.image == "" {
		fmt.Fprintln(stderr, "Error: -image is required")
		return 1
	}

	summary, err := pipeline.NewRunner(cfg, logger, nil).Run(o.image, o.outDir)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, "Done.")
	fmt.Fprintln(stdout, string(data))
	return 0
}

func serve(args []string, stderr io.Writer) int {
	_, cfg, logger, err := setup(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger.Debug().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Msg("micrograph MCP server starting")

	srv := server.New(cfg, logger, Version)
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("server error")
		return 1
	}
	return 0
}

func initConfig(args []string, stdout, stderr io.Writer) int {
	path := defaultConfigPath
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(stderr, "Error: %s already exists\n", path)
		return 1
	}
	if err := config.CreateDefaultConfigFile(path); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Wrote %s\n", path)
	return 0
}
