package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/micrograph-features/internal/config"
)

// createCellsImage writes a 40x40 dark PNG with two bright 8x8 squares.
func createCellsImage(t *testing.T) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 40, 40))
	for _, origin := range []image.Point{{4, 4}, {24, 20}} {
		for y := origin.Y; y < origin.Y+8; y++ {
			for x := origin.X; x < origin.X+8; x++ {
				img.SetGray(x, y, color.Gray{Y: 210})
			}
		}
	}

	path := filepath.Join(t.TempDir(), "cells.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--version"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code: got %d, want 0", code)
	}
	if !strings.HasPrefix(stdout.String(), "micrograph-features "+Version) {
		t.Errorf("unexpected version output: %q", stdout.String())
	}
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--help"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code: got %d, want 0", code)
	}
	for _, want := range []string{"-image", "-min-size", "serve"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("help missing %q", want)
		}
	}
}

func TestRun_Analyze(t *testing.T) {
	t.Setenv("MICROGRAPH_LOG_LEVEL", "")
	outDir := filepath.Join(t.TempDir(), "out")
	args := []string{
		"-image", createCellsImage(t),
		"-outdir", outDir,
		"-config", filepath.Join(t.TempDir(), "absent.yaml"),
		"-min-size", "10",
		"-hole-size", "10",
		"-morph-radius", "1",
		"-no-overlay",
		"-log-level", "error",
	}

	var stdout, stderr bytes.Buffer
	if code := run(args, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code: got %d, want 0 (stderr: %s)", code, stderr.String())
	}

	out := stdout.String()
	if !strings.HasPrefix(out, "Done.\n") {
		t.Fatalf("output should start with Done.: %q", out)
	}

	var summary struct {
		NObjects int    `json:"n_objects"`
		CSV      string `json:"csv"`
		Overlay  string `json:"overlay"`
	}
	if err := json.Unmarshal([]byte(strings.TrimPrefix(out, "Done.\n")), &summary); err != nil {
		t.Fatalf("summary is not JSON: %v", err)
	}
	if summary.NObjects != 2 {
		t.Errorf("objects: got %d, want 2", summary.NObjects)
	}
	if summary.CSV != filepath.Join(outDir, "region_features.csv") {
		t.Errorf("csv path: got %q", summary.CSV)
	}
	if summary.Overlay != "" {
		t.Errorf("overlay should be disabled, got %q", summary.Overlay)
	}
}

func TestRun_Errors(t *testing.T) {
	missingConfig := filepath.Join(t.TempDir(), "absent.yaml")

	tests := []struct {
		name string
		args []string
	}{
		{"no image", []string{"-config", missingConfig}},
		{"unreadable image", []string{"-config", missingConfig, "-image", "/nonexistent/cells.png", "-outdir", t.TempDir()}},
		{"negative radius", []string{"-config", missingConfig, "-image", "x.png", "-morph-radius", "-1"}},
		{"bad log level", []string{"-config", missingConfig, "-image", "x.png", "-log-level", "loud"}},
		{"unknown flag", []string{"-frobnicate"}},
		{"stray argument", []string{"-config", missingConfig, "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tt.args, &stdout, &stderr); code != 1 {
				t.Errorf("exit code: got %d, want 1", code)
			}
			if stderr.Len() == 0 {
				t.Error("expected a message on stderr")
			}
			if strings.Contains(stdout.String(), "Done.") {
				t.Error("failed run printed Done.")
			}
		})
	}
}

func TestRun_ConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "mf.yaml")
	var stdout, stderr bytes.Buffer
	if code := run([]string{"init-config", cfgPath}, &stdout, &stderr); code != 0 {
		t.Fatalf("init-config failed: %s", stderr.String())
	}
	if code := run([]string{"init-config", cfgPath}, &stdout, &stderr); code != 1 {
		t.Error("init-config should refuse to overwrite")
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	cfg.Segment.MinSize = 10
	cfg.Segment.HoleSize = 10
	cfg.Segment.MorphRadius = 1
	cfg.Overlay.Width = 200
	cfg.Overlay.Height = 100
	cfg.Logging.Level = "error"
	if err := config.SaveConfig(cfg, cfgPath); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	t.Setenv("MICROGRAPH_LOG_LEVEL", "")
	outDir := t.TempDir()
	stdout.Reset()
	stderr.Reset()
	code := run([]string{"-config", cfgPath, "-image", createCellsImage(t), "-outdir", outDir}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code: got %d (stderr: %s)", code, stderr.String())
	}
	if _, err := os.Stat(filepath.Join(outDir, "overlay.png")); err != nil {
		t.Errorf("overlay not written: %v", err)
	}
}
