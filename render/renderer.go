package render

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot/vg"

	"covid-explorer/config"
	"covid-explorer/utils"
)

// Renderer writes chart artifacts into an output directory
type Renderer struct {
	outputDir     string
	width         vg.Length
	height        vg.Length
	chromeTimeout time.Duration
	maxRetries    int
	retryBase     time.Duration
	logger        *utils.Logger
}

// NewRenderer creates a Renderer from the output section of cfg
func NewRenderer(cfg *config.Config, logger *utils.Logger) *Renderer {
	return &Renderer{
		outputDir:     cfg.OutputDir,
		width:         vg.Length(cfg.ChartWidthInches) * vg.Inch,
		height:        vg.Length(cfg.ChartHeightInches) * vg.Inch,
		chromeTimeout: cfg.ChromeTimeout,
		maxRetries:    cfg.MaxRetries,
		retryBase:     time.Second,
		logger:        logger,
	}
}

// path resolves a chart file name inside the output directory and makes sure
// the directory exists. Absolute names are used as given.
func (r *Renderer) path(name string) (string, error) {
	full := name
	if !filepath.IsAbs(name) {
		full = filepath.Join(r.outputDir, name)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return full, nil
}
