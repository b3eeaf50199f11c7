package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"covid-explorer/utils"
)

// mapRenderDelay gives the map's scripts time to draw before the capture.
const mapRenderDelay = 3 * time.Second

// newBrowserContext creates a fresh headless chromedp context
func (r *Renderer) newBrowserContext(parent context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("log-level", "3"), // suppress Chrome logs
		chromedp.WindowSize(1280, 800),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	cancel := func() {
		cancelCtx()
		cancelAlloc()
	}
	return ctx, cancel
}

// SnapshotHTML opens a rendered HTML page in headless Chrome and saves a
// full-page PNG screenshot. Browser start-up failures are retried.
func (r *Renderer) SnapshotHTML(ctx context.Context, htmlPath, pngPath string) error {
	url, err := FileURL(htmlPath)
	if err != nil {
		return err
	}

	var shot []byte
	capture := func() error {
		bctx, cancel := r.newBrowserContext(ctx)
		defer cancel()

		bctx, cancelTimeout := context.WithTimeout(bctx, r.chromeTimeout)
		defer cancelTimeout()

		return chromedp.Run(bctx,
			chromedp.Navigate(url),
			chromedp.Sleep(mapRenderDelay),
			chromedp.FullScreenshot(&shot, 100), // quality 100 encodes PNG
		)
	}

	if err := utils.RetryWithBackoff(ctx, r.maxRetries, r.retryBase, capture, r.logger); err != nil {
		return fmt.Errorf("map screenshot failed: %w", err)
	}

	if err := os.WriteFile(pngPath, shot, 0644); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	r.logger.Info("Map screenshot written to: %s", pngPath)
	return nil
}

// FileURL returns a file:// URL for a local path.
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}
