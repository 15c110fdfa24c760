package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"covid-dashboard/utils"
)

// Snapshotter captures a full-page PNG of a served dashboard with headless Chrome.
type Snapshotter struct {
	chromeBin string
	timeout   time.Duration
	logger    *utils.Logger
	retry     *utils.RetryConfig
}

// NewSnapshotter creates a Snapshotter. An empty chromeBin is resolved from
// PATH and the usual install locations.
func NewSnapshotter(chromeBin string, timeout time.Duration, maxRetries int, logger *utils.Logger) *Snapshotter {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	return &Snapshotter{
		chromeBin: chromeBin,
		timeout:   timeout,
		logger:    logger,
		retry: &utils.RetryConfig{
			MaxAttempts: maxRetries,
			BaseDelay:   time.Second,
			Logger:      logger,
		},
	}
}

// Capture loads url, waits for the selector to be visible and returns a
// screenshot of the whole page.
func (s *Snapshotter) Capture(ctx context.Context, url, waitSelector string) ([]byte, error) {
	s.logger.Info("[snapshot] Using browser binary: %s", s.chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 1024),
	)
	if s.chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(s.chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	var png []byte
	err := s.retry.Do(ctx, "snapshot", func() error {
		tabCtx, cancelTab := chromedp.NewContext(browserCtx)
		defer cancelTab()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, s.timeout)
		defer cancelTimeout()

		return chromedp.Run(tabCtx,
			chromedp.Navigate(url),
			chromedp.WaitVisible(waitSelector, chromedp.ByQuery),
			chromedp.FullScreenshot(&png, 100),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", url, err)
	}

	s.logger.Info("[snapshot] Captured %s (%d bytes)", url, len(png))
	return png, nil
}

func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
