// Package capture renders the /calendar page in headless Chromium and saves
// it as a PNG preview.
package capture

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"jobcal/internal/config"
	appLog "jobcal/internal/log"
)

// Defaults match the layout of the /calendar page.
const (
	DefaultWidth   = 1280
	DefaultHeight  = 900
	DefaultTimeout = 30 * time.Second
)

// ReadySelector is set on the page root once the grid has rendered.
const ReadySelector = `[data-ready="true"]`

// Options defines one capture.
type Options struct {
	// URL of the page, e.g. "http://127.0.0.1:8080/calendar".
	URL string
	// Output is where the PNG is written.
	Output string

	// Width and Height are the viewport size in pixels.
	Width  int
	Height int

	// Timeout bounds the whole capture.
	Timeout time.Duration

	// Username and Password are sent when the page sits behind basic auth.
	Username string
	Password string
}

// FromConfig derives capture options for the server described by cfg.
func FromConfig(cfg *config.Config) Options {
	opts := Options{
		URL:    cfg.Capture.URL,
		Output: cfg.Capture.Output,
		Width:  cfg.Capture.Width,
		Height: cfg.Capture.Height,
	}
	if opts.URL == "" {
		opts.URL = "http://" + cfg.Listen + "/calendar"
	}
	if cfg.BasicAuth != nil {
		opts.Username = cfg.BasicAuth.Username
		opts.Password = cfg.BasicAuth.Password
	}
	return opts
}

func (o Options) normalized() (Options, error) {
	if o.URL == "" {
		return o, errors.New("capture: URL is required")
	}
	if o.Output == "" {
		return o, errors.New("capture: output path is required")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Username != "" {
		u, err := url.Parse(o.URL)
		if err != nil {
			return o, fmt.Errorf("capture: bad URL: %w", err)
		}
		u.User = url.UserPassword(o.Username, o.Password)
		o.URL = u.String()
	}
	return o, nil
}

// CaptureWeekPNG navigates to opts.URL, waits for ReadySelector and writes a
// full-page screenshot to opts.Output.
func CaptureWeekPNG(parent context.Context, opts Options) error {
	opts, err := opts.normalized()
	if err != nil {
		return err
	}

	ctx, cancel := chromedp.NewContext(parent)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	started := time.Now()
	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(ReadySelector, chromedp.ByQuery),
		chromedp.FullScreenshot(&png, 100),
	}
	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := writeFileAtomic(opts.Output, png); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}
	appLog.Info("preview captured", "output", opts.Output, "bytes", len(png), "took", time.Since(started).String())
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".preview-*.png")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
