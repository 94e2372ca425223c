// Package browser drives a Chrome session over the DevTools protocol.
package browser

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

// Config controls how the Chrome session is created.
type Config struct {
	// ProfileDir is used as Chrome's user-data-dir. A persistent profile
	// keeps the operator's SSO session alive between runs.
	ProfileDir string
	Headless   bool
	// RemoteURL attaches to an already-running Chrome over CDP instead of
	// launching a local one. Used by container-based tests.
	RemoteURL string
}

// Session is the browser surface the capture loop depends on: navigate,
// run a script, save a screenshot, close.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// New launches (or attaches to) Chrome and verifies the session is usable.
// The returned session must be released with Close on every exit path.
func New(parent context.Context, cfg Config) (*Session, error) {
	var allocCtx context.Context
	var allocCancel context.CancelFunc

	if cfg.RemoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(parent, cfg.RemoteURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", cfg.Headless),
			chromedp.Flag("start-maximized", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
		if cfg.ProfileDir != "" {
			opts = append(opts, chromedp.UserDataDir(cfg.ProfileDir))
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(parent, opts...)
	}

	ctx, ctxCancel := chromedp.NewContext(allocCtx)

	cancel := func() {
		ctxCancel()
		allocCancel()
	}

	// An empty Run starts the browser process, surfacing launch failures
	// here rather than on the first navigation.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Session{ctx: ctx, cancel: cancel}, nil
}

// Navigate loads the URL and waits for the document body to attach.
// Chart rendering continues after this returns; the caller applies its own
// render delay.
func (s *Session) Navigate(url string) error {
	return chromedp.Run(s.ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Evaluate runs a script against the current page, discarding its result.
func (s *Session) Evaluate(script string) error {
	return chromedp.Run(s.ctx, chromedp.Evaluate(script, nil))
}

// Screenshot captures the full viewport as PNG and writes it to path.
func (s *Session) Screenshot(path string) error {
	var buf []byte
	if err := chromedp.Run(s.ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}

// Sleep blocks for the given duration, returning early if the session
// context is cancelled.
func (s *Session) Sleep(d time.Duration) error {
	return chromedp.Run(s.ctx, chromedp.Sleep(d))
}

// Close terminates the session and releases the allocator.
func (s *Session) Close() {
	s.cancel()
}
