package report

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bobmcallan/fillshot/internal/common"
	"github.com/bobmcallan/fillshot/internal/oms"
)

// MetadataSource looks up descriptive attributes for a fill. Lookup
// failures are soft: the capture proceeds unlabeled.
type MetadataSource interface {
	FillMetadata(ctx context.Context, fillNumber int) (*oms.Metadata, error)
}

// Browser is the automation surface the runner consumes. *browser.Session
// implements it; tests substitute a stub.
type Browser interface {
	Navigate(url string) error
	Evaluate(script string) error
	Screenshot(path string) error
	Sleep(d time.Duration) error
}

// Config holds the runner's capture settings.
type Config struct {
	// BaseURL is the fullscreen report page the per-fill query string is
	// appended to.
	BaseURL string
	// LandingURL is opened once before the loop so the operator can
	// complete SSO login.
	LandingURL string
	OutputDir  string
	// RenderWait is the fixed post-navigation delay for client-side chart
	// rendering.
	RenderWait time.Duration
}

// Runner drives the sequential capture loop. It does not own the browser
// session; the caller creates it and guarantees its release.
type Runner struct {
	cfg      Config
	browser  Browser
	metadata MetadataSource
	logger   *common.Logger

	// waitForOperator blocks until the operator signals that interactive
	// login is complete.
	waitForOperator func() error

	captured []string
}

// NewRunner creates a runner. metadata may be nil, in which case every
// fill is captured unlabeled. continueSignal may be nil for
// non-interactive use.
func NewRunner(cfg Config, b Browser, metadata MetadataSource, continueSignal func() error, logger *common.Logger) *Runner {
	if cfg.LandingURL == "" {
		cfg.LandingURL = cfg.BaseURL
	}
	if cfg.RenderWait <= 0 {
		cfg.RenderWait = 5 * time.Second
	}
	if continueSignal == nil {
		continueSignal = func() error { return nil }
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Runner{
		cfg:             cfg,
		browser:         b,
		metadata:        metadata,
		logger:          logger,
		waitForOperator: continueSignal,
	}
}

// Run captures one screenshot per fill, strictly in order. A metadata or
// banner-injection failure only degrades that fill's labeling; a
// navigation or screenshot failure aborts the remaining fills.
func (r *Runner) Run(ctx context.Context, fillNumbers []int) error {
	r.captured = nil

	if err := os.MkdirAll(r.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", r.cfg.OutputDir, err)
	}

	// Land on the dashboard first so the operator can complete SSO login
	// in the visible browser window.
	if err := r.browser.Navigate(r.cfg.LandingURL); err != nil {
		return fmt.Errorf("failed to open landing page: %w", err)
	}
	if err := r.waitForOperator(); err != nil {
		return err
	}

	for _, fill := range fillNumbers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.capture(ctx, fill); err != nil {
			r.logger.Error().Int("fill", fill).Err(err).Msg("capture failed, aborting remaining fills")
			return err
		}
	}
	return nil
}

// capture runs the per-fill sequence: metadata, navigate, render wait,
// banner, screenshot.
func (r *Runner) capture(ctx context.Context, fill int) error {
	r.logger.Info().Int("fill", fill).Msg("processing fill")

	var meta *oms.Metadata
	if r.metadata != nil {
		m, err := r.metadata.FillMetadata(ctx, fill)
		if err != nil {
			r.logger.Warn().Int("fill", fill).Err(err).Msg("could not fetch metadata, capturing unlabeled")
		} else {
			meta = m
			r.logger.Info().
				Int("fill", fill).
				Str("label", meta.Label()).
				Str("type", meta.Type).
				Msg("metadata fetched")
		}
	}

	if err := r.browser.Navigate(BuildReportURL(r.cfg.BaseURL, fill)); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	r.logger.Debug().Int("fill", fill).Str("wait", r.cfg.RenderWait.String()).Msg("waiting for plots to render")
	if err := r.browser.Sleep(r.cfg.RenderWait); err != nil {
		return err
	}

	if meta != nil {
		if err := r.browser.Evaluate(bannerScript(fill, meta)); err != nil {
			r.logger.Warn().Int("fill", fill).Err(err).Msg("could not update page heading")
		}
	}

	path := r.outputPath(fill, meta)
	if err := r.browser.Screenshot(path); err != nil {
		return fmt.Errorf("screenshot failed: %w", err)
	}

	r.captured = append(r.captured, path)
	r.logger.Info().Int("fill", fill).Str("path", path).Msg("saved screenshot")
	return nil
}

// Captured returns the screenshot paths written by the last Run, in
// capture order.
func (r *Runner) Captured() []string {
	return r.captured
}

// outputPath names the screenshot: fill_<id>.png, with a
// _<system>_<bunches>b_<year> suffix when metadata is available. Repeat
// runs with the same inputs overwrite the same file.
func (r *Runner) outputPath(fill int, meta *oms.Metadata) string {
	name := fmt.Sprintf("fill_%d", fill)
	if meta != nil {
		name += fmt.Sprintf("_%s_%db_%s", meta.System, meta.Bunches, meta.Year)
	}
	return filepath.Join(r.cfg.OutputDir, name+".png")
}

// bannerScript prepends a styled metadata label to the report heading so
// the screenshot carries its own identification.
func bannerScript(fill int, meta *oms.Metadata) string {
	banner := fmt.Sprintf("Fill %d Bunches %d (%s %s)", fill, meta.Bunches, meta.System, meta.Year)
	return fmt.Sprintf(`
		var titleEl = document.querySelector('h3') || document.querySelector('h1');
		if (titleEl) {
			titleEl.textContent = '%s | ' + titleEl.textContent;
			titleEl.style.color = '#d32f2f';
			titleEl.style.fontWeight = 'bold';
			titleEl.style.fontSize = '1.5em';
		}
	`, escJS(banner))
}

func escJS(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return s
}

// StdinContinue returns a continue signal that prompts the operator and
// blocks until Enter is pressed (or input closes).
func StdinContinue(in io.Reader, out io.Writer) func() error {
	return func() error {
		line := strings.Repeat("=", 60)
		fmt.Fprintln(out)
		fmt.Fprintln(out, line)
		fmt.Fprintln(out, "WAITING FOR LOGIN")
		fmt.Fprintln(out, "Check the browser window. If the dashboard asks for CERN SSO")
		fmt.Fprintln(out, "login, complete it now. Press Enter here to start capturing.")
		fmt.Fprintln(out, line)
		fmt.Fprint(out, "Press Enter to continue... ")

		_, err := bufio.NewReader(in).ReadString('\n')
		if err == io.EOF {
			return nil
		}
		return err
	}
}
