package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/fillshot/internal/browser"
	"github.com/bobmcallan/fillshot/internal/common"
	"github.com/bobmcallan/fillshot/internal/config"
	"github.com/bobmcallan/fillshot/internal/fills"
	"github.com/bobmcallan/fillshot/internal/oms"
	"github.com/bobmcallan/fillshot/internal/report"
)

// configPaths is a custom flag type that allows multiple -config flags.
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles configPaths
	outputDir   = flag.String("output", "", "Screenshot output directory (overrides config)")
	profileDir  = flag.String("profile", "", "Chrome profile directory (overrides config)")
	waitSeconds = flag.Int("wait", 0, "Seconds to wait for plots to render (overrides config)")
	headless    = flag.Bool("headless", false, "Run Chrome headless (requires an already-authenticated profile)")
	showVersion = flag.Bool("version", false, "Print version information")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	config.LoadVersionFromFile()

	if *showVersion {
		fmt.Printf("fillshot version %s\n", config.GetVersion())
		os.Exit(0)
	}

	// Auto-discover config file if not specified.
	// Binary-relative paths are tried first so the config is found even when
	// the working directory differs from the binary location.
	if len(configFiles) == 0 {
		for _, path := range configSearchPaths() {
			if _, err := os.Stat(path); err == nil {
				configFiles = append(configFiles, path)
				break
			}
		}
	}

	cfg, err := config.LoadFromFiles(configFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// CLI flag overrides (highest priority)
	config.ApplyFlagOverrides(cfg, *outputDir, *profileDir, *waitSeconds, *headless)

	if issues := cfg.Validate(); len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "Configuration error — mandatory fields are missing or invalid:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "  - %s\n", issue)
		}
		os.Exit(1)
	}

	os.Exit(run(cfg, flag.Args()))
}

// run resolves input, launches the browser, and drives the capture loop.
// It returns the process exit code; deferred cleanup is the reason this is
// not inlined into main.
func run(cfg *config.Config, args []string) int {
	logger := common.NewLoggerFromConfig(cfg.Logging).WithCorrelationId(uuid.New().String())

	input, err := fills.ResolveInput(args, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	if input == "" {
		// Operator gave no input; not a failure.
		return 0
	}

	fillNumbers := fills.Parse(input)
	if len(fillNumbers) == 0 {
		fmt.Println("No valid fill numbers provided.")
		return 0
	}
	fmt.Printf("Found %d fills: %v\n", len(fillNumbers), fillNumbers)

	// SIGINT/SIGTERM cancel the context; the deferred Close below still
	// runs, so the browser session is released on interrupt too.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("profile", cfg.Browser.ProfileDir).
		Bool("headless", cfg.Browser.Headless).
		Msg("starting browser")

	session, err := browser.New(ctx, browser.Config{
		ProfileDir: cfg.Browser.ProfileDir,
		Headless:   cfg.Browser.Headless,
		RemoteURL:  cfg.Browser.RemoteURL,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to start browser")
		return 1
	}
	defer session.Close()

	// Surfaced at debug level after the run; a dashboard that threw during
	// rendering usually explains a blank screenshot.
	collector := browser.NewJSErrorCollector(session)

	metadata := oms.NewClient(oms.Config{
		BaseURL:            cfg.OMS.BaseURL,
		TokenURL:           cfg.OMS.TokenURL,
		ClientID:           cfg.OMS.ClientID,
		ClientSecret:       cfg.OMS.ClientSecret,
		Timeout:            time.Duration(cfg.OMS.TimeoutSeconds) * time.Second,
		InsecureSkipVerify: cfg.OMS.InsecureSkipVerify,
	})

	runner := report.NewRunner(report.Config{
		BaseURL:    cfg.Report.BaseURL,
		LandingURL: cfg.Report.LandingURL,
		OutputDir:  cfg.Report.OutputDir,
		RenderWait: time.Duration(cfg.Report.WaitSeconds) * time.Second,
	}, session, metadata, report.StdinContinue(os.Stdin, os.Stdout), logger)

	runErr := runner.Run(ctx, fillNumbers)

	for _, jsErr := range collector.Errors() {
		logger.Debug().Str("js", jsErr).Msg("page error during capture")
	}

	if runErr != nil {
		if ctx.Err() != nil {
			logger.Warn().Msg("interrupted, closing browser")
			return 0
		}
		logger.Error().Err(runErr).Msg("capture run failed")
		return 1
	}

	logger.Info().Int("fills", len(fillNumbers)).Str("output", cfg.Report.OutputDir).Msg("capture run complete")
	return 0
}

// configSearchPaths returns TOML files to auto-discover (first match wins).
// Binary-relative paths are tried first, with CWD fallbacks after.
func configSearchPaths() []string {
	candidates := []string{
		"fillshot.toml",
		"config/fillshot.toml",
	}

	exe, err := os.Executable()
	if err != nil {
		return candidates
	}
	binDir := filepath.Dir(exe)

	paths := []string{
		filepath.Join(binDir, "fillshot.toml"),
		filepath.Join(binDir, "config", "fillshot.toml"),
	}
	paths = append(paths, candidates...)

	// Deduplicate via absolute path.
	seen := make(map[string]bool, len(paths))
	deduped := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		deduped = append(deduped, p)
	}
	return deduped
}
