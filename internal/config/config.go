package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/fillshot/internal/common"
)

// Config represents the application configuration.
type Config struct {
	Report  ReportConfig         `toml:"report"`
	OMS     OMSConfig            `toml:"oms"`
	Browser BrowserConfig        `toml:"browser"`
	Logging common.LoggingConfig `toml:"logging"`
}

// ReportConfig controls which dashboard is captured and how.
type ReportConfig struct {
	// BaseURL is the fullscreen fill-report page; the per-fill query
	// string is appended to it.
	BaseURL string `toml:"base_url"`
	// LandingURL is opened before the capture loop for interactive SSO
	// login. Empty means "use BaseURL".
	LandingURL string `toml:"landing_url"`
	OutputDir  string `toml:"output_dir"`
	// WaitSeconds is the fixed delay after navigation that lets the
	// client-side charts render. The dashboard exposes no readiness
	// signal to poll.
	WaitSeconds int `toml:"wait_seconds"`
}

// OMSConfig holds OMS aggregation API settings.
type OMSConfig struct {
	BaseURL            string `toml:"base_url"`
	TokenURL           string `toml:"token_url"`
	ClientID           string `toml:"client_id"`
	ClientSecret       string `toml:"client_secret"`
	TimeoutSeconds     int    `toml:"timeout_seconds"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
}

// BrowserConfig holds Chrome session settings.
type BrowserConfig struct {
	// ProfileDir is a persistent user-data-dir so the CERN SSO session
	// survives across runs.
	ProfileDir string `toml:"profile_dir"`
	Headless   bool   `toml:"headless"`
	// RemoteURL attaches to an already-running Chrome over CDP instead
	// of launching one.
	RemoteURL string `toml:"remote_url"`
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if config.Report.LandingURL == "" {
		config.Report.LandingURL = config.Report.BaseURL
	}

	return config, nil
}

// applyEnvOverrides applies FILLSHOT_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if id := os.Getenv("FILLSHOT_OMS_CLIENT_ID"); id != "" {
		config.OMS.ClientID = id
	}
	if secret := os.Getenv("FILLSHOT_OMS_CLIENT_SECRET"); secret != "" {
		config.OMS.ClientSecret = secret
	}
	if dir := os.Getenv("FILLSHOT_OUTPUT_DIR"); dir != "" {
		config.Report.OutputDir = dir
	}
	if dir := os.Getenv("FILLSHOT_PROFILE_DIR"); dir != "" {
		config.Browser.ProfileDir = dir
	}
	if level := os.Getenv("FILLSHOT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if headless := os.Getenv("FILLSHOT_HEADLESS"); headless != "" {
		if b, err := strconv.ParseBool(headless); err == nil {
			config.Browser.Headless = b
		}
	}
	if url := os.Getenv("FILLSHOT_BROWSER_REMOTE_URL"); url != "" {
		config.Browser.RemoteURL = url
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
// Zero values mean "flag not set".
func ApplyFlagOverrides(config *Config, outputDir, profileDir string, waitSeconds int, headless bool) {
	if outputDir != "" {
		config.Report.OutputDir = outputDir
	}
	if profileDir != "" {
		config.Browser.ProfileDir = profileDir
	}
	if waitSeconds > 0 {
		config.Report.WaitSeconds = waitSeconds
	}
	if headless {
		config.Browser.Headless = true
	}
}

// Validate reports mandatory fields that are missing or invalid.
func (c *Config) Validate() []string {
	var issues []string
	if c.Report.BaseURL == "" {
		issues = append(issues, "report.base_url is required")
	}
	if c.Report.OutputDir == "" {
		issues = append(issues, "report.output_dir is required")
	}
	if c.Report.WaitSeconds < 0 {
		issues = append(issues, "report.wait_seconds must not be negative")
	}
	return issues
}

// defaultProfileDir resolves the persistent Chrome profile location under
// the user's home directory, falling back to a relative path when the
// home directory cannot be determined.
func defaultProfileDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".fillshot", "chrome-profile")
	}
	return filepath.Join(home, ".fillshot", "chrome-profile")
}
