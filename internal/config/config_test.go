package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Report.BaseURL != "https://cmsoms.cern.ch/cms/fills/report/fullscreen/12656" {
		t.Errorf("unexpected default report base URL: %s", cfg.Report.BaseURL)
	}
	if cfg.Report.OutputDir != "fills" {
		t.Errorf("expected default output dir fills, got %s", cfg.Report.OutputDir)
	}
	if cfg.Report.WaitSeconds != 5 {
		t.Errorf("expected default wait 5s, got %d", cfg.Report.WaitSeconds)
	}
	if cfg.OMS.BaseURL != "https://cmsoms.cern.ch/agg/api/v1" {
		t.Errorf("unexpected default OMS base URL: %s", cfg.OMS.BaseURL)
	}
	if cfg.OMS.TimeoutSeconds != 15 {
		t.Errorf("expected default OMS timeout 15s, got %d", cfg.OMS.TimeoutSeconds)
	}
	if cfg.Browser.Headless {
		t.Error("browser must default to headful so the operator can log in")
	}
	if cfg.Browser.ProfileDir == "" {
		t.Error("expected a default profile dir")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFiles_NoFiles(t *testing.T) {
	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles with no files should not error: %v", err)
	}
	if cfg.Report.OutputDir != "fills" {
		t.Errorf("expected default output dir, got %s", cfg.Report.OutputDir)
	}
	if cfg.Report.LandingURL != cfg.Report.BaseURL {
		t.Errorf("landing URL should default to base URL, got %s", cfg.Report.LandingURL)
	}
}

func TestLoadFromFiles_ValidTOML(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "test.toml")

	content := `
[report]
base_url = "https://example.org/fills/report/fullscreen/1"
landing_url = "https://example.org/login"
output_dir = "/tmp/shots"
wait_seconds = 2

[oms]
base_url = "https://oms.example.org/api/v1"
client_id = "fillshot"
client_secret = "s3cret"
timeout_seconds = 3

[browser]
profile_dir = "/tmp/profile"
headless = true

[logging]
level = "debug"
`
	if err := os.WriteFile(tomlPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(tomlPath)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if cfg.Report.BaseURL != "https://example.org/fills/report/fullscreen/1" {
		t.Errorf("unexpected base URL: %s", cfg.Report.BaseURL)
	}
	if cfg.Report.LandingURL != "https://example.org/login" {
		t.Errorf("unexpected landing URL: %s", cfg.Report.LandingURL)
	}
	if cfg.Report.OutputDir != "/tmp/shots" {
		t.Errorf("unexpected output dir: %s", cfg.Report.OutputDir)
	}
	if cfg.Report.WaitSeconds != 2 {
		t.Errorf("expected wait 2s, got %d", cfg.Report.WaitSeconds)
	}
	if cfg.OMS.ClientID != "fillshot" || cfg.OMS.ClientSecret != "s3cret" {
		t.Error("OMS credentials not loaded")
	}
	if cfg.OMS.TimeoutSeconds != 3 {
		t.Errorf("expected OMS timeout 3s, got %d", cfg.OMS.TimeoutSeconds)
	}
	if !cfg.Browser.Headless {
		t.Error("expected headless true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFiles_PartialOverride(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "partial.toml")

	// Only override the wait; everything else should stay default
	content := `
[report]
wait_seconds = 9
`
	if err := os.WriteFile(tomlPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(tomlPath)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if cfg.Report.WaitSeconds != 9 {
		t.Errorf("expected wait 9s, got %d", cfg.Report.WaitSeconds)
	}
	if cfg.Report.OutputDir != "fills" {
		t.Errorf("expected default output dir, got %s", cfg.Report.OutputDir)
	}
}

func TestLoadFromFiles_MultipleFiles(t *testing.T) {
	dir := t.TempDir()

	base := filepath.Join(dir, "base.toml")
	if err := os.WriteFile(base, []byte("[report]\noutput_dir = \"base-dir\"\nwait_seconds = 7\n"), 0644); err != nil {
		t.Fatal(err)
	}
	override := filepath.Join(dir, "override.toml")
	if err := os.WriteFile(override, []byte("[report]\noutput_dir = \"override-dir\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(base, override)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if cfg.Report.OutputDir != "override-dir" {
		t.Errorf("later file should win, got %s", cfg.Report.OutputDir)
	}
	if cfg.Report.WaitSeconds != 7 {
		t.Errorf("earlier file value should survive, got %d", cfg.Report.WaitSeconds)
	}
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles("/nonexistent/fillshot.toml")
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("FILLSHOT_OMS_CLIENT_ID", "env-id")
	t.Setenv("FILLSHOT_OMS_CLIENT_SECRET", "env-secret")
	t.Setenv("FILLSHOT_OUTPUT_DIR", "env-dir")
	t.Setenv("FILLSHOT_PROFILE_DIR", "env-profile")
	t.Setenv("FILLSHOT_LOG_LEVEL", "warn")
	t.Setenv("FILLSHOT_HEADLESS", "true")
	t.Setenv("FILLSHOT_BROWSER_REMOTE_URL", "ws://localhost:9222")

	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if cfg.OMS.ClientID != "env-id" || cfg.OMS.ClientSecret != "env-secret" {
		t.Error("env credentials not applied")
	}
	if cfg.Report.OutputDir != "env-dir" {
		t.Errorf("expected env output dir, got %s", cfg.Report.OutputDir)
	}
	if cfg.Browser.ProfileDir != "env-profile" {
		t.Errorf("expected env profile dir, got %s", cfg.Browser.ProfileDir)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected env log level, got %s", cfg.Logging.Level)
	}
	if !cfg.Browser.Headless {
		t.Error("expected env headless override")
	}
	if cfg.Browser.RemoteURL != "ws://localhost:9222" {
		t.Errorf("expected env remote URL, got %s", cfg.Browser.RemoteURL)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()
	ApplyFlagOverrides(cfg, "flag-dir", "flag-profile", 11, true)

	if cfg.Report.OutputDir != "flag-dir" {
		t.Errorf("expected flag output dir, got %s", cfg.Report.OutputDir)
	}
	if cfg.Browser.ProfileDir != "flag-profile" {
		t.Errorf("expected flag profile dir, got %s", cfg.Browser.ProfileDir)
	}
	if cfg.Report.WaitSeconds != 11 {
		t.Errorf("expected flag wait, got %d", cfg.Report.WaitSeconds)
	}
	if !cfg.Browser.Headless {
		t.Error("expected flag headless override")
	}
}

func TestApplyFlagOverrides_ZeroValuesIgnored(t *testing.T) {
	cfg := NewDefaultConfig()
	ApplyFlagOverrides(cfg, "", "", 0, false)

	if cfg.Report.OutputDir != "fills" {
		t.Errorf("zero flags must not override, got %s", cfg.Report.OutputDir)
	}
	if cfg.Report.WaitSeconds != 5 {
		t.Errorf("zero flags must not override, got %d", cfg.Report.WaitSeconds)
	}
}

func TestValidate(t *testing.T) {
	cfg := NewDefaultConfig()
	if issues := cfg.Validate(); len(issues) != 0 {
		t.Errorf("default config should validate, got %v", issues)
	}

	cfg.Report.BaseURL = ""
	cfg.Report.OutputDir = ""
	cfg.Report.WaitSeconds = -1
	if issues := cfg.Validate(); len(issues) != 3 {
		t.Errorf("expected 3 issues, got %v", issues)
	}
}
