package config

import "github.com/bobmcallan/fillshot/internal/common"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Report: ReportConfig{
			BaseURL:     "https://cmsoms.cern.ch/cms/fills/report/fullscreen/12656",
			OutputDir:   "fills",
			WaitSeconds: 5,
		},
		OMS: OMSConfig{
			BaseURL:        "https://cmsoms.cern.ch/agg/api/v1",
			TokenURL:       "https://auth.cern.ch/auth/realms/cern/api-access/token",
			TimeoutSeconds: 15,
		},
		Browser: BrowserConfig{
			ProfileDir: defaultProfileDir(),
		},
		Logging: common.LoggingConfig{
			Level:    "info",
			Outputs:  []string{"console", "file"},
			FilePath: "logs/fillshot.log",
		},
	}
}
