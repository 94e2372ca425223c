package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/mark3labs/mcp-go/server"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/fillshot/internal/common"
	"github.com/bobmcallan/fillshot/internal/config"
)

// ServerConfig holds MCP server settings.
type ServerConfig struct {
	Name string `toml:"name"`
	Port string `toml:"port"`
}

// Config holds all fillshot-mcp configuration. The report/oms/browser
// sections are shared with the CLI tool's config schema.
type Config struct {
	Server  ServerConfig         `toml:"server"`
	Report  config.ReportConfig  `toml:"report"`
	OMS     config.OMSConfig     `toml:"oms"`
	Browser config.BrowserConfig `toml:"browser"`
	Logging common.LoggingConfig `toml:"logging"`
}

// newDefaultConfig returns a Config with sensible defaults. Capture runs
// headless here: an MCP client cannot answer an interactive SSO prompt, so
// the persistent profile must already be authenticated.
func newDefaultConfig() Config {
	app := config.NewDefaultConfig()
	app.Browser.Headless = true
	return Config{
		Server: ServerConfig{
			Name: "Fillshot-MCP",
			Port: "4244",
		},
		Report:  app.Report,
		OMS:     app.OMS,
		Browser: app.Browser,
		Logging: common.LoggingConfig{
			Level:    "info",
			Outputs:  []string{"file"},
			FilePath: "logs/fillshot-mcp.log",
		},
	}
}

// loadConfig loads configuration from a TOML file with defaults and env overrides.
func loadConfig(path string) Config {
	cfg := newDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				log.Fatalf("Failed to read config file %s: %v", path, err)
			}
			// File not found — use defaults
		} else {
			if err := toml.Unmarshal(data, &cfg); err != nil {
				log.Fatalf("Failed to parse config file %s: %v", path, err)
			}
		}
	}

	if id := os.Getenv("FILLSHOT_OMS_CLIENT_ID"); id != "" {
		cfg.OMS.ClientID = id
	}
	if secret := os.Getenv("FILLSHOT_OMS_CLIENT_SECRET"); secret != "" {
		cfg.OMS.ClientSecret = secret
	}
	if dir := os.Getenv("FILLSHOT_OUTPUT_DIR"); dir != "" {
		cfg.Report.OutputDir = dir
	}
	if dir := os.Getenv("FILLSHOT_PROFILE_DIR"); dir != "" {
		cfg.Browser.ProfileDir = dir
	}
	if level := os.Getenv("FILLSHOT_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if headless := os.Getenv("FILLSHOT_HEADLESS"); headless != "" {
		if b, err := strconv.ParseBool(headless); err == nil {
			cfg.Browser.Headless = b
		}
	}
	if url := os.Getenv("FILLSHOT_BROWSER_REMOTE_URL"); url != "" {
		cfg.Browser.RemoteURL = url
	}
	if port := os.Getenv("FILLSHOT_MCP_PORT"); port != "" {
		cfg.Server.Port = port
	}
	if cfg.Report.LandingURL == "" {
		cfg.Report.LandingURL = cfg.Report.BaseURL
	}

	return cfg
}

func main() {
	stdio := flag.Bool("stdio", false, "Use stdio transport (for Claude Desktop)")
	configFile := flag.String("config", "fillshot-mcp.toml", "Path to config file")
	flag.Parse()

	cfg := loadConfig(*configFile)

	config.LoadVersionFromFile()

	logger := common.NewLoggerFromConfig(cfg.Logging)

	deps := newToolDeps(cfg, logger)

	mcpServer := server.NewMCPServer(
		cfg.Server.Name,
		config.GetVersion(),
		server.WithToolCapabilities(true),
	)

	registerTools(mcpServer, deps)

	if *stdio {
		// Stdio transport — reads stdin, writes stdout
		if err := server.ServeStdio(mcpServer); err != nil {
			fmt.Fprintf(os.Stderr, "stdio server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	port := cfg.Server.Port

	// Streamable HTTP transport — listens on configured port
	httpServer := server.NewStreamableHTTPServer(mcpServer,
		server.WithStateLess(true),
	)

	log.Printf("Starting MCP Streamable HTTP on :%s", port)

	if err := httpServer.Start(":" + port); err != nil {
		fmt.Fprintf(os.Stderr, "http server error: %v\n", err)
		os.Exit(1)
	}
}
