package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/fillshot/internal/browser"
	"github.com/bobmcallan/fillshot/internal/common"
	"github.com/bobmcallan/fillshot/internal/fills"
	"github.com/bobmcallan/fillshot/internal/oms"
	"github.com/bobmcallan/fillshot/internal/report"
)

// toolDeps carries configuration and collaborator factories into the tool
// handlers. The browser factory is injectable so handler tests don't need
// a Chrome install.
type toolDeps struct {
	cfg    Config
	logger *common.Logger

	newBrowser  func(ctx context.Context) (report.Browser, func(), error)
	newMetadata func() report.MetadataSource
}

func newToolDeps(cfg Config, logger *common.Logger) *toolDeps {
	return &toolDeps{
		cfg:    cfg,
		logger: logger,
		newBrowser: func(ctx context.Context) (report.Browser, func(), error) {
			session, err := browser.New(ctx, browser.Config{
				ProfileDir: cfg.Browser.ProfileDir,
				Headless:   cfg.Browser.Headless,
				RemoteURL:  cfg.Browser.RemoteURL,
			})
			if err != nil {
				return nil, nil, err
			}
			return session, session.Close, nil
		},
		newMetadata: func() report.MetadataSource {
			return oms.NewClient(oms.Config{
				BaseURL:            cfg.OMS.BaseURL,
				TokenURL:           cfg.OMS.TokenURL,
				ClientID:           cfg.OMS.ClientID,
				ClientSecret:       cfg.OMS.ClientSecret,
				Timeout:            time.Duration(cfg.OMS.TimeoutSeconds) * time.Second,
				InsecureSkipVerify: cfg.OMS.InsecureSkipVerify,
			})
		},
	}
}

// --- Helpers ---

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// --- Handlers ---

func handleParseFills(d *toolDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := request.RequireString("text")
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		parsed := fills.Parse(text)
		if len(parsed) == 0 {
			return textResult("No valid fill numbers found."), nil
		}

		parts := make([]string, len(parsed))
		for i, n := range parsed {
			parts[i] = fmt.Sprintf("%d", n)
		}
		return textResult(fmt.Sprintf("Found %d fill(s): %s", len(parsed), strings.Join(parts, ", "))), nil
	}
}

func handleGetFillMetadata(d *toolDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fill := request.GetInt("fill_number", 0)
		if fill <= 0 {
			return errorResult("Error: fill_number must be a positive integer"), nil
		}

		meta, err := d.newMetadata().FillMetadata(ctx, fill)
		if err != nil {
			return errorResult(fmt.Sprintf("Metadata unavailable for fill %d: %v", fill, err)), nil
		}

		result := fmt.Sprintf("Fill %d\nBunches: %d\nSystem: %s\nType: %s\nYear: %s",
			fill, meta.Bunches, meta.System, meta.Type, meta.Year)
		return textResult(result), nil
	}
}

func handleCaptureFillReport(d *toolDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := request.RequireString("fills")
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		fillNumbers := fills.Parse(text)
		if len(fillNumbers) == 0 {
			return errorResult("Error: no valid fill numbers in 'fills'"), nil
		}

		outputDir := request.GetString("output_dir", d.cfg.Report.OutputDir)
		logger := d.logger.WithCorrelationId(uuid.New().String())

		b, release, err := d.newBrowser(ctx)
		if err != nil {
			return errorResult(fmt.Sprintf("Error starting browser: %v", err)), nil
		}
		defer release()

		runner := report.NewRunner(report.Config{
			BaseURL:    d.cfg.Report.BaseURL,
			LandingURL: d.cfg.Report.LandingURL,
			OutputDir:  outputDir,
			RenderWait: time.Duration(d.cfg.Report.WaitSeconds) * time.Second,
		}, b, d.newMetadata(), nil, logger)

		runErr := runner.Run(ctx, fillNumbers)
		captured := runner.Captured()

		var sb strings.Builder
		fmt.Fprintf(&sb, "Captured %d of %d fill(s):\n", len(captured), len(fillNumbers))
		for _, path := range captured {
			fmt.Fprintf(&sb, "- %s\n", path)
		}
		if runErr != nil {
			fmt.Fprintf(&sb, "Aborted: %v", runErr)
			return errorResult(sb.String()), nil
		}
		return textResult(sb.String()), nil
	}
}
