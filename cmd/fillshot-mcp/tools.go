package main

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// registerTools registers all MCP tools on the server.
func registerTools(s *server.MCPServer, d *toolDeps) {
	s.AddTool(createParseFillsTool(), handleParseFills(d))
	s.AddTool(createGetFillMetadataTool(), handleGetFillMetadata(d))
	s.AddTool(createCaptureFillReportTool(), handleCaptureFillReport(d))
}

func createParseFillsTool() mcp.Tool {
	return mcp.NewTool("parse_fills",
		mcp.WithDescription("Parse free-form text into a list of fill numbers. Accepts comma or whitespace separated values, '#' comments, and pasted table rows (only the first column counts). Invalid tokens are dropped silently."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The text to parse, e.g. '11316, 229854' or the contents of a fills file")),
	)
}

func createGetFillMetadataTool() mcp.Tool {
	return mcp.NewTool("get_fill_metadata",
		mcp.WithDescription("Fetch OMS metadata for one fill: colliding bunches, collision system (pp/PbPb), fill type, and year."),
		mcp.WithNumber("fill_number", mcp.Required(), mcp.Description("The fill number, e.g. 11316")),
	)
}

func createCaptureFillReportTool() mcp.Tool {
	return mcp.NewTool("capture_fill_report",
		mcp.WithDescription("Capture fill-report screenshots for the given fills. Runs a headless browser against the OMS dashboard; the configured Chrome profile must already hold a valid SSO session. Returns the written file paths."),
		mcp.WithString("fills", mcp.Required(), mcp.Description("Fill numbers in any format parse_fills accepts, e.g. '11316, 229854'")),
		mcp.WithString("output_dir", mcp.Description("Directory to write screenshots to (default: the configured output dir)")),
	)
}
