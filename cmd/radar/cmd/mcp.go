package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Farouk858/product-radar/extract"
	"github.com/Farouk858/product-radar/state"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve radar tools to MCP clients over stdio.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.ServeStdio(newMCPServer(cfg.Limits.PageCap, cfg.Paths.State))
	},
}

func newMCPServer(pageCap int, statePath string) *server.MCPServer {
	s := server.NewMCPServer(
		"product-radar",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	extractTool := mcp.NewTool("extract_products",
		mcp.WithDescription("Extract scored product candidates from the rendered HTML of a retail page. "+
			"Scores favour bestsellers, restocks and new arrivals."),
		mcp.WithString("html",
			mcp.Required(),
			mcp.Description("Rendered HTML of the page"),
		),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("URL of the page, used to resolve relative links"),
		),
		mcp.WithString("hint",
			mcp.Description("Collection hint such as 'new-arrivals' or 'bestsellers'"),
		),
	)
	s.AddTool(extractTool, handleExtractProducts(pageCap))

	snapshotTool := mcp.NewTool("latest_snapshot",
		mcp.WithDescription("Return the products recorded for each brand by the last radar run."),
		mcp.WithString("brand",
			mcp.Description("Only return this brand (case-insensitive)"),
		),
	)
	s.AddTool(snapshotTool, handleLatestSnapshot(statePath))

	return s
}

func handleExtractProducts(pageCap int) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		html, err := request.RequireString("html")
		if err != nil {
			return mcp.NewToolResultError("html is required"), nil
		}
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		hint := request.GetString("hint", "")

		res := extract.Page(html, url, hint, extract.Options{PageCap: pageCap})
		return mcp.NewToolResultJSON(res)
	}
}

func handleLatestSnapshot(statePath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap, err := state.Load(statePath)
		if err != nil {
			return mcp.NewToolResultErrorFromErr("failed to load snapshot", err), nil
		}

		brand := strings.TrimSpace(request.GetString("brand", ""))
		if brand == "" {
			return mcp.NewToolResultJSON(snap)
		}
		for name, records := range snap {
			if strings.EqualFold(name, brand) {
				return mcp.NewToolResultJSON(state.Snapshot{name: records})
			}
		}
		return mcp.NewToolResultError(fmt.Sprintf("no snapshot for brand %s", brand)), nil
	}
}
