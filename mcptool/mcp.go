// Package mcptool exposes accessibility scans as MCP tools.
package mcptool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wcag-scan/backend/analyzer"
)

// NewServer builds an MCP server with the scan tools registered.
func NewServer(a *analyzer.Analyzer, version string) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: "wcag-scan", Version: version}, nil)
	Register(srv, a)
	return srv
}

// Register adds the scan tools to srv.
func Register(srv *mcp.Server, a *analyzer.Analyzer) {
	addTool(srv, &mcp.Tool{
		Name:        "wcag_scan_url",
		Description: "Fetch a web page and report WCAG 2.2 accessibility issues, color contrast first.",
		InputSchema: inputSchema(map[string]any{
			"url": map[string]any{"type": "string", "description": "Absolute http(s) URL of the page"},
		}, []string{"url"}),
	}, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var r struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		return a.Analyze(ctx, r.URL)
	})

	addTool(srv, &mcp.Tool{
		Name:        "wcag_scan_html",
		Description: "Report WCAG 2.2 accessibility issues for an HTML document supplied inline.",
		InputSchema: inputSchema(map[string]any{
			"html": map[string]any{"type": "string", "description": "Complete HTML document"},
			"url":  map[string]any{"type": "string", "description": "Page URL used in the report"},
		}, []string{"html"}),
	}, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var r struct {
			HTML string `json:"html"`
			URL  string `json:"url"`
		}
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		if strings.TrimSpace(r.HTML) == "" {
			return nil, errors.New("html is required")
		}
		return a.AnalyzeHTML(ctx, r.URL, strings.NewReader(r.HTML))
	})

	addTool(srv, &mcp.Tool{
		Name:        "wcag_rules",
		Description: "List the accessibility rules run by every scan.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}, func(context.Context, json.RawMessage) (any, error) {
		return map[string]any{"rules": a.Rules()}, nil
	})
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// addTool registers fn, returning its result as JSON text. Errors become
// tool errors rather than protocol errors.
func addTool(srv *mcp.Server, tool *mcp.Tool, fn func(context.Context, json.RawMessage) (any, error)) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp, err := fn(ctx, req.Params.Arguments)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(err)
			return &res, nil
		}
		data, err := json.Marshal(resp)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}
