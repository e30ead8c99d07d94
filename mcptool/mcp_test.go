package mcptool

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wcag-scan/backend/analyzer"
)

var testImpl = &mcp.Implementation{Name: "wcag-scan-test", Version: "0.1.0"}

func session(t *testing.T) *mcp.ClientSession {
	t.Helper()
	a := analyzer.New(analyzer.Options{})
	t.Cleanup(a.Close)
	srv := NewServer(a, "test")

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testImpl, nil)
	s, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func call(t *testing.T, s *mcp.ClientSession, name string, args any) *mcp.CallToolResult {
	t.Helper()
	res, err := s.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if err := res.GetError(); err != nil {
		t.Fatalf("tool error: %v", err)
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatal("expected TextContent")
	}
	return tc.Text
}

func TestScanHTMLTool(t *testing.T) {
	s := session(t)

	out := text(t, call(t, s, "wcag_scan_html", map[string]any{
		"url":  "https://example.test/",
		"html": `<html><body><p style="color:#ddd">pale</p><img src="x.png"></body></html>`,
	}))

	var rep analyzer.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rep.URL != "https://example.test/" || rep.Summary.Critical != 2 {
		t.Errorf("report = %+v", rep)
	}
}

func TestToolErrors(t *testing.T) {
	s := session(t)

	if res := call(t, s, "wcag_scan_html", map[string]any{"html": "  "}); !res.IsError {
		t.Error("blank html should be a tool error")
	}
	if res := call(t, s, "wcag_scan_url", map[string]any{"url": "not-a-url"}); !res.IsError {
		t.Error("invalid url should be a tool error")
	}
}

func TestRulesTool(t *testing.T) {
	s := session(t)

	var resp struct {
		Rules []struct {
			Name string `json:"name"`
		} `json:"rules"`
	}
	if err := json.Unmarshal([]byte(text(t, call(t, s, "wcag_rules", map[string]any{}))), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Rules) != 7 {
		t.Errorf("rules = %d, want 7", len(resp.Rules))
	}
}
