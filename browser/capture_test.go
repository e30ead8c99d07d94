package browser

import (
	"errors"
	"testing"

	"github.com/wcag-scan/backend/dom"
	"github.com/wcag-scan/backend/rules"
)

const payload = `{
  "url": "https://example.test/page",
  "root": {"type": "element", "tag": "html", "attrs": {"lang": "en"},
    "style": {"color": "rgb(0, 0, 0)", "backgroundColor": "rgba(0, 0, 0, 0)", "fontSize": "16px", "fontWeight": "400", "display": "block", "visibility": "visible", "opacity": "1"},
    "children": [
      {"type": "element", "tag": "body",
        "style": {"color": "rgb(0, 0, 0)", "backgroundColor": "rgb(255, 255, 255)", "fontSize": "16px", "fontWeight": "400", "display": "block", "visibility": "visible", "opacity": "1"},
        "children": [
          {"type": "element", "tag": "p", "attrs": {"class": "faint"},
            "style": {"color": "rgb(204, 204, 204)", "backgroundColor": "rgba(0, 0, 0, 0)", "fontSize": "16px", "fontWeight": "400", "display": "block", "visibility": "visible", "opacity": "1", "outlineStyle": "none", "boxShadow": "none"},
            "children": [{"type": "text", "text": "Barely visible"}]}
        ]}
    ]}
}`

func TestDecodePayload(t *testing.T) {
	doc, err := decodePayload(payload)
	if err != nil {
		t.Fatalf("decodePayload: %v", err)
	}
	if doc.URL != "https://example.test/page" {
		t.Errorf("URL = %q", doc.URL)
	}
	ps := doc.Query("p.faint")
	if len(ps) != 1 {
		t.Fatalf("query matched %d nodes", len(ps))
	}
	if ps[0].Style.OutlineStyle != "none" {
		t.Errorf("outline style = %q", ps[0].Style.OutlineStyle)
	}

	issues, err := rules.NewContrastRule(nil, nil).Scan(doc)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(issues) != 1 {
		t.Errorf("got %d contrast issues, want 1", len(issues))
	}
}

func TestDecodePayloadErrors(t *testing.T) {
	if _, err := decodePayload("  "); !errors.Is(err, dom.ErrEmptySnapshot) {
		t.Errorf("empty payload error = %v", err)
	}
	if _, err := decodePayload(`{"url": "x", "root": null}`); !errors.Is(err, dom.ErrEmptySnapshot) {
		t.Errorf("null root error = %v", err)
	}
	if _, err := decodePayload(`{not json`); err == nil {
		t.Error("expected decode error")
	}
}

func TestClosedManager(t *testing.T) {
	m := NewManager(Config{})
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := m.Browser(); !errors.Is(err, ErrClosed) {
		t.Errorf("Browser after close = %v, want ErrClosed", err)
	}
}
