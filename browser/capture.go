package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/wcag-scan/backend/dom"
)

// snapshotScript serializes document.documentElement into the wire format.
// Script, style and template contents are not captured.
const snapshotScript = `() => {
  const skip = new Set(["SCRIPT", "STYLE", "NOSCRIPT", "TEMPLATE"]);
  const pick = (cs) => ({
    color: cs.color,
    backgroundColor: cs.backgroundColor,
    fontSize: cs.fontSize,
    fontWeight: cs.fontWeight,
    display: cs.display,
    visibility: cs.visibility,
    opacity: cs.opacity,
    lineHeight: cs.lineHeight,
    letterSpacing: cs.letterSpacing,
    wordSpacing: cs.wordSpacing,
    outlineStyle: cs.outlineStyle,
    boxShadow: cs.boxShadow,
    width: cs.width,
    height: cs.height,
  });
  const walk = (el) => {
    const attrs = {};
    for (const a of el.attributes) attrs[a.name] = a.value;
    const node = {
      type: "element",
      tag: el.tagName.toLowerCase(),
      attrs,
      style: pick(window.getComputedStyle(el)),
      children: [],
    };
    for (const c of el.childNodes) {
      if (c.nodeType === Node.TEXT_NODE) {
        if (c.nodeValue) node.children.push({ type: "text", text: c.nodeValue });
      } else if (c.nodeType === Node.ELEMENT_NODE && !skip.has(c.tagName)) {
        node.children.push(walk(c));
      }
    }
    return node;
  };
  return JSON.stringify({ url: location.href, root: walk(document.documentElement) });
}`

// Capture loads pageURL and returns its Document Snapshot.
func (m *Manager) Capture(ctx context.Context, pageURL string) (*dom.Document, error) {
	b, err := m.Browser()
	if err != nil {
		return nil, err
	}

	page, err := m.openPage(b)
	if err != nil {
		m.reset(ctx, b)
		return nil, fmt.Errorf("browser: create page: %w", err)
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, m.cfg.NavigateTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		m.cfg.Logger.WarnContext(ctx, "browser: wait load timeout", "url", pageURL, "error", err)
	}

	res, err := page.Context(navCtx).Eval(snapshotScript)
	if err != nil {
		return nil, fmt.Errorf("browser: snapshot %s: %w", pageURL, err)
	}

	doc, err := decodePayload(res.Value.Str())
	if err != nil {
		return nil, err
	}
	m.cfg.Logger.DebugContext(ctx, "browser: captured snapshot", "url", doc.URL)
	return doc, nil
}

func (m *Manager) openPage(b *rod.Browser) (*rod.Page, error) {
	if m.cfg.Stealth {
		return stealth.Page(b)
	}
	return b.Page(proto.TargetCreateTarget{URL: ""})
}

// decodePayload turns the script result into a Document.
func decodePayload(payload string) (*dom.Document, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, dom.ErrEmptySnapshot
	}
	doc, err := dom.Decode(strings.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("browser: %w", err)
	}
	return doc, nil
}
