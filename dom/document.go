package dom

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is an immutable snapshot of a rendered page. It is built once per
// scan and shared read-only by every rule.
type Document struct {
	URL  string
	Root *Node

	gq    *goquery.Document
	index map[*html.Node]*Node
}

func newDocument(pageURL string, root *Node, src *html.Node, index map[*html.Node]*Node) *Document {
	return &Document{
		URL:   pageURL,
		Root:  root,
		gq:    goquery.NewDocumentFromNode(src),
		index: index,
	}
}

// Body returns the body element, or the root when there is none.
func (d *Document) Body() *Node {
	if d == nil || d.Root == nil {
		return nil
	}
	for _, c := range d.Root.Children {
		if c.Type == ElementNode && c.Tag == "body" {
			return c
		}
	}
	return d.Root
}

// Query returns the elements matching a CSS selector in document order.
// Invalid selectors match nothing.
func (d *Document) Query(selector string) []*Node {
	if d == nil || d.gq == nil {
		return nil
	}
	var out []*Node
	d.gq.Find(selector).Each(func(_ int, s *goquery.Selection) {
		for _, hn := range s.Nodes {
			if n, ok := d.index[hn]; ok {
				out = append(out, n)
			}
		}
	})
	return out
}

// QueryWithin returns the descendants of n matching selector.
func (d *Document) QueryWithin(n *Node, selector string) []*Node {
	if d == nil || n == nil || n.src == nil {
		return nil
	}
	var out []*Node
	goquery.NewDocumentFromNode(n.src).Find(selector).Each(func(_ int, s *goquery.Selection) {
		for _, hn := range s.Nodes {
			if m, ok := d.index[hn]; ok {
				out = append(out, m)
			}
		}
	})
	return out
}

// Walk visits every node of the document in order.
func (d *Document) Walk(fn func(*Node) bool) {
	if d == nil {
		return
	}
	d.Root.Walk(fn)
}
