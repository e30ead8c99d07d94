package dom

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
)

// declaration is one CSS property assignment competing in the cascade.
type declaration struct {
	property    string
	value       string
	important   bool
	inline      bool
	specificity cascadia.Specificity
	order       int
}

// less orders declarations so that later entries win.
func (a declaration) less(b declaration) bool {
	if a.important != b.important {
		return !a.important
	}
	if a.inline != b.inline {
		return !a.inline
	}
	if a.specificity != b.specificity {
		return a.specificity.Less(b.specificity)
	}
	return a.order < b.order
}

// Parse builds a snapshot from static HTML. Computed styles are derived from
// <style> sheets, inline style attributes, inheritance and user-agent
// defaults. Layout-dependent values the markup cannot express stay empty.
func Parse(r io.Reader, pageURL string) (*Document, error) {
	gq, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse html: %w", err)
	}
	if len(gq.Nodes) == 0 {
		return nil, fmt.Errorf("dom: empty document")
	}

	htmlRoot := gq.Find("html").First()
	if htmlRoot.Length() == 0 {
		return nil, fmt.Errorf("dom: no html element")
	}

	matched := collectStylesheetRules(gq)

	b := &builder{
		matched: matched,
		index:   make(map[*html.Node]*Node),
	}
	root := b.build(htmlRoot.Nodes[0], nil)
	return newDocument(pageURL, root, gq.Nodes[0], b.index), nil
}

// collectStylesheetRules matches every qualified rule of every <style>
// element against the tree and returns the declarations per element.
func collectStylesheetRules(gq *goquery.Document) map[*html.Node][]declaration {
	matched := make(map[*html.Node][]declaration)
	order := 0

	gq.Find("style").Each(func(_ int, s *goquery.Selection) {
		sheet, err := parser.Parse(s.Text())
		if err != nil {
			return
		}
		for _, rule := range sheet.Rules {
			if rule.Kind != css.QualifiedRule {
				continue
			}
			for _, raw := range rule.Selectors {
				sel, err := cascadia.Parse(raw)
				if err != nil || sel.PseudoElement() != "" {
					continue
				}
				spec := sel.Specificity()
				for _, hn := range cascadia.QueryAll(gq.Nodes[0], sel) {
					for _, d := range rule.Declarations {
						order++
						matched[hn] = append(matched[hn], declaration{
							property:    strings.ToLower(d.Property),
							value:       strings.TrimSpace(d.Value),
							important:   d.Important,
							specificity: spec,
							order:       order,
						})
					}
				}
			}
		}
	})
	return matched
}

type builder struct {
	matched  map[*html.Node][]declaration
	index    map[*html.Node]*Node
	rootSize float64
}

func (b *builder) build(hn *html.Node, parent *Node) *Node {
	n := &Node{
		Type:   ElementNode,
		Tag:    strings.ToLower(hn.Data),
		Attrs:  make(map[string]string, len(hn.Attr)),
		Parent: parent,
		src:    hn,
	}
	for _, a := range hn.Attr {
		n.Attrs[strings.ToLower(a.Key)] = a.Val
	}
	b.index[hn] = n

	var parentStyle *Style
	if parent != nil {
		parentStyle = parent.Style
	}
	n.Style = b.computeStyle(n, hn, parentStyle)
	if parent == nil {
		b.rootSize = pxValue(n.Style.FontSize, defaultFontSize)
	}

	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			n.Children = append(n.Children, b.build(c, n))
		case html.TextNode:
			n.Children = append(n.Children, &Node{Type: TextNode, Text: c.Data, Parent: n, src: c})
		}
	}
	return n
}

// parseInline parses a style attribute. The declaration parser only keeps a
// value once it sees the closing ';', so one is always supplied.
func parseInline(style string) ([]*css.Declaration, error) {
	style = strings.TrimRight(strings.TrimSpace(style), ";")
	if style == "" {
		return nil, nil
	}
	return parser.ParseDeclarations(style + ";")
}

func (b *builder) computeStyle(n *Node, hn *html.Node, parent *Style) *Style {
	st := inheritStyle(parent)
	applyTagDefaults(n, st)

	decls := append([]declaration(nil), b.matched[hn]...)
	if inline, ok := n.Attrs["style"]; ok {
		if parsed, err := parseInline(inline); err == nil {
			for i, d := range parsed {
				decls = append(decls, declaration{
					property:  strings.ToLower(d.Property),
					value:     strings.TrimSpace(d.Value),
					important: d.Important,
					inline:    true,
					order:     i,
				})
			}
		}
	}
	sort.SliceStable(decls, func(i, j int) bool { return decls[i].less(decls[j]) })

	for _, d := range decls {
		b.apply(st, parent, d.property, d.value)
	}
	return st
}
