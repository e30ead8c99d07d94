package dom

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrEmptySnapshot is returned when a wire snapshot has no root element.
var ErrEmptySnapshot = errors.New("dom: empty snapshot")

// WireNode is the JSON form of a snapshot node as captured by a browser host.
type WireNode struct {
	Type     string            `json:"type"`
	Tag      string            `json:"tag,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Style    *Style            `json:"style,omitempty"`
	Text     string            `json:"text,omitempty"`
	Children []*WireNode       `json:"children,omitempty"`
}

// WireSnapshot wraps a captured tree with the page it came from.
type WireSnapshot struct {
	URL  string    `json:"url"`
	Root *WireNode `json:"root"`
}

// Decode reads a WireSnapshot from r.
func Decode(r io.Reader) (*Document, error) {
	var snap WireSnapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("dom: decode snapshot: %w", err)
	}
	return FromWire(&snap)
}

// FromWire builds a Document from an already decoded snapshot. Elements
// captured without a style keep a nil Style.
func FromWire(snap *WireSnapshot) (*Document, error) {
	if snap == nil || snap.Root == nil || snap.Root.Type == "text" {
		return nil, ErrEmptySnapshot
	}

	docNode := &html.Node{Type: html.DocumentNode}
	index := make(map[*html.Node]*Node)
	root := fromWire(snap.Root, nil, docNode, index)
	return newDocument(snap.URL, root, docNode, index), nil
}

func fromWire(w *WireNode, parent *Node, hparent *html.Node, index map[*html.Node]*Node) *Node {
	if w.Type == "text" {
		hn := &html.Node{Type: html.TextNode, Data: w.Text}
		hparent.AppendChild(hn)
		return &Node{Type: TextNode, Text: w.Text, Parent: parent, src: hn}
	}

	tag := strings.ToLower(w.Tag)
	hn := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	attrs := make(map[string]string, len(w.Attrs))
	keys := make([]string, 0, len(w.Attrs))
	for k, v := range w.Attrs {
		k = strings.ToLower(k)
		attrs[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		hn.Attr = append(hn.Attr, html.Attribute{Key: k, Val: attrs[k]})
	}
	hparent.AppendChild(hn)

	n := &Node{
		Type:   ElementNode,
		Tag:    tag,
		Attrs:  attrs,
		Style:  w.Style,
		Parent: parent,
		src:    hn,
	}
	index[hn] = n
	for _, c := range w.Children {
		if c == nil {
			continue
		}
		n.Children = append(n.Children, fromWire(c, n, hn, index))
	}
	return n
}
