package dom

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(src), "https://example.test/")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func first(t *testing.T, doc *Document, sel string) *Node {
	t.Helper()
	nodes := doc.Query(sel)
	if len(nodes) == 0 {
		t.Fatalf("no match for %q", sel)
	}
	return nodes[0]
}

func TestParseComputedStyle(t *testing.T) {
	doc := mustParse(t, `<!doctype html>
<html><head><style>
  p { color: #333; font-size: 12pt }
  .note { color: red !important }
  #main p { background-color: navy }
  div.box { font-size: 20px; font-weight: bold }
</style></head>
<body>
  <div class="box"><span id="s">inherited</span></div>
  <div id="main"><p class="note" style="color: blue">important wins</p><p>spec</p></div>
  <p style="font-size: 1.5em">em</p>
  <h1>title</h1>
</body></html>`)

	t.Run("inheritance", func(t *testing.T) {
		s := first(t, doc, "#s").Style
		if s.FontSize != "20px" || s.FontWeight != "700" {
			t.Errorf("span style = %+v, want 20px/700 from div.box", s)
		}
	})

	t.Run("important beats inline", func(t *testing.T) {
		s := first(t, doc, "p.note").Style
		if s.Color != "rgb(255, 0, 0)" {
			t.Errorf("color = %q, want rgb(255, 0, 0)", s.Color)
		}
	})

	t.Run("specificity and named colors", func(t *testing.T) {
		ps := doc.Query("#main p")
		if len(ps) != 2 {
			t.Fatalf("got %d paragraphs", len(ps))
		}
		if got := ps[1].Style.BackgroundColor; got != "rgb(0, 0, 128)" {
			t.Errorf("background = %q, want rgb(0, 0, 128)", got)
		}
		if got := ps[1].Style.Color; got != "#333" {
			t.Errorf("color = %q, want #333", got)
		}
	})

	t.Run("units", func(t *testing.T) {
		if got := ps(doc)[1].Style.FontSize; got != "16px" {
			t.Errorf("12pt = %q, want 16px", got)
		}
		em := doc.Query("body > p")[0]
		if got := em.Style.FontSize; got != "24px" {
			t.Errorf("1.5em = %q, want 24px", got)
		}
	})

	t.Run("heading defaults", func(t *testing.T) {
		s := first(t, doc, "h1").Style
		if s.FontSize != "32px" || s.FontWeight != "700" || s.Display != "block" {
			t.Errorf("h1 style = %+v", s)
		}
	})

	t.Run("head hidden", func(t *testing.T) {
		if got := first(t, doc, "head").Style.Display; got != "none" {
			t.Errorf("head display = %q", got)
		}
	})
}

func TestParseInlineStyle(t *testing.T) {
	doc := mustParse(t, `<body>
<p id="one" style="color: #777">one</p>
<p id="two" style="color: rgb(0, 0, 0); font-size: 24px">two</p>
<p id="three" style="background-color: #000000;  ">three</p>
<p id="empty" style=" ; ">empty</p>
</body>`)

	if got := first(t, doc, "#one").Style.Color; got != "#777" {
		t.Errorf("single declaration color = %q, want #777", got)
	}
	two := first(t, doc, "#two").Style
	if two.Color != "rgb(0, 0, 0)" || two.FontSize != "24px" {
		t.Errorf("unterminated last declaration = %+v", two)
	}
	if got := first(t, doc, "#three").Style.BackgroundColor; got != "#000000" {
		t.Errorf("terminated declaration background = %q, want #000000", got)
	}
	if got := first(t, doc, "#empty").Style.FontSize; got != "16px" {
		t.Errorf("empty style font-size = %q, want default 16px", got)
	}
}

func ps(doc *Document) []*Node {
	return doc.Query("#main p")
}

func TestNodeHelpers(t *testing.T) {
	doc := mustParse(t, `<html><body>
<ul><li class="a b">one</li><li>two <b>bold</b></li></ul>
<label>Name <input id="n"></label>
<div>   </div>
</body></html>`)

	lis := doc.Query("li")
	if len(lis) != 2 {
		t.Fatalf("got %d li", len(lis))
	}
	if idx, count := lis[1].SiblingIndex(); idx != 1 || count != 2 {
		t.Errorf("SiblingIndex = %d/%d, want 1/2", idx, count)
	}
	if c := lis[0].Classes(); len(c) != 2 || c[0] != "a" {
		t.Errorf("Classes = %v", c)
	}
	if got := lis[1].TextContent(); got != "two bold" {
		t.Errorf("TextContent = %q", got)
	}
	if !lis[1].HasDirectText() {
		t.Error("li should have direct text")
	}
	if first(t, doc, "div").HasDirectText() {
		t.Error("whitespace-only div should not have direct text")
	}
	if first(t, doc, "#n").Closest("label") == nil {
		t.Error("input should be wrapped by label")
	}
	if doc.Body().Tag != "body" {
		t.Errorf("Body().Tag = %q", doc.Body().Tag)
	}
	if idx, count := doc.Root.SiblingIndex(); idx != 0 || count != 1 {
		t.Errorf("root SiblingIndex = %d/%d", idx, count)
	}
	if got := doc.Query("::invalid["); got != nil {
		t.Errorf("invalid selector matched %d nodes", len(got))
	}
}

func TestDecode(t *testing.T) {
	src := `{"url":"https://example.test/","root":{"type":"element","tag":"HTML","children":[
	  {"type":"element","tag":"body","style":{"color":"rgb(0, 0, 0)","backgroundColor":"rgb(255, 255, 255)","fontSize":"16px","fontWeight":"400","display":"block","visibility":"visible","opacity":"1"},
	   "children":[
	     {"type":"element","tag":"p","attrs":{"ID":"intro","class":"lead"},"style":{"color":"rgb(10, 10, 10)","fontSize":"16px","fontWeight":"400","display":"block","visibility":"visible","opacity":"1"},
	      "children":[{"type":"text","text":"Hello"}]},
	     {"type":"element","tag":"img","attrs":{"src":"x.png"}}
	   ]}
	]}}`

	doc, err := Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if doc.URL != "https://example.test/" {
		t.Errorf("URL = %q", doc.URL)
	}
	p := first(t, doc, "p#intro.lead")
	if p.TextContent() != "Hello" || p.Parent.Tag != "body" {
		t.Errorf("p = %+v", p)
	}
	if img := first(t, doc, "img"); img.Style != nil {
		t.Errorf("img style should be nil, got %+v", img.Style)
	}
	if got := doc.QueryWithin(doc.Body(), "p"); len(got) != 1 {
		t.Errorf("QueryWithin = %d nodes", len(got))
	}

	if _, err := Decode(strings.NewReader(`{"root":null}`)); err != ErrEmptySnapshot {
		t.Errorf("empty snapshot err = %v", err)
	}
}
