package rules

import (
	"errors"
	"strings"
	"testing"

	"github.com/wcag-scan/backend/color"
	"github.com/wcag-scan/backend/dom"
)

func parseDoc(t *testing.T, body string) *dom.Document {
	t.Helper()
	doc, err := dom.Parse(strings.NewReader("<!doctype html><html><head></head><body>"+body+"</body></html>"), "https://example.test/")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func TestIsLargeText(t *testing.T) {
	tests := []struct {
		size, weight float64
		want         bool
	}{
		{18, 400, true},
		{17.9, 400, false},
		{14, 700, true},
		{13.9, 700, false},
		{14, 600, false},
		{24, 100, true},
	}
	for _, tt := range tests {
		if got := IsLargeText(tt.size, tt.weight); got != tt.want {
			t.Errorf("IsLargeText(%v, %v) = %v, want %v", tt.size, tt.weight, got, tt.want)
		}
	}
	if RequiredRatio(16, 400) != color.MinRatioNormal || RequiredRatio(18, 400) != color.MinRatioLarge {
		t.Error("RequiredRatio does not follow the large text classification")
	}
}

func TestParseFontValues(t *testing.T) {
	if v, err := ParseFontSize("16px"); err != nil || v != 16 {
		t.Errorf("ParseFontSize(16px) = %v, %v", v, err)
	}
	for _, bad := range []string{"", "px", "0px", "-2px"} {
		if _, err := ParseFontSize(bad); !errors.Is(err, ErrBadFontSize) {
			t.Errorf("ParseFontSize(%q) error = %v, want ErrBadFontSize", bad, err)
		}
	}
	weights := map[string]float64{"normal": 400, "bold": 700, "600": 600}
	for in, want := range weights {
		if v, err := ParseFontWeight(in); err != nil || v != want {
			t.Errorf("ParseFontWeight(%q) = %v, %v; want %v", in, v, err, want)
		}
	}
	if _, err := ParseFontWeight("heavy"); !errors.Is(err, ErrBadFontWeight) {
		t.Errorf("ParseFontWeight(heavy) error = %v", err)
	}
}

func TestPathNamer(t *testing.T) {
	doc := parseDoc(t, `<main id="content"><ul class="items big"><li>a</li><li>b</li><li>c</li></ul></main><p>x</p>`)

	lis := doc.Query("li")
	if got, want := DefaultNamer.Locate(lis[2]), "main#content > ul.items > li:nth-child(3)"; got != want {
		t.Errorf("Locate(li) = %q, want %q", got, want)
	}
	if got, want := DefaultNamer.Locate(lis[0]), "main#content > ul.items > li:nth-child(1)"; got != want {
		t.Errorf("Locate(first li) = %q, want %q", got, want)
	}

	p := doc.Query("p")[0]
	if got, want := DefaultNamer.Locate(p), "html > body:nth-child(2) > p:nth-child(2)"; got != want {
		t.Errorf("Locate(p) = %q, want %q", got, want)
	}

	shallow := PathNamer{MaxDepth: 1}
	if got := shallow.Locate(p); got != "p:nth-child(2)" {
		t.Errorf("depth-limited Locate = %q", got)
	}
	if got := DefaultNamer.Locate(lis[0].Children[0]); got != "" {
		t.Errorf("Locate(text) = %q, want empty", got)
	}
}

func TestResolveBackground(t *testing.T) {
	doc := parseDoc(t, `
<div style="background-color: rgb(10, 20, 30)">
  <section style="background-color: rgba(255, 255, 255, 0.5)"><p id="inner">text</p></section>
</div>
<p id="bare">text</p>`)

	if got := ResolveBackground(doc.Query("#inner")[0]); got.RGB != "10,20,30" || got.Hex != "#0a141e" {
		t.Errorf("inner background = %s, want 10,20,30", got)
	}
	if got := ResolveBackground(doc.Query("#bare")[0]); got != color.White {
		t.Errorf("bare background = %s, want white", got)
	}
}

func TestIssueHash(t *testing.T) {
	if got := IssueHash("a"); got != "2p" {
		t.Errorf(`IssueHash("a") = %q, want "2p"`, got)
	}
	if got := IssueHash("ab"); got != "2e9" {
		t.Errorf(`IssueHash("ab") = %q, want "2e9"`, got)
	}
	if IssueHash("a", "b") != IssueHash("a-b") {
		t.Error("IssueHash must join parts with a dash")
	}
	if got := IssueHash(strings.Repeat("long input ", 20)); len(got) > 8 {
		t.Errorf("IssueHash length = %d, want <= 8", len(got))
	}
}

func TestContrastRule(t *testing.T) {
	rule := NewContrastRule(nil, nil)

	t.Run("black on black", func(t *testing.T) {
		doc := parseDoc(t, `<p style="color: #000; background-color: #000">hidden ink</p>`)
		issues, err := rule.Scan(doc)
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		if len(issues) != 1 {
			t.Fatalf("got %d issues, want 1", len(issues))
		}
		is := issues[0]
		if is.Severity != SeverityCritical {
			t.Errorf("severity = %s", is.Severity)
		}
		if !strings.Contains(is.Message, "1.0") {
			t.Errorf("message = %q, want ratio 1.0", is.Message)
		}
		if !strings.Contains(is.Details, "Required: 4.5:1 (Normal text)") {
			t.Errorf("details = %q", is.Details)
		}
		if !strings.HasPrefix(is.ID, "color-contrast-") {
			t.Errorf("id = %q", is.ID)
		}
		ctx, ok := is.Context.(ContrastContext)
		if !ok {
			t.Fatalf("context type = %T", is.Context)
		}
		if ctx.TextSample != "hidden ink" || ctx.FontSize != 16 || ctx.FontWeight != 400 {
			t.Errorf("context = %+v", ctx)
		}
		if ctx.TextColor != "#000000" || ctx.BgColor != "#000000" {
			t.Errorf("context colors = %s on %s", ctx.TextColor, ctx.BgColor)
		}
	})

	t.Run("unterminated inline pair", func(t *testing.T) {
		doc := parseDoc(t, `<p style="color:#000000; background-color:#000000">ink</p>`)
		issues, _ := rule.Scan(doc)
		if len(issues) != 1 || !strings.Contains(issues[0].Message, "1.0") {
			t.Fatalf("issues = %+v, want one at 1.0:1", issues)
		}
		if !strings.Contains(issues[0].Details, "Required: 4.5:1") {
			t.Errorf("details = %q", issues[0].Details)
		}

		doc = parseDoc(t, `<p style="color:#000000; background-color:#ffffff; font-size:24px">ink</p>`)
		if issues, _ := rule.Scan(doc); len(issues) != 0 {
			t.Errorf("large black on white: got %d issues, want 0", len(issues))
		}
	})

	t.Run("large text passes at 3:1", func(t *testing.T) {
		doc := parseDoc(t, `<p style="color: #777; font-size: 24px">big grey</p>`)
		issues, _ := rule.Scan(doc)
		if len(issues) != 0 {
			t.Errorf("got %d issues, want 0", len(issues))
		}
	})

	t.Run("normal grey fails", func(t *testing.T) {
		doc := parseDoc(t, `<p style="color: #777">small grey</p>`)
		issues, _ := rule.Scan(doc)
		if len(issues) != 1 {
			t.Fatalf("got %d issues, want 1", len(issues))
		}
		if !strings.Contains(issues[0].Message, "4.5:1") {
			t.Errorf("message = %q", issues[0].Message)
		}
	})

	t.Run("dedup by combination", func(t *testing.T) {
		doc := parseDoc(t, `<p style="color: #aaa">one</p><p style="color: #aaa">two</p><p style="color: #aaa; font-weight: bold">three</p>`)
		issues, _ := rule.Scan(doc)
		if len(issues) != 2 {
			t.Errorf("got %d issues, want 2 distinct combinations", len(issues))
		}
	})

	t.Run("hidden subtrees and transparent text", func(t *testing.T) {
		doc := parseDoc(t, `
<div style="display: none"><p style="color: #eee">gone</p></div>
<div style="opacity: 0"><p style="color: #eee">faded</p></div>
<p style="color: rgba(0, 0, 0, 0.05)">ghost</p>`)
		issues, _ := rule.Scan(doc)
		if len(issues) != 0 {
			t.Errorf("got %d issues, want 0", len(issues))
		}
	})

	t.Run("sample is trimmed and truncated", func(t *testing.T) {
		long := strings.Repeat("x", 60)
		doc := parseDoc(t, `<p style="color: #eee">  `+long+`  </p>`+
			`<p style="color: #ddd">Terms &amp; Conditions apply if x &lt;b&gt; y</p>`+
			`<p style="color: #ccc">`+strings.Repeat("é&", 30)+`</p>`)
		issues, _ := rule.Scan(doc)
		if len(issues) != 3 {
			t.Fatalf("got %d issues", len(issues))
		}
		if got := issues[0].Context.(ContrastContext).TextSample; got != strings.Repeat("x", 50) {
			t.Errorf("sample = %q", got)
		}
		if got, want := issues[1].Context.(ContrastContext).TextSample, "Terms & Conditions apply if x <b> y"; got != want {
			t.Errorf("sample = %q, want raw text %q", got, want)
		}
		if got, want := issues[2].Context.(ContrastContext).TextSample, strings.Repeat("é&", 25); got != want {
			t.Errorf("sample = %q, want %q", got, want)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		src := `<p style="color: #999">a</p><div><span style="color: #bbb">b</span></div>`
		a, _ := rule.Scan(parseDoc(t, src))
		b, _ := rule.Scan(parseDoc(t, src))
		if len(a) != len(b) {
			t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
		}
		for i := range a {
			if a[i].ID != b[i].ID || a[i].Element != b[i].Element {
				t.Errorf("issue %d differs: %+v vs %+v", i, a[i], b[i])
			}
		}
	})

	t.Run("body text is not inspected", func(t *testing.T) {
		doc := parseDoc(t, `stray text`)
		if n := len(TextElements(doc)); n != 0 {
			t.Errorf("TextElements = %d, want 0", n)
		}
	})
}

func TestContrastRuleSkipsBadStyles(t *testing.T) {
	doc, err := dom.FromWire(&dom.WireSnapshot{
		URL: "https://example.test/",
		Root: &dom.WireNode{Type: "element", Tag: "html", Children: []*dom.WireNode{
			{Type: "element", Tag: "body", Style: &dom.Style{FontSize: "16px", FontWeight: "400"}, Children: []*dom.WireNode{
				{Type: "element", Tag: "p", Style: &dom.Style{Color: "rgb(0, 0, 0)", FontSize: "huge", FontWeight: "400"},
					Children: []*dom.WireNode{{Type: "text", Text: "bad size"}}},
				{Type: "element", Tag: "p", Style: &dom.Style{Color: "rgb(200, 200, 200)", FontSize: "16px", FontWeight: "400"},
					Children: []*dom.WireNode{{Type: "text", Text: "light"}}},
			}},
		}},
	})
	if err != nil {
		t.Fatalf("FromWire: %v", err)
	}
	issues, err := NewContrastRule(nil, nil).Scan(doc)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(issues) != 1 || !strings.Contains(issues[0].Element, "nth-child(2)") {
		t.Errorf("issues = %+v, want only the second paragraph", issues)
	}
}
