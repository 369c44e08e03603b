package wiki

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/twellen/glossover/dom"
	"github.com/twellen/glossover/glossary"
)

func firstText(d *dom.Document, data string) *html.Node {
	return d.First(func(n *html.Node) bool {
		return n.Type == html.TextNode && strings.TrimSpace(n.Data) == data
	})
}

func TestInjectWrapsTextNode(t *testing.T) {
	d, err := dom.ParseString(`<body><main><div>Company</div></main></body>`)
	if err != nil {
		t.Fatal(err)
	}
	inj := NewInjector(d, nil)
	e := &glossary.Entry{ID: "e1", Term: "Company", Enabled: true}

	mark, ok := inj.Inject(Match{Node: firstText(d, "Company"), Entry: e, Section: SectionPrimary})
	if !ok {
		t.Fatal("Inject refused")
	}

	got, _ := d.HTML()
	if !strings.Contains(got, MarkAttr+`="`+mark.ID+`"`) {
		t.Fatalf("wrapper missing: %q", got)
	}
	if !strings.Contains(got, IconAttr+`="`+mark.ID+`"`) {
		t.Fatalf("icon missing: %q", got)
	}
	if !strings.Contains(got, "Company") {
		t.Fatalf("host text lost: %q", got)
	}
}

func TestInjectIconTitleIsPlainDefinition(t *testing.T) {
	d, err := dom.ParseString(`<body><main><div>Company</div></main></body>`)
	if err != nil {
		t.Fatal(err)
	}
	inj := NewInjector(d, nil)
	e := &glossary.Entry{
		ID: "e1", Term: "Company", Enabled: true,
		Definition: "<p>An organization you <strong>sell</strong> to.</p>",
	}

	mark, ok := inj.Inject(Match{Node: firstText(d, "Company"), Entry: e, Section: SectionPrimary})
	if !ok {
		t.Fatal("Inject refused")
	}

	title, _ := dom.Attr(mark.Icon, "title")
	if !strings.Contains(title, "sell") {
		t.Fatalf("title = %q, want the definition text", title)
	}
	if strings.Contains(title, "<") {
		t.Fatalf("title carries markup: %q", title)
	}
	if label, _ := dom.Attr(mark.Icon, "aria-label"); label != "Company" {
		t.Fatalf("aria-label = %q, want the term", label)
	}
}

func TestInjectWrapsInlineParent(t *testing.T) {
	d, err := dom.ParseString(`<body><main><div><a href="/c">Company</a></div></main></body>`)
	if err != nil {
		t.Fatal(err)
	}
	inj := NewInjector(d, nil)
	e := &glossary.Entry{ID: "e1", Term: "Company", Enabled: true}

	mark, ok := inj.Inject(Match{Node: firstText(d, "Company"), Entry: e, Section: SectionPrimary})
	if !ok {
		t.Fatal("Inject refused")
	}
	// The anchor moves inside the wrapper, not the other way around.
	if mark.Wrapper.FirstChild == nil || mark.Wrapper.FirstChild.Data != "a" {
		t.Fatalf("wrapper first child = %v, want the <a>", mark.Wrapper.FirstChild)
	}
}

func TestInjectIdempotent(t *testing.T) {
	d, err := dom.ParseString(`<body><main><div>Company</div></main></body>`)
	if err != nil {
		t.Fatal(err)
	}
	inj := NewInjector(d, nil)
	e := &glossary.Entry{ID: "e1", Term: "Company", Enabled: true}

	node := firstText(d, "Company")
	if _, ok := inj.Inject(Match{Node: node, Entry: e, Section: SectionPrimary}); !ok {
		t.Fatal("first Inject refused")
	}
	if _, ok := inj.Inject(Match{Node: node, Entry: e, Section: SectionPrimary}); ok {
		t.Fatal("second Inject on the same node must be refused")
	}

	got, _ := d.HTML()
	if strings.Count(got, MarkAttr) != 1 {
		t.Fatalf("double wrap: %q", got)
	}
}

func TestRemoveAllRoundTrip(t *testing.T) {
	const page = `<html><head></head><body><main><div>Company</div><div><a href="/d">Deal Stage</a></div></main></body></html>`
	d, err := dom.ParseString(page)
	if err != nil {
		t.Fatal(err)
	}
	before, _ := d.HTML()

	inj := NewInjector(d, nil)
	e1 := &glossary.Entry{ID: "e1", Term: "Company", Enabled: true}
	e2 := &glossary.Entry{ID: "e2", Term: "Deal Stage", Enabled: true}
	if _, ok := inj.Inject(Match{Node: firstText(d, "Company"), Entry: e1, Section: SectionPrimary}); !ok {
		t.Fatal("inject e1")
	}
	if _, ok := inj.Inject(Match{Node: firstText(d, "Deal Stage"), Entry: e2, Section: SectionPrimary}); !ok {
		t.Fatal("inject e2")
	}

	if n := inj.RemoveAll(); n == 0 {
		t.Fatal("RemoveAll removed nothing")
	}
	after, _ := d.HTML()
	if after != before {
		t.Fatalf("round trip broken:\nbefore: %q\nafter:  %q", before, after)
	}
}

func TestRemoveAllFlattensDamagedMarker(t *testing.T) {
	// A wrapper whose content was ripped out by a host rewrite still must
	// not survive removal.
	d, err := dom.ParseString(`<body><main><span ` + MarkAttr + `="m1"></span></main></body>`)
	if err != nil {
		t.Fatal(err)
	}
	NewInjector(d, nil).RemoveAll()
	got, _ := d.HTML()
	if strings.Contains(got, MarkAttr) {
		t.Fatalf("damaged marker survived: %q", got)
	}
}
