package wiki

import (
	"testing"

	"github.com/twellen/glossover/glossary"
)

func testEntries() []glossary.Entry {
	return []glossary.Entry{
		{
			ID: "e1", Term: "Company", Enabled: true,
			Definition: "<p>An organization you sell to.</p>",
			Link:       "https://glossary.example/company",
		},
		{ID: "e2", Term: "Deal Stage", Aliases: []string{"Stage"}, Enabled: true},
		{ID: "e3", Term: "Pipeline", Enabled: false},
	}
}

func TestDictionaryExactMatch(t *testing.T) {
	d := BuildDictionary(testEntries(), nil)

	e, ok := d.Match("Company")
	if !ok || e.ID != "e1" {
		t.Fatalf("Match(Company) = %v, %v", e, ok)
	}
	if _, ok := d.Match("Company Domain Name"); ok {
		t.Fatal("substring must not match: Company Domain Name hit Company")
	}
	if _, ok := d.Match("Compan"); ok {
		t.Fatal("prefix must not match")
	}
}

func TestDictionaryAlias(t *testing.T) {
	d := BuildDictionary(testEntries(), nil)
	e, ok := d.Match("Stage")
	if !ok || e.ID != "e2" {
		t.Fatalf("Match(Stage) = %v, %v", e, ok)
	}
}

func TestDictionaryPluralBridge(t *testing.T) {
	d := BuildDictionary(testEntries(), nil)

	// Plural text, singular trigger.
	if e, ok := d.Match("Companies"); !ok || e.ID != "e1" {
		t.Fatalf("Match(Companies) = %v, %v", e, ok)
	}
	// Singular text, plural trigger.
	d2 := BuildDictionary([]glossary.Entry{{ID: "p", Term: "Deals", Enabled: true}}, nil)
	if e, ok := d2.Match("Deal"); !ok || e.ID != "p" {
		t.Fatalf("Match(Deal) against Deals = %v, %v", e, ok)
	}
}

func TestDictionaryDecorations(t *testing.T) {
	d := BuildDictionary(testEntries(), nil)
	for _, text := range []string{"Deal Stage:", "Deal Stage (4)", "deal   stage"} {
		if e, ok := d.Match(text); !ok || e.ID != "e2" {
			t.Errorf("Match(%q) = %v, %v", text, e, ok)
		}
	}
}

func TestDictionaryDisabledEntry(t *testing.T) {
	d := BuildDictionary(testEntries(), nil)
	if _, ok := d.Match("Pipeline"); ok {
		t.Fatal("disabled entry must not be indexed")
	}
}

func TestDictionaryFirstWins(t *testing.T) {
	d := BuildDictionary([]glossary.Entry{
		{ID: "a", Term: "Quota", Enabled: true},
		{ID: "b", Term: "Quota", Enabled: true},
	}, nil)
	if e, _ := d.Match("Quota"); e.ID != "a" {
		t.Fatalf("collision winner = %s, want a", e.ID)
	}
}

func TestDictionarySkipsUnusable(t *testing.T) {
	d := BuildDictionary([]glossary.Entry{
		{ID: "bad", Term: "   ", Aliases: []string{"\u200b"}, Enabled: true},
		{ID: "ok", Term: "Forecast", Enabled: true},
	}, nil)
	if d.Skipped() != 1 {
		t.Fatalf("Skipped = %d, want 1", d.Skipped())
	}
	if d.Len() != 1 {
		t.Fatalf("Len = %d, want 1", d.Len())
	}
}

func TestDictionaryInvalidate(t *testing.T) {
	d := BuildDictionary(testEntries(), nil)
	d.Invalidate()
	if d.Len() != 0 {
		t.Fatalf("Len after Invalidate = %d", d.Len())
	}
	if _, ok := d.Match("Company"); ok {
		t.Fatal("match after Invalidate")
	}
}
