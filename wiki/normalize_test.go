package wiki

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Deal Stage", "deal stage"},
		{"  Deal\n\tStage  ", "deal stage"},
		{"De\u200bal", "deal"},
		{"\ufeffCompany\u2060", "company"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTrimDecorations(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"deals", "deals"},
		{"deals:", "deals"},
		{"deals (3)", "deals"},
		{"deals (3):", "deals"},
		{"deals (3): (12)::", "deals"},
		{"(3)", ""},
	}
	for _, c := range cases {
		if got := TrimDecorations(c.in); got != c.want {
			t.Errorf("TrimDecorations(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPluralVariants(t *testing.T) {
	has := func(vs []string, want string) bool {
		for _, v := range vs {
			if v == want {
				return true
			}
		}
		return false
	}

	if vs := pluralVariants("companies"); !has(vs, "company") {
		t.Errorf("companies should bridge to company, got %v", vs)
	}
	if vs := pluralVariants("deals"); !has(vs, "deal") {
		t.Errorf("deals should bridge to deal, got %v", vs)
	}
	if vs := pluralVariants("deal"); !has(vs, "deals") {
		t.Errorf("deal should bridge to deals, got %v", vs)
	}
	if vs := pluralVariants("company"); !has(vs, "companies") {
		t.Errorf("company should bridge to companies, got %v", vs)
	}
}
