package feed

import (
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := LoadCatalog("")
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	counts := map[Selector]int{}
	for _, sc := range c.Sources {
		counts[sc.Selector]++
		if sc.InsecureTLS != sc.Selector.General() {
			t.Errorf("source %s: insecure_tls = %v, want %v", sc.Name, sc.InsecureTLS, sc.Selector.General())
		}
		if sc.Image.pattern == nil {
			t.Errorf("source %s: image pattern not compiled", sc.Name)
		}
	}

	want := map[Selector]int{
		SelectorEnglish:       3,
		SelectorNepali:        5,
		SelectorInternational: 4,
		SelectorSports:        2,
		SelectorTech:          2,
	}
	for sel, n := range want {
		if counts[sel] != n {
			t.Errorf("%s sources = %d, want %d", sel, counts[sel], n)
		}
	}
}

func TestParseCatalogRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"unknown selector": `sources: [{name: a, selector: weather, url_env: A}]`,
		"missing url_env":  `sources: [{name: a, selector: en}]`,
		"duplicate":        `sources: [{name: a, selector: en, url_env: A}, {name: a, selector: np, url_env: B}]`,
		"bad strategy":     `sources: [{name: a, selector: en, url_env: A, image: {strategies: [og_image]}}]`,
		"bad pattern":      `sources: [{name: a, selector: en, url_env: A, image: {pattern: "("}}]`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseCatalog([]byte(doc)); err == nil {
				t.Error("ParseCatalog() error = nil")
			}
		})
	}
}

func TestBySelector(t *testing.T) {
	c, err := ParseCatalog([]byte(strings.TrimSpace(`
sources:
  - {name: a, selector: tech, url_env: A}
  - {name: b, selector: en, url_env: B}
  - {name: c, selector: tech, url_env: C}
`)))
	if err != nil {
		t.Fatal(err)
	}
	got := c.BySelector(SelectorTech)
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "c" {
		t.Errorf("BySelector(tech) = %+v", got)
	}
}
