package web

import (
	"strings"
	"testing"
)

func TestFormatNum(t *testing.T) {
	cases := map[float64]string{
		0:                 "0",
		76.80000000000001: "76.8",
		768:               "768",
		-0.001:            "0",
		12.346:            "12.35",
		-1382.4:           "-1382.4",
	}
	for in, want := range cases {
		if got := formatNum(in); got != want {
			t.Errorf("formatNum(%v): expected %q, got %q", in, want, got)
		}
	}
}

func TestWithQuery(t *testing.T) {
	if got := withQuery("/a/b", ""); got != "/a/b" {
		t.Errorf("expected /a/b, got %q", got)
	}
	if got := withQuery("/a/b", "fact=eyes"); got != "/a/b?fact=eyes" {
		t.Errorf("expected /a/b?fact=eyes, got %q", got)
	}
}

func TestHoverCSS(t *testing.T) {
	css := string(hoverCSS([]railItem{
		{Slug: "eyes"},
		{Slug: "cœur-2"},
		{Slug: `bad"slug`},
		{Slug: ""},
	}))

	expectContains(t, css, `[data-fact="eyes"]:hover`)
	expectContains(t, css, `[data-fact="cœur-2"]:hover`)
	expectNotContains(t, css, "bad")
	if n := strings.Count(css, "\n"); n != 4 {
		t.Errorf("expected 4 rules, got %d", n)
	}
}

func TestCSSSafeSlug(t *testing.T) {
	cases := map[string]bool{
		"fact-12": true,
		"日本":      true,
		"":        false,
		"a b":     false,
		"a}b":     false,
	}
	for in, want := range cases {
		if got := cssSafeSlug(in); got != want {
			t.Errorf("cssSafeSlug(%q): expected %v, got %v", in, want, got)
		}
	}
}
