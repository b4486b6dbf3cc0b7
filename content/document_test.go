package content

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGetMissingPathReturnsDefault(t *testing.T) {
	docs := []Document{
		nil,
		{},
		{"about": Document{"hero": Document{"title": "About"}}},
	}
	paths := []string{"homepage", "homepage.hero", "homepage.hero.title", "x.y.z"}
	for _, d := range docs {
		for _, p := range paths {
			if got := Get(d, p); got != "" {
				t.Errorf("Get(%v, %q) = %v, want empty string", d, p, got)
			}
		}
	}
}

func TestGetThroughScalarReturnsDefault(t *testing.T) {
	d := Document{"a": "x", "n": 3.0, "b": true}
	for _, p := range []string{"a.b", "n.value", "b.c.d"} {
		if got := Get(d, p); got != "" {
			t.Errorf("Get(%q) = %v, want empty string", p, got)
		}
	}
}

func TestGetAcceptsDecodedMaps(t *testing.T) {
	d := Document{"homepage": map[string]any{"hero": map[string]any{"title": "Hi"}}}
	if got := Get(d, "homepage.hero.title"); got != "Hi" {
		t.Fatalf("Get = %v, want Hi", got)
	}
}

func TestGetReturnsSubtree(t *testing.T) {
	d := Document{"homepage": Document{"hero": Document{"title": "Hi"}}}
	got, ok := Get(d, "homepage.hero").(Document)
	if !ok {
		t.Fatalf("Get(homepage.hero) = %T, want Document", Get(d, "homepage.hero"))
	}
	if got["title"] != "Hi" {
		t.Errorf("subtree title = %v, want Hi", got["title"])
	}
}

func TestGetOrUsesCallerDefault(t *testing.T) {
	if got := GetOr(Document{}, "a.b", "fallback"); got != "fallback" {
		t.Errorf("GetOr = %v, want fallback", got)
	}
}

func TestGetString(t *testing.T) {
	d := Document{
		"s": "text",
		"n": 42.0,
		"f": 2.5,
		"b": false,
		"m": Document{"k": "v"},
	}
	tests := []struct {
		path string
		want string
	}{
		{"s", "text"},
		{"n", "42"},
		{"f", "2.5"},
		{"b", "false"},
		{"m", ""},
		{"missing", ""},
	}
	for _, tt := range tests {
		if got := GetString(d, tt.path); got != tt.want {
			t.Errorf("GetString(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestSetThenGetRoundTrips(t *testing.T) {
	values := []any{"Shield Foundation", 12.0, true, ""}
	paths := []string{"a", "a.b", "homepage.hero.title", "x.y.z.w"}
	for _, p := range paths {
		for _, v := range values {
			d := Set(Document{"other": "keep"}, p, v)
			if got := Get(d, p); got != v {
				t.Errorf("Get(Set(d, %q, %v)) = %v", p, v, got)
			}
			if d["other"] != "keep" {
				t.Errorf("Set(%q) dropped sibling key", p)
			}
		}
	}
}

func TestSetIndependentPaths(t *testing.T) {
	d := Set(Document{}, "homepage.hero.title", "T")
	d = Set(d, "about.mission", "M")
	if got := Get(d, "homepage.hero.title"); got != "T" {
		t.Errorf("first path = %v, want T", got)
	}
	if got := Get(d, "about.mission"); got != "M" {
		t.Errorf("second path = %v, want M", got)
	}
}

func TestSetSiblingsUnderSharedParent(t *testing.T) {
	d := Set(Document{}, "homepage.hero.title", "T")
	d = Set(d, "homepage.hero.subtitle", "S")
	if got := Get(d, "homepage.hero.title"); got != "T" {
		t.Errorf("title = %v, want T", got)
	}
	if got := Get(d, "homepage.hero.subtitle"); got != "S" {
		t.Errorf("subtitle = %v, want S", got)
	}
}

func TestSetIdempotent(t *testing.T) {
	base := Document{"homepage": Document{"hero": Document{"title": "Old"}}}
	once := Set(base, "homepage.hero.title", "New")
	twice := Set(once, "homepage.hero.title", "New")
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("second Set changed document (-once +twice):\n%s", diff)
	}
}

func TestSetOverwritesScalarIntermediate(t *testing.T) {
	d := Set(Document{"a": "x"}, "a.b", "y")
	if got := Get(d, "a.b"); got != "y" {
		t.Errorf("Get(a.b) = %v, want y", got)
	}
	if _, ok := Get(d, "a").(Document); !ok {
		t.Errorf("Get(a) = %v, want a mapping", Get(d, "a"))
	}
}

func TestSetDoesNotMutateInput(t *testing.T) {
	orig := Document{"homepage": Document{"hero": Document{"title": "Old"}}}
	snapshot := Clone(orig)
	_ = Set(orig, "homepage.hero.title", "New")
	_ = Set(orig, "homepage.cta.label", "Donate")
	if diff := cmp.Diff(snapshot, orig); diff != "" {
		t.Errorf("Set mutated its input (-want +got):\n%s", diff)
	}
}

func TestSetSharesUntouchedBranches(t *testing.T) {
	about := Document{"title": "About"}
	orig := Document{"about": about, "homepage": Document{}}
	d := Set(orig, "homepage.title", "Home")
	got := d["about"].(Document)
	got["title"] = "changed"
	if about["title"] != "changed" {
		t.Errorf("untouched branch was copied, want shared reference")
	}
}

func TestSetInvalidPathIsNoop(t *testing.T) {
	d := Document{"a": "x"}
	for _, p := range []string{"", ".", "a.", ".a", "a..b"} {
		got := Set(d, p, "y")
		if diff := cmp.Diff(d, got); diff != "" {
			t.Errorf("Set(%q) changed document:\n%s", p, diff)
		}
		if Get(d, p) != "" {
			t.Errorf("Get(%q) = %v, want default", p, Get(d, p))
		}
	}
}

func TestScenarioEmptyDocument(t *testing.T) {
	d := Set(Document{}, "homepage.hero.title", "Shield Foundation")
	if got := Get(d, "homepage.hero.title"); got != "Shield Foundation" {
		t.Errorf("title = %v", got)
	}
	if got := Get(d, "homepage.hero.subtitle"); got != "" {
		t.Errorf("subtitle = %v, want empty", got)
	}
	if got := Get(d, "about.hero.title"); got != "" {
		t.Errorf("about title = %v, want empty", got)
	}
}

func TestScenarioReplaceExisting(t *testing.T) {
	d := Document{"homepage": Document{"hero": Document{"title": "Old"}}}
	d = Set(d, "homepage.hero.title", "New")
	if got := Get(d, "homepage.hero.title"); got != "New" {
		t.Errorf("title = %v, want New", got)
	}
	if got := Get(d, "homepage.hero.subtitle"); got != "" {
		t.Errorf("subtitle = %v, want empty", got)
	}
}

func TestValidPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a", true},
		{"homepage.hero.title", true},
		{"", false},
		{".", false},
		{"a.", false},
		{".a", false},
		{"a..b", false},
	}
	for _, tt := range tests {
		if got := ValidPath(tt.path); got != tt.want {
			t.Errorf("ValidPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	in := map[string]any{
		"count": 3,
		"nested": map[string]any{
			"flag": true,
			"deep": map[any]any{"n": int64(7)},
		},
	}
	want := Document{
		"count": 3.0,
		"nested": Document{
			"flag": true,
			"deep": Document{"n": 7.0},
		},
	}
	if diff := cmp.Diff(want, FromMap(in)); diff != "" {
		t.Errorf("FromMap mismatch (-want +got):\n%s", diff)
	}
}

func TestPaths(t *testing.T) {
	d := Document{
		"homepage": Document{"hero": Document{"title": "T", "subtitle": "S"}},
		"footer":   "F",
	}
	want := []string{"footer", "homepage.hero.subtitle", "homepage.hero.title"}
	if diff := cmp.Diff(want, Paths(d)); diff != "" {
		t.Errorf("Paths mismatch (-want +got):\n%s", diff)
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := Document{"a": Document{"b": "c"}}
	c := Clone(orig)
	c["a"].(Document)["b"] = "changed"
	if Get(orig, "a.b") != "c" {
		t.Errorf("Clone shares nested maps")
	}
}
