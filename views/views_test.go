package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/shieldfoundation/sitecms"
	"github.com/shieldfoundation/sitecms/content"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func testPageData(doc content.Document) sitecms.PageData {
	return sitecms.PageData{
		Site:    sitecms.SiteConfig{Name: "Shield Foundation", URL: "https://shield.example"},
		Content: doc,
		Meta:    sitecms.PageMeta{Title: "Home | Shield Foundation", OGType: "website"},
		Path:    "/",
	}
}

func TestHomeReadsSiteContent(t *testing.T) {
	doc := content.Set(content.Document{}, "homepage.hero.title", "Every child, safe")
	doc = content.Set(doc, "footer.tagline", "Registered charity")
	stats := []sitecms.ImpactStat{{Label: "meals served", Value: 12000, Suffix: "+"}}
	out := renderString(t, Default().Home(testPageData(doc), nil, stats, nil))

	for _, want := range []string{"Every child, safe", "Registered charity", "12000+", "meals served"} {
		if !strings.Contains(out, want) {
			t.Errorf("home page missing %q", want)
		}
	}
}

func TestMissingContentRendersEmpty(t *testing.T) {
	out := renderString(t, Default().About(testPageData(content.Document{}), nil))
	if !strings.Contains(out, "<h1></h1>") {
		t.Errorf("unset about.hero.title should render empty, got:\n%s", out)
	}
}

func TestContentIsEscaped(t *testing.T) {
	doc := content.Set(content.Document{}, "homepage.hero.title", "<script>alert(1)</script>")
	out := renderString(t, Default().Home(testPageData(doc), nil, nil, nil))
	if strings.Contains(out, "<script>alert(1)</script>") {
		t.Error("site content must be HTML-escaped")
	}
}

func TestPostRendersSanitizedMarkdown(t *testing.T) {
	post := sitecms.BlogPost{
		Slug:    "hello",
		Title:   "Hello",
		Date:    "2024-03-01",
		Tags:    []string{"news"},
		Content: "Some **bold** text\n\n<script>alert(1)</script>",
	}
	related := []sitecms.BlogPost{{Slug: "other", Title: "Other post"}}
	out := renderString(t, Default().Post(testPageData(nil), post, related))

	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Error("markdown body not rendered")
	}
	if strings.Contains(out, "alert(1)") {
		t.Error("script survived sanitization")
	}
	if !strings.Contains(out, "March 1, 2024") {
		t.Error("date not formatted")
	}
	if !strings.Contains(out, `href="/blog/other/"`) {
		t.Error("related post link missing")
	}
	if !strings.Contains(out, `"@type":"BlogPosting"`) {
		t.Error("JSON-LD missing")
	}
}

func TestContactShowsStateAndCSRF(t *testing.T) {
	d := testPageData(nil)
	d.CsrfToken = "tok123"
	out := renderString(t, Default().Contact(d, sitecms.ContactInfo{Email: "hi@shield.example"}, false, "Please fill in your name"))
	for _, want := range []string{`value="tok123"`, "hi@shield.example", "Please fill in your name"} {
		if !strings.Contains(out, want) {
			t.Errorf("contact page missing %q", want)
		}
	}
}

func TestEveryPageRenders(t *testing.T) {
	v := Default()
	d := testPageData(nil)
	components := map[string]templ.Component{
		"programs":  v.Programs(d, nil),
		"impact":    v.Impact(d, nil, nil),
		"gallery":   v.Gallery(d, []sitecms.GalleryItem{{Title: "Picnic", Filename: "picnic.jpg"}}),
		"blog":      v.Blog(d, nil, "", []string{"news"}),
		"login":     v.AdminLogin(d, true),
		"dashboard": v.AdminDashboard(d, sitecms.Overview{News: 2}, []sitecms.TableInfo{{Name: "news", Rows: 2}}, []string{"site"}),
		"notfound":  v.NotFound(d),
		"error":     v.ServerError(d),
	}
	for name, c := range components {
		if out := renderString(t, c); !strings.Contains(out, "</html>") {
			t.Errorf("%s: incomplete page", name)
		}
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct{ in, want string }{
		{"2024-03-01", "March 1, 2024"},
		{"", ""},
		{"soon", "soon"},
	}
	for _, tt := range tests {
		if got := formatDate(tt.in); got != tt.want {
			t.Errorf("formatDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
