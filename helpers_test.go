package sitecms

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello, World!", "hello-world"},
		{"  Go 1.22 released  ", "go-1-22-released"},
		{"already-a-slug", "already-a-slug"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"https://example.org", nil, "https://example.org/"},
		{"https://example.org/", nil, "https://example.org/"},
		{"https://example.org", []string{"blog", "first-post"}, "https://example.org/blog/first-post/"},
		{"https://example.org/site", []string{"/about/"}, "https://example.org/site/about/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
}

func TestFilterEmpty(t *testing.T) {
	got := FilterEmpty([]string{" a ", "", "  ", "b"})
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Errorf("FilterEmpty mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterRelatedPosts(t *testing.T) {
	current := BlogPost{Slug: "cur", Tags: []string{"Education"}}
	posts := []BlogPost{
		current,
		{Slug: "match", Tags: []string{"nutrition", "education"}},
		{Slug: "other", Tags: []string{"sports"}},
		{Slug: "untagged"},
	}
	got := FilterRelatedPosts(current, posts)
	if len(got) != 1 || got[0].Slug != "match" {
		t.Errorf("FilterRelatedPosts = %+v", got)
	}
	if got := FilterRelatedPosts(BlogPost{Slug: "x"}, posts); got != nil {
		t.Errorf("post without tags should have no related posts, got %+v", got)
	}
}

func TestNormalizeDate(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	if got, err := normalizeDate("", now); err != nil || got != "2026-10-17" {
		t.Errorf("empty date = %q, %v", got, err)
	}
	if got, err := normalizeDate(" 2026-01-05 ", now); err != nil || got != "2026-01-05" {
		t.Errorf("valid date = %q, %v", got, err)
	}
	for _, bad := range []string{"2026-13-01", "05/01/2026", "yesterday"} {
		if _, err := normalizeDate(bad, now); !errors.Is(err, ErrValidation) {
			t.Errorf("normalizeDate(%q) = %v, want ErrValidation", bad, err)
		}
	}
}

func TestOrganizationJsonLD(t *testing.T) {
	cfg := SiteConfig{Name: "Shield Foundation", URL: "https://example.org", Description: "Care"}
	var data map[string]any
	if err := json.Unmarshal([]byte(OrganizationJsonLD(cfg, ContactInfo{Email: "hi@example.org"})), &data); err != nil {
		t.Fatalf("invalid JSON-LD: %v", err)
	}
	if data["@type"] != "NGO" || data["email"] != "hi@example.org" || data["url"] != "https://example.org/" {
		t.Errorf("unexpected JSON-LD: %v", data)
	}
	if _, ok := data["telephone"]; ok {
		t.Error("empty phone should be omitted")
	}
}

func TestBlogPostingJsonLDAuthorFallback(t *testing.T) {
	cfg := SiteConfig{Name: "Shield Foundation", URL: "https://example.org", Author: "Staff"}
	var data struct {
		Author struct {
			Name string `json:"name"`
		} `json:"author"`
		URL      string `json:"url"`
		Keywords string `json:"keywords"`
	}
	post := BlogPost{Slug: "hello", Title: "Hello", Tags: []string{"a", "b"}}
	if err := json.Unmarshal([]byte(BlogPostingJsonLD(post, cfg)), &data); err != nil {
		t.Fatalf("invalid JSON-LD: %v", err)
	}
	if data.Author.Name != "Staff" {
		t.Errorf("author = %q, want fallback Staff", data.Author.Name)
	}
	if data.URL != "https://example.org/blog/hello/" || data.Keywords != "a, b" {
		t.Errorf("url/keywords = %q / %q", data.URL, data.Keywords)
	}
}

func TestBuildFeed(t *testing.T) {
	cfg := SiteConfig{Name: "Shield Foundation", URL: "https://example.org", Description: "News"}
	var posts []BlogPost
	for i := 25; i >= 1; i-- {
		posts = append(posts, BlogPost{
			Slug:  fmt.Sprintf("post-%d", i),
			Title: fmt.Sprintf("Post %d", i),
			Date:  fmt.Sprintf("2026-01-%02d", i),
			Tags:  []string{"news"},
		})
	}
	feed := buildFeed(cfg, posts)
	if len(feed.Channel.Items) != maxFeedItems {
		t.Fatalf("items = %d, want %d", len(feed.Channel.Items), maxFeedItems)
	}
	first := feed.Channel.Items[0]
	if first.Link != "https://example.org/blog/post-25/" || first.GUID != first.Link {
		t.Errorf("first item link = %q, guid = %q", first.Link, first.GUID)
	}
	wantDate := time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC).Format(time.RFC1123Z)
	if feed.Channel.LastBuildDate != wantDate || first.PubDate != wantDate {
		t.Errorf("dates = %q / %q, want %q", feed.Channel.LastBuildDate, first.PubDate, wantDate)
	}

	empty := buildFeed(cfg, nil)
	if len(empty.Channel.Items) != 0 || empty.Channel.LastBuildDate != "" {
		t.Errorf("empty feed = %+v", empty.Channel)
	}
}

func TestBuildSitemap(t *testing.T) {
	sm := buildSitemap("https://example.org", []BlogPost{{Slug: "hello", Date: "2026-02-01"}})
	if len(sm.URLs) != 1+len(publicPages)+1 {
		t.Fatalf("urls = %d", len(sm.URLs))
	}
	if sm.URLs[0].Loc != "https://example.org/" {
		t.Errorf("home = %q", sm.URLs[0].Loc)
	}
	last := sm.URLs[len(sm.URLs)-1]
	if last.Loc != "https://example.org/blog/hello/" || last.LastMod != "2026-02-01" {
		t.Errorf("post entry = %+v", last)
	}
}
