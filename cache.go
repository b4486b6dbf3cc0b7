package sitecms

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shieldfoundation/sitecms/content"
)

// SiteDocument is the name of the content document that drives the public pages.
const SiteDocument = "site"

// PublicCache is an in-memory TTL cache of the published data public pages
// read on every request: blog posts, tags, news and the site document.
type PublicCache struct {
	mu      sync.RWMutex
	posts   []BlogPost
	tags    []string
	news    []NewsArticle
	site    content.Document
	loaded  bool
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewPublicCache creates a PublicCache backed by the given Store.
func NewPublicCache(s *Store, ttl time.Duration) *PublicCache {
	return &PublicCache{store: s, ttl: ttl}
}

func (c *PublicCache) valid() bool {
	return c.loaded && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PublicCache) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.posts, c.tags, c.news, c.site = nil, nil, nil, nil
	c.mu.Unlock()
}

func (c *PublicCache) load() error {
	if c.valid() {
		return nil
	}
	posts, err := c.store.ListBlogPosts("", false)
	if err != nil {
		return err
	}
	tags, err := c.store.ListTags()
	if err != nil {
		return err
	}
	news, err := c.store.ListNews(false)
	if err != nil {
		return err
	}
	site, err := c.store.LoadDocument(context.Background(), SiteDocument)
	if err != nil {
		return err
	}
	c.posts, c.tags, c.news, c.site = posts, tags, news, site
	c.loaded = true
	c.fetched = time.Now()
	return nil
}

type snapshot struct {
	posts []BlogPost
	tags  []string
	news  []NewsArticle
	site  content.Document
}

// ensureLoaded returns the cached data after ensuring it is fresh. It tries a
// read lock first and only takes the write lock if a reload is needed.
func (c *PublicCache) ensureLoaded() (snapshot, error) {
	c.mu.RLock()
	if c.valid() {
		snap := snapshot{c.posts, c.tags, c.news, c.site}
		c.mu.RUnlock()
		return snap, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return snapshot{}, err
	}
	return snapshot{c.posts, c.tags, c.news, c.site}, nil
}

// ListPosts returns published posts, optionally filtered by tag.
func (c *PublicCache) ListPosts(tag string) ([]BlogPost, error) {
	snap, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return snap.posts, nil
	}
	normalized := normalizeTag(tag)
	var filtered []BlogPost
	for _, p := range snap.posts {
		for _, t := range p.Tags {
			if normalizeTag(t) == normalized {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered, nil
}

// ListTags returns all unique tags from published posts.
func (c *PublicCache) ListTags() ([]string, error) {
	snap, err := c.ensureLoaded()
	return snap.tags, err
}

// GetPost returns a single published post by slug from the cache.
func (c *PublicCache) GetPost(slug string) (BlogPost, error) {
	snap, err := c.ensureLoaded()
	if err != nil {
		return BlogPost{}, err
	}
	for _, p := range snap.posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return BlogPost{}, ErrNotFound
}

// ListNews returns published news articles.
func (c *PublicCache) ListNews() ([]NewsArticle, error) {
	snap, err := c.ensureLoaded()
	return snap.news, err
}

// Site returns the persisted site document. Callers must not modify it.
func (c *PublicCache) Site() (content.Document, error) {
	snap, err := c.ensureLoaded()
	return snap.site, err
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
