package sitecms

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/shieldfoundation/sitecms/content"
)

// Store wraps a SQLite database and provides CRUD operations for every
// record type plus persistence of site content documents.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed during writes; busy_timeout makes writers wait
	// instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA foreign_keys=ON;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// DB exposes the underlying database for components that keep their own
// tables in the same file.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS news (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    summary TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL DEFAULT '',
    date TEXT NOT NULL,
    published INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS blog_posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    author TEXT NOT NULL DEFAULT '',
    date TEXT NOT NULL,
    tags TEXT NOT NULL DEFAULT ',',
    summary TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL DEFAULT '',
    published INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS success_stories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    title TEXT NOT NULL,
    story TEXT NOT NULL,
    program TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL DEFAULT '',
    featured INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS team_members (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    role TEXT NOT NULL,
    bio TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL DEFAULT '',
    sort_order INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS gallery_items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    filename TEXT NOT NULL DEFAULT '',
    width INTEGER NOT NULL DEFAULT 0,
    height INTEGER NOT NULL DEFAULT 0,
    size INTEGER NOT NULL DEFAULT 0,
    uploaded_at TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS impact_stats (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    label TEXT NOT NULL,
    value REAL NOT NULL DEFAULT 0,
    suffix TEXT NOT NULL DEFAULT '',
    sort_order INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS contact_info (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    address TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    hours TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS contact_messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    subject TEXT NOT NULL DEFAULT '',
    message TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS site_content (
    name TEXT PRIMARY KEY,
    body TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_news_date ON news(date);
CREATE INDEX IF NOT EXISTS idx_blog_posts_date ON blog_posts(date);
`)
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// checkAffected turns an UPDATE or DELETE that touched no rows into ErrNotFound.
func checkAffected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- news ---

const newsColumns = `id, title, summary, content, image_url, date, published`

func scanNews(sc interface{ Scan(...any) error }) (NewsArticle, error) {
	var n NewsArticle
	var published int
	if err := sc.Scan(&n.ID, &n.Title, &n.Summary, &n.Content, &n.ImageURL, &n.Date, &published); err != nil {
		return NewsArticle{}, err
	}
	n.Published = published == 1
	return n, nil
}

// ListNews returns news ordered by date descending. Drafts are included only
// when includeDrafts is set.
func (s *Store) ListNews(includeDrafts bool) ([]NewsArticle, error) {
	q := `SELECT ` + newsColumns + ` FROM news`
	if !includeDrafts {
		q += ` WHERE published = 1`
	}
	rows, err := s.db.Query(q + ` ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []NewsArticle
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// GetNews returns a news article by id regardless of published status.
func (s *Store) GetNews(id int64) (NewsArticle, error) {
	return scanNews(s.db.QueryRow(`SELECT `+newsColumns+` FROM news WHERE id = ?`, id))
}

// SaveNews inserts n when its ID is zero and updates it otherwise.
func (s *Store) SaveNews(n *NewsArticle) error {
	if n.ID == 0 {
		res, err := s.db.Exec(`INSERT INTO news (title, summary, content, image_url, date, published) VALUES (?, ?, ?, ?, ?, ?)`,
			n.Title, n.Summary, n.Content, n.ImageURL, n.Date, boolInt(n.Published))
		if err != nil {
			return err
		}
		n.ID, err = res.LastInsertId()
		return err
	}
	return checkAffected(s.db.Exec(`UPDATE news SET title = ?, summary = ?, content = ?, image_url = ?, date = ?, published = ? WHERE id = ?`,
		n.Title, n.Summary, n.Content, n.ImageURL, n.Date, boolInt(n.Published), n.ID))
}

// DeleteNews removes a news article by id.
func (s *Store) DeleteNews(id int64) error {
	return checkAffected(s.db.Exec(`DELETE FROM news WHERE id = ?`, id))
}

// --- blog ---

const blogColumns = `id, slug, title, author, date, tags, summary, content, image_url, published`

func scanBlogPost(sc interface{ Scan(...any) error }) (BlogPost, error) {
	var p BlogPost
	var tags string
	var published int
	if err := sc.Scan(&p.ID, &p.Slug, &p.Title, &p.Author, &p.Date, &tags, &p.Summary, &p.Content, &p.ImageURL, &published); err != nil {
		return BlogPost{}, err
	}
	p.Tags = ParseTags(tags)
	p.Published = published == 1
	p.Link = "/blog/" + p.Slug
	return p, nil
}

// ListBlogPosts returns posts ordered by date descending. If tag is
// non-empty, results are filtered to posts carrying that tag.
func (s *Store) ListBlogPosts(tag string, includeDrafts bool) ([]BlogPost, error) {
	var where []string
	var args []any
	if !includeDrafts {
		where = append(where, `published = 1`)
	}
	if tag != "" {
		where = append(where, `instr(lower(tags), ',' || ? || ',') > 0`)
		args = append(args, normalizeTag(tag))
	}
	q := `SELECT ` + blogColumns + ` FROM blog_posts`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}
	rows, err := s.db.Query(q+` ORDER BY date DESC, id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []BlogPost
	for rows.Next() {
		p, err := scanBlogPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListTags returns a sorted, deduplicated slice of all tags from published posts.
func (s *Store) ListTags() ([]string, error) {
	rows, err := s.db.Query(`SELECT tags FROM blog_posts WHERE published = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range ParseTags(tags) {
			set[strings.ToLower(t)] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var result []string
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result, nil
}

// GetBlogPost returns a post by id regardless of published status.
func (s *Store) GetBlogPost(id int64) (BlogPost, error) {
	return scanBlogPost(s.db.QueryRow(`SELECT `+blogColumns+` FROM blog_posts WHERE id = ?`, id))
}

// GetBlogPostBySlug returns a single published post by slug.
func (s *Store) GetBlogPostBySlug(slug string) (BlogPost, error) {
	return scanBlogPost(s.db.QueryRow(`SELECT `+blogColumns+` FROM blog_posts WHERE slug = ? AND published = 1`, slug))
}

// SaveBlogPost inserts or updates a post. Tags are normalized to lowercase.
func (s *Store) SaveBlogPost(p *BlogPost) error {
	normalized := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		if t = normalizeTag(t); t != "" {
			normalized = append(normalized, t)
		}
	}
	p.Tags = normalized
	tagString := "," + strings.Join(normalized, ",") + ","
	p.Link = "/blog/" + p.Slug
	if p.ID == 0 {
		res, err := s.db.Exec(`INSERT INTO blog_posts (slug, title, author, date, tags, summary, content, image_url, published) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.Slug, p.Title, p.Author, p.Date, tagString, p.Summary, p.Content, p.ImageURL, boolInt(p.Published))
		if err != nil {
			return slugConflict(p.Slug, err)
		}
		p.ID, err = res.LastInsertId()
		return err
	}
	res, err := s.db.Exec(`UPDATE blog_posts SET slug = ?, title = ?, author = ?, date = ?, tags = ?, summary = ?, content = ?, image_url = ?, published = ? WHERE id = ?`,
		p.Slug, p.Title, p.Author, p.Date, tagString, p.Summary, p.Content, p.ImageURL, boolInt(p.Published), p.ID)
	return checkAffected(res, slugConflict(p.Slug, err))
}

func slugConflict(slug string, err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: slug %q", ErrConflict, slug)
	}
	return err
}

// DeleteBlogPost removes a post by id.
func (s *Store) DeleteBlogPost(id int64) error {
	return checkAffected(s.db.Exec(`DELETE FROM blog_posts WHERE id = ?`, id))
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// --- success stories ---

const storyColumns = `id, name, title, story, program, image_url, featured`

func scanStory(sc interface{ Scan(...any) error }) (SuccessStory, error) {
	var st SuccessStory
	var featured int
	if err := sc.Scan(&st.ID, &st.Name, &st.Title, &st.Story, &st.Program, &st.ImageURL, &featured); err != nil {
		return SuccessStory{}, err
	}
	st.Featured = featured == 1
	return st, nil
}

// ListStories returns success stories, featured first.
func (s *Store) ListStories() ([]SuccessStory, error) {
	rows, err := s.db.Query(`SELECT ` + storyColumns + ` FROM success_stories ORDER BY featured DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SuccessStory
	for rows.Next() {
		st, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// GetStory returns a success story by id.
func (s *Store) GetStory(id int64) (SuccessStory, error) {
	return scanStory(s.db.QueryRow(`SELECT `+storyColumns+` FROM success_stories WHERE id = ?`, id))
}

// SaveStory inserts or updates a success story.
func (s *Store) SaveStory(st *SuccessStory) error {
	if st.ID == 0 {
		res, err := s.db.Exec(`INSERT INTO success_stories (name, title, story, program, image_url, featured) VALUES (?, ?, ?, ?, ?, ?)`,
			st.Name, st.Title, st.Story, st.Program, st.ImageURL, boolInt(st.Featured))
		if err != nil {
			return err
		}
		st.ID, err = res.LastInsertId()
		return err
	}
	return checkAffected(s.db.Exec(`UPDATE success_stories SET name = ?, title = ?, story = ?, program = ?, image_url = ?, featured = ? WHERE id = ?`,
		st.Name, st.Title, st.Story, st.Program, st.ImageURL, boolInt(st.Featured), st.ID))
}

// DeleteStory removes a success story by id.
func (s *Store) DeleteStory(id int64) error {
	return checkAffected(s.db.Exec(`DELETE FROM success_stories WHERE id = ?`, id))
}

// --- team ---

const teamColumns = `id, name, role, bio, image_url, sort_order`

func scanTeamMember(sc interface{ Scan(...any) error }) (TeamMember, error) {
	var m TeamMember
	if err := sc.Scan(&m.ID, &m.Name, &m.Role, &m.Bio, &m.ImageURL, &m.SortOrder); err != nil {
		return TeamMember{}, err
	}
	return m, nil
}

// ListTeam returns team members in display order.
func (s *Store) ListTeam() ([]TeamMember, error) {
	rows, err := s.db.Query(`SELECT ` + teamColumns + ` FROM team_members ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TeamMember
	for rows.Next() {
		m, err := scanTeamMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetTeamMember returns a team member by id.
func (s *Store) GetTeamMember(id int64) (TeamMember, error) {
	return scanTeamMember(s.db.QueryRow(`SELECT `+teamColumns+` FROM team_members WHERE id = ?`, id))
}

// SaveTeamMember inserts or updates a team member.
func (s *Store) SaveTeamMember(m *TeamMember) error {
	if m.ID == 0 {
		res, err := s.db.Exec(`INSERT INTO team_members (name, role, bio, image_url, sort_order) VALUES (?, ?, ?, ?, ?)`,
			m.Name, m.Role, m.Bio, m.ImageURL, m.SortOrder)
		if err != nil {
			return err
		}
		m.ID, err = res.LastInsertId()
		return err
	}
	return checkAffected(s.db.Exec(`UPDATE team_members SET name = ?, role = ?, bio = ?, image_url = ?, sort_order = ? WHERE id = ?`,
		m.Name, m.Role, m.Bio, m.ImageURL, m.SortOrder, m.ID))
}

// DeleteTeamMember removes a team member by id.
func (s *Store) DeleteTeamMember(id int64) error {
	return checkAffected(s.db.Exec(`DELETE FROM team_members WHERE id = ?`, id))
}

// --- gallery ---

const galleryColumns = `id, title, description, category, filename, width, height, size, uploaded_at`

func scanGalleryItem(sc interface{ Scan(...any) error }) (GalleryItem, error) {
	var g GalleryItem
	if err := sc.Scan(&g.ID, &g.Title, &g.Description, &g.Category, &g.Filename, &g.Width, &g.Height, &g.Size, &g.UploadedAt); err != nil {
		return GalleryItem{}, err
	}
	return g, nil
}

// ListGallery returns gallery items, newest first.
func (s *Store) ListGallery() ([]GalleryItem, error) {
	rows, err := s.db.Query(`SELECT ` + galleryColumns + ` FROM gallery_items ORDER BY uploaded_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GalleryItem
	for rows.Next() {
		g, err := scanGalleryItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// GetGalleryItem returns a gallery item by id.
func (s *Store) GetGalleryItem(id int64) (GalleryItem, error) {
	return scanGalleryItem(s.db.QueryRow(`SELECT `+galleryColumns+` FROM gallery_items WHERE id = ?`, id))
}

// GalleryFilenameExists reports whether an item already uses filename.
func (s *Store) GalleryFilenameExists(filename string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM gallery_items WHERE filename = ?`, filename).Scan(&n)
	return n > 0, err
}

// SaveGalleryItem inserts or updates a gallery item.
func (s *Store) SaveGalleryItem(g *GalleryItem) error {
	if g.ID == 0 {
		res, err := s.db.Exec(`INSERT INTO gallery_items (title, description, category, filename, width, height, size, uploaded_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			g.Title, g.Description, g.Category, g.Filename, g.Width, g.Height, g.Size, g.UploadedAt)
		if err != nil {
			return err
		}
		g.ID, err = res.LastInsertId()
		return err
	}
	return checkAffected(s.db.Exec(`UPDATE gallery_items SET title = ?, description = ?, category = ?, filename = ?, width = ?, height = ?, size = ?, uploaded_at = ? WHERE id = ?`,
		g.Title, g.Description, g.Category, g.Filename, g.Width, g.Height, g.Size, g.UploadedAt, g.ID))
}

// DeleteGalleryItem removes a gallery item by id.
func (s *Store) DeleteGalleryItem(id int64) error {
	return checkAffected(s.db.Exec(`DELETE FROM gallery_items WHERE id = ?`, id))
}

// --- impact stats ---

const statColumns = `id, label, value, suffix, sort_order`

func scanStat(sc interface{ Scan(...any) error }) (ImpactStat, error) {
	var st ImpactStat
	if err := sc.Scan(&st.ID, &st.Label, &st.Value, &st.Suffix, &st.SortOrder); err != nil {
		return ImpactStat{}, err
	}
	return st, nil
}

// ListStats returns impact statistics in display order.
func (s *Store) ListStats() ([]ImpactStat, error) {
	rows, err := s.db.Query(`SELECT ` + statColumns + ` FROM impact_stats ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ImpactStat
	for rows.Next() {
		st, err := scanStat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// GetStat returns an impact statistic by id.
func (s *Store) GetStat(id int64) (ImpactStat, error) {
	return scanStat(s.db.QueryRow(`SELECT `+statColumns+` FROM impact_stats WHERE id = ?`, id))
}

// SaveStat inserts or updates an impact statistic.
func (s *Store) SaveStat(st *ImpactStat) error {
	if st.ID == 0 {
		res, err := s.db.Exec(`INSERT INTO impact_stats (label, value, suffix, sort_order) VALUES (?, ?, ?, ?)`,
			st.Label, st.Value, st.Suffix, st.SortOrder)
		if err != nil {
			return err
		}
		st.ID, err = res.LastInsertId()
		return err
	}
	return checkAffected(s.db.Exec(`UPDATE impact_stats SET label = ?, value = ?, suffix = ?, sort_order = ? WHERE id = ?`,
		st.Label, st.Value, st.Suffix, st.SortOrder, st.ID))
}

// DeleteStat removes an impact statistic by id.
func (s *Store) DeleteStat(id int64) error {
	return checkAffected(s.db.Exec(`DELETE FROM impact_stats WHERE id = ?`, id))
}

// --- contact ---

// GetContactInfo returns the contact block, or a zero value if none was saved.
func (s *Store) GetContactInfo() (ContactInfo, error) {
	var ci ContactInfo
	err := s.db.QueryRow(`SELECT address, phone, email, hours FROM contact_info WHERE id = 1`).
		Scan(&ci.Address, &ci.Phone, &ci.Email, &ci.Hours)
	if err == sql.ErrNoRows {
		return ContactInfo{}, nil
	}
	return ci, err
}

// SaveContactInfo replaces the contact block.
func (s *Store) SaveContactInfo(ci ContactInfo) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO contact_info (id, address, phone, email, hours) VALUES (1, ?, ?, ?, ?)`,
		ci.Address, ci.Phone, ci.Email, ci.Hours)
	return err
}

// SaveMessage records a contact form submission.
func (s *Store) SaveMessage(m *ContactMessage) error {
	if m.CreatedAt == "" {
		m.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	res, err := s.db.Exec(`INSERT INTO contact_messages (name, email, subject, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.Name, m.Email, m.Subject, m.Message, m.CreatedAt)
	if err != nil {
		return err
	}
	m.ID, err = res.LastInsertId()
	return err
}

// ListMessages returns contact form submissions, newest first.
func (s *Store) ListMessages() ([]ContactMessage, error) {
	rows, err := s.db.Query(`SELECT id, name, email, subject, message, created_at FROM contact_messages ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ContactMessage
	for rows.Next() {
		var m ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteMessage removes a contact message by id.
func (s *Store) DeleteMessage(id int64) error {
	return checkAffected(s.db.Exec(`DELETE FROM contact_messages WHERE id = ?`, id))
}

// --- site content ---

// LoadDocument returns the persisted content document called name, or an
// empty document if it has never been saved.
func (s *Store) LoadDocument(ctx context.Context, name string) (content.Document, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM site_content WHERE name = ?`, name).Scan(&body)
	if err == sql.ErrNoRows {
		return content.Document{}, nil
	}
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("decode content %q: %w", name, err)
	}
	return content.FromMap(raw), nil
}

// SaveDocument replaces the content document called name in one statement.
func (s *Store) SaveDocument(ctx context.Context, name string, doc content.Document) error {
	if doc == nil {
		doc = content.Document{}
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode content %q: %w", name, err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO site_content (name, body, updated_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		name, string(body), time.Now().UTC().Format(time.RFC3339))
	return err
}

// DocumentExists reports whether a content document called name was saved.
func (s *Store) DocumentExists(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM site_content WHERE name = ?`, name).Scan(&n)
	return n > 0, err
}

// ListDocuments returns the names of all saved content documents.
func (s *Store) ListDocuments(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM site_content ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// --- database browser ---

const (
	defaultBrowseLimit = 50
	maxBrowseLimit     = 500
)

// ListTables returns every user table with its row count.
func (s *Store) ListTables() ([]TableInfo, error) {
	names, err := s.tableNames()
	if err != nil {
		return nil, err
	}
	out := make([]TableInfo, 0, len(names))
	for _, n := range names {
		var count int64
		// n comes from sqlite_master, not from the request.
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM "` + n + `"`).Scan(&count); err != nil {
			return nil, err
		}
		out = append(out, TableInfo{Name: n, Rows: count})
	}
	return out, nil
}

func (s *Store) tableNames() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// BrowseTable returns a page of raw rows from table. The table must exist;
// limit is clamped to [1, 500].
func (s *Store) BrowseTable(table string, limit, offset int) (TablePage, error) {
	names, err := s.tableNames()
	if err != nil {
		return TablePage{}, err
	}
	idx := sort.SearchStrings(names, table)
	if idx == len(names) || names[idx] != table {
		return TablePage{}, ErrNotFound
	}
	if limit <= 0 {
		limit = defaultBrowseLimit
	}
	if limit > maxBrowseLimit {
		limit = maxBrowseLimit
	}
	if offset < 0 {
		offset = 0
	}

	page := TablePage{Table: table, Limit: limit, Offset: offset, Rows: []map[string]any{}}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM "` + table + `"`).Scan(&page.Total); err != nil {
		return TablePage{}, err
	}

	rows, err := s.db.Query(`SELECT * FROM "`+table+`" LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return TablePage{}, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return TablePage{}, err
	}
	page.Columns = cols
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return TablePage{}, err
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[c] = string(b)
				continue
			}
			row[c] = vals[i]
		}
		page.Rows = append(page.Rows, row)
	}
	return page, rows.Err()
}

// Counts gathers dashboard record counts. Queries run concurrently.
func (s *Store) Counts(ctx context.Context) (Overview, error) {
	var ov Overview
	targets := []struct {
		table string
		dst   *int64
	}{
		{"news", &ov.News},
		{"blog_posts", &ov.Blog},
		{"success_stories", &ov.Stories},
		{"team_members", &ov.Team},
		{"gallery_items", &ov.Gallery},
		{"impact_stats", &ov.Stats},
		{"contact_messages", &ov.Messages},
		{"site_content", &ov.Content},
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		g.Go(func() error {
			if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+t.table).Scan(t.dst); err != nil {
				return fmt.Errorf("count %s: %w", t.table, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return ov, nil
}
