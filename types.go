package sitecms

// NewsArticle is a short announcement shown on the home page and news list.
type NewsArticle struct {
	ID        int64  `json:"id"`
	Title     string `json:"title" validate:"required"`
	Summary   string `json:"summary"`
	Content   string `json:"content"`
	ImageURL  string `json:"image_url"`
	Date      string `json:"date" validate:"required"`
	Published bool   `json:"published"`
}

// BlogPost is a long-form article rendered from Markdown.
type BlogPost struct {
	ID        int64    `json:"id"`
	Slug      string   `json:"slug" validate:"required"`
	Title     string   `json:"title" validate:"required"`
	Author    string   `json:"author"`
	Date      string   `json:"date" validate:"required"`
	Tags      []string `json:"tags"`
	Summary   string   `json:"summary"`
	Content   string   `json:"content"`
	ImageURL  string   `json:"image_url"`
	Published bool     `json:"published"`
	Link      string   `json:"link"`
}

// SuccessStory is a beneficiary testimonial.
type SuccessStory struct {
	ID       int64  `json:"id"`
	Name     string `json:"name" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Story    string `json:"story" validate:"required"`
	Program  string `json:"program"`
	ImageURL string `json:"image_url"`
	Featured bool   `json:"featured"`
}

// TeamMember is a staff or board member on the about page.
type TeamMember struct {
	ID        int64  `json:"id"`
	Name      string `json:"name" validate:"required"`
	Role      string `json:"role" validate:"required"`
	Bio       string `json:"bio"`
	ImageURL  string `json:"image_url"`
	SortOrder int    `json:"sort_order"`
}

// GalleryItem is an uploaded photo with its metadata.
type GalleryItem struct {
	ID          int64  `json:"id"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Filename    string `json:"filename"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Size        int    `json:"size"`
	UploadedAt  string `json:"uploaded_at"`
}

// URL returns the public path of the image.
func (g GalleryItem) URL() string {
	if g.Filename == "" {
		return ""
	}
	return "/public/" + uploadsSubdir + "/" + g.Filename
}

// ImpactStat is a headline number on the impact page, e.g. "12,000+ meals".
type ImpactStat struct {
	ID        int64   `json:"id"`
	Label     string  `json:"label" validate:"required"`
	Value     float64 `json:"value"`
	Suffix    string  `json:"suffix"`
	SortOrder int     `json:"sort_order"`
}

// ContactInfo is the organization's contact block. There is only one.
type ContactInfo struct {
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	Hours   string `json:"hours"`
}

// ContactMessage is a submission from the public contact form.
type ContactMessage struct {
	ID        int64  `json:"id"`
	Name      string `json:"name" validate:"required,max=200"`
	Email     string `json:"email" validate:"required,email"`
	Subject   string `json:"subject" validate:"max=300"`
	Message   string `json:"message" validate:"required,max=5000"`
	CreatedAt string `json:"created_at"`
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// TableInfo describes a table for the database browser.
type TableInfo struct {
	Name string `json:"name"`
	Rows int64  `json:"rows"`
}

// TablePage is one page of raw rows from the database browser.
type TablePage struct {
	Table   string           `json:"table"`
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
	Total   int64            `json:"total"`
}

// Overview holds record counts for the admin dashboard.
type Overview struct {
	News     int64 `json:"news"`
	Blog     int64 `json:"blog"`
	Stories  int64 `json:"stories"`
	Team     int64 `json:"team"`
	Gallery  int64 `json:"gallery"`
	Stats    int64 `json:"stats"`
	Messages int64 `json:"messages"`
	Content  int64 `json:"content"`
}
