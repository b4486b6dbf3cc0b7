package sitecms

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// --- public API ---

func (a *App) apiPublicContent(c echo.Context) error {
	name := c.Param("name")
	if !validDocumentName(name) {
		return a.apiError(c, ErrNotFound)
	}
	if name == SiteDocument {
		doc, err := a.Cache.Site()
		if err != nil {
			return a.apiError(c, err)
		}
		return c.JSON(http.StatusOK, doc)
	}
	doc, err := a.Store.LoadDocument(c.Request().Context(), name)
	if err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

func (a *App) apiPublicNews(c echo.Context) error {
	news, err := a.Cache.ListNews()
	if err != nil {
		return a.apiError(c, err)
	}
	return jsonList(c, news)
}

func (a *App) apiPublicBlog(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.QueryParam("tag"))
	if err != nil {
		return a.apiError(c, err)
	}
	return jsonList(c, posts)
}

func (a *App) apiPublicPost(c echo.Context) error {
	post, err := a.Cache.GetPost(c.Param("slug"))
	if err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) apiPublicStories(c echo.Context) error {
	stories, err := a.Store.ListStories()
	if err != nil {
		return a.apiError(c, err)
	}
	if c.QueryParam("featured") == "true" {
		stories = featuredStories(stories)
	}
	return jsonList(c, stories)
}

func (a *App) apiPublicTeam(c echo.Context) error {
	team, err := a.Store.ListTeam()
	if err != nil {
		return a.apiError(c, err)
	}
	return jsonList(c, team)
}

// galleryJSON adds the public image URL to a gallery item.
type galleryJSON struct {
	GalleryItem
	URL string `json:"url"`
}

func toGalleryJSON(items []GalleryItem) []galleryJSON {
	out := make([]galleryJSON, 0, len(items))
	for _, it := range items {
		out = append(out, galleryJSON{GalleryItem: it, URL: it.URL()})
	}
	return out
}

func (a *App) apiPublicGallery(c echo.Context) error {
	items, err := a.Store.ListGallery()
	if err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusOK, toGalleryJSON(items))
}

func (a *App) apiPublicStats(c echo.Context) error {
	stats, err := a.Store.ListStats()
	if err != nil {
		return a.apiError(c, err)
	}
	return jsonList(c, stats)
}

func (a *App) apiPublicContactInfo(c echo.Context) error {
	info, err := a.Store.GetContactInfo()
	if err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

func (a *App) apiContactSubmit(c echo.Context) error {
	if !a.contactLimiter.Allow(c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, apiErrorBody{Error: "too many messages, try again later"})
	}
	var msg ContactMessage
	if err := bindBody(c, &msg); err != nil {
		return a.apiError(c, errBadBody)
	}
	msg.ID = 0
	msg.CreatedAt = ""
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Subject = strings.TrimSpace(msg.Subject)
	msg.Message = strings.TrimSpace(msg.Message)
	if err := Validate(msg); err != nil {
		return a.apiError(c, err)
	}
	if err := a.Store.SaveMessage(&msg); err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"id": msg.ID, "status": "received"})
}

// --- auth ---

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (a *App) apiLogin(c echo.Context) error {
	var req loginRequest
	if err := bindBody(c, &req); err != nil {
		return a.apiError(c, errBadBody)
	}
	ok, limited := a.checkPassword(c.RealIP(), req.Password)
	if limited {
		return c.JSON(http.StatusTooManyRequests, apiErrorBody{Error: "too many login attempts"})
	}
	if !ok {
		return a.apiError(c, fmt.Errorf("%w: invalid password", ErrUnauthorized))
	}
	token, claims, err := a.Tokens.Issue()
	if err != nil {
		return a.apiError(c, err)
	}
	a.Logger.Info("admin login", zap.String("sid", claims.SessionID), zap.String("ip", c.RealIP()))
	return c.JSON(http.StatusOK, loginResponse{Token: token, ExpiresAt: claims.ExpiresAt.Time})
}

func (a *App) apiVerify(c echo.Context) error {
	resp := map[string]any{"valid": true, "session_id": editSessionID(c)}
	if claims, ok := c.Get(claimsKey).(*Claims); ok {
		resp["expires_at"] = claims.ExpiresAt.Time
	}
	return c.JSON(http.StatusOK, resp)
}

// apiLogout tears down the caller's editing session, discarding unsaved edits.
func (a *App) apiLogout(c echo.Context) error {
	a.Sessions.End(editSessionID(c))
	if claims, ok := c.Get(claimsKey).(*Claims); ok {
		a.Tokens.Revoke(claims)
	} else if err := clearAdminSession(c); err != nil {
		return a.apiError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// --- admin API ---

var errBadBody = fmt.Errorf("%w: malformed request body", ErrValidation)

// resource describes the CRUD operations of one record type.
type resource[T any] struct {
	list  func(c echo.Context) ([]T, error)
	get   func(id int64) (T, error)
	save  func(*T) error
	del   func(id int64) error
	setID func(*T, int64)

	// Optional hooks.
	prepare     func(*T) error
	merge       func(v *T, existing T)
	afterDelete func(T)
}

// all adapts a list function that takes no query parameters.
func all[T any](fn func() ([]T, error)) func(echo.Context) ([]T, error) {
	return func(echo.Context) ([]T, error) { return fn() }
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", ErrValidation, c.Param("id"))
	}
	return id, nil
}

// registerResource mounts list/create/get/update/delete routes for r at path.
func registerResource[T any](a *App, g *echo.Group, path string, r resource[T]) {
	g.GET(path, func(c echo.Context) error {
		items, err := r.list(c)
		if err != nil {
			return a.apiError(c, err)
		}
		return jsonList(c, items)
	})

	g.POST(path, func(c echo.Context) error {
		var v T
		if err := bindBody(c, &v); err != nil {
			return a.apiError(c, errBadBody)
		}
		r.setID(&v, 0)
		if err := r.store(a, &v); err != nil {
			return a.apiError(c, err)
		}
		return c.JSON(http.StatusCreated, v)
	})

	g.GET(path+"/:id", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return a.apiError(c, err)
		}
		v, err := r.get(id)
		if err != nil {
			return a.apiError(c, err)
		}
		return c.JSON(http.StatusOK, v)
	})

	g.PUT(path+"/:id", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return a.apiError(c, err)
		}
		existing, err := r.get(id)
		if err != nil {
			return a.apiError(c, err)
		}
		var v T
		if err := bindBody(c, &v); err != nil {
			return a.apiError(c, errBadBody)
		}
		r.setID(&v, id)
		if r.merge != nil {
			r.merge(&v, existing)
		}
		if err := r.store(a, &v); err != nil {
			return a.apiError(c, err)
		}
		return c.JSON(http.StatusOK, v)
	})

	g.DELETE(path+"/:id", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return a.apiError(c, err)
		}
		existing, err := r.get(id)
		if err != nil {
			return a.apiError(c, err)
		}
		if err := r.del(id); err != nil {
			return a.apiError(c, err)
		}
		a.Cache.Invalidate()
		if r.afterDelete != nil {
			r.afterDelete(existing)
		}
		return c.NoContent(http.StatusNoContent)
	})
}

// store runs the prepare, validate and save steps for rec.
func (r resource[T]) store(a *App, rec *T) error {
	if r.prepare != nil {
		if err := r.prepare(rec); err != nil {
			return err
		}
	}
	if err := Validate(rec); err != nil {
		return err
	}
	if err := r.save(rec); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return nil
}

func (a *App) registerAdminAPI(g *echo.Group) {
	s := a.Store

	registerResource(a, g, "/news", resource[NewsArticle]{
		list:  func(echo.Context) ([]NewsArticle, error) { return s.ListNews(true) },
		get:   s.GetNews,
		save:  s.SaveNews,
		del:   s.DeleteNews,
		setID: func(n *NewsArticle, id int64) { n.ID = id },
		prepare: func(n *NewsArticle) error {
			n.Title = strings.TrimSpace(n.Title)
			date, err := normalizeDate(n.Date, time.Now())
			n.Date = date
			return err
		},
	})

	registerResource(a, g, "/blog", resource[BlogPost]{
		list:    func(c echo.Context) ([]BlogPost, error) { return s.ListBlogPosts(c.QueryParam("tag"), true) },
		get:     s.GetBlogPost,
		save:    s.SaveBlogPost,
		del:     s.DeleteBlogPost,
		setID:   func(p *BlogPost, id int64) { p.ID = id },
		prepare: prepareBlogPost,
	})

	registerResource(a, g, "/stories", resource[SuccessStory]{
		list:  all(s.ListStories),
		get:   s.GetStory,
		save:  s.SaveStory,
		del:   s.DeleteStory,
		setID: func(st *SuccessStory, id int64) { st.ID = id },
	})

	registerResource(a, g, "/team", resource[TeamMember]{
		list:  all(s.ListTeam),
		get:   s.GetTeamMember,
		save:  s.SaveTeamMember,
		del:   s.DeleteTeamMember,
		setID: func(m *TeamMember, id int64) { m.ID = id },
	})

	g.POST("/gallery/upload", a.apiGalleryUpload)
	registerResource(a, g, "/gallery", resource[GalleryItem]{
		list:  all(s.ListGallery),
		get:   s.GetGalleryItem,
		save:  s.SaveGalleryItem,
		del:   s.DeleteGalleryItem,
		setID: func(it *GalleryItem, id int64) { it.ID = id },
		merge: func(v *GalleryItem, existing GalleryItem) {
			v.Filename = existing.Filename
			v.Width, v.Height, v.Size = existing.Width, existing.Height, existing.Size
			v.UploadedAt = existing.UploadedAt
		},
		afterDelete: a.removeUpload,
	})

	registerResource(a, g, "/stats", resource[ImpactStat]{
		list:  all(s.ListStats),
		get:   s.GetStat,
		save:  s.SaveStat,
		del:   s.DeleteStat,
		setID: func(st *ImpactStat, id int64) { st.ID = id },
	})

	g.GET("/contact-info", a.apiPublicContactInfo)
	g.PUT("/contact-info", a.apiSaveContactInfo)
	g.GET("/messages", a.apiListMessages)
	g.DELETE("/messages/:id", a.apiDeleteMessage)
	g.GET("/overview", a.apiOverview)
	g.GET("/db/tables", a.apiListTables)
	g.GET("/db/tables/:name", a.apiBrowseTable)
	g.GET("/analytics", a.apiAnalytics)

	a.registerContentAPI(g)
}

func prepareBlogPost(p *BlogPost) error {
	p.Title = strings.TrimSpace(p.Title)
	slug := Slugify(p.Slug)
	if slug == "" {
		slug = Slugify(p.Title)
	}
	if slug == "" {
		return fmt.Errorf("%w: slug is required, add a title or slug", ErrValidation)
	}
	p.Slug = slug
	date, err := normalizeDate(p.Date, time.Now())
	if err != nil {
		return err
	}
	p.Date = date
	p.Tags = FilterEmpty(p.Tags)
	return nil
}

func (a *App) apiSaveContactInfo(c echo.Context) error {
	var info ContactInfo
	if err := bindBody(c, &info); err != nil {
		return a.apiError(c, errBadBody)
	}
	if err := Validate(info); err != nil {
		return a.apiError(c, err)
	}
	if err := a.Store.SaveContactInfo(info); err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

func (a *App) apiListMessages(c echo.Context) error {
	msgs, err := a.Store.ListMessages()
	if err != nil {
		return a.apiError(c, err)
	}
	return jsonList(c, msgs)
}

func (a *App) apiDeleteMessage(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return a.apiError(c, err)
	}
	if err := a.Store.DeleteMessage(id); err != nil {
		return a.apiError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) apiOverview(c echo.Context) error {
	ov, err := a.Store.Counts(c.Request().Context())
	if err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusOK, ov)
}

func (a *App) apiListTables(c echo.Context) error {
	tables, err := a.Store.ListTables()
	if err != nil {
		return a.apiError(c, err)
	}
	return jsonList(c, tables)
}

func (a *App) apiBrowseTable(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	page, err := a.Store.BrowseTable(c.Param("name"), limit, offset)
	if err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

const maxAnalyticsDays = 365

func (a *App) apiAnalytics(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))
	if days <= 0 {
		days = 30
	}
	if days > maxAnalyticsDays {
		days = maxAnalyticsDays
	}
	now := time.Now()
	stats, err := a.Analytics.Store.GetStats(c.Request().Context(), now.AddDate(0, 0, -days), now.Add(time.Minute))
	if err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
