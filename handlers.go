package sitecms

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const maxHomeNews = 3

func (a *App) handleHome(c echo.Context) error {
	news, err := a.Cache.ListNews()
	if err != nil {
		return err
	}
	if len(news) > maxHomeNews {
		news = news[:maxHomeNews]
	}
	stats, err := a.Store.ListStats()
	if err != nil {
		return err
	}
	stories, err := a.Store.ListStories()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(a.pageData(c, "", ""), news, stats, featuredStories(stories)))
}

func (a *App) handleAbout(c echo.Context) error {
	team, err := a.Store.ListTeam()
	if err != nil {
		return err
	}
	return Render(c, a.Views.About(a.pageData(c, "About", ""), team))
}

func (a *App) handlePrograms(c echo.Context) error {
	stories, err := a.Store.ListStories()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Programs(a.pageData(c, "Programs", ""), stories))
}

func (a *App) handleImpact(c echo.Context) error {
	stats, err := a.Store.ListStats()
	if err != nil {
		return err
	}
	stories, err := a.Store.ListStories()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Impact(a.pageData(c, "Impact", ""), stats, stories))
}

func (a *App) handleGallery(c echo.Context) error {
	items, err := a.Store.ListGallery()
	if err != nil {
		return err
	}
	if cat := strings.TrimSpace(c.QueryParam("category")); cat != "" {
		var filtered []GalleryItem
		for _, it := range items {
			if strings.EqualFold(it.Category, cat) {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}
	return Render(c, a.Views.Gallery(a.pageData(c, "Gallery", ""), items))
}

func (a *App) handleBlog(c echo.Context) error {
	tag := c.QueryParam("tag")
	posts, err := a.Cache.ListPosts(tag)
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Blog(a.pageData(c, "Blog", ""), posts, tag, tags))
}

func (a *App) handlePost(c echo.Context) error {
	post, err := a.Cache.GetPost(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.pageData(c, "Not found", "")))
		}
		return err
	}
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	d := a.pageData(c, post.Title, post.Summary)
	d.Meta.OGType = "article"
	return Render(c, a.Views.Post(d, post, FilterRelatedPosts(post, posts)))
}

func (a *App) handleContact(c echo.Context) error {
	info, err := a.Store.GetContactInfo()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Contact(a.pageData(c, "Contact", ""), info, c.QueryParam("sent") == "1", ""))
}

func (a *App) handleContactSubmit(c echo.Context) error {
	info, err := a.Store.GetContactInfo()
	if err != nil {
		return err
	}
	d := a.pageData(c, "Contact", "")
	if !a.contactLimiter.Allow(c.RealIP()) {
		return RenderStatus(c, http.StatusTooManyRequests,
			a.Views.Contact(d, info, false, "Too many messages. Please try again later."))
	}
	msg := ContactMessage{
		Name:    strings.TrimSpace(c.FormValue("name")),
		Email:   strings.TrimSpace(c.FormValue("email")),
		Subject: strings.TrimSpace(c.FormValue("subject")),
		Message: strings.TrimSpace(c.FormValue("message")),
	}
	if err := Validate(msg); err != nil {
		return RenderStatus(c, http.StatusBadRequest,
			a.Views.Contact(d, info, false, "Please fill in your name, a valid email and a message."))
	}
	if err := a.Store.SaveMessage(&msg); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/contact/?sent=1")
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nDisallow: /admin/\nDisallow: /api/admin/\nSitemap: " +
		strings.TrimRight(a.Config.URL, "/") + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func featuredStories(stories []SuccessStory) []SuccessStory {
	var out []SuccessStory
	for _, s := range stories {
		if s.Featured {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return stories
	}
	return out
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg, ok := he.Message.(string)
			if !ok {
				msg = http.StatusText(he.Code)
			}
			_ = c.JSON(he.Code, apiErrorBody{Error: msg})
			return
		}
		_ = a.apiError(c, err)
		return
	}

	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.pageData(c, "Not found", "")))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err))
		_ = RenderStatus(c, code, a.Views.ServerError(a.pageData(c, "Error", "")))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
