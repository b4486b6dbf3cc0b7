package sitecms

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"
)

// publicPages are the static routes listed in the sitemap after the home page.
var publicPages = []string{"about", "programs", "impact", "gallery", "blog", "contact"}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
}

func buildSitemap(base string, posts []BlogPost) sitemapURLSet {
	urls := []sitemapURL{{Loc: BuildURL(base), ChangeFreq: "weekly"}}
	for _, p := range publicPages {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, p), ChangeFreq: "monthly"})
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, "blog", p.Slug),
			LastMod: p.Date,
		})
	}
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
}

func (a *App) renderSitemap(c echo.Context, posts []BlogPost) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(buildSitemap(a.Config.URL, posts))
}
