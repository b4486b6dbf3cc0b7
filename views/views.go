// Package views provides the default page components for sitecms. Each page
// is an html/template set (shared layout plus one page body) wrapped as a
// templ.Component, so a site can replace any page with its own templ code.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/shieldfoundation/sitecms"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{
		"home", "about", "programs", "impact", "gallery", "blog", "post",
		"contact", "login", "dashboard", "notfound", "error",
	} {
		pages[name] = template.Must(template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html"))
	}
}

// viewData is the template input. Pages read only the fields they need.
type viewData struct {
	sitecms.PageData

	News      []sitecms.NewsArticle
	Stats     []sitecms.ImpactStat
	Stories   []sitecms.SuccessStory
	Team      []sitecms.TeamMember
	Items     []sitecms.GalleryItem
	Posts     []sitecms.BlogPost
	Post      sitecms.BlogPost
	Related   []sitecms.BlogPost
	ActiveTag string
	Tags      []string
	Info      sitecms.ContactInfo
	Sent      bool
	Error     string
	ShowError bool
	Overview  sitecms.Overview
	Tables    []sitecms.TableInfo
	Docs      []string
}

func page(name string, v viewData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := pages[name]
		if !ok {
			return fmt.Errorf("views: unknown page %q", name)
		}
		return t.ExecuteTemplate(w, "layout", v)
	})
}

// Default returns the built-in page components.
func Default() sitecms.ViewFuncs {
	return sitecms.ViewFuncs{
		Home: func(d sitecms.PageData, news []sitecms.NewsArticle, stats []sitecms.ImpactStat, stories []sitecms.SuccessStory) templ.Component {
			return page("home", viewData{PageData: d, News: news, Stats: stats, Stories: stories})
		},
		About: func(d sitecms.PageData, team []sitecms.TeamMember) templ.Component {
			return page("about", viewData{PageData: d, Team: team})
		},
		Programs: func(d sitecms.PageData, stories []sitecms.SuccessStory) templ.Component {
			return page("programs", viewData{PageData: d, Stories: stories})
		},
		Impact: func(d sitecms.PageData, stats []sitecms.ImpactStat, stories []sitecms.SuccessStory) templ.Component {
			return page("impact", viewData{PageData: d, Stats: stats, Stories: stories})
		},
		Gallery: func(d sitecms.PageData, items []sitecms.GalleryItem) templ.Component {
			return page("gallery", viewData{PageData: d, Items: items})
		},
		Blog: func(d sitecms.PageData, posts []sitecms.BlogPost, activeTag string, tags []string) templ.Component {
			return page("blog", viewData{PageData: d, Posts: posts, ActiveTag: activeTag, Tags: tags})
		},
		Post: func(d sitecms.PageData, post sitecms.BlogPost, related []sitecms.BlogPost) templ.Component {
			return page("post", viewData{PageData: d, Post: post, Related: related})
		},
		Contact: func(d sitecms.PageData, info sitecms.ContactInfo, sent bool, errMsg string) templ.Component {
			return page("contact", viewData{PageData: d, Info: info, Sent: sent, Error: errMsg})
		},
		AdminLogin: func(d sitecms.PageData, showError bool) templ.Component {
			return page("login", viewData{PageData: d, ShowError: showError})
		},
		AdminDashboard: func(d sitecms.PageData, ov sitecms.Overview, tables []sitecms.TableInfo, docs []string) templ.Component {
			return page("dashboard", viewData{PageData: d, Overview: ov, Tables: tables, Docs: docs})
		},
		NotFound: func(d sitecms.PageData) templ.Component {
			return page("notfound", viewData{PageData: d})
		},
		ServerError: func(d sitecms.PageData) templ.Component {
			return page("error", viewData{PageData: d})
		},
	}
}
