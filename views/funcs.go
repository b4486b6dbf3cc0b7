package views

import (
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/shieldfoundation/sitecms"
	"github.com/shieldfoundation/sitecms/content"
	"github.com/shieldfoundation/sitecms/markdown"
)

var funcs = template.FuncMap{
	"content":  contentText,
	"markdown": markdownHTML,
	"number":   formatNumber,
	"date":     formatDate,
	"year":     func() int { return time.Now().Year() },
	"url":      sitecms.BuildURL,
	"joinTags": sitecms.JoinTags,
	"tagClass": tagClass,
	"navClass": navClass,
	"postLD": func(p sitecms.BlogPost, cfg sitecms.SiteConfig) template.JS {
		return template.JS(sitecms.BlogPostingJsonLD(p, cfg))
	},
	"orgLD": func(cfg sitecms.SiteConfig, info sitecms.ContactInfo) template.JS {
		return template.JS(sitecms.OrganizationJsonLD(cfg, info))
	},
}

// contentText reads a site content field; missing fields render as "".
func contentText(doc content.Document, path string) string {
	return content.GetString(doc, path)
}

func markdownHTML(src string) template.HTML {
	out, err := markdown.Render(src)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(out)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatDate turns 2024-03-01 into "March 1, 2024". Unparseable input is
// returned as-is.
func formatDate(s string) string {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return s
	}
	return t.Format("January 2, 2006")
}

func tagClass(tag, active string) string {
	if strings.EqualFold(tag, active) {
		return "tag tag-active"
	}
	return "tag"
}

func navClass(current, prefix string) string {
	if prefix == "/" {
		if current == "/" {
			return "active"
		}
		return ""
	}
	if strings.HasPrefix(current, prefix) {
		return "active"
	}
	return ""
}
