package sitecms

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// pageData builds the template input for the current request. A failure to
// load the site document degrades to an empty one so pages still render.
func (a *App) pageData(c echo.Context, title, description string) PageData {
	site, err := a.Cache.Site()
	if err != nil {
		a.Logger.Warn("load site content", zap.Error(err))
	}
	if description == "" {
		description = a.Config.Description
	}
	pageTitle := a.Config.Name
	if title != "" {
		pageTitle = title + " | " + a.Config.Name
	}
	return PageData{
		Site:    a.Config,
		Content: site,
		Meta: PageMeta{
			Title:       pageTitle,
			Description: description,
			URL:         BuildURL(a.Config.URL, c.Request().URL.Path),
			OGType:      "website",
		},
		Path:      c.Request().URL.Path,
		CsrfToken: CsrfToken(c),
	}
}

type apiErrorBody struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

// apiError writes err as a JSON error body using apiErrors.
func (a *App) apiError(c echo.Context, err error) error {
	info := apiErrors.Map(err)
	if info.Status >= http.StatusInternalServerError {
		a.Logger.Error("api error",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Int("status", info.Status),
			zap.Error(err))
	}
	body := apiErrorBody{Error: info.Message}
	if info.Status == http.StatusBadGateway {
		body.Retryable = true
	}
	return c.JSON(info.Status, body)
}

// jsonList writes items, encoding a nil slice as [] rather than null.
func jsonList[T any](c echo.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	return c.JSON(http.StatusOK, items)
}

// bindBody decodes only the request body. echo's Bind would also copy path
// parameters into map destinations.
func bindBody(c echo.Context, v any) error {
	return (&echo.DefaultBinder{}).BindBody(c, v)
}
