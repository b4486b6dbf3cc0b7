package sitecms

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/shieldfoundation/sitecms/content"
)

const maxDocumentName = 64

// validDocumentName accepts lowercase slugs such as "site" or "landing_v2".
func validDocumentName(name string) bool {
	if name == "" || len(name) > maxDocumentName {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

type stagedView struct {
	Name     string           `json:"name"`
	Document content.Document `json:"document"`
	Dirty    bool             `json:"dirty"`
	Paths    []string         `json:"paths"`
}

func newStagedView(st *content.Staging) stagedView {
	doc := st.Document()
	paths := content.Paths(doc)
	if paths == nil {
		paths = []string{}
	}
	return stagedView{Name: st.Name(), Document: doc, Dirty: st.Dirty(), Paths: paths}
}

type fieldRequest struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

type fieldView struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
	Dirty bool   `json:"dirty,omitempty"`
}

func (a *App) registerContentAPI(g *echo.Group) {
	g.GET("/content", a.apiListContent)
	g.GET("/content/:name", a.apiGetStaged)
	g.PUT("/content/:name", a.apiReplaceStaged)
	g.GET("/content/:name/field", a.apiGetField)
	g.PUT("/content/:name/field", a.apiSetField)
	g.POST("/content/:name/save", a.apiSaveStaged)
	g.POST("/content/:name/revert", a.apiRevertStaged)
}

// staged opens the caller's staging buffer for the :name document.
func (a *App) staged(c echo.Context) (*content.Staging, error) {
	name := c.Param("name")
	if !validDocumentName(name) {
		return nil, fmt.Errorf("%w: invalid document name %q", ErrValidation, name)
	}
	sess := a.Sessions.Get(editSessionID(c))
	return sess.Open(c.Request().Context(), name)
}

// apiListContent lists persisted documents plus any opened in this session.
func (a *App) apiListContent(c echo.Context) error {
	names, err := a.Store.ListDocuments(c.Request().Context())
	if err != nil {
		return a.apiError(c, err)
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	for _, n := range a.Sessions.Get(editSessionID(c)).Names() {
		if !seen[n] {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return jsonList(c, names)
}

func (a *App) apiGetStaged(c echo.Context) error {
	st, err := a.staged(c)
	if err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusOK, newStagedView(st))
}

func (a *App) apiReplaceStaged(c echo.Context) error {
	st, err := a.staged(c)
	if err != nil {
		return a.apiError(c, err)
	}
	var raw map[string]any
	if err := bindBody(c, &raw); err != nil {
		return a.apiError(c, errBadBody)
	}
	st.Replace(content.FromMap(raw))
	return c.JSON(http.StatusOK, newStagedView(st))
}

func (a *App) apiGetField(c echo.Context) error {
	path := c.QueryParam("path")
	if !content.ValidPath(path) {
		return a.apiError(c, fmt.Errorf("%w: %q", ErrInvalidPath, path))
	}
	st, err := a.staged(c)
	if err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusOK, fieldView{Path: path, Value: st.Get(path)})
}

func (a *App) apiSetField(c echo.Context) error {
	var req fieldRequest
	if err := bindBody(c, &req); err != nil {
		return a.apiError(c, errBadBody)
	}
	if !content.ValidPath(req.Path) {
		return a.apiError(c, fmt.Errorf("%w: %q", ErrInvalidPath, req.Path))
	}
	if !content.IsScalar(req.Value) {
		return a.apiError(c, fmt.Errorf("%w: value must be a string, number or boolean", ErrValidation))
	}
	st, err := a.staged(c)
	if err != nil {
		return a.apiError(c, err)
	}
	st.Set(req.Path, req.Value)
	return c.JSON(http.StatusOK, fieldView{Path: req.Path, Value: st.Get(req.Path), Dirty: st.Dirty()})
}

// apiSaveStaged persists the whole staged document. On failure the staged
// edits are kept and the client is told it may retry.
func (a *App) apiSaveStaged(c echo.Context) error {
	st, err := a.staged(c)
	if err != nil {
		return a.apiError(c, err)
	}
	if err := st.Commit(c.Request().Context(), a.contentBackend); err != nil {
		a.Logger.Warn("content save failed",
			zap.String("document", st.Name()),
			zap.String("sid", editSessionID(c)),
			zap.Error(err))
		return a.apiError(c, fmt.Errorf("%w: %v", ErrSaveFailed, err))
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusOK, newStagedView(st))
}

func (a *App) apiRevertStaged(c echo.Context) error {
	st, err := a.staged(c)
	if err != nil {
		return a.apiError(c, err)
	}
	st.Revert()
	return c.JSON(http.StatusOK, newStagedView(st))
}
