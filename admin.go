package sitecms

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(a.pageData(c, "Admin", ""), false))
	}
	ctx := c.Request().Context()
	ov, err := a.Store.Counts(ctx)
	if err != nil {
		return err
	}
	tables, err := a.Store.ListTables()
	if err != nil {
		return err
	}
	docs, err := a.Store.ListDocuments(ctx)
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(a.pageData(c, "Admin", ""), ov, tables, docs))
}

// checkPassword compares in constant time and applies the per-IP login limit.
func (a *App) checkPassword(ip, pass string) (ok, limited bool) {
	if !a.loginLimiter.Check(ip) {
		return false, true
	}
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		a.loginLimiter.Reset(ip)
		return true, false
	}
	a.loginLimiter.Record(ip)
	a.Logger.Warn("failed admin login", zap.String("ip", ip))
	return false, false
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ok, limited := a.checkPassword(c.RealIP(), c.FormValue("password"))
	if limited {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	if !ok {
		return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(a.pageData(c, "Admin", ""), true))
	}
	if err := setAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminLogout(c echo.Context) error {
	if sid, ok := cookieSessionID(c); ok {
		a.Sessions.End(sid)
	}
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}
