package bizsite

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/digitalbiztech/bizsite/content"
	"github.com/digitalbiztech/bizsite/views"
)

const (
	flashSuccess = "success"
	flashError   = "error"
)

// addFlash queues a message for the next admin page. Failures to save the
// session only lose the message.
func addFlash(c echo.Context, kind, msg string) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return
	}
	sess.AddFlash(kind + ":" + msg)
	_ = sess.Save(c.Request(), c.Response())
}

func popFlashes(c echo.Context) []views.Flash {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = sess.Save(c.Request(), c.Response())
	out := make([]views.Flash, 0, len(raw))
	for _, r := range raw {
		s, ok := r.(string)
		if !ok {
			continue
		}
		kind, msg, found := strings.Cut(s, ":")
		if !found {
			kind, msg = flashSuccess, s
		}
		out = append(out, views.Flash{Kind: kind, Message: msg})
	}
	return out
}

func (a *App) adminNav() []views.AdminNavItem {
	nav := []views.AdminNavItem{{Label: "Dashboard", Href: "/admin/"}}
	for _, k := range content.Kinds {
		nav = append(nav, views.AdminNavItem{Label: k.Label(), Href: adminPath(k)})
	}
	return append(nav,
		views.AdminNavItem{Label: "Media", Href: "/admin/media/"},
		views.AdminNavItem{Label: "Inquiries", Href: "/admin/inquiries/"},
	)
}

func adminPath(k content.Kind) string {
	return "/admin/" + k.Path() + "/"
}

func (a *App) renderLogin(c echo.Context, code int, msg string) error {
	return RenderStatus(c, code, a.Views.AdminLogin(views.LoginPage{
		AdminPage: a.adminPage(c, "Login", ""),
		Error:     msg,
	}))
}

func (a *App) handleAdminLoginForm(c echo.Context) error {
	if IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return a.renderLogin(c, http.StatusOK, "")
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return a.renderLogin(c, http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		a.Logger.Info("admin login", zap.String("ip", ip))
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	if a.Metrics != nil {
		a.Metrics.LoginFailed()
	}
	a.Logger.Warn("admin login failed", zap.String("ip", ip))
	return a.renderLogin(c, http.StatusUnauthorized, "Invalid password")
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/login/")
}

func (a *App) handleAdminDashboard(c echo.Context) error {
	ctx := c.Request().Context()
	summaries := make([]views.CollectionSummary, 0, len(content.Kinds))
	for _, k := range content.Kinds {
		n, err := a.Content.Count(ctx, k)
		if err != nil {
			return err
		}
		src, err := a.Content.Source(ctx, k)
		if err != nil {
			return err
		}
		summaries = append(summaries, views.CollectionSummary{
			Label:  k.Label(),
			Path:   adminPath(k),
			Count:  n,
			Source: string(src),
			CanAdd: k != content.KindLegalDocs,
		})
	}
	unread, err := a.Inquiries.CountUnread(ctx)
	if err != nil {
		return err
	}
	objects, err := a.Media.List(ctx)
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(views.DashboardPage{
		AdminPage:       a.adminPage(c, "Dashboard", "/admin/"),
		Collections:     summaries,
		UnreadInquiries: unread,
		MediaCount:      len(objects),
	}))
}
