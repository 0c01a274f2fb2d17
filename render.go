package bizsite

import (
	"html/template"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/digitalbiztech/bizsite/views"
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

func (a *App) site() views.Site {
	return views.Site{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Profile:     a.Profile,
		Year:        a.now().Year(),
	}
}

// page builds the shared part of a public page model. Every page carries
// the Organization JSON-LD block.
func (a *App) page(c echo.Context, title, description string) views.Page {
	site := a.site()
	path := c.Request().URL.Path
	return views.Page{
		Site: site,
		Meta: views.PageMeta{
			Title:       title,
			Description: description,
			URL:         BuildURL(a.Config.URL, path),
			OGType:      "website",
		},
		Path:   path,
		CSRF:   CsrfToken(c),
		JSONLD: []template.JS{views.OrganizationJSONLD(site)},
	}
}

func (a *App) renderNotFound(c echo.Context) error {
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(views.ErrorPage{Page: a.page(c, "Page not found", "")}))
}

func (a *App) adminPage(c echo.Context, title, active string) views.AdminPage {
	return views.AdminPage{
		Site:    a.site(),
		Title:   title,
		CSRF:    CsrfToken(c),
		Authed:  IsAdmin(c),
		Active:  active,
		Nav:     a.adminNav(),
		Flashes: popFlashes(c),
	}
}
