package bizsite

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/digitalbiztech/bizsite/content"
	"github.com/digitalbiztech/bizsite/views"
)

const (
	homeCaseStudies = 3
	homePosts       = 3
	relatedCount    = 3
)

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	services, err := content.List[content.Service](ctx, a.Content, content.KindServices)
	if err != nil {
		return err
	}
	cases, err := content.List[content.CaseStudy](ctx, a.Content, content.KindCaseStudies)
	if err != nil {
		return err
	}
	posts, err := a.Blog.ListPosts(ctx, "")
	if err != nil {
		return err
	}
	clients, err := content.List[content.Client](ctx, a.Content, content.KindClients)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(views.HomePage{
		Page:        a.page(c, "", a.Profile.Tagline),
		Services:    services,
		CaseStudies: head(cases, homeCaseStudies),
		Posts:       head(posts, homePosts),
		Clients:     clients,
	}))
}

func (a *App) handleServices(c echo.Context) error {
	services, err := content.List[content.Service](c.Request().Context(), a.Content, content.KindServices)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Services(views.ServicesPage{
		Page:     a.page(c, "Services", "Consulting services across Salesforce, AI, SAP and data engineering."),
		Services: services,
	}))
}

func (a *App) handleService(c echo.Context) error {
	services, err := content.List[content.Service](c.Request().Context(), a.Content, content.KindServices)
	if err != nil {
		return err
	}
	svc, ok := content.Find(services, param(c, "slug"))
	if !ok {
		return a.renderNotFound(c)
	}
	p := a.page(c, svc.Title, svc.Description)
	p.JSONLD = append(p.JSONLD, views.ServiceJSONLD(p.Site, svc))
	return Render(c, a.Views.Service(views.ServicePage{
		Page:    p,
		Service: svc,
		Others:  head(content.Remove(services, svc.Slug), relatedCount),
	}))
}

func (a *App) handleProducts(c echo.Context) error {
	products, err := content.List[content.Product](c.Request().Context(), a.Content, content.KindProducts)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Products(views.ProductsPage{
		Page:     a.page(c, "Products", "Software products built and run by our team."),
		Products: products,
	}))
}

func (a *App) handleCaseStudies(c echo.Context) error {
	cases, err := content.List[content.CaseStudy](c.Request().Context(), a.Content, content.KindCaseStudies)
	if err != nil {
		return err
	}
	return Render(c, a.Views.CaseStudies(views.CaseStudiesPage{
		Page:        a.page(c, "Case Studies", "How we helped clients deliver measurable results."),
		CaseStudies: cases,
	}))
}

func (a *App) handleCaseStudy(c echo.Context) error {
	cases, err := content.List[content.CaseStudy](c.Request().Context(), a.Content, content.KindCaseStudies)
	if err != nil {
		return err
	}
	cs, ok := content.Find(cases, param(c, "slug"))
	if !ok {
		return a.renderNotFound(c)
	}
	p := a.page(c, cs.Title, excerpt(cs.Challenge, 160))
	p.Meta.OGType = "article"
	p.Meta.Image = absolute(a.Config.URL, cs.Image)
	return Render(c, a.Views.CaseStudy(views.CaseStudyPage{
		Page:      p,
		CaseStudy: cs,
		More:      head(content.Remove(cases, cs.Slug), relatedCount),
	}))
}

func (a *App) handleBlog(c echo.Context) error {
	ctx := c.Request().Context()
	category := strings.TrimSpace(c.QueryParam("category"))
	if strings.EqualFold(category, "All") {
		category = ""
	}
	posts, err := a.Blog.ListPosts(ctx, category)
	if err != nil {
		return err
	}
	used, err := a.Blog.Categories(ctx)
	if err != nil {
		return err
	}
	title := "Blog"
	if category != "" {
		title = category + " articles"
	}
	return Render(c, a.Views.Blog(views.BlogPage{
		Page:       a.page(c, title, "Insights on enterprise technology from our team."),
		Posts:      posts,
		Categories: mergeCategories(a.Profile.BlogCategories, used),
		Active:     category,
	}))
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := a.Blog.GetPost(ctx, param(c, "slug"))
	if errors.Is(err, ErrNotFound) {
		return a.renderNotFound(c)
	}
	if err != nil {
		return err
	}
	related, err := a.Blog.Related(ctx, post, relatedCount)
	if err != nil {
		return err
	}
	p := a.page(c, post.Title, post.Excerpt)
	p.Meta.OGType = "article"
	p.Meta.Image = absolute(a.Config.URL, post.Image)
	p.JSONLD = append(p.JSONLD, views.BlogPostingJSONLD(p.Site, post))
	return Render(c, a.Views.Post(views.PostPage{
		Page:    p,
		Post:    post,
		Body:    a.Blog.Body(post),
		Related: related,
	}))
}

func (a *App) handleCareers(c echo.Context) error {
	careers, err := content.List[content.Career](c.Request().Context(), a.Content, content.KindCareers)
	if err != nil {
		return err
	}
	p := a.page(c, "Careers", "Open positions and life at "+a.Config.Name+".")
	p.JSONLD = append(p.JSONLD, views.JobPostingsJSONLD(p.Site, careers)...)
	return Render(c, a.Views.Careers(views.CareersPage{Page: p, Careers: careers}))
}

func (a *App) handleAbout(c echo.Context) error {
	team, err := content.List[content.TeamMember](c.Request().Context(), a.Content, content.KindTeam)
	if err != nil {
		return err
	}
	return Render(c, a.Views.About(views.AboutPage{
		Page: a.page(c, "About", a.Profile.Tagline),
		Team: team,
	}))
}

// handleLegal redirects to the uploaded PDF for a legal document type.
func (a *App) handleLegal(c echo.Context) error {
	t, err := content.ParseLegalDocType(c.Param("type"))
	if err != nil {
		return a.renderNotFound(c)
	}
	docs, err := content.List[content.LegalDoc](c.Request().Context(), a.Content, content.KindLegalDocs)
	if err != nil {
		return err
	}
	doc, ok := content.Find(docs, string(t))
	if !ok || doc.FileURL == "" {
		return a.renderNotFound(c)
	}
	return c.Redirect(http.StatusFound, doc.FileURL)
}

func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /admin/\n\nSitemap: %s/sitemap.xml\n", a.Config.URL)
	return c.String(http.StatusOK, body)
}

func (a *App) handleHealth(c echo.Context) error {
	if err := a.DB.PingContext(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = a.renderNotFound(c)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error",
			zap.Error(err),
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI))
		_ = RenderStatus(c, code, a.Views.ServerError(views.ErrorPage{Page: a.page(c, "Server error", "")}))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// mergeCategories lists the configured categories first, then any others
// used by posts.
func mergeCategories(configured, used []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range [][]string{configured, used} {
		for _, c := range list {
			key := normalizeCategory(c)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

func absolute(base, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(ref, "/")
}

func excerpt(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
