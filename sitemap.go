package bizsite

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/digitalbiztech/bizsite/content"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

var staticPages = []string{"services", "products", "case-studies", "blog", "careers", "about", "contact"}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	services, err := content.List[content.Service](ctx, a.Content, content.KindServices)
	if err != nil {
		return err
	}
	studies, err := content.List[content.CaseStudy](ctx, a.Content, content.KindCaseStudies)
	if err != nil {
		return err
	}
	posts, err := a.Blog.ListPosts(ctx, "")
	if err != nil {
		return err
	}
	return a.renderSitemap(c, services, studies, posts)
}

func (a *App) renderSitemap(c echo.Context, services []content.Service, studies []content.CaseStudy, posts []content.Blog) error {
	base := a.Config.URL
	urls := []sitemapURL{{Loc: BuildURL(base)}}
	for _, p := range staticPages {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, p)})
	}
	for _, s := range services {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, "services", s.Slug)})
	}
	for _, cs := range studies {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, "case-studies", cs.Slug)})
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, "blog", p.Slug),
			LastMod: p.Date,
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
