package bizsite

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/digitalbiztech/bizsite/content"
)

func (a *App) setupRoutes() {
	e := a.Echo

	e.StaticFS("/static", echo.MustSubFS(StaticAssets, "static"))
	e.GET("/favicon.ico", func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, "/static/favicon.svg")
	})
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/healthz", a.handleHealth)
	if a.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(a.Metrics.Handler()))
	}
	e.GET("/uploads/:name", a.handleUpload)

	// Public pages
	e.GET("/", a.handleHome)
	e.GET("/services/", a.handleServices)
	e.GET("/services/:slug/", a.handleService)
	e.GET("/products/", a.handleProducts)
	e.GET("/case-studies/", a.handleCaseStudies)
	e.GET("/case-studies/:slug/", a.handleCaseStudy)
	e.GET("/blog/", a.handleBlog)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/careers/", a.handleCareers)
	e.GET("/about/", a.handleAbout)
	e.GET("/contact/", a.handleContact)
	e.POST("/contact/", a.handleContactSubmit)
	e.GET("/legal/:type/", a.handleLegal)

	// Admin
	e.GET("/admin/login/", a.handleAdminLoginForm)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)

	g := e.Group("/admin", requireAdmin)
	g.GET("/", a.handleAdminDashboard)
	for _, m := range a.managers {
		p := "/" + m.Kind().Path()
		g.GET(p+"/", m.list)
		g.GET(p+"/new/", m.create)
		g.GET(p+"/edit/:key/", m.edit)
		g.POST(p+"/save/", m.save)
		g.POST(p+"/delete/:key/", m.remove)
		g.POST(p+"/move/:key/", m.move)
		g.POST(p+"/reset/", m.reset)
		g.GET(p+"/export/", m.export)
		g.POST(p+"/import/", m.importJSON)
	}

	g.GET("/legal-docs/", a.handleAdminLegal)
	g.POST("/legal-docs/upload/", a.handleLegalUpload)
	g.POST("/legal-docs/delete/:type/", a.handleLegalDelete)
	g.GET("/legal-docs/export/", func(c echo.Context) error {
		return exportCollection(c, a.Content, content.KindLegalDocs)
	})

	g.GET("/media/", a.handleAdminMedia)
	g.POST("/media/upload/", a.handleMediaUpload)
	g.POST("/media/delete/:name/", a.handleMediaDelete)

	g.GET("/inquiries/", a.handleAdminInquiries)
	g.POST("/inquiries/:id/read/", a.handleInquiryRead)
	g.POST("/inquiries/:id/delete/", a.handleInquiryDelete)
}
