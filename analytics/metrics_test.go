package analytics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36"

func setupEcho(t *testing.T) (*echo.Echo, *Metrics) {
	t.Helper()
	m, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/blog/:slug/", func(c echo.Context) error { return c.String(http.StatusOK, "post") })
	e.GET("/admin/", func(c echo.Context) error { return c.String(http.StatusOK, "admin") })
	e.GET("/boom/", func(c echo.Context) error { return echo.NewHTTPError(http.StatusBadRequest, "bad") })
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
	return e, m
}

func get(e *echo.Echo, path, ua string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("User-Agent", ua)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddlewareCountsRoutes(t *testing.T) {
	e, m := setupEcho(t)

	get(e, "/blog/one/", browserUA)
	get(e, "/blog/two/", browserUA)
	get(e, "/boom/", browserUA)
	get(e, "/nope/", browserUA)

	if got := testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/blog/:slug/", "200")); got != 2 {
		t.Errorf("blog requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/boom/", "400")); got != 1 {
		t.Errorf("error requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Errorf("unmatched requests = %v, want 1", got)
	}
}

func TestMiddlewarePageViewsAndBots(t *testing.T) {
	e, m := setupEcho(t)

	get(e, "/blog/one/", browserUA)
	get(e, "/blog/one/", "Mozilla/5.0 (compatible; Googlebot/2.1)")
	get(e, "/admin/", browserUA)

	if got := testutil.ToFloat64(m.pageViews.WithLabelValues("blog", "Desktop")); got != 1 {
		t.Errorf("blog page views = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.botVisits.WithLabelValues("Googlebot")); got != 1 {
		t.Errorf("googlebot visits = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.pageViews); got != 1 {
		t.Errorf("page view series = %d, want 1 (admin is not a page)", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	e, m := setupEcho(t)
	m.ContentSaved("blogs")
	m.Uploaded("image", 1024)
	m.InquiryReceived()

	rec := get(e, "/metrics", browserUA)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`bizsite_content_saves_total{kind="blogs"} 1`,
		`bizsite_upload_bytes_total{kind="image"} 1024`,
		`bizsite_inquiries_total 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
	if strings.Contains(body, `route="/metrics"`) {
		t.Error("/metrics should not count itself")
	}
}

func TestNewMetricsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewMetrics(reg); err != nil {
		t.Fatal(err)
	}
	if _, err := NewMetrics(reg); err == nil {
		t.Error("expected error registering twice on one registry")
	}
}
