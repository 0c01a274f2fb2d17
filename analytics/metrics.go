package analytics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the site's Prometheus collectors.
type Metrics struct {
	gatherer prometheus.Gatherer

	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	pageViews       *prometheus.CounterVec
	botVisits       *prometheus.CounterVec
	contentSaves    *prometheus.CounterVec
	uploads         *prometheus.CounterVec
	uploadBytes     *prometheus.CounterVec
	inquiries       prometheus.Counter
	loginFailures   prometheus.Counter
}

// NewMetrics registers the collectors on reg. When reg is nil a fresh
// registry with the Go and process collectors is used.
func NewMetrics(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	m := &Metrics{
		gatherer: reg,
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		pageViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bizsite_page_views_total",
			Help: "Public page views by section and device.",
		}, []string{"section", "device"}),
		botVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bizsite_bot_visits_total",
			Help: "Public page requests from crawlers by bot name.",
		}, []string{"bot"}),
		contentSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bizsite_content_saves_total",
			Help: "Content collection writes by kind.",
		}, []string{"kind"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bizsite_uploads_total",
			Help: "Stored uploads by kind.",
		}, []string{"kind"}),
		uploadBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bizsite_upload_bytes_total",
			Help: "Bytes stored by uploads.",
		}, []string{"kind"}),
		inquiries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bizsite_inquiries_total",
			Help: "Contact form submissions stored.",
		}),
		loginFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bizsite_admin_login_failures_total",
			Help: "Rejected admin login attempts.",
		}),
	}
	for _, c := range []prometheus.Collector{
		m.requestCount, m.requestDuration, m.pageViews, m.botVisits,
		m.contentSaves, m.uploads, m.uploadBytes, m.inquiries, m.loginFailures,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ContentSaved(kind string) {
	m.contentSaves.WithLabelValues(kind).Inc()
}

func (m *Metrics) Uploaded(kind string, size int64) {
	m.uploads.WithLabelValues(kind).Inc()
	m.uploadBytes.WithLabelValues(kind).Add(float64(size))
}

func (m *Metrics) InquiryReceived() { m.inquiries.Inc() }

func (m *Metrics) LoginFailed() { m.loginFailures.Inc() }

// Middleware records request counts and latency per route, plus page views
// and bot visits for successful public GETs.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.URL.Path == "/metrics" {
				return next(c)
			}
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}
			route := c.Path()
			if route == "" || status == http.StatusNotFound {
				route = "unmatched"
			}
			m.requestCount.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
			m.requestDuration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())

			if req.Method == http.MethodGet && status == http.StatusOK {
				if section := Section(req.URL.Path); section != "" {
					m.recordView(section, req.UserAgent())
				}
			}
			return err
		}
	}
}

func (m *Metrics) recordView(section, ua string) {
	if IsBot(ua) {
		m.botVisits.WithLabelValues(ExtractBotName(ua)).Inc()
		return
	}
	_, _, device := ParseUserAgent(ua)
	m.pageViews.WithLabelValues(section, device).Inc()
}

// Section returns the top-level public section of path, "home" for "/",
// or "" for paths that are not pages.
func Section(path string) string {
	if path == "/" || path == "" {
		return "home"
	}
	first, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	switch first {
	case "services", "products", "case-studies", "blog", "careers", "about", "contact":
		return first
	}
	return ""
}
