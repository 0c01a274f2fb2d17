package views

import (
	"html/template"

	"github.com/digitalbiztech/bizsite/content"
)

// Site holds site-wide settings and company copy shared by every page.
type Site struct {
	Name        string
	URL         string
	Description string
	Profile     *content.Profile
	Year        int
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}

// Page is embedded in every public page model.
type Page struct {
	Site   Site
	Meta   PageMeta
	Path   string
	CSRF   string
	JSONLD []template.JS
}

type HomePage struct {
	Page
	Services    []content.Service
	CaseStudies []content.CaseStudy
	Posts       []content.Blog
	Clients     []content.Client
}

type ServicesPage struct {
	Page
	Services []content.Service
}

type ServicePage struct {
	Page
	Service content.Service
	Others  []content.Service
}

type ProductsPage struct {
	Page
	Products []content.Product
}

type CaseStudiesPage struct {
	Page
	CaseStudies []content.CaseStudy
}

type CaseStudyPage struct {
	Page
	CaseStudy content.CaseStudy
	More      []content.CaseStudy
}

type BlogPage struct {
	Page
	Posts      []content.Blog
	Categories []string
	Active     string
}

type PostPage struct {
	Page
	Post    content.Blog
	Body    template.HTML
	Related []content.Blog
}

type CareersPage struct {
	Page
	Careers []content.Career
}

type AboutPage struct {
	Page
	Team []content.TeamMember
}

// ContactForm is the submitted or blank contact form.
type ContactForm struct {
	Name    string
	Email   string
	Company string
	Message string
}

type ContactPage struct {
	Page
	Form   ContactForm
	Errors map[string]string
	Sent   bool
}

type ErrorPage struct {
	Page
}

// Flash is a one-shot admin notification.
type Flash struct {
	Kind    string // "success" or "error"
	Message string
}

// AdminNavItem is a sidebar link.
type AdminNavItem struct {
	Label string
	Href  string
}

// AdminPage is embedded in every admin page model.
type AdminPage struct {
	Site    Site
	Title   string
	CSRF    string
	Authed  bool
	Active  string
	Nav     []AdminNavItem
	Flashes []Flash
}

type LoginPage struct {
	AdminPage
	Error string
}

// CollectionSummary is one row of the dashboard.
type CollectionSummary struct {
	Label  string
	Path   string
	Count  int
	Source string
	CanAdd bool
}

type DashboardPage struct {
	AdminPage
	Collections     []CollectionSummary
	UnreadInquiries int
	MediaCount      int
}

type ManagerRow struct {
	Key   string
	Cells []string
	First bool
	Last  bool
}

type ManagerListPage struct {
	AdminPage
	Label   string
	Path    string
	Source  string
	Columns []string
	Rows    []ManagerRow
}

// FormField describes one input on a manager form. Type is one of text,
// textarea, markdown, date, url, email, select, lines or image.
type FormField struct {
	Name        string
	Label       string
	Type        string
	Value       string
	Options     []string
	Required    bool
	Placeholder string
	Help        string
}

type ManagerFormPage struct {
	AdminPage
	Label       string
	Path        string
	OriginalKey string
	IsNew       bool
	Fields      []FormField
	Multipart   bool
}

type LegalDocRow struct {
	Type  string
	Title string
	Doc   *content.LegalDoc
}

type LegalDocsPage struct {
	AdminPage
	Docs []LegalDocRow
}

type MediaItem struct {
	Name       string
	URL        string
	Type       string
	Size       string
	Uploaded   string
	Dimensions string
	IsImage    bool
}

type MediaPage struct {
	AdminPage
	Items []MediaItem
}

type InquiryRow struct {
	ID       int64
	Name     string
	Email    string
	Company  string
	Message  string
	Received string
	Read     bool
}

type InquiriesPage struct {
	AdminPage
	Inquiries []InquiryRow
	Unread    int
}
