// Package views renders the public site and the admin panel. Pages are
// html/template files embedded in the binary and exposed as templ components,
// so handlers render them the same way as hand-written templ code.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"

	"github.com/digitalbiztech/bizsite/markdown"
)

//go:embed templates
var templateFS embed.FS

var funcs = template.FuncMap{
	"markdown":    markdown.HTML,
	"formatDate":  FormatDate,
	"title":       Title,
	"pathEscape":  PathEscape,
	"categoryURL": CategoryURL,
	"lower":       strings.ToLower,
	"join":        strings.Join,
	"comma":       func(n int) string { return humanize.Comma(int64(n)) },
	"hasPrefix":   strings.HasPrefix,
	"active": func(current, prefix string) bool {
		if prefix == "/" {
			return current == "/"
		}
		return strings.HasPrefix(current, prefix)
	},
	"excerpt": func(s string, n int) string {
		r := []rune(strings.TrimSpace(s))
		if len(r) <= n {
			return string(r)
		}
		return strings.TrimSpace(string(r[:n])) + "…"
	},
}

var pages = mustParse()

// mustParse builds one template set per page. Each set holds the layouts,
// the shared partials and the page itself, whose body calls into a layout.
func mustParse() map[string]*template.Template {
	shared := []string{"templates/layouts/*.html", "templates/partials/*.html"}
	files, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		panic(err)
	}
	admin, err := fs.Glob(templateFS, "templates/admin/*.html")
	if err != nil {
		panic(err)
	}
	out := make(map[string]*template.Template, len(files)+len(admin))
	for _, f := range append(files, admin...) {
		name := strings.TrimSuffix(path.Base(f), ".html")
		t := template.New(path.Base(f)).Funcs(funcs)
		t = template.Must(t.ParseFS(templateFS, append(shared, f)...))
		out[name] = t
	}
	return out
}

func page(name string, data any) templ.Component {
	t, ok := pages[name]
	if !ok {
		panic(fmt.Sprintf("views: unknown page %q", name))
	}
	return templ.FromGoHTML(t, data)
}

func Home(p HomePage) templ.Component { return page("home", p) }
func Services(p ServicesPage) templ.Component { return page("services", p) }
func Service(p ServicePage) templ.Component { return page("service", p) }
func Products(p ProductsPage) templ.Component { return page("products", p) }
func CaseStudies(p CaseStudiesPage) templ.Component { return page("case_studies", p) }
func CaseStudy(p CaseStudyPage) templ.Component { return page("case_study", p) }
func Blog(p BlogPage) templ.Component { return page("blog", p) }
func Post(p PostPage) templ.Component { return page("post", p) }
func Careers(p CareersPage) templ.Component { return page("careers", p) }
func About(p AboutPage) templ.Component { return page("about", p) }
func Contact(p ContactPage) templ.Component { return page("contact", p) }
func NotFound(p ErrorPage) templ.Component { return page("not_found", p) }
func ServerError(p ErrorPage) templ.Component { return page("server_error", p) }

func AdminLogin(p LoginPage) templ.Component { return page("admin_login", p) }
func AdminDashboard(p DashboardPage) templ.Component { return page("admin_dashboard", p) }
func AdminList(p ManagerListPage) templ.Component { return page("admin_list", p) }
func AdminForm(p ManagerFormPage) templ.Component { return page("admin_form", p) }
func AdminLegalDocs(p LegalDocsPage) templ.Component { return page("admin_legal", p) }
func AdminMedia(p MediaPage) templ.Component { return page("admin_media", p) }
func AdminInquiries(p InquiriesPage) templ.Component { return page("admin_inquiries", p) }
