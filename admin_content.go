package bizsite

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/digitalbiztech/bizsite/content"
	"github.com/digitalbiztech/bizsite/media"
	"github.com/digitalbiztech/bizsite/views"
)

const maxImportSize = 5 << 20

// manager serves the admin pages for one content collection.
type manager interface {
	Kind() content.Kind
	list(c echo.Context) error
	create(c echo.Context) error
	edit(c echo.Context) error
	save(c echo.Context) error
	remove(c echo.Context) error
	move(c echo.Context) error
	reset(c echo.Context) error
	export(c echo.Context) error
	importJSON(c echo.Context) error
}

// field binds a form input to a string or string-list field of T.
type field[T any] struct {
	views.FormField
	str  func(*T) *string
	list func(*T) *[]string
}

func textField[T any](name, label, typ string, ptr func(*T) *string) field[T] {
	return field[T]{FormField: views.FormField{Name: name, Label: label, Type: typ}, str: ptr}
}

func linesField[T any](name, label string, ptr func(*T) *[]string) field[T] {
	return field[T]{
		FormField: views.FormField{Name: name, Label: label, Type: "lines", Help: "One item per line."},
		list:      ptr,
	}
}

func (f field[T]) required() field[T] {
	f.Required = true
	return f
}

func (f field[T]) help(s string) field[T] {
	f.Help = s
	return f
}

func (f field[T]) options(opts ...string) field[T] {
	f.Options = opts
	return f
}

func (f field[T]) get(item *T) string {
	if f.list != nil {
		return strings.Join(*f.list(item), "\n")
	}
	return *f.str(item)
}

func (f field[T]) set(item *T, v string) {
	if f.list != nil {
		*f.list(item) = splitLines(v)
		return
	}
	*f.str(item) = strings.TrimSpace(v)
}

// collection is the generic manager for records of type T.
type collection[T content.Record, PT content.Normalizer[T]] struct {
	app      *App
	kind     content.Kind
	singular string
	columns  []string
	cells    func(T) []string
	fields   func() []field[T]
}

func (m *collection[T, PT]) Kind() content.Kind { return m.kind }

func (m *collection[T, PT]) path() string { return adminPath(m.kind) }

func (m *collection[T, PT]) load(c echo.Context) ([]T, error) {
	return content.List[T](c.Request().Context(), m.app.Content, m.kind)
}

func (m *collection[T, PT]) list(c echo.Context) error {
	items, err := m.load(c)
	if err != nil {
		return err
	}
	src, err := m.app.Content.Source(c.Request().Context(), m.kind)
	if err != nil {
		return err
	}
	rows := make([]views.ManagerRow, len(items))
	for i, it := range items {
		rows[i] = views.ManagerRow{
			Key:   it.Key(),
			Cells: m.cells(it),
			First: i == 0,
			Last:  i == len(items)-1,
		}
	}
	return Render(c, m.app.Views.AdminList(views.ManagerListPage{
		AdminPage: m.app.adminPage(c, m.kind.Label(), m.path()),
		Label:     m.kind.Label(),
		Path:      m.path(),
		Source:    string(src),
		Columns:   m.columns,
		Rows:      rows,
	}))
}

func (m *collection[T, PT]) renderForm(c echo.Context, code int, item T, originalKey, errMsg string) error {
	fields := m.fields()
	out := make([]views.FormField, len(fields))
	multipart := false
	for i, f := range fields {
		ff := f.FormField
		ff.Value = f.get(&item)
		if ff.Type == "select" && ff.Value != "" && !slices.Contains(ff.Options, ff.Value) {
			ff.Options = append(slices.Clone(ff.Options), ff.Value)
		}
		if ff.Type == "image" {
			multipart = true
		}
		out[i] = ff
	}
	page := m.app.adminPage(c, m.singular, m.path())
	if errMsg != "" {
		page.Flashes = append(page.Flashes, views.Flash{Kind: flashError, Message: errMsg})
	}
	return RenderStatus(c, code, m.app.Views.AdminForm(views.ManagerFormPage{
		AdminPage:   page,
		Label:       m.singular,
		Path:        m.path(),
		OriginalKey: originalKey,
		IsNew:       originalKey == "",
		Fields:      out,
		Multipart:   multipart,
	}))
}

func (m *collection[T, PT]) create(c echo.Context) error {
	var zero T
	return m.renderForm(c, http.StatusOK, zero, "", "")
}

func (m *collection[T, PT]) edit(c echo.Context) error {
	items, err := m.load(c)
	if err != nil {
		return err
	}
	key := param(c, "key")
	item, ok := content.Find(items, key)
	if !ok {
		addFlash(c, flashError, m.singular+" not found.")
		return c.Redirect(http.StatusSeeOther, m.path())
	}
	return m.renderForm(c, http.StatusOK, item, key, "")
}

func (m *collection[T, PT]) save(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := m.load(c)
	if err != nil {
		return err
	}

	original := c.FormValue("original_key")
	var item T
	if original != "" {
		existing, ok := content.Find(items, original)
		if ok {
			item = existing
		} else {
			original = ""
		}
	}

	for _, f := range m.fields() {
		f.set(&item, c.FormValue(f.Name))
		if f.Type != "image" {
			continue
		}
		url, err := m.app.uploadFormImage(c, f.Name+"_file")
		if err != nil {
			return m.renderForm(c, http.StatusUnprocessableEntity, item, original, uploadMessage(err))
		}
		if url != "" {
			f.set(&item, url)
		}
	}
	if err := PT(&item).Normalize(m.app.now()); err != nil {
		if errors.Is(err, content.ErrInvalid) {
			return m.renderForm(c, http.StatusUnprocessableEntity, item, original, err.Error())
		}
		return err
	}
	key := item.Key()
	if key != original && content.IndexOf(items, key) >= 0 {
		msg := fmt.Sprintf("Another %s already uses the %s %q.", strings.ToLower(m.singular), m.kind.KeyField(), key)
		return m.renderForm(c, http.StatusUnprocessableEntity, item, original, msg)
	}

	if original == "" {
		err = content.Append(ctx, m.app.Content, m.kind, item)
	} else {
		err = content.Save(ctx, m.app.Content, m.kind, content.Replace(items, original, item))
	}
	if err != nil {
		return err
	}
	addFlash(c, flashSuccess, m.singular+" saved.")
	return c.Redirect(http.StatusSeeOther, m.path())
}

func (m *collection[T, PT]) remove(c echo.Context) error {
	items, err := m.load(c)
	if err != nil {
		return err
	}
	key := param(c, "key")
	if content.IndexOf(items, key) < 0 {
		addFlash(c, flashError, m.singular+" not found.")
		return c.Redirect(http.StatusSeeOther, m.path())
	}
	if err := content.Save(c.Request().Context(), m.app.Content, m.kind, content.Remove(items, key)); err != nil {
		return err
	}
	addFlash(c, flashSuccess, m.singular+" deleted.")
	return c.Redirect(http.StatusSeeOther, m.path())
}

func (m *collection[T, PT]) move(c echo.Context) error {
	items, err := m.load(c)
	if err != nil {
		return err
	}
	from := content.IndexOf(items, param(c, "key"))
	if from < 0 {
		addFlash(c, flashError, m.singular+" not found.")
		return c.Redirect(http.StatusSeeOther, m.path())
	}
	to := from
	switch firstNonEmpty(c.FormValue("dir"), c.QueryParam("dir")) {
	case "up":
		to--
	case "down":
		to++
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "dir must be up or down")
	}
	if to < 0 || to >= len(items) {
		return c.Redirect(http.StatusSeeOther, m.path())
	}
	moved, err := content.Move(items, from, to)
	if err != nil {
		return err
	}
	if err := content.Save(c.Request().Context(), m.app.Content, m.kind, moved); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, m.path())
}

func (m *collection[T, PT]) reset(c echo.Context) error {
	if err := m.app.Content.Reset(c.Request().Context(), m.kind); err != nil {
		return err
	}
	addFlash(c, flashSuccess, m.kind.Label()+" restored to defaults.")
	return c.Redirect(http.StatusSeeOther, m.path())
}

func (m *collection[T, PT]) export(c echo.Context) error {
	return exportCollection(c, m.app.Content, m.kind)
}

func (m *collection[T, PT]) importJSON(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		addFlash(c, flashError, "Choose a JSON file to import.")
		return c.Redirect(http.StatusSeeOther, m.path())
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxImportSize+1))
	if err != nil {
		return err
	}
	if len(data) > maxImportSize {
		addFlash(c, flashError, "Import file is too large.")
		return c.Redirect(http.StatusSeeOther, m.path())
	}
	n, err := content.Import(c.Request().Context(), m.app.Content, m.kind, data, m.app.now())
	if err != nil {
		addFlash(c, flashError, "Import failed: "+err.Error())
		return c.Redirect(http.StatusSeeOther, m.path())
	}
	addFlash(c, flashSuccess, "Imported "+strconv.Itoa(n)+" records.")
	return c.Redirect(http.StatusSeeOther, m.path())
}

func exportCollection(c echo.Context, s *content.Store, kind content.Kind) error {
	data, _, err := s.Raw(c.Request().Context(), kind)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.json"`, kind))
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, buf.Bytes())
}

func uploadMessage(err error) string {
	switch {
	case errors.Is(err, media.ErrTooLarge):
		return "Image is too large (max 3 MB)."
	case errors.Is(err, media.ErrUnsupportedType):
		return "Unsupported file type. Use JPEG, PNG, GIF, WebP or SVG."
	case errors.Is(err, media.ErrDecode):
		return "The image could not be read."
	}
	return "Upload failed."
}

func (a *App) buildManagers() []manager {
	return []manager{
		&collection[content.Blog, *content.Blog]{
			app: a, kind: content.KindBlogs, singular: "Post",
			columns: []string{"Title", "Category", "Date", "Author"},
			cells: func(b content.Blog) []string {
				return []string{b.Title, b.Category, b.Date, b.Author}
			},
			fields: func() []field[content.Blog] {
				return []field[content.Blog]{
					textField("title", "Title", "text", func(b *content.Blog) *string { return &b.Title }).required(),
					textField("slug", "Slug", "text", func(b *content.Blog) *string { return &b.Slug }).help("Leave blank to generate from the title."),
					textField("category", "Category", "select", func(b *content.Blog) *string { return &b.Category }).options(a.Profile.BlogCategories...),
					textField("excerpt", "Excerpt", "textarea", func(b *content.Blog) *string { return &b.Excerpt }),
					textField("date", "Date", "date", func(b *content.Blog) *string { return &b.Date }).help("Defaults to today."),
					textField("author", "Author", "text", func(b *content.Blog) *string { return &b.Author }),
					textField("image", "Cover image", "image", func(b *content.Blog) *string { return &b.Image }),
					textField("content", "Content", "markdown", func(b *content.Blog) *string { return &b.Content }).help("Markdown. Read time is calculated on save."),
				}
			},
		},
		&collection[content.CaseStudy, *content.CaseStudy]{
			app: a, kind: content.KindCaseStudies, singular: "Case Study",
			columns: []string{"Title", "Client", "Category"},
			cells: func(cs content.CaseStudy) []string {
				return []string{cs.Title, cs.Client, cs.Category}
			},
			fields: func() []field[content.CaseStudy] {
				return []field[content.CaseStudy]{
					textField("title", "Title", "text", func(cs *content.CaseStudy) *string { return &cs.Title }).required(),
					textField("slug", "Slug", "text", func(cs *content.CaseStudy) *string { return &cs.Slug }).help("Leave blank to generate from the title."),
					textField("client", "Client", "text", func(cs *content.CaseStudy) *string { return &cs.Client }),
					textField("category", "Category", "text", func(cs *content.CaseStudy) *string { return &cs.Category }),
					textField("challenge", "Challenge", "markdown", func(cs *content.CaseStudy) *string { return &cs.Challenge }),
					textField("solution", "Solution", "markdown", func(cs *content.CaseStudy) *string { return &cs.Solution }),
					textField("impact", "Impact", "markdown", func(cs *content.CaseStudy) *string { return &cs.Impact }),
					textField("image", "Image", "image", func(cs *content.CaseStudy) *string { return &cs.Image }),
				}
			},
		},
		&collection[content.Service, *content.Service]{
			app: a, kind: content.KindServices, singular: "Service",
			columns: []string{"Title", "Icon", "Features"},
			cells: func(s content.Service) []string {
				return []string{s.Title, s.Icon, strconv.Itoa(len(s.Features))}
			},
			fields: func() []field[content.Service] {
				return []field[content.Service]{
					textField("title", "Title", "text", func(s *content.Service) *string { return &s.Title }).required(),
					textField("slug", "Slug", "text", func(s *content.Service) *string { return &s.Slug }).help("Leave blank to generate from the title."),
					textField("description", "Description", "textarea", func(s *content.Service) *string { return &s.Description }),
					textField("icon", "Icon", "select", func(s *content.Service) *string { return &s.Icon }).options(content.ServiceIcons...),
					linesField("features", "Features", func(s *content.Service) *[]string { return &s.Features }),
				}
			},
		},
		&collection[content.Product, *content.Product]{
			app: a, kind: content.KindProducts, singular: "Product",
			columns: []string{"Title", "Tech"},
			cells: func(p content.Product) []string {
				return []string{p.Title, strings.Join(p.Tech, ", ")}
			},
			fields: func() []field[content.Product] {
				return []field[content.Product]{
					textField("title", "Title", "text", func(p *content.Product) *string { return &p.Title }).required(),
					textField("slug", "Slug", "text", func(p *content.Product) *string { return &p.Slug }).help("Leave blank to generate from the title."),
					textField("description", "Description", "textarea", func(p *content.Product) *string { return &p.Description }),
					linesField("features", "Features", func(p *content.Product) *[]string { return &p.Features }),
					linesField("tech", "Tech stack", func(p *content.Product) *[]string { return &p.Tech }),
				}
			},
		},
		&collection[content.Career, *content.Career]{
			app: a, kind: content.KindCareers, singular: "Position",
			columns: []string{"Title", "Department", "Location", "Type"},
			cells: func(c content.Career) []string {
				return []string{c.Title, c.Department, c.Location, c.Type}
			},
			fields: func() []field[content.Career] {
				return []field[content.Career]{
					textField("title", "Title", "text", func(c *content.Career) *string { return &c.Title }).required(),
					textField("department", "Department", "text", func(c *content.Career) *string { return &c.Department }),
					textField("location", "Location", "text", func(c *content.Career) *string { return &c.Location }),
					textField("type", "Type", "select", func(c *content.Career) *string { return &c.Type }).options("Full-time", "Part-time", "Contract", "Internship"),
					textField("description", "Description", "textarea", func(c *content.Career) *string { return &c.Description }),
				}
			},
		},
		&collection[content.TeamMember, *content.TeamMember]{
			app: a, kind: content.KindTeam, singular: "Team Member",
			columns: []string{"Name", "Role"},
			cells: func(m content.TeamMember) []string {
				return []string{m.Name, m.Role}
			},
			fields: func() []field[content.TeamMember] {
				return []field[content.TeamMember]{
					textField("name", "Name", "text", func(m *content.TeamMember) *string { return &m.Name }).required(),
					textField("role", "Role", "text", func(m *content.TeamMember) *string { return &m.Role }).required(),
					textField("description", "Description", "textarea", func(m *content.TeamMember) *string { return &m.Description }).required(),
					textField("avatar", "Avatar", "image", func(m *content.TeamMember) *string { return &m.Avatar }),
					textField("linkedin", "LinkedIn URL", "url", func(m *content.TeamMember) *string { return &m.LinkedIn }),
				}
			},
		},
		&collection[content.Client, *content.Client]{
			app: a, kind: content.KindClients, singular: "Client",
			columns: []string{"Name", "Logo"},
			cells: func(c content.Client) []string {
				return []string{c.Name, c.Logo}
			},
			fields: func() []field[content.Client] {
				return []field[content.Client]{
					textField("name", "Name", "text", func(c *content.Client) *string { return &c.Name }).required(),
					textField("logo", "Logo", "image", func(c *content.Client) *string { return &c.Logo }).required(),
				}
			},
		},
	}
}
