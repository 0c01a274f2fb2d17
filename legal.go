package bizsite

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/digitalbiztech/bizsite/content"
	"github.com/digitalbiztech/bizsite/media"
	"github.com/digitalbiztech/bizsite/views"
)

const legalPath = "/admin/legal-docs/"

func (a *App) legalDocs(c echo.Context) ([]content.LegalDoc, error) {
	return content.List[content.LegalDoc](c.Request().Context(), a.Content, content.KindLegalDocs)
}

func (a *App) handleAdminLegal(c echo.Context) error {
	docs, err := a.legalDocs(c)
	if err != nil {
		return err
	}
	rows := make([]views.LegalDocRow, 0, 2)
	for _, t := range []content.LegalDocType{content.LegalPrivacy, content.LegalTerms} {
		row := views.LegalDocRow{Type: string(t), Title: t.Title()}
		if d, ok := content.Find(docs, string(t)); ok {
			row.Doc = &d
		}
		rows = append(rows, row)
	}
	return Render(c, a.Views.AdminLegalDocs(views.LegalDocsPage{
		AdminPage: a.adminPage(c, "Legal documents", legalPath),
		Docs:      rows,
	}))
}

func (a *App) handleLegalUpload(c echo.Context) error {
	ctx := c.Request().Context()
	typ, err := content.ParseLegalDocType(c.FormValue("type"))
	if err != nil {
		addFlash(c, flashError, err.Error())
		return c.Redirect(http.StatusSeeOther, legalPath)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		addFlash(c, flashError, "Choose a PDF to upload.")
		return c.Redirect(http.StatusSeeOther, legalPath)
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	obj, err := a.Media.UploadDocument(ctx, fh.Filename, f)
	if err != nil {
		if errors.Is(err, media.ErrTooLarge) || errors.Is(err, media.ErrUnsupportedType) {
			addFlash(c, flashError, "Upload a PDF of at most 10 MB.")
			return c.Redirect(http.StatusSeeOther, legalPath)
		}
		return err
	}

	docs, err := a.legalDocs(c)
	if err != nil {
		return err
	}
	doc := content.LegalDoc{
		ID:         uuid.NewString(),
		Type:       typ,
		FileName:   fh.Filename,
		FileURL:    obj.URL(),
		UploadedAt: a.now().UTC().Format(time.RFC3339),
	}
	if err := doc.Normalize(a.now()); err != nil {
		return err
	}
	previous, hadPrevious := content.Find(docs, string(typ))
	if err := content.Save(ctx, a.Content, content.KindLegalDocs, content.Upsert(docs, doc)); err != nil {
		return err
	}
	if hadPrevious && previous.FileURL != doc.FileURL {
		a.deleteUpload(c, previous.FileURL)
	}
	addFlash(c, flashSuccess, typ.Title()+" uploaded.")
	return c.Redirect(http.StatusSeeOther, legalPath)
}

func (a *App) handleLegalDelete(c echo.Context) error {
	docs, err := a.legalDocs(c)
	if err != nil {
		return err
	}
	typ := param(c, "type")
	doc, ok := content.Find(docs, typ)
	if !ok {
		addFlash(c, flashError, "Document not found.")
		return c.Redirect(http.StatusSeeOther, legalPath)
	}
	if err := content.Save(c.Request().Context(), a.Content, content.KindLegalDocs, content.Remove(docs, typ)); err != nil {
		return err
	}
	a.deleteUpload(c, doc.FileURL)
	addFlash(c, flashSuccess, doc.Type.Title()+" removed.")
	return c.Redirect(http.StatusSeeOther, legalPath)
}

// deleteUpload removes the stored file behind url. Failures are logged only,
// the record that pointed at it is already gone.
func (a *App) deleteUpload(c echo.Context, url string) {
	name := media.NameFromURL(url)
	if name == "" {
		return
	}
	if err := a.Media.Delete(c.Request().Context(), name); err != nil && !errors.Is(err, media.ErrNotFound) {
		a.Logger.Warn("delete replaced upload", zap.String("name", name), zap.Error(err))
	}
}
