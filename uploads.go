package bizsite

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"

	"github.com/digitalbiztech/bizsite/media"
	"github.com/digitalbiztech/bizsite/views"
)

const mediaPath = "/admin/media/"

// handleUpload serves a stored file. SVGs get a sandboxing policy so that
// scripts inside them never run on the site's origin.
func (a *App) handleUpload(c echo.Context) error {
	rc, obj, err := a.Media.Open(c.Request().Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	defer rc.Close()

	h := c.Response().Header()
	h.Set(echo.HeaderXContentTypeOptions, "nosniff")
	if obj.Size > 0 {
		h.Set(echo.HeaderContentLength, strconv.FormatInt(obj.Size, 10))
	}
	if obj.ContentType == "image/svg+xml" {
		h.Set(echo.HeaderContentSecurityPolicy, "default-src 'none'; style-src 'unsafe-inline'; sandbox")
	}
	return c.Stream(http.StatusOK, obj.ContentType, rc)
}

// uploadFormImage stores the image posted in field, if any, and returns its
// public URL. An empty URL means no file was sent.
func (a *App) uploadFormImage(c echo.Context, field string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", err
	}
	if fh.Size == 0 {
		return "", nil
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	obj, err := a.Media.UploadImage(c.Request().Context(), fh.Filename, f)
	if err != nil {
		return "", err
	}
	return obj.URL(), nil
}

func (a *App) handleAdminMedia(c echo.Context) error {
	objects, err := a.Media.List(c.Request().Context())
	if err != nil {
		return err
	}
	now := a.now()
	items := make([]views.MediaItem, len(objects))
	for i, o := range objects {
		item := views.MediaItem{
			Name:     o.Name,
			URL:      o.URL(),
			Type:     o.ContentType,
			Size:     humanize.Bytes(uint64(o.Size)),
			Uploaded: ago(o.UploadedAt, now),
			IsImage:  strings.HasPrefix(o.ContentType, "image/"),
		}
		if o.Width > 0 && o.Height > 0 {
			item.Dimensions = fmt.Sprintf("%d×%d", o.Width, o.Height)
		}
		items[i] = item
	}
	return Render(c, a.Views.AdminMedia(views.MediaPage{
		AdminPage: a.adminPage(c, "Media", mediaPath),
		Items:     items,
	}))
}

func wantsJSON(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

func (a *App) handleMediaUpload(c echo.Context) error {
	url, err := a.uploadFormImage(c, "file")
	if err == nil && url == "" {
		if wantsJSON(c) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "no file"})
		}
		addFlash(c, flashError, "Choose an image to upload.")
		return c.Redirect(http.StatusSeeOther, mediaPath)
	}
	if err != nil {
		if !errors.Is(err, media.ErrTooLarge) && !errors.Is(err, media.ErrUnsupportedType) && !errors.Is(err, media.ErrDecode) {
			return err
		}
		msg := uploadMessage(err)
		if wantsJSON(c) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": msg})
		}
		addFlash(c, flashError, msg)
		return c.Redirect(http.StatusSeeOther, mediaPath)
	}
	if wantsJSON(c) {
		return c.JSON(http.StatusCreated, map[string]string{"url": url})
	}
	addFlash(c, flashSuccess, "Uploaded "+url)
	return c.Redirect(http.StatusSeeOther, mediaPath)
}

func (a *App) handleMediaDelete(c echo.Context) error {
	err := a.Media.Delete(c.Request().Context(), param(c, "name"))
	switch {
	case errors.Is(err, media.ErrNotFound):
		addFlash(c, flashError, "File not found.")
	case err != nil:
		return err
	default:
		addFlash(c, flashSuccess, "File deleted.")
	}
	return c.Redirect(http.StatusSeeOther, mediaPath)
}
