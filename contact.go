package bizsite

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/digitalbiztech/bizsite/views"
)

const (
	maxContactField   = 200
	maxContactMessage = 5000
)

func (a *App) contactPage(c echo.Context) views.Page {
	return a.page(c, "Contact", "Get in touch to discuss how we can help transform your business.")
}

func (a *App) handleContact(c echo.Context) error {
	form := views.ContactForm{}
	if pos := strings.TrimSpace(c.QueryParam("position")); pos != "" {
		form.Message = "I'm interested in the " + pos + " position."
	}
	return Render(c, a.Views.Contact(views.ContactPage{
		Page: a.contactPage(c),
		Form: form,
		Sent: c.QueryParam("sent") == "1",
	}))
}

func (a *App) handleContactSubmit(c echo.Context) error {
	form := views.ContactForm{
		Name:    strings.TrimSpace(c.FormValue("name")),
		Email:   strings.TrimSpace(c.FormValue("email")),
		Company: strings.TrimSpace(c.FormValue("company")),
		Message: strings.TrimSpace(c.FormValue("message")),
	}

	if !a.contactLimiter.Allow(c.RealIP()) {
		return RenderStatus(c, http.StatusTooManyRequests, a.Views.Contact(views.ContactPage{
			Page:   a.contactPage(c),
			Form:   form,
			Errors: map[string]string{"form": "Too many messages. Please try again later."},
		}))
	}

	if errs := validateContact(form); len(errs) > 0 {
		return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.Contact(views.ContactPage{
			Page:   a.contactPage(c),
			Form:   form,
			Errors: errs,
		}))
	}

	id, err := a.Inquiries.Create(c.Request().Context(), Inquiry{
		Name:      form.Name,
		Email:     form.Email,
		Company:   form.Company,
		Message:   form.Message,
		CreatedAt: a.now(),
	})
	if err != nil {
		return err
	}
	if a.Metrics != nil {
		a.Metrics.InquiryReceived()
	}
	a.Logger.Info("inquiry received", zap.Int64("id", id), zap.String("email", form.Email))
	return c.Redirect(http.StatusSeeOther, "/contact/?sent=1")
}

// validateContact returns error messages keyed by field name.
func validateContact(f views.ContactForm) map[string]string {
	errs := make(map[string]string)
	switch {
	case f.Name == "":
		errs["name"] = "Name is required."
	case utf8.RuneCountInString(f.Name) > maxContactField:
		errs["name"] = "Name is too long."
	}
	if f.Email == "" {
		errs["email"] = "Email is required."
	} else if addr, err := mail.ParseAddress(f.Email); err != nil || addr.Address != f.Email {
		errs["email"] = "Please enter a valid email address."
	}
	if utf8.RuneCountInString(f.Company) > maxContactField {
		errs["company"] = "Company is too long."
	}
	switch {
	case f.Message == "":
		errs["message"] = "Message is required."
	case utf8.RuneCountInString(f.Message) > maxContactMessage:
		errs["message"] = "Message is too long."
	}
	return errs
}

func (a *App) handleAdminInquiries(c echo.Context) error {
	ctx := c.Request().Context()
	list, err := a.Inquiries.List(ctx)
	if err != nil {
		return err
	}
	now := a.now()
	rows := make([]views.InquiryRow, 0, len(list))
	unread := 0
	for _, in := range list {
		if !in.Read {
			unread++
		}
		rows = append(rows, views.InquiryRow{
			ID:       in.ID,
			Name:     in.Name,
			Email:    in.Email,
			Company:  in.Company,
			Message:  in.Message,
			Received: ago(in.CreatedAt, now),
			Read:     in.Read,
		})
	}
	return Render(c, a.Views.AdminInquiries(views.InquiriesPage{
		AdminPage: a.adminPage(c, "Inquiries", "/admin/inquiries/"),
		Inquiries: rows,
		Unread:    unread,
	}))
}

func (a *App) handleInquiryRead(c echo.Context) error {
	return a.inquiryAction(c, a.Inquiries.MarkRead, "Marked as read.")
}

func (a *App) handleInquiryDelete(c echo.Context) error {
	return a.inquiryAction(c, a.Inquiries.Delete, "Inquiry deleted.")
}

func (a *App) inquiryAction(c echo.Context, fn func(context.Context, int64) error, done string) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if err := fn(c.Request().Context(), id); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		addFlash(c, flashError, "Inquiry not found.")
	} else {
		addFlash(c, flashSuccess, done)
	}
	return c.Redirect(http.StatusSeeOther, "/admin/inquiries/")
}
