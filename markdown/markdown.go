// Package markdown renders user-authored Markdown to sanitized HTML, either as
// a templ component or as template.HTML for html/template views.
package markdown

import (
	"bytes"
	"context"
	"html/template"
	"io"
	"regexp"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
		),
	)
	policy = newPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id").Matching(regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)).OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[a-zA-Z0-9_+-]+$`)).OnElements("code")
	p.AllowAttrs("type", "checked", "disabled").OnElements("input")
	p.RequireNoFollowOnLinks(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Render writes the sanitized HTML for src to w.
func Render(w io.Writer, src string) error {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return err
	}
	_, err := w.Write(policy.SanitizeBytes(buf.Bytes()))
	return err
}

// HTML returns the sanitized HTML for src. Conversion errors yield an empty
// string.
func HTML(src string) template.HTML {
	var buf bytes.Buffer
	if err := Render(&buf, src); err != nil {
		return ""
	}
	return template.HTML(buf.String())
}

// Markdown returns a templ.Component that renders content as HTML.
func Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Render(w, content)
	})
}
