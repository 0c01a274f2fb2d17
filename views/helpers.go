package views

import (
	"encoding/json"
	"html/template"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/digitalbiztech/bizsite/content"
)

// buildURL joins path segments onto a base URL, ensuring a trailing slash.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// absURL resolves a site-relative path such as /uploads/x.png against base.
func absURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func jsonLD(data map[string]any) template.JS {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return template.JS(b)
}

// OrganizationJSONLD produces a Schema.org Organization block for the company.
func OrganizationJSONLD(site Site) template.JS {
	data := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     site.Name,
		"url":      buildURL(site.URL),
	}
	if site.Description != "" {
		data["description"] = site.Description
	}
	if p := site.Profile; p != nil {
		if email := p.Contact.Email(); email != "" {
			data["email"] = email
		}
		if p.Contact.Phone != "" {
			data["telephone"] = p.Contact.Phone
		}
	}
	return jsonLD(data)
}

// BlogPostingJSONLD produces a Schema.org BlogPosting block for a post.
func BlogPostingJSONLD(site Site, post content.Blog) template.JS {
	postURL := buildURL(site.URL, "blog", post.Slug)
	data := map[string]any{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title,
		"description":   post.Excerpt,
		"datePublished": post.Date,
		"url":           postURL,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  site.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if post.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  post.Author,
		}
	}
	if post.Category != "" {
		data["articleSection"] = post.Category
	}
	if post.Image != "" {
		data["image"] = absURL(site.URL, post.Image)
	}
	return jsonLD(data)
}

// ServiceJSONLD produces a Schema.org Service block.
func ServiceJSONLD(site Site, svc content.Service) template.JS {
	return jsonLD(map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Service",
		"name":        svc.Title,
		"description": svc.Description,
		"url":         buildURL(site.URL, "services", svc.Slug),
		"provider": map[string]string{
			"@type": "Organization",
			"name":  site.Name,
		},
	})
}

// JobPostingsJSONLD produces one Schema.org JobPosting block per position.
func JobPostingsJSONLD(site Site, careers []content.Career) []template.JS {
	out := make([]template.JS, 0, len(careers))
	for _, c := range careers {
		out = append(out, jsonLD(map[string]any{
			"@context":       "https://schema.org",
			"@type":          "JobPosting",
			"title":          c.Title,
			"description":    c.Description,
			"employmentType": c.Type,
			"hiringOrganization": map[string]string{
				"@type":  "Organization",
				"name":   site.Name,
				"sameAs": buildURL(site.URL),
			},
			"jobLocation": map[string]any{
				"@type":   "Place",
				"address": c.Location,
			},
		}))
	}
	return out
}

var titleCaser = cases.Title(language.English)

// Title capitalises each word, e.g. "data engineering" -> "Data Engineering".
func Title(s string) string {
	return titleCaser.String(s)
}

// FormatDate renders a YYYY-MM-DD date as "Jan 2, 2006". Other values are
// returned unchanged.
func FormatDate(s string) string {
	t, err := time.Parse(content.DateLayout, s)
	if err != nil {
		return s
	}
	return t.Format("Jan 2, 2006")
}

// PathEscape wraps url.PathEscape for use in templates.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// CategoryURL is the blog listing filtered by category.
func CategoryURL(category string) string {
	if category == "" || category == "All" {
		return "/blog/"
	}
	return "/blog/?category=" + url.QueryEscape(category)
}
