package content

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is implemented by every content type. Key identifies the record
// within its collection.
type Record interface {
	Key() string
}

// ErrInvalid is wrapped by record validation failures.
var ErrInvalid = errors.New("invalid record")

func invalid(msg string) error {
	return &validationError{msg: msg}
}

type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }
func (e *validationError) Unwrap() error { return ErrInvalid }

// DateLayout is the date format used for blog posts.
const DateLayout = "2006-01-02"

// Blog is a blog post. Content is markdown.
type Blog struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Category string `json:"category"`
	Excerpt  string `json:"excerpt"`
	Date     string `json:"date"`
	ReadTime string `json:"readTime"`
	Author   string `json:"author"`
	Image    string `json:"image"`
	Content  string `json:"content"`
}

func (b Blog) Key() string { return b.Slug }

// Normalize fills derived fields: the slug from the title, today's date when
// none is set, and the read time from the content.
func (b *Blog) Normalize(now time.Time) error {
	b.Title = strings.TrimSpace(b.Title)
	b.Slug = strings.TrimSpace(b.Slug)
	if b.Slug == "" {
		b.Slug = Slugify(b.Title)
	}
	if b.Slug == "" {
		return invalid("Slug is required. Add a title or slug.")
	}
	b.Date = strings.TrimSpace(b.Date)
	if b.Date == "" {
		b.Date = now.Format(DateLayout)
	}
	if _, err := time.Parse(DateLayout, b.Date); err != nil {
		return invalid("Invalid date format. Use YYYY-MM-DD.")
	}
	b.ReadTime = ReadTime(b.Content)
	return nil
}

// CaseStudy describes a client engagement.
type CaseStudy struct {
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Client    string `json:"client"`
	Category  string `json:"category"`
	Challenge string `json:"challenge"`
	Solution  string `json:"solution"`
	Impact    string `json:"impact"`
	Image     string `json:"image"`
}

func (c CaseStudy) Key() string { return c.Slug }

func (c *CaseStudy) Normalize(time.Time) error {
	c.Title = strings.TrimSpace(c.Title)
	c.Slug = strings.TrimSpace(c.Slug)
	if c.Slug == "" {
		c.Slug = Slugify(c.Title)
	}
	if c.Slug == "" {
		return invalid("Slug is required. Add a title or slug.")
	}
	return nil
}

// Service is a consulting offering. Icon is one of ServiceIcons.
type Service struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Features    []string `json:"features"`
}

// ServiceIcons are the icon names the site knows how to draw.
var ServiceIcons = []string{"cloud", "brain", "database", "users"}

func (s Service) Key() string { return s.Slug }

func (s *Service) Normalize(time.Time) error {
	s.Title = strings.TrimSpace(s.Title)
	s.Slug = strings.TrimSpace(s.Slug)
	if s.Slug == "" {
		s.Slug = Slugify(s.Title)
	}
	if s.Slug == "" {
		return invalid("Slug is required. Add a title or slug.")
	}
	if s.Icon == "" {
		s.Icon = "cloud"
	}
	s.Features = compact(s.Features)
	return nil
}

// Product is a packaged software offering.
type Product struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Tech        []string `json:"tech"`
}

func (p Product) Key() string { return p.Slug }

func (p *Product) Normalize(time.Time) error {
	p.Title = strings.TrimSpace(p.Title)
	p.Slug = strings.TrimSpace(p.Slug)
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	if p.Slug == "" {
		return invalid("Slug is required. Add a title or slug.")
	}
	p.Features = compact(p.Features)
	p.Tech = compact(p.Tech)
	return nil
}

// Career is an open position. Positions are keyed by title.
type Career struct {
	Title       string `json:"title"`
	Department  string `json:"department"`
	Location    string `json:"location"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

func (c Career) Key() string { return c.Title }

func (c *Career) Normalize(time.Time) error {
	c.Title = strings.TrimSpace(c.Title)
	if c.Title == "" {
		return invalid("Title is required.")
	}
	return nil
}

// TeamMember is shown on the about page.
type TeamMember struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Description string `json:"description"`
	Avatar      string `json:"avatar"`
	LinkedIn    string `json:"linkedin,omitempty"`
}

func (m TeamMember) Key() string { return m.ID }

func (m *TeamMember) Normalize(time.Time) error {
	assignID(&m.ID)
	m.Name = strings.TrimSpace(m.Name)
	m.Role = strings.TrimSpace(m.Role)
	m.Description = strings.TrimSpace(m.Description)
	if m.Name == "" || m.Role == "" || m.Description == "" {
		return invalid("Please fill in all required fields")
	}
	return nil
}

// assignID gives records without an id a fresh uuid.
func assignID(id *string) {
	*id = strings.TrimSpace(*id)
	if *id == "" {
		*id = uuid.NewString()
	}
}

// Client is a customer logo shown on the home page.
type Client struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

func (c Client) Key() string { return c.ID }

func (c *Client) Normalize(time.Time) error {
	assignID(&c.ID)
	c.Name = strings.TrimSpace(c.Name)
	c.Logo = strings.TrimSpace(c.Logo)
	if c.Name == "" || c.Logo == "" {
		return invalid("Please fill in all fields")
	}
	return nil
}

// LegalDocType names the legal documents the site publishes.
type LegalDocType string

const (
	LegalPrivacy LegalDocType = "privacy"
	LegalTerms   LegalDocType = "terms"
)

// ParseLegalDocType validates a legal document type.
func ParseLegalDocType(s string) (LegalDocType, error) {
	switch LegalDocType(s) {
	case LegalPrivacy, LegalTerms:
		return LegalDocType(s), nil
	}
	return "", invalid("Unknown document type " + strconv.Quote(s))
}

// Title is the display name of the document type.
func (t LegalDocType) Title() string {
	if t == LegalPrivacy {
		return "Privacy Policy"
	}
	return "Terms & Conditions"
}

// LegalDoc is an uploaded PDF. There is at most one document per type.
type LegalDoc struct {
	ID         string       `json:"id"`
	Type       LegalDocType `json:"type"`
	FileName   string       `json:"fileName"`
	FileURL    string       `json:"fileUrl"`
	UploadedAt string       `json:"uploadedAt"`
}

func (d LegalDoc) Key() string { return string(d.Type) }

// ReadTime estimates reading time at 200 words per minute, e.g. "3 min".
func ReadTime(text string) string {
	words := len(strings.Fields(text))
	minutes := int(math.Ceil(float64(words) / 200))
	if minutes < 1 {
		minutes = 1
	}
	return strconv.Itoa(minutes) + " min"
}

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func compact(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (d *LegalDoc) Normalize(time.Time) error {
	t, err := ParseLegalDocType(string(d.Type))
	if err != nil {
		return err
	}
	d.Type = t
	if strings.TrimSpace(d.FileURL) == "" {
		return invalid("File URL is required.")
	}
	return nil
}
