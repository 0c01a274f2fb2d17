package content

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello World", "hello-world"},
		{"  Trim me  ", "trim-me"},
		{"AI & Automation: 2024!", "ai-automation-2024"},
		{"---", ""},
		{"Ünïcode Title", "n-code-title"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadTime(t *testing.T) {
	tests := []struct {
		words int
		want  string
	}{
		{0, "1 min"},
		{1, "1 min"},
		{200, "1 min"},
		{201, "2 min"},
		{1000, "5 min"},
	}
	for _, tt := range tests {
		text := strings.TrimSpace(strings.Repeat("word ", tt.words))
		if got := ReadTime(text); got != tt.want {
			t.Errorf("ReadTime(%d words) = %q, want %q", tt.words, got, tt.want)
		}
	}
}

func TestBlogNormalize(t *testing.T) {
	now := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

	b := Blog{Title: "My First Post", Content: strings.Repeat("w ", 450)}
	if err := b.Normalize(now); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if b.Slug != "my-first-post" {
		t.Errorf("Slug = %q", b.Slug)
	}
	if b.Date != "2024-05-02" {
		t.Errorf("Date = %q", b.Date)
	}
	if b.ReadTime != "3 min" {
		t.Errorf("ReadTime = %q", b.ReadTime)
	}

	keep := Blog{Title: "x", Slug: "custom", Date: "2023-01-01"}
	if err := keep.Normalize(now); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if keep.Slug != "custom" || keep.Date != "2023-01-01" {
		t.Errorf("explicit slug/date overwritten: %+v", keep)
	}

	bad := Blog{Title: "x", Date: "02/05/2024"}
	if err := bad.Normalize(now); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for bad date, got %v", err)
	}

	empty := Blog{}
	if err := empty.Normalize(now); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for missing title, got %v", err)
	}
}

func TestRequiredFields(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		rec     interface{ Normalize(time.Time) error }
		wantErr bool
	}{
		{"team complete", &TeamMember{Name: "A", Role: "B", Description: "C"}, false},
		{"team missing role", &TeamMember{Name: "A", Description: "C"}, true},
		{"client complete", &Client{Name: "Acme", Logo: "/uploads/a.png"}, false},
		{"client missing logo", &Client{Name: "Acme"}, true},
		{"career blank title", &Career{Title: "  "}, true},
		{"case study from title", &CaseStudy{Title: "Big Win"}, false},
		{"product no title", &Product{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Normalize(now)
			if (err != nil) != tt.wantErr {
				t.Errorf("Normalize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("error %v does not wrap ErrInvalid", err)
			}
		})
	}
}

func TestTeamValidationMessage(t *testing.T) {
	err := (&TeamMember{}).Normalize(time.Now())
	if err == nil || err.Error() != "Please fill in all required fields" {
		t.Errorf("unexpected error %v", err)
	}
}

func TestServiceNormalize(t *testing.T) {
	s := Service{Title: "Cloud", Features: []string{" a ", "", "b"}}
	if err := s.Normalize(time.Now()); err != nil {
		t.Fatal(err)
	}
	if s.Icon != "cloud" {
		t.Errorf("Icon = %q, want cloud", s.Icon)
	}
	if len(s.Features) != 2 || s.Features[0] != "a" || s.Features[1] != "b" {
		t.Errorf("Features = %q", s.Features)
	}
}

func TestParseLegalDocType(t *testing.T) {
	if _, err := ParseLegalDocType("privacy"); err != nil {
		t.Errorf("privacy: %v", err)
	}
	if _, err := ParseLegalDocType("cookies"); !errors.Is(err, ErrInvalid) {
		t.Errorf("cookies: expected ErrInvalid, got %v", err)
	}
	if LegalTerms.Title() != "Terms & Conditions" {
		t.Errorf("Title = %q", LegalTerms.Title())
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k, got, err)
		}
		got, err = ParseKind(k.Path())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k.Path(), got, err)
		}
		if k.Label() == "" {
			t.Errorf("%s has no label", k)
		}
	}
	if _, err := ParseKind("widgets"); err == nil {
		t.Error("expected error for unknown kind")
	}
	if KindCaseStudies.StorageKey() != "admin_caseStudies" {
		t.Errorf("StorageKey = %q", KindCaseStudies.StorageKey())
	}
}

func TestNormalizeAssignsID(t *testing.T) {
	m := TeamMember{ID: "  ", Name: "A", Role: "B", Description: "C"}
	if err := m.Normalize(time.Now()); err != nil {
		t.Fatal(err)
	}
	if m.ID == "" || strings.TrimSpace(m.ID) != m.ID {
		t.Errorf("ID = %q, want a generated id", m.ID)
	}

	c := Client{ID: "acme", Name: "Acme", Logo: "/uploads/a.png"}
	if err := c.Normalize(time.Now()); err != nil {
		t.Fatal(err)
	}
	if c.ID != "acme" {
		t.Errorf("ID = %q, want acme", c.ID)
	}
}
