package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is the static company copy shown across the public pages.
type Profile struct {
	Name           string      `yaml:"name"`
	Tagline        string      `yaml:"tagline"`
	Hero           Hero        `yaml:"hero"`
	Stats          []Stat      `yaml:"stats"`
	Partners       []string    `yaml:"partners"`
	Story          []string    `yaml:"story"`
	Values         []Value     `yaml:"values"`
	Timeline       []Milestone `yaml:"timeline"`
	Benefits       []string    `yaml:"benefits"`
	Contact        Contact     `yaml:"contact"`
	BlogCategories []string    `yaml:"blog_categories"`
	ChatURL        string      `yaml:"chat_url"`
}

type Hero struct {
	Title        string `yaml:"title"`
	Subtitle     string `yaml:"subtitle"`
	PrimaryCTA   string `yaml:"primary_cta"`
	SecondaryCTA string `yaml:"secondary_cta"`
}

type Stat struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

type Value struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type Milestone struct {
	Year  string `yaml:"year"`
	Event string `yaml:"event"`
}

type Contact struct {
	Emails  []string `yaml:"emails"`
	Phone   string   `yaml:"phone"`
	Hours   string   `yaml:"hours"`
	Address []string `yaml:"address"`
}

// Email is the primary contact address.
func (c Contact) Email() string {
	if len(c.Emails) == 0 {
		return ""
	}
	return c.Emails[0]
}

// ParseProfile decodes a YAML profile. Fields missing from data keep the
// bundled values.
func ParseProfile(data []byte) (*Profile, error) {
	p, err := DefaultProfile()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse site profile: %w", err)
	}
	return p, nil
}

// DefaultProfile returns the bundled profile.
func DefaultProfile() (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(defaultProfile, &p); err != nil {
		return nil, fmt.Errorf("parse bundled site profile: %w", err)
	}
	return &p, nil
}

// LoadProfile reads the profile at path, or the bundled one when path is
// empty.
func LoadProfile(path string) (*Profile, error) {
	if path == "" {
		return DefaultProfile()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read site profile: %w", err)
	}
	return ParseProfile(data)
}
