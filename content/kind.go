// Package content holds the site's content records and the data-access layer
// that reads and writes them. Collections are stored as JSON blobs in a
// key-value store, keyed by content kind, and fall back to bundled defaults
// when no edited copy exists.
package content

import (
	"fmt"
	"strings"
)

// Kind identifies a content collection.
type Kind string

const (
	KindBlogs       Kind = "blogs"
	KindCaseStudies Kind = "caseStudies"
	KindServices    Kind = "services"
	KindProducts    Kind = "products"
	KindCareers     Kind = "careers"
	KindTeam        Kind = "team"
	KindClients     Kind = "clients"
	KindLegalDocs   Kind = "legaldocs"
)

// Kinds lists every collection in dashboard order.
var Kinds = []Kind{
	KindBlogs,
	KindCaseStudies,
	KindServices,
	KindProducts,
	KindCareers,
	KindTeam,
	KindClients,
	KindLegalDocs,
}

var kindMeta = map[Kind]struct {
	label string
	path  string
	key   string
}{
	KindBlogs:       {"Blogs", "blogs", "slug"},
	KindCaseStudies: {"Case Studies", "case-studies", "slug"},
	KindServices:    {"Services", "services", "slug"},
	KindProducts:    {"Products", "products", "slug"},
	KindCareers:     {"Careers", "careers", "title"},
	KindTeam:        {"Team Members", "team", "id"},
	KindClients:     {"Clients", "clients", "id"},
	KindLegalDocs:   {"Legal Docs", "legal-docs", "type"},
}

// ParseKind accepts either the storage name ("caseStudies") or the URL
// segment ("case-studies") of a kind.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	for k, m := range kindMeta {
		if string(k) == s || m.path == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown content kind %q", s)
}

// StorageKey is the key the collection is stored under.
func (k Kind) StorageKey() string {
	return "admin_" + string(k)
}

// Label is the human readable collection name.
func (k Kind) Label() string {
	return kindMeta[k].label
}

// Path is the URL segment used for the collection in the admin.
func (k Kind) Path() string {
	return kindMeta[k].path
}

// KeyField is the JSON field that identifies a record of the kind.
func (k Kind) KeyField() string {
	return kindMeta[k].key
}

// DefaultFile is the name of the bundled JSON file for the collection.
func (k Kind) DefaultFile() string {
	return string(k) + ".json"
}

func (k Kind) String() string {
	return string(k)
}
