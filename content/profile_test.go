package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfile(t *testing.T) {
	p, err := DefaultProfile()
	require.NoError(t, err)
	assert.Equal(t, "Digital Biz Tech", p.Name)
	assert.Len(t, p.Stats, 4)
	assert.Equal(t, []string{"AI", "Salesforce", "SAP", "Data Engineering"}, p.BlogCategories)
	assert.Equal(t, "contact@digitalbiz.tech", p.Contact.Email())
	assert.Empty(t, p.ChatURL)
}

func TestLoadProfileOverridesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: Acme Consulting\nchat_url: https://chat.example.com\n"), 0o644))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "Acme Consulting", p.Name)
	assert.Equal(t, "https://chat.example.com", p.ChatURL)
	assert.NotEmpty(t, p.Benefits, "unset fields keep bundled values")
}

func TestLoadProfileErrors(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = ParseProfile([]byte("stats: [unclosed"))
	assert.Error(t, err)
}
