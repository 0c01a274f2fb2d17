package content

import (
	"embed"
	"io/fs"
)

//go:embed defaults/*.json
var defaultsFS embed.FS

//go:embed site.yaml
var defaultProfile []byte

// Defaults returns the bundled default collections.
func Defaults() fs.FS {
	sub, err := fs.Sub(defaultsFS, "defaults")
	if err != nil {
		panic(err)
	}
	return sub
}
