package bizsite

import "embed"

// StaticAssets holds the stylesheet and icons served under /static/.
//
//go:embed static
var StaticAssets embed.FS
