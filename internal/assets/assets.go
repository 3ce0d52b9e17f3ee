// Package assets embeds the files `telwire init` writes out.
package assets

import "embed"

//go:embed config.yml
var FS embed.FS
