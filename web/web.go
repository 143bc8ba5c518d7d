// Package web embeds the browser capture client.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var assets embed.FS

// Assets returns the client files rooted at the static directory.
func Assets() fs.FS {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		// the directory is embedded at build time
		panic(err)
	}
	return sub
}
