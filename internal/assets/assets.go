// Package assets embeds the page template and static files of the web front end.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed index.html
var IndexHTML string

//go:embed static
var static embed.FS

// Static returns the files served under /static/.
func Static() (fs.FS, error) {
	return fs.Sub(static, "static")
}
