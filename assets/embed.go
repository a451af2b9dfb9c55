// Package assets embeds the files under assets/ for builds that cannot read
// the disk, such as js/wasm in a browser.
package assets

import "embed"

//go:embed *.png
var FS embed.FS
