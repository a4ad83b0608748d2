// Package assets embeds the demo world map and its data files.
package assets

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed data
var files embed.FS

// Embedded returns the built-in dataset rooted at its data directory.
func Embedded() fs.FS {
	sub, err := fs.Sub(files, "data")
	if err != nil {
		panic(err) // the directive above guarantees the directory
	}
	return sub
}

// Open returns dir as a filesystem, or the embedded dataset when dir is
// empty.
func Open(dir string) fs.FS {
	if dir == "" {
		return Embedded()
	}
	return os.DirFS(dir)
}

// PlacesFile is the location list inside a dataset.
const PlacesFile = "places.json"
