package main

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/paulmach/orb/maptile"
)

// relTilePath is the slash separated <level>/<row>/<col>.<ext> form used in
// the missing tile file.
func relTilePath(t maptile.Tile, format string) string {
	return path.Join(fmt.Sprintf(`%d`, t.Z), fmt.Sprintf(`%d`, t.Y), fmt.Sprintf(`%d.%s`, t.X, format))
}

func tilePath(rootdir string, t maptile.Tile, format string) string {
	return filepath.Join(rootdir, filepath.FromSlash(relTilePath(t, format)))
}

func exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

func saveToFiles(rootdir string, tile Tile, format string) (string, error) {
	fileName := tilePath(rootdir, tile.T, format)
	if err := os.MkdirAll(filepath.Dir(fileName), os.ModePerm); err != nil {
		return "", err
	}
	return fileName, os.WriteFile(fileName, tile.C, 0o644)
}
