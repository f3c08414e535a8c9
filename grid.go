package main

import "math"

// GridDimensions returns the tile columns and rows at level, where maxLevel is
// full resolution and each level below halves both axes. A level above
// maxLevel is not rejected; it yields a fractional scale and a larger grid.
func GridDimensions(width, height, level, maxLevel, tileSize int) (cols, rows int) {
	// width / 2^(maxLevel-level)
	levelWidth := math.Ldexp(float64(width), level-maxLevel)
	levelHeight := math.Ldexp(float64(height), level-maxLevel)

	cols = int(math.Ceil(levelWidth / float64(tileSize)))
	rows = int(math.Ceil(levelHeight / float64(tileSize)))
	return cols, rows
}

// NewLayer plans one level of the pyramid.
func NewLayer(p Panorama, level, tileSize int) Layer {
	cols, rows := GridDimensions(p.Width, p.Height, level, p.MaxLevel(), tileSize)
	return Layer{
		Zoom:  level,
		Cols:  cols,
		Rows:  rows,
		Count: int64(cols) * int64(rows),
	}
}
