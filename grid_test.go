package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGridDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		level, max    int
		cols, rows    int
	}{
		{"full resolution", 4096, 2048, 4, 4, 16, 8},
		{"coarsest level", 4096, 2048, 0, 4, 1, 1},
		{"middle level", 4096, 2048, 2, 4, 4, 2},
		{"partial tiles round up", 1000, 300, 2, 2, 4, 2},
		{"one past max level", 4096, 2048, 5, 4, 32, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, rows := GridDimensions(tt.width, tt.height, tt.level, tt.max, TileSize)
			assert.Equal(t, tt.cols, cols)
			assert.Equal(t, tt.rows, rows)
		})
	}
}

func TestGridDimensionsCoversPanorama(t *testing.T) {
	sizes := [][2]int{{1, 1}, {255, 257}, {4096, 2048}, {12345, 6789}, {100000, 20000}}
	for _, size := range sizes {
		width, height := size[0], size[1]
		for maxLevel := 0; maxLevel <= 9; maxLevel++ {
			for level := 0; level <= maxLevel; level++ {
				cols, rows := GridDimensions(width, height, level, maxLevel, TileSize)
				scale := math.Pow(2, float64(maxLevel-level))

				assert.GreaterOrEqual(t, cols, 1)
				assert.GreaterOrEqual(t, rows, 1)
				assert.GreaterOrEqual(t, scale*TileSize*float64(cols), float64(width))
				assert.GreaterOrEqual(t, scale*TileSize*float64(rows), float64(height))
			}
		}
	}
}

func TestNewLayer(t *testing.T) {
	p := Panorama{ID: 1, Width: 4096, Height: 2048, Levels: 5}

	layer := NewLayer(p, 3, TileSize)

	assert.Equal(t, Layer{Zoom: 3, Cols: 8, Rows: 4, Count: 32}, layer)
}
