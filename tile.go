package main

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/paulmach/orb/maptile"
)

// TileSize 默认瓦片大小
const TileSize = 256

// MinTileBytes rejects truncated bodies and error pages served with a 200.
const MinTileBytes = 1000

// JPG is the only tile format the server delivers and ValidateJPEG accepts.
const JPG = "jpg"

var (
	jpegSOI = []byte{0xff, 0xd8}
	jpegEOI = []byte{0xff, 0xd9}
)

var (
	ErrInvalidTile  = errors.New("invalid jpeg tile")
	ErrTileTooSmall = errors.New("tile too small")
)

// Tile 自定义瓦片存储
type Tile struct {
	T maptile.Tile
	C []byte
}

// NewTile addresses a tile by level, row and column.
func NewTile(level, row, col int) maptile.Tile {
	return maptile.New(uint32(col), uint32(row), maptile.Zoom(level))
}

// Layer 级别&瓦片数
type Layer struct {
	Zoom  int
	Cols  int
	Rows  int
	Count int64
}

func (l Layer) String() string {
	return fmt.Sprintf("zoom %d (%dx%d, %d tiles)", l.Zoom, l.Cols, l.Rows, l.Count)
}

// FetchResult is the outcome of one tile: Path on success, Err on failure.
type FetchResult struct {
	Tile    maptile.Tile
	Path    string
	Skipped bool
	Err     error
}

func (r FetchResult) OK() bool {
	return r.Err == nil
}

// ValidateJPEG checks the SOI/EOI markers and the size floor. It is a
// sanity check, not a decoder.
func ValidateJPEG(data []byte, minSize int) error {
	if !bytes.HasPrefix(data, jpegSOI) || !bytes.HasSuffix(data, jpegEOI) {
		return ErrInvalidTile
	}
	if len(data) <= minSize {
		return fmt.Errorf("%w: %d bytes", ErrTileTooSmall, len(data))
	}
	return nil
}
