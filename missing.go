package main

import (
	"os"
	"strings"
	"sync"

	"github.com/paulmach/orb/maptile"
)

// MissingLog collects tiles that failed during a run and appends them to the
// missing tile file on Flush, one relative tile path per line. Lines are
// never deduplicated across runs.
type MissingLog struct {
	path   string
	format string
	mu     sync.Mutex
	tiles  []maptile.Tile
}

func NewMissingLog(path, format string) *MissingLog {
	return &MissingLog{path: path, format: format}
}

func (m *MissingLog) Add(t maptile.Tile) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tiles = append(m.tiles, t)
}

// Len 未写入的缺失瓦片数
func (m *MissingLog) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.tiles)
}

// Flush appends the pending lines and clears them. Calling it with nothing
// pending leaves the file untouched.
func (m *MissingLog) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.tiles) == 0 {
		return nil
	}
	var sb strings.Builder
	for _, t := range m.tiles {
		sb.WriteString(relTilePath(t, m.format))
		sb.WriteByte('\n')
	}

	file, err := os.OpenFile(m.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := file.WriteString(sb.String()); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	log.Infof("%d missing tiles written to %s", len(m.tiles), m.path)
	m.tiles = m.tiles[:0]
	return nil
}

// MissingSafeFun flushes on signal exit.
func (m *MissingLog) MissingSafeFun() {
	if err := m.Flush(); err != nil {
		log.Errorf("flush missing tiles: %s", err)
		return
	}
	log.Infof("missing tile log safely closed")
}
