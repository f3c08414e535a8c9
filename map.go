package main

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb/maptile"
)

// TileMap 远端瓦片服务, URL templates use {scheme} {host} {id} {fmt} {x} {y} {z}.
// For a panorama x is the column, y the row and z the level.
type TileMap struct {
	ID          int
	Scheme      string
	Host        string
	MetadataURL string
	TileURL     string
	Format      string
}

// NewTileMap builds the endpoint set for one panorama from the server config.
func NewTileMap(id int, c *Conf) TileMap {
	return TileMap{
		ID:          id,
		Scheme:      c.Server.Scheme,
		Host:        c.Server.Host,
		MetadataURL: c.Server.MetadataURL,
		TileURL:     c.Server.TileURL,
		Format:      c.Tile.Format,
	}
}

func (m *TileMap) expand(url string) string {
	url = strings.Replace(url, "{scheme}", m.Scheme, -1)
	url = strings.Replace(url, "{host}", m.Host, -1)
	return strings.Replace(url, "{id}", strconv.Itoa(m.ID), -1)
}

// GetMetadataURL 获取元数据URL
func (m *TileMap) GetMetadataURL(format string) string {
	return strings.Replace(m.expand(m.MetadataURL), "{fmt}", format, -1)
}

// GetTileURL 获取瓦片URL
func (m *TileMap) GetTileURL(t maptile.Tile) string {
	url := m.expand(m.TileURL)
	url = strings.Replace(url, "{x}", strconv.Itoa(int(t.X)), -1)
	url = strings.Replace(url, "{y}", strconv.Itoa(int(t.Y)), -1)
	url = strings.Replace(url, "{z}", strconv.Itoa(int(t.Z)), -1)
	return url
}
