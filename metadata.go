package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/antonholmquist/jason"
)

// metadata artifact formats
const (
	FormatKML  = "kml"
	FormatJSON = "json"
)

var ErrMetadataUnavailable = errors.New("metadata unavailable")

// Panorama 全景图元数据
type Panorama struct {
	ID     int
	Width  int
	Height int
	Levels int
}

// MaxLevel is the full resolution level.
func (p Panorama) MaxLevel() int {
	return p.Levels - 1
}

// Resolver fetches panorama metadata once and caches the raw artifacts in dir.
type Resolver struct {
	dir    string
	client *Client
	tm     TileMap
}

func NewResolver(dir string, client *Client, tm TileMap) *Resolver {
	return &Resolver{dir: dir, client: client, tm: tm}
}

// Resolve returns the panorama dimensions. The KML artifact is fetched and
// cached alongside but only the JSON one is parsed.
func (r *Resolver) Resolve(ctx context.Context) (Panorama, error) {
	if _, err := r.artifact(ctx, FormatKML); err != nil {
		log.Warnf("kml metadata for %d not available: %s", r.tm.ID, err)
	}

	data, err := r.artifact(ctx, FormatJSON)
	if err != nil {
		return Panorama{}, fmt.Errorf("%w: %w", ErrMetadataUnavailable, err)
	}
	p, err := parsePanorama(data)
	if err != nil {
		return Panorama{}, fmt.Errorf("%w: %s: %w", ErrMetadataUnavailable, r.path(FormatJSON), err)
	}
	p.ID = r.tm.ID
	log.Infof("panorama %d: %dx%d px, %d levels", p.ID, p.Width, p.Height, p.Levels)
	return p, nil
}

func (r *Resolver) path(format string) string {
	return filepath.Join(r.dir, fmt.Sprintf("%d.%s", r.tm.ID, format))
}

// artifact reads the cached file, or fetches it and writes the bytes verbatim.
func (r *Resolver) artifact(ctx context.Context, format string) ([]byte, error) {
	path := r.path(format)
	if data, err := os.ReadFile(path); err == nil {
		log.Infof("%s file already exists: %s", format, path)
		return data, nil
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	url := r.tm.GetMetadataURL(format)
	log.Debugf("fetch metadata %s", url)
	data, err := r.client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if err := os.MkdirAll(r.dir, os.ModePerm); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, err
	}
	log.Infof("%s saved to: %s", format, path)
	return data, nil
}

func parsePanorama(data []byte) (Panorama, error) {
	root, err := jason.NewObjectFromBytes(data)
	if err != nil {
		return Panorama{}, err
	}
	g, err := root.GetObject("gigapan")
	if err != nil {
		return Panorama{}, fmt.Errorf("gigapan object: %w", err)
	}

	var p Panorama
	fields := []struct {
		key string
		dst *int
	}{
		{"width", &p.Width},
		{"height", &p.Height},
		{"levels", &p.Levels},
	}
	for _, f := range fields {
		v, err := intField(g, f.key)
		if err != nil {
			return Panorama{}, err
		}
		*f.dst = v
	}
	if p.Levels < 1 {
		return Panorama{}, fmt.Errorf("levels must be positive, got %d", p.Levels)
	}
	if p.Width < 1 || p.Height < 1 {
		return Panorama{}, fmt.Errorf("bad dimensions %dx%d", p.Width, p.Height)
	}
	return p, nil
}

// intField accepts integers and integral floats such as 4096.0.
func intField(o *jason.Object, key string) (int, error) {
	if v, err := o.GetInt64(key); err == nil {
		return int(v), nil
	}
	f, err := o.GetFloat64(key)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", key, err)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("field %s: not an integer: %v", key, f)
	}
	return int(f), nil
}
