package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConf(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "conf.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConf_Defaults(t *testing.T) {
	c, err := LoadConf(viper.New(), writeConf(t, "[app]\ntitle = \"test\"\n"))

	require.NoError(t, err)
	assert.Equal(t, "test", c.App.Title)
	assert.Equal(t, "www.gigapan.com", c.Server.Host)
	assert.Equal(t, 40*time.Second, c.Task.Timeout)
	assert.Equal(t, 1, c.Task.Workers)
	assert.Equal(t, 1, c.Task.Retries)
	assert.Equal(t, TileSize, c.Tile.Size)
	assert.Equal(t, MinTileBytes, c.Tile.MinSize)
	assert.Equal(t, JPG, c.Tile.Format)
	assert.Equal(t, "missing_tiles.txt", c.Output.MissingFile)
	assert.Equal(t, OnErrorAbort, c.Metadata.OnError)
}

func TestLoadConf_FileAndEnv(t *testing.T) {
	t.Setenv("GIGAPAN_TASK_RETRIES", "5")
	path := writeConf(t, `
[server]
host = "tiles.example.org"

[task]
workers = 0
timeout = "3s"
timedelay = 250
`)

	c, err := LoadConf(viper.New(), path)

	require.NoError(t, err)
	assert.Equal(t, "tiles.example.org", c.Server.Host)
	assert.Equal(t, 3*time.Second, c.Task.Timeout)
	assert.Equal(t, 250, c.Task.Timedelay)
	assert.Equal(t, 1, c.Task.Workers, "workers below one fall back to sequential")
	assert.Equal(t, 5, c.Task.Retries)
}

func TestLoadConf_MissingExplicitFile(t *testing.T) {
	_, err := LoadConf(viper.New(), filepath.Join(t.TempDir(), "nope.toml"))

	assert.Error(t, err)
}

func TestConfigCandidates(t *testing.T) {
	assert.Equal(t, []string{"x.toml"}, configCandidates("x.toml"))

	candidates := configCandidates("")
	require.Len(t, candidates, 2)
	assert.Equal(t, filepath.Join("conf", "conf.toml"), candidates[0])
	assert.Contains(t, candidates[1], filepath.Join(AppName, "conf.toml"))
}

func TestLoadConf_RejectsNonJPEGFormat(t *testing.T) {
	_, err := LoadConf(viper.New(), writeConf(t, "[tile]\nformat = \"png\"\n"))

	assert.ErrorIs(t, err, ErrTileFormat)
}
