package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// AppName 应用名, also the XDG config sub directory
const AppName = "gigapan"

type Conf struct {
	App struct {
		Version string `mapstructure:"version"`
		Title   string `mapstructure:"title"`
	} `mapstructure:"app"`
	Output struct {
		Directory      string `mapstructure:"directory"`
		LogDir         string `mapstructure:"logDir"`
		OutputTerminal bool   `mapstructure:"outputTerminal"`
		ProgressBar    bool   `mapstructure:"progressBar"`
		MissingFile    string `mapstructure:"missingFile"`
	} `mapstructure:"output"`
	Server struct {
		Scheme      string `mapstructure:"scheme"`
		Host        string `mapstructure:"host"`
		MetadataURL string `mapstructure:"metadataURL"`
		TileURL     string `mapstructure:"tileURL"`
		UserAgent   string `mapstructure:"userAgent"`
	} `mapstructure:"server"`
	Task struct {
		Workers       int           `mapstructure:"workers"`
		Timedelay     int           `mapstructure:"timedelay"`
		Timeout       time.Duration `mapstructure:"timeout"`
		Retries       int           `mapstructure:"retries"`
		RetryCooldown time.Duration `mapstructure:"retryCooldown"`
		RetryExponent float64       `mapstructure:"retryExponent"`
	} `mapstructure:"task"`
	Tile struct {
		Size    int    `mapstructure:"size"`
		MinSize int    `mapstructure:"minSize"`
		Format  string `mapstructure:"format"`
	} `mapstructure:"tile"`
	Metadata struct {
		OnError string `mapstructure:"onError"`
	} `mapstructure:"metadata"`
}

// ErrTileFormat tiles are validated as jpeg, so no other extension is written.
var ErrTileFormat = errors.New("unsupported tile format, only jpg")

// metadata.onError values
const (
	OnErrorAbort = "abort"
	OnErrorSkip  = "skip"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.version", version)
	v.SetDefault("app.title", "Gigapan Tiler")
	v.SetDefault("output.directory", "")
	v.SetDefault("output.logDir", "")
	v.SetDefault("output.outputTerminal", true)
	v.SetDefault("output.progressBar", true)
	v.SetDefault("output.missingFile", "missing_tiles.txt")
	v.SetDefault("server.scheme", "http")
	v.SetDefault("server.host", "www.gigapan.com")
	v.SetDefault("server.metadataURL", "{scheme}://{host}/gigapans/{id}.{fmt}")
	v.SetDefault("server.tileURL", "{scheme}://{host}/get_ge_tile/{id}/{z}/{y}/{x}")
	v.SetDefault("server.userAgent", "gigapan-tiler/0.1")
	v.SetDefault("task.workers", 1)
	v.SetDefault("task.timedelay", 0)
	v.SetDefault("task.timeout", 40*time.Second)
	v.SetDefault("task.retries", 1)
	v.SetDefault("task.retryCooldown", 200*time.Millisecond)
	v.SetDefault("task.retryExponent", 4.0)
	v.SetDefault("tile.size", TileSize)
	v.SetDefault("tile.minSize", MinTileBytes)
	v.SetDefault("tile.format", JPG)
	v.SetDefault("metadata.onError", OnErrorAbort)
}

// configCandidates 配置文件查找顺序
func configCandidates(cfgFile string) []string {
	if cfgFile != "" {
		return []string{cfgFile}
	}
	return []string{
		filepath.Join("conf", "conf.toml"),
		filepath.Join(xdg.ConfigHome, AppName, "conf.toml"),
	}
}

// LoadConf reads the first existing config file on top of the defaults.
// An explicitly named file that does not exist is an error; the fallback
// locations are optional.
func LoadConf(v *viper.Viper, cfgFile string) (*Conf, error) {
	setDefaults(v)
	v.SetConfigType("toml")
	v.SetEnvPrefix(AppName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, path := range configCandidates(cfgFile) {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) && cfgFile == "" {
				continue
			}
			return nil, err
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		break
	}

	c := new(Conf)
	if err := v.Unmarshal(c); err != nil {
		return nil, err
	}
	if c.Task.Workers < 1 {
		c.Task.Workers = 1
	}
	if c.Task.Retries < 1 {
		c.Task.Retries = 1
	}
	if c.Tile.Format != JPG {
		return nil, fmt.Errorf("%w: %q", ErrTileFormat, c.Tile.Format)
	}
	return c, nil
}
