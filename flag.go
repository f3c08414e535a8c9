package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "v0.1.0"

// NewRootCmd 命令行入口: gigapan <id> [level]
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "gigapan <id> [level]",
		Short: "Download the tile pyramid of a gigapan panorama",
		Long: `Downloads the metadata and the quadtree tiles of one panorama into
<output>/<level>/<row>/<col>.jpg. Without a level every level is fetched.
Tiles that cannot be downloaded are listed in missing_tiles.txt.`,
		Version:       version,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, level, err := parseArgs(args)
			if err != nil {
				return err
			}

			c, err := LoadConf(v, configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := InitLog(c, logLevel); err != nil {
				return err
			}
			log.Infof("%s %s", c.App.Title, c.App.Version)

			outputDir := c.Output.Directory
			if outputDir == "" {
				outputDir = strconv.Itoa(id)
			}
			_, err = DownloadPyramid(cmd.Context(), c, http.DefaultClient, id, outputDir, level)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "config `file` (default ./conf/conf.toml)")
	flags.StringVarP(&logLevel, "log-level", "l", "info", "log level")
	flags.StringP("output", "o", "", "output directory (default: the panorama id)")
	flags.IntP("workers", "w", 1, "concurrent tile downloads")
	flags.String("on-metadata-error", OnErrorAbort, "abort or skip when metadata cannot be resolved")
	_ = v.BindPFlag("output.directory", flags.Lookup("output"))
	_ = v.BindPFlag("task.workers", flags.Lookup("workers"))
	_ = v.BindPFlag("metadata.onError", flags.Lookup("on-metadata-error"))

	return cmd
}

func parseArgs(args []string) (int, *int, error) {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, nil, fmt.Errorf("invalid panorama id %q", args[0])
	}
	if len(args) < 2 {
		return id, nil, nil
	}
	level, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, nil, fmt.Errorf("invalid zoom level %q", args[1])
	}
	if level < 0 {
		return 0, nil, errors.New("zoom level must not be negative")
	}
	return id, &level, nil
}
