package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb/maptile"
	"github.com/teris-io/shortid"
	"golang.org/x/sync/errgroup"
	pb "gopkg.in/cheggaaa/pb.v1"
)

// Summary 下载统计
type Summary struct {
	Fetched int64
	Skipped int64
	Missing int64
}

func (s Summary) String() string {
	return fmt.Sprintf("fetched %d, skipped %d, missing %d", s.Fetched, s.Skipped, s.Missing)
}

// DownloadPyramid resolves the panorama metadata into outputDir and downloads
// the requested level, or every level when requested is nil. Tile failures
// end up in the missing tile file; only metadata failures are returned, and
// only under the abort policy.
func DownloadPyramid(ctx context.Context, c *Conf, httpClient *http.Client, id int, outputDir string, requested *int) (Summary, error) {
	start := time.Now()

	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return Summary{}, err
	}
	client := NewClient(httpClient, c)
	tm := NewTileMap(id, c)

	pano, err := NewResolver(outputDir, client, tm).Resolve(ctx)
	if err != nil {
		if c.Metadata.OnError == OnErrorSkip {
			log.Errorf("panorama %d skipped: %s", id, err)
			return Summary{}, nil
		}
		return Summary{}, err
	}

	missing := NewMissingLog(filepath.Join(outputDir, c.Output.MissingFile), tm.Format)
	// 注册安全退出
	SafeExitInst.Register(missing.MissingSafeFun)

	task := NewTask(pano, tm, outputDir, client, missing, c)
	sum, err := task.Download(ctx, requested)

	log.Infof("task %s: %s in %.3fs", task.ID, sum, time.Since(start).Seconds())
	return sum, err
}

// Task 下载任务
type Task struct {
	ID          string
	Dir         string
	Panorama    Panorama
	TileMap     TileMap
	client      *Client
	retry       RetryPolicy
	missing     *MissingLog
	workerCount int
	tileSize    int
	minTileSize int
	progress    bool

	fetched atomic.Int64
	skipped atomic.Int64
	failed  atomic.Int64
}

// NewTask 创建下载任务
func NewTask(p Panorama, tm TileMap, dir string, client *Client, missing *MissingLog, c *Conf) *Task {
	id, _ := shortid.Generate()
	return &Task{
		ID:          id,
		Dir:         dir,
		Panorama:    p,
		TileMap:     tm,
		client:      client,
		retry:       NewRetryPolicy(c),
		missing:     missing,
		workerCount: max(c.Task.Workers, 1),
		tileSize:    c.Tile.Size,
		minTileSize: c.Tile.MinSize,
		progress:    c.Output.ProgressBar,
	}
}

// SelectLevels picks the levels to download. A requested level is clamped to
// the finest level only when it is greater than Levels; requesting exactly
// Levels passes through and is planned one level past full resolution.
func SelectLevels(p Panorama, requested *int) []int {
	if requested == nil {
		levels := make([]int, 0, p.Levels)
		for z := 0; z <= p.MaxLevel(); z++ {
			levels = append(levels, z)
		}
		return levels
	}

	level := *requested
	switch {
	case level > p.Levels:
		level = p.MaxLevel()
		log.Warnf("passed level higher than this pano has, so level reset to %d", level)
	case level == p.Levels:
		log.Warnf("level %d is one past the finest level %d, downloading it as requested", level, p.MaxLevel())
	}
	return []int{level}
}

// Layers plans the grid of every selected level.
func (task *Task) Layers(requested *int) []Layer {
	var layers []Layer
	for _, z := range SelectLevels(task.Panorama, requested) {
		layer := NewLayer(task.Panorama, z, task.tileSize)
		log.Infof("zoom: %d, cols: %d, rows: %d, tiles: %d", layer.Zoom, layer.Cols, layer.Rows, layer.Count)
		layers = append(layers, layer)
	}
	return layers
}

// Download 开启下载任务, then flushes the missing tile log once.
func (task *Task) Download(ctx context.Context, requested *int) (Summary, error) {
	var err error
	for _, layer := range task.Layers(requested) {
		if err = task.downloadLayer(ctx, layer); err != nil {
			break
		}
	}
	if ferr := task.missing.Flush(); ferr != nil {
		err = errors.Join(err, fmt.Errorf("write missing tiles: %w", ferr))
	}
	return task.Summary(), err
}

func (task *Task) Summary() Summary {
	return Summary{
		Fetched: task.fetched.Load(),
		Skipped: task.skipped.Load(),
		Missing: task.failed.Load(),
	}
}

// downloadLayer fetches a level row by row. With a single worker tiles are
// fetched in order one at a time.
func (task *Task) downloadLayer(ctx context.Context, layer Layer) error {
	log.Infof("Task layer: %s starting", layer)
	var bar *pb.ProgressBar
	if task.progress {
		bar = pb.New64(layer.Count).Prefix(fmt.Sprintf("Zoom %d : ", layer.Zoom))
		bar.SetRefreshRate(time.Second)
		bar.Start()
	}
	done := func(res FetchResult) {
		task.record(res)
		if bar != nil {
			bar.Increment()
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(task.workerCount)
tiles:
	for row := 0; row < layer.Rows; row++ {
		for col := 0; col < layer.Cols; col++ {
			if gctx.Err() != nil {
				break tiles
			}
			t := NewTile(layer.Zoom, row, col)
			if task.workerCount == 1 {
				done(task.FetchTile(gctx, t))
				continue
			}
			g.Go(func() error {
				done(task.FetchTile(gctx, t))
				return nil
			})
		}
	}
	g.Wait()

	if bar != nil {
		bar.FinishPrint(fmt.Sprintf("Task %s Zoom %d finished ~", task.ID, layer.Zoom))
	}
	if err := ctx.Err(); err != nil {
		log.Infof("Task %s got canceled.", task.ID)
		return err
	}
	return nil
}

func (task *Task) record(res FetchResult) {
	switch {
	case res.Err != nil:
		task.failed.Add(1)
		task.missing.Add(res.Tile)
	case res.Skipped:
		task.skipped.Add(1)
	default:
		task.fetched.Add(1)
	}
}

// FetchTile downloads one tile unless it is already on disk. Failures are
// returned in the result and never stop the run.
func (task *Task) FetchTile(ctx context.Context, mt maptile.Tile) FetchResult {
	start := time.Now()
	format := task.TileMap.Format
	path := tilePath(task.Dir, mt, format)
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return FetchResult{Tile: mt, Err: err}
	}
	if exists(path) {
		log.Debugf("tile already exists: %s", path)
		return FetchResult{Tile: mt, Path: path, Skipped: true}
	}

	url := task.TileMap.GetTileURL(mt)
	var body []byte
	err := task.retry.Do(ctx, func() error {
		data, err := task.client.Get(ctx, url)
		if err != nil {
			return err
		}
		if err := ValidateJPEG(data, task.minTileSize); err != nil {
			return fmt.Errorf("%s: %w", relTilePath(mt, format), err)
		}
		body = data
		return nil
	})
	if err != nil {
		log.Warnf("failed to download %s: %s", url, err)
		return FetchResult{Tile: mt, Err: err}
	}

	path, err = saveToFiles(task.Dir, Tile{T: mt, C: body}, format)
	if err != nil {
		log.Errorf("create %v tile file error ~ %s", mt, err)
		return FetchResult{Tile: mt, Err: err}
	}

	cost := time.Since(start).Milliseconds()
	log.Debugf("tile(z:%d, y:%d, x:%d), %dms , %.2f kb, %s ...", mt.Z, mt.Y, mt.X, cost, float32(len(body))/1024.0, url)
	return FetchResult{Tile: mt, Path: path}
}
