package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/anime-shed/mindtrack-report/internal/export"
	"github.com/anime-shed/mindtrack-report/internal/logger"
	"github.com/anime-shed/mindtrack-report/internal/render"
	"github.com/anime-shed/mindtrack-report/pkg/models"
)

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "mode",
			Aliases: []string{"m"},
			Usage:   "Report layout: summary or complete",
			Value:   string(models.ModeComplete),
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Directory the PNG files are written to",
			Value:   ".",
		},
		&cli.StringFlag{
			Name:    "timezone",
			Usage:   "IANA timezone for report dates",
			Value:   "UTC",
			Sources: cli.EnvVars("RENDER_TIMEZONE"),
		},
	}
}

// options are the flags shared by every rendering command
type options struct {
	mode models.ReportMode
	out  string
	loc  *time.Location
}

func parseOptions(cmd *cli.Command) (options, error) {
	mode := models.ReportMode(strings.ToLower(cmd.String("mode")))
	if !mode.Valid() {
		return options{}, fmt.Errorf("unknown mode %q (want summary or complete)", cmd.String("mode"))
	}
	loc, err := time.LoadLocation(cmd.String("timezone"))
	if err != nil {
		return options{}, fmt.Errorf("invalid timezone: %w", err)
	}
	if err := os.MkdirAll(cmd.String("out"), 0o755); err != nil {
		return options{}, err
	}
	return options{mode: mode, out: cmd.String("out"), loc: loc}, nil
}

func newRenderer(loc *time.Location) (*render.Renderer, error) {
	cfg := render.DefaultConfig()
	cfg.Location = loc
	return render.New(cfg, nil)
}

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Render one result file (JSON or YAML) to a PNG",
		ArgsUsage: "<file>",
		Flags:     commonFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("expected exactly one argument: result file")
			}
			opts, err := parseOptions(cmd)
			if err != nil {
				return err
			}
			r, err := newRenderer(opts.loc)
			if err != nil {
				return err
			}
			req, err := loadRequest(cmd.Args().First())
			if err != nil {
				return err
			}
			path, err := writeReport(r, opts, req, "", time.Now())
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

func batchCommand() *cli.Command {
	flags := append(commonFlags(), &cli.IntFlag{
		Name:    "jobs",
		Aliases: []string{"j"},
		Usage:   "Number of concurrent renders",
		Value:   runtime.NumCPU(),
	})
	return &cli.Command{
		Name:      "batch",
		Usage:     "Render many result files concurrently",
		ArgsUsage: "<file>...",
		Flags:     flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() == 0 {
				return fmt.Errorf("expected at least one result file")
			}
			opts, err := parseOptions(cmd)
			if err != nil {
				return err
			}
			paths, err := runBatch(ctx, opts, cmd.Args().Slice(), max(cmd.Int("jobs"), 1))
			for _, p := range paths {
				if p != "" {
					fmt.Println(p)
				}
			}
			return err
		},
	}
}

// runBatch renders files with at most jobs renders in flight. Output names
// are prefixed with the input's base name so renders finishing in the same
// millisecond do not collide. The first failure cancels the batch.
func runBatch(ctx context.Context, opts options, files []string, jobs int) ([]string, error) {
	r, err := newRenderer(opts.loc)
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(files))
	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			req, err := loadRequest(file)
			if err != nil {
				return err
			}
			prefix := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
			path, err := writeReport(r, opts, req, prefix, time.Now())
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			paths[i] = path
			logger.WithField("file", file).WithField("done", done.Add(1)).Debug("Report rendered")
			return nil
		})
	}

	err = g.Wait()
	return paths, err
}

// writeReport renders req and writes the PNG into opts.out
func writeReport(r *render.Renderer, opts options, req *models.ReportRequest, prefix string, now time.Time) (string, error) {
	rep, err := r.Render(opts.mode, render.Input{Result: req.Result, Source: req.SourcePreview, GeneratedAt: now})
	if err != nil {
		return "", err
	}
	data, err := export.Encode(rep.Image)
	if err != nil {
		return "", err
	}

	name := export.Filename(opts.mode, now)
	if prefix != "" {
		name = prefix + "-" + name
	}
	path := filepath.Join(opts.out, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}

	if rep.Document.Dropped > 0 {
		logger.WithFields(map[string]interface{}{
			"file":    path,
			"dropped": rep.Document.Dropped,
		}).Warn("Some report content did not fit the page")
	}
	return path, nil
}
