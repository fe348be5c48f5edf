package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/anime-shed/mindtrack-report/internal/logger"
	"github.com/anime-shed/mindtrack-report/internal/upstream"
	"github.com/anime-shed/mindtrack-report/pkg/models"
	"github.com/anime-shed/mindtrack-report/pkg/validation"
)

func apiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "api",
			Usage:   "Analysis API base URL",
			Value:   "http://localhost:5000/api",
			Sources: cli.EnvVars("UPSTREAM_BASE_URL"),
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Analysis API request timeout",
			Value: 30 * time.Second,
		},
	}
}

func newClient(cmd *cli.Command) (*upstream.Client, error) {
	client, err := upstream.NewClient(upstream.Options{BaseURL: cmd.String("api"), Timeout: cmd.Duration("timeout")})
	if err != nil {
		return nil, err
	}
	logger.WithField("api", client.BaseURL()).Debug("Using analysis API")
	return client, nil
}

func analyzeCommand() *cli.Command {
	flags := append(commonFlags(), apiFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:  "text",
			Usage: "Text to classify",
		},
		&cli.StringFlag{
			Name:  "url",
			Usage: "Social media post URL to extract and classify",
		},
	)
	return &cli.Command{
		Name:  "analyze",
		Usage: "Classify text or a post URL with the analysis API, then render it",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			text, postURL := cmd.String("text"), cmd.String("url")
			if (text == "") == (postURL == "") {
				return fmt.Errorf("exactly one of --text or --url is required")
			}
			opts, err := parseOptions(cmd)
			if err != nil {
				return err
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			r, err := newRenderer(opts.loc)
			if err != nil {
				return err
			}

			req := &models.ReportRequest{}
			if text != "" {
				req.Result, err = client.AnalyzeText(ctx, text)
			} else {
				if err := validation.NewURLValidator().ValidatePostURL(postURL); err != nil {
					return err
				}
				req.Result, req.SourcePreview, err = client.AnalyzeURL(ctx, postURL)
			}
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
