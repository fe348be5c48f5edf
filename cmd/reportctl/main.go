// Command reportctl renders MindTrack report images from result files or
// from text and post URLs classified by the analysis API.
package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/anime-shed/mindtrack-report/internal/logger"
)

func main() {
	ctx := context.Background()
	logger.Configure(os.Getenv("LOG_LEVEL"), os.Stderr)

	appl := &cli.Command{
		Name:  "reportctl",
		Usage: "Render MindTrack AI report images",
		Commands: []*cli.Command{
			renderCommand(),
			batchCommand(),
			analyzeCommand(),
			historyCommand(),
			statsCommand(),
			clearCommand(),
		},
	}

	if err := appl.Run(ctx, os.Args); err != nil {
		logger.WithError(err).Error("reportctl failed")
		os.Exit(1)
	}
}
