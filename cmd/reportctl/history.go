package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"
)

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Print the most recent analyses stored by the analysis API",
		Flags: append(apiFlags(), &cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"n"},
			Usage:   "Number of entries to fetch",
			Value:   20,
		}),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			raw, err := client.Timeline(ctx, cmd.Int("limit"))
			if err != nil {
				return err
			}
			return printJSON(cmd.Root().Writer, raw)
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Print aggregate analysis statistics",
		Flags: apiFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			raw, err := client.Stats(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.Root().Writer, raw)
		},
	}
}

func clearCommand() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Delete the analysis history stored by the analysis API",
		Flags: append(apiFlags(), &cli.BoolFlag{
			Name:  "yes",
			Usage: "Confirm the deletion",
		}),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if !cmd.Bool("yes") {
				return fmt.Errorf("refusing to clear history without --yes")
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			raw, err := client.ClearHistory(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.Root().Writer, raw)
		},
	}
}

func printJSON(w io.Writer, raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("analysis API returned invalid JSON: %w", err)
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}
