package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"tailpipe/internal/transcript"
)

func newPeekCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool

	cmd := &cobra.Command{
		Use:       "peek [in|out]",
		Short:     "Show the last lines written to a channel file",
		Long:      "Print recent lines from the channel's .out file (or .in) without consuming anything; the files are never modified.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"in", "out"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			paths, err := clientPaths("peek", ctx.selection(cfg))
			if err != nil {
				return err
			}

			path := paths.Out
			if len(args) == 1 {
				switch args[0] {
				case "in":
					path = paths.In
				case "out":
				default:
					return fmt.Errorf("unknown stream %q (expected in or out)", args[0])
				}
			}

			out := cmd.OutOrStdout()
			res, err := transcript.Tail(cmd.Context(), path, transcript.Options{Offset: -1, Limit: lines})
			if err != nil {
				return err
			}
			printLines(out, res.Lines)
			if !follow {
				return nil
			}
			return followTranscript(cmd.Context(), out, path, res.Offset, cfg.PollInterval())
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "Number of lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing lines as they are appended")
	return cmd
}

func followTranscript(ctx context.Context, out io.Writer, path string, offset int64, interval time.Duration) error {
	for {
		res, err := transcript.Tail(ctx, path, transcript.Options{
			Offset:       offset,
			Follow:       true,
			Wait:         time.Minute,
			PollInterval: interval,
		})
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		if err != nil {
			return err
		}
		printLines(out, res.Lines)
		offset = res.Offset
	}
}

func printLines(out io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
}
