package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"tailpipe/internal/filestdio"
)

func newPathsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Show the channel files the current flags and config resolve to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			paths, err := filestdio.ResolvePaths(ctx.selection(cfg))
			if errors.Is(err, filestdio.ErrNotRequested) {
				return fmt.Errorf("%w: pass --stdio-files, --stdio-in or --stdio-out", err)
			}
			if err != nil {
				return err
			}

			rows := [][]string{
				channelRow("in", "client -> server", paths.In),
				channelRow("out", "server -> client", paths.Out),
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Stream", "Direction", "Path", "Exists", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}

func channelRow(name, direction, path string) []string {
	info, err := os.Stat(path)
	if err != nil {
		return []string{name, direction, path, yesNo(false), "-"}
	}
	return []string{name, direction, path, yesNo(true), strconv.FormatInt(info.Size(), 10)}
}
