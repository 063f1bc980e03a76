package main

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"tailpipe/internal/bridge"
	"tailpipe/internal/filestdio"
	"tailpipe/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve -- <command> [args...]",
		Short: "Run a command with its stdin/stdout on a file-backed channel",
		Long: `Run a command whose standard input is read from <prefix>.in and whose
standard output is appended to <prefix>.out. Without any channel flag the
prefix defaults to .tailpipe-tmp/stdio-<pid> under the working directory.
The command's stderr stays attached to this terminal.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger(cmd)
			if err != nil {
				return err
			}

			sel := ctx.selection(cfg)
			sel.Files = true
			paths, err := filestdio.ResolvePaths(sel)
			if err != nil {
				return err
			}
			opts, err := ctx.channelOptions(cfg, logger)
			if err != nil {
				return err
			}

			endpoint, err := filestdio.NewServerEndpoint(paths, opts...)
			if err != nil {
				if errors.Is(err, filestdio.ErrWriterBusy) {
					return fmt.Errorf("another process is already serving this channel: %w", err)
				}
				return err
			}
			defer endpoint.Close()

			fmt.Fprintf(cmd.ErrOrStderr(), "tailpipe: reading %s\ntailpipe: writing %s\n", paths.In, paths.Out)
			logger.Info("serving channel",
				logging.String(logging.FieldRole, string(endpoint.Role())),
				logging.String("in", paths.In),
				logging.String("out", paths.Out),
				logging.String(logging.FieldCommand, args[0]),
			)

			child := exec.CommandContext(cmd.Context(), args[0], args[1:]...)
			child.Stderr = cmd.ErrOrStderr()
			_, err = bridge.New(logger).Run(cmd.Context(), endpoint, child)
			return err
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}
