package main

import (
	"time"

	"github.com/spf13/cobra"

	"tailpipe/internal/bridge"
	"tailpipe/internal/filestdio"
	"tailpipe/internal/logging"
)

func newAttachCommand(ctx *commandContext) *cobra.Command {
	var idle time.Duration

	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Connect this terminal to a served channel",
		Long: `Append standard input to the channel's .in file and copy everything the
server appends to its .out file onto standard output. Logs never go to
standard output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger(cmd)
			if err != nil {
				return err
			}

			paths, err := clientPaths("attach", ctx.selection(cfg))
			if err != nil {
				return err
			}
			opts, err := ctx.channelOptions(cfg, logger)
			if err != nil {
				return err
			}

			endpoint, err := filestdio.NewClientEndpoint(paths, opts...)
			if err != nil {
				return err
			}
			defer endpoint.Close()

			logger.Debug("attached to channel",
				logging.String(logging.FieldRole, string(endpoint.Role())),
				logging.String("in", paths.In),
				logging.String("out", paths.Out),
			)

			_, err = bridge.New(logger).Attach(cmd.Context(), endpoint, cmd.InOrStdin(), cmd.OutOrStdout(), bridge.Options{IdleAfterEOF: idle})
			return err
		},
	}
	cmd.Flags().DurationVar(&idle, "idle", 0, "After stdin ends, detach once the channel has been quiet this long (0 waits for interrupt)")
	return cmd
}
