package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tailpipe/internal/config"
	"tailpipe/internal/filestdio"
	"tailpipe/internal/logging"
)

type commandContext struct {
	configFlag *string
	flags      *channelFlags

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	sessionID string
}

func newCommandContext(configFlag *string, flags *channelFlags) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		flags:      flags,
		sessionID:  uuid.NewString(),
	}
}

// ensureConfig loads the config file once and layers the command-line
// overrides on top of it.
func (c *commandContext) ensureConfig(cmd *cobra.Command) (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.flags != nil && cmd != nil {
			if err := c.flags.apply(cmd, cfg); err != nil {
				c.configErr = err
				return
			}
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger(cmd *cobra.Command) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig(cmd)
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg, c.sessionID)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logging: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// selection maps the [stdio] section onto a path selection for this process.
func (c *commandContext) selection(cfg *config.Config) filestdio.Selection {
	return filestdio.Selection{
		In:     cfg.Stdio.In,
		Out:    cfg.Stdio.Out,
		Prefix: cfg.Stdio.Prefix,
		Files:  cfg.Stdio.Files,
	}
}

func (c *commandContext) channelOptions(cfg *config.Config, logger *slog.Logger) ([]filestdio.Option, error) {
	start, err := filestdio.ParseStartOffset(cfg.Stdio.StartOffset)
	if err != nil {
		return nil, err
	}
	return []filestdio.Option{
		filestdio.WithPollInterval(cfg.PollInterval()),
		filestdio.WithChunkSize(cfg.Stdio.ChunkSize),
		filestdio.WithStartOffset(start),
		filestdio.WithWatch(cfg.Stdio.Watch),
		filestdio.WithExclusive(cfg.Stdio.ExclusiveWriter),
		filestdio.WithLogger(logger),
	}, nil
}

// clientPaths resolves paths for a command that looks at a channel some other
// process serves. The per-process default prefix embeds the server's pid, so
// the caller must say where the channel lives.
func clientPaths(command string, sel filestdio.Selection) (filestdio.Paths, error) {
	if sel.Prefix == "" && (sel.In == "" || sel.Out == "") {
		return filestdio.Paths{}, fmt.Errorf("%s needs --stdio-files=<prefix> or both --stdio-in and --stdio-out", command)
	}
	return filestdio.ResolvePaths(sel)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
