package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tailpipe/internal/config"
)

// defaultPrefixValue is what a bare --stdio-files resolves to: enable file
// stdio with the per-process default prefix.
const defaultPrefixValue = "default"

// channelFlags are the command-line overrides for the [stdio] and [logging]
// sections.
type channelFlags struct {
	stdioIn      string
	stdioOut     string
	stdioFiles   string
	pollInterval time.Duration
	startAt      string
	watch        bool
	exclusive    bool
	verbose      bool
	logFile      string
	logFormat    string
}

func (f *channelFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.stdioIn, "stdio-in", "", "File the server reads (the client writes)")
	fs.StringVar(&f.stdioOut, "stdio-out", "", "File the server writes (the client reads)")
	fs.StringVar(&f.stdioFiles, "stdio-files", "", "Use file-backed stdio; optional value is the path prefix for <prefix>.in/<prefix>.out")
	fs.Lookup("stdio-files").NoOptDefVal = defaultPrefixValue
	fs.DurationVar(&f.pollInterval, "poll-interval", 0, "How often to check the input file for new data")
	fs.StringVar(&f.startAt, "start-at", "", "Where reading starts in an existing file: beginning or end")
	fs.BoolVar(&f.watch, "watch", false, "Use filesystem notifications to wake the poller early")
	fs.BoolVar(&f.exclusive, "exclusive", false, "Refuse to start when another process already writes the output file")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Enable debug logging")
	fs.StringVar(&f.logFile, "log-file", "", "Append logs to this file")
	fs.StringVar(&f.logFormat, "log-format", "", "Log format: console, json, or auto")
}

// apply layers explicitly set flags over cfg and re-validates.
func (f *channelFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := func(name string) bool {
		flag := cmd.Flags().Lookup(name)
		return flag != nil && flag.Changed
	}

	var err error
	if changed("stdio-in") {
		if cfg.Stdio.In, err = config.ExpandPath(strings.TrimSpace(f.stdioIn)); err != nil {
			return err
		}
	}
	if changed("stdio-out") {
		if cfg.Stdio.Out, err = config.ExpandPath(strings.TrimSpace(f.stdioOut)); err != nil {
			return err
		}
	}
	if changed("stdio-files") {
		cfg.Stdio.Files = true
		if value := strings.TrimSpace(f.stdioFiles); value != "" && value != defaultPrefixValue {
			if cfg.Stdio.Prefix, err = config.ExpandPath(value); err != nil {
				return err
			}
		}
	}
	if changed("poll-interval") {
		if f.pollInterval < time.Millisecond {
			return fmt.Errorf("--poll-interval must be at least 1ms, got %s", f.pollInterval)
		}
		cfg.Stdio.PollIntervalMS = int(f.pollInterval / time.Millisecond)
	}
	if changed("start-at") {
		cfg.Stdio.StartOffset = strings.ToLower(strings.TrimSpace(f.startAt))
	}
	if changed("watch") {
		cfg.Stdio.Watch = f.watch
	}
	if changed("exclusive") {
		cfg.Stdio.ExclusiveWriter = f.exclusive
	}
	if f.verbose {
		cfg.Logging.Level = "debug"
	}
	if changed("log-file") {
		if cfg.Logging.File, err = config.ExpandPath(strings.TrimSpace(f.logFile)); err != nil {
			return err
		}
	}
	if changed("log-format") {
		cfg.Logging.Format = strings.ToLower(strings.TrimSpace(f.logFormat))
	}
	return cfg.Validate()
}
