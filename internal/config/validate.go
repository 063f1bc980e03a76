package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStdio(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStdio() error {
	if c.Stdio.PollIntervalMS < 0 {
		return errors.New("stdio.poll_interval_ms must be positive")
	}
	if c.Stdio.ChunkSize < 0 {
		return errors.New("stdio.chunk_size must be positive")
	}
	switch c.Stdio.StartOffset {
	case StartOffsetBeginning, StartOffsetEnd:
	default:
		return fmt.Errorf("stdio.start_offset must be %q or %q, got %q", StartOffsetBeginning, StartOffsetEnd, c.Stdio.StartOffset)
	}
	if c.Stdio.In != "" && c.Stdio.In == c.Stdio.Out {
		return fmt.Errorf("stdio.in and stdio.out must differ (both %s)", c.Stdio.In)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json", "auto":
	default:
		return fmt.Errorf("logging.format must be console, json, or auto, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
